// Where: internal/journal/aws.go
// What: AWS SDK adapters behind the journal's narrow interfaces.
// Why: Keeps SDK types out of the journal logic and lets tests fake the store.
package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tvwb/tradingview-webhooks-bot/internal/constants"
)

const defaultRegion = "us-east-1"

// journalCredentials reads static credentials from the environment.
// Local endpoints accept anything, so "dummy" is a workable default.
func journalCredentials() (string, string) {
	access := os.Getenv(constants.EnvJournalAccessKey)
	if access == "" {
		access = "dummy"
	}
	secret := os.Getenv(constants.EnvJournalSecretKey)
	if secret == "" {
		secret = "dummy"
	}
	return access, secret
}

func loadAWSConfig(ctx context.Context, opts Options) (aws.Config, error) {
	region := opts.Region
	if region == "" {
		region = defaultRegion
	}
	access, secret := journalCredentials()
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(access, secret, "")),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

func newDynamoClient(ctx context.Context, opts Options) (*dynamodb.Client, error) {
	cfg, err := loadAWSConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return client, nil
}

func newS3Client(ctx context.Context, opts Options) (*s3.Client, error) {
	cfg, err := loadAWSConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return client, nil
}

// awsDynamoAPI adapts the DynamoDB SDK client to DynamoAPI.
type awsDynamoAPI struct {
	client *dynamodb.Client
}

var _ DynamoAPI = awsDynamoAPI{}

func (a awsDynamoAPI) TableExists(ctx context.Context, table string) (bool, error) {
	if a.client == nil {
		return false, fmt.Errorf("dynamodb client not initialized")
	}
	_, err := a.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(table),
	})
	if err != nil {
		var notFound *ddbtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (a awsDynamoAPI) CreateTable(ctx context.Context, table string) error {
	if a.client == nil {
		return fmt.Errorf("dynamodb client not initialized")
	}
	_, err := a.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(table),
		BillingMode: ddbtypes.BillingModePayPerRequest,
		AttributeDefinitions: []ddbtypes.AttributeDefinition{
			{AttributeName: aws.String("pk"), AttributeType: ddbtypes.ScalarAttributeTypeS},
			{AttributeName: aws.String("ts"), AttributeType: ddbtypes.ScalarAttributeTypeS},
		},
		KeySchema: []ddbtypes.KeySchemaElement{
			{AttributeName: aws.String("pk"), KeyType: ddbtypes.KeyTypeHash},
			{AttributeName: aws.String("ts"), KeyType: ddbtypes.KeyTypeRange},
		},
	})
	if err != nil {
		var inUse *ddbtypes.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}
		return err
	}
	return nil
}

func (a awsDynamoAPI) PutItem(ctx context.Context, table string, item map[string]string) error {
	if a.client == nil {
		return fmt.Errorf("dynamodb client not initialized")
	}
	attrs := make(map[string]ddbtypes.AttributeValue, len(item))
	for k, v := range item {
		attrs[k] = &ddbtypes.AttributeValueMemberS{Value: v}
	}
	_, err := a.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      attrs,
	})
	return err
}

func (a awsDynamoAPI) QueryRecent(ctx context.Context, table, partition string, limit int) ([]map[string]string, error) {
	if a.client == nil {
		return nil, fmt.Errorf("dynamodb client not initialized")
	}
	out, err := a.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(table),
		KeyConditionExpression: aws.String("pk = :pk"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":pk": &ddbtypes.AttributeValueMemberS{Value: partition},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, err
	}
	items := make([]map[string]string, 0, len(out.Items))
	for _, raw := range out.Items {
		item := make(map[string]string, len(raw))
		for k, v := range raw {
			if s, ok := v.(*ddbtypes.AttributeValueMemberS); ok {
				item[k] = s.Value
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// awsS3API adapts the S3 SDK client to S3API.
type awsS3API struct {
	client *s3.Client
}

var _ S3API = awsS3API{}

func (a awsS3API) EnsureBucket(ctx context.Context, bucket string) error {
	if a.client == nil {
		return fmt.Errorf("s3 client not initialized")
	}
	_, err := a.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		var owned *s3types.BucketAlreadyOwnedByYou
		var exists *s3types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		return err
	}
	return nil
}

func (a awsS3API) PutObject(ctx context.Context, bucket, key string, body []byte) error {
	if a.client == nil {
		return fmt.Errorf("s3 client not initialized")
	}
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	return err
}
