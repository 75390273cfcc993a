// Where: internal/journal/journal.go
// What: Delivery and order audit trail.
// Why: "What did the bot do with that alert" must be answerable after the fact.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Kind classifies journal entries.
type Kind string

const (
	// KindDelivery records a webhook payload arriving.
	KindDelivery Kind = "delivery"
	// KindOrder records a validated order.
	KindOrder Kind = "order"
)

// Entry is one journal record.
type Entry struct {
	ID      string          `json:"id"`
	Kind    Kind            `json:"kind"`
	Time    time.Time       `json:"time"`
	Event   string          `json:"event,omitempty"`
	Action  string          `json:"action,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Outcome string          `json:"outcome,omitempty"`
}

// Journal stores entries and serves them back newest first.
type Journal interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Options selects and parameterizes a backend.
type Options struct {
	Backend       string
	Endpoint      string
	Region        string
	Table         string
	ArchiveBucket string
}

// Open builds the configured journal. The S3 archive, when configured,
// wraps whichever backend is selected.
func Open(ctx context.Context, opts Options) (Journal, error) {
	var base Journal
	switch opts.Backend {
	case "", "memory":
		base = NewMemory(500)
	case "dynamodb":
		client, err := newDynamoClient(ctx, opts)
		if err != nil {
			return nil, err
		}
		base = &Dynamo{API: awsDynamoAPI{client: client}, Table: opts.Table}
	default:
		return nil, fmt.Errorf("unknown journal backend %q", opts.Backend)
	}

	if opts.ArchiveBucket != "" {
		client, err := newS3Client(ctx, opts)
		if err != nil {
			return nil, err
		}
		base = WithArchive(base, &S3Archiver{API: awsS3API{client: client}, Bucket: opts.ArchiveBucket})
	}
	return base, nil
}

// Provision creates the backend resources the configuration calls for.
// Existing resources are left alone, so this is safe to run repeatedly.
func Provision(ctx context.Context, opts Options, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if opts.Backend == "dynamodb" {
		client, err := newDynamoClient(ctx, opts)
		if err != nil {
			return err
		}
		api := awsDynamoAPI{client: client}
		exists, err := api.TableExists(ctx, opts.Table)
		if err != nil {
			return fmt.Errorf("check table %s: %w", opts.Table, err)
		}
		if exists {
			fmt.Fprintf(out, "Table '%s' already exists. Skipping.\n", opts.Table)
		} else {
			if err := api.CreateTable(ctx, opts.Table); err != nil {
				return fmt.Errorf("create table %s: %w", opts.Table, err)
			}
			fmt.Fprintf(out, "Created journal table: %s\n", opts.Table)
		}
	}
	if opts.ArchiveBucket != "" {
		client, err := newS3Client(ctx, opts)
		if err != nil {
			return err
		}
		api := awsS3API{client: client}
		if err := api.EnsureBucket(ctx, opts.ArchiveBucket); err != nil {
			return fmt.Errorf("ensure bucket %s: %w", opts.ArchiveBucket, err)
		}
		fmt.Fprintf(out, "Archive bucket ready: %s\n", opts.ArchiveBucket)
	}
	return nil
}
