// Where: internal/journal/dynamo.go
// What: DynamoDB journal backend.
// Why: Long-running installs need an audit trail that survives restarts.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DynamoAPI is the slice of DynamoDB the journal needs. Items travel as
// flat string maps so tests can fake the store without the AWS SDK.
type DynamoAPI interface {
	TableExists(ctx context.Context, table string) (bool, error)
	CreateTable(ctx context.Context, table string) error
	PutItem(ctx context.Context, table string, item map[string]string) error
	QueryRecent(ctx context.Context, table string, partition string, limit int) ([]map[string]string, error)
}

// Dynamo stores entries in a single table keyed by a constant partition
// and a timestamp range key, so a reverse query yields newest first.
type Dynamo struct {
	API   DynamoAPI
	Table string
}

var _ Journal = (*Dynamo)(nil)

// journalPartition is the fixed partition key value. The table holds one
// logical stream, ordered by the range key.
const journalPartition = "journal"

func (d *Dynamo) Record(ctx context.Context, e Entry) error {
	if d.API == nil {
		return fmt.Errorf("dynamodb journal not initialized")
	}
	item := map[string]string{
		"pk":   journalPartition,
		"ts":   sortKey(e),
		"id":   e.ID,
		"kind": string(e.Kind),
		"time": e.Time.UTC().Format(time.RFC3339Nano),
	}
	if e.Event != "" {
		item["event"] = e.Event
	}
	if e.Action != "" {
		item["action"] = e.Action
	}
	if e.Outcome != "" {
		item["outcome"] = e.Outcome
	}
	if len(e.Payload) > 0 {
		item["payload"] = string(e.Payload)
	}
	if err := d.API.PutItem(ctx, d.Table, item); err != nil {
		return fmt.Errorf("record journal entry: %w", err)
	}
	return nil
}

func (d *Dynamo) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if d.API == nil {
		return nil, fmt.Errorf("dynamodb journal not initialized")
	}
	if limit <= 0 {
		limit = 50
	}
	items, err := d.API.QueryRecent(ctx, d.Table, journalPartition, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	out := make([]Entry, 0, len(items))
	for _, item := range items {
		out = append(out, entryFromItem(item))
	}
	return out, nil
}

// sortKey orders entries by time, with the ID as a tiebreaker for
// entries recorded in the same nanosecond.
func sortKey(e Entry) string {
	return e.Time.UTC().Format(time.RFC3339Nano) + "#" + e.ID
}

func entryFromItem(item map[string]string) Entry {
	e := Entry{
		ID:      item["id"],
		Kind:    Kind(item["kind"]),
		Event:   item["event"],
		Action:  item["action"],
		Outcome: item["outcome"],
	}
	if t, err := time.Parse(time.RFC3339Nano, item["time"]); err == nil {
		e.Time = t
	}
	if raw := item["payload"]; raw != "" {
		e.Payload = json.RawMessage(raw)
	}
	return e
}
