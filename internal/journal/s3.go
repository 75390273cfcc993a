// Where: internal/journal/s3.go
// What: S3 payload archive layered over another journal backend.
// Why: Raw alert payloads are worth keeping beyond the journal's window.
package journal

import (
	"context"
	"fmt"
)

// S3API is the slice of S3 the archive needs.
type S3API interface {
	EnsureBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, key string, body []byte) error
}

// Archiver stores a payload under a key.
type Archiver interface {
	Archive(ctx context.Context, key string, payload []byte) error
}

// S3Archiver writes payloads as objects in a bucket.
type S3Archiver struct {
	API    S3API
	Bucket string
}

var _ Archiver = (*S3Archiver)(nil)

func (a *S3Archiver) Archive(ctx context.Context, key string, payload []byte) error {
	if a.API == nil {
		return fmt.Errorf("s3 archiver not initialized")
	}
	if err := a.API.PutObject(ctx, a.Bucket, key, payload); err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}
	return nil
}

// archivingJournal records to the inner journal, then copies delivery
// payloads to the archive. An archive failure does not fail the record.
type archivingJournal struct {
	inner    Journal
	archiver Archiver
}

var _ Journal = (*archivingJournal)(nil)

// WithArchive wraps a journal so delivery payloads are also archived.
func WithArchive(inner Journal, archiver Archiver) Journal {
	return &archivingJournal{inner: inner, archiver: archiver}
}

func (j *archivingJournal) Record(ctx context.Context, e Entry) error {
	if err := j.inner.Record(ctx, e); err != nil {
		return err
	}
	if e.Kind == KindDelivery && len(e.Payload) > 0 {
		key := fmt.Sprintf("deliveries/%s/%s.json", e.Time.UTC().Format("2006/01/02"), e.ID)
		// Best effort: the entry is already journaled.
		_ = j.archiver.Archive(ctx, key, e.Payload)
	}
	return nil
}

func (j *archivingJournal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return j.inner.Recent(ctx, limit)
}
