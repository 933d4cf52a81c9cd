package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/openpredict/marketd/internal/domain"
)

// ObjectWriter is the narrow upload surface the archiver needs. *Writer
// satisfies it; tests can substitute an in-memory fake.
type ObjectWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64, contentType string) error
}

// Archiver implements domain.SettlementArchiver. Each settlement record is
// uploaded immediately as a standalone JSON object; records are also
// accumulated in memory and flushed as a monthly JSONL batch on shutdown.
//
// Deletion of settled markets from the primary store is intentionally NOT
// performed here.
type Archiver struct {
	writer ObjectWriter

	mu       sync.Mutex
	buffered []domain.SettlementRecord
}

// NewArchiver creates a new Archiver.
func NewArchiver(writer ObjectWriter) *Archiver {
	return &Archiver{writer: writer}
}

// ArchiveSettlement uploads the record to settlements/<market-id>.json and
// retains it for the batch flush.
func (a *Archiver) ArchiveSettlement(ctx context.Context, rec domain.SettlementRecord) error {
	buf, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("s3blob: marshal settlement %d: %w", rec.MarketID, err)
	}

	path := fmt.Sprintf("settlements/%d.json", rec.MarketID)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/json"); err != nil {
		return fmt.Errorf("s3blob: archive settlement %d: %w", rec.MarketID, err)
	}

	a.mu.Lock()
	a.buffered = append(a.buffered, rec)
	a.mu.Unlock()
	return nil
}

// Flush uploads the buffered records as a JSONL batch partitioned by
// year-month and clears the buffer. A flush with nothing buffered is a
// no-op.
func (a *Archiver) Flush(ctx context.Context) error {
	a.mu.Lock()
	records := a.buffered
	a.buffered = nil
	a.mu.Unlock()

	if len(records) == 0 {
		return nil
	}

	buf, err := marshalJSONL(records)
	if err != nil {
		return fmt.Errorf("s3blob: flush settlements marshal: %w", err)
	}

	path := fmt.Sprintf("settlements/batches/%s.jsonl", time.Now().UTC().Format("2006-01"))
	if err := a.writer.PutMultipart(ctx, path, bytes.NewReader(buf), minPartSize, "application/x-ndjson"); err != nil {
		return fmt.Errorf("s3blob: flush settlements upload: %w", err)
	}
	return nil
}

// marshalJSONL serialises a slice of values as newline-delimited JSON.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ domain.SettlementArchiver = (*Archiver)(nil)
