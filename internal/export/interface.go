package export

import (
	"context"

	"github.com/onrus/powermax-logins/internal/domain"
)

// Writer serializes parsed login records into one output sink. A run
// writes the full (filtered) record sequence once and closes the writer.
type Writer interface {
	// Write appends the records to the sink in the order given.
	Write(ctx context.Context, records []domain.LoginRecord) error

	// Close flushes pending output and releases the sink.
	Close() error
}
