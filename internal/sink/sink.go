// Package sink provides append-only storage backends for finished records.
package sink

import (
	"context"

	"github.com/project-tktt/job-harvester/internal/domain"
)

// Sink is durable append-only storage. No update or delete; a record is
// assumed durable once Append returns nil.
type Sink interface {
	Append(ctx context.Context, records ...*domain.JobRecord) error
}

// Multi fans every append out to all configured backends. The first backend
// error is returned after all backends were attempted.
type Multi []Sink

// Append writes the records to every backend.
func (m Multi) Append(ctx context.Context, records ...*domain.JobRecord) error {
	var firstErr error
	for _, s := range m {
		if err := s.Append(ctx, records...); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
