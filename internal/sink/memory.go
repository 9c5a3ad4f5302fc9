package sink

import (
	"context"
	"sync"

	"github.com/project-tktt/job-harvester/internal/domain"
)

// Memory is an in-process sink for tests and dry runs.
type Memory struct {
	mu      sync.Mutex
	records []*domain.JobRecord
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Append stores the records.
func (m *Memory) Append(_ context.Context, records ...*domain.JobRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
	return nil
}

// Records returns a snapshot of everything appended so far.
func (m *Memory) Records() []*domain.JobRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.JobRecord, len(m.records))
	copy(out, m.records)
	return out
}
