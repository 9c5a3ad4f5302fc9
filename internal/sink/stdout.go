package sink

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/project-tktt/job-harvester/internal/domain"
)

// Stdout writes one JSON document per line. Useful for dry runs and piping
// into jq.
type Stdout struct {
	mu sync.Mutex
	w  io.Writer
}

func NewStdout(w io.Writer) *Stdout {
	return &Stdout{w: w}
}

func (s *Stdout) Append(_ context.Context, records ...*domain.JobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := json.NewEncoder(s.w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}
