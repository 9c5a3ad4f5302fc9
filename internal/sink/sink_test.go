package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-tktt/job-harvester/internal/domain"
)

type failingSink struct{ err error }

func (f failingSink) Append(context.Context, ...*domain.JobRecord) error { return f.err }

func TestMultiFanOut(t *testing.T) {
	t.Parallel()

	a := NewMemory()
	b := NewMemory()
	multi := Multi{a, b}

	rec := &domain.JobRecord{JobURL: "https://www.jobgate.ie/jobs/x_1", Title: "X"}
	require.NoError(t, multi.Append(context.Background(), rec))
	assert.Len(t, a.Records(), 1)
	assert.Len(t, b.Records(), 1)
}

func TestMultiContinuesPastFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	mem := NewMemory()
	multi := Multi{failingSink{err: boom}, mem}

	rec := &domain.JobRecord{JobURL: "https://www.jobgate.ie/jobs/x_2", Title: "Y"}
	err := multi.Append(context.Background(), rec)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, mem.Records(), 1, "later sinks still receive the records")
}

func TestStdoutWritesOneDocumentPerLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewStdout(&buf)
	require.NoError(t, s.Append(context.Background(),
		&domain.JobRecord{JobURL: "https://www.jobgate.ie/jobs/x_1", Title: "One"},
		&domain.JobRecord{JobURL: "https://www.jobgate.ie/jobs/x_2", Title: "Two"},
	))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var out map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &out))
	assert.Equal(t, "One", out["title"])
}
