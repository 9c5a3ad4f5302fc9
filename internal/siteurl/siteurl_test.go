package siteurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want PageKind
	}{
		{"/jobs", Listing},
		{"/jobs/", Listing},
		{"/jobs/2", Listing},
		{"/jobs/engineering", Listing},
		{"/jobs/engineering/14", Listing},
		{"/jobs/senior-data-engineer_dublin_123456", Detail},
		{"/jobs/Senior-Data-Engineer_Dublin_123456", Detail},
		{"/jobs/accountant_987", Detail},
		{"/jobs/accountant_", Listing},
		{"/jobs/_123", Listing},
		{"", Listing},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyPath(tt.path), "path %q", tt.path)
	}
}

func TestClassifyPathDeterministic(t *testing.T) {
	t.Parallel()

	const path = "/jobs/senior-data-engineer_dublin_123456"
	first := ClassifyPath(path)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, ClassifyPath(path))
	}
}

func TestNextListingURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"first page appends 2", "https://www.jobgate.ie/jobs", "https://www.jobgate.ie/jobs/2"},
		{"trailing slash", "https://www.jobgate.ie/jobs/", "https://www.jobgate.ie/jobs/2"},
		{"page increments", "https://www.jobgate.ie/jobs/2", "https://www.jobgate.ie/jobs/3"},
		{"category page", "https://www.jobgate.ie/jobs/engineering", "https://www.jobgate.ie/jobs/engineering/2"},
		{"query preserved", "https://www.jobgate.ie/jobs?keywords=go", "https://www.jobgate.ie/jobs/2?keywords=go"},
		{"malformed falls back", "://nope", "https://www.jobgate.ie/jobs/2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextListingURL(tt.in))
		})
	}
}

func TestNextListingURLMonotonic(t *testing.T) {
	t.Parallel()

	u := "https://www.jobgate.ie/jobs"
	u = NextListingURL(u)
	assert.Equal(t, "https://www.jobgate.ie/jobs/2", u)
	u = NextListingURL(u)
	assert.Equal(t, "https://www.jobgate.ie/jobs/3", u)
	u = NextListingURL(u)
	assert.Equal(t, "https://www.jobgate.ie/jobs/4", u)
}

func TestBuildSearchURL(t *testing.T) {
	t.Parallel()

	got := BuildSearchURL(SearchParams{Keyword: "data engineer", Location: "Dublin", PostedWithin: "last_7_days"})
	assert.Equal(t, "https://www.jobgate.ie/jobs?keywords=data+engineer&location=Dublin&posted=7", got)

	got = BuildSearchURL(SearchParams{})
	assert.Equal(t, "https://www.jobgate.ie/jobs", got)

	got = BuildSearchURL(SearchParams{Keyword: "  ", PostedWithin: "any"})
	assert.Equal(t, "https://www.jobgate.ie/jobs", got, "blank keyword and any filter are omitted")

	got = BuildSearchURL(SearchParams{Keyword: "go", Page: 3})
	assert.Equal(t, "https://www.jobgate.ie/jobs/3?keywords=go", got)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"HTTPS://WWW.JobGate.IE/jobs/x_1", "https://www.jobgate.ie/jobs/x_1"},
		{"https://www.jobgate.ie:443/jobs", "https://www.jobgate.ie/jobs"},
		{"http://www.jobgate.ie:80/jobs", "http://www.jobgate.ie/jobs"},
		{"https://www.jobgate.ie/jobs#apply", "https://www.jobgate.ie/jobs"},
		{"https://www.jobgate.ie/jobs?b=2&a=1", "https://www.jobgate.ie/jobs?a=1&b=2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in))
	}
}

func TestAbsolute(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"https://www.jobgate.ie/jobs/x_1",
		Absolute("https://www.jobgate.ie/jobs", "/jobs/x_1"))
	assert.Equal(t,
		"https://other.example/x",
		Absolute("https://www.jobgate.ie/jobs", "https://other.example/x"))
	assert.Equal(t, "", Absolute("https://www.jobgate.ie", ""))
}

func TestJobID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "123456", JobID("https://www.jobgate.ie/jobs/senior-data-engineer_dublin_123456"))
	assert.Equal(t, "", JobID("https://www.jobgate.ie/jobs/engineering"))
	assert.Equal(t, "", JobID("https://www.jobgate.ie/jobs/2"))
}
