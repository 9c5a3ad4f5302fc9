package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-tktt/job-harvester/internal/cleaner"
	"github.com/project-tktt/job-harvester/internal/domain"
	"github.com/project-tktt/job-harvester/internal/extract"
)

func newReconciler() *Reconciler {
	return New(cleaner.New())
}

func TestBuildPriorityOrder(t *testing.T) {
	t.Parallel()
	r := newReconciler()

	det := extract.DetailResult{
		Markup:     &extract.Partial{Title: "Markup Title"},
		Payload:    &extract.Partial{Title: "Payload Title", Company: "Payload Co"},
		LinkedData: &extract.Partial{Title: "LD Title", Company: "LD Co", PostedAt: "2026-08-01"},
	}
	preview := &domain.JobPreview{Title: "Preview Title", JobType: "Permanent"}

	rec := r.Build("https://www.jobgate.ie/jobs/x_1", det, preview)
	require.NotNil(t, rec)
	assert.Equal(t, "Markup Title", rec.Title, "markup outranks everything")
	assert.Equal(t, "Payload Co", rec.Company, "payload fills what markup lacks")
	assert.Equal(t, "2026-08-01", rec.PostedAt, "linked data fills the rest")
	assert.Equal(t, "Permanent", rec.JobType, "preview is the last resort")
	assert.Equal(t, domain.SourceDetail, rec.DataSource)
}

func TestBuildWhitespaceOnlyFieldLosesPriority(t *testing.T) {
	t.Parallel()
	r := newReconciler()

	det := extract.DetailResult{
		Markup:  &extract.Partial{Title: "  \n\t "},
		Payload: &extract.Partial{Title: "Payload Title"},
	}
	rec := r.Build("https://www.jobgate.ie/jobs/x_2", det, nil)
	require.NotNil(t, rec)
	assert.Equal(t, "Payload Title", rec.Title)
}

func TestBuildInvalidWithoutTitle(t *testing.T) {
	t.Parallel()
	r := newReconciler()

	det := extract.DetailResult{Payload: &extract.Partial{Company: "Only Co"}}
	assert.Nil(t, r.Build("https://www.jobgate.ie/jobs/x_3", det, nil))
}

func TestBuildPreviewFallbackProvenance(t *testing.T) {
	t.Parallel()
	r := newReconciler()

	preview := &domain.JobPreview{Title: "Fallback Job"}
	rec := r.Build("https://www.jobgate.ie/jobs/x_4", extract.DetailResult{}, preview)
	require.NotNil(t, rec)
	assert.Equal(t, domain.SourcePreviewFallback, rec.DataSource)
}

func TestFlattenPreview(t *testing.T) {
	t.Parallel()
	r := newReconciler()

	preview := &domain.JobPreview{
		JobID:   "77",
		JobURL:  "https://www.jobgate.ie/jobs/flat_77",
		Title:   "Flattened",
		Company: "Acme",
		Snippet: "<b>Short</b> blurb",
	}
	rec := r.FlattenPreview(preview)
	require.NotNil(t, rec)
	assert.Equal(t, domain.SourceList, rec.DataSource)
	assert.Equal(t, "77", rec.JobID)
	assert.Equal(t, "Short blurb", rec.Snippet)

	assert.Nil(t, r.FlattenPreview(nil))
	assert.Nil(t, r.FlattenPreview(&domain.JobPreview{JobURL: "https://x/y_1"}), "no title means no record")
}

func TestBuildEmptyFieldsAbsentFromJSON(t *testing.T) {
	t.Parallel()
	r := newReconciler()

	det := extract.DetailResult{Payload: &extract.Partial{Title: "Sparse", Company: "   "}}
	rec := r.Build("https://www.jobgate.ie/jobs/x_5", det, nil)
	require.NotNil(t, rec)

	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.Equal(t, "Sparse", out["title"])
	_, hasCompany := out["company"]
	assert.False(t, hasCompany, "whitespace-only fields are omitted")
	_, hasSalary := out["salary"]
	assert.False(t, hasSalary)
}

func TestBuildDescriptionTextMatchesHTML(t *testing.T) {
	t.Parallel()
	r := newReconciler()

	det := extract.DetailResult{
		Markup:  &extract.Partial{Title: "T", DescriptionHTML: `<div><p>Build <a href="#">things</a>.</p><script>x()</script></div>`},
		Payload: &extract.Partial{DescriptionHTML: "<p>Loser description.</p>"},
	}
	rec := r.Build("https://www.jobgate.ie/jobs/x_6", det, nil)
	require.NotNil(t, rec)
	assert.Equal(t, "<p>Build things.</p>", rec.DescriptionHTML)
	assert.Equal(t, "Build things.", rec.DescriptionText)
	assert.NotContains(t, rec.DescriptionText, "Loser")
}

func TestResolveLocationRecomposesDisplay(t *testing.T) {
	t.Parallel()
	r := newReconciler()

	det := extract.DetailResult{
		Markup:  &extract.Partial{Title: "T", Location: domain.Location{City: "Dublin"}},
		Payload: &extract.Partial{Location: domain.Location{Region: "Leinster", Country: "Ireland", Display: "Payload Display"}},
	}
	rec := r.Build("https://www.jobgate.ie/jobs/x_7", det, nil)
	require.NotNil(t, rec)
	assert.Equal(t, "Dublin", rec.LocationCity)
	assert.Equal(t, "Leinster", rec.LocationRegion)
	assert.Equal(t, "Dublin, Leinster, Ireland", rec.Location, "display is recomposed, not taken upstream")
}

func TestResolveLocationDisplayFallback(t *testing.T) {
	t.Parallel()
	r := newReconciler()

	det := extract.DetailResult{
		Markup: &extract.Partial{Title: "T", Location: domain.Location{Display: "Somewhere, Ireland"}},
	}
	rec := r.Build("https://www.jobgate.ie/jobs/x_8", det, nil)
	require.NotNil(t, rec)
	assert.Equal(t, "Somewhere, Ireland", rec.Location)
}

func TestFormatSalary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   domain.Salary
		want string
	}{
		{"range", domain.Salary{Min: 45000, Max: 55000, Currency: "EUR", Interval: "yearly"}, "EUR 45000 - 55000 yearly"},
		{"min only", domain.Salary{Min: 40000, Currency: "EUR"}, "EUR 40000"},
		{"max only", domain.Salary{Max: 60000}, "60000"},
		{"equal bounds", domain.Salary{Min: 50000, Max: 50000, Currency: "GBP"}, "GBP 50000"},
		{"text fallback", domain.Salary{Text: "  Competitive\tsalary "}, "Competitive salary"},
		{"nothing", domain.Salary{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSalary(tt.in))
		})
	}
}

func TestUnionTags(t *testing.T) {
	t.Parallel()
	r := newReconciler()

	det := extract.DetailResult{
		Markup:     &extract.Partial{Title: "T", Tags: []string{"SQL", "BI"}},
		Payload:    &extract.Partial{Tags: []string{"BI", "ETL "}, JobCategory: "Data"},
		LinkedData: &extract.Partial{Tags: []string{"  "}},
	}
	preview := &domain.JobPreview{JobCategory: "Analytics"}

	rec := r.Build("https://www.jobgate.ie/jobs/x_9", det, preview)
	require.NotNil(t, rec)
	assert.Equal(t, []string{"Analytics", "BI", "Data", "ETL", "SQL"}, rec.Tags)
}
