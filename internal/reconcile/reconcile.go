// Package reconcile merges the partial results of the detail-mode
// extraction strategies, plus any carried listing preview, into one
// canonical JobRecord. Resolution follows a fixed source-priority order per
// field group: markup heuristics, then the embedded payload, then JSON-LD,
// then the preview.
package reconcile

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/project-tktt/job-harvester/internal/cleaner"
	"github.com/project-tktt/job-harvester/internal/domain"
	"github.com/project-tktt/job-harvester/internal/extract"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Reconciler builds persisted records out of extraction partials.
type Reconciler struct {
	clean *cleaner.Cleaner
}

// New creates a Reconciler backed by the given HTML cleaner.
func New(clean *cleaner.Cleaner) *Reconciler {
	return &Reconciler{clean: clean}
}

// Build merges the detail extraction results with the originating preview.
// It returns nil when the merged record fails the title+URL invariant.
func (r *Reconciler) Build(jobURL string, det extract.DetailResult, preview *domain.JobPreview) *domain.JobRecord {
	ordered := []*extract.Partial{det.Markup, det.Payload, det.LinkedData, previewPartial(preview)}

	rec := &domain.JobRecord{
		JobURL:     sanitize(jobURL),
		JobID:      firstNonEmpty(ordered, func(p *extract.Partial) string { return p.JobID }),
		Title:      firstNonEmpty(ordered, func(p *extract.Partial) string { return p.Title }),
		Company:    firstNonEmpty(ordered, func(p *extract.Partial) string { return p.Company }),
		JobType:    firstNonEmpty(ordered, func(p *extract.Partial) string { return p.JobType }),
		PostedAt:   firstNonEmpty(ordered, func(p *extract.Partial) string { return p.PostedAt }),
		Seniority:  firstNonEmpty(ordered, func(p *extract.Partial) string { return p.Seniority }),
		WorkHours:  firstNonEmpty(ordered, func(p *extract.Partial) string { return p.WorkHours }),
		RemoteType: firstNonEmpty(ordered, func(p *extract.Partial) string { return p.RemoteType }),

		JobCategory:     firstNonEmpty(ordered, func(p *extract.Partial) string { return p.JobCategory }),
		ReferenceNumber: firstNonEmpty(ordered, func(p *extract.Partial) string { return p.ReferenceNumber }),
		EmploymentType:  firstNonEmpty(ordered, func(p *extract.Partial) string { return p.EmploymentType }),
		ValidThrough:    firstNonEmpty(ordered, func(p *extract.Partial) string { return p.ValidThrough }),

		ScrapedAt: time.Now().UTC(),
	}

	r.resolveLocation(rec, ordered)
	r.resolveSalary(rec, ordered)
	r.resolveDescription(rec, ordered, preview)
	if preview != nil {
		rec.Snippet = r.clean.Text(preview.Snippet)
	}
	rec.Requirements = r.clean.Text(firstNonEmpty(ordered, func(p *extract.Partial) string { return p.Requirements }))
	rec.Benefits = r.clean.Text(firstNonEmpty(ordered, func(p *extract.Partial) string { return p.Benefits }))
	rec.Tags = unionTags(ordered, preview)

	for _, p := range ordered {
		if p != nil && len(p.Breadcrumbs) > 0 {
			rec.Breadcrumbs = p.Breadcrumbs
			break
		}
	}

	if det.Structured() {
		rec.DataSource = domain.SourceDetail
	} else {
		rec.DataSource = domain.SourcePreviewFallback
	}

	if !rec.Valid() {
		return nil
	}
	return rec
}

// FlattenPreview converts a listing preview straight into a record, used
// when detail collection is disabled or the run ends with previews pending.
func (r *Reconciler) FlattenPreview(preview *domain.JobPreview) *domain.JobRecord {
	if preview == nil {
		return nil
	}
	rec := r.Build(preview.JobURL, extract.DetailResult{}, preview)
	if rec == nil {
		return nil
	}
	rec.DataSource = domain.SourceList
	return rec
}

// resolveLocation resolves each sub-field independently across sources and
// recomposes the display string from whichever sub-fields are non-empty. An
// upstream display string is only trusted when no sub-field exists at all.
func (r *Reconciler) resolveLocation(rec *domain.JobRecord, ordered []*extract.Partial) {
	rec.LocationCity = firstNonEmpty(ordered, func(p *extract.Partial) string { return p.Location.City })
	rec.LocationRegion = firstNonEmpty(ordered, func(p *extract.Partial) string { return p.Location.Region })
	rec.LocationCountry = firstNonEmpty(ordered, func(p *extract.Partial) string { return p.Location.Country })
	rec.LocationPostalCode = firstNonEmpty(ordered, func(p *extract.Partial) string { return p.Location.PostalCode })

	var parts []string
	for _, part := range []string{rec.LocationCity, rec.LocationRegion, rec.LocationCountry, rec.LocationPostalCode} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		rec.Location = strings.Join(parts, ", ")
	} else {
		rec.Location = firstNonEmpty(ordered, func(p *extract.Partial) string { return p.Location.Display })
	}
}

// resolveSalary resolves the numeric bounds, currency, interval and text
// independently, then synthesizes the human-readable display string.
func (r *Reconciler) resolveSalary(rec *domain.JobRecord, ordered []*extract.Partial) {
	rec.SalaryMin = firstNonZero(ordered, func(p *extract.Partial) float64 { return p.Salary.Min })
	rec.SalaryMax = firstNonZero(ordered, func(p *extract.Partial) float64 { return p.Salary.Max })
	rec.SalaryCurrency = firstNonEmpty(ordered, func(p *extract.Partial) string { return p.Salary.Currency })
	rec.SalaryInterval = firstNonEmpty(ordered, func(p *extract.Partial) string { return p.Salary.Interval })
	rec.Salary = FormatSalary(domain.Salary{
		Min:      rec.SalaryMin,
		Max:      rec.SalaryMax,
		Currency: rec.SalaryCurrency,
		Interval: rec.SalaryInterval,
		Text:     firstNonEmpty(ordered, func(p *extract.Partial) string { return p.Salary.Text }),
	})
}

// resolveDescription picks the winning HTML by priority, then derives the
// plain text from that exact HTML so the two always agree.
func (r *Reconciler) resolveDescription(rec *domain.JobRecord, ordered []*extract.Partial, preview *domain.JobPreview) {
	raw := firstNonEmpty(ordered, func(p *extract.Partial) string { return p.DescriptionHTML })
	if raw == "" && preview != nil {
		raw = preview.Snippet
	}
	if raw == "" {
		return
	}
	rec.DescriptionHTML = r.clean.HTML(raw)
	rec.DescriptionText = r.clean.Text(rec.DescriptionHTML)
}

// FormatSalary renders the canonical salary display string: "MIN - MAX" when
// both bounds exist and differ, a single bound otherwise, prefixed with the
// currency and suffixed with the interval. Without numeric bounds it falls
// back to the captured free text.
func FormatSalary(s domain.Salary) string {
	if !s.HasBounds() {
		return sanitize(s.Text)
	}

	var b strings.Builder
	if s.Currency != "" {
		b.WriteString(s.Currency)
		b.WriteString(" ")
	}
	switch {
	case s.Min > 0 && s.Max > 0 && s.Min != s.Max:
		b.WriteString(formatBound(s.Min))
		b.WriteString(" - ")
		b.WriteString(formatBound(s.Max))
	case s.Min > 0:
		b.WriteString(formatBound(s.Min))
	default:
		b.WriteString(formatBound(s.Max))
	}
	if s.Interval != "" {
		b.WriteString(" ")
		b.WriteString(s.Interval)
	}
	return b.String()
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// previewPartial adapts a preview to the partial shape so field resolution
// treats it as the lowest-priority source.
func previewPartial(preview *domain.JobPreview) *extract.Partial {
	if preview == nil {
		return nil
	}
	return &extract.Partial{
		JobID:       preview.JobID,
		Title:       preview.Title,
		Company:     preview.Company,
		Location:    preview.Location,
		Salary:      preview.Salary,
		JobType:     preview.JobType,
		JobCategory: preview.JobCategory,
		PostedAt:    preview.PostedAt,
	}
}

// unionTags merges specialism-like values across all sources: a union, not
// an override. Order is not significant; sorted for determinism.
func unionTags(ordered []*extract.Partial, preview *domain.JobPreview) []string {
	set := mapset.NewThreadUnsafeSet[string]()
	for _, p := range ordered {
		if p == nil {
			continue
		}
		for _, tag := range p.Tags {
			if t := sanitize(tag); t != "" {
				set.Add(t)
			}
		}
		if t := sanitize(p.JobCategory); t != "" {
			set.Add(t)
		}
	}
	if preview != nil {
		if t := sanitize(preview.JobCategory); t != "" {
			set.Add(t)
		}
	}
	if set.Cardinality() == 0 {
		return nil
	}
	tags := set.ToSlice()
	sort.Strings(tags)
	return tags
}

// firstNonEmpty applies the source-priority order: the first partial whose
// field sanitizes to something non-empty wins.
func firstNonEmpty(ordered []*extract.Partial, get func(*extract.Partial) string) string {
	for _, p := range ordered {
		if p == nil {
			continue
		}
		if v := sanitize(get(p)); v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(ordered []*extract.Partial, get func(*extract.Partial) float64) float64 {
	for _, p := range ordered {
		if p == nil {
			continue
		}
		if v := get(p); v > 0 {
			return v
		}
	}
	return 0
}

// sanitize collapses whitespace and trims. A field that sanitizes to empty
// is omitted from the record entirely rather than stored as "".
func sanitize(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
