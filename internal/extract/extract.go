// Package extract pulls job data out of fetched JobGate documents. Three
// independent strategies cover the site's rendering paths: the embedded
// hydration payload, JSON-LD structured data, and raw-markup heuristics.
// Strategies never fail a page; a strategy that finds nothing contributes
// nothing and the reconciler merges whatever the others produced.
package extract

import (
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/project-tktt/job-harvester/internal/domain"
)

// Partial holds whatever one strategy could read from a page. Zero values
// mean "not found"; the reconciler resolves conflicts across partials.
type Partial struct {
	JobID           string
	Title           string
	Company         string
	Location        domain.Location
	Salary          domain.Salary
	JobType         string
	JobCategory     string
	PostedAt        string
	ReferenceNumber string
	EmploymentType  string
	ValidThrough    string
	DescriptionHTML string
	Requirements    string
	Benefits        string
	Tags            []string
	Seniority       string
	WorkHours       string
	RemoteType      string
	Breadcrumbs     []domain.Breadcrumb
}

// Empty reports whether the strategy found nothing at all.
func (p *Partial) Empty() bool {
	if p == nil {
		return true
	}
	return p.Title == "" && p.Company == "" && p.Location.Empty() && p.Salary.Empty() &&
		p.JobType == "" && p.JobCategory == "" && p.PostedAt == "" &&
		p.ReferenceNumber == "" && p.EmploymentType == "" && p.ValidThrough == "" &&
		p.DescriptionHTML == "" && p.Requirements == "" && p.Benefits == "" &&
		len(p.Tags) == 0 && p.Seniority == "" && p.WorkHours == "" &&
		p.RemoteType == "" && len(p.Breadcrumbs) == 0
}

// ListingResult is the outcome of scanning one search-result page.
type ListingResult struct {
	Previews []*domain.JobPreview
	// TotalReported is the result count the source claims for the whole
	// query, 0 when unknown. The controller uses it to stop paginating.
	TotalReported int
	// FromPayload is true when the embedded payload supplied the previews
	// (as opposed to the markup fallback).
	FromPayload bool
}

// DetailResult carries the partials every detail-mode strategy produced.
type DetailResult struct {
	Payload    *Partial
	LinkedData *Partial
	Markup     *Partial
}

// Usable reports whether the page yielded enough to persist without a
// retry: structured data from either source, or at least a title and
// description from the markup heuristics.
func (d DetailResult) Usable() bool {
	if !d.Payload.Empty() || !d.LinkedData.Empty() {
		return true
	}
	return d.Markup != nil && d.Markup.Title != "" && d.Markup.DescriptionHTML != ""
}

// Structured reports whether either structured strategy produced data.
// Records without structured backing are tagged previewFallback.
func (d DetailResult) Structured() bool {
	return !d.Payload.Empty() || !d.LinkedData.Empty()
}

// Extractor runs the strategies against parsed documents.
type Extractor struct {
	log *zap.Logger
}

// New creates an Extractor.
func New(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{log: log}
}

// Listing extracts previews from a search-result page. The embedded payload
// is preferred; the markup heuristic only runs when it yields zero previews.
// The raw body serves as a fallback substrate for the payload scan when the
// document's script nodes were mangled.
func (e *Extractor) Listing(doc *goquery.Document, rawBody, pageURL string) ListingResult {
	if previews, total, ok := e.listingFromPayload(doc, rawBody, pageURL); ok && len(previews) > 0 {
		return ListingResult{Previews: previews, TotalReported: total, FromPayload: true}
	}

	previews := e.listingFromMarkup(doc, pageURL)
	if len(previews) == 0 {
		e.log.Warn("listing page yielded no previews", zap.String("url", pageURL))
	}
	return ListingResult{Previews: previews}
}

// Detail runs all three detail-mode strategies. They populate different
// field sets, so all run regardless of earlier successes.
func (e *Extractor) Detail(doc *goquery.Document, rawBody, pageURL string) DetailResult {
	return DetailResult{
		Payload:    e.detailFromPayload(doc, rawBody, pageURL),
		LinkedData: e.detailFromLinkedData(doc, pageURL),
		Markup:     e.detailFromMarkup(doc),
	}
}
