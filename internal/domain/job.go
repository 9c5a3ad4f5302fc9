package domain

import "time"

// DataSource records which extraction path produced a persisted record.
type DataSource string

const (
	// SourceList marks records flattened directly from a listing-page preview.
	SourceList DataSource = "list"
	// SourceDetail marks records backed by structured detail-page data.
	SourceDetail DataSource = "detail"
	// SourcePreviewFallback marks detail records where neither the embedded
	// payload nor the JSON-LD block yielded anything, so the record leans on
	// markup heuristics and the carried preview. Reduced confidence.
	SourcePreviewFallback DataSource = "previewFallback"
)

// Location holds the composite location captured from any source.
type Location struct {
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Display    string `json:"display,omitempty"`
}

// Empty reports whether no sub-field was captured.
func (l Location) Empty() bool {
	return l.City == "" && l.Region == "" && l.Country == "" && l.PostalCode == "" && l.Display == ""
}

// Salary holds the composite salary captured from any source. Min/Max are
// zero when the source only published free text.
type Salary struct {
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Interval string  `json:"interval,omitempty"`
	Text     string  `json:"text,omitempty"`
}

// HasBounds reports whether at least one numeric bound was captured.
func (s Salary) HasBounds() bool {
	return s.Min > 0 || s.Max > 0
}

// Empty reports whether nothing at all was captured.
func (s Salary) Empty() bool {
	return !s.HasBounds() && s.Currency == "" && s.Interval == "" && s.Text == ""
}

// Breadcrumb is one entry of the detail page's breadcrumb trail.
type Breadcrumb struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Link     string `json:"link,omitempty"`
}

// JobPreview is a partial record captured while scanning a listing page. It
// is held by the crawl controller until the matching detail fetch completes,
// or flattened straight into a JobRecord when detail collection is off.
type JobPreview struct {
	JobID       string   `json:"job_id,omitempty"`
	JobURL      string   `json:"job_url"`
	Title       string   `json:"title,omitempty"`
	Company     string   `json:"company,omitempty"`
	Location    Location `json:"location,omitempty"`
	JobType     string   `json:"job_type,omitempty"`
	JobCategory string   `json:"job_category,omitempty"`
	PostedAt    string   `json:"posted_at,omitempty"`
	Salary      Salary   `json:"salary,omitempty"`
	Snippet     string   `json:"snippet,omitempty"`
}

// Key returns the dedup key: the source-native job id when present,
// otherwise the canonical job URL.
func (p *JobPreview) Key() string {
	if p.JobID != "" {
		return p.JobID
	}
	return p.JobURL
}

// JobRecord is the canonical persisted unit: a flat superset of JobPreview.
// Every optional field is omitempty so values which sanitize to empty are
// absent from the stored document rather than stored as "".
type JobRecord struct {
	JobID              string       `json:"job_id,omitempty"`
	JobURL             string       `json:"job_url"`
	Title              string       `json:"title"`
	Company            string       `json:"company,omitempty"`
	Location           string       `json:"location,omitempty"`
	LocationCity       string       `json:"location_city,omitempty"`
	LocationRegion     string       `json:"location_region,omitempty"`
	LocationCountry    string       `json:"location_country,omitempty"`
	LocationPostalCode string       `json:"location_postal_code,omitempty"`
	JobType            string       `json:"job_type,omitempty"`
	JobCategory        string       `json:"job_category,omitempty"`
	PostedAt           string       `json:"posted_at,omitempty"`
	Salary             string       `json:"salary,omitempty"`
	SalaryMin          float64      `json:"salary_min,omitempty"`
	SalaryMax          float64      `json:"salary_max,omitempty"`
	SalaryCurrency     string       `json:"salary_currency,omitempty"`
	SalaryInterval     string       `json:"salary_interval,omitempty"`
	Snippet            string       `json:"snippet,omitempty"`
	ReferenceNumber    string       `json:"reference_number,omitempty"`
	EmploymentType     string       `json:"employment_type,omitempty"`
	ValidThrough       string       `json:"valid_through,omitempty"`
	DescriptionHTML    string       `json:"description_html,omitempty"`
	DescriptionText    string       `json:"description_text,omitempty"`
	Requirements       string       `json:"requirements,omitempty"`
	Benefits           string       `json:"benefits,omitempty"`
	Tags               []string     `json:"tags,omitempty"`
	Seniority          string       `json:"seniority,omitempty"`
	WorkHours          string       `json:"work_hours,omitempty"`
	RemoteType         string       `json:"remote_type,omitempty"`
	Breadcrumbs        []Breadcrumb `json:"breadcrumbs,omitempty"`
	DataSource         DataSource   `json:"data_source"`
	ScrapedAt          time.Time    `json:"scraped_at"`
}

// Key returns the dedup key, mirroring JobPreview.Key.
func (r *JobRecord) Key() string {
	if r.JobID != "" {
		return r.JobID
	}
	return r.JobURL
}

// Valid reports whether the record meets the persistence invariant:
// non-empty title and job URL. Records failing this are dropped.
func (r *JobRecord) Valid() bool {
	return r.Title != "" && r.JobURL != ""
}
