package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ldDoc(t *testing.T, blocks ...string) string {
	t.Helper()
	html := "<html><head>"
	for _, b := range blocks {
		html += `<script type="application/ld+json">` + b + `</script>`
	}
	return html + "</head><body></body></html>"
}

func TestDetailFromLinkedDataJobPosting(t *testing.T) {
	t.Parallel()
	e := New(nil)

	html := ldDoc(t, `{
		"@context": "https://schema.org",
		"@type": "JobPosting",
		"title": "Site Engineer",
		"description": "<p>Roads and bridges.</p>",
		"datePosted": "2026-08-01",
		"validThrough": "2026-09-30",
		"employmentType": ["FULL_TIME", "PERMANENT"],
		"hiringOrganization": {"@type": "Organization", "name": "BuildCo"},
		"identifier": {"@type": "PropertyValue", "value": "BC-481"},
		"jobLocation": {"@type": "Place", "address": {
			"addressLocality": "Limerick", "addressRegion": "Munster",
			"addressCountry": "IE", "postalCode": "V94"
		}},
		"baseSalary": {"@type": "MonetaryAmount", "currency": "EUR",
			"value": {"@type": "QuantitativeValue", "minValue": 55000, "maxValue": 65000, "unitText": "YEAR"}},
		"skills": "AutoCAD, Surveying"
	}`)

	part := e.detailFromLinkedData(parseDoc(t, html), "https://www.jobgate.ie/jobs/site-engineer_limerick_300")
	require.NotNil(t, part)
	assert.Equal(t, "Site Engineer", part.Title)
	assert.Equal(t, "FULL_TIME, PERMANENT", part.EmploymentType)
	assert.Equal(t, "BuildCo", part.Company)
	assert.Equal(t, "BC-481", part.ReferenceNumber)
	assert.Equal(t, "Limerick", part.Location.City)
	assert.Equal(t, "IE", part.Location.Country)
	assert.Equal(t, 55000.0, part.Salary.Min)
	assert.Equal(t, 65000.0, part.Salary.Max)
	assert.Equal(t, "YEAR", part.Salary.Interval)
	assert.Equal(t, []string{"AutoCAD", "Surveying"}, part.Tags)
}

func TestDetailFromLinkedDataGraphAndTypeArray(t *testing.T) {
	t.Parallel()
	e := New(nil)

	html := ldDoc(t, `{"@graph": [
		{"@type": "WebPage", "name": "ignored"},
		{"@type": ["JobPosting", "Thing"], "title": "Graph Job"}
	]}`)

	part := e.detailFromLinkedData(parseDoc(t, html), "https://www.jobgate.ie/jobs/x_1")
	require.NotNil(t, part)
	assert.Equal(t, "Graph Job", part.Title)
}

func TestDetailFromLinkedDataBreadcrumbs(t *testing.T) {
	t.Parallel()
	e := New(nil)

	html := ldDoc(t,
		`{"@type": "JobPosting", "title": "Crumbed"}`,
		`{"@type": "BreadcrumbList", "itemListElement": [
			{"@type": "ListItem", "position": 1, "name": "Jobs", "item": "https://www.jobgate.ie/jobs"},
			{"@type": "ListItem", "position": 2, "name": "Engineering", "item": {"@id": "https://www.jobgate.ie/jobs/engineering"}}
		]}`)

	part := e.detailFromLinkedData(parseDoc(t, html), "https://www.jobgate.ie/jobs/x_2")
	require.NotNil(t, part)
	assert.Equal(t, "Crumbed", part.Title)
	require.Len(t, part.Breadcrumbs, 2)
	assert.Equal(t, 1, part.Breadcrumbs[0].Position)
	assert.Equal(t, "https://www.jobgate.ie/jobs", part.Breadcrumbs[0].Link)
	assert.Equal(t, "Engineering", part.Breadcrumbs[1].Name)
	assert.Equal(t, "https://www.jobgate.ie/jobs/engineering", part.Breadcrumbs[1].Link)
}

func TestDetailFromLinkedDataCountryObject(t *testing.T) {
	t.Parallel()
	e := New(nil)

	html := ldDoc(t, `{"@type": "JobPosting", "title": "X",
		"jobLocation": [{"address": {"addressLocality": "Cork", "addressCountry": {"@type": "Country", "name": "Ireland"}}}]}`)

	part := e.detailFromLinkedData(parseDoc(t, html), "https://www.jobgate.ie/jobs/x_3")
	require.NotNil(t, part)
	assert.Equal(t, "Cork", part.Location.City)
	assert.Equal(t, "Ireland", part.Location.Country)
}

func TestDetailFromLinkedDataLoneSalaryValue(t *testing.T) {
	t.Parallel()
	e := New(nil)

	html := ldDoc(t, `{"@type": "JobPosting", "title": "X",
		"baseSalary": {"currency": "EUR", "value": {"value": 40000, "unitText": "YEAR"}}}`)

	part := e.detailFromLinkedData(parseDoc(t, html), "https://www.jobgate.ie/jobs/x_4")
	require.NotNil(t, part)
	assert.Equal(t, 40000.0, part.Salary.Min)
	assert.Equal(t, 0.0, part.Salary.Max)
}

func TestDetailFromLinkedDataMalformedBlockSkipped(t *testing.T) {
	t.Parallel()
	e := New(nil)

	html := ldDoc(t,
		`{not json`,
		`{"@type": "JobPosting", "title": "Survivor"}`)

	part := e.detailFromLinkedData(parseDoc(t, html), "https://www.jobgate.ie/jobs/x_5")
	require.NotNil(t, part)
	assert.Equal(t, "Survivor", part.Title)
}

func TestDetailFromLinkedDataNone(t *testing.T) {
	t.Parallel()
	e := New(nil)

	assert.Nil(t, e.detailFromLinkedData(parseDoc(t, "<html><body></body></html>"), "https://www.jobgate.ie/jobs/x_6"))
}
