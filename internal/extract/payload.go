package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/project-tktt/job-harvester/internal/domain"
	"github.com/project-tktt/job-harvester/internal/siteurl"
)

// payloadMarker is the global the site's server injects into an inline
// script for client-side hydration, e.g. jobGateState({...}).
const payloadMarker = "jobGateState"

// scanBalancedObject returns the JSON object starting at the first '{' in s.
// The object's byte length is unknown up front and it can contain nested
// braces and brace characters inside quoted strings, so this tracks nesting
// depth over the character stream instead of slicing at a fixed length.
func scanBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// findPayload locates the hydration payload in the document's inline
// scripts, falling back to the raw body text, and parses it.
func (e *Extractor) findPayload(doc *goquery.Document, rawBody, pageURL string) map[string]any {
	var blob string

	if doc != nil {
		doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := s.Text()
			idx := strings.Index(text, payloadMarker)
			if idx < 0 {
				return true
			}
			if obj, ok := scanBalancedObject(text[idx+len(payloadMarker):]); ok {
				blob = obj
				return false
			}
			return true
		})
	}

	if blob == "" && rawBody != "" {
		if idx := strings.Index(rawBody, payloadMarker); idx >= 0 {
			blob, _ = scanBalancedObject(rawBody[idx+len(payloadMarker):])
		}
	}

	if blob == "" {
		return nil
	}

	var root map[string]any
	if err := json.Unmarshal([]byte(blob), &root); err != nil {
		e.log.Debug("embedded payload failed to parse",
			zap.String("url", pageURL), zap.String("strategy", "payload"), zap.Error(err))
		return nil
	}
	return root
}

// listingFromPayload reads the search-hits array out of the payload. The
// bool result reports whether a payload was found at all, so the caller can
// distinguish "no payload" from "payload with zero hits".
func (e *Extractor) listingFromPayload(doc *goquery.Document, rawBody, pageURL string) ([]*domain.JobPreview, int, bool) {
	root := e.findPayload(doc, rawBody, pageURL)
	if root == nil {
		return nil, 0, false
	}

	search := getMap(root, "searchData", "jobSearch")
	if search == nil {
		return nil, 0, false
	}
	hitsWrap := getMap(search, "hits")
	if hitsWrap == nil {
		return nil, 0, false
	}

	total := 0
	if t := getMap(hitsWrap, "total"); t != nil {
		total = getInt(t, "value")
	} else {
		total = getInt(hitsWrap, "total")
	}

	var previews []*domain.JobPreview
	for _, hit := range getSlice(hitsWrap, "hits") {
		hitMap, ok := hit.(map[string]any)
		if !ok {
			continue
		}
		if p := e.hitToPreview(hitMap, pageURL); p != nil {
			previews = append(previews, p)
		}
	}
	return previews, total, true
}

// detailFromPayload reads the job-data object. Detail pages embed the same
// hit shape as search pages; the first hit wins. Some templates inline the
// _source object directly, so that shape is accepted too.
func (e *Extractor) detailFromPayload(doc *goquery.Document, rawBody, pageURL string) *Partial {
	root := e.findPayload(doc, rawBody, pageURL)
	if root == nil {
		return nil
	}

	jobData := getMap(root, "jobData")
	if jobData == nil {
		return nil
	}

	source := jobData
	if hitsWrap := getMap(jobData, "hits"); hitsWrap != nil {
		hits := getSlice(hitsWrap, "hits")
		if len(hits) == 0 {
			return nil
		}
		hitMap, ok := hits[0].(map[string]any)
		if !ok {
			return nil
		}
		source = getMap(hitMap, "_source")
		if source == nil {
			return nil
		}
	} else if s := getMap(jobData, "_source"); s != nil {
		source = s
	}

	return sourceToPartial(source)
}

// hitToPreview maps one search hit's _source document to a JobPreview.
func (e *Extractor) hitToPreview(hit map[string]any, pageURL string) *domain.JobPreview {
	source := getMap(hit, "_source")
	if source == nil {
		return nil
	}
	part := sourceToPartial(source)

	info := getMap(source, "JobInformation")
	link := ""
	if info != nil {
		link = getString(info, "Link", "Url")
	}
	if link == "" {
		return nil
	}

	return &domain.JobPreview{
		JobID:       part.JobID,
		JobURL:      siteurl.Normalize(siteurl.Absolute(pageURL, link)),
		Title:       part.Title,
		Company:     part.Company,
		Location:    part.Location,
		JobType:     part.JobType,
		JobCategory: part.JobCategory,
		PostedAt:    part.PostedAt,
		Salary:      part.Salary,
		Snippet:     part.DescriptionHTML,
	}
}

// sourceToPartial maps the payload's _source document shape onto a Partial.
func sourceToPartial(source map[string]any) *Partial {
	part := &Partial{}

	if info := getMap(source, "JobInformation"); info != nil {
		part.JobID = getString(info, "JobId", "Id")
		part.Title = getString(info, "Title")
		part.JobType = getString(info, "JobType", "ContractType")
		part.JobCategory = getString(info, "Category")
		part.PostedAt = getString(info, "PostedDate", "Posted")
		part.DescriptionHTML = getString(info, "Description")
		part.ReferenceNumber = getString(info, "Reference")
		part.Seniority = getString(info, "Seniority")
		part.WorkHours = getString(info, "WorkHours", "Hours")
		part.RemoteType = getString(info, "RemoteType", "WorkplaceType")
	}
	if company := getMap(source, "CompanyInformation"); company != nil {
		part.Company = getString(company, "Name", "CompanyName")
	}
	if loc := getMap(source, "LocationInformation"); loc != nil {
		part.Location = domain.Location{
			City:       getString(loc, "City"),
			Region:     getString(loc, "Region", "County"),
			Country:    getString(loc, "Country"),
			PostalCode: getString(loc, "PostalCode", "Postcode"),
			Display:    getString(loc, "Display", "Name"),
		}
	}
	if sal := getMap(source, "SalaryInformation"); sal != nil {
		part.Salary = domain.Salary{
			Min:      getFloat(sal, "Minimum", "Min"),
			Max:      getFloat(sal, "Maximum", "Max"),
			Currency: getString(sal, "Currency"),
			Interval: getString(sal, "Interval", "Period"),
			Text:     getString(sal, "Text", "Display"),
		}
	}
	part.Tags = getStrings(source, "Specialisms", "Categories")

	return part
}
