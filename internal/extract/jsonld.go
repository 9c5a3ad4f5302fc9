package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/project-tktt/job-harvester/internal/domain"
)

// detailFromLinkedData reads the schema.org JobPosting (and BreadcrumbList)
// blocks a detail page embeds for search engines. Every ld+json block is
// parsed; arrays and @graph containers are flattened into one candidate
// pool before type selection, since the site wraps its objects differently
// across templates.
func (e *Extractor) detailFromLinkedData(doc *goquery.Document, pageURL string) *Partial {
	if doc == nil {
		return nil
	}

	var pool []map[string]any
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		var parsed any
		if err := json.Unmarshal([]byte(text), &parsed); err != nil {
			e.log.Debug("linked-data block failed to parse",
				zap.String("url", pageURL), zap.String("strategy", "jsonld"), zap.Error(err))
			return
		}
		pool = flattenLinkedData(parsed, pool)
	})

	var part *Partial
	for _, candidate := range pool {
		if hasType(candidate, "JobPosting") {
			if part == nil {
				part = jobPostingToPartial(candidate)
			}
		}
		if hasType(candidate, "BreadcrumbList") {
			crumbs := breadcrumbList(candidate)
			if len(crumbs) > 0 {
				if part == nil {
					part = &Partial{}
				}
				if len(part.Breadcrumbs) == 0 {
					part.Breadcrumbs = crumbs
				}
			}
		}
	}
	return part
}

// flattenLinkedData appends every object reachable from v (top level,
// array elements, @graph members) to the pool.
func flattenLinkedData(v any, pool []map[string]any) []map[string]any {
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			pool = flattenLinkedData(item, pool)
		}
	case map[string]any:
		pool = append(pool, val)
		if graph, ok := val["@graph"].([]any); ok {
			for _, item := range graph {
				pool = flattenLinkedData(item, pool)
			}
		}
	}
	return pool
}

// hasType matches the @type field whether it is a scalar or an array.
func hasType(obj map[string]any, want string) bool {
	switch t := obj["@type"].(type) {
	case string:
		return strings.EqualFold(t, want)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, want) {
				return true
			}
		}
	}
	return false
}

func jobPostingToPartial(posting map[string]any) *Partial {
	part := &Partial{
		Title:           getString(posting, "title"),
		DescriptionHTML: getString(posting, "description"),
		PostedAt:        getString(posting, "datePosted"),
		ValidThrough:    getString(posting, "validThrough"),
		Benefits:        getString(posting, "jobBenefits"),
		Requirements:    getString(posting, "qualifications", "experienceRequirements"),
		JobCategory:     getString(posting, "occupationalCategory"),
		RemoteType:      getString(posting, "jobLocationType"),
		WorkHours:       getString(posting, "workHours"),
	}

	// employmentType may be a scalar or an array of types.
	if kinds := getStrings(posting, "employmentType"); len(kinds) > 0 {
		part.EmploymentType = strings.Join(kinds, ", ")
	}

	if org := getMap(posting, "hiringOrganization"); org != nil {
		part.Company = getString(org, "name")
	}
	if ident := getMap(posting, "identifier"); ident != nil {
		part.ReferenceNumber = getString(ident, "value")
	}

	part.Location = jobPostingLocation(posting)
	part.Salary = jobPostingSalary(posting)

	for _, field := range []string{"industry", "occupationalCategory", "skills"} {
		for _, tag := range getStrings(posting, field) {
			for _, piece := range strings.Split(tag, ",") {
				if trimmed := strings.TrimSpace(piece); trimmed != "" {
					part.Tags = append(part.Tags, trimmed)
				}
			}
		}
	}
	return part
}

// jobPostingLocation tolerates jobLocation being an object or an array of
// objects; the first address wins.
func jobPostingLocation(posting map[string]any) domain.Location {
	locVal, ok := posting["jobLocation"]
	if !ok {
		return domain.Location{}
	}

	var locMap map[string]any
	switch v := locVal.(type) {
	case map[string]any:
		locMap = v
	case []any:
		if len(v) > 0 {
			locMap, _ = v[0].(map[string]any)
		}
	}
	if locMap == nil {
		return domain.Location{}
	}

	addr := getMap(locMap, "address")
	if addr == nil {
		addr = locMap
	}
	country := getString(addr, "addressCountry")
	if c := getMap(addr, "addressCountry"); c != nil {
		country = getString(c, "name")
	}
	return domain.Location{
		City:       getString(addr, "addressLocality"),
		Region:     getString(addr, "addressRegion"),
		Country:    country,
		PostalCode: getString(addr, "postalCode"),
	}
}

func jobPostingSalary(posting map[string]any) domain.Salary {
	base := getMap(posting, "baseSalary")
	if base == nil {
		return domain.Salary{Text: getString(posting, "estimatedSalary")}
	}

	salary := domain.Salary{Currency: getString(base, "currency")}
	if value := getMap(base, "value"); value != nil {
		salary.Min = getFloat(value, "minValue")
		salary.Max = getFloat(value, "maxValue")
		salary.Interval = getString(value, "unitText")
		if !salary.HasBounds() {
			// A lone value is either a single bound or free text.
			if v := getFloat(value, "value"); v > 0 {
				salary.Min = v
			} else {
				salary.Text = getString(value, "value")
			}
		}
	}
	return salary
}

func breadcrumbList(obj map[string]any) []domain.Breadcrumb {
	var crumbs []domain.Breadcrumb
	for _, item := range getSlice(obj, "itemListElement") {
		el, ok := item.(map[string]any)
		if !ok {
			continue
		}
		crumb := domain.Breadcrumb{
			Position: getInt(el, "position"),
			Name:     getString(el, "name"),
			Link:     getString(el, "item"),
		}
		if nested := getMap(el, "item"); nested != nil {
			crumb.Link = getString(nested, "@id", "url")
			if crumb.Name == "" {
				crumb.Name = getString(nested, "name")
			}
		}
		if crumb.Name != "" {
			crumbs = append(crumbs, crumb)
		}
	}
	return crumbs
}
