package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/project-tktt/job-harvester/internal/domain"
	"github.com/project-tktt/job-harvester/internal/siteurl"
)

// The markup strategy covers pages rendered without the hydration payload
// (degraded or alternate templates). It is selector- and regex-driven and
// tolerates every element being absent.

const jobCardSelector = ".job-result, .job-card, article.job, li[data-jobid], div[data-jobid]"

// maxSectionHTML caps how much markup one section collection may swallow,
// so a page with missing stop markers cannot pull trailing "related jobs"
// listings into the description.
const maxSectionHTML = 20000

// maxScanBytes bounds the raw-text regex scans the same way.
const maxScanBytes = 20000

type sectionKind int

const (
	sectionDescription sectionKind = iota
	sectionRequirements
	sectionBenefits
)

var sectionLabels = map[string]sectionKind{
	"summary":               sectionDescription,
	"description":           sectionDescription,
	"job description":       sectionDescription,
	"job details":           sectionDescription,
	"about the role":        sectionDescription,
	"the role":              sectionDescription,
	"about the company":     sectionDescription,
	"about us":              sectionDescription,
	"requirements":          sectionRequirements,
	"key requirements":      sectionRequirements,
	"your profile":          sectionRequirements,
	"skills and experience": sectionRequirements,
	"benefits":              sectionBenefits,
	"what we offer":         sectionBenefits,
	"package":               sectionBenefits,
}

var stopMarkers = []string{
	"related jobs",
	"similar jobs",
	"share this job",
	"apply now",
	"more jobs from this company",
}

var (
	salaryTextRe = regexp.MustCompile(`(?i)[€£$]\s?\d[\d,]*(?:\.\d+)?\s?k?(?:\s?-\s?[€£$]?\s?\d[\d,]*(?:\.\d+)?\s?k?)?(?:\s?per\s+(?:annum|year|month|week|day|hour))?`)
	contractRe   = regexp.MustCompile(`(?i)\b(permanent|temporary|contract|full[ -]time|part[ -]time|fixed[ -]term|internship|apprenticeship)\b`)
	postedRe     = regexp.MustCompile(`(?i)(?:posted|published)(?:\s+on)?[:\s]+(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}|\d{1,2}\s+\w+\s+\d{4}|\d+\s+(?:hours?|days?|weeks?)\s+ago|today|yesterday)`)
	closesRe     = regexp.MustCompile(`(?i)(?:closing date|closes?|apply by)[:\s]+(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}|\d{1,2}\s+\w+\s+\d{4})`)
	numberRe     = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?\s?k?`)
)

// listingFromMarkup selects job-card elements and lifts previews off them.
// Runs only when the payload strategy produced zero previews.
func (e *Extractor) listingFromMarkup(doc *goquery.Document, pageURL string) []*domain.JobPreview {
	if doc == nil {
		return nil
	}

	var previews []*domain.JobPreview
	doc.Find(jobCardSelector).Each(func(_ int, card *goquery.Selection) {
		link := card.Find("a[href]").First()
		href, _ := link.Attr("href")
		if href == "" {
			return
		}
		jobURL := siteurl.Normalize(siteurl.Absolute(pageURL, href))

		title := firstText(card, ".job-title, h2, h3")
		if title == "" {
			title = strings.TrimSpace(link.Text())
		}

		preview := &domain.JobPreview{
			JobID:    cardJobID(card, jobURL),
			JobURL:   jobURL,
			Title:    title,
			Company:  firstText(card, ".company, .job-company, .recruiter"),
			PostedAt: firstText(card, "time, .posted, .date"),
			Snippet:  firstText(card, ".snippet, .description, p"),
		}
		if loc := firstText(card, ".location, .job-location"); loc != "" {
			preview.Location = domain.Location{Display: loc}
		}
		if salaryText := firstText(card, ".salary, .job-salary"); salaryText != "" {
			preview.Salary = parseSalaryText(salaryText)
		}
		previews = append(previews, preview)
	})
	return previews
}

// detailFromMarkup walks headings to carve out description, requirements
// and benefits sections, then regex-scans the body text as a last resort
// for salary, contract-type and date substrings.
func (e *Extractor) detailFromMarkup(doc *goquery.Document) *Partial {
	if doc == nil {
		return nil
	}
	part := &Partial{
		Title:   strings.TrimSpace(doc.Find("h1").First().Text()),
		Company: firstText(doc.Selection, ".company-name, .job-company, [data-company]"),
	}
	if loc := firstText(doc.Selection, ".job-location, .location"); loc != "" {
		part.Location = domain.Location{Display: loc}
	}

	doc.Find("h1, h2, h3, h4").Each(func(_ int, heading *goquery.Selection) {
		kind, ok := sectionLabels[normalizeLabel(heading.Text())]
		if !ok {
			return
		}
		content := collectSection(heading)
		if content == "" {
			return
		}
		// First section of each kind wins; later duplicates (e.g. the text
		// repeated behind a "show more" toggle) are dropped.
		switch kind {
		case sectionDescription:
			if part.DescriptionHTML == "" {
				part.DescriptionHTML = content
			}
		case sectionRequirements:
			if part.Requirements == "" {
				part.Requirements = content
			}
		case sectionBenefits:
			if part.Benefits == "" {
				part.Benefits = content
			}
		}
	})

	body := doc.Find("body").Text()
	if len(body) > maxScanBytes {
		body = body[:maxScanBytes]
	}
	if part.Salary.Empty() {
		if m := salaryTextRe.FindString(body); m != "" {
			part.Salary = parseSalaryText(m)
		}
	}
	if m := contractRe.FindString(body); m != "" {
		part.JobType = titleCase(m)
	}
	if m := postedRe.FindStringSubmatch(body); len(m) > 1 {
		part.PostedAt = strings.TrimSpace(m[1])
	}
	if m := closesRe.FindStringSubmatch(body); len(m) > 1 {
		part.ValidThrough = strings.TrimSpace(m[1])
	}

	return part
}

// collectSection gathers the siblings following a heading until the next
// same-or-higher-level heading or a stop marker, bounded by maxSectionHTML.
func collectSection(heading *goquery.Selection) string {
	level := headingLevel(goquery.NodeName(heading))

	var b strings.Builder
	for sib := heading.Next(); sib.Length() > 0; sib = sib.Next() {
		if lv := headingLevel(goquery.NodeName(sib)); lv > 0 && lv <= level {
			break
		}
		if isStopMarker(sib.Text()) {
			break
		}
		chunk, err := goquery.OuterHtml(sib)
		if err != nil {
			continue
		}
		if b.Len()+len(chunk) > maxSectionHTML {
			break
		}
		b.WriteString(chunk)
	}
	return strings.TrimSpace(b.String())
}

// parseSalaryText lifts numeric bounds, currency and interval out of a
// display string like "€45,000 - €55,000 per annum".
func parseSalaryText(text string) domain.Salary {
	salary := domain.Salary{Text: strings.TrimSpace(text)}

	switch {
	case strings.Contains(text, "€"):
		salary.Currency = "EUR"
	case strings.Contains(text, "£"):
		salary.Currency = "GBP"
	case strings.Contains(text, "$"):
		salary.Currency = "USD"
	}

	lower := strings.ToLower(text)
	for _, interval := range []string{"per annum", "per year", "per month", "per week", "per day", "per hour"} {
		if strings.Contains(lower, interval) {
			salary.Interval = interval
			break
		}
	}

	nums := numberRe.FindAllString(text, 2)
	if len(nums) > 0 {
		salary.Min = salaryNumber(nums[0])
	}
	if len(nums) > 1 {
		salary.Max = salaryNumber(nums[1])
	}
	return salary
}

func salaryNumber(s string) float64 {
	s = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, ",", "")))
	mult := 1.0
	if strings.HasSuffix(s, "k") {
		mult = 1000
		s = strings.TrimSpace(strings.TrimSuffix(s, "k"))
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f * mult
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func isStopMarker(text string) bool {
	label := normalizeLabel(text)
	if label == "" {
		return false
	}
	for _, marker := range stopMarkers {
		if label == marker {
			return true
		}
	}
	return false
}

func headingLevel(name string) int {
	if len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6' {
		return int(name[1] - '0')
	}
	return 0
}

func firstText(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).First().Text())
}

func cardJobID(card *goquery.Selection, jobURL string) string {
	if id, ok := card.Attr("data-jobid"); ok && strings.TrimSpace(id) != "" {
		return strings.TrimSpace(id)
	}
	return siteurl.JobID(jobURL)
}
