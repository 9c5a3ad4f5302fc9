// Package siteurl classifies and constructs JobGate URLs. Pure functions,
// no state: classification must be deterministic across repeated calls.
package siteurl

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultOrigin is the fallback origin used when an input URL cannot be
	// parsed. A single bad URL must never abort a run.
	DefaultOrigin = "https://www.jobgate.ie"

	// ListingPath is the root search-result path.
	ListingPath = "/jobs"
)

// PageKind tags a URL as a search-result container or a single posting.
type PageKind int

const (
	Listing PageKind = iota
	Detail
)

func (k PageKind) String() string {
	if k == Detail {
		return "detail"
	}
	return "listing"
}

// Detail paths end in a slug with an underscore-delimited numeric id, e.g.
// /jobs/senior-data-engineer_dublin_123456. Category and search paths end in
// a plain slug or a bare page number.
var detailSegmentRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*(?:_[a-z0-9-]+)*_[0-9]+$`)

var pageSegmentRe = regexp.MustCompile(`^[0-9]+$`)

// ClassifyPath decides whether a path points at a listing page or a job
// detail page.
func ClassifyPath(path string) PageKind {
	seg := lastSegment(path)
	if seg == "" {
		return Listing
	}
	if detailSegmentRe.MatchString(strings.ToLower(seg)) {
		return Detail
	}
	return Listing
}

// NextListingURL computes the next page in the pagination sequence. A URL
// without an explicit page segment advances to page 2; one with a page
// segment increments it. The sequence is strictly increasing with no gaps.
func NextListingURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return DefaultOrigin + ListingPath + "/2"
	}

	path := strings.TrimSuffix(u.Path, "/")
	seg := lastSegment(path)
	if pageSegmentRe.MatchString(seg) {
		page, _ := strconv.Atoi(seg)
		path = path[:strings.LastIndex(path, "/")] + "/" + strconv.Itoa(page+1)
	} else {
		if path == "" {
			path = ListingPath
		}
		path += "/2"
	}
	u.Path = path
	return u.String()
}

// SearchParams are the filter inputs for a constructed listing URL.
type SearchParams struct {
	Keyword      string
	Location     string
	PostedWithin string // any | last_24_hours | last_7_days | last_30_days
	Page         int
}

// postedFilterDays maps the posted-date filter enum to the site's query
// value. "any" (or anything unrecognized) is omitted entirely.
var postedFilterDays = map[string]string{
	"last_24_hours": "1",
	"last_7_days":   "7",
	"last_30_days":  "30",
}

// BuildSearchURL constructs a listing URL from filter parameters. Blank
// parameters are omitted rather than emitted as empty query values.
func BuildSearchURL(p SearchParams) string {
	u, _ := url.Parse(DefaultOrigin)
	u.Path = ListingPath
	if p.Page > 1 {
		u.Path += "/" + strconv.Itoa(p.Page)
	}

	q := url.Values{}
	if kw := strings.TrimSpace(p.Keyword); kw != "" {
		q.Set("keywords", kw)
	}
	if loc := strings.TrimSpace(p.Location); loc != "" {
		q.Set("location", loc)
	}
	if days, ok := postedFilterDays[p.PostedWithin]; ok {
		q.Set("posted", days)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Normalize standardizes a URL for use as a dedup key: lowercased scheme and
// host, default ports and fragments removed, query parameters sorted.
func Normalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Scheme == "http" {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}
	u.Fragment = ""
	u.RawQuery = u.Query().Encode()
	return u.String()
}

// Absolute resolves href against base, returning href unchanged when it is
// already absolute or base cannot be parsed.
func Absolute(base, href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}

// JobID extracts the underscore-delimited numeric id from a detail URL,
// returning "" for anything that does not classify as a detail path.
func JobID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	seg := strings.ToLower(lastSegment(u.Path))
	if !detailSegmentRe.MatchString(seg) {
		return ""
	}
	return seg[strings.LastIndex(seg, "_")+1:]
}

func lastSegment(path string) string {
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
