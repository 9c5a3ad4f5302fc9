// Package cleaner sanitizes scraped HTML with Bluemonday.
package cleaner

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Cleaner sanitizes description HTML down to a restricted allowlist and
// derives plain text from the same input so the two always agree.
type Cleaner struct {
	restricted *bluemonday.Policy
	strict     *bluemonday.Policy
}

// New creates a cleaner whose HTML output carries only paragraph, list,
// heading, emphasis and line-break tags. Anything else is unwrapped (its
// children kept, the tag dropped); script and style contents are removed.
func New() *Cleaner {
	policy := bluemonday.NewPolicy()
	policy.AllowElements("p", "br")
	policy.AllowElements("ul", "ol", "li")
	policy.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowElements("strong", "b", "em", "i")

	return &Cleaner{
		restricted: policy,
		strict:     bluemonday.StrictPolicy(),
	}
}

// HTML sanitizes markup to the restricted allowlist.
func (c *Cleaner) HTML(s string) string {
	return strings.TrimSpace(c.restricted.Sanitize(s))
}

// Text strips all markup, decodes entities, and collapses whitespace.
func (c *Cleaner) Text(s string) string {
	text := c.strict.Sanitize(s)
	text = html.UnescapeString(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
