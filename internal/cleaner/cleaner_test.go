package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLKeepsAllowedTags(t *testing.T) {
	t.Parallel()
	c := New()

	in := "<h2>About</h2><p>Build <strong>pipelines</strong>.</p><ul><li>Go</li></ul>"
	assert.Equal(t, in, c.HTML(in))
}

func TestHTMLUnwrapsDisallowedTags(t *testing.T) {
	t.Parallel()
	c := New()

	in := `<div class="x"><p>Hello <a href="https://evil.example">world</a></p></div>`
	assert.Equal(t, "<p>Hello world</p>", c.HTML(in))
}

func TestHTMLDropsScriptContent(t *testing.T) {
	t.Parallel()
	c := New()

	in := "<p>ok</p><script>alert(1)</script>"
	got := c.HTML(in)
	assert.Equal(t, "<p>ok</p>", got)
	assert.NotContains(t, got, "alert")
}

func TestTextCollapsesWhitespaceAndEntities(t *testing.T) {
	t.Parallel()
	c := New()

	in := "<p>Salary:&nbsp;&euro;50,000</p>\n\n  <p>per   year</p>"
	assert.Equal(t, "Salary: €50,000 per year", c.Text(in))
}

func TestTextEmptyInput(t *testing.T) {
	t.Parallel()
	c := New()

	assert.Equal(t, "", c.Text("   \n\t "))
	assert.Equal(t, "", c.HTML(""))
}
