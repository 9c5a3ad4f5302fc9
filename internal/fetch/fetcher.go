// Package fetch resolves URLs to parsed documents. The colly-backed
// implementation owns transport concerns: user agent, per-request headers
// and referer, timeouts and proxying. Callers see either a Page or a typed
// error that distinguishes transport failure from fetched-but-empty content.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// ErrEmptyContent marks a fetch that succeeded at the transport level but
// returned no usable document body.
var ErrEmptyContent = errors.New("fetched document has empty content")

// Error is the typed fetch failure surfaced to the controller.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Page is a resolved document.
type Page struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       string
	Doc        *goquery.Document
}

// Options carry per-request overrides.
type Options struct {
	Referer string
	Headers map[string]string
}

// Fetcher resolves a URL to a parsed page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, opts Options) (*Page, error)
}

// Config holds transport configuration for the colly fetcher.
type Config struct {
	UserAgent string
	ProxyURL  string
	Timeout   time.Duration
}

// CollyFetcher implements Fetcher on a colly collector.
type CollyFetcher struct {
	collector *colly.Collector
}

// NewCollyFetcher builds the production fetcher.
func NewCollyFetcher(cfg Config) (*CollyFetcher, error) {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(cfg.Timeout)

	if cfg.ProxyURL != "" {
		if err := c.SetProxy(cfg.ProxyURL); err != nil {
			return nil, fmt.Errorf("set proxy: %w", err)
		}
	}

	return &CollyFetcher{collector: c}, nil
}

// Fetch resolves one URL. The collector is cloned per call so concurrent
// fetches do not share handler state.
func (f *CollyFetcher) Fetch(ctx context.Context, rawURL string, opts Options) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}

	var page *Page
	var fetchErr error

	c := f.collector.Clone()

	c.OnRequest(func(r *colly.Request) {
		if opts.Referer != "" {
			r.Headers.Set("Referer", opts.Referer)
		}
		for k, v := range opts.Headers {
			r.Headers.Set(k, v)
		}
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	})

	c.OnResponse(func(r *colly.Response) {
		page = &Page{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Header:     http.Header(*r.Headers),
			Body:       string(r.Body),
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = &Error{URL: rawURL, StatusCode: status, Err: err}
	})

	if err := c.Visit(rawURL); err != nil {
		if fetchErr != nil {
			return nil, fetchErr
		}
		return nil, &Error{URL: rawURL, Err: err}
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if page == nil || strings.TrimSpace(page.Body) == "" {
		return nil, &Error{URL: rawURL, Err: ErrEmptyContent}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return nil, &Error{URL: rawURL, StatusCode: page.StatusCode, Err: fmt.Errorf("parse document: %w", err)}
	}
	page.Doc = doc
	return page, nil
}
