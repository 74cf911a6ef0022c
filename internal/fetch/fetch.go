// Package fetch provides URL fetching and HTML-to-text processing for page scraping.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jonathan/outreach-agent/internal/logging"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 15 * time.Second

// DefaultUserAgent mimics a desktop browser; many careers sites reject bot agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// maxBodyBytes caps how much of a page is read.
const maxBodyBytes = 5 << 20

// Result holds the raw content from a URL fetch.
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// URL retrieves HTML content from a URL. Any non-2xx status is an error;
// the partial Result is still returned alongside it.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	client := &http.Client{
		Timeout: opts.Timeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	req.Header.Set("User-Agent", opts.UserAgent)
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	result := &Result{
		URL:         urlStr,
		HTML:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	return result, nil
}

// Page is a fetched and parsed HTML page.
type Page struct {
	URL  string
	HTML string
	Text string
	Doc  *goquery.Document
}

// ParsePage parses html and extracts its visible text.
func ParsePage(pageURL, html string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Page{URL: pageURL, HTML: html, Text: VisibleText(doc), Doc: doc}, nil
}

// VisibleText returns the whitespace-normalized body text of doc, without scripts and styles.
// Block elements end a line and inline elements are set off by a space, so text from
// neighbouring elements never runs together. The document itself is not modified.
func VisibleText(doc *goquery.Document) string {
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	var b strings.Builder
	writeText(&b, root)
	return cleanWhitespace(b.String())
}

var hiddenElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true, "head": true,
}

var inlineElements = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "cite": true, "code": true, "em": true,
	"font": true, "i": true, "kbd": true, "label": true, "mark": true, "q": true, "s": true,
	"small": true, "span": true, "strong": true, "sub": true, "sup": true, "time": true, "u": true,
}

func writeText(b *strings.Builder, s *goquery.Selection) {
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		name := goquery.NodeName(child)
		switch {
		case name == "#text":
			b.WriteString(child.Text())
		case strings.HasPrefix(name, "#"), hiddenElements[name]:
		case name == "br":
			b.WriteByte('\n')
		case inlineElements[name]:
			b.WriteByte(' ')
			writeText(b, child)
			b.WriteByte(' ')
		default:
			b.WriteByte('\n')
			writeText(b, child)
			b.WriteByte('\n')
		}
	})
}

// Fetcher retrieves pages, optionally rendering script-heavy pages in a headless browser.
type Fetcher struct {
	Options        *Options
	UseBrowser     bool
	BrowserTimeout time.Duration
}

// NewFetcher returns a Fetcher with the given request timeout.
func NewFetcher(timeout time.Duration, useBrowser bool) *Fetcher {
	opts := DefaultOptions()
	if timeout > 0 {
		opts.Timeout = timeout
	}
	return &Fetcher{Options: opts, UseBrowser: useBrowser, BrowserTimeout: DefaultBrowserTimeout}
}

// Fetch retrieves and parses a page. When browser rendering is enabled and the
// plain fetch yields too little text, the rendered page is used instead.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	result, err := URL(ctx, pageURL, f.Options)
	if err != nil {
		return nil, err
	}
	page, err := ParsePage(pageURL, result.HTML)
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "unparseable page", Cause: err}
	}
	if !f.UseBrowser || !ShouldUseBrowser(page.Text) {
		return page, nil
	}

	html, err := RenderWithBrowser(ctx, pageURL, f.BrowserTimeout)
	if err != nil {
		logging.Warn(ctx, "browser rendering failed, using plain fetch", zap.String("url", pageURL), zap.Error(err))
		return page, nil
	}
	rendered, err := ParsePage(pageURL, html)
	if err != nil {
		return page, nil
	}
	return rendered, nil
}

// cleanWhitespace normalizes whitespace in text.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
