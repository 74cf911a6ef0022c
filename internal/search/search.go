// Package search issues web search queries used for contact discovery.
package search

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/outreach-agent/internal/ratelimit"
)

// MaxResults is the largest page the search service returns.
const MaxResults = 10

// DefaultTimeout bounds a single search call.
const DefaultTimeout = 20 * time.Second

// Query is one search request.
type Query struct {
	Text   string
	Num    int
	Locale string
}

// Result is one search hit.
type Result struct {
	Title   string
	Snippet string
	Link    string
}

// Searcher runs search queries.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Result, error)
}

// Error represents a failed search call.
type Error struct {
	Query   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("search error for %q: %s: %v", e.Query, e.Message, e.Cause)
	}
	return fmt.Sprintf("search error for %q: %s", e.Query, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// GoogleOptions configures the Custom Search client.
type GoogleOptions struct {
	APIKey  string
	CX      string
	Timeout time.Duration
	// Endpoint overrides the service base URL.
	Endpoint string
}

// Google is a Searcher backed by the Google Custom Search JSON API.
type Google struct {
	svc     *customsearch.Service
	cx      string
	timeout time.Duration
}

// NewGoogle creates a Custom Search client.
func NewGoogle(ctx context.Context, opts GoogleOptions) (*Google, error) {
	if opts.APIKey == "" || opts.CX == "" {
		return nil, fmt.Errorf("search API key and engine id are required")
	}
	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	svc, err := customsearch.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Google{svc: svc, cx: opts.CX, timeout: timeout}, nil
}

// Search runs one query. Num is clamped to [1, MaxResults].
func (g *Google) Search(ctx context.Context, q Query) ([]Result, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	call := g.svc.Cse.List().Cx(g.cx).Q(q.Text).Num(int64(clampNum(q.Num))).Context(ctx)
	if q.Locale != "" {
		call = call.Gl(q.Locale)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, &Error{Query: q.Text, Message: "request failed", Cause: err}
	}

	results := make([]Result, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, Result{
			Title:   item.Title,
			Snippet: item.Snippet,
			Link:    item.Link,
		})
	}
	return results, nil
}

func clampNum(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxResults {
		return MaxResults
	}
	return n
}

// Throttled waits on a pacer before each search.
type Throttled struct {
	next  Searcher
	pacer ratelimit.Pacer
}

// NewThrottled wraps next so calls are spaced by pacer.
func NewThrottled(next Searcher, pacer ratelimit.Pacer) *Throttled {
	return &Throttled{next: next, pacer: pacer}
}

// Search waits for the pacer and then delegates.
func (t *Throttled) Search(ctx context.Context, q Query) ([]Result, error) {
	if err := t.pacer.Wait(ctx); err != nil {
		return nil, &Error{Query: q.Text, Message: "rate limiter wait cancelled", Cause: err}
	}
	return t.next.Search(ctx, q)
}
