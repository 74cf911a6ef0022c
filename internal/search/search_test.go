package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-agent/internal/ratelimit"
)

func newGoogle(t *testing.T, handler http.HandlerFunc) *Google {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	g, err := NewGoogle(context.Background(), GoogleOptions{
		APIKey:   "test-key",
		CX:       "test-cx",
		Endpoint: server.URL + "/",
	})
	require.NoError(t, err)
	return g
}

func TestGoogle_Search(t *testing.T) {
	var got map[string]string
	g := newGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		got = map[string]string{"q": q.Get("q"), "num": q.Get("num"), "gl": q.Get("gl"), "cx": q.Get("cx")}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]string{
				{"title": "Razorpay Careers", "snippet": "Mail careers@razorpay.com", "link": "https://razorpay.com/jobs"},
				{"title": "Second", "snippet": "", "link": "https://example.com"},
			},
		})
	})

	results, err := g.Search(context.Background(), Query{Text: `"Razorpay" HR email`, Num: 25, Locale: "in"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Razorpay Careers", results[0].Title)
	assert.Equal(t, "Mail careers@razorpay.com", results[0].Snippet)
	assert.Equal(t, "https://razorpay.com/jobs", results[0].Link)

	assert.Equal(t, `"Razorpay" HR email`, got["q"])
	assert.Equal(t, "10", got["num"])
	assert.Equal(t, "in", got["gl"])
	assert.Equal(t, "test-cx", got["cx"])
}

func TestGoogle_SearchNoItems(t *testing.T) {
	g := newGoogle(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	results, err := g.Search(context.Background(), Query{Text: "nothing", Num: 5})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGoogle_SearchError(t *testing.T) {
	g := newGoogle(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"code": 429, "message": "quota"}}`, http.StatusTooManyRequests)
	})

	_, err := g.Search(context.Background(), Query{Text: "q", Num: 5})
	require.Error(t, err)

	var searchErr *Error
	require.True(t, errors.As(err, &searchErr))
	assert.Equal(t, "q", searchErr.Query)
}

func TestNewGoogle_RequiresCredentials(t *testing.T) {
	_, err := NewGoogle(context.Background(), GoogleOptions{APIKey: "k"})
	assert.Error(t, err)
}

func TestClampNum(t *testing.T) {
	assert.Equal(t, 1, clampNum(0))
	assert.Equal(t, 5, clampNum(5))
	assert.Equal(t, 10, clampNum(11))
}

type countingSearcher struct {
	mu    sync.Mutex
	calls int
}

func (c *countingSearcher) Search(_ context.Context, _ Query) ([]Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil, nil
}

func TestThrottled_WaitsOncePerCall(t *testing.T) {
	inner := &countingSearcher{}
	pacer := ratelimit.Unlimited()
	s := NewThrottled(inner, pacer)

	for i := 0; i < 4; i++ {
		_, err := s.Search(context.Background(), Query{Text: "q"})
		require.NoError(t, err)
	}
	assert.Equal(t, 4, inner.calls)
	assert.Equal(t, 4, pacer.Waits())
}

func TestThrottled_CancelledContext(t *testing.T) {
	inner := &countingSearcher{}
	pacer := ratelimit.Every(time.Hour)
	s := NewThrottled(inner, pacer)

	_, err := s.Search(context.Background(), Query{Text: "first"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Search(ctx, Query{Text: "second"})
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}
