//go:build unit

package adapter

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"book-finder/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// catalogServer records the requests it sees and answers with handler.
type catalogServer struct {
	*httptest.Server
	mu   sync.Mutex
	reqs []*http.Request
}

func newCatalogServer(t *testing.T, handler http.HandlerFunc) *catalogServer {
	t.Helper()
	cs := &catalogServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		cs.reqs = append(cs.reqs, r.Clone(context.Background()))
		cs.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *catalogServer) requests() []*http.Request {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return append([]*http.Request(nil), cs.reqs...)
}

const duneVolumes = `{
  "kind": "books#volumes",
  "totalItems": 57,
  "items": [
    {"id": "B1hSG45JCX4C", "volumeInfo": {"title": "Dune", "authors": ["Frank Herbert"],
      "imageLinks": {"smallThumbnail": "http://img/small", "thumbnail": "http://img/thumb"},
      "description": "<p>Set on the desert planet <b>Arrakis</b></p>", "categories": ["Fiction"], "publishedDate": "1965"}},
    {"id": "nothumb", "volumeInfo": {"title": "Dune Messiah", "imageLinks": {"smallThumbnail": "http://img/only-small"}}},
    {"id": "bare", "volumeInfo": {"title": "Untitled"}}
  ]
}`

func writeBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "", BuildQuery(model.SearchQuery{}))
	assert.Equal(t, "intitle:dune", BuildQuery(model.SearchQuery{Title: "dune"}))
	assert.Equal(t, "intitle:dune+inauthor:herbert+scifi",
		BuildQuery(model.SearchQuery{Title: "dune", Author: "herbert", Genre: "scifi"}))
	assert.Equal(t, "inauthor:le guin+fantasy", BuildQuery(model.SearchQuery{Author: "le guin", Genre: "fantasy"}))
	// a decomposed e and combining acute are composed into one rune
	assert.Equal(t, "intitle:caf\u00e9", BuildQuery(model.SearchQuery{Title: "cafe\u0301"}))
}

func TestSearch_RequestShape(t *testing.T) {
	srv := newCatalogServer(t, writeBody(duneVolumes))
	c := NewGoogleBooksClient(srv.URL, srv.Client(), discardLogger())

	res := c.Search(context.Background(), model.SearchQuery{Title: "dune"}, 10, 0)
	require.Len(t, srv.requests(), 1)

	r := srv.requests()[0]
	assert.Equal(t, "/volumes", r.URL.Path)
	q := r.URL.Query()
	assert.Equal(t, "intitle:dune", q.Get("q"))
	assert.Equal(t, "10", q.Get("maxResults"))
	assert.False(t, q.Has("startIndex"), "startIndex is omitted on the first page")
	assert.NotEmpty(t, q.Get("ts"))
	assert.False(t, q.Has("key"))
	assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
	assert.Equal(t, "no-cache", r.Header.Get("Pragma"))

	assert.Equal(t, 57, res.TotalItems)
	require.Len(t, res.Items, 3)
}

func TestSearch_StartIndexAndKey(t *testing.T) {
	srv := newCatalogServer(t, writeBody(duneVolumes))
	c := NewGoogleBooksClient(srv.URL+"/", srv.Client(), discardLogger(), WithAPIKey("secret"))

	c.Search(context.Background(), model.SearchQuery{Author: "herbert"}, 20, 40)

	q := srv.requests()[0].URL.Query()
	assert.Equal(t, "40", q.Get("startIndex"))
	assert.Equal(t, "20", q.Get("maxResults"))
	assert.Equal(t, "secret", q.Get("key"))
	assert.Equal(t, "/volumes", srv.requests()[0].URL.Path)
}

func TestSearch_ClampsPageSize(t *testing.T) {
	srv := newCatalogServer(t, writeBody(`{"totalItems": 0}`))
	c := NewGoogleBooksClient(srv.URL, srv.Client(), discardLogger())

	c.Search(context.Background(), model.SearchQuery{Genre: "poetry"}, 100, 0)
	c.Search(context.Background(), model.SearchQuery{Genre: "poetry"}, 0, 0)

	reqs := srv.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "40", reqs[0].URL.Query().Get("maxResults"))
	assert.Equal(t, "1", reqs[1].URL.Query().Get("maxResults"))
}

func TestSearch_InactiveQueryMakesNoRequest(t *testing.T) {
	srv := newCatalogServer(t, writeBody(duneVolumes))
	c := NewGoogleBooksClient(srv.URL, srv.Client(), discardLogger())

	res := c.Search(context.Background(), model.SearchQuery{}, 10, 0)
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)
	assert.Zero(t, res.TotalItems)
	assert.Empty(t, srv.requests())
}

func TestSearch_MapsVolumes(t *testing.T) {
	srv := newCatalogServer(t, writeBody(duneVolumes))
	c := NewGoogleBooksClient(srv.URL, srv.Client(), discardLogger())

	res := c.Search(context.Background(), model.SearchQuery{Title: "dune"}, 10, 0)
	require.Len(t, res.Items, 3)

	first := res.Items[0]
	assert.Equal(t, "B1hSG45JCX4C", first.ID)
	assert.Equal(t, []string{"Frank Herbert"}, first.Authors)
	assert.Equal(t, "http://img/thumb", first.ThumbnailURL)
	assert.Equal(t, "<p>Set on the desert planet <b>Arrakis</b></p>", first.Description)
	assert.Equal(t, []string{"Fiction"}, first.Categories)
	assert.Equal(t, "1965", first.PublishedDate)

	assert.Equal(t, "http://img/only-small", res.Items[1].ThumbnailURL)

	bare := res.Items[2]
	assert.Empty(t, bare.ThumbnailURL)
	assert.Equal(t, model.UnknownAuthor, bare.AuthorLine())
	assert.Equal(t, model.NoDescription, bare.DescriptionOrDefault())
}

func TestSearch_MissingTotalFallsBackToItemCount(t *testing.T) {
	srv := newCatalogServer(t, writeBody(`{"items": [{"id": "a", "volumeInfo": {"title": "A"}}]}`))
	c := NewGoogleBooksClient(srv.URL, srv.Client(), discardLogger())

	res := c.Search(context.Background(), model.SearchQuery{Title: "a"}, 10, 0)
	assert.Equal(t, 1, res.TotalItems)
}

func TestSearch_NoItemsField(t *testing.T) {
	srv := newCatalogServer(t, writeBody(`{"kind": "books#volumes", "totalItems": 0}`))
	c := NewGoogleBooksClient(srv.URL, srv.Client(), discardLogger())

	res := c.Search(context.Background(), model.SearchQuery{Title: "zzzz"}, 10, 0)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Zero(t, res.TotalItems)
}

func TestSearch_FailuresDegradeToEmpty(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "backend down", http.StatusInternalServerError)
		},
		"quota": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": {"code": 429}}`, http.StatusTooManyRequests)
		},
		"bad json": writeBody(`{"items": [`),
		"not found": func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newCatalogServer(t, h)
			c := NewGoogleBooksClient(srv.URL, srv.Client(), discardLogger())
			res := c.Search(context.Background(), model.SearchQuery{Title: "dune"}, 10, 0)
			assert.Equal(t, model.EmptyResult(), res)
		})
	}
}

func TestSearch_UnreachableDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := NewGoogleBooksClient(addr, &http.Client{Timeout: time.Second}, discardLogger())
	res := c.Search(context.Background(), model.SearchQuery{Title: "dune"}, 10, 0)
	assert.Equal(t, model.EmptyResult(), res)
}

func TestCacheBuster_StrictlyIncreasing(t *testing.T) {
	frozen := time.UnixMilli(1_700_000_000_000)
	srv := newCatalogServer(t, writeBody(`{"totalItems": 0}`))
	c := NewGoogleBooksClient(srv.URL, srv.Client(), discardLogger(), withClock(func() time.Time { return frozen }))

	for i := 0; i < 3; i++ {
		c.Search(context.Background(), model.SearchQuery{Title: "dune"}, 10, 0)
	}

	var prev int64
	for _, r := range srv.requests() {
		ts, err := strconv.ParseInt(r.URL.Query().Get("ts"), 10, 64)
		require.NoError(t, err)
		assert.Greater(t, ts, prev)
		prev = ts
	}
	assert.Equal(t, frozen.UnixMilli()+2, prev)
}

func TestCacheBuster_Concurrent(t *testing.T) {
	c := NewGoogleBooksClient("http://unused", nil, discardLogger())
	seen := make(map[int64]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ts := c.cacheBuster()
			mu.Lock()
			seen[ts] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}

func TestGetByID(t *testing.T) {
	srv := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/volumes/zyTCAlFPjgYC" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "zyTCAlFPjgYC",
			"volumeInfo": map[string]any{
				"title":   "The Google Story",
				"authors": []string{"David A. Vise", "Mark Malseed"},
			},
		})
	})
	c := NewGoogleBooksClient(srv.URL, srv.Client(), discardLogger())
	ctx := context.Background()

	it, ok := c.GetByID(ctx, "zyTCAlFPjgYC")
	require.True(t, ok)
	assert.Equal(t, "The Google Story", it.Title)
	assert.Equal(t, "David A. Vise, Mark Malseed", it.AuthorLine())

	_, ok = c.GetByID(ctx, "missing")
	assert.False(t, ok)

	_, ok = c.GetByID(ctx, "")
	assert.False(t, ok)
	assert.Len(t, srv.requests(), 2)
}

func TestGetByID_EscapesPath(t *testing.T) {
	srv := newCatalogServer(t, writeBody(`{"volumeInfo": {"title": "Odd"}}`))
	c := NewGoogleBooksClient(srv.URL, srv.Client(), discardLogger())

	it, ok := c.GetByID(context.Background(), "a/b")
	require.True(t, ok)
	assert.Equal(t, "a/b", it.ID)
	assert.Equal(t, "/volumes/a%2Fb", srv.requests()[0].URL.EscapedPath())
}

func TestSanitizer(t *testing.T) {
	body := `{"totalItems": 1, "items": [{"id": "x", "volumeInfo": {"title": "X",
		"description": "<p onclick=\"steal()\">Hello <b>world</b></p><script>alert(1)</script>"}}]}`
	srv := newCatalogServer(t, writeBody(body))
	c := NewGoogleBooksClient(srv.URL, srv.Client(), discardLogger(), WithSanitizer(NewDescriptionSanitizer()))

	res := c.Search(context.Background(), model.SearchQuery{Title: "x"}, 10, 0)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "<p>Hello <b>world</b></p>", res.Items[0].Description)

	var nilSanitizer *DescriptionSanitizer
	assert.Equal(t, "<script>x</script>", nilSanitizer.Sanitize("<script>x</script>"))
}

func TestRateLimit_CanceledContext(t *testing.T) {
	srv := newCatalogServer(t, writeBody(`{"totalItems": 0}`))
	c := NewGoogleBooksClient(srv.URL, srv.Client(), discardLogger(), WithRateLimit(0.001, 1))
	ctx := context.Background()

	c.Search(ctx, model.SearchQuery{Title: "a"}, 10, 0)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	res := c.Search(canceled, model.SearchQuery{Title: "b"}, 10, 0)
	assert.Equal(t, model.EmptyResult(), res)
	assert.Len(t, srv.requests(), 1)
}

func TestNewGoogleBooksClient_Defaults(t *testing.T) {
	c := NewGoogleBooksClient("", nil, discardLogger(), WithRateLimit(0, 0))
	assert.Equal(t, DefaultGoogleBooksURL, c.BaseURL)
	assert.Equal(t, http.DefaultClient, c.Client)
	assert.Nil(t, c.limiter)

	u, err := url.Parse(c.BaseURL)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
}

func TestGetJSON_ErrorKinds(t *testing.T) {
	srv := newCatalogServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/volumes/gone" {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})
	c := NewGoogleBooksClient(srv.URL, srv.Client(), discardLogger())
	ctx := context.Background()

	var body volumesResponse
	err := c.getJSON(ctx, "search", "/volumes", url.Values{}, &body)
	require.ErrorIs(t, err, model.ErrUpstream)
	assert.Contains(t, err.Error(), "status 429")
	assert.Contains(t, err.Error(), "quota exceeded")

	var v volume
	err = c.getJSON(ctx, "get", "/volumes/gone", url.Values{}, &v)
	assert.ErrorIs(t, err, errNotFound)
	assert.NotErrorIs(t, err, model.ErrUpstream)
}
