package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"book-finder/internal/core/model"
	"book-finder/internal/metrics"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"
)

const DefaultGoogleBooksURL = "https://www.googleapis.com/books/v1"

var errNotFound = errors.New("not found")

// GoogleBooksClient implements core.Gateway against the Google Books
// volumes API. It never returns errors to callers: failures are logged and
// surface as an empty result or an absent item.
type GoogleBooksClient struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	limiter   *rate.Limiter
	sanitizer *DescriptionSanitizer
	log       *slog.Logger
	now       func() time.Time
	lastTS    atomic.Int64
}

type GoogleBooksOption func(*GoogleBooksClient)

func WithAPIKey(key string) GoogleBooksOption {
	return func(c *GoogleBooksClient) { c.APIKey = key }
}

// WithRateLimit caps outbound requests. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) GoogleBooksOption {
	return func(c *GoogleBooksClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithSanitizer(s *DescriptionSanitizer) GoogleBooksOption {
	return func(c *GoogleBooksClient) { c.sanitizer = s }
}

func withClock(now func() time.Time) GoogleBooksOption {
	return func(c *GoogleBooksClient) { c.now = now }
}

func NewGoogleBooksClient(baseURL string, httpClient *http.Client, logger *slog.Logger, opts ...GoogleBooksOption) *GoogleBooksClient {
	if baseURL == "" {
		baseURL = DefaultGoogleBooksURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &GoogleBooksClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  httpClient,
		log:     logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildQuery turns a structured query into the upstream q parameter:
// intitle:, inauthor: and a bare genre term joined with "+".
func BuildQuery(q model.SearchQuery) string {
	parts := make([]string, 0, 3)
	if q.Title != "" {
		parts = append(parts, "intitle:"+norm.NFC.String(q.Title))
	}
	if q.Author != "" {
		parts = append(parts, "inauthor:"+norm.NFC.String(q.Author))
	}
	if q.Genre != "" {
		parts = append(parts, norm.NFC.String(q.Genre))
	}
	return strings.Join(parts, "+")
}

func (c *GoogleBooksClient) Search(ctx context.Context, q model.SearchQuery, pageSize, startIndex int) model.SearchResult {
	query := BuildQuery(q)
	if query == "" {
		metrics.CatalogRequestsTotal.WithLabelValues("search", "skipped").Inc()
		return model.EmptyResult()
	}

	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > model.MaxUpstreamPageSize {
		pageSize = model.MaxUpstreamPageSize
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(pageSize))
	if startIndex > 0 {
		params.Set("startIndex", strconv.Itoa(startIndex))
	}

	var body volumesResponse
	if err := c.getJSON(ctx, "search", "/volumes", params, &body); err != nil {
		c.log.Error("googlebooks: search failed", "q", query, "start_index", startIndex, "err", err)
		return model.EmptyResult()
	}

	items := make([]model.Item, 0, len(body.Items))
	for _, v := range body.Items {
		items = append(items, c.mapToItem(v))
	}
	total := len(items)
	if body.TotalItems != nil {
		total = *body.TotalItems
	}
	return model.SearchResult{Items: items, TotalItems: total}
}

func (c *GoogleBooksClient) GetByID(ctx context.Context, id string) (model.Item, bool) {
	if id == "" {
		return model.Item{}, false
	}
	var v volume
	if err := c.getJSON(ctx, "get", "/volumes/"+url.PathEscape(id), url.Values{}, &v); err != nil {
		if errors.Is(err, errNotFound) {
			c.log.Warn("googlebooks: volume not found", "id", id)
		} else {
			c.log.Error("googlebooks: get volume failed", "id", id, "err", err)
		}
		return model.Item{}, false
	}
	if v.ID == "" {
		v.ID = id
	}
	return c.mapToItem(v), true
}

// cacheBuster returns a strictly increasing millisecond stamp so no two
// requests from this client share a URL.
func (c *GoogleBooksClient) cacheBuster() int64 {
	for {
		last := c.lastTS.Load()
		next := c.now().UnixMilli()
		if next <= last {
			next = last + 1
		}
		if c.lastTS.CompareAndSwap(last, next) {
			return next
		}
	}
}

func (c *GoogleBooksClient) getJSON(ctx context.Context, op, path string, params url.Values, dst any) (err error) {
	outcome := "error"
	start := time.Now()
	defer func() {
		if err == nil {
			outcome = "ok"
		}
		metrics.CatalogRequestsTotal.WithLabelValues(op, outcome).Inc()
		metrics.CatalogRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("googlebooks: rate limiter: %w", err)
		}
	}

	params.Set("ts", strconv.FormatInt(c.cacheBuster(), 10))
	if c.APIKey != "" {
		params.Set("key", c.APIKey)
	}
	endpoint := c.BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("googlebooks: %w: status %d: %s", model.ErrUpstream, resp.StatusCode, string(b))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}

type volumesResponse struct {
	TotalItems *int     `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title         string      `json:"title"`
	Authors       []string    `json:"authors"`
	Categories    []string    `json:"categories"`
	Description   string      `json:"description"`
	PublishedDate string      `json:"publishedDate"`
	ImageLinks    *imageLinks `json:"imageLinks"`
}

type imageLinks struct {
	Thumbnail      string `json:"thumbnail"`
	SmallThumbnail string `json:"smallThumbnail"`
}

func (c *GoogleBooksClient) mapToItem(v volume) model.Item {
	var thumb string
	if v.VolumeInfo.ImageLinks != nil {
		thumb = v.VolumeInfo.ImageLinks.Thumbnail
		if thumb == "" {
			thumb = v.VolumeInfo.ImageLinks.SmallThumbnail
		}
	}
	return model.Item{
		ID:            v.ID,
		Title:         v.VolumeInfo.Title,
		Authors:       append([]string(nil), v.VolumeInfo.Authors...),
		ThumbnailURL:  thumb,
		Description:   c.sanitizer.Sanitize(v.VolumeInfo.Description),
		Categories:    append([]string(nil), v.VolumeInfo.Categories...),
		PublishedDate: v.VolumeInfo.PublishedDate,
	}
}
