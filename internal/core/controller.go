package core

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"book-finder/internal/core/model"
	"book-finder/internal/metrics"
)

// View is a settled snapshot of the controller for renderers.
type View struct {
	State      model.PageState `json:"state"`
	Location   string          `json:"location"`
	Items      []model.Item    `json:"items"`
	TotalItems int             `json:"totalItems"`
	TotalPages int             `json:"totalPages"`
	Loading    bool            `json:"loading"`
	Window     []PageLabel     `json:"window"`
}

// Controller owns the PageState of one session. Every change of state
// bumps a generation; a search response is applied only if it belongs to
// the current generation, so responses land in request order no matter
// when they arrive.
type Controller struct {
	gw         Gateway
	nav        Navigator
	windowSize int
	log        *slog.Logger

	mu         sync.Mutex
	state      model.PageState
	result     model.SearchResult
	totalPages int
	gen        uint64
	loading    bool

	wg sync.WaitGroup
}

func NewController(gw Gateway, nav Navigator, windowSize int, logger *slog.Logger) *Controller {
	if windowSize < 1 {
		windowSize = DefaultWindowSize
	}
	return &Controller{
		gw:         gw,
		nav:        nav,
		windowSize: windowSize,
		log:        logger,
		state:      model.DefaultPageState(),
		result:     model.EmptyResult(),
		totalPages: 1,
	}
}

// SubmitQuery starts a new search on page 1, keeping the page size.
func (c *Controller) SubmitQuery(ctx context.Context, q model.SearchQuery) bool {
	return c.transition(ctx, true, func(cur model.PageState) (model.PageState, bool) {
		return model.PageState{Query: q, Page: 1, PageSize: cur.PageSize}, true
	})
}

// SetPage moves to page n. It is ignored while a fetch is in flight or
// when n is outside [1, TotalPages].
func (c *Controller) SetPage(ctx context.Context, n int) bool {
	return c.transition(ctx, true, func(cur model.PageState) (model.PageState, bool) {
		if c.loading || n < 1 || n > c.totalPages {
			return cur, false
		}
		cur.Page = n
		return cur, true
	})
}

// SetPageSize changes the page size and goes back to page 1. Sizes outside
// model.AllowedPageSizes are ignored.
func (c *Controller) SetPageSize(ctx context.Context, s int) bool {
	return c.transition(ctx, true, func(cur model.PageState) (model.PageState, bool) {
		if !model.IsAllowedPageSize(s) {
			return cur, false
		}
		cur.PageSize = s
		cur.Page = 1
		return cur, true
	})
}

// Restore applies a state that came from navigation (history, deep link).
// It is not pushed back to the Navigator.
func (c *Controller) Restore(ctx context.Context, values url.Values) bool {
	next := DecodePageState(values)
	return c.transition(ctx, false, func(model.PageState) (model.PageState, bool) {
		return next, true
	})
}

// transition computes the next state under the lock and publishes it if it
// differs from the current one.
func (c *Controller) transition(ctx context.Context, local bool, next func(model.PageState) (model.PageState, bool)) bool {
	c.mu.Lock()
	st, ok := next(c.state)
	if !ok || st == c.state {
		c.mu.Unlock()
		return false
	}
	c.state = st
	c.gen++
	gen := c.gen

	active := st.Query.Active()
	if active {
		c.loading = true
		c.wg.Add(1)
	} else {
		c.result = model.EmptyResult()
		c.totalPages = 1
		c.loading = false
	}
	c.mu.Unlock()

	if local && c.nav != nil {
		c.nav.Push(EncodePageState(st))
	}
	if active {
		go c.fetch(ctx, gen, st)
	}
	return true
}

func (c *Controller) fetch(ctx context.Context, gen uint64, st model.PageState) {
	defer c.wg.Done()

	res := c.gw.Search(ctx, st.Query, st.PageSize, st.StartIndex())
	if res.Items == nil {
		res.Items = []model.Item{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		metrics.StaleResponsesDiscarded.Inc()
		c.log.Debug("controller: discarding stale response", "generation", gen, "current", c.gen)
		return
	}
	c.result = res
	c.totalPages = model.TotalPages(res.TotalItems, st.PageSize)
	c.loading = false
}

// Wait blocks until every outstanding fetch, stale or not, has returned.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) State() model.PageState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Location is the URL query encoding of the current state.
func (c *Controller) Location() string {
	return EncodePageState(c.State()).Encode()
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]model.Item, len(c.result.Items))
	copy(items, c.result.Items)
	return View{
		State:      c.state,
		Location:   EncodePageState(c.state).Encode(),
		Items:      items,
		TotalItems: c.result.TotalItems,
		TotalPages: c.totalPages,
		Loading:    c.loading,
		Window:     Window(c.state.Page, c.totalPages, c.windowSize),
	}
}
