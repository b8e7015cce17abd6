//go:build unit

package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"book-finder/internal/core/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type searchCall struct {
	Query      model.SearchQuery
	PageSize   int
	StartIndex int
}

// stubGateway answers through the search func and records every call.
type stubGateway struct {
	search func(q model.SearchQuery, pageSize, startIndex int) model.SearchResult
	books  map[string]model.Item

	mu       sync.Mutex
	calls    []searchCall
	getCalls int
}

func (g *stubGateway) Search(_ context.Context, q model.SearchQuery, pageSize, startIndex int) model.SearchResult {
	g.mu.Lock()
	g.calls = append(g.calls, searchCall{Query: q, PageSize: pageSize, StartIndex: startIndex})
	g.mu.Unlock()
	if g.search == nil {
		return model.EmptyResult()
	}
	return g.search(q, pageSize, startIndex)
}

func (g *stubGateway) GetByID(_ context.Context, id string) (model.Item, bool) {
	g.mu.Lock()
	g.getCalls++
	g.mu.Unlock()
	it, ok := g.books[id]
	return it, ok
}

func (g *stubGateway) searchCalls() []searchCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]searchCall(nil), g.calls...)
}

// fixedResult returns total items in pages of fake volumes named after the
// title and offset.
func fixedResult(total int) func(model.SearchQuery, int, int) model.SearchResult {
	return func(q model.SearchQuery, pageSize, startIndex int) model.SearchResult {
		var items []model.Item
		for i := startIndex; i < total && i < startIndex+pageSize; i++ {
			items = append(items, model.Item{ID: q.Title + "-" + strconv.Itoa(i), Title: q.Title})
		}
		return model.SearchResult{Items: items, TotalItems: total}
	}
}

type recordingNav struct {
	mu     sync.Mutex
	pushes []url.Values
}

func (n *recordingNav) Push(v url.Values) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pushes = append(n.pushes, v)
}

func (n *recordingNav) all() []url.Values {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]url.Values(nil), n.pushes...)
}

var errPutFailed = errors.New("disk full")

// fakeKV is an in-memory KeyValueStore whose reads and writes can be made
// to fail.
type fakeKV struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	failPut bool
	puts    int
}

func newFakeKV() *fakeKV { return &fakeKV{data: map[string][]byte{}} }

func (k *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.getErr != nil {
		return nil, k.getErr
	}
	v, ok := k.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (k *fakeKV) Put(_ context.Context, key string, value []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.failPut {
		return errPutFailed
	}
	k.puts++
	k.data[key] = append([]byte(nil), value...)
	return nil
}
