package core

import (
	"net/url"
	"strconv"

	"book-finder/internal/core/model"

	"github.com/gorilla/schema"
)

// pageStateParams is the flat URL form of a PageState. Every value is kept
// as a string so a malformed number normalizes to its default instead of
// failing the whole decode.
type pageStateParams struct {
	Title    string `query:"title,omitempty"`
	Author   string `query:"author,omitempty"`
	Genre    string `query:"genre,omitempty"`
	Page     string `query:"page,omitempty"`
	PageSize string `query:"pageSize,omitempty"`
}

var (
	stateDecoder = newStateDecoder()
	stateEncoder = newStateEncoder()
)

func newStateDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.SetAliasTag("query")
	d.IgnoreUnknownKeys(true)
	return d
}

func newStateEncoder() *schema.Encoder {
	e := schema.NewEncoder()
	e.SetAliasTag("query")
	return e
}

// DecodePageState reads a PageState from URL query values. Missing or
// invalid page and pageSize fall back to 1 and 10. A page whose upstream
// offset would overflow counts as invalid.
func DecodePageState(values url.Values) model.PageState {
	var p pageStateParams
	// all fields are strings, so only a malformed struct could fail here
	_ = stateDecoder.Decode(&p, values)

	st := model.DefaultPageState()
	st.Query = model.SearchQuery{Title: p.Title, Author: p.Author, Genre: p.Genre}
	if n, err := strconv.Atoi(p.PageSize); err == nil && model.IsAllowedPageSize(n) {
		st.PageSize = n
	}
	if n, err := strconv.Atoi(p.Page); err == nil && model.PageInRange(n, st.PageSize) {
		st.Page = n
	}
	return st
}

// EncodePageState writes the canonical URL form of st. Empty query fields
// are omitted; page and pageSize are always present.
func EncodePageState(st model.PageState) url.Values {
	p := pageStateParams{
		Title:    st.Query.Title,
		Author:   st.Query.Author,
		Genre:    st.Query.Genre,
		Page:     strconv.Itoa(st.Page),
		PageSize: strconv.Itoa(st.PageSize),
	}
	values := url.Values{}
	// p has only string fields, so Encode cannot fail
	_ = stateEncoder.Encode(p, values)
	return values
}

// NormalizePageState applies the same defaults DecodePageState would.
func NormalizePageState(st model.PageState) model.PageState {
	if !model.IsAllowedPageSize(st.PageSize) {
		st.PageSize = model.DefaultPageSize
	}
	if !model.PageInRange(st.Page, st.PageSize) {
		st.Page = model.DefaultPage
	}
	return st
}
