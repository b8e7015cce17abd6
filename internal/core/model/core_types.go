package model

import (
	"errors"
	"math"
	"strings"
)

// All core models live here together for simplicity.

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not_found")
	ErrUpstream   = errors.New("upstream")
)

const (
	UnknownAuthor       = "Unknown Author"
	NoDescription       = "No description available for this book."
	EmptyQueryMessage   = "Please fill at least Title, Author or Genre"
	DefaultPage         = 1
	DefaultPageSize     = 10
	MaxUpstreamPageSize = 40
)

// AllowedPageSizes are the page sizes a user can pick.
var AllowedPageSizes = []int{10, 20, 40}

// IsAllowedPageSize reports whether s is one of AllowedPageSizes.
func IsAllowedPageSize(s int) bool {
	for _, a := range AllowedPageSizes {
		if a == s {
			return true
		}
	}
	return false
}

// Item is a catalog volume as returned by the upstream API, or a favorite.
// Identity is ID only.
type Item struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors,omitempty"`
	ThumbnailURL  string   `json:"thumbnailUrl,omitempty"`
	Description   string   `json:"description,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
}

// AuthorLine joins the authors for display, falling back to UnknownAuthor.
func (it Item) AuthorLine() string {
	if len(it.Authors) == 0 {
		return UnknownAuthor
	}
	return strings.Join(it.Authors, ", ")
}

func (it Item) HasThumbnail() bool { return it.ThumbnailURL != "" }

// DescriptionOrDefault returns the raw description markup or NoDescription.
func (it Item) DescriptionOrDefault() string {
	if it.Description == "" {
		return NoDescription
	}
	return it.Description
}

// Clone returns a deep copy so callers never share slices with a store.
func (it Item) Clone() Item {
	it.Authors = append([]string(nil), it.Authors...)
	it.Categories = append([]string(nil), it.Categories...)
	return it
}

type SearchQuery struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
}

// Active reports whether at least one field is set.
func (q SearchQuery) Active() bool {
	return q.Title != "" || q.Author != "" || q.Genre != ""
}

// Validate is the search form check: an inactive query cannot be submitted.
func (q SearchQuery) Validate() error {
	if !q.Active() {
		return ErrValidation
	}
	return nil
}

// PageState is what should currently be fetched and displayed.
type PageState struct {
	Query    SearchQuery `json:"query"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

func DefaultPageState() PageState {
	return PageState{Page: DefaultPage, PageSize: DefaultPageSize}
}

// StartIndex is the zero-based upstream offset for the state's page.
func (p PageState) StartIndex() int {
	return (p.Page - 1) * p.PageSize
}

// PageInRange reports whether page is at least 1 and its StartIndex fits in
// an int for the given pageSize.
func PageInRange(page, pageSize int) bool {
	if page < 1 {
		return false
	}
	return pageSize < 1 || page-1 <= math.MaxInt/pageSize
}

type SearchResult struct {
	Items      []Item `json:"items"`
	TotalItems int    `json:"totalItems"`
}

func EmptyResult() SearchResult {
	return SearchResult{Items: []Item{}, TotalItems: 0}
}

// TotalPages is max(1, ceil(totalItems/pageSize)).
func TotalPages(totalItems, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pages := totalItems / pageSize
	if totalItems%pageSize > 0 {
		pages++
	}
	if pages < 1 {
		return 1
	}
	return pages
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

type Page[T any] struct {
	Data     []T
	Page     int
	PageSize int
	Total    int
}
