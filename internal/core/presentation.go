package core

import (
	"net/url"

	"book-finder/internal/core/model"
)

// ItemView is what a result card needs, with every optional field already
// resolved to its fallback.
type ItemView struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Authors      string `json:"authors"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Placeholder  bool   `json:"placeholder"`
	Favorite     bool   `json:"favorite"`
	DetailsPath  string `json:"detailsPath"`
}

func NewItemView(it model.Item, favorite bool) ItemView {
	return ItemView{
		ID:           it.ID,
		Title:        it.Title,
		Authors:      it.AuthorLine(),
		ThumbnailURL: it.ThumbnailURL,
		Placeholder:  !it.HasThumbnail(),
		Favorite:     favorite,
		DetailsPath:  DetailsPath(it.ID),
	}
}

func DetailsPath(id string) string {
	return "/book/" + url.PathEscape(id)
}
