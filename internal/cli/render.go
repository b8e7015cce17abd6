package cli

import (
	"fmt"
	"io"
	"strings"

	"book-finder/internal/core"
	"book-finder/internal/core/model"
)

const (
	noResultsText   = "No books found. Start searching!"
	noFavoritesText = "No favorites yet!"
	placeholderText = "[no cover]"
)

// renderCards prints one numbered card per item. Numbers are what the
// browse commands (fav N, show N) refer to.
func renderCards(w io.Writer, cards []core.ItemView) {
	for i, c := range cards {
		mark := "♡"
		if c.Favorite {
			mark = "♥"
		}
		cover := c.ThumbnailURL
		if c.Placeholder {
			cover = placeholderText
		}
		fmt.Fprintf(w, "%2d. %s %s\n", i+1, mark, c.Title)
		fmt.Fprintf(w, "    %s\n", c.Authors)
		fmt.Fprintf(w, "    %s  (%s)\n", cover, c.DetailsPath)
	}
}

func renderResults(w io.Writer, view core.View, cards []core.ItemView) {
	if len(cards) == 0 {
		fmt.Fprintln(w, noResultsText)
		return
	}
	renderCards(w, cards)
	fmt.Fprintf(w, "\n%d results, page %d of %d\n", view.TotalItems, view.State.Page, view.TotalPages)
	if line := paginationLine(view.State.Page, view.TotalPages, view.Window); line != "" {
		fmt.Fprintln(w, line)
	}
}

// paginationLine renders the pagination control, e.g.
// "Prev 1 ... 4 [5] 6 ... 10 Next". Disabled ends are shown in parens.
func paginationLine(current, total int, window []core.PageLabel) string {
	if len(window) == 0 {
		return ""
	}
	parts := make([]string, 0, len(window)+2)
	if current <= 1 {
		parts = append(parts, "(Prev)")
	} else {
		parts = append(parts, "Prev")
	}
	for _, l := range window {
		if !l.Ellipsis && l.Number == current {
			parts = append(parts, "["+l.String()+"]")
			continue
		}
		parts = append(parts, l.String())
	}
	if current >= total {
		parts = append(parts, "(Next)")
	} else {
		parts = append(parts, "Next")
	}
	return strings.Join(parts, " ")
}

func renderDetails(w io.Writer, it model.Item, favorite bool) {
	mark := ""
	if favorite {
		mark = " ♥"
	}
	fmt.Fprintf(w, "%s%s\n", it.Title, mark)
	fmt.Fprintf(w, "%s\n", it.AuthorLine())
	if it.HasThumbnail() {
		fmt.Fprintf(w, "Cover: %s\n", it.ThumbnailURL)
	}
	if it.PublishedDate != "" {
		fmt.Fprintf(w, "Published: %s\n", it.PublishedDate)
	}
	if len(it.Categories) > 0 {
		fmt.Fprintf(w, "Categories: %s\n", strings.Join(it.Categories, ", "))
	}
	fmt.Fprintf(w, "\n%s\n", it.DescriptionOrDefault())
}

func renderFavorites(w io.Writer, items []model.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, noFavoritesText)
		return
	}
	fmt.Fprintln(w, "My Favorites")
	cards := make([]core.ItemView, 0, len(items))
	for _, it := range items {
		cards = append(cards, core.NewItemView(it, true))
	}
	renderCards(w, cards)
}
