package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"book-finder/internal/core"
	"book-finder/internal/core/model"
)

type searchOutput struct {
	core.View
	Cards []core.ItemView `json:"cards"`
}

// Execute implements the go-flags Commander interface for SearchCommand.
func (c *SearchCommand) Execute(args []string) error {
	ctx := context.Background()
	a, done, err := c.env.open(ctx)
	if err != nil {
		return err
	}
	defer done()

	return c.run(ctx, a.Service, args)
}

// run drives a controller the way the search page does: pick the page
// size, submit the form, then move to the requested page.
func (c *SearchCommand) run(ctx context.Context, svc *core.Service, args []string) error {
	q := model.SearchQuery{Title: c.Title, Author: c.Author, Genre: c.Genre}
	if q.Title == "" && len(args) > 0 {
		q.Title = strings.Join(args, " ")
	}
	if err := q.Validate(); err != nil {
		return errors.New(model.EmptyQueryMessage)
	}

	ctl := svc.NewController(nil)
	ctl.SetPageSize(ctx, c.PageSize)
	ctl.SubmitQuery(ctx, q)
	ctl.Wait()

	if c.Page != 1 {
		if !ctl.SetPage(ctx, c.Page) {
			return fmt.Errorf("page %d out of range (1-%d)", c.Page, ctl.View().TotalPages)
		}
		ctl.Wait()
	}

	view := ctl.View()
	cards := svc.Cards(view.Items)
	if c.env.globals.JSON {
		return c.env.writeJSON(searchOutput{View: view, Cards: cards})
	}
	renderResults(c.env.out, view, cards)
	return nil
}
