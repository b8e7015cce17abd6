package cli

import (
	"context"
	"errors"
	"fmt"

	"book-finder/internal/core"
	"book-finder/internal/core/model"
)

// Execute implements the go-flags Commander interface for ShowCommand.
func (c *ShowCommand) Execute(args []string) error {
	ctx := context.Background()
	a, done, err := c.env.open(ctx)
	if err != nil {
		return err
	}
	defer done()

	return c.run(ctx, a.Service)
}

func (c *ShowCommand) run(ctx context.Context, svc *core.Service) error {
	it, err := svc.GetBook(ctx, c.ID)
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("no volume with id %q", c.ID)
	}
	if err != nil {
		return err
	}
	if c.env.globals.JSON {
		return c.env.writeJSON(it)
	}
	renderDetails(c.env.out, it, svc.Favorites.Contains(it.ID))
	return nil
}
