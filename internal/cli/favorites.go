package cli

import (
	"context"
	"fmt"

	"book-finder/internal/core"
	"book-finder/internal/core/model"
)

// Execute implements the go-flags Commander interface for FavoritesCommand.
func (c *FavoritesCommand) Execute(args []string) error {
	ctx := context.Background()
	a, done, err := c.env.open(ctx)
	if err != nil {
		return err
	}
	defer done()

	return c.run(a.Service)
}

func (c *FavoritesCommand) run(svc *core.Service) error {
	items := svc.Favorites.List()
	if c.env.globals.JSON {
		return c.env.writeJSON(items)
	}
	renderFavorites(c.env.out, items)
	return nil
}

// Execute implements the go-flags Commander interface for FavAddCommand.
func (c *FavAddCommand) Execute(args []string) error {
	ctx := context.Background()
	a, done, err := c.env.open(ctx)
	if err != nil {
		return err
	}
	defer done()

	return c.run(ctx, a.Service)
}

func (c *FavAddCommand) run(ctx context.Context, svc *core.Service) error {
	it, err := svc.AddFavorite(ctx, model.Item{ID: c.ID})
	if err != nil {
		return fmt.Errorf("add favorite %q: %w", c.ID, err)
	}
	fmt.Fprintf(c.env.out, "♥ %s (%s)\n", it.Title, it.ID)
	return nil
}

// Execute implements the go-flags Commander interface for FavRemoveCommand.
func (c *FavRemoveCommand) Execute(args []string) error {
	ctx := context.Background()
	a, done, err := c.env.open(ctx)
	if err != nil {
		return err
	}
	defer done()

	return c.run(ctx, a.Service)
}

func (c *FavRemoveCommand) run(ctx context.Context, svc *core.Service) error {
	if !svc.Favorites.Contains(c.ID) {
		fmt.Fprintf(c.env.out, "%s is not a favorite\n", c.ID)
		return nil
	}
	if err := svc.Favorites.Remove(ctx, c.ID); err != nil {
		return fmt.Errorf("remove favorite %q: %w", c.ID, err)
	}
	fmt.Fprintf(c.env.out, "removed %s\n", c.ID)
	return nil
}
