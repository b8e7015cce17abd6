package cli

import (
	"context"
	"fmt"

	"book-finder/internal/core"
	"book-finder/internal/core/model"
)

// Execute implements the go-flags Commander interface for ThemeCommand.
func (c *ThemeCommand) Execute(args []string) error {
	ctx := context.Background()
	a, done, err := c.env.open(ctx)
	if err != nil {
		return err
	}
	defer done()

	return c.run(ctx, a.Service)
}

func (c *ThemeCommand) run(ctx context.Context, svc *core.Service) error {
	switch {
	case c.Toggle:
		if _, err := svc.Theme.Toggle(ctx); err != nil {
			return err
		}
	case c.Set != "":
		if err := svc.Theme.Set(ctx, model.Theme(c.Set)); err != nil {
			return err
		}
	}
	fmt.Fprintln(c.env.out, svc.Theme.Get())
	return nil
}
