package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"book-finder/internal/core"
	"book-finder/internal/core/model"

	"github.com/peterh/liner"
)

const browseHelp = `commands:
  search <title> [/ <author> [/ <genre>]]   new search (fields may be left empty)
  next | prev | page <n>                    move between result pages
  size <10|20|40>                           change results per page
  back | forward                            walk the navigation history
  fav <n>                                   toggle favorite for result n
  show <n>                                  details of result n
  favorites                                 list favorites
  theme                                     toggle light/dark
  where                                     print the current location
  help | quit`

type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// history is the session's navigation stack; it is the controller's
// Navigator, and back/forward restore entries from it.
type history struct {
	entries []url.Values
	pos     int
}

func newHistory(initial url.Values) *history {
	return &history{entries: []url.Values{initial}}
}

func (h *history) Push(v url.Values) {
	h.entries = append(h.entries[:h.pos+1], v)
	h.pos = len(h.entries) - 1
}

func (h *history) Back() (url.Values, bool) {
	if h.pos == 0 {
		return nil, false
	}
	h.pos--
	return h.entries[h.pos], true
}

func (h *history) Forward() (url.Values, bool) {
	if h.pos >= len(h.entries)-1 {
		return nil, false
	}
	h.pos++
	return h.entries[h.pos], true
}

// Execute implements the go-flags Commander interface for BrowseCommand.
func (c *BrowseCommand) Execute(args []string) error {
	ctx := context.Background()
	a, done, err := c.env.open(ctx)
	if err != nil {
		return err
	}
	defer done()

	p := c.prompter
	if p == nil {
		line := liner.NewLiner()
		defer line.Close()
		line.SetCtrlCAborts(true)
		if c.History != "" {
			if f, err := os.Open(c.History); err == nil {
				_, _ = line.ReadHistory(f)
				f.Close()
			}
			defer func() {
				if f, err := os.Create(c.History); err == nil {
					_, _ = line.WriteHistory(f)
					f.Close()
				}
			}()
		}
		p = line
	}
	return c.run(ctx, a.Service, p)
}

type browseSession struct {
	svc   *core.Service
	out   io.Writer
	hist  *history
	ctl   *core.Controller
	cards []core.ItemView
}

func (c *BrowseCommand) run(ctx context.Context, svc *core.Service, p prompter) error {
	hist := newHistory(core.EncodePageState(model.DefaultPageState()))
	s := &browseSession{svc: svc, out: c.env.out, hist: hist, ctl: svc.NewController(hist)}

	fmt.Fprintln(s.out, browseHelp)
	for {
		line, err := p.Prompt(fmt.Sprintf("bookfind[%s]> ", svc.Theme.Get()))
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		p.AppendHistory(line)
		if quit := s.exec(ctx, line); quit {
			return nil
		}
	}
}

// exec runs one command line and reports whether the session should end.
func (s *browseSession) exec(ctx context.Context, line string) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	cmd = strings.ToLower(cmd)
	rest = strings.TrimSpace(rest)
	view := s.ctl.View()

	switch cmd {
	case "search", "s":
		q := parseQuery(rest)
		if q.Validate() != nil {
			fmt.Fprintln(s.out, model.EmptyQueryMessage)
			return false
		}
		s.ctl.SubmitQuery(ctx, q)
		s.settle()
	case "next", "n":
		s.movePage(ctx, view.State.Page+1)
	case "prev", "p":
		s.movePage(ctx, view.State.Page-1)
	case "page":
		n, err := strconv.Atoi(rest)
		if err != nil {
			fmt.Fprintln(s.out, "usage: page <n>")
			return false
		}
		s.movePage(ctx, n)
	case "size":
		n, _ := strconv.Atoi(rest)
		if !s.ctl.SetPageSize(ctx, n) {
			fmt.Fprintln(s.out, "page size must be one of 10, 20, 40 and differ from the current one")
			return false
		}
		s.settle()
	case "back", "forward":
		move := s.hist.Back
		if cmd == "forward" {
			move = s.hist.Forward
		}
		v, ok := move()
		if !ok {
			fmt.Fprintf(s.out, "nothing to go %s to\n", cmd)
			return false
		}
		s.ctl.Restore(ctx, v)
		s.settle()
	case "fav", "f":
		it, ok := s.pick(rest)
		if !ok {
			return false
		}
		full := model.Item{ID: it.ID}
		for _, v := range view.Items {
			if v.ID == it.ID {
				full = v
				break
			}
		}
		on, err := s.svc.ToggleFavorite(ctx, full)
		if err != nil {
			fmt.Fprintln(s.out, "error:", err)
			return false
		}
		s.cards = s.svc.Cards(view.Items)
		if on {
			fmt.Fprintf(s.out, "♥ added %s\n", it.Title)
		} else {
			fmt.Fprintf(s.out, "♡ removed %s\n", it.Title)
		}
	case "show":
		it, ok := s.pick(rest)
		if !ok {
			return false
		}
		book, err := s.svc.GetBook(ctx, it.ID)
		if err != nil {
			fmt.Fprintf(s.out, "could not load %s\n", it.ID)
			return false
		}
		renderDetails(s.out, book, s.svc.Favorites.Contains(book.ID))
	case "favorites":
		renderFavorites(s.out, s.svc.Favorites.List())
	case "theme":
		t, err := s.svc.Theme.Toggle(ctx)
		if err != nil {
			fmt.Fprintln(s.out, "error:", err)
			return false
		}
		fmt.Fprintf(s.out, "theme: %s\n", t)
	case "where":
		fmt.Fprintf(s.out, "?%s\n", s.ctl.Location())
	case "help", "?":
		fmt.Fprintln(s.out, browseHelp)
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(s.out, "unknown command %q, try help\n", cmd)
	}
	return false
}

func (s *browseSession) movePage(ctx context.Context, n int) {
	if !s.ctl.SetPage(ctx, n) {
		fmt.Fprintf(s.out, "no page %d\n", n)
		return
	}
	s.settle()
}

// settle waits for the fetch started by the last transition and prints
// the result.
func (s *browseSession) settle() {
	s.ctl.Wait()
	view := s.ctl.View()
	s.cards = s.svc.Cards(view.Items)
	renderResults(s.out, view, s.cards)
}

func (s *browseSession) pick(arg string) (core.ItemView, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(s.cards) {
		fmt.Fprintf(s.out, "pick a result between 1 and %d\n", len(s.cards))
		return core.ItemView{}, false
	}
	return s.cards[n-1], true
}

// parseQuery reads "title / author / genre"; missing parts stay empty.
func parseQuery(s string) model.SearchQuery {
	parts := strings.SplitN(s, "/", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return model.SearchQuery{
		Title:  strings.TrimSpace(parts[0]),
		Author: strings.TrimSpace(parts[1]),
		Genre:  strings.TrimSpace(parts[2]),
	}
}
