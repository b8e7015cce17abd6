package cli

import (
	"fmt"
	"io"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Search    *SearchCommand
	Show      *ShowCommand
	Favorites *FavoritesCommand
	FavAdd    *FavAddCommand
	FavRemove *FavRemoveCommand
	Theme     *ThemeCommand
	Browse    *BrowseCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(out io.Writer) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "bookfind"
	parser.LongDescription = "Search the Google Books catalog and keep a local list of favorites."

	env := &commandEnv{globals: &globals, out: out}
	cmds := &commands{
		Search:    &SearchCommand{env: env},
		Show:      &ShowCommand{env: env},
		Favorites: &FavoritesCommand{env: env},
		FavAdd:    &FavAddCommand{env: env},
		FavRemove: &FavRemoveCommand{env: env},
		Theme:     &ThemeCommand{env: env},
		Browse:    &BrowseCommand{env: env},
	}

	parser.AddCommand("search", "Search the catalog", "Search the catalog by title, author and/or genre, one page at a time.", cmds.Search)
	parser.AddCommand("show", "Show one volume", "Print title, authors, cover and description of a volume.", cmds.Show)
	parser.AddCommand("favorites", "List favorites", "List saved favorites in the order they were added.", cmds.Favorites)
	parser.AddCommand("fav-add", "Add a favorite", "Save a volume, looked up by ID, as a favorite.", cmds.FavAdd)
	parser.AddCommand("fav-remove", "Remove a favorite", "Remove a volume from the favorites.", cmds.FavRemove)
	parser.AddCommand("theme", "Show or change the theme", "Show, set or toggle the light/dark theme preference.", cmds.Theme)
	parser.AddCommand("browse", "Interactive search session", "Start an interactive session: search, page through results, toggle favorites.", cmds.Browse)

	return parser, &globals, cmds
}

// Run is the main entry point for the CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil, os.Stdout)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string, out io.Writer) error {
	// --version is valid without a subcommand
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Fprintf(out, "bookfind %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(out)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
