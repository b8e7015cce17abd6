package cli

import (
	"io"

	"book-finder/internal/app"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// commandEnv is shared by every command: where output goes and, in tests, a
// pre-built app so no config or storage is touched.
type commandEnv struct {
	globals *GlobalFlags
	out     io.Writer
	app     *app.App
}

// SearchCommand searches the catalog by title, author and genre.
type SearchCommand struct {
	Title    string `long:"title" short:"t" description:"Words in the title"`
	Author   string `long:"author" short:"a" description:"Words in the author name"`
	Genre    string `long:"genre" short:"g" description:"Free-text genre term"`
	Page     int    `long:"page" description:"Result page" default:"1"`
	PageSize int    `long:"page-size" description:"Results per page" default:"10" choice:"10" choice:"20" choice:"40"`

	env *commandEnv
}

// ShowCommand prints the details of one volume.
type ShowCommand struct {
	ID string `long:"id" description:"Volume ID (required)" required:"true"`

	env *commandEnv
}

// FavoritesCommand lists saved favorites.
type FavoritesCommand struct {
	env *commandEnv
}

// FavAddCommand saves a volume as a favorite.
type FavAddCommand struct {
	ID string `long:"id" description:"Volume ID (required)" required:"true"`

	env *commandEnv
}

// FavRemoveCommand removes a favorite.
type FavRemoveCommand struct {
	ID string `long:"id" description:"Volume ID (required)" required:"true"`

	env *commandEnv
}

// ThemeCommand shows or changes the color theme.
type ThemeCommand struct {
	Set    string `long:"set" description:"Theme to use" choice:"light" choice:"dark"`
	Toggle bool   `long:"toggle" description:"Switch between light and dark"`

	env *commandEnv
}

// BrowseCommand runs an interactive search session.
type BrowseCommand struct {
	History string `long:"history" description:"File to keep prompt history in" default:""`

	env      *commandEnv
	prompter prompter // injectable for testing; nil means a liner terminal
}
