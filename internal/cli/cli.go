// Package cli implements the mindgrid command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindgrid/pkg/buildinfo"
	"github.com/matzehuels/mindgrid/pkg/cache"
	"github.com/matzehuels/mindgrid/pkg/config"
	"github.com/matzehuels/mindgrid/pkg/session"
	"github.com/matzehuels/mindgrid/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "mindgrid"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "mindgrid",
		Short:        "Mindgrid edits and exports node-link mind maps",
		Long:         `Mindgrid is a terminal mind-mapping tool: an interactive canvas editor for boards of connected nodes, with exports to SVG, PNG, PDF, Graphviz, and text outlines, and an HTTP server for shared maps.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/mindgrid/mindgrid.toml)")

	root.AddCommand(c.editCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.mapsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.loginCommand())
	root.AddCommand(c.logoutCommand())
	root.AddCommand(c.whoamiCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration honoring the --config flag.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// =============================================================================
// Store Resolution
// =============================================================================

// storeFlags selects the backend shared by edit, export, and maps: a local
// file store (the default), or a remote server over HTTP.
type storeFlags struct {
	dir    string // local store directory; empty means the default data dir
	remote string // server URL; takes precedence over dir
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dir, "file", "", "local map directory (default ~/.local/share/mindgrid/maps)")
	cmd.Flags().StringVar(&f.remote, "remote", "", "mindgrid server URL (uses the stored login for that server)")
}

// openStore resolves the backend from flags and config. Remote stores pick up
// credentials saved by `mindgrid login` and reuse the response cache; local
// stores are plain JSON files.
func (c *CLI) openStore(ctx context.Context, cfg config.Config, flags storeFlags) (store.Store, error) {
	remote := flags.remote
	if remote == "" && flags.dir == "" {
		remote = cfg.Server.Remote
	}
	if remote != "" {
		return c.openRemoteStore(ctx, remote)
	}

	dir := flags.dir
	if dir == "" {
		base, err := dataDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "maps")
	}
	return store.NewFileStore(dir)
}

func (c *CLI) openRemoteStore(ctx context.Context, remote string) (store.Store, error) {
	token := ""
	if sessions, err := session.NewCLIStore(); err == nil {
		if sess, err := sessions.GetSession(ctx, remote); err == nil {
			token = sess.Token
		}
	}
	if token == "" {
		c.Logger.Debug("no stored login for server, connecting anonymously", "server", remote)
	}
	return store.NewClient(remote, token, c.newCache(false), cache.NewDefaultKeyer()), nil
}

// newCache returns the shared file cache, or a null cache when disabled or
// the cache directory is unavailable.
func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/mindgrid/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// dataDir returns the data directory using XDG standard (~/.local/share/mindgrid/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}
