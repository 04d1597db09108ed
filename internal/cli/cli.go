package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/flowsmith/flowsmith/pkg/assemble"
	"github.com/flowsmith/flowsmith/pkg/buildinfo"
	"github.com/flowsmith/flowsmith/pkg/cache"
)

// appName is the application name used for directories and display.
const appName = "flowsmith"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "flowsmith",
		Short:        "Flowsmith assembles pipeline graphs into integration flow archives",
		Long:         `Flowsmith is a CLI tool that turns abstract pipeline graphs (typed nodes plus sequence and message connections) into deployable integration flow archives: validated, laid out on a deterministic grid, rendered through component templates, and zipped.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.assembleCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.templatesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates an assembly runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*assemble.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return assemble.NewRunner(cache, nil, c.Logger), nil
}

// newCache selects the cache backend: Redis when FLOWSMITH_REDIS_ADDR is
// set, otherwise a file cache under the XDG cache directory.
func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if addr := os.Getenv("FLOWSMITH_REDIS_ADDR"); addr != "" {
		return cache.NewRedisCache(context.Background(), cache.RedisConfig{
			Addr:     addr,
			Password: os.Getenv("FLOWSMITH_REDIS_PASSWORD"),
		})
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/flowsmith/).
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
