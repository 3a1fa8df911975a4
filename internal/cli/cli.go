package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/BenDol/GithubWiki-sub000/pkg/buildinfo"
	"github.com/BenDol/GithubWiki-sub000/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "ghwiki"
)

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

	// configPath is bound to the --config persistent flag.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands
// registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "ghwiki is a caching client for GitHub-backed wikis",
		Long:         `ghwiki reads and edits wiki pages stored in GitHub repositories, caching page content, user profiles, permissions, and shared community records locally so repeated lookups avoid the API rate limit.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(log.DebugLevel)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/ghwiki/config.toml)")

	// Register all subcommands
	root.AddCommand(c.pageCommand())
	root.AddCommand(c.userCommand())
	root.AddCommand(c.permissionCommand())
	root.AddCommand(c.collaboratorsCommand())
	root.AddCommand(c.repoCommand())
	root.AddCommand(c.pullsCommand())
	root.AddCommand(c.forkCommand())
	root.AddCommand(c.avatarCommand())
	root.AddCommand(c.donatorCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Paths
// =============================================================================

// defaultConfigPath returns the config file location using the XDG
// standard (~/.config/ghwiki/config.toml).
func defaultConfigPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// =============================================================================
// Argument Helpers
// =============================================================================

// splitRepo parses an "owner/repo" argument.
func splitRepo(arg string) (owner, repo string, err error) {
	parts := strings.SplitN(arg, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errors.New(errors.ErrCodeInvalidRepo, "expected owner/repo, got %q", arg)
	}
	return parts[0], parts[1], nil
}

// repoArgs resolves repository coordinates from the first positional
// argument, falling back to the configured default repository.
func (c *CLI) repoArgs(args []string, cfgOwner, cfgRepo string) (owner, repo string, rest []string, err error) {
	if len(args) > 0 && strings.Contains(args[0], "/") {
		owner, repo, err = splitRepo(args[0])
		return owner, repo, args[1:], err
	}
	if cfgOwner == "" || cfgRepo == "" {
		return "", "", nil, errors.New(errors.ErrCodeInvalidRepo, "no repository given and none configured; pass owner/repo or set github.owner and github.repo in %s", defaultConfigPath())
	}
	return cfgOwner, cfgRepo, args, nil
}

func formatBool(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func formatCount(n int, singular string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%d %ss", n, singular)
}
