// Package cli implements thesisctl, the terminal front end for the analyzer,
// the diff engine and the analysis history.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sozercan/thesis-ai/internal/config"
	"github.com/sozercan/thesis-ai/internal/history"
	"github.com/sozercan/thesis-ai/internal/llm"
)

type app struct {
	configPath string
	verbose    bool
	version    string

	cfg         *config.Config
	newBackends func(context.Context, *config.Config) (llm.Backends, error)
}

func NewRootCmd(version string) *cobra.Command {
	return newRootCmd(&app{version: version, newBackends: llm.NewBackends})
}

func newRootCmd(a *app) *cobra.Command {

	rootCmd := &cobra.Command{
		Use:   "thesisctl",
		Short: "AI-assisted thesis editing",
		Long: `thesisctl analyzes thesis text with a chain of language models, shows
word-level changes between drafts and keeps the last analyses in a local history.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default ./config.yaml or ~/.thesis-ai/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(
		a.newAnalyzeCmd(),
		newDiffCmd(),
		a.newHistoryCmd(),
		newModesCmd(),
		a.newVersionCmd(),
	)

	return rootCmd
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "thesisctl version %s\n", a.version)
		},
	}
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	return cfg, nil
}

// openHistory opens the history database shared with the server.
func (a *app) openHistory(ctx context.Context) (*history.Log, func(), error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	path, err := cfg.History.ResolvedPath()
	if err != nil {
		return nil, nil, err
	}

	store, err := history.OpenSQLiteStore(path)
	if err != nil {
		return nil, nil, err
	}
	log := history.New(store)
	log.Load(ctx)
	return log, func() { store.Close() }, nil
}
