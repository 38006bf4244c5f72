package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foldline/foldline/internal/app"
	"github.com/foldline/foldline/internal/dialog"
	"github.com/foldline/foldline/internal/logging"
	"github.com/foldline/foldline/internal/prefs"
	"github.com/foldline/foldline/internal/ui"
)

var (
	// Global flags
	configPath string
	verbose    bool

	logger *zap.Logger

	// version is set at build time with -ldflags "-X main.version=...".
	version = "dev"

	// picker is replaced in tests.
	picker dialog.Picker = dialog.TerminalPicker{}

	// sessionOptions builds the options for commands that need a backend.
	// Tests swap in a fake host.
	sessionOptions = func() app.Options {
		return app.Options{ConfigPath: configPath, Logger: logger, UserAgent: userAgent()}
	}
)

var rootCmd = &cobra.Command{
	Use:   "foldline",
	Short: "Foldline - local health data explorer",
	Long: `Foldline runs a local analysis backend on the loopback interface and
talks to it over HTTP.

Every command that needs the backend starts it on a random port between
8000 and 9000, waits until /status answers, and stops it again on exit.
Use "foldline run" to keep it alive.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "override foldline config path (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		runCmd,
		getCmd,
		postCmd,
		healthCmd,
		statusCmd,
		metricsCmd,
		importCmd,
		pickCmd,
		licenseCmd,
		themeCmd,
		logsCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "foldline: %v\n", err)
		os.Exit(1)
	}
}

// withSession starts the backend, runs fn and stops the backend again.
func withSession(ctx context.Context, fn func(ctx context.Context, s *app.Session) error) error {
	session, err := app.Open(sessionOptions())
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("stop backend", zap.Error(err))
		}
	}()
	if _, err := session.Start(ctx); err != nil {
		return err
	}
	return fn(ctx, session)
}

func userAgent() string {
	return "foldline-cli/" + version
}

// currentStyles returns the styles for the stored theme preference.
func currentStyles() ui.Styles {
	return ui.ThemeFor(prefs.NewThemeStore("").Initialize()).Styles()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
