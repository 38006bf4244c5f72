package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/foldline/foldline/internal/app"
	"github.com/foldline/foldline/internal/backend"
	"github.com/foldline/foldline/internal/config"
	"github.com/foldline/foldline/internal/logging"
	"github.com/foldline/foldline/internal/ui"
)

var pollEvery time.Duration

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the backend and keep it healthy until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		fileLogger, err := logging.NewFile(verbose, filepath.Join(cfg.LogDir, "shell.log"))
		if err != nil {
			return err
		}
		defer func() { _ = fileLogger.Sync() }()

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		opts := sessionOptions()
		opts.Logger = fileLogger
		opts.PollEvery = pollEvery
		return app.Run(ctx, opts)
	},
}

var getCmd = &cobra.Command{
	Use:   "get PATH",
	Short: "GET a backend path and print the JSON response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
			var out json.RawMessage
			if err := s.Connector.Get(ctx, args[0], &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		})
	},
}

var postCmd = &cobra.Command{
	Use:   "post PATH [JSON]",
	Short: "POST a JSON body (default {}) to a backend path and print the response",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var body any = map[string]any{}
		if len(args) == 2 {
			raw := strings.TrimSpace(args[1])
			if !json.Valid([]byte(raw)) {
				return fmt.Errorf("request body is not valid JSON")
			}
			body = json.RawMessage(raw)
		}
		return withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
			var out json.RawMessage
			if err := s.Connector.Post(ctx, args[0], body, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		})
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Start the backend and wait until /status answers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := app.Open(sessionOptions())
		if err != nil {
			return err
		}
		defer func() { _ = session.Close() }()

		_, startErr := session.Start(cmd.Context())
		if startErr != nil && !session.Store.Snapshot().HasCheck {
			session.Store.Update(false, startErr)
		}

		styles := currentStyles()
		fmt.Fprintln(cmd.OutOrStdout(), styles.RenderStatus(ui.StatusView{
			Snapshot: session.Store.Snapshot(),
			LogPath:  session.Config.BackendLogPath(),
		}))
		if startErr != nil {
			return fmt.Errorf("backend unhealthy: %w", startErr)
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend status and data coverage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
			status, err := backend.FetchStatus(ctx, s.Connector)
			if err != nil {
				return err
			}
			styles := currentStyles()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, styles.RenderStatus(ui.StatusView{
				Snapshot: s.Store.Snapshot(),
				Status:   status,
				LogPath:  s.Config.BackendLogPath(),
			}))
			for _, metric := range status.AvailableMetrics {
				fmt.Fprintf(out, "  %s\n", metric)
			}
			for name, count := range status.Counts {
				fmt.Fprintf(out, "  %s %s\n", styles.MutedText.Render(name), styles.Text.Render(fmt.Sprint(count)))
			}
			return nil
		})
	},
}

var (
	metricStart string
	metricEnd   string
	lagDays     int
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Query metric series from the backend",
}

var metricsHeatmapCmd = &cobra.Command{
	Use:   "heatmap METRIC",
	Short: "Print daily values for a metric",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
			if err := requireMetrics(ctx, s, args[0]); err != nil {
				return err
			}
			points, err := backend.FetchHeatmap(ctx, s.Connector, backend.MetricQuery{Metric: args[0], StartDate: metricStart, EndDate: metricEnd})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), points)
		})
	},
}

var metricsTimeseriesCmd = &cobra.Command{
	Use:   "timeseries METRIC",
	Short: "Print a metric time series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
			if err := requireMetrics(ctx, s, args[0]); err != nil {
				return err
			}
			points, err := backend.FetchTimeseries(ctx, s.Connector, backend.MetricQuery{Metric: args[0], StartDate: metricStart, EndDate: metricEnd})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), points)
		})
	},
}

var metricsCorrelationCmd = &cobra.Command{
	Use:   "correlation X_METRIC Y_METRIC",
	Short: "Correlate two metrics, optionally lagging the second",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(ctx context.Context, s *app.Session) error {
			if err := requireMetrics(ctx, s, args[0], args[1]); err != nil {
				return err
			}
			resp, err := backend.FetchCorrelation(ctx, s.Connector, backend.CorrelationQuery{XMetric: args[0], YMetric: args[1], LagDays: lagDays})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		})
	},
}

// requireMetrics fails when the backend does not list every metric.
func requireMetrics(ctx context.Context, s *app.Session, metrics ...string) error {
	status, err := backend.FetchStatus(ctx, s.Connector)
	if err != nil {
		return err
	}
	for _, m := range metrics {
		if !status.HasMetric(m) {
			return fmt.Errorf("metric %q not available (have %s)", m, strings.Join(status.AvailableMetrics, ", "))
		}
	}
	return nil
}

func init() {
	runCmd.Flags().DurationVar(&pollEvery, "poll", 0, "health poll interval (default 2s)")

	for _, c := range []*cobra.Command{metricsHeatmapCmd, metricsTimeseriesCmd} {
		c.Flags().StringVar(&metricStart, "start", "", "first date (YYYY-MM-DD)")
		c.Flags().StringVar(&metricEnd, "end", "", "last date (YYYY-MM-DD)")
	}
	metricsCorrelationCmd.Flags().IntVar(&lagDays, "lag", 0, "days to lag the second metric")
	metricsCmd.AddCommand(metricsHeatmapCmd, metricsTimeseriesCmd, metricsCorrelationCmd)
}
