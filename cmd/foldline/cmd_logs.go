package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/foldline/foldline/internal/config"
	"github.com/foldline/foldline/internal/logtail"
)

var (
	logLines  int
	logFollow bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the backend log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		path := cfg.BackendLogPath()
		styles := currentStyles()
		out := cmd.OutOrStdout()

		if !logFollow {
			lines, err := logtail.Read(path, logLines)
			if err != nil {
				return err
			}
			for _, line := range lines {
				fmt.Fprintln(out, styles.HighlightLine(line))
			}
			return nil
		}

		lines, offset, err := logtail.Tail(path, logLines)
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Fprintln(out, styles.HighlightLine(line))
		}
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return logtail.FollowFrom(ctx, path, offset, func(line string) {
			fmt.Fprintln(out, styles.HighlightLine(line))
		})
	},
}

func init() {
	logsCmd.Flags().IntVarP(&logLines, "lines", "n", 200, "number of trailing lines (0 for all)")
	logsCmd.Flags().BoolVarP(&logFollow, "follow", "f", false, "keep printing new lines")
}
