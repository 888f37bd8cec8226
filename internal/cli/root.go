// Package cli implements the roadmap command line: schedule, optimize, and
// diagnose plans locally without a server.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/me/roadmap/internal/logging"
	"github.com/me/roadmap/pkg/model"
)

var (
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string
	flagToday     string

	logger *slog.Logger
)

// NewRootCmd creates the root cobra command for the roadmap CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "roadmap",
		Short: "roadmap — milestone-driven schedule optimizer",
		Long:  "roadmap schedules task graphs onto an engineering roster and searches for assignments that hit more milestone freezes.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().StringVar(&flagToday, "today", "", "Schedule start date (YYYY-MM-DD, default: today)")

	root.AddCommand(
		newScheduleCmd(),
		newOptimizeCmd(),
		newDiagnoseCmd(),
	)

	return root
}

// resolveToday applies the --today override.
func resolveToday() (model.Date, error) {
	if flagToday == "" {
		return model.Today(), nil
	}
	d, err := model.ParseDate(flagToday)
	if err != nil {
		return "", fmt.Errorf("--today: %w", err)
	}
	return d, nil
}
