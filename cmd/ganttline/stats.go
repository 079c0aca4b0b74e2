package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fentz26/ganttline/internal/calendar"
	"github.com/fentz26/ganttline/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats <source>",
	Short: "Summarize a plan or snapshot",
	Long: `Print task counts per depth, the dated span, business days between the
first start and the last end, and real against planned progress.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

var statsToday string

func init() {
	statsCmd.Flags().StringVar(&statsToday, "today", "", "Reference date YYYY-MM-DD (default today)")
}

func runStats(cmd *cobra.Command, args []string) error {
	records, _, err := loadPlan(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	cal, err := cfg.BusinessCalendar()
	if err != nil {
		return err
	}

	today := time.Now()
	if statsToday != "" {
		today, err = time.Parse(calendar.HolidayLayout, statsToday)
		if err != nil {
			return fmt.Errorf("parse --today: %w", err)
		}
	}

	return report.WriteStats(cmd.OutOrStdout(), report.Compute(records, cal, today))
}
