package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"wordladder/internal/models"
	"wordladder/internal/repository"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Missed-word reports",
	}
	cmd.AddCommand(newReportMissedCommand(ctx))
	cmd.AddCommand(newReportRecentCommand(ctx))
	return cmd
}

func newReportMissedCommand(ctx *commandContext) *cobra.Command {
	var learnerID, centreID int64
	var days int

	cmd := &cobra.Command{
		Use:   "missed",
		Short: "Every word missed within the window for a learner or a centre",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var scope repository.Scope
			switch {
			case learnerID > 0 && centreID > 0:
				return errors.New("use either --learner or --centre, not both")
			case learnerID > 0:
				scope = repository.LearnerScope(learnerID)
			case centreID > 0:
				scope = repository.CentreScope(centreID)
			default:
				return errors.New("one of --learner or --centre is required")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = cfg.DefaultWindowDays
			}

			st, err := ctx.openStore(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			missed, err := st.analyzer.AggregateMissed(cmd.Context(), scope, days)
			if err != nil {
				return err
			}
			printMissed(cmd.OutOrStdout(), fmt.Sprintf("%s, last %d days", scope, days), missed)
			return nil
		},
	}
	cmd.Flags().Int64Var(&learnerID, "learner", 0, "Learner id")
	cmd.Flags().Int64Var(&centreID, "centre", 0, "Centre id")
	cmd.Flags().IntVar(&days, "days", 0, "Trailing window in days (default from config)")
	return cmd
}

func newReportRecentCommand(ctx *commandContext) *cobra.Command {
	var learnerID int64
	var days, limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "A learner's most missed words within the window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = cfg.DefaultWindowDays
			}

			st, err := ctx.openStore(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			missed, err := st.analyzer.RecentMissed(cmd.Context(), learnerID, days, limit)
			if err != nil {
				return err
			}
			printMissed(cmd.OutOrStdout(), fmt.Sprintf("learner %d, last %d days", learnerID, days), missed)
			return nil
		},
	}
	cmd.Flags().Int64Var(&learnerID, "learner", 0, "Learner id")
	cmd.Flags().IntVar(&days, "days", 0, "Trailing window in days (default from config)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum words to report")
	_ = cmd.MarkFlagRequired("learner")
	return cmd
}

func printMissed(w io.Writer, title string, missed []models.MissedWord) {
	if len(missed) == 0 {
		fmt.Fprintf(w, "No missed words (%s)\n", title)
		return
	}

	rows := make([][]string, len(missed))
	for i, m := range missed {
		rows[i] = append(wordRow(m.Word), strconv.Itoa(m.MissedCount))
	}
	fmt.Fprintf(w, "Missed words (%s)\n", title)
	fmt.Fprintln(w, renderTable(
		[]string{"ID", "Word", "Sound group", "Stage", "Missed"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight},
	))
}
