package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/fitplan/internal/observability"
	"github.com/jonathan/fitplan/internal/planner"
	"github.com/jonathan/fitplan/internal/rendering"
)

func newPlansCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Inspect stored training plans",
	}
	cmd.AddCommand(newPlansListCmd(opts), newPlansShowCmd(opts))
	return cmd
}

// openPlanService builds a read-only planner over the configured database.
func openPlanService(cmd *cobra.Command, opts *globalOptions) (*planner.Service, func(), error) {
	cfg, logger, err := setup(opts)
	if err != nil {
		return nil, nil, err
	}
	store, err := requireStorage(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	// Listing and fetching never reach the backend.
	service := planner.New(nil, store.Plans, nil, planner.Options{}, logger.Named("planner"))
	return service, func() {
		store.Close()
		_ = logger.Sync()
	}, nil
}

func newPlansListCmd(opts *globalOptions) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's plans, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, done, err := openPlanService(cmd, opts)
			if err != nil {
				return err
			}
			defer done()

			records, err := service.ListPlans(cmd.Context(), userID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintf(out, "No plans for user %s\n", userID)
				return nil
			}
			for _, rec := range records {
				fmt.Fprintf(out, "%s  %s  %s, %d days, %d exercises\n",
					rec.ID,
					rec.CreatedAt.Local().Format("2006-01-02 15:04"),
					rec.Profile.Goal,
					len(rec.Plan.WeeklySchedule),
					rec.Plan.ExerciseCount())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newPlansShowCmd(opts *globalOptions) *cobra.Command {
	var (
		idStr  string
		userID string
		format string
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one stored plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			planID, err := uuid.Parse(idStr)
			if err != nil {
				return fmt.Errorf("invalid plan id %q: %w", idStr, err)
			}
			service, done, err := openPlanService(cmd, opts)
			if err != nil {
				return err
			}
			defer done()

			record, err := service.GetPlan(cmd.Context(), userID, planID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(record)
			case "markdown", "md":
				doc, err := rendering.RenderRecord(record)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(out, doc)
				return err
			case "summary":
				printer := observability.NewPrinter(out)
				printer.PrintProfile(&record.Profile)
				printer.PrintPlanSummary(&record.Plan)
				return nil
			default:
				return fmt.Errorf("unknown format %q (expected summary, json or markdown)", format)
			}
		},
	}
	cmd.Flags().StringVar(&idStr, "id", "", "Plan id (required)")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "Owner user id (required)")
	cmd.Flags().StringVarP(&format, "format", "f", "summary", "Output format: summary, json or markdown")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
