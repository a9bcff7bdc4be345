package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/fitplan/internal/config"
	"github.com/jonathan/fitplan/internal/llm"
	"github.com/jonathan/fitplan/internal/observability"
	"github.com/jonathan/fitplan/internal/planner"
	"github.com/jonathan/fitplan/internal/rendering"
	"github.com/jonathan/fitplan/internal/types"
)

type generateOptions struct {
	profilePath    string
	userID         string
	model          string
	dryRunResponse string
	markdownOut    string
	jsonOutput     bool
	stream         bool
	noSave         bool
}

func newGenerateCmd(opts *globalOptions) *cobra.Command {
	gen := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a training plan from a profile file",
		Long: "Generate a training plan for the profile in --profile. With --dry-run-response the " +
			"completion backend is replaced by the contents of that file, which is useful for " +
			"exercising parsing and enrichment without an API key.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), opts, gen)
		},
	}

	cmd.Flags().StringVarP(&gen.profilePath, "profile", "p", "", "Path to a UserFitnessProfile JSON file (required)")
	cmd.Flags().StringVarP(&gen.userID, "user", "u", "cli", "User id the plan is saved for")
	cmd.Flags().StringVar(&gen.model, "model", "", "Override the configured model for this run")
	cmd.Flags().StringVar(&gen.dryRunResponse, "dry-run-response", "", "Use this file as the model reply instead of calling the backend")
	cmd.Flags().StringVarP(&gen.markdownOut, "out", "o", "", "Also write the plan as Markdown to this path")
	cmd.Flags().BoolVar(&gen.jsonOutput, "json", false, "Print the result as JSON instead of a summary")
	cmd.Flags().BoolVar(&gen.stream, "stream", false, "Echo model output to stderr as it arrives")
	cmd.Flags().BoolVar(&gen.noSave, "no-save", false, "Do not connect to the database; the plan is neither enriched nor saved")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

func readProfile(path string) (*types.UserFitnessProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	var profile types.UserFitnessProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return &profile, nil
}

// clientConfig applies the --model override to the configured backend.
func (g *generateOptions) clientConfig(cfg *config.Config) *llm.Config {
	clientCfg := cfg.LLMClientConfig()
	if g.model != "" {
		return clientCfg.WithModel(g.model)
	}
	return clientCfg
}

func newGenerateClient(ctx context.Context, cfg *config.Config, gen *generateOptions) (llm.Client, error) {
	if gen.dryRunResponse != "" {
		data, err := os.ReadFile(gen.dryRunResponse)
		if err != nil {
			return nil, fmt.Errorf("failed to read dry-run response: %w", err)
		}
		return llm.NewStaticClient(string(data)), nil
	}
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("llm.api_key is required (set FITPLAN_LLM_API_KEY or GEMINI_API_KEY) or pass --dry-run-response")
	}
	return llm.NewClient(ctx, gen.clientConfig(cfg), cfg.LLM.APIKey)
}

func runGenerate(ctx context.Context, out io.Writer, opts *globalOptions, gen *generateOptions) error {
	if gen.noSave {
		opts.dbDriver = config.DriverNone
	}
	cfg, logger, err := setup(opts)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	profile, err := readProfile(gen.profilePath)
	if err != nil {
		return err
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := newGenerateClient(ctx, cfg, gen)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	service := newPlanner(cfg, client, store, logger)

	var outcome *planner.Outcome
	if gen.stream {
		outcome, err = service.GenerateStream(ctx, gen.userID, profile, func(chunk string) error {
			_, werr := io.WriteString(os.Stderr, chunk)
			return werr
		})
		fmt.Fprintln(os.Stderr)
	} else {
		outcome, err = service.Generate(ctx, gen.userID, profile)
	}
	if err != nil {
		if stage := planner.StageOf(err); stage != "" {
			return fmt.Errorf("%s (kind=%s, stage=%s)", err, planner.KindOf(err), stage)
		}
		return err
	}

	if gen.markdownOut != "" {
		doc, err := rendering.RenderPlan(outcome.Plan, "")
		if err != nil {
			return err
		}
		if err := os.WriteFile(gen.markdownOut, []byte(doc), 0644); err != nil {
			return fmt.Errorf("failed to write markdown: %w", err)
		}
	}

	if gen.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	}

	printer := observability.NewPrinter(out)
	printer.PrintProfile(profile)
	printer.PrintPlanSummary(outcome.Plan)
	printer.PrintEnrichment(outcome.Enrichment)
	if outcome.Saved {
		fmt.Fprintf(out, "Saved plan %s for user %s\n", outcome.PlanID, gen.userID)
	} else {
		fmt.Fprintln(out, "Plan was not saved")
	}
	return nil
}
