package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/fitplan/internal/fetch"
	"github.com/jonathan/fitplan/internal/ingestion"
	"github.com/jonathan/fitplan/internal/types"
)

func newCatalogCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the exercise catalog",
	}
	cmd.AddCommand(newCatalogImportCmd(opts))
	return cmd
}

func newCatalogImportCmd(opts *globalOptions) *cobra.Command {
	var (
		file     string
		url      string
		metaPath string
		validate bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import an ExerciseDB JSON dump into the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (file == "") == (url == "") {
				return errors.New("exactly one of --file or --url is required")
			}
			var (
				exercises []types.CatalogExercise
				meta      *ingestion.Metadata
				err       error
			)
			if file != "" {
				exercises, meta, err = ingestion.LoadCatalogFile(file)
			} else {
				exercises, meta, err = ingestion.LoadCatalogURL(cmd.Context(), url, fetch.DefaultOptions())
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Parsed %d exercises (%d skipped), sha256 %s\n", meta.Records, meta.Skipped, meta.Hash)
			if metaPath != "" {
				if err := writeMetadata(metaPath, meta); err != nil {
					return err
				}
			}
			if validate {
				return nil
			}

			cfg, logger, err := setup(opts)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			store, err := requireStorage(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			written, err := store.Catalog.UpsertExercises(cmd.Context(), exercises)
			if err != nil {
				return fmt.Errorf("failed to import catalog: %w", err)
			}
			logger.Info("catalog imported",
				zap.String("source", meta.Source),
				zap.Int("records", meta.Records),
				zap.Int("written", written))
			fmt.Fprintf(out, "Imported %d exercises into %s\n", written, cfg.Database.Driver)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the exercises JSON dump")
	cmd.Flags().StringVar(&url, "url", "", "HTTP(S) URL of the exercises JSON dump")
	cmd.Flags().StringVar(&metaPath, "metadata", "", "Write import metadata (source, hash, counts) as JSON to this path")
	cmd.Flags().BoolVar(&validate, "validate-only", false, "Parse and validate the dump without writing")
	return cmd
}

func writeMetadata(path string, meta *ingestion.Metadata) error {
	data, err := meta.ToJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}
