package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rendis/gofind/internal/engine/filter"
	"github.com/rendis/gofind/internal/engine/storage"
	"github.com/rendis/gofind/internal/logging"
	"github.com/rendis/gofind/internal/model"
)

func newExportCmd() *cobra.Command {
	var ff filterFlags
	var outputPath, format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered country list to a CSV or SQLite file",
		Example: `  gofind export --output countries.csv
  gofind export --format sqlite --region Asia --output asia.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				return fmt.Errorf("--output is required")
			}
			if format != "csv" && format != "sqlite" {
				return fmt.Errorf("unsupported format: %s (csv or sqlite)", format)
			}

			e := envFrom(cmd)
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			countries, err := e.gateway().FetchCountries(ctx)
			if err != nil {
				return fmt.Errorf("fetching countries: %w", err)
			}
			view := filter.ComputeView(countries, ff.criteria())
			if len(view.Filtered) == 0 {
				return fmt.Errorf("no countries match the filter")
			}

			if dir := filepath.Dir(outputPath); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("creating output dir: %w", err)
				}
			}

			var n int
			switch format {
			case "csv":
				n, err = exportCSV(outputPath, view.Filtered)
			case "sqlite":
				n, err = exportSQLite(outputPath, view.Filtered)
			}
			if err != nil {
				return err
			}

			e.log.Info("export finished",
				logging.String("format", format),
				logging.String("path", outputPath),
				logging.Int("rows", n),
			)
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d countries to %s\n", n, outputPath)
			return nil
		},
	}

	ff.bind(cmd)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (required)")
	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv or sqlite")
	return cmd
}

func exportCSV(path string, countries []model.Country) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()

	if err := storage.WriteCSV(f, countries); err != nil {
		return 0, fmt.Errorf("writing csv: %w", err)
	}
	return len(countries), f.Close()
}

func exportSQLite(path string, countries []model.Country) (int, error) {
	store, err := storage.NewStore(path)
	if err != nil {
		return 0, fmt.Errorf("opening db: %w", err)
	}
	defer store.Close()

	n, err := store.Replace(countries)
	if err != nil {
		return 0, fmt.Errorf("writing rows: %w", err)
	}
	return n, nil
}
