package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"

	"github.com/rendis/gofind/internal/engine/filter"
	"github.com/rendis/gofind/internal/engine/storage"
	"github.com/rendis/gofind/internal/logging"
	"github.com/rendis/gofind/internal/model"
)

// filterFlags are shared by every command that narrows the country list.
type filterFlags struct {
	search   string
	region   string
	language string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.search, "search", "", "case-insensitive substring of the common name")
	fs.StringVar(&f.region, "region", "", "exact region, e.g. Europe")
	fs.StringVar(&f.language, "language", "", "exact language name, e.g. French")
}

func (f filterFlags) criteria() model.FilterCriteria {
	return model.FilterCriteria{Search: f.search, Region: f.region, Language: f.language}
}

// signalContext is cancelled on SIGINT/SIGTERM so in-flight fetches stop.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func newListCmd() *cobra.Command {
	var ff filterFlags
	var asJSON, stats bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Fetch countries and boundaries, print the filtered list",
		Example: `  gofind list --region Europe --language French
  gofind list --search land --json
  gofind list --stats`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			start := time.Now()
			snap := e.gateway().Load(ctx)
			e.log.Info("load settled",
				logging.Int("countries", len(snap.Countries)),
				logging.Int("boundaries", len(snap.Boundaries)),
				logging.Duration("elapsed", time.Since(start)),
			)

			out := cmd.OutOrStdout()
			if snap.BoundariesErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: boundaries unavailable: %v\n", snap.BoundariesErr)
			}
			if snap.CountriesErr != nil {
				if stats {
					writeStats(out, e.reg)
				}
				return fmt.Errorf("fetching countries: %w", snap.CountriesErr)
			}

			view := filter.ComputeView(snap.Countries, ff.criteria())
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(view.Filtered); err != nil {
					return fmt.Errorf("encoding json: %w", err)
				}
			} else {
				writeCountryTable(out, view.Filtered)
				fmt.Fprintf(out, "%d of %d countries, %d boundary features\n",
					len(view.Filtered), len(snap.Countries), len(snap.Boundaries))
				fmt.Fprintf(out, "regions: %s\n", strings.Join(view.Regions, ", "))
			}

			if stats {
				writeStats(out, e.reg)
			}
			return nil
		},
	}

	ff.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the filtered countries as JSON")
	cmd.Flags().BoolVar(&stats, "stats", false, "print fetch metrics after the list")
	return cmd
}

func writeCountryTable(w io.Writer, countries []model.Country) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "CCA3", "REGION", "CAPITAL", "POPULATION", "LANGUAGES")
	for _, c := range countries {
		t.Row(
			c.Name.Common,
			c.CCA3,
			c.Region,
			strings.Join(c.Capital, ", "),
			fmt.Sprintf("%d", c.Population),
			storage.JoinLanguages(c),
		)
	}
	fmt.Fprintln(w, t.Render())
}

// writeStats dumps the registry as "name{labels} value" lines.
func writeStats(w io.Writer, reg prometheus.Gatherer) {
	families, err := reg.Gather()
	if err != nil {
		fmt.Fprintf(w, "# gather failed: %v\n", err)
		return
	}
	fmt.Fprintln(w, "\n# metrics")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName() + formatLabels(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
			case dto.MetricType_GAUGE:
				fmt.Fprintf(w, "%s %g\n", name, m.GetGauge().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s count=%d sum=%.3fs\n", name, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}
