package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rendis/gofind/internal/engine/storage"
	"github.com/rendis/gofind/internal/model"
)

func newLookupCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "lookup NAME",
		Short:   "Look one country up by name",
		Example: "  gofind lookup \"new zealand\"",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			countries, err := e.gateway().FetchCountryByName(ctx, args[0])
			if err != nil {
				return fmt.Errorf("looking up %q: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(countries)
			}
			for i, c := range countries {
				if i > 0 {
					fmt.Fprintln(out)
				}
				writeCountry(out, c)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw records as JSON")
	return cmd
}

func writeCountry(w io.Writer, c model.Country) {
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "  %-11s %s\n", label, value)
		}
	}

	fmt.Fprintf(w, "%s %s\n", c.Flag, c.Name.Common)
	row("Official:", c.Name.Official)
	row("Code:", c.CCA3)
	row("Capital:", strings.Join(c.Capital, ", "))
	row("Region:", strings.TrimSuffix(c.Region+" / "+c.Subregion, " / "))
	if c.Population > 0 {
		row("Population:", fmt.Sprintf("%d", c.Population))
	}
	row("Languages:", storage.JoinLanguages(c))
	if lat, lng, ok := c.Coordinates(); ok {
		row("Coords:", fmt.Sprintf("%.4f, %.4f", lat, lng))
	}
}
