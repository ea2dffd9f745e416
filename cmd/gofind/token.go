package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rendis/gofind/internal/engine/identity"
	"github.com/rendis/gofind/internal/logging"
)

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token [TOKEN|-]",
		Short: "Decode a sign-in credential locally and log its claims",
		Long: `Decodes a JWT credential without verifying it and prints its claims.
The token is read from the argument, or from stdin when the argument is "-"
or missing. Nothing is stored or sent anywhere.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := envFrom(cmd)

			var raw string
			if len(args) == 1 && args[0] != "-" {
				raw = args[0]
			} else {
				b, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 64<<10))
				if err != nil {
					return fmt.Errorf("reading token: %w", err)
				}
				raw = strings.TrimSpace(string(b))
			}

			claims, err := identity.DecodeClaims(raw)
			if err != nil {
				return err
			}

			s := identity.Summarize(claims)
			e.log.Info("credential decoded",
				logging.String("sub", s.Subject),
				logging.String("email", s.Email),
				logging.String("name", s.Name),
				logging.String("iss", s.Issuer),
				logging.Any("claims", map[string]any(claims)),
			)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(claims)
		},
	}
}
