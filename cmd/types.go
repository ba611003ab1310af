package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/lehigh-university-libraries/partmatch/internal/models"
	"github.com/spf13/cobra"
)

func newTypesCmd() *cobra.Command {
	var flags catalogFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "types [component-type]",
		Short: "List component types and their attributes",
		Args:  cobra.MaximumNArgs(1),
		Example: `  # Everything in the strict catalog
  partmatch types

  # One type from a custom catalog
  partmatch types mosfet --types ./types.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := flags.load()
			if err != nil {
				return err
			}

			names := registry.ComponentTypes()
			if len(args) == 1 {
				names = args
			}

			types := make([]models.ComponentType, 0, len(names))
			for _, name := range names {
				md, err := registry.Lookup(name)
				if err != nil {
					return err
				}
				types = append(types, models.DescribeType(md))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(types)
			}

			fmt.Fprintf(out, "Profile: %s\n", registry.Profile())
			for _, ct := range types {
				fmt.Fprintf(out, "\n%s (accept >= %.2f)\n", ct.Name, ct.AcceptanceThreshold)
				for _, a := range ct.Attributes {
					fmt.Fprintf(out, "  %-24s %-9s %s\n", a.Name, a.Importance, a.Rule)
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}
