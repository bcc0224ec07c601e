package main

import (
	"github.com/couchcryptid/isd-etl-service/internal/isd"
	"github.com/spf13/cobra"
)

func newSectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "Print the active section definitions as YAML",
		Long: `Print the section definitions the parser would use, in the same YAML
format --sections accepts. The output is a starting point for custom
definitions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sections, err := activeSections(cmd)
			if err != nil {
				return err
			}
			out, err := isd.MarshalSections(sections)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
