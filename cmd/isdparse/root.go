package main

import (
	"github.com/couchcryptid/isd-etl-service/internal/isd"
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree. A fresh tree per call keeps flag
// state out of package globals.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "isdparse",
		Short: "Parse NOAA Integrated Surface Database records",
		Long: `isdparse reads fixed-width NOAA ISD lines and writes one JSON
document per record. Only the control and mandatory data sections are
decoded unless a YAML definitions file says otherwise.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("sections", "s", "", "YAML section definitions (default: built-in control and mandatory)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newParseCmd(), newSectionsCmd())
	return rootCmd
}

// activeSections returns the sections named by --sections, or the defaults.
func activeSections(cmd *cobra.Command) ([]isd.Section, error) {
	path, _ := cmd.Flags().GetString("sections")
	if path == "" {
		return isd.DefaultSections(), nil
	}
	return isd.LoadSectionsFile(path)
}
