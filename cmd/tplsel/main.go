package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set during build with -ldflags
var version = "dev"

var (
	configPath string
	dbPath     string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tplsel [DOCUMENT]",
		Short: "Edit documents with template dropdowns",
		Long: `tplsel is a terminal editor for HTML documents containing template dropdowns.
Every dropdown follows one shared template list: editing the list updates each
dropdown in the document, and dropdowns whose choice disappears are flagged.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runEditor,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default <data dir>/config.toml)")
	root.PersistentFlags().StringVar(&dbPath, "db", "", "database file (overrides storage.path)")

	root.AddCommand(
		newRenderCommand(),
		newInspectCommand(),
		newTemplatesCommand(),
		versionCmd,
	)
	return root
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tplsel",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tplsel version %s\n", version)
	},
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
