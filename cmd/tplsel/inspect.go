package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xonecas/tplsel/internal/treesitter"
)

func newInspectCommand() *cobra.Command {
	var flaggedOnly bool
	cmd := &cobra.Command{
		Use:   "inspect PATH",
		Short: "List the template dropdowns in an HTML file or directory",
		Long: `Prints the position, selection and options of every template dropdown found
in PATH. Directories are searched recursively for .html files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupLogging()
			if err != nil {
				return err
			}
			defer a.close()

			path := args[0]
			fi, err := os.Stat(path)
			if err != nil {
				return err
			}

			var snap map[string][]treesitter.Symbol
			if fi.IsDir() {
				idx := treesitter.NewIndex(path)
				if err := idx.Build(); err != nil {
					return fmt.Errorf("index %s: %w", path, err)
				}
				snap = idx.Snapshot(flaggedOnly)
			} else {
				syms, err := treesitter.ParseFile(path)
				if err != nil {
					return err
				}
				snap = map[string][]treesitter.Symbol{path: syms}
			}
			fmt.Fprint(cmd.OutOrStdout(), treesitter.FormatOutline(snap))
			return nil
		},
	}
	cmd.Flags().BoolVar(&flaggedOnly, "flagged", false, "only list documents with flagged dropdowns")
	return cmd
}
