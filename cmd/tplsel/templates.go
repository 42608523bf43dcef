package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// templateFile is the export and import format.
type templateFile struct {
	Templates []string `yaml:"templates"`
}

func newTemplatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"tpl"},
		Short:   "Manage the template list",
	}
	cmd.AddCommand(
		newTemplatesListCommand(),
		newTemplatesAddCommand(),
		newTemplatesRemoveCommand(),
		newTemplatesSetCommand(),
		newTemplatesExportCommand(),
		newTemplatesImportCommand(),
	)
	return cmd
}

// withTemplates runs fn against the stored list and saves it when fn reports a change.
func withTemplates(fn func(a *app) (bool, error)) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()
	changed, err := fn(a)
	if err != nil || !changed {
		return err
	}
	return a.saveTemplates()
}

func newTemplatesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print the template list",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTemplates(func(a *app) (bool, error) {
				out := cmd.OutOrStdout()
				values := a.store.Get()
				if len(values) == 0 {
					fmt.Fprintln(out, "(empty)")
				}
				for i, v := range values {
					fmt.Fprintf(out, "%d\t%s\n", i+1, v)
				}
				return false, nil
			})
		},
	}
}

func newTemplatesAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add VALUE...",
		Short: "Append templates to the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, v := range args {
				if strings.TrimSpace(v) == "" {
					return fmt.Errorf("template value cannot be blank")
				}
			}
			return withTemplates(func(a *app) (bool, error) {
				for _, v := range args {
					a.store.Add(strings.TrimSpace(v))
				}
				return true, nil
			})
		},
	}
}

func newTemplatesRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm INDEX",
		Aliases: []string{"remove"},
		Short:   "Remove the template at INDEX (1-based, as printed by list)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTemplates(func(a *app) (bool, error) {
				i, err := parseIndex(args[0], a.store.Len())
				if err != nil {
					return false, err
				}
				a.store.RemoveAt(i)
				return true, nil
			})
		},
	}
}

func newTemplatesSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set INDEX VALUE",
		Short: "Replace the template at INDEX",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := strings.TrimSpace(args[1])
			if value == "" {
				return fmt.Errorf("template value cannot be blank")
			}
			return withTemplates(func(a *app) (bool, error) {
				i, err := parseIndex(args[0], a.store.Len())
				if err != nil {
					return false, err
				}
				a.store.UpdateAt(i, value)
				return true, nil
			})
		},
	}
}

func newTemplatesExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write the template list as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTemplates(func(a *app) (bool, error) {
				data, err := yaml.Marshal(templateFile{Templates: a.store.Get()})
				if err != nil {
					return false, fmt.Errorf("encode templates: %w", err)
				}
				if len(args) == 0 {
					_, err = cmd.OutOrStdout().Write(data)
					return false, err
				}
				return false, os.WriteFile(args[0], data, 0644)
			})
		},
	}
}

func newTemplatesImportCommand() *cobra.Command {
	var appendMode bool
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the template list with one read from YAML",
		Long: `Reads a YAML file of the form

  templates:
    - greeting
    - sign-off

and replaces the template list with it. FILE may be "-" for stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			var f templateFile
			if err := yaml.Unmarshal(data, &f); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			for i, v := range f.Templates {
				if strings.TrimSpace(v) == "" {
					return fmt.Errorf("templates[%d] is blank", i)
				}
			}
			return withTemplates(func(a *app) (bool, error) {
				if appendMode {
					a.store.Replace(append(a.store.Get(), f.Templates...))
				} else {
					a.store.Replace(f.Templates)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d templates\n", a.store.Len())
				return true, nil
			})
		},
	}
	cmd.Flags().BoolVarP(&appendMode, "append", "a", false, "append instead of replacing")
	return cmd
}

func parseIndex(arg string, n int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("index %q is not a number", arg)
	}
	if i < 1 || i > n {
		return 0, fmt.Errorf("index %d out of range (1-%d)", i, n)
	}
	return i - 1, nil
}
