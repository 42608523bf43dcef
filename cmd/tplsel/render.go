package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/xonecas/tplsel/internal/debug"
	"github.com/xonecas/tplsel/internal/dom"
	"github.com/xonecas/tplsel/internal/engine"
	"github.com/xonecas/tplsel/internal/highlight"
	"github.com/xonecas/tplsel/internal/plugin"
	"github.com/xonecas/tplsel/internal/widget"
)

func newRenderCommand() *cobra.Command {
	var (
		color  bool
		pretty bool
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Reconcile a document with the template list and print it",
		Long: `Loads FILE (or stdin when FILE is "-"), brings every template dropdown in
line with the current template list and prints the resulting markup.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.close()

			e := engine.New()
			p := plugin.Attach(e, a.store)
			defer p.Detach()
			if err := e.Load(string(src)); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			out := e.HTML()
			if pretty {
				out = debug.Markup(e.Body())
			}
			if color {
				out = highlight.New(a.cfg.UI.SyntaxThemeOrDefault()).Markup(out) + "\x1b[0m"
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)

			if n := flagged(e); strict && n > 0 {
				return fmt.Errorf("%d template dropdown(s) flagged", n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&color, "color", false, "highlight the output")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "indent block elements")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any dropdown is flagged")
	return cmd
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	src, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return src, nil
}

func flagged(e *engine.Engine) int {
	n := 0
	for _, sel := range dom.Controls(e.Body()) {
		if widget.StateOf(sel).Invalid() {
			n++
		}
	}
	return n
}
