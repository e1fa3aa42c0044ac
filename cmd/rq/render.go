package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/requery/internal/demo"
	"github.com/vango-dev/requery/internal/errors"
	"github.com/vango-dev/requery/pkg/dom"
	"github.com/vango-dev/requery/pkg/rq"
)

func renderCmd(flags *globalFlags) *cobra.Command {
	var ids bool

	cmd := &cobra.Command{
		Use:   "render [app]",
		Short: "Mount an app once and print the resulting HTML",
		Long: `Mount a demo app into a fresh document, run its bindings and
list passes once, and print the resulting HTML to stdout.

Examples:
  rq render
  rq render counter
  rq render todos --ids`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				flags.app = args[0]
			}
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			app, ok := demo.Lookup(cfg.App)
			if !ok {
				return errors.New("E123").WithDetailf("No app named %q", cfg.App)
			}

			doc, err := app.Document()
			if err != nil {
				return fmt.Errorf("parse %s: %w", app.Name(), err)
			}
			registry := rq.NewRegistry(rq.WithLogger(cfg.NewLogger(cmd.ErrOrStderr())))
			if err := app.Mount(registry, doc); err != nil {
				return err
			}
			if err := registry.Flush(); err != nil {
				return err
			}

			var opts []dom.RenderOption
			if ids {
				opts = append(opts, dom.WithIDs())
			}
			if err := dom.Render(cmd.OutOrStdout(), doc.Root(), opts...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().BoolVar(&ids, "ids", false, "Include the element ids live patches address")

	return cmd
}

func appsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apps",
		Short: "List the demo apps",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range demo.Names() {
				app, _ := demo.Lookup(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", name, app.Title())
			}
		},
	}
}
