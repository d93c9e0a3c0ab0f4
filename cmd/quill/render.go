package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/quill"
	"github.com/aretw0/quill/pkg/adapters/source"
	"github.com/aretw0/quill/pkg/ports"
	"github.com/aretw0/quill/pkg/render"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <template>",
	Short: "Render a single template to stdout",
	Long: `Renders one template through the render worker and prints the result.
Templates come from the built-in set unless --dir is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("engine") {
			cfg.Engine, _ = cmd.Flags().GetString("engine")
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		data := map[string]any{}
		if raw, _ := cmd.Flags().GetString("data"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &data); err != nil {
				return fmt.Errorf("invalid --data: %w", err)
			}
		}

		var src ports.TemplateSource
		if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
			src = source.Directory(dir)
		} else {
			src, err = source.Embedded(quill.EmbeddedTemplates())
			if err != nil {
				return err
			}
		}

		engine, err := quill.NewEngine(cfg.Engine, logger)
		if err != nil {
			return err
		}
		svc := render.NewService(engine, render.WithLogger(logger), render.WithRenderTimeout(cfg.Render.Timeout))
		defer svc.Shutdown(context.Background())

		views := render.NewViews(svc, src)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		var out string
		if page, _ := cmd.Flags().GetString("page"); page != "" {
			out, err = views.Page(ctx, page, args[0], data)
		} else {
			out, err = views.Fragment(ctx, args[0], data)
		}
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().String("data", "", "JSON object passed to the template")
	renderCmd.Flags().String("dir", "", "Read templates from this directory instead of the built-in set")
	renderCmd.Flags().String("page", "", "Render the template inside this page (e.g. layout.html)")
	renderCmd.Flags().String("engine", "lua", "Render engine: lua or fake")
}
