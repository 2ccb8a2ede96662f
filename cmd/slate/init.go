package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/slate/internal/templates"
)

func initCmd() *cobra.Command {
	var (
		template string
		port     int
		metrics  bool
	)

	cmd := &cobra.Command{
		Use:   "init [DIR]",
		Short: "Create a new slate project",
		Long: `Create slate.yaml and starter templates in DIR (default: the working
directory).

Templates: ` + strings.Join(templates.List(), ", ") + `

Examples:
  slate init
  slate init blog --template site --metrics`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			tmpl, err := templates.Get(template)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(abs, 0755); err != nil {
				return err
			}
			if err := tmpl.Create(abs, templates.Config{
				ProjectName: filepath.Base(abs),
				Port:        port,
				Metrics:     metrics,
			}); err != nil {
				return err
			}

			success("Created %s project in %s", tmpl.Name, abs)
			info("cd %s && slate serve --watch", dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", "minimal", "Project template")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Development server port")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "Enable the Prometheus endpoint")

	return cmd
}
