package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/slate/internal/errors"
	"github.com/vango-dev/slate/internal/source"
	"github.com/vango-dev/slate/pkg/compiler"
	"github.com/vango-dev/slate/pkg/markup"
	"github.com/vango-dev/slate/pkg/render"
)

type renderOptions struct {
	component string
	propsFile string
	dir       string
	doctype   bool
}

func renderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a template document to stdout",
		Long: `Render the page of a template document, or one of its components.

Props for --component are read from a YAML mapping. With --dir, components
from every document in DIR are available too.

Examples:
  slate render templates/index.yaml
  slate render templates/card.yaml --component Card --props card.yaml
  slate render page.yaml --dir templates/components`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.component, "component", "c", "", "Render this component instead of the page")
	cmd.Flags().StringVarP(&opts.propsFile, "props", "p", "", "YAML file with component props")
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Directory of documents providing components")
	cmd.Flags().BoolVar(&opts.doctype, "doctype", true, "Prefix documents with <!DOCTYPE html>")

	return cmd
}

func runRender(ctx context.Context, cmd *cobra.Command, path string, opts renderOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	doc, err := markup.DecodeFile(path)
	if err != nil {
		return err
	}
	c := compiler.New()
	program, err := c.CompileDocument(doc)
	if err != nil {
		return err
	}

	if opts.dir != "" {
		shared, err := source.NewSet(source.Dir{Root: opts.dir}, c, nil).Load(ctx)
		if err != nil {
			return err
		}
		if err := shared.Merge(program); err != nil {
			return err
		}
		program = shared
	}

	r := render.New(render.Config{DocType: opts.doctype})
	r.RegisterProgram(program)

	var v render.Value
	switch {
	case opts.component != "":
		props, err := readProps(opts.propsFile)
		if err != nil {
			return err
		}
		v = r.Call(opts.component, props)
	default:
		page, ok := program.Pages[doc.Name]
		if !ok {
			return errors.New(errors.CodeInvalidMarkup).
				WithDetailf("%s has no page", path).
				WithSuggestion("Pass --component to render one of: " + fmt.Sprint(program.ComponentNames()))
		}
		v = r.Unit(page, nil)
	}

	if err := r.Write(ctx, cmd.OutOrStdout(), v); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}

func readProps(path string) (render.Props, error) {
	if path == "" {
		return render.Props{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var props render.Props
	if err := yaml.Unmarshal(data, &props); err != nil {
		return nil, errors.New(errors.CodeDecode).WithDetail(path).Wrap(err)
	}
	return props, nil
}
