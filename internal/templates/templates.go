package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/vango-dev/slate/internal/config"
	"github.com/vango-dev/slate/internal/errors"
)

// Config contains scaffold variables.
type Config struct {
	// ProjectName is the name of the project.
	ProjectName string

	// Port is the development server port.
	Port int

	// Metrics enables the Prometheus endpoint.
	Metrics bool
}

// Template is a project scaffold.
type Template struct {
	Name        string
	Description string

	// Files maps slash-separated relative paths to text/template sources.
	Files map[string]string
}

var scaffolds = map[string]*Template{
	"minimal": minimalTemplate(),
	"site":    siteTemplate(),
}

// Get returns a scaffold by name.
func Get(name string) (*Template, error) {
	tmpl, ok := scaffolds[name]
	if !ok {
		return nil, errors.New(errors.CodeUnknownScaffold).
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: minimal, site")
	}
	return tmpl, nil
}

// List returns the scaffold names in sorted order.
func List() []string {
	names := make([]string, 0, len(scaffolds))
	for name := range scaffolds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create writes the scaffold into dir. It refuses to overwrite an existing
// project.
func (t *Template) Create(dir string, cfg Config) error {
	if config.Exists(dir) {
		return errors.New(errors.CodeProjectExists).
			WithDetail(filepath.Join(dir, config.ConfigFileName) + " already exists")
	}
	if cfg.Port == 0 {
		cfg.Port = config.DefaultPort
	}

	for relPath, content := range t.Files {
		tmpl, err := template.New(relPath).Parse(content)
		if err != nil {
			return errors.Newf(errors.CategoryCLI, "invalid template %s: %v", relPath, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, cfg); err != nil {
			return errors.Newf(errors.CategoryCLI, "template execute error %s: %v", relPath, err)
		}

		fullPath := filepath.Join(dir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
			return err
		}
	}
	return nil
}

const configFile = `name: {{.ProjectName}}
paths:
  templates: templates
  public: public
server:
  host: localhost
  port: {{.Port}}
dev:
  hotReload: true
  debounce: 100ms
metrics:
  enabled: {{.Metrics}}
render:
  doctype: true
`

func minimalTemplate() *Template {
	return &Template{
		Name:        "minimal",
		Description: "A single page",
		Files: map[string]string{
			config.ConfigFileName: configFile,
			"templates/index.yaml": `page:
  el: html
  attrs: {lang: en}
  children:
    - directive: head
      children:
        - el: title
          children: ["{{.ProjectName}}"]
    - el: body
      children:
        - el: h1
          children: ["Hello from {{.ProjectName}}"]
`,
		},
	}
}

func siteTemplate() *Template {
	return &Template{
		Name:        "site",
		Description: "A layout component, two pages and a stylesheet",
		Files: map[string]string{
			config.ConfigFileName: configFile,
			"templates/components/layout.yaml": `components:
  Layout:
    params: [title]
    render:
      el: html
      attrs: {lang: en}
      children:
        - directive: head
          children:
            - el: title
              children: ["{ title }"]
            - el: link
              attrs: {rel: stylesheet, href: "{ asset('style.css') }"}
        - el: body
          children:
            - el: nav
              children:
                - {el: a, attrs: {href: /}, children: [Home]}
                - " "
                - {el: a, attrs: {href: /pages/about}, children: [About]}
            - el: main
              children: ["{ children }"]
`,
			"templates/index.yaml": `page:
  component: Layout
  attrs: {title: "{{.ProjectName}}"}
  children:
    - el: h1
      children: ["Welcome to {{.ProjectName}}"]
    - el: p
      children: ["Edit templates/index.yaml and the page reloads."]
`,
			"templates/pages/about.yaml": `page:
  component: Layout
  attrs: {title: About}
  children:
    - el: h1
      children: [About]
`,
			"public/style.css": `body {
  font-family: system-ui, sans-serif;
  margin: 2rem auto;
  max-width: 40rem;
}
`,
		},
	}
}
