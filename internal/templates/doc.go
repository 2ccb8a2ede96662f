// Package templates provides project scaffolds for slate init.
//
// # Available Templates
//
//   - minimal: slate.yaml and a single page
//   - site: a layout component, two pages and a stylesheet
//
// # Usage
//
//	tmpl, err := templates.Get("site")
//	if err != nil {
//	    return err
//	}
//	if err := tmpl.Create(dir, templates.Config{ProjectName: "blog"}); err != nil {
//	    return err
//	}
//
// Files are text/template sources executed with Config.
package templates
