// Package errors provides structured, actionable error messages for slate.
//
// Every error carries a registered code that maps to a category and a short
// message. Compile errors point at the template document location that
// produced them:
//
//	err := errors.New(errors.CodeClassification).
//	    WithDetail("unsupported operator \"|\"").
//	    WithLocation("templates/home.yaml", 12, 9)
//
//	fmt.Print(err.Format())
//	// ERROR E200: Unsupported expression
//	//
//	//   templates/home.yaml:12:9
//	//   ...
//
// # Categories
//
//   - compile: the template compiler rejected a node or expression
//   - runtime: rendering failed (unknown component, unresolvable value,
//     malformed document, expression failure)
//   - config: slate.yaml problems
//   - source: template documents could not be read or decoded
//   - cli: command line usage problems
package errors
