// Package source loads template documents from a local directory or an S3
// bucket and compiles them into a single program.
//
//	set := source.NewSet(source.Dir{Root: "templates"}, nil, logger)
//	program, err := set.Load(ctx)
package source
