// Package render executes compiled units and arbitrary values into HTML
// documents on the server.
//
// # Values
//
// Anything a component returns is normalised to a Value: nil and booleans
// render nothing, strings and numbers render escaped text, slices render
// their elements in order, Thunks are called with the active Owner,
// gomponents nodes render as raw HTML and Futures are awaited.
//
// # Owners
//
// Every component activation gets its own Owner. Owners generate ids with
// CreateID and carry context values; GetContext walks from an owner to the
// root and never looks at siblings. Owners are passed explicitly, so values
// resumed after a Future still resolve in the scope that created them.
//
// # Basic Usage
//
//	r := render.New(render.Config{})
//	r.RegisterProgram(program)
//	html, err := r.RenderComponent(ctx, "Page", render.Props{"title": "Hi"})
//
// # Deferred Head and Body Content
//
// The head and body directives collect content while the tree resolves.
// Once the main document is complete the content is spliced into the
// <head> and <body> regions, creating them when missing. Content injected
// after that point is dropped.
package render
