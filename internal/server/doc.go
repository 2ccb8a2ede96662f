// Package server serves compiled templates over HTTP.
//
// Routes:
//
//	GET /            renders the "index" page
//	GET /{name...}   renders the page of that document name, else the
//	                 component of that name with query parameters as props
//	GET /public/*    static files from the public directory
//	GET /metrics     Prometheus collectors, when metrics are enabled
//	GET /_slate/reload
//	                 the hot reload websocket, when hot reload is enabled
//
// Render failures answer 500 with the error code.
package server
