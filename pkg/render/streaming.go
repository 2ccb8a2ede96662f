package render

import (
	"context"
	"io"
	"net/http"
)

// Write renders v and writes the document to w. When w implements
// http.Flusher it is flushed once the document is written.
func (r *Renderer) Write(ctx context.Context, w io.Writer, v any) error {
	html, err := r.Render(ctx, v)
	if err != nil {
		return err
	}
	if rw, ok := w.(http.ResponseWriter); ok && rw.Header().Get("Content-Type") == "" {
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	if _, err := io.WriteString(w, html); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// FlushableWriter wraps an io.Writer with a counting Flush. It stands in for
// a streaming http.ResponseWriter in tests.
type FlushableWriter struct {
	io.Writer
	FlushCount int
}

// Flush implements http.Flusher.
func (w *FlushableWriter) Flush() {
	w.FlushCount++
}
