package dev

import (
	"context"
	"log/slog"

	"github.com/vango-dev/slate/pkg/render"
)

// Session rebuilds on every change reported by a Watcher and tells connected
// browsers to reload, or shows the rebuild error.
type Session struct {
	Watcher *Watcher
	Reload  *ReloadServer

	// Rebuild reloads the templates.
	Rebuild func(ctx context.Context) error

	Logger *slog.Logger
}

// Run watches until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "dev")

	s.Watcher.OnChange(func(c Change) {
		logger.Info("change detected", "path", c.Path, "type", c.Type)
		if err := s.Rebuild(ctx); err != nil {
			logger.Error("rebuild failed", "error", err)
			s.Reload.Notify(err)
			return
		}
		s.Reload.Notify(nil)
	})
	return s.Watcher.Start(ctx)
}

// WithClient returns v with the reload client script deferred to the end of
// the document body.
func WithClient(v any, base string) render.Value {
	script := render.Raw(ClientScript(base))
	return render.Sequence{
		render.Thunk(func(_ context.Context, o *render.Owner) (any, error) {
			o.Root().Inject(render.RegionBody, render.Post, script)
			return nil, nil
		}),
		v,
	}
}
