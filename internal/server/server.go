package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/vango-dev/slate/internal/config"
	"github.com/vango-dev/slate/internal/dev"
	"github.com/vango-dev/slate/internal/errors"
	"github.com/vango-dev/slate/internal/source"
	"github.com/vango-dev/slate/pkg/assets"
	"github.com/vango-dev/slate/pkg/compiler"
	"github.com/vango-dev/slate/pkg/middleware"
	"github.com/vango-dev/slate/pkg/render"
)

const (
	// IndexPage is the page served for "/".
	IndexPage = "index"

	// PublicPrefix is the URL path the public directory is served under.
	PublicPrefix = "/public/"
)

// Options configures a Server.
type Options struct {
	// Config is the project configuration (default: config.New()).
	Config *config.Config

	// Loader provides the template documents (default: NewLoader(Config)).
	Loader source.Loader

	// Components are Go components available to every template.
	Components map[string]render.Component

	// Logger receives request and reload logs (default: slog.Default()).
	Logger *slog.Logger

	// Registry receives the render and HTTP collectors
	// (default: prometheus.DefaultRegisterer).
	Registry prometheus.Registerer

	// Gatherer backs the metrics endpoint (default: prometheus.DefaultGatherer).
	Gatherer prometheus.Gatherer

	// Reload enables hot reload when non-nil: pages carry the client script
	// and the reload websocket is mounted.
	Reload *dev.ReloadServer
}

// Server serves rendered templates over HTTP. The compiled program is
// swapped atomically by Reload, so requests in flight finish against the
// program they started with.
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	set        *source.Set
	metrics    *render.Metrics
	components map[string]render.Component
	reload     *dev.ReloadServer
	router     chi.Router

	mu   sync.RWMutex
	site *site
}

type site struct {
	program  *compiler.Program
	renderer *render.Renderer
	assets   *assets.Manifest
}

// NewLoader returns the document source selected by cfg.
func NewLoader(cfg *config.Config) source.Loader {
	if cfg.Source.Kind == config.SourceS3 {
		return source.S3{
			Client: source.NewS3Client(cfg.Source.Region),
			Bucket: cfg.Source.Bucket,
			Prefix: cfg.Source.Prefix,
		}
	}
	return source.Dir{Root: cfg.TemplatesPath()}
}

// New creates a Server. Templates are not loaded until Reload is called.
func New(opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loader := opts.Loader
	if loader == nil {
		loader = NewLoader(cfg)
	}

	s := &Server{
		cfg:        cfg,
		logger:     logger.With("component", "server"),
		set:        source.NewSet(loader, compiler.New(compiler.WithLogger(logger)), logger),
		components: opts.Components,
		reload:     opts.Reload,
	}

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	if cfg.Metrics.Enabled {
		s.metrics = render.NewMetrics(
			render.WithNamespace(cfg.Metrics.Namespace),
			render.WithBuckets(cfg.Metrics.Buckets),
			render.WithRegistry(registry),
		)
	}

	s.router = s.routes(registry, opts.Gatherer)
	return s
}

func (s *Server) routes(registry prometheus.Registerer, gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	if s.cfg.Metrics.Enabled {
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		r.Use(middleware.Prometheus(
			middleware.WithNamespace(s.cfg.Metrics.Namespace),
			middleware.WithSubsystem(s.cfg.Metrics.Subsystem),
			middleware.WithConstLabels(s.cfg.Metrics.Labels),
			middleware.WithBuckets(s.cfg.Metrics.Buckets),
			middleware.WithRegistry(registry),
		))
		r.Handle(s.cfg.Metrics.Path, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	if s.cfg.Tracing.Enabled {
		r.Use(middleware.OpenTelemetry(middleware.WithTracerName(s.cfg.Tracing.TracerName)))
	}
	if s.reload != nil {
		r.Handle(dev.ReloadPath, s.reload)
	}

	r.Handle(PublicPrefix+"*", http.StripPrefix(strings.TrimSuffix(PublicPrefix, "/"), http.HandlerFunc(s.servePublic)))
	r.Get("/", s.handlePage)
	r.Get("/*", s.handlePage)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Reload loads and compiles the templates and swaps them in. On failure the
// previous program keeps serving.
func (s *Server) Reload(ctx context.Context) error {
	program, err := s.set.Load(ctx)
	if err != nil {
		return err
	}

	manifest, err := assets.Scan(s.cfg.PublicPath())
	if err != nil {
		return err
	}
	resolver := assets.NewResolver(manifest, PublicPrefix)
	if s.reload != nil {
		resolver = assets.NewPassthroughResolver(PublicPrefix)
	}

	r := render.New(render.Config{
		Logger:     s.logger,
		Components: s.components,
		Globals:    map[string]any{"asset": resolver.Asset},
		Metrics:    s.metrics,
		Tracer:     otel.Tracer(s.cfg.Tracing.TracerName),
		DocType:    s.cfg.Render.DocType,
	})
	r.RegisterProgram(program)

	s.mu.Lock()
	s.site = &site{program: program, renderer: r, assets: manifest}
	s.mu.Unlock()

	stats := s.set.Stats()
	s.logger.Info("templates loaded",
		"documents", stats.Documents,
		"compiled", stats.Compiled,
		"cached", stats.Cached,
		"pages", len(program.Pages),
		"assets", manifest.Len(),
		"components", len(program.Components))
	return nil
}

func (s *Server) current() *site {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.site
}

func (s *Server) servePublic(w http.ResponseWriter, r *http.Request) {
	var m *assets.Manifest
	if st := s.current(); st != nil {
		m = st.assets
	}
	assets.Handler(s.cfg.PublicPath(), m).ServeHTTP(w, r)
}

// handlePage renders the page named by the path, or else the component of
// that name. Query parameters become page variables or component props.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	st := s.current()
	if st == nil {
		http.Error(w, "templates not loaded", http.StatusServiceUnavailable)
		return
	}

	canonical, changed, err := canonicalPath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if changed {
		target := canonical
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
		return
	}
	name, err := pageName(canonical)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	vars := make(map[string]any, len(r.URL.Query()))
	for k, v := range r.URL.Query() {
		vars[k] = v[0]
	}

	var v render.Value
	if u, ok := st.program.Pages[name]; ok {
		v = st.renderer.Unit(u, vars)
	} else if u, ok := st.program.Pages[name+"/"+IndexPage]; ok {
		v = st.renderer.Unit(u, vars)
	} else if s.hasComponent(st, name) {
		v = st.renderer.Call(name, render.Props(vars))
	} else {
		http.NotFound(w, r)
		return
	}

	var page any = v
	if s.reload != nil {
		page = dev.WithClient(v, "")
	}
	if err := st.renderer.Write(r.Context(), w, page); err != nil {
		s.renderError(w, r, name, err)
	}
}

func (s *Server) hasComponent(st *site, name string) bool {
	if _, ok := st.program.Components[name]; ok {
		return true
	}
	_, ok := s.components[name]
	return ok
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, name string, err error) {
	if stderrors.Is(err, context.Canceled) {
		s.logger.Debug("render cancelled", "page", name)
		return
	}
	code := errors.Code(err)
	s.logger.Error("render failed",
		"page", name,
		"code", code,
		"request_id", chimw.GetReqID(r.Context()),
		"error", err)
	if code == "" {
		code = "error"
	}
	http.Error(w, code+": "+err.Error(), http.StatusInternalServerError)
}

// ListenAndServe serves on the configured address until ctx is done, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "url", s.cfg.URL())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
