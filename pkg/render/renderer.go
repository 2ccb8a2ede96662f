package render

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/slate/internal/errors"
	"github.com/vango-dev/slate/pkg/attr"
	"github.com/vango-dev/slate/pkg/compiler"
)

// DefaultTracerName is the tracer used when Config.Tracer is nil.
const DefaultTracerName = "slate"

// Props are the properties a component is activated with.
type Props map[string]any

// Component renders a value from its props. o is the component's own owner;
// the returned value is resolved within it.
type Component func(ctx context.Context, o *Owner, props Props) (any, error)

// Config configures a Renderer.
type Config struct {
	// Logger receives render diagnostics (default: slog.Default()).
	Logger *slog.Logger

	// Components are available to markup by name.
	Components map[string]Component

	// Contexts are the context keys expressions reach through
	// getContext(name) and setContext(name, value).
	Contexts map[string]Key

	// Globals are variables visible to every expression.
	Globals map[string]any

	// AttrTable classifies attributes assembled at render time
	// (default: attr.DefaultTable).
	AttrTable attr.Table

	// Metrics records render collectors when non-nil.
	Metrics *Metrics

	// Tracer traces renders and component activations
	// (default: the global provider's "slate" tracer).
	Tracer trace.Tracer

	// DocType prefixes documents that have an <html> tag with
	// <!DOCTYPE html>.
	DocType bool
}

// Renderer renders values and compiled units to HTML. It is safe for
// concurrent use; every Render call has its own Root and owners.
type Renderer struct {
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
	table   attr.Table
	doctype bool

	mu         sync.RWMutex
	components map[string]Component
	contexts   map[string]Key
	globals    map[string]any
}

// New creates a Renderer.
func New(cfg Config) *Renderer {
	r := &Renderer{
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		tracer:     cfg.Tracer,
		table:      cfg.AttrTable,
		doctype:    cfg.DocType,
		components: make(map[string]Component, len(cfg.Components)),
		contexts:   make(map[string]Key, len(cfg.Contexts)),
		globals:    make(map[string]any, len(cfg.Globals)),
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("component", "render")
	if r.tracer == nil {
		r.tracer = otel.Tracer(DefaultTracerName)
	}
	if r.table == nil {
		r.table = attr.DefaultTable
	}
	for name, c := range cfg.Components {
		r.components[name] = c
	}
	for name, k := range cfg.Contexts {
		r.contexts[name] = k
	}
	for name, v := range cfg.Globals {
		r.globals[name] = v
	}
	return r
}

// Register makes c available to markup as name, replacing any previous
// component of that name.
func (r *Renderer) Register(name string, c Component) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[name] = c
}

// RegisterContext makes k reachable from expressions as name.
func (r *Renderer) RegisterContext(name string, k Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contexts[name] = k
}

// RegisterProgram registers every component of p.
func (r *Renderer) RegisterProgram(p *compiler.Program) {
	for _, name := range p.ComponentNames() {
		r.Register(name, r.markupComponent(p.Components[name]))
	}
}

func (r *Renderer) component(name string) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[name]
	return c, ok
}

func (r *Renderer) context(name string) (Key, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.contexts[name]
	return k, ok
}

// markupComponent adapts a compiled component. Declared params default to
// nil; every prop is visible by name and all of them through `props`.
func (r *Renderer) markupComponent(def *compiler.ComponentDef) Component {
	return func(ctx context.Context, o *Owner, props Props) (any, error) {
		vars := make(map[string]any, len(def.Params)+len(props)+1)
		for _, p := range def.Params {
			vars[p] = nil
		}
		for k, v := range props {
			vars[k] = v
		}
		vars["props"] = props
		return r.scope(vars).unit(def.Body), nil
	}
}

// Unit returns a value that renders u with vars in scope.
func (r *Renderer) Unit(u compiler.Unit, vars map[string]any) Value {
	return r.scope(vars).unit(u)
}

// Call returns a value that activates the component registered as name.
func (r *Renderer) Call(name string, props Props) Value {
	return Thunk(func(ctx context.Context, o *Owner) (any, error) {
		c, ok := r.component(name)
		if !ok {
			return nil, errors.New(errors.CodeUnknownComponent).WithDetail(name)
		}
		return r.activate(ctx, o, name, c, props)
	})
}

// activate runs c under a new child owner of o.
func (r *Renderer) activate(ctx context.Context, o *Owner, name string, c Component, props Props) (any, error) {
	child, err := o.activate()
	if err != nil {
		return nil, err
	}
	ctx, span := r.tracer.Start(ctx, "slate.component",
		trace.WithAttributes(attribute.String("slate.component", name)))
	defer span.End()
	r.metrics.componentActivated()

	v, err := c(ctx, child, props)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return owned{o: child, v: v}, nil
}

// Render resolves v to a complete document. Head and body content deferred
// during the walk is spliced in once the main tree has resolved.
func (r *Renderer) Render(ctx context.Context, v any) (string, error) {
	ctx, span := r.tracer.Start(ctx, "slate.render")
	defer span.End()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	root := newRoot(r.metrics.injectionDropped)
	owner := newOwner(nil, root, "")

	html, err := resolveWait(ctx, owner, v, true)
	if err == nil {
		html, err = inject(ctx, owner, root, html)
	}

	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Debug("render failed", "error", err, "code", errors.Code(err))
	}
	r.metrics.observeRender(status, time.Since(start))
	if err != nil {
		return "", err
	}

	if r.doctype && htmlOpen.MatchString(html) && !strings.HasPrefix(strings.ToLower(html), "<!doctype") {
		html = "<!DOCTYPE html>" + html
	}
	span.SetAttributes(attribute.Int("slate.bytes", len(html)))
	return html, nil
}

// RenderUnit renders a compiled unit with vars in scope.
func (r *Renderer) RenderUnit(ctx context.Context, u compiler.Unit, vars map[string]any) (string, error) {
	return r.Render(ctx, r.Unit(u, vars))
}

// RenderComponent renders the component registered as name.
func (r *Renderer) RenderComponent(ctx context.Context, name string, props Props) (string, error) {
	if _, ok := r.component(name); !ok {
		return "", errors.New(errors.CodeUnknownComponent).WithDetail(name)
	}
	return r.Render(ctx, r.Call(name, props))
}
