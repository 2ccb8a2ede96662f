package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/slate/internal/config"
	"github.com/vango-dev/slate/internal/dev"
	"github.com/vango-dev/slate/internal/errors"
	"github.com/vango-dev/slate/internal/source"
	"github.com/vango-dev/slate/pkg/render"
)

var siteFiles = map[string]string{
	"index.yaml": `
page:
  el: html
  children:
    - {directive: head, children: [{el: title, children: [Home]}]}
    - el: body
      children: ["hello ", "{ who }"]
`,
	"pages/about.yaml": `
page:
  el: p
  children: [about]
`,
	"components.yaml": `
components:
  Badge:
    params: [label]
    render:
      el: span
      attrs: {class: badge}
      children: ["{ label }"]
`,
}

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func newTestServer(t *testing.T, reload *dev.ReloadServer) *Server {
	t.Helper()
	cfg := config.New()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Labels = map[string]string{"site": "test"}
	cfg.Render.DocType = true
	reg := prometheus.NewRegistry()

	s := New(Options{
		Config:   cfg,
		Loader:   source.Dir{Root: writeSite(t, siteFiles)},
		Registry: reg,
		Gatherer: reg,
		Reload:   reload,
		Components: map[string]render.Component{
			"Echo": func(_ context.Context, _ *render.Owner, props render.Props) (any, error) {
				return []any{"echo ", props["q"]}, nil
			},
			"Broken": func(context.Context, *render.Owner, render.Props) (any, error) {
				return nil, errors.New(errors.CodeExprEval).WithDetail("broken")
			},
		},
	})
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	return s
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, _ := io.ReadAll(rec.Body)
	return rec.Code, string(body)
}

func TestServerRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		path   string
		status int
		want   string
	}{
		{
			name:   "index page",
			path:   "/?who=%3Cyou%3E",
			status: http.StatusOK,
			want:   `<!DOCTYPE html><html><head><title>Home</title></head><body>hello &lt;you&gt;</body></html>`,
		},
		{"named page", "/pages/about", http.StatusOK, `<p>about</p>`},
		{"markup component", "/Badge?label=new", http.StatusOK, `<span class="badge">new</span>`},
		{"go component", "/Echo?q=x", http.StatusOK, `echo x`},
		{"unknown", "/nope", http.StatusNotFound, "404 page not found\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := get(t, s.Handler(), tt.path)
			if status != tt.status {
				t.Fatalf("status = %d, want %d (body %q)", status, tt.status, body)
			}
			if body != tt.want {
				t.Errorf("body = %q, want %q", body, tt.want)
			}
		})
	}
}

func TestServerRenderError(t *testing.T) {
	s := newTestServer(t, nil)

	status, body := get(t, s.Handler(), "/Broken")
	if status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
	if !strings.HasPrefix(body, "E214: ") {
		t.Errorf("body = %q, want the error code first", body)
	}
}

func TestServerMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	get(t, s.Handler(), "/pages/about")

	status, body := get(t, s.Handler(), "/metrics")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	for _, want := range []string{
		`slate_http_requests_total{method="GET",route="/*",site="test",status="200"} 1`,
		`slate_render_total{status="success"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics do not contain %q", want)
		}
	}
}

func TestServerHotReloadClient(t *testing.T) {
	s := newTestServer(t, dev.NewReloadServer())

	_, body := get(t, s.Handler(), "/")
	if !strings.Contains(body, dev.ReloadPath) {
		t.Error("page has no reload client")
	}
	if !strings.HasSuffix(body, "</script></body></html>") {
		t.Errorf("client script is not at the end of the body: %q", body)
	}
}

func TestServerNotLoaded(t *testing.T) {
	s := New(Options{Loader: source.Dir{Root: t.TempDir()}, Registry: prometheus.NewRegistry()})
	if status, _ := get(t, s.Handler(), "/"); status != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", status)
	}
}

func TestServerReloadKeepsPreviousOnError(t *testing.T) {
	root := writeSite(t, map[string]string{"index.yaml": "page: first\n"})
	s := New(Options{Loader: source.Dir{Root: root}, Registry: prometheus.NewRegistry()})
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(root, "index.yaml"), []byte("page: [\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(context.Background()); err == nil {
		t.Fatal("Reload() of a broken document returned no error")
	}

	if _, body := get(t, s.Handler(), "/"); body != "first" {
		t.Errorf("body = %q, want the previous program", body)
	}
}

func TestServerAssets(t *testing.T) {
	public := writeSite(t, map[string]string{"app.js": "console.log(1)"})
	cfg := config.New()
	cfg.Paths.Public = public
	cfg.Render.DocType = false

	s := New(Options{
		Config: cfg,
		Loader: source.Dir{Root: writeSite(t, map[string]string{
			"index.yaml": "page: {el: script, attrs: {src: \"{ asset('app.js') }\"}}\n",
		})},
		Registry: prometheus.NewRegistry(),
	})
	if err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	_, body := get(t, s.Handler(), "/")
	src := strings.TrimSuffix(strings.TrimPrefix(body, `<script src="`), `"></script>`)
	if !strings.HasPrefix(src, PublicPrefix+"app.") || src == PublicPrefix+"app.js" {
		t.Fatalf("page = %q, want a fingerprinted script", body)
	}

	status, js := get(t, s.Handler(), src)
	if status != http.StatusOK || js != "console.log(1)" {
		t.Errorf("GET %s = %d %q", src, status, js)
	}
}
