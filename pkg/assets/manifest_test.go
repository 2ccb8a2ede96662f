package assets

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManifestResolve(t *testing.T) {
	m := NewManifest()
	m.Set("app.js", "app.abc123.js")
	m.Set("css/site.css", "css/site.def456.css")

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"found entry", "app.js", "app.abc123.js"},
		{"nested entry", "css/site.css", "css/site.def456.css"},
		{"missing entry returns original", "unknown.js", "unknown.js"},
		{"empty string returns empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Resolve(tt.source); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}

	if src, ok := m.Original("app.abc123.js"); !ok || src != "app.js" {
		t.Errorf("Original() = %q, %v", src, ok)
	}

	m.Set("app.js", "app.999.js")
	if _, ok := m.Original("app.abc123.js"); ok {
		t.Error("Original() still knows a replaced name")
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestFingerprint(t *testing.T) {
	tests := []struct {
		name string
		sum  string
		want string
	}{
		{"app.js", "0123456789abcdef", "app.01234567.js"},
		{"css/site.min.css", "ffffffffff", "css/site.min.ffffffff.css"},
		{"LICENSE", "abc", "LICENSE.abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fingerprint(tt.name, tt.sum); got != tt.want {
				t.Errorf("Fingerprint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.js"), "console.log(1)")
	writeFile(t, filepath.Join(dir, "css", "site.css"), "body{}")
	writeFile(t, filepath.Join(dir, ".cache", "x.js"), "skip")

	m, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
	got := m.Resolve("css/site.css")
	if !strings.HasPrefix(got, "css/site.") || !strings.HasSuffix(got, ".css") || len(got) != len("css/site.12345678.css") {
		t.Errorf("Resolve(css/site.css) = %q", got)
	}

	t.Run("manifest file wins", func(t *testing.T) {
		writeFile(t, filepath.Join(dir, ManifestFile), `{"app.js": "app.built.js"}`)
		m, err := Scan(dir)
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if got := m.Resolve("app.js"); got != "app.built.js" {
			t.Errorf("Resolve() = %q", got)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		m, err := Scan(filepath.Join(dir, "nope"))
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if m.Len() != 0 {
			t.Errorf("Len() = %d, want 0", m.Len())
		}
	})
}

func TestResolvers(t *testing.T) {
	m := NewManifest()
	m.Set("app.js", "app.123.js")

	if got := NewResolver(m, "/public/").Asset("/app.js"); got != "/public/app.123.js" {
		t.Errorf("Asset() = %q", got)
	}
	if got := NewPassthroughResolver("/public/").Asset("app.js"); got != "/public/app.js" {
		t.Errorf("passthrough Asset() = %q", got)
	}
}

func TestHandler(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.js"), "ok")
	m := NewManifest()
	m.Set("app.js", "app.123.js")
	h := Handler(dir, m)

	tests := []struct {
		path  string
		code  int
		cache string
	}{
		{"/app.123.js", http.StatusOK, "public, max-age=31536000, immutable"},
		{"/app.js", http.StatusOK, ""},
		{"/app.456.js", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.code {
				t.Fatalf("status = %d, want %d", rec.Code, tt.code)
			}
			if got := rec.Header().Get("Cache-Control"); got != tt.cache {
				t.Errorf("Cache-Control = %q, want %q", got, tt.cache)
			}
			if tt.code == http.StatusOK {
				body, _ := io.ReadAll(rec.Body)
				if string(body) != "ok" {
					t.Errorf("body = %q", body)
				}
			}
		})
	}
}
