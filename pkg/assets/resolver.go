package assets

import (
	"net/http"
	"path"
	"strings"
)

// Resolver turns a public asset name into its URL path.
type Resolver interface {
	Asset(source string) string
}

type manifestResolver struct {
	manifest *Manifest
	prefix   string
}

// NewResolver creates a Resolver that prefixes fingerprinted names.
//
//	resolver := assets.NewResolver(manifest, "/public/")
//	resolver.Asset("app.js") // "/public/app.a1b2c3d4.js"
func NewResolver(m *Manifest, prefix string) Resolver {
	return &manifestResolver{manifest: m, prefix: prefix}
}

func (r *manifestResolver) Asset(source string) string {
	return r.prefix + r.manifest.Resolve(strings.TrimPrefix(source, "/"))
}

type passthrough struct {
	prefix string
}

// NewPassthroughResolver creates a resolver that only prefixes names. Use
// it in development, where names change on every edit.
func NewPassthroughResolver(prefix string) Resolver {
	return &passthrough{prefix: prefix}
}

func (p *passthrough) Asset(source string) string {
	return p.prefix + strings.TrimPrefix(source, "/")
}

// Handler serves the files of dir. Fingerprinted names known to m are
// served from their source file with an immutable cache header; other
// names are served as they are.
func Handler(dir string, m *Manifest) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if m != nil {
			if source, ok := m.Original(name); ok && source != name {
				w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
				r2 := new(http.Request)
				*r2 = *r
				u := *r.URL
				u.Path = "/" + source
				u.RawPath = ""
				r2.URL = &u
				files.ServeHTTP(w, r2)
				return
			}
		}
		files.ServeHTTP(w, r)
	})
}
