// Package assets fingerprints the files of a public directory so templates
// can reference them with cache-busting names.
//
// A Manifest maps public names to fingerprinted names, either scanned from
// the directory or loaded from a manifest.json written by a build step:
//
//	{
//	  "app.js": "app.a1b2c3d4.js",
//	  "css/site.css": "css/site.e5f6a7b8.css"
//	}
//
// Templates call asset("app.js") to get "/public/app.a1b2c3d4.js"; Handler
// serves that name from app.js with a long-lived cache header.
package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// ManifestFile is the manifest name Scan prefers over hashing.
const ManifestFile = "manifest.json"

// Manifest maps public asset names to fingerprinted names. It is safe for
// concurrent use.
type Manifest struct {
	mu      sync.RWMutex
	entries map[string]string
	reverse map[string]string
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{
		entries: make(map[string]string),
		reverse: make(map[string]string),
	}
}

// Load reads a manifest.json file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	m := NewManifest()
	for source, resolved := range entries {
		m.Set(source, resolved)
	}
	return m, nil
}

// Scan fingerprints every file below dir by content hash. A manifest.json
// at the top of dir is loaded instead. A missing dir yields an empty
// manifest.
func Scan(dir string) (*Manifest, error) {
	if m, err := Load(filepath.Join(dir, ManifestFile)); err == nil {
		return m, nil
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	m := NewManifest()
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == dir {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		sum, err := hashFile(p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		m.Set(name, Fingerprint(name, sum))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func hashFile(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Fingerprint inserts the first 8 characters of sum before the extension
// of name: "css/site.css" becomes "css/site.<hash>.css".
func Fingerprint(name, sum string) string {
	if len(sum) > 8 {
		sum = sum[:8]
	}
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "." + sum + ext
}

// Resolve returns the fingerprinted name for source, or source unchanged.
func (m *Manifest) Resolve(source string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if resolved, ok := m.entries[source]; ok {
		return resolved
	}
	return source
}

// Original returns the source name of a fingerprinted name.
func (m *Manifest) Original(resolved string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	source, ok := m.reverse[resolved]
	return source, ok
}

// Set adds or replaces an entry.
func (m *Manifest) Set(source, resolved string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.entries[source]; ok {
		delete(m.reverse, prev)
	}
	m.entries[source] = resolved
	m.reverse[resolved] = source
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}
