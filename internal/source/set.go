package source

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"path"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/slate/pkg/compiler"
	"github.com/vango-dev/slate/pkg/markup"
)

// Set compiles every document of a Loader into one Program. Documents whose
// content has not changed since the previous Load are not recompiled.
type Set struct {
	loader   Loader
	compiler *compiler.Compiler
	logger   *slog.Logger

	mu    sync.Mutex
	cache map[string]entry
	stats Stats
}

type entry struct {
	sum     [sha256.Size]byte
	program *compiler.Program
}

// Stats counts the work done by the last Load.
type Stats struct {
	Documents int
	Compiled  int
	Cached    int
}

// NewSet creates a Set. A nil compiler uses compiler.New().
func NewSet(loader Loader, c *compiler.Compiler, logger *slog.Logger) *Set {
	if c == nil {
		c = compiler.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Set{
		loader:   loader,
		compiler: c,
		logger:   logger.With("component", "source"),
		cache:    make(map[string]entry),
	}
}

// DocumentName is the name a document file is compiled under: its path
// without the extension.
func DocumentName(name string) string {
	return name[:len(name)-len(path.Ext(name))]
}

// Load reads and compiles every document. Documents are read and compiled
// concurrently and merged in name order.
func (s *Set) Load(ctx context.Context) (*compiler.Program, error) {
	names, err := s.loader.List(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]entry, len(names))
	compiled := make([]bool, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			data, err := s.loader.Read(gctx, name)
			if err != nil {
				return err
			}
			sum := sha256.Sum256(data)
			if cached, ok := s.cache[name]; ok && cached.sum == sum {
				entries[i] = cached
				return nil
			}

			file := name
			if l, ok := s.loader.(Locator); ok {
				file = l.Location(name)
			}
			doc, err := markup.Decode(data, DocumentName(name), file)
			if err != nil {
				return err
			}
			p, err := s.compiler.CompileDocument(doc)
			if err != nil {
				return err
			}
			entries[i] = entry{sum: sum, program: p}
			compiled[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	program := compiler.NewProgram()
	cache := make(map[string]entry, len(names))
	stats := Stats{Documents: len(names)}
	for i, name := range names {
		if err := program.Merge(entries[i].program); err != nil {
			return nil, err
		}
		cache[name] = entries[i]
		if compiled[i] {
			stats.Compiled++
		} else {
			stats.Cached++
		}
	}
	s.cache = cache
	s.stats = stats

	s.logger.Debug("documents loaded",
		"documents", stats.Documents,
		"compiled", stats.Compiled,
		"cached", stats.Cached)
	return program, nil
}

// Stats returns the counts of the last successful Load.
func (s *Set) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
