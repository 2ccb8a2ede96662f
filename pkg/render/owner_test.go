package render

import (
	"fmt"
	"sync"
	"testing"
)

func TestOwnerCreateID(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		n      int
		want   []string
	}{
		{"prefixed", "p", 3, []string{"p-0", "p-1", "p-2"}},
		{"root", "", 2, []string{"0", "1"}},
		{"nested prefix", "0-1", 2, []string{"0-1-0", "0-1-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOwner(nil, nil, tt.prefix)
			for i := 0; i < tt.n; i++ {
				got, err := o.CreateID()
				if err != nil {
					t.Fatalf("CreateID() error = %v", err)
				}
				if got != tt.want[i] {
					t.Errorf("CreateID() #%d = %q, want %q", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestOwnerCreateIDOutsideRender(t *testing.T) {
	var o *Owner
	_, err := o.CreateID()
	if err == nil {
		t.Fatal("CreateID() on nil owner returned no error")
	}
	if !IsOutsideRender(err) {
		t.Errorf("IsOutsideRender(%v) = false", err)
	}
}

func TestOwnerCreateIDConcurrent(t *testing.T) {
	o := newOwner(nil, nil, "p")
	const n = 50

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := o.CreateID()
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if id := fmt.Sprintf("p-%d", i); !seen[id] {
			t.Errorf("id %q was never generated", id)
		}
	}
}

func TestOwnerActivate(t *testing.T) {
	root := newOwner(nil, newRoot(nil), "")
	a, err := root.activate()
	if err != nil {
		t.Fatalf("activate() error = %v", err)
	}
	b, _ := root.activate()
	aa, _ := a.activate()

	if a.prefix != "0" || b.prefix != "1" || aa.prefix != "0-0" {
		t.Errorf("prefixes = %q, %q, %q; want 0, 1, 0-0", a.prefix, b.prefix, aa.prefix)
	}
	if aa.Parent() != a || a.Parent() != root {
		t.Error("activate() did not link parents")
	}
	if aa.Root() != root.Root() {
		t.Error("activate() did not inherit the root")
	}
}

func TestContext(t *testing.T) {
	theme := NewContext("light")
	size := NewContext(12)

	root := newOwner(nil, nil, "")
	provider, _ := root.activate()
	sibling, _ := root.activate()
	child, _ := provider.activate()
	grandchild, _ := child.activate()

	if got := GetContext(grandchild, theme); got != "light" {
		t.Errorf("unbound GetContext() = %q, want default", got)
	}

	SetContext(provider, theme, "dark")
	SetContext(child, size, 16)

	tests := []struct {
		name  string
		owner *Owner
		theme string
		size  int
	}{
		{"provider", provider, "dark", 12},
		{"two levels down", grandchild, "dark", 16},
		{"sibling", sibling, "light", 12},
		{"root", root, "light", 12},
		{"nil owner", nil, "light", 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetContext(tt.owner, theme); got != tt.theme {
				t.Errorf("GetContext(theme) = %q, want %q", got, tt.theme)
			}
			if got := GetContext(tt.owner, size); got != tt.size {
				t.Errorf("GetContext(size) = %d, want %d", got, tt.size)
			}
		})
	}

	t.Run("nearest binding wins", func(t *testing.T) {
		SetContext(child, theme, "contrast")
		if got := GetContext(grandchild, theme); got != "contrast" {
			t.Errorf("GetContext() = %q, want contrast", got)
		}
		if got := GetContext(provider, theme); got != "dark" {
			t.Errorf("GetContext(provider) = %q, want dark", got)
		}
	})

	t.Run("set on nil owner", func(t *testing.T) {
		SetContext(nil, theme, "ignored")
	})
}

func TestNamedContext(t *testing.T) {
	k := NewContext("light")
	o := newOwner(nil, nil, "")

	if got := getNamed(o, k); got != "light" {
		t.Errorf("getNamed() = %v, want default", got)
	}
	if err := setNamed(o, k, 42); err == nil {
		t.Error("setNamed() accepted a value of the wrong type")
	}
	if err := setNamed(o, k, "dark"); err != nil {
		t.Fatalf("setNamed() error = %v", err)
	}
	if got := GetContext(o, k); got != "dark" {
		t.Errorf("GetContext() = %q, want dark", got)
	}
}

func TestContextKeysAreDistinct(t *testing.T) {
	a := NewContext("a")
	b := NewContext("a")
	o := newOwner(nil, nil, "")
	SetContext(o, a, "set")
	if got := GetContext(o, b); got != "a" {
		t.Errorf("GetContext(b) = %q, want its own default", got)
	}
}
