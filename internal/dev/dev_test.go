package dev

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/slate/pkg/render"
)

func TestWatcher_DetectsTemplateChange(t *testing.T) {
	tmpDir := t.TempDir()

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{tmpDir},
		Debounce: 20 * time.Millisecond,
	})

	changes := make(chan Change, 10)
	watcher.OnChange(func(c Change) {
		changes <- c
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Start(ctx)

	waitRunning(t, watcher)

	file := filepath.Join(tmpDir, "page.yaml")
	if err := os.WriteFile(file, []byte("components: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case change := <-changes:
		if change.Type != ChangeTemplate {
			t.Errorf("Type = %v, want template", change.Type)
		}
		if change.Path != file {
			t.Errorf("Path = %q, want %q", change.Path, file)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
	}

	watcher.Stop()
	if watcher.IsRunning() {
		t.Error("watcher still running after Stop")
	}
}

func TestWatcher_Debounces(t *testing.T) {
	tmpDir := t.TempDir()

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{tmpDir},
		Debounce: 50 * time.Millisecond,
	})

	changes := make(chan Change, 10)
	watcher.OnChange(func(c Change) {
		changes <- c
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Start(ctx)
	waitRunning(t, watcher)

	for i := 0; i < 3; i++ {
		name := filepath.Join(tmpDir, "p"+string(rune('a'+i))+".yaml")
		if err := os.WriteFile(name, []byte("x: 1\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
	}

	select {
	case c := <-changes:
		t.Errorf("unexpected second report %+v", c)
	case <-time.After(150 * time.Millisecond):
	}
}

func waitRunning(t *testing.T, w *Watcher) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !w.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("watcher did not start")
		}
		time.Sleep(5 * time.Millisecond)
	}
	// Start registers the directories after it is marked running.
	time.Sleep(50 * time.Millisecond)
}

func TestWatcher_Ignore(t *testing.T) {
	tmpDir := t.TempDir()

	watcher := NewWatcher(WatcherConfig{
		Paths:  []string{tmpDir},
		Ignore: []string{"*.swp", "drafts", "build/out"},
	})

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(tmpDir, "page.yaml.swp"), true},
		{filepath.Join(tmpDir, "drafts", "page.yaml"), true},
		{filepath.Join(tmpDir, "build", "out", "page.yaml"), true},
		{filepath.Join(tmpDir, "page.yaml"), false},
		{filepath.Join(tmpDir, "mydrafts.yaml"), false},
	}

	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			if got := watcher.shouldIgnore(tt.path); got != tt.want {
				t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestClassifyChange(t *testing.T) {
	tests := []struct {
		path string
		want ChangeType
	}{
		{"pages/index.yaml", ChangeTemplate},
		{"card.yml", ChangeTemplate},
		{"slate.yaml", ChangeConfig},
		{"public/style.css", ChangeAsset},
		{"logo.png", ChangeAsset},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := classifyChange(tt.path); got != tt.want {
				t.Errorf("classifyChange(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestReloadServer_Broadcast(t *testing.T) {
	rs := NewReloadServer()
	srv := httptest.NewServer(rs)
	defer srv.Close()
	defer rs.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for rs.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want 1", rs.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}

	rs.Notify(errors.New("E214 boom"))
	rs.Notify(nil)

	want := []Message{
		{Kind: MessageError, Error: "E214 boom"},
		{Kind: MessageReload},
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for _, w := range want {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error = %v", err)
		}
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatal(err)
		}
		if got != w {
			t.Errorf("message = %+v, want %+v", got, w)
		}
	}
}

func TestSession_Rebuild(t *testing.T) {
	tmpDir := t.TempDir()
	rs := NewReloadServer()
	defer rs.Close()

	rebuilt := make(chan struct{}, 4)
	fail := true
	s := &Session{
		Watcher: NewWatcher(WatcherConfig{Paths: []string{tmpDir}, Debounce: 20 * time.Millisecond}),
		Reload:  rs,
		Rebuild: func(context.Context) error {
			defer func() { rebuilt <- struct{}{} }()
			if fail {
				fail = false
				return errors.New("bad template")
			}
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)
	waitRunning(t, s.Watcher)

	for i := 0; i < 2; i++ {
		if err := os.WriteFile(filepath.Join(tmpDir, "page.yaml"), []byte{byte('a' + i)}, 0644); err != nil {
			t.Fatal(err)
		}
		select {
		case <-rebuilt:
		case <-time.After(2 * time.Second):
			t.Fatalf("rebuild %d did not run", i)
		}
	}
}

func TestClientScript(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"", "'/_slate/reload'"},
		{"/app/", "'/app/_slate/reload'"},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			script := ClientScript(tt.base)
			for _, s := range []string{"WebSocket", "location.reload", tt.want} {
				if !strings.Contains(script, s) {
					t.Errorf("ClientScript(%q) does not contain %q", tt.base, s)
				}
			}
		})
	}
}

func TestWithClient(t *testing.T) {
	r := render.New(render.Config{})
	got, err := r.Render(context.Background(), WithClient(render.Raw("<html><body>x</body></html>"), ""))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.HasPrefix(got, "<html><head></head><body>x<script>") {
		t.Errorf("Render() = %q", got)
	}
	if !strings.HasSuffix(got, "</script></body></html>") {
		t.Errorf("Render() = %q", got)
	}
}
