package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCanonicalPath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		changed bool
		err     error
	}{
		{"/", "/", false, nil},
		{"/pages/about", "/pages/about", false, nil},
		{"/pages/about/", "/pages/about", true, nil},
		{"//pages///about", "/pages/about", true, nil},
		{"/pages/./about", "/pages/about", true, nil},
		{"/pages/x/../about", "/pages/about", true, nil},
		{"/../secret", "", false, ErrPathEscapesRoot},
		{"/a\\b", "", false, ErrBackslashInPath},
		{"/a\x00b", "", false, ErrNullByteInPath},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, changed, err := canonicalPath(tt.in)
			if err != tt.err {
				t.Fatalf("canonicalPath() error = %v, want %v", err, tt.err)
			}
			if got != tt.want || changed != tt.changed {
				t.Errorf("canonicalPath() = %q, %v; want %q, %v", got, changed, tt.want, tt.changed)
			}
		})
	}
}

func TestPageName(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  error
	}{
		{"/", IndexPage, nil},
		{"/pages/about", "pages/about", nil},
		{"/.hidden/x", "", ErrInvalidPageName},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := pageName(tt.in)
			if err != tt.err || got != tt.want {
				t.Errorf("pageName() = %q, %v; want %q, %v", got, err, tt.want, tt.err)
			}
		})
	}
}

func TestServerRedirectsToCanonicalPath(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		path     string
		status   int
		location string
	}{
		{"/pages/about/", http.StatusPermanentRedirect, "/pages/about"},
		{"/pages//about?x=1", http.StatusPermanentRedirect, "/pages/about?x=1"},
		{"/../secret", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := rec.Header().Get("Location"); got != tt.location {
				t.Errorf("Location = %q, want %q", got, tt.location)
			}
		})
	}
}
