package scrape

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchExtractsTitleAndMainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><title>Krebs Cycle</title></head>
<body><nav>menu</nav><article><h1>Krebs Cycle</h1><p>It happens in the mitochondria.</p>
<li>Step one</li></article></body></html>`))
	}))
	defer srv.Close()

	page, err := New().Fetch(srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if page.Title != "Krebs Cycle" {
		t.Fatalf("unexpected title %q", page.Title)
	}
	if !strings.Contains(page.Text, "It happens in the mitochondria.") {
		t.Fatalf("article text missing from %q", page.Text)
	}
	if strings.Contains(page.Text, "menu") {
		t.Fatalf("nav text should be skipped when article is present, got %q", page.Text)
	}
}

func TestFetchPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("Lecture notes\nline two"))
	}))
	defer srv.Close()

	page, err := New().Fetch(srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if page.Title != "Lecture notes" {
		t.Fatalf("title should be the first line, got %q", page.Title)
	}
}

func TestFetchRejectsBadInput(t *testing.T) {
	s := New()
	if _, err := s.Fetch("not a url"); err == nil {
		t.Fatalf("expected error for invalid url")
	}
	if _, err := s.Fetch("ftp://example.com/x"); err == nil {
		t.Fatalf("expected error for non-http scheme")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF"))
	}))
	defer srv.Close()
	if _, err := s.Fetch(srv.URL); err == nil {
		t.Fatalf("expected error for unsupported content type")
	}

	missing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer missing.Close()
	if _, err := s.Fetch(missing.URL); err == nil {
		t.Fatalf("expected error for 404 response")
	}
}
