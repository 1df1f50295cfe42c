package hint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeneratorReturnsFirstCandidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/test-model:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "k" {
			t.Errorf("missing api key")
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || !strings.Contains(req.Contents[0].Parts[0].Text, "The Silent Signal") {
			t.Errorf("prompt missing title: %+v", req)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  Look to the first gate.  "}]}}]}`))
	}))
	defer server.Close()

	gen := NewGenerator(server.URL, "test-model", "k", server.Client())
	text, err := gen.Generate(context.Background(), "The Silent Signal", "01001101")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "Look to the first gate." {
		t.Fatalf("unexpected hint %q", text)
	}
}

func TestGeneratorFailsOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	gen := NewGenerator(server.URL, "m", "k", server.Client())
	if _, err := gen.Generate(context.Background(), "t", "c"); err == nil {
		t.Fatalf("expected error on 429")
	}
}

func TestGeneratorFailsOnEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	gen := NewGenerator(server.URL, "m", "k", server.Client())
	if _, err := gen.Generate(context.Background(), "t", "c"); err == nil {
		t.Fatalf("expected error for empty candidates")
	}
}
