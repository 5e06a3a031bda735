package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain "github.com/adiwira-dev/sniffgate/internal/domain/analysis"
)

func TestPublishReturnsReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reports" {
			t.Errorf("path = %s, want /reports", r.URL.Path)
		}
		var res domain.Result
		if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
			t.Errorf("result decode: %v", err)
		}
		if res.ID != "abc" {
			t.Errorf("request id = %s, want abc", res.ID)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"report_ref":"reports/abc.html"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	ref, err := c.Publish(context.Background(), &domain.Result{ID: "abc"})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if ref != "reports/abc.html" {
		t.Errorf("ref = %q, want reports/abc.html", ref)
	}
}

func TestPublishErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "broken", http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := New(srv.URL, 2*time.Second)
		if _, err := c.Publish(context.Background(), &domain.Result{ID: "x"}); err == nil {
			t.Fatal("expected error on 500")
		}
	})

	t.Run("empty reference", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		c := New(srv.URL, 2*time.Second)
		if _, err := c.Publish(context.Background(), &domain.Result{ID: "x"}); err == nil {
			t.Fatal("expected error on empty report_ref")
		}
	})
}
