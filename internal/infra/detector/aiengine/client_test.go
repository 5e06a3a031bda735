package aiengine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adiwira-dev/sniffgate/internal/domain/findings"
)

func TestDetectPropagatesConfidence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"findings":[
			{"label":"long_method","location":{"start_line":5,"end_line":20},"confidence":0.83},
			{"label":"feature_envy","location":{"start_line":30,"end_line":33},"confidence":0.41,"description":"method uses other class heavily"}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	raw, rep := c.Detect(context.Background(), "code", "java")

	if rep.Status != findings.StatusSuccess {
		t.Fatalf("status = %s (%s), want success", rep.Status, rep.Reason)
	}
	if len(raw) != 2 {
		t.Fatalf("got %d findings, want 2", len(raw))
	}
	if raw[0].Confidence == nil || *raw[0].Confidence != 0.83 {
		t.Errorf("confidence not propagated verbatim: %v", raw[0].Confidence)
	}
	if raw[0].Backend != findings.BackendAI {
		t.Errorf("backend = %s, want ai", raw[0].Backend)
	}
}

func TestDetectClampsOutOfRangeConfidence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"findings":[
			{"label":"magic_number","location":{"start_line":1,"end_line":1},"confidence":3.5},
			{"label":"dead_code","location":{"start_line":2,"end_line":2},"confidence":-1.0}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	raw, rep := c.Detect(context.Background(), "code", "go")

	if rep.Status != findings.StatusSuccess {
		t.Fatalf("status = %s, want success", rep.Status)
	}
	if *raw[0].Confidence != 1.0 {
		t.Errorf("confidence = %v, want clamped to 1.0", *raw[0].Confidence)
	}
	if *raw[1].Confidence != 0.0 {
		t.Errorf("confidence = %v, want clamped to 0.0", *raw[1].Confidence)
	}
}

func TestDetectFailureStatuses(t *testing.T) {
	t.Run("5xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c := New(srv.URL, 2*time.Second)
		_, rep := c.Detect(context.Background(), "code", "go")
		if rep.Status != findings.StatusFailed {
			t.Fatalf("status = %s, want failed", rep.Status)
		}
	})

	t.Run("budget exceeded", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()

		c := New(srv.URL, 5*time.Second)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, rep := c.Detect(ctx, "code", "go")
		if rep.Status != findings.StatusTimeout {
			t.Fatalf("status = %s (%s), want timeout", rep.Status, rep.Reason)
		}
	})
}
