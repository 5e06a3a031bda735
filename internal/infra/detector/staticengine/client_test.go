package staticengine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/adiwira-dev/sniffgate/internal/domain/findings"
)

func TestDetectParsesFindings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect" {
			t.Errorf("path = %s, want /detect", r.URL.Path)
		}
		var body struct {
			Code     string `json:"code"`
			Language string `json:"language"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("request decode: %v", err)
		}
		if body.Language != "go" {
			t.Errorf("language = %s, want go", body.Language)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"findings":[
			{"label":"long_method","location":{"file":"main.go","start_line":10,"end_line":25},"description":"function is 80 lines"},
			{"label":"dead_code","location":{"file":"main.go","start_line":40,"end_line":41}}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	raw, rep := c.Detect(context.Background(), "package main", "go")

	if rep.Status != findings.StatusSuccess {
		t.Fatalf("status = %s (%s), want success", rep.Status, rep.Reason)
	}
	if len(raw) != 2 {
		t.Fatalf("got %d findings, want 2", len(raw))
	}
	if raw[0].Backend != findings.BackendStatic {
		t.Errorf("backend = %s, want static", raw[0].Backend)
	}
	if raw[0].Confidence != nil {
		t.Errorf("static findings must not carry a confidence score")
	}
	if raw[0].Location.StartLine != 10 || raw[0].Location.EndLine != 25 {
		t.Errorf("location = %+v", raw[0].Location)
	}
	if rep.Findings != 2 {
		t.Errorf("report findings = %d, want 2", rep.Findings)
	}
}

func TestDetectServerErrorBecomesFailedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	raw, rep := c.Detect(context.Background(), "code", "go")

	if rep.Status != findings.StatusFailed {
		t.Fatalf("status = %s, want failed", rep.Status)
	}
	if len(raw) != 0 {
		t.Errorf("got %d findings on failure, want 0", len(raw))
	}
	if rep.Reason == "" {
		t.Error("failure report carries no reason")
	}
}

func TestDetectMalformedResponseBecomesFailedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not json"))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	_, rep := c.Detect(context.Background(), "code", "go")

	if rep.Status != findings.StatusFailed {
		t.Fatalf("status = %s, want failed", rep.Status)
	}
}

func TestDetectUnreachableBecomesFailedStatus(t *testing.T) {
	c := New("http://127.0.0.1:1", 500*time.Millisecond)
	_, rep := c.Detect(context.Background(), "code", "go")

	if rep.Status != findings.StatusFailed {
		t.Fatalf("status = %s, want failed", rep.Status)
	}
}

func TestDetectBudgetExceededBecomesTimeoutStatus(t *testing.T) {
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
}
