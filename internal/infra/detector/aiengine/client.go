package aiengine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/adiwira-dev/sniffgate/internal/domain/findings"
)

// Client adapts the model-backed detection engine to the Detector port.
// Unlike the static engine the model scores every finding; scores are
// propagated verbatim, clamped to [0,1] when the model wanders out of range.
type Client struct {
	http    *http.Client
	baseURL string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *Client) Backend() findings.Backend { return findings.BackendAI }

type detectRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type wireLocation struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
}

type wireFinding struct {
	Label       string       `json:"label"`
	Location    wireLocation `json:"location"`
	Confidence  float64      `json:"confidence"`
	Description string       `json:"description,omitempty"`
}

type detectResponse struct {
	Findings []wireFinding `json:"findings"`
}

// Detect calls the model service's detection endpoint. All failure modes
// collapse into the returned Report.
func (c *Client) Detect(ctx context.Context, code, language string) ([]findings.RawFinding, findings.Report) {
	start := time.Now()
	report := func(status findings.BackendStatus, reason string, n int) findings.Report {
		return findings.Report{
			Status:     status,
			Reason:     reason,
			Findings:   n,
			DurationMS: time.Since(start).Milliseconds(),
		}
	}

	body, err := json.Marshal(detectRequest{Code: code, Language: language})
	if err != nil {
		return nil, report(findings.StatusFailed, fmt.Sprintf("encode request: %v", err), 0)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/detect", bytes.NewReader(body))
	if err != nil {
		return nil, report(findings.StatusFailed, fmt.Sprintf("build request: %v", err), 0)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, report(findings.StatusTimeout, "detection budget exceeded", 0)
		}
		return nil, report(findings.StatusFailed, fmt.Sprintf("ai engine unreachable: %v", err), 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, report(findings.StatusFailed, fmt.Sprintf("ai engine returned %d", resp.StatusCode), 0)
	}

	var out detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, report(findings.StatusFailed, fmt.Sprintf("malformed response: %v", err), 0)
	}

	raw := make([]findings.RawFinding, 0, len(out.Findings))
	for _, f := range out.Findings {
		conf := findings.ClampConfidence(f.Confidence)
		raw = append(raw, findings.RawFinding{
			Backend:     findings.BackendAI,
			Label:       f.Label,
			Location:    location(f.Location),
			Description: f.Description,
			Confidence:  &conf,
		})
	}
	return raw, report(findings.StatusSuccess, "", len(raw))
}

func location(w wireLocation) findings.Location {
	return findings.Location{
		File:      w.File,
		StartLine: w.StartLine,
		StartCol:  w.StartCol,
		EndLine:   w.EndLine,
		EndCol:    w.EndCol,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}
