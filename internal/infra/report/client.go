package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	domain "github.com/adiwira-dev/sniffgate/internal/domain/analysis"
)

// Client publishes finished analysis results to the report generator and
// returns the opaque reference it answers with. Rendering and persistence of
// the report artifact are the collaborator's concern.
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

type publishResponse struct {
	ReportRef string `json:"report_ref"`
}

func (c *Client) Publish(ctx context.Context, r *domain.Result) (string, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/reports", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("report service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("report service returned %d", resp.StatusCode)
	}

	var out publishResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("malformed report response: %w", err)
	}
	if out.ReportRef == "" {
		return "", fmt.Errorf("report service returned empty reference")
	}
	return out.ReportRef, nil
}
