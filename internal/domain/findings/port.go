package findings

import "context"

// Report is the per-backend outcome of one detect call
type Report struct {
	Status     BackendStatus `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	Findings   int           `json:"findings"`
	DurationMS int64         `json:"duration_ms"`
}

// Detector port (interface every detection backend implements).
// Detect must never return backend failures as panics or errors: network
// errors, malformed responses and deadline hits all collapse into the
// returned Report. Implementations are safe for concurrent independent calls.
type Detector interface {
	Backend() Backend
	Detect(ctx context.Context, code, language string) ([]RawFinding, Report)
}
