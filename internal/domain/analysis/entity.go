package analysis

import (
	"time"

	"github.com/adiwira-dev/sniffgate/internal/domain/findings"
)

// ID type for an analysis request
type ID string

// Options narrows which detectors run; empty means all. Names that match no
// configured detector are an invalid request, not a silent no-op.
type Options struct {
	Detectors []findings.Backend `json:"detectors,omitempty"`
}

// Wants reports whether backend b should be called for this request.
func (o Options) Wants(b findings.Backend) bool {
	if len(o.Detectors) == 0 {
		return true
	}
	for _, d := range o.Detectors {
		if d == b {
			return true
		}
	}
	return false
}

// Request is one immutable analysis submission.
type Request struct {
	Code     string
	Language string
	Options  Options
}

// Aggregate Root: Result
// A result exists for every request that passes validation, even when both
// backends fail — findings are then empty and both statuses marked failed.
type Result struct {
	ID          ID                                     `json:"request_id"`
	TriggeredAt time.Time                              `json:"triggered_at"`
	Language    string                                 `json:"language"`
	Findings    []findings.NormalizedFinding           `json:"findings"`
	Backends    map[findings.Backend]findings.Report   `json:"backend_status"`
	ReportRef   string                                 `json:"report_ref,omitempty"`
	ArtifactURL string                                 `json:"artifact_url,omitempty"`
	DurationMS  int64                                  `json:"duration_ms"`
}

// Status of a single backend within the result, defaulting to failed for a
// backend that never produced a report.
func (r *Result) Status(b findings.Backend) findings.BackendStatus {
	if rep, ok := r.Backends[b]; ok {
		return rep.Status
	}
	return findings.StatusFailed
}

// Summary is the rollup over stored results.
type Summary struct {
	TotalAnalyses  int `json:"total_analyses"`
	TotalFindings  int `json:"total_findings"`
	StaticFailures int `json:"static_failures"`
	AIFailures     int `json:"ai_failures"`
}
