package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "github.com/adiwira-dev/sniffgate/internal/domain/analysis"
	"github.com/adiwira-dev/sniffgate/internal/domain/findings"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save insert/update one analysis result row. Findings travel as a JSON
// column; the queryable fields get their own columns.
func (r *AnalysisRepository) Save(ctx context.Context, res *domain.Result) error {
	const q = `
INSERT INTO code_analyses
(id, triggered_at, language, findings_total,
 static_status, static_reason, ai_status, ai_reason,
 report_ref, artifact_url, duration_ms, findings_json)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 findings_total=VALUES(findings_total),
 static_status=VALUES(static_status), static_reason=VALUES(static_reason),
 ai_status=VALUES(ai_status), ai_reason=VALUES(ai_reason),
 report_ref=VALUES(report_ref), artifact_url=VALUES(artifact_url),
 duration_ms=VALUES(duration_ms), findings_json=VALUES(findings_json);
`
	blob, err := json.Marshal(res.Findings)
	if err != nil {
		return err
	}
	triggered := res.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}
	staticRep := res.Backends[findings.BackendStatic]
	aiRep := res.Backends[findings.BackendAI]

	_, err = r.db.ExecContext(ctx, q,
		res.ID, triggered, res.Language, len(res.Findings),
		statusOrFailed(staticRep.Status), staticRep.Reason,
		statusOrFailed(aiRep.Status), aiRep.Reason,
		res.ReportRef, res.ArtifactURL, res.DurationMS, blob,
	)
	return err
}

// Get by ID
func (r *AnalysisRepository) Get(ctx context.Context, id domain.ID) (*domain.Result, error) {
	const q = `
SELECT id, triggered_at, language, static_status, static_reason,
       ai_status, ai_reason, report_ref, artifact_url, duration_ms, findings_json
FROM code_analyses
WHERE id=?
LIMIT 1;`
	res, err := scanResult(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return res, err
}

// Latest returns the N most recent analyses
func (r *AnalysisRepository) Latest(ctx context.Context, limit int) ([]*domain.Result, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, triggered_at, language, static_status, static_reason,
       ai_status, ai_reason, report_ref, artifact_url, duration_ms, findings_json
FROM code_analyses
ORDER BY triggered_at DESC, id DESC
LIMIT ?;`
	return r.queryResults(ctx, q, limit)
}

// Paginate returns a page of analyses, newest first
func (r *AnalysisRepository) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Result, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	const q = `
SELECT id, triggered_at, language, static_status, static_reason,
       ai_status, ai_reason, report_ref, artifact_url, duration_ms, findings_json
FROM code_analyses
ORDER BY triggered_at DESC, id DESC
LIMIT ? OFFSET ?;`
	return r.queryResults(ctx, q, pageSize, (page-1)*pageSize)
}

// Summary rollup for the last N days
func (r *AnalysisRepository) Summary(ctx context.Context, sinceDays int) (domain.Summary, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	const q = `
SELECT COUNT(*),
       COALESCE(SUM(findings_total),0),
       COALESCE(SUM(static_status <> 'success'),0),
       COALESCE(SUM(ai_status <> 'success'),0)
FROM code_analyses
WHERE triggered_at >= DATE_SUB(NOW(), INTERVAL ? DAY);`
	var s domain.Summary
	err := r.db.QueryRowContext(ctx, q, sinceDays).Scan(
		&s.TotalAnalyses, &s.TotalFindings, &s.StaticFailures, &s.AIFailures,
	)
	return s, err
}

func (r *AnalysisRepository) queryResults(ctx context.Context, q string, args ...any) ([]*domain.Result, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Result
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*domain.Result, error) {
	var (
		res                        domain.Result
		staticStatus, staticReason string
		aiStatus, aiReason         string
		blob                       []byte
	)
	if err := row.Scan(
		&res.ID, &res.TriggeredAt, &res.Language,
		&staticStatus, &staticReason, &aiStatus, &aiReason,
		&res.ReportRef, &res.ArtifactURL, &res.DurationMS, &blob,
	); err != nil {
		return nil, err
	}
	if len(blob) > 0 {
		if err := json.Unmarshal(blob, &res.Findings); err != nil {
			return nil, err
		}
	}
	if res.Findings == nil {
		res.Findings = []findings.NormalizedFinding{}
	}
	res.Backends = map[findings.Backend]findings.Report{
		findings.BackendStatic: {Status: findings.BackendStatus(staticStatus), Reason: staticReason},
		findings.BackendAI:     {Status: findings.BackendStatus(aiStatus), Reason: aiReason},
	}
	return &res, nil
}

func statusOrFailed(s findings.BackendStatus) string {
	if s == "" {
		return string(findings.StatusFailed)
	}
	return string(s)
}
