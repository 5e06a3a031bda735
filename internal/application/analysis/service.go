package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/adiwira-dev/sniffgate/internal/application"
	domain "github.com/adiwira-dev/sniffgate/internal/domain/analysis"
	"github.com/adiwira-dev/sniffgate/internal/domain/findings"
)

const (
	defaultBudget = 10 * time.Second
	maxSourceSize = 1 << 20 // 1 MiB
)

// Service implements the analysis use-cases: it drives the fan-out to the
// detection backends, hands the resolved pair to the Aggregator and forwards
// the finished result to the report collaborator.
// Safe for concurrent use; per-request state never leaves Analyze.
type Service struct {
	Detectors  []findings.Detector
	Budgets    map[findings.Backend]time.Duration
	Aggregator *Aggregator
	Repo       domain.Repository      // required
	Reports    domain.ReportPublisher // optional
	Artifacts  domain.ArtifactStore   // optional
	Clock      application.Clock
	Languages  []string // allow-list; empty accepts any non-empty language
}

type slot struct {
	backend findings.Backend
	raw     []findings.RawFinding
	report  findings.Report
}

// Analyze runs one request end to end. The only error it can return is
// ErrInvalidRequest; backend outages, timeouts and report-collaborator
// failures all surface inside the result instead.
func (s *Service) Analyze(ctx context.Context, req domain.Request) (*domain.Result, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	id := domain.ID(uuid.New().String())
	log := logrus.WithField("request_id", id)

	// fan out to every requested backend concurrently
	slots := make([]slot, 0, len(s.Detectors))
	for _, d := range s.Detectors {
		if req.Options.Wants(d.Backend()) {
			slots = append(slots, slot{backend: d.Backend()})
		}
	}
	var wg sync.WaitGroup
	si := 0
	for _, d := range s.Detectors {
		if !req.Options.Wants(d.Backend()) {
			continue
		}
		wg.Add(1)
		go func(d findings.Detector, out *slot) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.budget(d.Backend()))
			defer cancel()
			out.raw, out.report = d.Detect(cctx, req.Code, req.Language)
		}(d, &slots[si])
		si++
	}
	wg.Wait()

	// aggregate exactly once over the fully-resolved pair
	var raw []findings.RawFinding
	backends := make(map[findings.Backend]findings.Report, len(slots))
	for _, sl := range slots {
		backends[sl.backend] = sl.report
		if sl.report.Status == findings.StatusSuccess {
			raw = append(raw, sl.raw...)
		}
		log.WithFields(logrus.Fields{
			"backend":     sl.backend,
			"status":      sl.report.Status,
			"findings":    sl.report.Findings,
			"duration_ms": sl.report.DurationMS,
		}).Info("backend resolved")
	}
	merged := s.Aggregator.Aggregate(raw, countLines(req.Code))

	result := &domain.Result{
		ID:          id,
		TriggeredAt: now,
		Language:    req.Language,
		Findings:    merged,
		Backends:    backends,
		DurationMS:  s.Clock.Now().Sub(now).Milliseconds(),
	}

	s.archive(ctx, log, result)
	s.publish(ctx, log, result)

	if err := s.Repo.Save(ctx, result); err != nil {
		log.WithError(err).Error("result save failed")
	}
	return result, nil
}

// archive uploads the raw result JSON so the full aggregate survives even if
// the report collaborator is down.
func (s *Service) archive(ctx context.Context, log *logrus.Entry, r *domain.Result) {
	if s.Artifacts == nil {
		return
	}
	data, err := json.Marshal(r)
	if err != nil {
		log.WithError(err).Error("result marshal failed")
		return
	}
	key := fmt.Sprintf("analyses/%s.json", r.ID)
	url, err := s.Artifacts.Put(ctx, key, data, "application/json")
	if err != nil {
		log.WithError(err).Warn("artifact upload failed")
		return
	}
	r.ArtifactURL = url
}

// publish hands the result to the report collaborator; a publishing failure
// leaves report_ref empty but never fails the request.
func (s *Service) publish(ctx context.Context, log *logrus.Entry, r *domain.Result) {
	if s.Reports == nil {
		return
	}
	ref, err := s.Reports.Publish(ctx, r)
	if err != nil {
		log.WithError(err).Warn("report publish failed")
		return
	}
	r.ReportRef = ref
}

func (s *Service) validate(req domain.Request) error {
	if strings.TrimSpace(req.Code) == "" {
		return fmt.Errorf("%w: source code is empty", domain.ErrInvalidRequest)
	}
	if len(req.Code) > maxSourceSize {
		return fmt.Errorf("%w: source code exceeds %d bytes", domain.ErrInvalidRequest, maxSourceSize)
	}
	lang := strings.ToLower(strings.TrimSpace(req.Language))
	if lang == "" {
		return fmt.Errorf("%w: language is required", domain.ErrInvalidRequest)
	}
	if len(s.Languages) > 0 && !containsFold(s.Languages, lang) {
		return fmt.Errorf("%w: unsupported language %q", domain.ErrInvalidRequest, req.Language)
	}
	for _, want := range req.Options.Detectors {
		if !s.hasDetector(want) {
			return fmt.Errorf("%w: unknown detector %q", domain.ErrInvalidRequest, want)
		}
	}
	return nil
}

func (s *Service) hasDetector(b findings.Backend) bool {
	for _, d := range s.Detectors {
		if d.Backend() == b {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, l := range list {
		if strings.EqualFold(l, v) {
			return true
		}
	}
	return false
}

func (s *Service) budget(b findings.Backend) time.Duration {
	if d, ok := s.Budgets[b]; ok && d > 0 {
		return d
	}
	return defaultBudget
}

// Latest returns the N most recent stored results.
func (s *Service) Latest(ctx context.Context, limit int) ([]*domain.Result, error) {
	return s.Repo.Latest(ctx, limit)
}

// Get returns one stored result by request ID.
func (s *Service) Get(ctx context.Context, id domain.ID) (*domain.Result, error) {
	return s.Repo.Get(ctx, id)
}

// Paginate returns a page of stored results, newest first.
func (s *Service) Paginate(ctx context.Context, page, pageSize int) ([]*domain.Result, error) {
	return s.Repo.Paginate(ctx, page, pageSize)
}

// Summary rolls up stored results for the last N days.
func (s *Service) Summary(ctx context.Context, sinceDays int) (domain.Summary, error) {
	return s.Repo.Summary(ctx, sinceDays)
}

func countLines(code string) int {
	n := strings.Count(code, "\n") + 1
	if strings.HasSuffix(code, "\n") {
		n--
	}
	return n
}
