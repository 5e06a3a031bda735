package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/adiwira-dev/sniffgate/internal/domain/analysis"
	"github.com/adiwira-dev/sniffgate/internal/domain/findings"
)

// AnalysisRepository keeps results in memory, bounded to the most recent
// entries. Used when no database is configured and in tests.
type AnalysisRepository struct {
	mu      sync.RWMutex
	byID    map[domain.ID]*domain.Result
	ordered []*domain.Result
	cap     int
}

func NewAnalysisRepository(capacity int) *AnalysisRepository {
	if capacity <= 0 {
		capacity = 1000
	}
	return &AnalysisRepository{
		byID: make(map[domain.ID]*domain.Result),
		cap:  capacity,
	}
}

func (r *AnalysisRepository) Save(_ context.Context, res *domain.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *res
	if _, exists := r.byID[res.ID]; !exists {
		r.ordered = append(r.ordered, &cp)
		if len(r.ordered) > r.cap {
			evicted := r.ordered[0]
			r.ordered = r.ordered[1:]
			delete(r.byID, evicted.ID)
		}
	} else {
		for i, old := range r.ordered {
			if old.ID == res.ID {
				r.ordered[i] = &cp
				break
			}
		}
	}
	r.byID[res.ID] = &cp
	return nil
}

func (r *AnalysisRepository) Get(_ context.Context, id domain.ID) (*domain.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (r *AnalysisRepository) Latest(_ context.Context, limit int) ([]*domain.Result, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.newestLocked(0, limit), nil
}

func (r *AnalysisRepository) Paginate(_ context.Context, page, pageSize int) ([]*domain.Result, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.newestLocked((page-1)*pageSize, pageSize), nil
}

func (r *AnalysisRepository) Summary(_ context.Context, sinceDays int) (domain.Summary, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	cutoff := time.Now().AddDate(0, 0, -sinceDays)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var s domain.Summary
	for _, res := range r.ordered {
		if res.TriggeredAt.Before(cutoff) {
			continue
		}
		s.TotalAnalyses++
		s.TotalFindings += len(res.Findings)
		if res.Status(findings.BackendStatic) != findings.StatusSuccess {
			s.StaticFailures++
		}
		if res.Status(findings.BackendAI) != findings.StatusSuccess {
			s.AIFailures++
		}
	}
	return s, nil
}

// newestLocked returns results newest-first with the given offset and limit.
func (r *AnalysisRepository) newestLocked(offset, limit int) []*domain.Result {
	sorted := make([]*domain.Result, len(r.ordered))
	copy(sorted, r.ordered)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TriggeredAt.After(sorted[j].TriggeredAt)
	})

	if offset >= len(sorted) {
		return nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}
	out := make([]*domain.Result, 0, end-offset)
	for _, res := range sorted[offset:end] {
		cp := *res
		out = append(out, &cp)
	}
	return out
}
