package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	domain "github.com/adiwira-dev/sniffgate/internal/domain/analysis"
	"github.com/adiwira-dev/sniffgate/internal/domain/findings"
)

func result(id string, at time.Time, nFindings int, aiStatus findings.BackendStatus) *domain.Result {
	fs := make([]findings.NormalizedFinding, nFindings)
	for i := range fs {
		fs[i] = findings.NormalizedFinding{
			Category:   findings.CategoryLongMethod,
			Location:   findings.Location{StartLine: i + 1, EndLine: i + 1},
			Confidence: 1,
			Backends:   []findings.Backend{findings.BackendStatic},
		}
	}
	return &domain.Result{
		ID:          domain.ID(id),
		TriggeredAt: at,
		Language:    "go",
		Findings:    fs,
		Backends: map[findings.Backend]findings.Report{
			findings.BackendStatic: {Status: findings.StatusSuccess},
			findings.BackendAI:     {Status: aiStatus},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	repo := NewAnalysisRepository(10)
	ctx := context.Background()

	r := result("one", time.Now(), 2, findings.StatusSuccess)
	if err := repo.Save(ctx, r); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Get(ctx, "one")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Findings) != 2 {
		t.Errorf("findings = %d, want 2", len(got.Findings))
	}

	if _, err := repo.Get(ctx, "missing"); err != domain.ErrNotFound {
		t.Errorf("Get(missing) err = %v, want ErrNotFound", err)
	}
}

func TestSaveUpsertsExisting(t *testing.T) {
	repo := NewAnalysisRepository(10)
	ctx := context.Background()

	if err := repo.Save(ctx, result("one", time.Now(), 1, findings.StatusSuccess)); err != nil {
		t.Fatal(err)
	}
	if err := repo.Save(ctx, result("one", time.Now(), 3, findings.StatusSuccess)); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(ctx, "one")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Findings) != 3 {
		t.Errorf("findings after upsert = %d, want 3", len(got.Findings))
	}
	list, err := repo.Latest(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("list = %d entries after upsert, want 1", len(list))
	}
}

func TestLatestNewestFirst(t *testing.T) {
	repo := NewAnalysisRepository(10)
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		r := result(fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Minute), 1, findings.StatusSuccess)
		if err := repo.Save(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	list, err := repo.Latest(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("Latest(3) = %d entries", len(list))
	}
	if list[0].ID != "r4" || list[2].ID != "r2" {
		t.Errorf("order = %s..%s, want r4..r2", list[0].ID, list[2].ID)
	}
}

func TestPaginate(t *testing.T) {
	repo := NewAnalysisRepository(10)
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		if err := repo.Save(ctx, result(fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Minute), 1, findings.StatusSuccess)); err != nil {
			t.Fatal(err)
		}
	}

	page2, err := repo.Paginate(ctx, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page2) != 2 {
		t.Fatalf("page 2 = %d entries, want 2", len(page2))
	}
	if page2[0].ID != "r2" {
		t.Errorf("page 2 starts with %s, want r2", page2[0].ID)
	}

	empty, err := repo.Paginate(ctx, 9, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("out-of-range page = %d entries, want 0", len(empty))
	}
}

func TestSummaryCountsFailures(t *testing.T) {
	repo := NewAnalysisRepository(10)
	ctx := context.Background()
	now := time.Now()

	_ = repo.Save(ctx, result("a", now, 2, findings.StatusSuccess))
	_ = repo.Save(ctx, result("b", now, 1, findings.StatusTimeout))
	_ = repo.Save(ctx, result("c", now.AddDate(0, 0, -30), 5, findings.StatusFailed)) // outside window

	s, err := repo.Summary(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalAnalyses != 2 {
		t.Errorf("TotalAnalyses = %d, want 2", s.TotalAnalyses)
	}
	if s.TotalFindings != 3 {
		t.Errorf("TotalFindings = %d, want 3", s.TotalFindings)
	}
	if s.AIFailures != 1 {
		t.Errorf("AIFailures = %d, want 1", s.AIFailures)
	}
	if s.StaticFailures != 0 {
		t.Errorf("StaticFailures = %d, want 0", s.StaticFailures)
	}
}

func TestCapacityEviction(t *testing.T) {
	repo := NewAnalysisRepository(3)
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		if err := repo.Save(ctx, result(fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Second), 0, findings.StatusSuccess)); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := repo.Get(ctx, "r0"); err != domain.ErrNotFound {
		t.Errorf("oldest entry should be evicted, err = %v", err)
	}
	if _, err := repo.Get(ctx, "r4"); err != nil {
		t.Errorf("newest entry missing: %v", err)
	}
}
