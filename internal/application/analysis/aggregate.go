package analysis

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/adiwira-dev/sniffgate/internal/domain/findings"
)

// Aggregator merges the raw findings of both backends into one canonical,
// deterministically ordered sequence.
//
// MinOverlapLines is the number of shared lines two same-category findings
// need before they count as the same finding; 1 means any overlap merges.
type Aggregator struct {
	Taxonomy        *findings.Taxonomy
	MinOverlapLines int
}

// unnamedFile is the canonical file name for findings on the submitted
// payload when a backend reports no file of its own. Without it, backends
// that name the single-payload source differently could never merge.
const unnamedFile = "source"

// confUnscored marks findings whose backend reported no confidence. The
// sentinel survives merging so that an explicitly reported score always wins
// over the 1.0 default; it is resolved to 1.0 once merging is done.
const confUnscored = -1.0

// Aggregate normalizes, merges and sorts raw findings. maxLine is the number
// of lines in the submitted source; findings located past it are inconsistent
// backend output and get dropped with a log line rather than surfaced.
//
// The result is identical for the same input regardless of the order raw
// findings arrive in, so backend completion order never leaks into output.
func (a *Aggregator) Aggregate(raw []findings.RawFinding, maxLine int) []findings.NormalizedFinding {
	minOverlap := a.MinOverlapLines
	if minOverlap < 1 {
		minOverlap = 1
	}

	normalized := make([]findings.NormalizedFinding, 0, len(raw))
	for _, rf := range raw {
		if rf.Location.StartLine < 1 || rf.Location.StartLine > maxLine || rf.Location.EndLine > maxLine {
			logrus.WithFields(logrus.Fields{
				"backend": rf.Backend,
				"label":   rf.Label,
				"line":    rf.Location.StartLine,
				"max":     maxLine,
			}).Warn("dropping finding outside source range")
			continue
		}
		conf := confUnscored
		if rf.Confidence != nil {
			conf = findings.ClampConfidence(*rf.Confidence)
		}
		loc := rf.Location
		if loc.File == "" {
			loc.File = unnamedFile
		}
		normalized = append(normalized, findings.NormalizedFinding{
			Category:    a.Taxonomy.Map(rf.Label),
			Location:    loc,
			Confidence:  conf,
			Description: rf.Description,
			Backends:    []findings.Backend{rf.Backend},
		})
	}

	// Fix the grouping order before merging, otherwise the group a finding
	// lands in could depend on which backend answered first.
	sortFindings(normalized)

	merged := make([]findings.NormalizedFinding, 0, len(normalized))
	for _, nf := range normalized {
		idx := -1
		for i := range merged {
			if merged[i].Category != nf.Category {
				continue
			}
			if merged[i].Location.OverlapLines(nf.Location) >= minOverlap {
				idx = i
				break
			}
		}
		if idx < 0 {
			merged = append(merged, nf)
			continue
		}
		merged[idx] = merge(merged[idx], nf)
	}

	for i := range merged {
		if merged[i].Confidence == confUnscored {
			merged[i].Confidence = 1.0
		}
	}

	sortFindings(merged)
	return merged
}

// merge folds b into a: union of contributing backends, max reported
// confidence, tightest location span, first non-empty description.
func merge(a, b findings.NormalizedFinding) findings.NormalizedFinding {
	out := a
	if b.Confidence > out.Confidence {
		out.Confidence = b.Confidence
	}
	if b.Location.SpanLines() < out.Location.SpanLines() {
		out.Location = b.Location
	}
	if out.Description == "" {
		out.Description = b.Description
	}
	for _, backend := range b.Backends {
		if !out.FromBackend(backend) {
			out.Backends = append(out.Backends, backend)
		}
	}
	sort.Slice(out.Backends, func(i, j int) bool { return out.Backends[i] < out.Backends[j] })
	return out
}

// sortFindings orders by (file, start line, start col, category, backend)
// for fully deterministic output.
func sortFindings(fs []findings.NormalizedFinding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Location.File != b.Location.File {
			return a.Location.File < b.Location.File
		}
		if a.Location.StartLine != b.Location.StartLine {
			return a.Location.StartLine < b.Location.StartLine
		}
		if a.Location.StartCol != b.Location.StartCol {
			return a.Location.StartCol < b.Location.StartCol
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return len(a.Backends) > 0 && len(b.Backends) > 0 && a.Backends[0] < b.Backends[0]
	})
}
