package findings

// Backend identifies a detection backend
type Backend string

const (
	BackendStatic Backend = "static"
	BackendAI     Backend = "ai"
)

// BackendStatus enum
type BackendStatus string

const (
	StatusSuccess BackendStatus = "success"
	StatusFailed  BackendStatus = "failed"
	StatusTimeout BackendStatus = "timeout"
)

// Category is a canonical smell category
type Category string

const (
	CategoryLongMethod         Category = "LongMethod"
	CategoryLargeClass         Category = "LargeClass"
	CategoryLongParameterList  Category = "LongParameterList"
	CategoryDuplicateCode      Category = "DuplicateCode"
	CategoryDeadCode           Category = "DeadCode"
	CategoryComplexConditional Category = "ComplexConditional"
	CategoryFeatureEnvy        Category = "FeatureEnvy"
	CategoryDataClump          Category = "DataClump"
	CategoryMagicNumber        Category = "MagicNumber"
	CategoryGodObject          Category = "GodObject"
	CategoryUnknown            Category = "Unknown"
)

// Location value object: a file plus an inclusive line/column range
type Location struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col,omitempty"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col,omitempty"`
}

// OverlapLines returns how many lines two locations share, 0 when they
// are in different files or do not intersect.
func (l Location) OverlapLines(o Location) int {
	if l.File != o.File {
		return 0
	}
	lo := l.StartLine
	if o.StartLine > lo {
		lo = o.StartLine
	}
	hi := l.EndLine
	if o.EndLine < hi {
		hi = o.EndLine
	}
	if hi < lo {
		return 0
	}
	return hi - lo + 1
}

// SpanLines returns the number of lines the location covers.
func (l Location) SpanLines() int {
	if l.EndLine < l.StartLine {
		return 1
	}
	return l.EndLine - l.StartLine + 1
}

// RawFinding is the per-backend detection before normalization.
// Confidence is nil when the backend does not score its findings.
type RawFinding struct {
	Backend     Backend
	Label       string
	Location    Location
	Description string
	Confidence  *float64
}

// NormalizedFinding is the canonical, aggregated form exposed to callers.
type NormalizedFinding struct {
	Category    Category  `json:"category"`
	Location    Location  `json:"location"`
	Confidence  float64   `json:"confidence"`
	Description string    `json:"description,omitempty"`
	Backends    []Backend `json:"backends"`
}

// FromBackend reports whether b contributed to the finding.
func (f NormalizedFinding) FromBackend(b Backend) bool {
	for _, c := range f.Backends {
		if c == b {
			return true
		}
	}
	return false
}

// ClampConfidence forces a score into [0,1].
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
