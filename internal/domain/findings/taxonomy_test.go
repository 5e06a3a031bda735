package findings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTaxonomyMapsKnownLabels(t *testing.T) {
	tax := DefaultTaxonomy()

	cases := map[string]Category{
		"long_method":         CategoryLongMethod,
		"LONG_METHOD":         CategoryLongMethod,
		"  clone  ":           CategoryDuplicateCode,
		"god_class":           CategoryGodObject,
		"cyclomatic":          CategoryComplexConditional,
		"complex_conditional": CategoryComplexConditional,
	}
	for label, want := range cases {
		if got := tax.Map(label); got != want {
			t.Errorf("Map(%q) = %s, want %s", label, got, want)
		}
	}
}

func TestTaxonomyUnknownLabelFallsBack(t *testing.T) {
	tax := DefaultTaxonomy()
	if got := tax.Map("totally_new_smell"); got != CategoryUnknown {
		t.Errorf("Map(unknown) = %s, want Unknown", got)
	}
	if got := tax.Map(""); got != CategoryUnknown {
		t.Errorf("Map(empty) = %s, want Unknown", got)
	}
}

func TestLoadTaxonomyFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	content := `
very_long_function: LongMethod
copy_pasta: DuplicateCode
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write taxonomy: %v", err)
	}

	tax, err := LoadTaxonomy(path)
	if err != nil {
		t.Fatalf("LoadTaxonomy failed: %v", err)
	}
	if tax.Size() != 2 {
		t.Errorf("Size() = %d, want 2", tax.Size())
	}
	if got := tax.Map("very_long_function"); got != CategoryLongMethod {
		t.Errorf("Map(very_long_function) = %s, want LongMethod", got)
	}
	if got := tax.Map("copy_pasta"); got != CategoryDuplicateCode {
		t.Errorf("Map(copy_pasta) = %s, want DuplicateCode", got)
	}
}

func TestLoadTaxonomyRejectsUnknownCategory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	if err := os.WriteFile(path, []byte("weird: NotACategory\n"), 0644); err != nil {
		t.Fatalf("write taxonomy: %v", err)
	}

	if _, err := LoadTaxonomy(path); err == nil {
		t.Fatal("expected error for non-canonical category value")
	}
}

func TestLoadTaxonomyMissingFile(t *testing.T) {
	if _, err := LoadTaxonomy("/does/not/exist.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestClampConfidence(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{-0.5, 0},
		{0, 0},
		{0.42, 0.42},
		{1, 1},
		{1.8, 1},
	}
	for _, tc := range cases {
		if got := ClampConfidence(tc.in); got != tc.want {
			t.Errorf("ClampConfidence(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLocationOverlapLines(t *testing.T) {
	a := Location{File: "a.go", StartLine: 10, EndLine: 12}

	cases := []struct {
		name string
		b    Location
		want int
	}{
		{"partial overlap", Location{File: "a.go", StartLine: 11, EndLine: 13}, 2},
		{"contained", Location{File: "a.go", StartLine: 10, EndLine: 10}, 1},
		{"identical", Location{File: "a.go", StartLine: 10, EndLine: 12}, 3},
		{"disjoint", Location{File: "a.go", StartLine: 20, EndLine: 22}, 0},
		{"adjacent", Location{File: "a.go", StartLine: 13, EndLine: 14}, 0},
		{"different file", Location{File: "b.go", StartLine: 10, EndLine: 12}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := a.OverlapLines(tc.b); got != tc.want {
				t.Errorf("OverlapLines = %d, want %d", got, tc.want)
			}
			if got := tc.b.OverlapLines(a); got != tc.want {
				t.Errorf("OverlapLines not symmetric: %d, want %d", got, tc.want)
			}
		})
	}
}

func TestLocationSpanLines(t *testing.T) {
	if got := (Location{StartLine: 10, EndLine: 12}).SpanLines(); got != 3 {
		t.Errorf("SpanLines = %d, want 3", got)
	}
	if got := (Location{StartLine: 7, EndLine: 7}).SpanLines(); got != 1 {
		t.Errorf("SpanLines = %d, want 1", got)
	}
}
