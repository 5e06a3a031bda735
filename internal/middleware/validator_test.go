package middleware

import "testing"

func TestValidateLanguage(t *testing.T) {
	allowed := []string{"go", "python", "java"}

	if err := ValidateLanguage("go", allowed); err != nil {
		t.Errorf("go should pass: %v", err)
	}
	if err := ValidateLanguage("  Python ", allowed); err != nil {
		t.Errorf("case/space-insensitive match should pass: %v", err)
	}
	if err := ValidateLanguage("cobol", allowed); err == nil {
		t.Error("cobol should be rejected")
	}
	if err := ValidateLanguage("", allowed); err == nil {
		t.Error("empty language should be rejected")
	}
	// empty allow-list accepts anything non-empty
	if err := ValidateLanguage("brainfuck", nil); err != nil {
		t.Errorf("open allow-list should pass: %v", err)
	}
}

func TestValidateRequestID(t *testing.T) {
	if err := ValidateRequestID("9f3b2c10-1234-4abc-8def-0123456789ab"); err != nil {
		t.Errorf("valid uuid rejected: %v", err)
	}
	for _, bad := range []string{"", "not-a-uuid", "9F3B2C10-1234-4ABC-8DEF-0123456789AB; DROP TABLE"} {
		if err := ValidateRequestID(bad); err == nil {
			t.Errorf("ValidateRequestID(%q) should fail", bad)
		}
	}
}

func TestValidateLimit(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 20}, {-5, 20}, {50, 50}, {100, 100}, {500, 100},
	}
	for _, tc := range cases {
		if got := ValidateLimit(tc.in); got != tc.want {
			t.Errorf("ValidateLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestValidateDays(t *testing.T) {
	cases := []struct{ in, want int }{
		{0, 7}, {-1, 7}, {30, 30}, {365, 365}, {1000, 365},
	}
	for _, tc := range cases {
		if got := ValidateDays(tc.in); got != tc.want {
			t.Errorf("ValidateDays(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("go\x00lang"); got != "golang" {
		t.Errorf("null byte not stripped: %q", got)
	}
	if got := SanitizeString("  spaced  "); got != "spaced" {
		t.Errorf("whitespace not trimmed: %q", got)
	}
	if got := SanitizeString("a\x01b\x02c"); got != "abc" {
		t.Errorf("control chars not stripped: %q", got)
	}
}
