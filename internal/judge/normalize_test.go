package judge

import "testing"

func TestNormalizeBracketedSpacing(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"spaces inside brackets", "[1, 2, 3]", "[1,2,3]"},
		{"surrounding whitespace", "  [1,2]\n", "[1,2]"},
		{"single vs double quotes", "['a', 'b']", `["a","b"]`},
		{"nested arrays", "[[1, 2], [3, 4]]", "[[1,2],[3,4]]"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if Normalize(tc.a) != Normalize(tc.b) {
				t.Errorf("expected %q and %q to normalize equally, got %q vs %q",
					tc.a, tc.b, Normalize(tc.a), Normalize(tc.b))
			}
		})
	}
}

func TestNormalizeDoesNotConflateElementTypes(t *testing.T) {
	if Normalize("[1,2]") == Normalize(`["1","2"]`) {
		t.Error("numeric and string elements must not normalize equally")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"[1, 2, 3]",
		"['a','b']",
		"[not valid json]",
		"hello   world",
		"line1\nline2",
		"  42  ",
		"[1,2],[3,4]",
		"[",
		"2.50000",
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestNormalizeMalformedBracketFallback(t *testing.T) {
	// Looks bracketed but is not valid JSON: falls back to whitespace
	// stripping plus quote swapping.
	got := Normalize("[1, 2,, 3]")
	want := "[1,2,,3]"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalizePlainTextCollapsesWhitespace(t *testing.T) {
	got := Normalize("  hello \t  world \n")
	want := "hello world"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalizeNoNumericTolerance(t *testing.T) {
	// Floating-point output comparison is textual on purpose.
	if Normalize("2.5") == Normalize("2.50000") {
		t.Error("numeric tolerance is not part of normalization")
	}
}
