package textnorm

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "empty",
			input:  "",
			expect: "",
		},
		{
			name:   "lower cases letters",
			input:  "Python Developer",
			expect: "python developer",
		},
		{
			name:   "punctuation becomes a separator",
			input:  "REST-API, Django/Flask.",
			expect: "rest api django flask",
		},
		{
			name:   "digits are dropped",
			input:  "5 years of Go1.24",
			expect: "years of go",
		},
		{
			name:   "collapses whitespace and trims",
			input:  "  machine \t\n  learning  ",
			expect: "machine learning",
		},
		{
			name:   "non ascii letters are separators",
			input:  "café résumé",
			expect: "caf r sum",
		},
		{
			name:   "only symbols",
			input:  "+++ ### 123",
			expect: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"   ",
		"Senior Python/Django engineer (REST API, TensorFlow)",
		"ﬁnance and ops",
		"İstanbul ÅNGSTRÖM",
		"tab\tseparated\nlines\r\n",
		"already normalized text",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("normalize is not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestNormalizeOutputAlphabet(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"  Leading and trailing  ",
		"Mixed\t\tWhitespace\n\nand SYMBOLS!!! 42",
		"ÉCOLE—polytechnique",
		"a  b   c",
	}

	for _, input := range inputs {
		out := Normalize(input)
		if out == "" {
			continue
		}
		if out[0] == ' ' || out[len(out)-1] == ' ' {
			t.Fatalf("unexpected surrounding whitespace in %q", out)
		}
		prevSpace := false
		for _, r := range out {
			switch {
			case r == ' ':
				if prevSpace {
					t.Fatalf("double space in %q", out)
				}
				prevSpace = true
			case r >= 'a' && r <= 'z':
				prevSpace = false
			default:
				t.Fatalf("unexpected rune %q in %q", r, out)
			}
		}
	}
}

func TestWordCount(t *testing.T) {
	t.Parallel()

	if got := WordCount(""); got != 0 {
		t.Fatalf("expected 0 words, got %d", got)
	}
	if got := WordCount("  one two\tthree\nfour  "); got != 4 {
		t.Fatalf("expected 4 words, got %d", got)
	}
}
