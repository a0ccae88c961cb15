package reference

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jd := filepath.Join(dir, "jd.txt")
	if err := os.WriteFile(jd, []byte("  Python developer needed\n"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte(" \n"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	tests := []struct {
		name    string
		src     Source
		expect  string
		wantErr string
	}{
		{
			name:   "file is read verbatim",
			src:    Source{File: jd},
			expect: "  Python developer needed\n",
		},
		{
			name:   "file takes precedence over text",
			src:    Source{File: jd, Text: "ignored"},
			expect: "  Python developer needed\n",
		},
		{
			name:   "inline text",
			src:    Source{Text: "golang engineer"},
			expect: "golang engineer",
		},
		{
			name:    "missing file",
			src:     Source{File: filepath.Join(dir, "missing.txt")},
			wantErr: "reading job description from file",
		},
		{
			name:    "empty file",
			src:     Source{File: empty},
			wantErr: "is empty",
		},
		{
			name:    "nothing configured",
			src:     Source{Name: "reference"},
			wantErr: "reference is not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Load(context.Background(), tt.src, nil)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestSourceLabel(t *testing.T) {
	t.Parallel()

	if got := (Source{File: " jd.txt "}).Label(); got != "jd.txt" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := (Source{Text: "x"}).Label(); got != "inline text" {
		t.Fatalf("unexpected label %q", got)
	}
}
