package builder

import (
	"strings"
	"testing"
)

func TestSuggestForKnownPatterns(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"COPY failed: no such file or directory", "build context"},
		{"pull access denied for private/repo", "registry authentication"},
		{"Service 'x' failed to build: returned a non-zero code: 1", "RUN command"},
		{"totally unrelated failure", ""},
	}

	for _, tt := range tests {
		got := suggestFor(tt.message)
		if tt.want == "" {
			if len(got) != 0 {
				t.Fatalf("expected no suggestions for %q, got %v", tt.message, got)
			}
			continue
		}
		if len(got) == 0 {
			t.Fatalf("expected a suggestion for %q", tt.message)
		}
		found := false
		for _, s := range got {
			if strings.Contains(s, tt.want) {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected a suggestion containing %q, got %v", tt.want, got)
		}
	}
}
