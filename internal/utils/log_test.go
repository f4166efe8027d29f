package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "non-positive limit", input: "prompt", limit: 0, expect: ""},
		{name: "fits", input: "1. [job-001] Engineer", limit: 40, expect: "1. [job-001] Engineer"},
		{name: "cut with ellipsis", input: "graduate programme", limit: 8, expect: "graduate..."},
		{name: "multiline prompt collapsed", input: "  line one\n\n\tline two  ", limit: 50, expect: "line one line two"},
		{name: "counts runes", input: "São Paulo", limit: 3, expect: "São..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
