package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "key")
	if err := os.WriteFile(keyFile, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("JOBMATCH_TEST_KEY", " from-env ")

	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr string
	}{
		{name: "file wins", src: Source{File: keyFile, Value: "inline", Env: "JOBMATCH_TEST_KEY"}, want: "from-file"},
		{name: "inline over env", src: Source{Value: " inline ", Env: "JOBMATCH_TEST_KEY"}, want: "inline"},
		{name: "env fallback", src: Source{Env: "JOBMATCH_TEST_KEY"}, want: "from-env"},
		{name: "empty file", src: Source{Name: "api key", File: emptyFile}, wantErr: "is empty"},
		{name: "missing file", src: Source{File: filepath.Join(dir, "nope")}, wantErr: "reading secret"},
		{name: "unset env", src: Source{Name: "api key", Env: "JOBMATCH_TEST_UNSET"}, wantErr: "set JOBMATCH_TEST_UNSET"},
		{name: "nothing", src: Source{}, wantErr: "secret is not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
