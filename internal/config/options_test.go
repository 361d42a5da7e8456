package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    Options
		wantErr bool
	}{
		{
			name: "empty uses defaults",
			yaml: "",
			want: DefaultOptions(),
		},
		{
			name: "full config",
			yaml: "max_iterations: 5\ntrace: true\nno_dispatch_cache: true\n",
			want: Options{MaxIterations: 5, Trace: true, NoDispatchCache: true},
		},
		{
			name: "partial config keeps remaining defaults",
			yaml: "trace: true\n",
			want: Options{MaxIterations: DefaultMaxIterations, Trace: true},
		},
		{
			name:    "negative iterations rejected",
			yaml:    "max_iterations: -1\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml rejected",
			yaml:    "max_iterations: [not a number\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOptions([]byte(tt.yaml), "vela.yaml")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoadOptionsMissingFile(t *testing.T) {
	opts, err := LoadOptions(filepath.Join(t.TempDir(), ConfigFileName))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if opts != DefaultOptions() {
		t.Fatalf("missing file did not fall back to defaults: %+v", opts)
	}
}

func TestFindOptionsWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := filepath.Join(root, ConfigFileName)
	if err := os.WriteFile(cfg, []byte("trace: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FindOptions(nested)
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Fatalf("found %q, want %q", got, cfg)
	}
}

func TestFindOptionsAbsent(t *testing.T) {
	got, err := FindOptions(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Fatalf("found unexpected config %q", got)
	}
}
