package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Options are the engine tunables, loadable from vela.yaml.
type Options struct {
	// MaxIterations bounds the call-site fixpoint loop.
	MaxIterations int `yaml:"max_iterations,omitempty"`

	// Trace prints a per-iteration summary of the fixpoint loop.
	Trace bool `yaml:"trace,omitempty"`

	// NoDispatchCache disables the positive-only dispatch cache. Dispatch
	// results must be identical either way; the switch exists to prove it.
	NoDispatchCache bool `yaml:"no_dispatch_cache,omitempty"`
}

// DefaultOptions returns the options used when no vela.yaml is present.
func DefaultOptions() Options {
	return Options{MaxIterations: DefaultMaxIterations}
}

// LoadOptions reads and parses a vela.yaml file.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultOptions(), fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseOptions(data, path)
}

// ParseOptions parses vela.yaml content from bytes. The path argument is
// used only for error messages.
func ParseOptions(data []byte, path string) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return DefaultOptions(), fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := opts.validate(path); err != nil {
		return DefaultOptions(), err
	}
	opts.setDefaults()
	return opts, nil
}

// FindOptions searches for vela.yaml starting from dir and walking up to
// parent directories. It returns the path if found, or "" and nil error if
// not found.
func FindOptions(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (o *Options) validate(path string) error {
	if o.MaxIterations < 0 {
		return fmt.Errorf("%s: max_iterations must not be negative", path)
	}
	return nil
}

func (o *Options) setDefaults() {
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
}
