package project

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// CoreOptions holds the settings of the `[sema]` table of ace.toml.
// LoadCoreOptions reads them; no package in this repository consumes the
// loaded values, and cmd/acecore takes its diagnostic cap from the
// --max-diagnostics flag instead.
type CoreOptions struct {
	// MaxDiagnostics is the diagnostic-bag cap named in the manifest (the
	// default equals diag.DefaultBagCap).
	MaxDiagnostics int `toml:"max_diagnostics"`

	// UnusedBindingIsWarning selects whether unread local bindings are to be
	// reported. No pass reports diag.SemaUnusedBinding, so the setting has
	// no effect.
	UnusedBindingIsWarning bool `toml:"warn_unused_bindings"`

	// StrictNumericLadder selects rejection of machine-width ("Int")
	// arguments where a fixed-width sibling would be preferred. No check
	// reads it, so the setting has no effect.
	StrictNumericLadder bool `toml:"strict_numeric_ladder"`
}

// DefaultCoreOptions returns the options used when a manifest omits a field.
func DefaultCoreOptions() CoreOptions {
	return CoreOptions{
		MaxDiagnostics:         4096,
		UnusedBindingIsWarning: true,
		StrictNumericLadder:    false,
	}
}

type manifest struct {
	Sema CoreOptions `toml:"sema"`
}

// LoadCoreOptions parses the `[sema]` table out of the ace.toml at path,
// falling back to defaults for any field the manifest omits.
func LoadCoreOptions(path string) (CoreOptions, error) {
	opts := DefaultCoreOptions()
	if path == "" {
		return opts, nil
	}
	var m manifest
	m.Sema = opts
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return CoreOptions{}, fmt.Errorf("decode manifest %q: %w", path, err)
	}
	return m.Sema, nil
}
