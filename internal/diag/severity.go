package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevNote is for informational notes, usually attached to another diagnostic.
	SevNote Severity = iota
	// SevWarning is for warnings: the core proceeds but flags a likely mistake.
	SevWarning
	// SevError gates code-gen but does not stop analysis: the core always
	// walks the entire tree to gather errors.
	SevError
	// SevFatal marks an internal invariant violation.
	SevFatal
)

func (s Severity) String() string {
	switch s {
	case SevNote:
		return "NOTE"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	case SevFatal:
		return "FATAL"
	}
	return "UNKNOWN"
}
