package iscab

import "time"

// IntegrityKind classifies a non-fatal integrity mismatch.
type IntegrityKind int

const (
	// IntegritySize reports output differing from the recorded
	// expanded size.
	IntegritySize IntegrityKind = iota
	// IntegrityChecksum reports an MD5 mismatch.
	IntegrityChecksum
)

// String returns a human-readable kind name.
func (k IntegrityKind) String() string {
	switch k {
	case IntegritySize:
		return "size"
	case IntegrityChecksum:
		return "checksum"
	default:
		return "unknown"
	}
}

// IntegrityWarning records a mismatch that did not stop extraction.
// The mismatched file is still written.
type IntegrityWarning struct {
	Path   string
	Kind   IntegrityKind
	Detail string
}

// FileError records a file that failed to extract.
type FileError struct {
	Path string
	Err  error
}

// Report summarizes one extraction run. Counts partition the files
// that were attempted: every catalog entry passing the filter lands in
// exactly one bucket.
type Report struct {
	Extracted    int
	LooseCopied  int
	LooseMissing int
	Skipped      int
	Failures     []FileError
	Warnings     []IntegrityWarning
	Elapsed      time.Duration
}

// Errors returns the number of files that failed.
func (r *Report) Errors() int {
	return len(r.Failures)
}
