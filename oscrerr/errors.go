// Package oscrerr defines the error kinds spec §7 enumerates, as small
// struct types rather than opaque sentinels so callers can recover the
// offending path, line, or tree node id with errors.As.
package oscrerr

import "fmt"

// PathNotFound is returned when a log path does not exist.
type PathNotFound struct{ Path string }

func (e *PathNotFound) Error() string { return fmt.Sprintf("path not found: %s", e.Path) }

// NotAFile is returned when a log path exists but is a directory or other
// non-regular file.
type NotAFile struct{ Path string }

func (e *NotAFile) Error() string { return fmt.Sprintf("not a file: %s", e.Path) }

// EmptyLog is returned when a log file is empty (zero bytes).
type EmptyLog struct{ Path string }

func (e *EmptyLog) Error() string { return fmt.Sprintf("empty log: %s", e.Path) }

// MalformedLine is reported by the orchestrator when logline.Parse rejects a
// line that does not match the fixed-delimiter grammar, carrying the offending line text and the reason
// it failed so the caller's error handler can report both.
type MalformedLine struct {
	Line   string
	Reason string
}

func (e *MalformedLine) Error() string {
	return fmt.Sprintf("malformed line (%s): %q", e.Reason, e.Line)
}

// DuplicateIdForDifferentParent is returned by TreeModel when an id already
// present under one parent is inserted again under a different one.
type DuplicateIdForDifferentParent struct {
	ID             string
	ExistingParent string
	NewParent      string
}

func (e *DuplicateIdForDifferentParent) Error() string {
	return fmt.Sprintf("id %q already exists under parent %q, cannot also attach under %q",
		e.ID, e.ExistingParent, e.NewParent)
}

// PermissionError is returned when Repair's or ComposeLogfile's final atomic write
// cannot complete; the caller-visible temp file at TempPath is preserved for
// inspection or manual recovery.
type PermissionError struct {
	Path     string
	TempPath string
	Err      error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission error writing %s (temp file preserved at %s): %v", e.Path, e.TempPath, e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// AnalyzerFailure wraps an error raised mid-analysis with the line text that
// was being processed when it occurred, or "" when the failure preceded the
// first read ("Error before loop!" per spec §7).
type AnalyzerFailure struct {
	Line string
	Err  error
}

func (e *AnalyzerFailure) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("analyzer failure before loop: %v", e.Err)
	}
	return fmt.Sprintf("analyzer failure at line %q: %v", e.Line, e.Err)
}

func (e *AnalyzerFailure) Unwrap() error { return e.Err }
