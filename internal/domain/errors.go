package domain

import (
	"fmt"
	"strings"
)

// PathNotFoundError reports an input path or glob that resolved to no
// readable file. The run warns and skips it.
type PathNotFoundError struct {
	Path string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("path not found: %s", e.Path)
}

// NoInputError reports that a run resolved zero input files overall.
// The run warns and produces no output file.
type NoInputError struct {
	Patterns []string
}

func (e *NoInputError) Error() string {
	return fmt.Sprintf("no input files matched: %s", strings.Join(e.Patterns, ", "))
}

// ParseFormatError reports a value that was expected to be numeric but is
// not. It fails the file it occurred in; records finalized before the
// failing line remain valid.
type ParseFormatError struct {
	File  string
	Line  int
	Label string
	Value string
	Err   error
}

func (e *ParseFormatError) Error() string {
	return fmt.Sprintf("%s: line %d: %s value %q is not numeric: %v", e.File, e.Line, e.Label, e.Value, e.Err)
}

func (e *ParseFormatError) Unwrap() error {
	return e.Err
}

// ExternalToolError reports a failure to locate or invoke the external
// array-management CLI. It skips the identifiers in its scope, never the
// whole process.
type ExternalToolError struct {
	Tool string
	Err  error
}

func (e *ExternalToolError) Error() string {
	return fmt.Sprintf("external tool %s: %v", e.Tool, e.Err)
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}
