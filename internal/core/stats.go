package core

import (
	"fmt"
	"time"
)

type OutputFile struct {
	Path  string
	Bytes int
}

// Stats is the outcome of a compile that ran to completion. A compile that
// could not run at all is reported as a CompilerError instead.
type Stats struct {
	Mode     Mode
	Outputs  []OutputFile
	Errors   []string
	Warnings []string
	Duration time.Duration
}

func (s *Stats) HasErrors() bool {
	return s != nil && len(s.Errors) > 0
}

func (s *Stats) HasWarnings() bool {
	return s != nil && len(s.Warnings) > 0
}

type CompilerError struct {
	Err     error
	Details string
}

func (e *CompilerError) Error() string {
	return e.Err.Error()
}

func (e *CompilerError) Unwrap() error {
	return e.Err
}

type CompileFailedError struct {
	Errors []string
}

func (e *CompileFailedError) Error() string {
	return fmt.Sprintf("main process build failed with %d error(s)", len(e.Errors))
}
