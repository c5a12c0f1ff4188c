package io

import "fmt"

// LoadError reports a source image that could not be decoded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load image %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// WriteError reports a stage result that could not be persisted.
type WriteError struct {
	Stage string
	Path  string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("stage %s: failed to write %s: %v", e.Stage, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
