package examgen

import (
	"errors"
	"fmt"
)

// ErrInsufficientMaterial is returned when no concept can be extracted from
// any of the supplied materials. Callers should report "no usable content"
// instead of persisting a degenerate empty exam.
var ErrInsufficientMaterial = errors.New("no usable content in course materials")

// ConfigError reports an exam configuration rejected before any synthesis
// work: distributions that do not sum to 1, non-positive target counts.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid exam config: %s: %s", e.Field, e.Reason)
}

// RenderError reports a rendering failure together with the offending
// destination path. Rendering never leaves a partial file behind.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
