package errmodel

import "fmt"

// ModelLoadError reports a model that could not be built: a missing or
// undecodable profile artifact, or parameters that fail validation.
type ModelLoadError struct {
	// Name is the model kind or profile name requested.
	Name string
	// Path is the resolved artifact path, if any.
	Path string
	// Reason describes the failed check.
	Reason string
	// Err is the underlying cause, if any.
	Err error
}

func (e *ModelLoadError) Error() string {
	msg := fmt.Sprintf("load model %q", e.Name)
	if e.Path != "" {
		msg += fmt.Sprintf(" from %s", e.Path)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}
