package abundance

import "fmt"

// InputFileError reports an abundance file that is missing, empty or
// unreadable. It is fatal to the run.
type InputFileError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InputFileError) Error() string {
	msg := fmt.Sprintf("abundance file %s: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InputFileError) Unwrap() error {
	return e.Err
}

// RecordParseError reports a malformed abundance line. ParseFile logs and
// skips these.
type RecordParseError struct {
	Path   string
	Line   int
	Text   string
	Reason string
	Err    error
}

func (e *RecordParseError) Error() string {
	msg := fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RecordParseError) Unwrap() error {
	return e.Err
}
