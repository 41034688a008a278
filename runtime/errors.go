package runtime

import (
	"errors"
	"fmt"

	"github.com/justapithecus/readsim/abundance"
	"github.com/justapithecus/readsim/errmodel"
	"github.com/justapithecus/readsim/generator"
	"github.com/justapithecus/readsim/types"
)

// RunError classifies a run failure for outcome determination.
type RunError struct {
	// Kind is the outcome the failure maps to.
	Kind types.OutcomeStatus
	// Genome is the genome being processed, if any.
	Genome string
	// Err is the underlying error.
	Err error
}

func (e *RunError) Error() string {
	if e.Genome != "" {
		return fmt.Sprintf("%s (genome %s): %v", e.Kind, e.Genome, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func inputError(err error) *RunError {
	return &RunError{Kind: types.OutcomeInputError, Err: err}
}

func modelError(err error) *RunError {
	return &RunError{Kind: types.OutcomeModelError, Err: err}
}

func generationError(genome string, err error) *RunError {
	return &RunError{Kind: types.OutcomeGenerationError, Genome: genome, Err: err}
}

func policyError(genome string, err error) *RunError {
	return &RunError{Kind: types.OutcomePolicyFailure, Genome: genome, Err: err}
}

// Classify maps an error to a run outcome status. An enclosing RunError
// wins; otherwise typed loader errors are recognized and anything else is a
// generation error.
func Classify(err error) types.OutcomeStatus {
	if err == nil {
		return types.OutcomeSuccess
	}

	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.Kind
	}

	var (
		fileErr  *abundance.InputFileError
		modelErr *errmodel.ModelLoadError
	)
	switch {
	case errors.As(err, &fileErr):
		return types.OutcomeInputError
	case errors.As(err, &modelErr):
		return types.OutcomeModelError
	default:
		return types.OutcomeGenerationError
	}
}

// IsInsufficientLength reports whether err is a too-short reference.
func IsInsufficientLength(err error) bool {
	var lenErr *generator.InsufficientLengthError
	return errors.As(err, &lenErr)
}
