package runtime

import (
	"errors"

	"github.com/justapithecus/readsim/types"
)

// Process exit codes per outcome.
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1 // usage or unclassified failure
	ExitCodePolicyFailure   = 3
	ExitCodeInputError      = 4
	ExitCodeModelError      = 5
	ExitCodeGenerationError = 6
)

// ExitCodeFor maps an outcome status to a process exit code.
func ExitCodeFor(status types.OutcomeStatus) int {
	switch status {
	case types.OutcomeSuccess:
		return ExitCodeSuccess
	case types.OutcomePolicyFailure:
		return ExitCodePolicyFailure
	case types.OutcomeInputError:
		return ExitCodeInputError
	case types.OutcomeModelError:
		return ExitCodeModelError
	case types.OutcomeGenerationError:
		return ExitCodeGenerationError
	default:
		return ExitCodeError
	}
}

// outcomeFor builds the RunOutcome for a terminal error. A nil error is
// success.
func outcomeFor(err error) *types.RunOutcome {
	if err == nil {
		return &types.RunOutcome{Status: types.OutcomeSuccess, Message: "run completed successfully"}
	}
	outcome := &types.RunOutcome{Status: Classify(err), Message: err.Error()}
	var runErr *RunError
	if errors.As(err, &runErr) {
		outcome.Genome = runErr.Genome
		outcome.Message = runErr.Err.Error()
	}
	return outcome
}
