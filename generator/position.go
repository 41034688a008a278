package generator

import (
	"fmt"
	"math/rand/v2"

	"github.com/justapithecus/readsim/types"
)

// Position is a sampled fragment location.
type Position struct {
	Start  int
	Strand types.Strand
}

// InsufficientLengthError reports a reference too short for the requested
// fragment or read.
type InsufficientLengthError struct {
	RefID          string
	RefLength      int
	FragmentLength int
}

func (e *InsufficientLengthError) Error() string {
	if e.RefID != "" {
		return fmt.Sprintf("reference %q length %d is shorter than fragment length %d",
			e.RefID, e.RefLength, e.FragmentLength)
	}
	return fmt.Sprintf("reference length %d is shorter than fragment length %d", e.RefLength, e.FragmentLength)
}

// DrawPosition draws a start uniformly from [0, refLength-fragLength] and a
// uniform strand.
func DrawPosition(rng *rand.Rand, refLength, fragLength int) (Position, error) {
	if fragLength <= 0 || fragLength > refLength {
		return Position{}, &InsufficientLengthError{RefLength: refLength, FragmentLength: fragLength}
	}
	pos := Position{
		Start:  rng.IntN(refLength - fragLength + 1),
		Strand: types.Plus,
	}
	if rng.IntN(2) == 1 {
		pos.Strand = types.Minus
	}
	return pos, nil
}
