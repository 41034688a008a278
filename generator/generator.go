// Package generator produces simulated read pairs from a reference.
//
// Each pair is cut from a fragment whose length comes from the error model's
// insert size distribution and whose location comes from DrawPosition. The
// forward mate is read from the fragment's 5' end, the reverse mate from the
// 5' end of its reverse complement. Both pass through the model's
// IntroduceErrors.
package generator

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"math/rand/v2"

	"github.com/justapithecus/readsim/errmodel"
	"github.com/justapithecus/readsim/types"
)

// Generator is the pull-based read generator. It is not safe for
// concurrent use; it owns its random stream for its lifetime.
type Generator struct {
	ref   *types.Reference
	n     int
	model errmodel.Model
	rng   *rand.Rand

	next int
	err  error
}

// New creates a generator for n pairs. Negative n is treated as zero.
func New(ref *types.Reference, n int, model errmodel.Model, rng *rand.Rand) *Generator {
	return &Generator{ref: ref, n: max(n, 0), model: model, rng: rng}
}

// Remaining returns how many pairs Next will still produce.
func (g *Generator) Remaining() int {
	if g.err != nil {
		return 0
	}
	return g.n - g.next
}

// Next produces the next pair.
//
// Errors:
//   - io.EOF: all pairs have been produced
//   - *InsufficientLengthError: the reference is shorter than the read
//     length or than the sampled fragment
//
// After a non-EOF error, every later call returns the same error.
func (g *Generator) Next() (types.ReadPair, error) {
	if g.err != nil {
		return types.ReadPair{}, g.err
	}
	if g.next >= g.n {
		return types.ReadPair{}, io.EOF
	}

	pair, err := g.generate(g.next)
	if err != nil {
		g.err = err
		return types.ReadPair{}, err
	}
	g.next++
	return pair, nil
}

func (g *Generator) generate(idx int) (types.ReadPair, error) {
	refLen := len(g.ref.Seq)
	readLen := g.model.ReadLength()
	if refLen < readLen {
		return types.ReadPair{}, &InsufficientLengthError{
			RefID:          g.ref.ID,
			RefLength:      refLen,
			FragmentLength: readLen,
		}
	}

	fragLen := max(g.model.InsertSize().Sample(g.rng), readLen)
	pos, err := DrawPosition(g.rng, refLen, fragLen)
	if err != nil {
		var lenErr *InsufficientLengthError
		if errors.As(err, &lenErr) {
			lenErr.RefID = g.ref.ID
		}
		return types.ReadPair{}, err
	}

	fragment := g.ref.Seq[pos.Start : pos.Start+fragLen]
	fwdSrc := fragment
	if pos.Strand == types.Minus {
		fwdSrc = RevComp(fragment)
	}
	revSrc := RevComp(fwdSrc)

	fwd, err := g.model.IntroduceErrors(g.rng, fwdSrc, types.Forward)
	if err != nil {
		return types.ReadPair{}, fmt.Errorf("forward read %d: %w", idx, err)
	}
	rev, err := g.model.IntroduceErrors(g.rng, revSrc, types.Reverse)
	if err != nil {
		return types.ReadPair{}, fmt.Errorf("reverse read %d: %w", idx, err)
	}

	fragStart, fragEnd := pos.Start, pos.Start+fragLen
	// Plus-strand coordinates of each mate: the forward mate sits at the
	// fragment start on the plus strand and at the fragment end on minus.
	fwdOrigin := types.Origin{RefID: g.ref.ID, Strand: pos.Strand, Orientation: types.Forward}
	revOrigin := types.Origin{RefID: g.ref.ID, Strand: pos.Strand.Flip(), Orientation: types.Reverse}
	if pos.Strand == types.Plus {
		fwdOrigin.Start, fwdOrigin.End = fragStart, fragStart+fwd.Consumed
		revOrigin.Start, revOrigin.End = fragEnd-rev.Consumed, fragEnd
	} else {
		fwdOrigin.Start, fwdOrigin.End = fragEnd-fwd.Consumed, fragEnd
		revOrigin.Start, revOrigin.End = fragStart, fragStart+rev.Consumed
	}

	return types.ReadPair{
		Index: idx,
		Forward: types.Read{
			ID:     fmt.Sprintf("%s_%d/1", g.ref.ID, idx),
			Seq:    fwd.Seq,
			Qual:   fwd.Qual,
			Origin: fwdOrigin,
			Errors: fwd.Errors,
		},
		Reverse: types.Read{
			ID:     fmt.Sprintf("%s_%d/2", g.ref.ID, idx),
			Seq:    rev.Seq,
			Qual:   rev.Qual,
			Origin: revOrigin,
			Errors: rev.Errors,
		},
		Fragment: types.Fragment{Start: fragStart, Length: fragLen, Strand: pos.Strand},
	}, nil
}

// Reads returns a lazy sequence of n pairs from ref. Each pair is computed
// when the consumer asks for it. The sequence stops after yielding an
// error. Ranging over the sequence again restarts at pair 0 but continues
// consuming rng.
func Reads(ref *types.Reference, n int, model errmodel.Model, rng *rand.Rand) iter.Seq2[types.ReadPair, error] {
	return func(yield func(types.ReadPair, error) bool) {
		g := New(ref, n, model, rng)
		for {
			pair, err := g.Next()
			if err == io.EOF {
				return
			}
			if !yield(pair, err) || err != nil {
				return
			}
		}
	}
}
