// Package errmodel implements sequencer error models.
//
// A Model turns a stretch of error-free fragment sequence into a read with
// sampled quality scores and injected substitution and indel errors. Models
// are immutable after construction and safe for concurrent use; every call
// draws entropy only from the caller's random stream.
package errmodel

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/justapithecus/readsim/types"
)

// Model kinds accepted by New.
const (
	KindBasic   = "basic"
	KindPerfect = "perfect"
	KindCDF     = "cdf"
)

// Kinds lists the model kinds in display order.
var Kinds = []string{KindBasic, KindPerfect, KindCDF}

// MaxPhred is the highest Phred score representable in FASTQ (Phred+33).
const MaxPhred = 93

// Model is a sequencer error model.
type Model interface {
	// Name identifies the model for logs and run metadata.
	Name() string
	// ReadLength is the number of bases emitted per read.
	ReadLength() int
	// InsertSize is the fragment (outer) length distribution.
	InsertSize() InsertSize
	// IntroduceErrors emits one read from seq, which starts at the read's 5'
	// end and may run past ReadLength. At most ReadLength bases are emitted,
	// never more than seq can supply.
	IntroduceErrors(rng *rand.Rand, seq []byte, o types.Orientation) (Mutation, error)
}

// InsertSize describes a normal fragment length distribution.
type InsertSize struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"sd" yaml:"sd"`
}

// Sample draws a length rounded to the nearest integer.
func (s InsertSize) Sample(rng *rand.Rand) int {
	if s.StdDev <= 0 {
		return int(math.Round(s.Mean))
	}
	return int(math.Round(s.Mean + rng.NormFloat64()*s.StdDev))
}

// Mutation is the result of IntroduceErrors.
type Mutation struct {
	// Seq is the emitted read sequence.
	Seq []byte
	// Qual holds Phred scores, one per base of Seq.
	Qual []byte
	// Consumed is how many input bases produced Seq. Deletions make it
	// larger than len(Seq), insertions smaller.
	Consumed int
	// Errors counts the injected errors.
	Errors types.ErrorCounts
}

// Options configures New. Zero values keep each model's defaults.
type Options struct {
	ReadLength    int
	InsertMean    float64
	InsertSD      float64
	InsertionRate float64
	DeletionRate  float64
	// Profile names the artifact for the cdf model: a path, or a name
	// resolved against ProfileDirs.
	Profile     string
	ProfileDirs []string
}

// New builds a model by kind.
func New(kind string, opts Options) (Model, error) {
	switch kind {
	case KindBasic, "":
		return NewBasic(opts)
	case KindPerfect:
		return NewPerfect(opts)
	case KindCDF:
		return LoadCDF(opts.Profile, opts.ProfileDirs)
	default:
		return nil, &ModelLoadError{
			Name:   kind,
			Reason: fmt.Sprintf("unknown model kind (valid: %v)", Kinds),
		}
	}
}

var phredProb = func() [MaxPhred + 1]float64 {
	var t [MaxPhred + 1]float64
	for q := range t {
		t[q] = math.Pow(10, -float64(q)/10)
	}
	return t
}()

// ErrorProbability returns 10^(-q/10).
func ErrorProbability(q uint8) float64 {
	if int(q) > MaxPhred {
		q = MaxPhred
	}
	return phredProb[q]
}

// baseIndex maps A/C/G/T (either case) to 0..3 and anything else to -1.
func baseIndex(b byte) int {
	switch b {
	case 'A', 'a':
		return 0
	case 'C', 'c':
		return 1
	case 'G', 'g':
		return 2
	case 'T', 't':
		return 3
	default:
		return -1
	}
}

const acgt = "ACGT"

// siteSampler supplies the per-position distributions the error loop draws
// from.
type siteSampler interface {
	quality(rng *rand.Rand, pos int, o types.Orientation) uint8
	substitute(rng *rand.Rand, pos, base int, o types.Orientation) byte
	indelRates(pos int, o types.Orientation) (ins, del float64)
}

// introduce runs the shared error loop. Quality is drawn for every emitted
// base before deciding whether it is an error.
func introduce(rng *rand.Rand, s siteSampler, readLength int, seq []byte, o types.Orientation) (Mutation, error) {
	if !o.Valid() {
		return Mutation{}, fmt.Errorf("invalid orientation %d", int(o))
	}

	n := min(readLength, len(seq))
	m := Mutation{
		Seq:  make([]byte, 0, n),
		Qual: make([]byte, 0, n),
	}

	i := 0
	for len(m.Seq) < n {
		pos := len(m.Seq)
		ins, del := s.indelRates(pos, o)

		if ins > 0 && rng.Float64() < ins {
			m.Seq = append(m.Seq, acgt[rng.IntN(4)])
			m.Qual = append(m.Qual, s.quality(rng, pos, o))
			m.Errors.Insertions++
			continue
		}
		// Only delete while the input still has more bases than we need.
		if del > 0 && len(seq)-i > n-pos && rng.Float64() < del {
			i++
			m.Errors.Deletions++
			continue
		}

		b := seq[i]
		i++
		q := s.quality(rng, pos, o)
		if idx := baseIndex(b); idx >= 0 && rng.Float64() < ErrorProbability(q) {
			b = s.substitute(rng, pos, idx, o)
			m.Errors.Substitutions++
		}
		m.Seq = append(m.Seq, b)
		m.Qual = append(m.Qual, q)
	}
	m.Consumed = i
	return m, nil
}
