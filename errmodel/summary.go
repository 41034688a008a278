package errmodel

import (
	"math/rand/v2"

	"github.com/andrew-torda/matrix"

	"github.com/justapithecus/readsim/types"
)

// summarySamples is how many reads are drawn to estimate quality for models
// that cannot report it directly.
const summarySamples = 256

// meanQualityModel is implemented by models that know their expected
// quality per position.
type meanQualityModel interface {
	MeanQuality(pos int, o types.Orientation) float64
}

// Summary is the per-position mean quality of a model. Row 0 is the forward
// orientation, row 1 the reverse.
type Summary struct {
	Name       string
	ReadLength int
	Insert     InsertSize
	quality    *matrix.FMatrix2d
}

// Summarize computes mean quality for every position of both orientations.
func Summarize(m Model) (*Summary, error) {
	s := &Summary{
		Name:       m.Name(),
		ReadLength: m.ReadLength(),
		Insert:     m.InsertSize(),
		quality:    matrix.NewFMatrix2d(2, m.ReadLength()),
	}

	if mq, ok := m.(meanQualityModel); ok {
		for row, o := range []types.Orientation{types.Forward, types.Reverse} {
			for pos := range m.ReadLength() {
				s.quality.Mat[row][pos] = float32(mq.MeanQuality(pos, o))
			}
		}
		return s, nil
	}

	rng := rand.New(rand.NewPCG(0, 0))
	sample := make([]byte, m.ReadLength())
	for i := range sample {
		sample[i] = acgt[i%4]
	}
	for row, o := range []types.Orientation{types.Forward, types.Reverse} {
		sums := make([]float64, m.ReadLength())
		counts := make([]int, m.ReadLength())
		for range summarySamples {
			mut, err := m.IntroduceErrors(rng, sample, o)
			if err != nil {
				return nil, err
			}
			for pos, q := range mut.Qual {
				sums[pos] += float64(q)
				counts[pos]++
			}
		}
		for pos := range sums {
			if counts[pos] > 0 {
				s.quality.Mat[row][pos] = float32(sums[pos] / float64(counts[pos]))
			}
		}
	}
	return s, nil
}

// Quality returns the per-position mean quality for an orientation.
func (s *Summary) Quality(o types.Orientation) []float32 {
	if o == types.Reverse {
		return s.quality.Mat[1]
	}
	return s.quality.Mat[0]
}

// MeanQuality returns the mean over all positions of an orientation.
func (s *Summary) MeanQuality(o types.Orientation) float64 {
	row := s.Quality(o)
	if len(row) == 0 {
		return 0
	}
	var sum float64
	for _, q := range row {
		sum += float64(q)
	}
	return sum / float64(len(row))
}

// ExpectedSubstitutions estimates substitutions per read from the mean
// quality at each position.
func (s *Summary) ExpectedSubstitutions(o types.Orientation) float64 {
	var sum float64
	for _, q := range s.Quality(o) {
		sum += ErrorProbability(uint8(q + 0.5))
	}
	return sum
}
