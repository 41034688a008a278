// Package types defines core domain types for readsim.
//
//nolint:revive // types is a common Go package naming convention
package types

import "fmt"

// Orientation identifies which mate of a pair a read is.
type Orientation int

const (
	// Forward is the first mate, read from the 5' end of the fragment.
	Forward Orientation = 1
	// Reverse is the second mate, read from the 5' end of the fragment's
	// reverse complement.
	Reverse Orientation = 2
)

// String returns "forward" or "reverse".
func (o Orientation) String() string {
	switch o {
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	default:
		return fmt.Sprintf("orientation(%d)", int(o))
	}
}

// Valid reports whether o is Forward or Reverse.
func (o Orientation) Valid() bool {
	return o == Forward || o == Reverse
}

// Strand is the reference strand a fragment or read was taken from.
type Strand byte

const (
	// Plus is the strand as written in the reference.
	Plus Strand = '+'
	// Minus is the reverse-complement strand.
	Minus Strand = '-'
)

// String returns "+" or "-".
func (s Strand) String() string {
	return string(rune(s))
}

// Flip returns the opposite strand.
func (s Strand) Flip() Strand {
	if s == Plus {
		return Minus
	}
	return Plus
}

// MarshalText encodes the strand as "+" or "-".
func (s Strand) MarshalText() ([]byte, error) {
	if s != Plus && s != Minus {
		return nil, fmt.Errorf("invalid strand %q", byte(s))
	}
	return []byte{byte(s)}, nil
}

// UnmarshalText decodes "+" or "-".
func (s *Strand) UnmarshalText(b []byte) error {
	if len(b) != 1 || (b[0] != byte(Plus) && b[0] != byte(Minus)) {
		return fmt.Errorf("invalid strand %q", string(b))
	}
	*s = Strand(b[0])
	return nil
}

// Reference is a loaded genome sequence.
// Immutable once loaded; the generator only borrows it.
type Reference struct {
	ID          string
	Description string
	Seq         []byte
}

// Len returns the sequence length.
func (r *Reference) Len() int { return len(r.Seq) }

// Origin is the ground-truth location of a read.
// Start and End are 0-based, half-open, on the plus strand.
type Origin struct {
	RefID       string      `json:"ref_id"`
	Start       int         `json:"start"`
	End         int         `json:"end"`
	Strand      Strand      `json:"strand"`
	Orientation Orientation `json:"orientation"`
}

// ErrorCounts tallies the errors injected into a read.
type ErrorCounts struct {
	Substitutions int `json:"substitutions"`
	Insertions    int `json:"insertions"`
	Deletions     int `json:"deletions"`
}

// Total returns the number of injected errors.
func (c ErrorCounts) Total() int {
	return c.Substitutions + c.Insertions + c.Deletions
}

// Add returns the element-wise sum.
func (c ErrorCounts) Add(o ErrorCounts) ErrorCounts {
	return ErrorCounts{
		Substitutions: c.Substitutions + o.Substitutions,
		Insertions:    c.Insertions + o.Insertions,
		Deletions:     c.Deletions + o.Deletions,
	}
}

// Read is a single simulated read.
// Qual holds raw Phred scores (not ASCII-offset); len(Qual) == len(Seq).
type Read struct {
	ID     string
	Seq    []byte
	Qual   []byte
	Origin Origin
	Errors ErrorCounts
}

// Fragment is the stretch of reference a pair was cut from.
type Fragment struct {
	Start  int    `json:"start"`
	Length int    `json:"length"`
	Strand Strand `json:"strand"`
}

// End returns the exclusive end coordinate.
func (f Fragment) End() int { return f.Start + f.Length }

// ReadPair is one iteration of the generator.
type ReadPair struct {
	// Index is the 0-based pair index within one reference.
	Index    int
	Forward  Read
	Reverse  Read
	Fragment Fragment
}

// RefID returns the reference the pair was drawn from.
func (p *ReadPair) RefID() string { return p.Forward.Origin.RefID }

// Bases returns the number of emitted bases across both mates.
func (p *ReadPair) Bases() int { return len(p.Forward.Seq) + len(p.Reverse.Seq) }
