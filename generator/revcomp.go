package generator

var complement [256]byte

func init() {
	pairs := []string{"AT", "CG", "RY", "SS", "WW", "KM", "BV", "DH", "NN"}
	for _, p := range pairs {
		a, b := p[0], p[1]
		complement[a], complement[b] = b, a
		complement[a+'a'-'A'], complement[b+'a'-'A'] = b+'a'-'A', a+'a'-'A'
	}
}

// RevComp returns the reverse complement of seq. IUPAC ambiguity codes are
// complemented; unknown bytes become 'N'. Case is preserved.
func RevComp(seq []byte) []byte {
	n := len(seq)
	out := make([]byte, n)
	for i := range n {
		c := complement[seq[n-1-i]]
		if c == 0 {
			c = 'N'
		}
		out[i] = c
	}
	return out
}
