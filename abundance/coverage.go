package abundance

import "math"

// ToCoverage returns the expected coverage of a genome:
// totalReads * abundance * readLength / genomeSize.
func ToCoverage(totalReads int, abundance float64, readLength, genomeSize int) float64 {
	if genomeSize <= 0 {
		return 0
	}
	nReads := float64(totalReads) * abundance
	return nReads * float64(readLength) / float64(genomeSize)
}

// PairsForCoverage returns the number of read pairs needed to reach a
// coverage: round(coverage * genomeSize / readLength / 2).
func PairsForCoverage(coverage float64, genomeSize, readLength int) int {
	if readLength <= 0 || coverage <= 0 {
		return 0
	}
	return int(math.Round(coverage * float64(genomeSize) / float64(readLength) / 2))
}

// PairsForAbundance returns the pairs a genome receives out of totalReads:
// round(totalReads * abundance / 2).
func PairsForAbundance(totalReads int, abundance float64) int {
	if totalReads <= 0 || abundance <= 0 {
		return 0
	}
	return int(math.Round(float64(totalReads) * abundance / 2))
}
