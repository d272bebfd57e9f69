// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package allele

import "math"

// maxQuality is the saturation ceiling for computed Phred scores, matching
// the usual samtools/htslib convention of capping at 93 (the highest value
// representable by a printable ASCII quality character, 126-33).
const maxQuality = 93

// Phred decodes a single printable-plus-33 quality character into its
// Phred score.
func Phred(c byte) int {
	return int(c) - 33
}

// errProb converts a Phred score into its corresponding error probability.
func errProb(q int) float64 {
	return math.Pow(10, -float64(q)/10)
}

// JointQuality returns the Phred score of the event "at least one of the
// given independent base observations is in error": the complement of the
// product of each base's probability of being correct.
//
//	p(no error) = ∏ (1 - p_i)
//	p(≥1 error) = 1 - p(no error)
//	jointQuality = round(-10·log10(p(≥1 error)))
//
// Saturates to maxQuality when the product rounds to exactly 1 (every
// base's error probability is negligibly small), and caps any larger
// computed score at maxQuality. More bases lower the score, never raise it.
func JointQuality(quals []int) int {
	pNoError := 1.0
	for _, q := range quals {
		pNoError *= 1 - errProb(q)
	}
	pAnyError := 1 - pNoError
	if pAnyError <= 0 {
		return maxQuality
	}
	q := int(math.Round(-10 * math.Log10(pAnyError)))
	if q > maxQuality {
		return maxQuality
	}
	return q
}

// maxInt returns the larger of a and b.
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// minInt returns the smaller of a and b.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
