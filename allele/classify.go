// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package allele

// Config carries the classifier's threshold and policy knobs. These are a
// subset of the caller's full configuration surface — the fields the
// registration pipeline itself reads.
type Config struct {
	// BQL2 is the minimum base quality an allele observation must meet
	// to be emitted.
	BQL2 int

	// UseRefAllele, when set, records a Reference allele on every Match
	// iteration whose read base equals the reference base and whose base
	// quality meets BQL2.
	UseRefAllele bool
	// ForceRefAllele, when set, emits Reference alleles regardless of
	// BQL2 gating.
	ForceRefAllele bool

	// DeletionQualMin switches the deletion base-quality formula from
	// max(qL, qR) (the default, matching the original implementation)
	// to min(qL, qR), which its own source comments note may be more
	// semantically correct.
	DeletionQualMin bool
}

// Register walks a's alignment operations against refSeq (the reference
// substring for the current target, whose base 0 corresponds to
// target.Left) and returns the typed allele observations it contributes.
//
// refSeq, a.QueryBases() and a.Qualities() are indexed by the same
// invariant the original implementation relies on: at the start of each
// operation, sp - target.Left == ssp, and rp addresses the next unconsumed
// read base.
func Register(a Alignment, target Target, refSeq string, cfg Config, sampleID string) RegisteredAlignment {
	ra := RegisteredAlignment{Alignment: a}

	bases := a.QueryBases()
	quals := a.Qualities()
	cigar := a.Cigar()

	rp := 0
	ssp := a.RefStart() - target.Left
	sp := a.RefStart() + 1

	start, end := trimToTarget(cigar, target, a, &sp, &ssp, &rp)
	if start >= end {
		return ra
	}

	forward := !a.IsReverseStrand()
	mapQ := a.MapQuality()

	for _, op := range cigar[start:end] {
		switch op.Kind {
		case SoftClip:
			rp += op.Length

		case Match:
			for i := 0; i < op.Length && sp < target.Right; i++ {
				b, ok1 := byteAt(bases, rp)
				qc, ok2 := byteAt(quals, rp)
				rbase, ok3 := byteAt(refSeq, ssp)
				if !ok1 || !ok2 || !ok3 {
					sp++
					ssp++
					rp++
					continue
				}
				qb := Phred(qc)
				switch {
				case b != rbase && qb >= cfg.BQL2:
					ra.Mismatches++
					ra.Alleles = append(ra.Alleles, Allele{
						Kind:          SNP,
						SeqName:       target.SeqName,
						Position:      sp,
						Length:        1,
						RefBases:      string(rbase),
						AltBases:      string(b),
						SampleID:      sampleID,
						ForwardStrand: forward,
						BaseQuality:   qb,
						MapQuality:    mapQ,
					})
				case b == rbase && (cfg.ForceRefAllele || (cfg.UseRefAllele && qb >= cfg.BQL2)):
					ra.Alleles = append(ra.Alleles, Allele{
						Kind:          Reference,
						SeqName:       target.SeqName,
						Position:      sp,
						Length:        1,
						RefBases:      string(rbase),
						AltBases:      string(b),
						SampleID:      sampleID,
						ForwardStrand: forward,
						BaseQuality:   qb,
						MapQuality:    mapQ,
					})
				}
				sp++
				ssp++
				rp++
			}

		case OpDeletion:
			qL, okL := byteAt(quals, rp)
			qR, okR := byteAt(quals, rp+1)
			if okL && okR {
				q := maxInt(Phred(qL), Phred(qR))
				if cfg.DeletionQualMin {
					q = minInt(Phred(qL), Phred(qR))
				}
				if q >= cfg.BQL2 {
					refBases, ok := substrAt(refSeq, ssp, op.Length)
					if ok {
						ra.Alleles = append(ra.Alleles, Allele{
							Kind:          Deletion,
							SeqName:       target.SeqName,
							Position:      sp,
							Length:        op.Length,
							RefBases:      refBases,
							AltBases:      "",
							SampleID:      sampleID,
							ForwardStrand: forward,
							BaseQuality:   q,
							MapQuality:    mapQ,
						})
					}
				}
			}
			sp += op.Length
			ssp += op.Length

		case OpInsertion:
			altBases, ok := substrAt(bases, rp, op.Length)
			qs := make([]int, 0, op.Length)
			for i := 0; i < op.Length; i++ {
				if qc, okq := byteAt(quals, rp+i); okq {
					qs = append(qs, Phred(qc))
				}
			}
			rp += op.Length
			if ok && len(qs) == op.Length {
				q := JointQuality(qs)
				if q >= cfg.BQL2 {
					ra.Alleles = append(ra.Alleles, Allele{
						Kind:          Insertion,
						SeqName:       target.SeqName,
						Position:      sp,
						Length:        op.Length,
						RefBases:      "",
						AltBases:      altBases,
						SampleID:      sampleID,
						ForwardStrand: forward,
						BaseQuality:   q,
						MapQuality:    mapQ,
					})
				}
			}

		case Skip:
			sp += op.Length
			ssp += op.Length

		case HardClip, Pad:
			// consume nothing
		}
	}

	return ra
}

// trimToTarget applies the left- and right-trim walks described in the
// original implementation and returns the [start, end) slice of cigar to
// iterate. It mutates sp, ssp and rp in place to reflect the left trim.
//
// The left-trim walk is intentionally naive: it advances whole cigar
// operations, accumulating every operation's length regardless of whether
// that operation consumes a read base, until the accumulated length would
// reach rp. This reproduces the original's behaviour exactly, including
// its quirk of dropping the residual bases of a partially-consumed
// operation at the trim boundary — see DESIGN.md.
func trimToTarget(cigar []Op, target Target, a Alignment, sp, ssp, rp *int) (start, end int) {
	end = len(cigar)

	leftGap := target.Left - a.RefStart()
	if leftGap > 0 {
		*sp += leftGap
		*ssp += leftGap
		*rp += leftGap
		cigarPos := 0
		for start < len(cigar) && cigarPos+cigar[start].Length < *rp {
			cigarPos += cigar[start].Length
			start++
		}
	}

	rightGap := (a.RefStart() + a.RefLength()) - (target.Right - 1)
	if rightGap > 0 {
		endPos := a.RefStart() + a.RefLength()
		for end > start && endPos-cigar[end-1].Length > target.Right {
			endPos -= cigar[end-1].Length
			end--
		}
	}

	return start, end
}

func byteAt(s string, i int) (byte, bool) {
	if i < 0 || i >= len(s) {
		return 0, false
	}
	return s[i], true
}

func substrAt(s string, start, length int) (string, bool) {
	if start < 0 || length < 0 || start+length > len(s) {
		return "", false
	}
	return s[start : start+length], true
}
