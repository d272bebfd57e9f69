// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package align provides a forward-only, seekable reader over a
// coordinate-sorted indexed BAM file, and the thin Alignment adapter the
// allele classifier operates on.
package align

import (
	"fmt"

	"github.com/biogo/hts/sam"

	"github.com/wtsi-hgi/freebayes-core/allele"
)

// Alignment adapts a *sam.Record to the allele.Alignment interface.
type Alignment struct {
	rec *sam.Record

	// qualities is the record's QUAL field re-encoded to printable-plus-33
	// form, matching the on-disk SAM convention and the spec's documented
	// Phred-decode contract (allele.Phred).
	qualities string
	cigar     []allele.Op
}

// newAlignment builds an Alignment from a decoded *sam.Record.
func newAlignment(rec *sam.Record) *Alignment {
	qual := make([]byte, len(rec.Qual))
	for i, q := range rec.Qual {
		qual[i] = q + 33
	}
	return &Alignment{
		rec:       rec,
		qualities: string(qual),
		cigar:     convertCigar(rec.Cigar),
	}
}

func convertCigar(cigar sam.Cigar) []allele.Op {
	ops := make([]allele.Op, 0, len(cigar))
	for _, co := range cigar {
		kind, ok := opKind(co.Type())
		if !ok {
			continue
		}
		ops = append(ops, allele.Op{Kind: kind, Length: co.Len()})
	}
	return ops
}

func opKind(t sam.CigarOpType) (allele.OpKind, bool) {
	switch t {
	case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
		return allele.Match, true
	case sam.CigarInsertion:
		return allele.OpInsertion, true
	case sam.CigarDeletion:
		return allele.OpDeletion, true
	case sam.CigarSoftClipped:
		return allele.SoftClip, true
	case sam.CigarSkipped:
		return allele.Skip, true
	case sam.CigarHardClipped:
		return allele.HardClip, true
	case sam.CigarPadded:
		return allele.Pad, true
	default:
		return 0, false
	}
}

func (a *Alignment) Name() string     { return a.rec.Name }
func (a *Alignment) QueryBases() string {
	return string(a.rec.Seq.Expand())
}
func (a *Alignment) Qualities() string    { return a.qualities }
func (a *Alignment) RefStart() int        { return a.rec.Start() }
func (a *Alignment) RefLength() int       { return a.rec.End() - a.rec.Start() }
func (a *Alignment) Cigar() []allele.Op   { return a.cigar }
func (a *Alignment) IsReverseStrand() bool { return a.rec.Flags&sam.Reverse != 0 }
func (a *Alignment) MapQuality() int      { return int(a.rec.MapQ) }
func (a *Alignment) IsMapped() bool       { return a.rec.Flags&sam.Unmapped == 0 }
func (a *Alignment) RefID() int {
	if a.rec.Ref == nil {
		return -1
	}
	return a.rec.Ref.ID()
}

// String gives a compact human-readable summary, used in debug logging.
func (a *Alignment) String() string {
	return fmt.Sprintf("%s@%d+%d", a.rec.Name, a.rec.Start(), a.rec.End()-a.rec.Start())
}
