// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package window

import (
	"fmt"
	"testing"

	"github.com/wtsi-hgi/freebayes-core/allele"
)

type fakeAlignment struct {
	name      string
	bases     string
	quals     string
	refStart  int
	refLength int
	cigar     []allele.Op
	unmapped  bool
}

func (f fakeAlignment) Name() string          { return f.name }
func (f fakeAlignment) QueryBases() string    { return f.bases }
func (f fakeAlignment) Qualities() string     { return f.quals }
func (f fakeAlignment) RefStart() int         { return f.refStart }
func (f fakeAlignment) RefLength() int        { return f.refLength }
func (f fakeAlignment) Cigar() []allele.Op    { return f.cigar }
func (f fakeAlignment) IsReverseStrand() bool { return false }
func (f fakeAlignment) MapQuality() int       { return 60 }
func (f fakeAlignment) IsMapped() bool        { return !f.unmapped }

func qstr(q, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(q + 33)
	}
	return string(b)
}

// fakeSource feeds a fixed slice of alignments, one at a time.
type fakeSource struct {
	items []allele.Alignment
	i     int
}

func (s *fakeSource) Next() (allele.Alignment, bool, error) {
	if s.i >= len(s.items) {
		return nil, false, nil
	}
	a := s.items[s.i]
	s.i++
	return a, true, nil
}

func matchAlignment(refStart int) fakeAlignment {
	return fakeAlignment{
		bases: "AAA", quals: qstr(40, 3),
		refStart: refStart, refLength: 3,
		cigar: []allele.Op{{Kind: allele.Match, Length: 3}},
	}
}

func TestAlignmentWindowExtendPullsInOrder(t *testing.T) {
	src := &fakeSource{items: []allele.Alignment{matchAlignment(0), matchAlignment(1), matchAlignment(5)}}
	target := allele.Target{SeqName: "chr1", Left: 1, Right: 1000}
	w := New(src, target, "AAAAAAAAAA", allele.Config{BQL2: 10}, 100, func(allele.Alignment) string { return "s1" })

	w.Extend(1)
	if len(w.entries) != 1 {
		t.Fatal(fmt.Sprintf("after Extend(1): got %d entries, want 1", len(w.entries)))
	}

	w.Extend(2)
	if len(w.entries) != 2 {
		t.Fatal(fmt.Sprintf("after Extend(2): got %d entries, want 2", len(w.entries)))
	}

	w.Extend(6)
	if len(w.entries) != 3 {
		t.Fatal(fmt.Sprintf("after Extend(6): got %d entries, want 3", len(w.entries)))
	}
	if !w.Exhausted() {
		t.Error("window should be exhausted after pulling every fed alignment")
	}
}

func TestAlignmentWindowDropsOverMismatchAlignments(t *testing.T) {
	mismatched := fakeAlignment{
		bases: "TTT", quals: qstr(40, 3),
		refStart: 0, refLength: 3,
		cigar: []allele.Op{{Kind: allele.Match, Length: 3}},
	}
	src := &fakeSource{items: []allele.Alignment{mismatched}}
	target := allele.Target{SeqName: "chr1", Left: 1, Right: 1000}

	// rmu=0: any mismatch disqualifies the alignment from the window.
	w := New(src, target, "AAAAAAAAAA", allele.Config{BQL2: 10}, 0, func(allele.Alignment) string { return "s1" })
	w.Extend(1)
	if len(w.entries) != 0 {
		t.Error(fmt.Sprintf("rmu=0: got %d entries, want 0 (its 2 mismatches after the left trim should exceed rmu)", len(w.entries)))
	}
}

func TestAlignmentWindowSkipsUnmappedAlignments(t *testing.T) {
	unmapped := fakeAlignment{
		bases: "AAA", quals: qstr(40, 3),
		refStart: 0, refLength: 3,
		cigar:    []allele.Op{{Kind: allele.Match, Length: 3}},
		unmapped: true,
	}
	src := &fakeSource{items: []allele.Alignment{unmapped}}
	target := allele.Target{SeqName: "chr1", Left: 1, Right: 1000}

	// rmu is wide open; an unmapped read must still never be registered.
	w := New(src, target, "AAAAAAAAAA", allele.Config{BQL2: 10}, 1000000, func(allele.Alignment) string { return "s1" })
	w.Extend(1)
	if len(w.entries) != 0 {
		t.Error(fmt.Sprintf("got %d entries, want 0 (unmapped alignment must be dropped before registration)", len(w.entries)))
	}
}

func TestAlignmentWindowEvict(t *testing.T) {
	src := &fakeSource{items: []allele.Alignment{matchAlignment(0), matchAlignment(5)}}
	target := allele.Target{SeqName: "chr1", Left: 1, Right: 1000}
	w := New(src, target, "AAAAAAAAAA", allele.Config{BQL2: 10}, 100, func(allele.Alignment) string { return "s1" })

	w.Extend(6)
	if len(w.entries) != 2 {
		t.Fatal(fmt.Sprintf("got %d entries, want 2", len(w.entries)))
	}

	// First alignment spans ref 0..3 (0-based), i.e. 1-based positions 1-3.
	// pos=3 is still within its span (end=3), so it should survive.
	w.Evict(3)
	if len(w.entries) != 2 {
		t.Error(fmt.Sprintf("Evict(3): got %d entries, want 2 (first alignment still covers pos 3)", len(w.entries)))
	}

	// pos=4 is strictly past the first alignment's span.
	w.Evict(4)
	if len(w.entries) != 1 {
		t.Error(fmt.Sprintf("Evict(4): got %d entries, want 1", len(w.entries)))
	}
}

func TestAlignmentWindowAllelesAt(t *testing.T) {
	// refStart=1 (0-based) lines up with target.Left=1 so Register's left
	// trim is a no-op, keeping the arithmetic here a direct mirror of
	// allele.TestRegisterSNP.
	mismatched := fakeAlignment{
		bases: "TAA", quals: qstr(40, 3),
		refStart: 1, refLength: 3,
		cigar: []allele.Op{{Kind: allele.Match, Length: 3}},
	}
	src := &fakeSource{items: []allele.Alignment{mismatched}}
	target := allele.Target{SeqName: "chr1", Left: 1, Right: 1000}
	w := New(src, target, "AAAAAAAAAA", allele.Config{BQL2: 10}, 10, func(allele.Alignment) string { return "s1" })

	w.Extend(2)
	got := w.AllelesAt(2)
	if len(got) != 1 || got[0].Kind != allele.SNP {
		t.Error(fmt.Sprintf("AllelesAt(2): got %+v, want a single SNP", got))
	}
	if got := w.AllelesAt(3); len(got) != 0 {
		t.Error(fmt.Sprintf("AllelesAt(3): got %+v, want none", got))
	}
}
