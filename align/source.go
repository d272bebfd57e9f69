// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package align

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// Source is a forward-only, seekable reader over a coordinate-sorted BAM
// file with a .bai index alongside it. Callers drive it with Seek to
// establish a starting position, then Next to stream alignments from
// there; Next crosses silently onto later references when the current
// one is exhausted, mirroring the BAM file's own coordinate order.
type Source struct {
	f   *os.File
	r   *bam.Reader
	idx *bam.Index

	refs   []*sam.Reference
	refPos int // index into refs of the reference the current iterator covers
	it     *bam.Iterator
}

// Open opens path (expecting an accompanying path+".bai" index) for
// streaming, indexed access.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("align: opening bam file: %v", err)
	}
	r, err := bam.NewReader(f, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("align: reading bam header: %v", err)
	}
	ir, err := os.Open(path + ".bai")
	if err != nil {
		r.Close()
		f.Close()
		return nil, fmt.Errorf("align: opening bam index: %v", err)
	}
	idx, err := bam.ReadIndex(ir)
	ir.Close()
	if err != nil {
		r.Close()
		f.Close()
		return nil, fmt.Errorf("align: reading bam index: %v", err)
	}
	return &Source{f: f, r: r, idx: idx, refs: r.Header().Refs()}, nil
}

// Close releases the underlying file and reader.
func (s *Source) Close() error {
	if s.it != nil {
		s.it.Close()
	}
	return s.f.Close()
}

// HeaderText returns the textual SAM header, as it would appear at the top
// of a SAM-formatted dump of the file.
func (s *Source) HeaderText() string {
	var buf bytes.Buffer
	sw, err := sam.NewWriter(&buf, s.r.Header(), sam.FlagDecimal)
	if err != nil {
		return ""
	}
	_ = sw
	return buf.String()
}

// RefInfo names a reference sequence and its length, in header order.
type RefInfo struct {
	Name   string
	Length int
}

// ReferenceTable returns the reference sequences declared in the BAM
// header, in header order; a reference's position in the slice is its
// refID, the value Seek expects.
func (s *Source) ReferenceTable() []RefInfo {
	table := make([]RefInfo, len(s.refs))
	for i, r := range s.refs {
		table[i] = RefInfo{Name: r.Name(), Length: r.Len()}
	}
	return table
}

// ReadGroups returns the @RG read group IDs declared in the header.
func (s *Source) ReadGroups() []string {
	rgs := s.r.Header().RGs()
	ids := make([]string, len(rgs))
	for i, rg := range rgs {
		ids[i] = rg.Name()
	}
	return ids
}

// Seek positions the source so that the next call to Next returns the
// earliest alignment whose reference ID is refID and whose reference
// start (1-based) is at or after pos1based, or — if no such alignment
// exists — the first alignment of a later reference. It reports whether
// refID names a reference present in the BAM header.
func (s *Source) Seek(refID, pos1based int) (bool, error) {
	if refID < 0 || refID >= len(s.refs) {
		return false, nil
	}
	if s.it != nil {
		s.it.Close()
		s.it = nil
	}
	s.refPos = refID
	if err := s.openIteratorFrom(pos1based); err != nil {
		return false, err
	}
	return true, nil
}

// openIteratorFrom opens an iterator over s.refs[s.refPos] starting at
// the 1-based reference position pos (pos is only meaningful for the
// first reference touched after a Seek; subsequent references opened by
// Next's fallback always start at 0).
func (s *Source) openIteratorFrom(pos int) error {
	ref := s.refs[s.refPos]
	beg := pos - 1
	if beg < 0 {
		beg = 0
	}
	end := ref.Len()
	if beg > end {
		beg = end
	}
	chunks, err := s.idx.Chunks(ref, beg, end)
	if err != nil {
		return fmt.Errorf("align: indexing %s: %v", ref.Name(), err)
	}
	it, err := bam.NewIterator(s.r, chunks)
	if err != nil {
		return fmt.Errorf("align: iterating %s: %v", ref.Name(), err)
	}
	s.it = it
	return nil
}

// Next returns the next alignment in coordinate order, advancing onto
// later references as earlier ones are exhausted. It returns io.EOF once
// every reference has been drained.
func (s *Source) Next() (*Alignment, error) {
	for {
		if s.it == nil {
			if s.refPos >= len(s.refs) {
				return nil, io.EOF
			}
			if err := s.openIteratorFrom(0); err != nil {
				return nil, err
			}
		}
		if s.it.Next() {
			rec := s.it.Record()
			return newAlignment(rec), nil
		}
		if err := s.it.Error(); err != nil {
			return nil, fmt.Errorf("align: reading record: %v", err)
		}
		s.it.Close()
		s.it = nil
		s.refPos++
	}
}
