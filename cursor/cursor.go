// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cursor drives the (target, position) iteration that walks
// every reference position inside a TargetSet, keeping the reference
// substring, the alignment source's read head and the sliding alignment
// window in lock-step.
package cursor

import (
	"fmt"
	"io"

	"github.com/wtsi-hgi/freebayes-core/align"
	"github.com/wtsi-hgi/freebayes-core/allele"
	"github.com/wtsi-hgi/freebayes-core/reference"
	"github.com/wtsi-hgi/freebayes-core/target"
	"github.com/wtsi-hgi/freebayes-core/window"
)

// sourceAdapter adapts *align.Source's io.EOF-terminated Next to the
// window.Source contract window.AlignmentWindow pulls from.
type sourceAdapter struct {
	src *align.Source
}

func (a sourceAdapter) Next() (allele.Alignment, bool, error) {
	rec, err := a.src.Next()
	if err == io.EOF {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// TargetCursor walks every reference position across an ordered
// target.Set, maintaining the current reference substring and alignment
// window as it goes.
type TargetCursor struct {
	targets []target.Target
	ti      int // index into targets of the current target

	ref    *reference.Provider
	src    *align.Source
	refIDs map[string]int

	sampleOf func(allele.Alignment) string
	cfg      allele.Config
	rmu      int

	currentPosition int
	currentSubseq   string
	win             *window.AlignmentWindow
}

// New builds a TargetCursor over targets (which must be non-empty, in
// the order they should be visited), backed by ref and src, classifying
// alignments with cfg and dropping registrations whose mismatch count
// exceeds rmu. sampleOf derives the reporting sample id for an
// alignment.
func New(targets []target.Target, ref *reference.Provider, src *align.Source, cfg allele.Config, rmu int, sampleOf func(allele.Alignment) string) (*TargetCursor, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("cursor: empty target set")
	}
	refIDs := make(map[string]int)
	for i, r := range src.ReferenceTable() {
		refIDs[r.Name] = i
	}
	c := &TargetCursor{
		targets:  targets,
		ref:      ref,
		src:      src,
		refIDs:   refIDs,
		cfg:      cfg,
		rmu:      rmu,
		sampleOf: sampleOf,
	}
	if err := c.initialize(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *TargetCursor) initialize() error {
	c.ti = 0
	return c.enterTarget()
}

// enterTarget loads the reference substring for the current target,
// seeks the alignment source to its start, and establishes a fresh
// window.
func (c *TargetCursor) enterTarget() error {
	t := c.targets[c.ti]
	refID, ok := c.refIDs[t.SeqName]
	if !ok {
		return fmt.Errorf("cursor: target references unknown sequence %q", t.SeqName)
	}

	subseq, err := c.ref.Subsequence(t.SeqName, t.Left-1, t.Right-t.Left)
	if err != nil {
		return fmt.Errorf("cursor: loading reference substring for %q: %v", t.SeqName, err)
	}

	found, err := c.src.Seek(refID, t.Left)
	if err != nil {
		return fmt.Errorf("cursor: seeking to %s:%d: %v", t.SeqName, t.Left, err)
	}
	if !found {
		return fmt.Errorf("cursor: no alignment source data at or after %s:%d", t.SeqName, t.Left)
	}

	c.currentPosition = t.Left
	c.currentSubseq = subseq
	c.win = window.New(sourceAdapter{c.src}, t, subseq, c.cfg, c.rmu, c.sampleOf)
	c.win.Extend(c.currentPosition)
	return nil
}

// switchTarget advances to the next target in the set, returning false
// once the last target has been exhausted.
func (c *TargetCursor) switchTarget() (bool, error) {
	if c.ti >= len(c.targets)-1 {
		return false, nil
	}
	c.ti++
	if err := c.enterTarget(); err != nil {
		return false, err
	}
	return true, nil
}

// Advance moves the cursor forward by one reference position, switching
// targets and reloading state as needed. It returns false once every
// target has been exhausted.
func (c *TargetCursor) Advance() (bool, error) {
	c.currentPosition++
	if c.currentPosition > c.targets[c.ti].Right-1 {
		ok, err := c.switchTarget()
		if err != nil || !ok {
			return false, err
		}
		return true, nil
	}
	c.win.Extend(c.currentPosition)
	c.win.Evict(c.currentPosition)
	return true, nil
}

// AllelesAt returns the alleles the window currently attributes to pos.
func (c *TargetCursor) AllelesAt(pos int) []allele.Allele {
	return c.win.AllelesAt(pos)
}

// CurrentTarget returns the target the cursor currently occupies.
func (c *TargetCursor) CurrentTarget() target.Target {
	return c.targets[c.ti]
}

// CurrentPosition returns the cursor's current 1-based reference
// position.
func (c *TargetCursor) CurrentPosition() int {
	return c.currentPosition
}

// GetNextAlleles advances the cursor and reports the alleles observed
// at its new position. It returns false once the cursor is exhausted.
func (c *TargetCursor) GetNextAlleles() ([]allele.Allele, bool, error) {
	ok, err := c.Advance()
	if err != nil || !ok {
		return nil, false, err
	}
	return c.AllelesAt(c.currentPosition), true, nil
}
