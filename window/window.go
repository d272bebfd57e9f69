// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package window maintains the sliding buffer of registered alignments
// that a TargetCursor extends at the leading edge and evicts at the
// trailing edge as it advances across a target.
package window

import (
	"github.com/wtsi-hgi/freebayes-core/allele"
)

// Source is the minimal alignment feed AlignmentWindow needs: a single,
// one-element look-ahead over align.Source.
type Source interface {
	Next() (allele.Alignment, bool, error)
}

// AlignmentWindow buffers RegisteredAlignments whose reference span
// overlaps the cursor's current position. Entries are kept oldest-first;
// new registrations are appended as the cursor's look-ahead alignment
// qualifies, and entries whose span has ended are dropped from the
// front as the cursor advances past them.
type AlignmentWindow struct {
	entries []allele.RegisteredAlignment

	source Source
	lookAhead    allele.Alignment
	lookAheadOK  bool
	exhausted    bool

	target  allele.Target
	refSeq  string
	cfg     allele.Config
	rmu     int
	sampleOf func(allele.Alignment) string
}

// New returns an empty window. target and refSeq set the registration
// context for alignments extended into the window; cfg and rmu are the
// classifier configuration and mismatch ceiling; sampleOf derives the
// sample id attributed to each alignment.
func New(source Source, target allele.Target, refSeq string, cfg allele.Config, rmu int, sampleOf func(allele.Alignment) string) *AlignmentWindow {
	w := &AlignmentWindow{source: source, target: target, refSeq: refSeq, cfg: cfg, rmu: rmu, sampleOf: sampleOf}
	w.pull()
	return w
}

// Reset clears the window's buffered entries and rebinds it to a new
// target and reference substring. The look-ahead alignment is left
// untouched — callers are expected to have already re-seeked the
// underlying source. (TargetCursor does not call Reset: it builds a new
// window with New on every target switch.)
func (w *AlignmentWindow) Reset(target allele.Target, refSeq string) {
	w.entries = w.entries[:0]
	w.target = target
	w.refSeq = refSeq
}

// pull advances the one-alignment look-ahead from source.
func (w *AlignmentWindow) pull() {
	a, ok, err := w.source.Next()
	if err != nil || !ok {
		w.exhausted = true
		w.lookAheadOK = false
		return
	}
	w.lookAhead = a
	w.lookAheadOK = true
}

// Extend pulls every alignment whose 1-based reference start is at or
// before pos into the window. Unmapped alignments are discarded
// outright; mapped alignments are registered against the current
// target and reference substring, and the registration is admitted
// only when its mismatch count does not exceed rmu.
func (w *AlignmentWindow) Extend(pos int) {
	for w.lookAheadOK && w.lookAhead.RefStart()+1 <= pos {
		a := w.lookAhead
		w.pull()

		if !a.IsMapped() {
			continue
		}

		ra := allele.Register(a, w.target, w.refSeq, w.cfg, w.sampleOf(a))
		if ra.Mismatches <= w.rmu {
			w.entries = append(w.entries, ra)
		}
	}
}

// Evict drops entries whose reference span ends strictly before pos,
// scanning from the oldest entry and stopping at the first one that still
// covers pos; a newer entry that has already ended stays buffered until
// every entry older than it has been dropped.
func (w *AlignmentWindow) Evict(pos int) {
	i := 0
	for i < len(w.entries) {
		ra := w.entries[i]
		end := ra.Alignment.RefStart() + ra.Alignment.RefLength()
		if pos > end {
			i++
			continue
		}
		break
	}
	w.entries = w.entries[i:]
}

// AllelesAt returns every Allele in the window positioned at pos, in
// window traversal order then allele order within each registration.
func (w *AlignmentWindow) AllelesAt(pos int) []allele.Allele {
	var out []allele.Allele
	for _, ra := range w.entries {
		for _, a := range ra.Alleles {
			if a.Position == pos {
				out = append(out, a)
			}
		}
	}
	return out
}

// Exhausted reports whether the underlying source has no further
// alignments to pull.
func (w *AlignmentWindow) Exhausted() bool {
	return w.exhausted
}

// HasLookAhead reports whether a pulled-but-not-yet-registered
// alignment is waiting in the look-ahead slot.
func (w *AlignmentWindow) HasLookAhead() bool {
	return w.lookAheadOK
}
