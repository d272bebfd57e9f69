// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reference

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// newTestProvider writes a small two-sequence FASTA and its .fai index to
// a temp dir and opens it. The .fai is written alongside the FASTA so
// Open never has to shell out to samtools.
func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	dir := t.TempDir()
	fastaPath := filepath.Join(dir, "ref.fasta")

	fasta := ">chr1\nACGT\nACGT\nAC\n>chr2\nTTTT\n"
	if err := os.WriteFile(fastaPath, []byte(fasta), 0o644); err != nil {
		t.Fatal(err)
	}
	fai := "chr1\t10\t6\t4\t5\nchr2\t4\t25\t4\t5\n"
	if err := os.WriteFile(fastaPath+".fai", []byte(fai), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Open(fastaPath, "")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestProviderSequence(t *testing.T) {
	p := newTestProvider(t)
	got, err := p.Sequence("chr1")
	if err != nil {
		t.Fatal(err)
	}
	if got != "ACGTACGTAC" {
		t.Error(fmt.Sprintf("Sequence(chr1) = %q, want %q", got, "ACGTACGTAC"))
	}

	got, err = p.Sequence("chr2")
	if err != nil {
		t.Fatal(err)
	}
	if got != "TTTT" {
		t.Error(fmt.Sprintf("Sequence(chr2) = %q, want %q", got, "TTTT"))
	}
}

func TestProviderSubsequenceWithinOneLine(t *testing.T) {
	p := newTestProvider(t)
	got, err := p.Subsequence("chr1", 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if got != "ACGT" {
		t.Error(fmt.Sprintf("Subsequence(4,4) = %q, want %q", got, "ACGT"))
	}
}

func TestProviderSubsequenceCrossingLineBoundary(t *testing.T) {
	p := newTestProvider(t)
	got, err := p.Subsequence("chr1", 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	if got != "GTAC" {
		t.Error(fmt.Sprintf("Subsequence(2,4) = %q, want %q", got, "GTAC"))
	}
}

func TestProviderSubsequenceLastLine(t *testing.T) {
	p := newTestProvider(t)
	got, err := p.Subsequence("chr1", 8, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != "AC" {
		t.Error(fmt.Sprintf("Subsequence(8,2) = %q, want %q", got, "AC"))
	}
}

func TestProviderSubsequenceOutOfBounds(t *testing.T) {
	p := newTestProvider(t)
	if _, err := p.Subsequence("chr1", 8, 10); err == nil {
		t.Error("expected an out-of-bounds error")
	}
}

func TestProviderSequenceLength(t *testing.T) {
	p := newTestProvider(t)
	n, err := p.SequenceLength("chr1")
	if err != nil {
		t.Fatal(err)
	}
	if n != 10 {
		t.Error(fmt.Sprintf("SequenceLength(chr1) = %d, want 10", n))
	}
	if _, err := p.SequenceLength("nope"); err == nil {
		t.Error("expected an error for an unknown sequence")
	}
}

func TestProviderSequenceNameStartingWith(t *testing.T) {
	p := newTestProvider(t)
	if name, ok := p.SequenceNameStartingWith("chr2"); !ok || name != "chr2" {
		t.Error(fmt.Sprintf("exact match: got (%q, %v), want (chr2, true)", name, ok))
	}
	if name, ok := p.SequenceNameStartingWith("chr"); !ok || name != "chr1" {
		t.Error(fmt.Sprintf("prefix match: got (%q, %v), want (chr1, true) (first by index order)", name, ok))
	}
	if _, ok := p.SequenceNameStartingWith("nope"); ok {
		t.Error("expected no match for an unrelated prefix")
	}
}
