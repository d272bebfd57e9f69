// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package allele classifies the alignment operations of a single read,
// walked against a loaded reference substring, into typed allele
// observations: SNPs, insertions, deletions and (optionally) reference
// matches.
package allele

// Kind distinguishes the type of variation an Allele records relative to
// the reference.
type Kind int

const (
	// Reference records an unchanged base; only emitted when the
	// classifier is configured to record match observations.
	Reference Kind = iota
	SNP
	Insertion
	Deletion
)

func (k Kind) String() string {
	switch k {
	case Reference:
		return "ref"
	case SNP:
		return "snp"
	case Insertion:
		return "ins"
	case Deletion:
		return "del"
	default:
		return "unknown"
	}
}

// OpKind enumerates the CIGAR operation kinds the classifier understands.
type OpKind int

const (
	Match OpKind = iota
	OpInsertion
	OpDeletion
	SoftClip
	Skip
	HardClip
	Pad
)

// Op is a single CIGAR operation: a kind and a reference/query-consuming
// length.
type Op struct {
	Kind   OpKind
	Length int
}

// Allele is a single observed candidate variant at a reference position,
// contributed by one alignment.
type Allele struct {
	Kind Kind

	SeqName  string
	Position int // 1-based start on the reference
	Length   int

	RefBases string
	AltBases string

	SampleID      string
	ForwardStrand bool

	BaseQuality int
	MapQuality  int
}

// RegisteredAlignment pairs an alignment with the allele observations
// extracted against the current target's reference substring.
type RegisteredAlignment struct {
	Alignment  Alignment
	Alleles    []Allele
	Mismatches int
}

// Alignment is the minimal view of a mapped read the classifier needs.
// align.Alignment satisfies this interface; it is expressed independently
// here so that allele has no import-time dependency on the concrete BAM
// reader.
type Alignment interface {
	Name() string
	QueryBases() string
	// Qualities returns per-base Phred scores encoded as printable
	// characters (ASCII value = Phred + 33), matching the convention of
	// the on-disk SAM QUAL field.
	Qualities() string
	RefStart() int // 0-based, inclusive
	RefLength() int
	Cigar() []Op
	IsReverseStrand() bool
	MapQuality() int
	IsMapped() bool
}

// Target is the minimal view of a target interval the classifier needs.
type Target struct {
	SeqName string
	Left    int // 1-based, inclusive
	Right   int // 1-based, exclusive
	Desc    string
}
