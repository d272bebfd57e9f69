// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reference provides indexed random access to a reference FASTA
// file via its .fai index, auto-generating the index with "samtools
// faidx" when one isn't already present.
package reference

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

type faiEntry struct {
	length    int64
	offset    int64
	lineBase  int64
	lineWidth int64
}

// Provider is indexed, random-access reading of a FASTA reference.
type Provider struct {
	f    *os.File
	seqs map[string]faiEntry
	// names preserves index order, used by SequenceNameStartingWith to
	// give deterministic prefix-match results.
	names []string

	mu     sync.Mutex
	bufOff int64
	buf    []byte
}

// Open opens fastaPath for indexed access. If fastaPath+".fai" does not
// already exist, it is generated by invoking "samtools faidx" (or
// samtoolsPath, if non-empty) against the reference file first.
func Open(fastaPath, samtoolsPath string) (*Provider, error) {
	faiPath := fastaPath + ".fai"
	if _, err := os.Stat(faiPath); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reference: stat %s: %v", faiPath, err)
		}
		if err := generateIndex(fastaPath, samtoolsPath); err != nil {
			return nil, fmt.Errorf("reference: generating index for %s: %v", fastaPath, err)
		}
	}

	fi, err := os.Open(faiPath)
	if err != nil {
		return nil, fmt.Errorf("reference: opening index: %v", err)
	}
	defer fi.Close()

	seqs := make(map[string]faiEntry)
	var names []string
	sc := bufio.NewScanner(fi)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 5 {
			continue
		}
		ent, err := parseFaiFields(fields)
		if err != nil {
			return nil, fmt.Errorf("reference: parsing index line %q: %v", sc.Text(), err)
		}
		seqs[fields[0]] = ent
		names = append(names, fields[0])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reference: reading index: %v", err)
	}

	f, err := os.Open(fastaPath)
	if err != nil {
		return nil, fmt.Errorf("reference: opening fasta: %v", err)
	}
	return &Provider{f: f, seqs: seqs, names: names}, nil
}

func parseFaiFields(fields []string) (faiEntry, error) {
	var ent faiEntry
	var err error
	if ent.length, err = strconv.ParseInt(fields[1], 10, 64); err != nil {
		return ent, err
	}
	if ent.offset, err = strconv.ParseInt(fields[2], 10, 64); err != nil {
		return ent, err
	}
	if ent.lineBase, err = strconv.ParseInt(fields[3], 10, 64); err != nil {
		return ent, err
	}
	if ent.lineWidth, err = strconv.ParseInt(fields[4], 10, 64); err != nil {
		return ent, err
	}
	return ent, nil
}

// Close releases the underlying FASTA file handle.
func (p *Provider) Close() error {
	return p.f.Close()
}

// SequenceNameStartingWith returns the first indexed sequence name that
// equals prefix or begins with it, matching the convention that targets
// may reference a reference by the leading token of its FASTA header
// even when the recorded index key carries additional description text.
func (p *Provider) SequenceNameStartingWith(prefix string) (string, bool) {
	if _, ok := p.seqs[prefix]; ok {
		return prefix, true
	}
	for _, name := range p.names {
		if strings.HasPrefix(name, prefix) {
			return name, true
		}
	}
	return "", false
}

// SequenceLength returns the full length, in bases, of the named sequence.
func (p *Provider) SequenceLength(name string) (int, error) {
	ent, ok := p.seqs[name]
	if !ok {
		return 0, fmt.Errorf("reference: no such sequence %q", name)
	}
	return int(ent.length), nil
}

// Sequence returns the full named sequence.
func (p *Provider) Sequence(name string) (string, error) {
	n, err := p.SequenceLength(name)
	if err != nil {
		return "", err
	}
	return p.Subsequence(name, 0, n)
}

// Subsequence returns the length bases of the named sequence starting at
// the 0-based offset start. start+length must not exceed the sequence's
// length.
func (p *Provider) Subsequence(name string, start, length int) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ent, ok := p.seqs[name]
	if !ok {
		return "", fmt.Errorf("reference: no such sequence %q", name)
	}
	if length < 0 || int64(start+length) > ent.length {
		return "", fmt.Errorf("reference: subsequence [%d,%d) out of bounds for %q (length %d)", start, start+length, name, ent.length)
	}
	if length == 0 {
		return "", nil
	}

	charsPerLine := ent.lineWidth - ent.lineBase
	off := ent.offset + int64(start) + charsPerLine*(int64(start)/ent.lineBase)

	firstLineBases := ent.lineBase - int64(start)%ent.lineBase
	newlines := int64(0)
	if int64(length) > firstLineBases {
		newlines = 1 + (int64(length)-firstLineBases)/ent.lineBase
	}
	toRead := int64(length) + newlines*charsPerLine

	raw, err := p.readAt(off, int(toRead))
	if err != nil {
		return "", err
	}

	out := make([]byte, 0, length)
	linePos := (off - ent.offset) % ent.lineWidth
	for _, b := range raw {
		if linePos < ent.lineBase {
			out = append(out, b)
		}
		linePos++
		if linePos == ent.lineWidth {
			linePos = 0
		}
	}
	return string(out), nil
}

// readAt reads n bytes at absolute file offset off, refreshing the small
// read-ahead buffer when the request falls outside it.
func (p *Provider) readAt(off int64, n int) ([]byte, error) {
	end := off + int64(n)
	if off < p.bufOff || end > p.bufOff+int64(len(p.buf)) {
		bufSize := 8192
		if bufSize < n {
			bufSize = n
		}
		if cap(p.buf) < bufSize {
			p.buf = make([]byte, bufSize)
		} else {
			p.buf = p.buf[:bufSize]
		}
		read, err := p.f.ReadAt(p.buf, off)
		if read < n && (err == nil || err == io.EOF) {
			return nil, fmt.Errorf("reference: unexpected end of file at offset %d (bad index?)", off)
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		p.bufOff = off
		p.buf = p.buf[:read]
	}
	return p.buf[off-p.bufOff : end-p.bufOff], nil
}
