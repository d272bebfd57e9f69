// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/wtsi-hgi/freebayes-core/allele"
)

// Locus names a single reference position being reported.
type Locus struct {
	SeqName  string
	Position int
}

// VariantWriter emits a VCFv3.3-style site table: a handful of header
// lines declaring format metadata, a column header, and one row per
// call to WriteSite aggregating that position's allele vector into
// INFO/FORMAT bookkeeping. It does not perform genotype calling; GT is
// always reported as unknown ("."), matching the explicit non-goal.
type VariantWriter struct {
	f         io.WriteCloser
	w         *bufio.Writer
	sampleIDs []string
}

// OpenVariants creates path, writes its header block, and returns a
// VariantWriter ready for WriteSite calls. source and reference name the
// upstream alignment and reference files in the header's free-text
// fields.
func OpenVariants(path, source, reference string, sampleIDs []string, now time.Time) (*VariantWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("report: creating %s: %v", path, err)
	}
	vw := &VariantWriter{f: f, w: bufio.NewWriter(f), sampleIDs: sampleIDs}
	if err := vw.writeHeader(source, reference, now); err != nil {
		f.Close()
		return nil, err
	}
	return vw, nil
}

func (vw *VariantWriter) writeHeader(source, reference string, now time.Time) error {
	lines := []string{
		"##format=VCFv3.3",
		"##fileDate=" + now.Format("20060102 15:04:05"),
		"##source=" + source,
		"##reference=" + reference,
		"##phasing=none",
		"##notes=genotype calling is out of scope; GT is always \".\"",
		"##INFO=<ID=NS,Number=1,Type=Integer,Description=\"Number of samples with data\">",
		"##INFO=<ID=ND,Number=1,Type=Integer,Description=\"Number of distinct alleles observed\">",
		"##INFO=<ID=DP,Number=1,Type=Integer,Description=\"Total number of allele observations\">",
		"##INFO=<ID=AC,Number=.,Type=Integer,Description=\"Allele count per distinct allele\">",
		"##FORMAT=<ID=GT,Number=1,Type=String,Description=\"Genotype (not called)\">",
		"##FORMAT=<ID=GQ,Number=1,Type=Integer,Description=\"Genotype quality (not called)\">",
		"##FORMAT=<ID=DP,Number=1,Type=Integer,Description=\"Per-sample number of allele observations\">",
		"##FORMAT=<ID=HQ,Number=2,Type=Integer,Description=\"Haplotype qualities (not called)\">",
		"##FORMAT=<ID=QiB,Number=1,Type=Integer,Description=\"Per-sample sum of base qualities\">",
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(vw.w, l); err != nil {
			return err
		}
	}
	cols := append([]string{"#CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO", "FORMAT"}, vw.sampleIDs...)
	_, err := fmt.Fprintln(vw.w, strings.Join(cols, "\t"))
	return err
}

// WriteSite aggregates alleles — every Allele observed at pos — into one
// VCF data row and writes it.
func (vw *VariantWriter) WriteSite(pos Locus, alleles []allele.Allele) error {
	if len(alleles) == 0 {
		return nil
	}

	distinct := make(map[string]int)  // "kind:ref:alt" -> count
	perSample := make(map[string]*sampleTally)
	samplesSeen := make(map[string]bool)
	var refBase string

	for _, a := range alleles {
		key := fmt.Sprintf("%s:%s:%s", a.Kind, a.RefBases, a.AltBases)
		distinct[key]++
		samplesSeen[a.SampleID] = true
		if refBase == "" && a.RefBases != "" {
			refBase = a.RefBases
		}

		st, ok := perSample[a.SampleID]
		if !ok {
			st = &sampleTally{}
			perSample[a.SampleID] = st
		}
		st.depth++
		st.qualSum += a.BaseQuality
	}
	if refBase == "" {
		refBase = "N"
	}

	alts := make([]string, 0, len(distinct))
	acs := make([]string, 0, len(distinct))
	for _, key := range SortedKeys(distinct) {
		parts := strings.SplitN(key, ":", 3)
		alt := parts[2]
		if alt == "" {
			alt = "."
		}
		alts = append(alts, alt)
		acs = append(acs, fmt.Sprintf("%d", distinct[key]))
	}

	info := fmt.Sprintf("NS=%d;ND=%d;DP=%d;AC=%s", len(samplesSeen), len(distinct), len(alleles), strings.Join(acs, ","))

	format := make([]string, len(vw.sampleIDs))
	for i, id := range vw.sampleIDs {
		st, ok := perSample[id]
		if !ok {
			format[i] = ".:.:0:0,0:0"
			continue
		}
		format[i] = fmt.Sprintf(".:0:%d:0,0:%d", st.depth, st.qualSum)
	}

	row := []string{
		pos.SeqName,
		fmt.Sprintf("%d", pos.Position),
		".",
		refBase,
		strings.Join(alts, ","),
		".",
		".",
		info,
		"GT:GQ:DP:HQ:QiB",
	}
	row = append(row, format...)
	_, err := fmt.Fprintln(vw.w, strings.Join(row, "\t"))
	return err
}

type sampleTally struct {
	depth   int
	qualSum int
}

// Close flushes buffered output and closes the underlying file.
func (vw *VariantWriter) Close() error {
	if err := vw.w.Flush(); err != nil {
		vw.f.Close()
		return err
	}
	return vw.f.Close()
}
