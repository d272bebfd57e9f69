// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// freebayes-core walks every reference position inside a set of target
// intervals and reports, for each, the candidate allele observations
// contributed by alignments overlapping that position.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/wtsi-hgi/freebayes-core/align"
	"github.com/wtsi-hgi/freebayes-core/allele"
	"github.com/wtsi-hgi/freebayes-core/cursor"
	"github.com/wtsi-hgi/freebayes-core/reference"
	"github.com/wtsi-hgi/freebayes-core/report"
	"github.com/wtsi-hgi/freebayes-core/sample"
	"github.com/wtsi-hgi/freebayes-core/target"
)

// Config is the full externally-visible configuration surface. Only a
// subset of these fields (noted per-field below) is read by the
// registration/window/cursor pipeline itself; the rest are recorded in
// the parameter dump and/or threaded into VCF INFO/FORMAT bookkeeping,
// or reserved for a downstream genotype caller this repository does not
// implement.
type Config struct {
	BAM, FASTA, Targets, Samples string
	ReportPath, VCFPath, LogPath string

	UseRefAllele, ForceRefAllele bool // read by the classifier
	MQR, BQR                     int
	Ploidy                       int
	SampleNaming, SampleDel      string // read by sample-id derivation
	SampleField                  int    // read by sample-id derivation
	BQL0, MQL0, BQL1, MQL1, BQL2 int    // BQL2 read by the classifier
	RMU                          int    // read by the window
	IDW, TH, PVL                 float64
	Algorithm                    string
	RDF, WB, TB                  float64
	IncludeMonoB                 bool
	TR, I                        float64
	Debug, Debug2                bool
	Record                       bool
	Plot                         string
	SamtoolsPath                 string
	DeletionQualMin              bool
}

func parseFlags() Config {
	var c Config
	flag.StringVar(&c.BAM, "bam", "", "indexed, coordinate-sorted alignment file (required)")
	flag.StringVar(&c.FASTA, "fasta-reference", "", "indexed reference FASTA (required)")
	flag.StringVar(&c.Targets, "targets", "", "target region file (seq, left, right[, desc])")
	flag.StringVar(&c.Samples, "samples", "", "sample name file, one id per leading token")
	flag.StringVar(&c.ReportPath, "report-file", "", "parameter-dump report output path")
	flag.StringVar(&c.VCFPath, "vcf", "", "variant output path")
	flag.StringVar(&c.LogPath, "log-file", "", "debug log output path")

	flag.BoolVar(&c.UseRefAllele, "use-reference-allele", false, "emit Reference alleles on Match")
	flag.BoolVar(&c.ForceRefAllele, "force-reference-allele", false, "always emit Reference alleles on Match")
	flag.IntVar(&c.MQR, "mqr", 0, "mapping quality threshold reserved for the genotype caller")
	flag.IntVar(&c.BQR, "bqr", 0, "base quality threshold reserved for the genotype caller")
	flag.IntVar(&c.Ploidy, "ploidy", 2, "sample ploidy reserved for the genotype caller")

	flag.StringVar(&c.SampleNaming, "sample-naming", "groupId", "read-name sample scheme: groupId, field or trim")
	flag.StringVar(&c.SampleDel, "sample-delim", "_", "delimiter used by the field/trim sample schemes")
	flag.IntVar(&c.SampleField, "sample-field", 0, "0-based field index used by the field sample scheme")

	flag.IntVar(&c.BQL0, "bql0", 0, "reserved base quality threshold")
	flag.IntVar(&c.MQL0, "mql0", 0, "reserved mapping quality threshold")
	flag.IntVar(&c.BQL1, "bql1", 0, "reserved base quality threshold")
	flag.IntVar(&c.MQL1, "mql1", 0, "reserved mapping quality threshold")
	flag.IntVar(&c.BQL2, "bql2", 10, "minimum base quality for an allele observation")
	flag.IntVar(&c.RMU, "rmu", 1000000, "maximum mismatches per alignment before it is dropped")

	flag.Float64Var(&c.IDW, "idw", 0, "reserved indel weight")
	flag.Float64Var(&c.TH, "th", 0, "reserved theta")
	flag.Float64Var(&c.PVL, "pvl", 0, "reserved p-value limit")
	flag.StringVar(&c.Algorithm, "algorithm", "", "reserved genotype-calling algorithm name")
	flag.Float64Var(&c.RDF, "rdf", 0, "reserved read discount factor")
	flag.Float64Var(&c.WB, "wb", 0, "reserved window bandwidth")
	flag.Float64Var(&c.TB, "tb", 0, "reserved transition bias")
	flag.BoolVar(&c.IncludeMonoB, "include-monomorphic", false, "reserved: include monomorphic sites")
	flag.Float64Var(&c.TR, "tr", 0, "reserved transition rate")
	flag.Float64Var(&c.I, "i", 0, "reserved inbreeding coefficient")

	flag.BoolVar(&c.Debug, "debug", false, "enable debug logging")
	flag.BoolVar(&c.Debug2, "debug2", false, "enable verbose debug logging")
	flag.BoolVar(&c.Record, "record", false, "reserved: record intermediate state")
	flag.StringVar(&c.Plot, "plot", "", "per-target depth QC plot output path (svg/png/...)")
	flag.StringVar(&c.SamtoolsPath, "samtools-path", "", "samtools executable, used only to auto-generate a missing .fai")
	flag.BoolVar(&c.DeletionQualMin, "deletion-qual-min", false, "use min(qL,qR) instead of max(qL,qR) for deletion quality")

	flag.Parse()
	return c
}

func main() {
	cfg := parseFlags()
	if cfg.BAM == "" || cfg.FASTA == "" {
		fmt.Fprintln(os.Stderr, "freebayes-core: -bam and -fasta-reference are required")
		flag.Usage()
		os.Exit(1)
	}

	logger, logCloser, err := report.OpenLog(cfg.LogPath, cfg.Debug || cfg.Debug2)
	if err != nil {
		log.Fatalf("freebayes-core: %v", err)
	}
	defer logCloser.Close()

	src, err := align.Open(cfg.BAM)
	if err != nil {
		log.Fatalf("freebayes-core: %v", err)
	}
	defer src.Close()

	ref, err := reference.Open(cfg.FASTA, cfg.SamtoolsPath)
	if err != nil {
		log.Fatalf("freebayes-core: %v", err)
	}
	defer ref.Close()

	sampleIDs := loadSamples(cfg, src)

	targets, err := loadTargets(cfg, ref, src)
	if err != nil {
		log.Fatalf("freebayes-core: %v", err)
	}

	var reportCloser io.Closer
	if cfg.ReportPath != "" {
		reportCloser, err = report.OpenReport(cfg.ReportPath, cfg)
		if err != nil {
			log.Fatalf("freebayes-core: %v", err)
		}
		defer reportCloser.Close()
	}

	var vw *report.VariantWriter
	if cfg.VCFPath != "" {
		vw, err = report.OpenVariants(cfg.VCFPath, cfg.BAM, cfg.FASTA, sampleIDs, time.Now())
		if err != nil {
			log.Fatalf("freebayes-core: %v", err)
		}
		defer vw.Close()
	}

	classifierCfg := allele.Config{
		BQL2:            cfg.BQL2,
		UseRefAllele:    cfg.UseRefAllele,
		ForceRefAllele:  cfg.ForceRefAllele,
		DeletionQualMin: cfg.DeletionQualMin,
	}
	sampleOf := func(a allele.Alignment) string {
		return sample.NameFor(cfg.SampleNaming, a.Name(), cfg.SampleDel, cfg.SampleField)
	}

	cur, err := cursor.New(targets, ref, src, classifierCfg, cfg.RMU, sampleOf)
	if err != nil {
		log.Fatalf("freebayes-core: %v", err)
	}

	perTargetDepth := make(map[string][]int)
	run(cur, vw, logger, perTargetDepth)

	if cfg.Plot != "" {
		if err := report.PlotDepth(cfg.Plot, perTargetDepth); err != nil {
			log.Fatalf("freebayes-core: %v", err)
		}
	}
}

// run drives the cursor to exhaustion, writing each position's allele
// vector to vw (when non-nil) and accumulating per-target depth for the
// optional QC plot.
func run(cur *cursor.TargetCursor, vw *report.VariantWriter, logger *log.Logger, perTargetDepth map[string][]int) {
	recordSite(cur, vw, logger, perTargetDepth, cur.AllelesAt(cur.CurrentPosition()))
	for {
		alleles, ok, err := cur.GetNextAlleles()
		if err != nil {
			log.Fatalf("freebayes-core: %v", err)
		}
		if !ok {
			return
		}
		recordSite(cur, vw, logger, perTargetDepth, alleles)
	}
}

func recordSite(cur *cursor.TargetCursor, vw *report.VariantWriter, logger *log.Logger, perTargetDepth map[string][]int, alleles []allele.Allele) {
	t := cur.CurrentTarget()
	pos := cur.CurrentPosition()

	perTargetDepth[t.SeqName] = append(perTargetDepth[t.SeqName], len(alleles))

	if logger != nil && len(alleles) > 0 {
		logger.Printf("%s:%d: %d allele(s)", t.SeqName, pos, len(alleles))
	}
	if vw == nil {
		return
	}
	if err := vw.WriteSite(report.Locus{SeqName: t.SeqName, Position: pos}, alleles); err != nil {
		log.Fatalf("freebayes-core: writing variant site: %v", err)
	}
}

func loadSamples(cfg Config, src *align.Source) []string {
	if cfg.Samples != "" {
		f, err := os.Open(cfg.Samples)
		if err != nil {
			log.Fatalf("freebayes-core: opening sample file: %v", err)
		}
		defer f.Close()
		reg, err := sample.FromFile(f)
		if err != nil {
			log.Fatalf("freebayes-core: %v", err)
		}
		return reg.IDs()
	}
	reg := sample.FromReadGroups(src.HeaderText())
	return reg.IDs()
}

func loadTargets(cfg Config, ref *reference.Provider, src *align.Source) ([]target.Target, error) {
	refTable := src.ReferenceTable()
	refOrder := make([]string, len(refTable))
	for i, r := range refTable {
		refOrder[i] = r.Name
	}

	var set *target.Set
	if cfg.Targets != "" {
		f, err := os.Open(cfg.Targets)
		if err != nil {
			return nil, fmt.Errorf("opening target file: %v", err)
		}
		defer f.Close()
		set, err = target.Load(f)
		if err != nil {
			return nil, err
		}
		// Validate only applies to file-loaded targets, matching the
		// original's loadTargets: auto-synthesized whole-sequence
		// targets are trusted and never run through this check.
		if err := set.Validate(ref.SequenceLength); err != nil {
			return nil, err
		}
	} else {
		lengths := make(map[string]int, len(refTable))
		for _, r := range refTable {
			lengths[r.Name] = r.Length
		}
		set = target.Whole(lengths)
	}

	ts := set.OrderedBy(refOrder)
	if len(ts) == 0 {
		return nil, fmt.Errorf("no targets to process")
	}
	return ts, nil
}
