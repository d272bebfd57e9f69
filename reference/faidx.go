// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reference

import (
	"errors"
	"os/exec"

	"github.com/biogo/external"
)

// ErrMissingRequired is returned by faidx.BuildCommand when Fasta is unset.
var ErrMissingRequired = errors.New("reference: missing required argument")

// faidx defines the parameters for "samtools faidx", used to generate a
// .fai index for a reference FASTA that doesn't already have one.
//
// Usage: samtools faidx <fasta>
type faidx struct {
	Cmd   string `buildarg:"{{if .}}{{.}}{{else}}samtools{{end}}"` // samtools
	Sub   string `buildarg:"{{if .}}{{.}}{{else}}faidx{{end}}"`    // faidx
	Fasta string `buildarg:"{{.}}"`                                // reference.fasta
}

// BuildCommand returns an exec.Cmd built from the parameters in f.
func (f faidx) BuildCommand() (*exec.Cmd, error) {
	if f.Fasta == "" {
		return nil, ErrMissingRequired
	}
	cl := external.Must(external.Build(f, nil))
	return exec.Command(cl[0], cl[1:]...), nil
}

// generateIndex runs "samtools faidx" against path, producing path+".fai"
// alongside it. samtoolsPath overrides the "samtools" executable name when
// non-empty.
func generateIndex(path, samtoolsPath string) error {
	b := faidx{Cmd: samtoolsPath, Fasta: path}
	cmd, err := b.BuildCommand()
	if err != nil {
		return err
	}
	return cmd.Run()
}
