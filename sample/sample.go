// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sample derives and registers the sample identifiers a caller
// run attributes observations to, either from an explicit sample file,
// a BAM's @RG header lines, or a per-read naming scheme applied to the
// read name itself.
package sample

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Registry holds the ordered list of sample identifiers a run will
// report against.
type Registry struct {
	ids []string
}

// FromFile builds a Registry from a sample file: every line whose
// leading whitespace-delimited token is non-empty contributes that
// token, in file order. Duplicates are preserved; deduplication is a
// reporting-layer policy, not this registry's concern.
func FromFile(r io.Reader) (*Registry, error) {
	reg := &Registry{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		reg.ids = append(reg.ids, fields[0])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("sample: reading sample file: %v", err)
	}
	return reg, nil
}

// FromReadGroups builds a Registry from a BAM header's textual @RG
// lines: for each, the third tab/space-delimited field (conventionally
// "SM:<sample>") is split on ':' and its last component is taken as the
// sample id.
func FromReadGroups(headerText string) *Registry {
	reg := &Registry{}
	for _, line := range strings.Split(headerText, "\n") {
		if !strings.HasPrefix(line, "@RG") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		parts := strings.Split(fields[2], ":")
		reg.ids = append(reg.ids, parts[len(parts)-1])
	}
	return reg
}

// IDs returns the registered sample identifiers in registration order.
func (r *Registry) IDs() []string {
	return r.ids
}

// Scheme is a named read-name-to-sample-id derivation, selected by the
// SampleNaming configuration string.
type Scheme func(readName, del string, field int) string

// Schemes is the registry of read-name naming schemes recognised by
// Config.SampleNaming.
var Schemes = map[string]Scheme{
	"groupId": schemeGroupID,
	"field":   schemeField,
	"trim":    schemeTrim,
}

// schemeGroupID passes the read name through unmodified: the identity a
// header read-group scan would have produced had the BAM carried @RG
// lines keyed by read name prefix.
func schemeGroupID(readName, del string, field int) string {
	return readName
}

// schemeField splits readName on del and returns the 0-based field
// index, clamping to the last field when the name is shorter than
// expected.
func schemeField(readName, del string, field int) string {
	parts := strings.Split(readName, del)
	if field < 0 {
		field = 0
	}
	if field >= len(parts) {
		field = len(parts) - 1
	}
	return parts[field]
}

// schemeTrim returns everything in readName before the first occurrence
// of del.
func schemeTrim(readName, del string, field int) string {
	if i := strings.Index(readName, del); i >= 0 {
		return readName[:i]
	}
	return readName
}

// NameFor derives a sample id for readName using the named scheme. It
// falls back to schemeGroupID for an unrecognised scheme name.
func NameFor(scheme, readName, del string, field int) string {
	if fn, ok := Schemes[scheme]; ok {
		return fn(readName, del, field)
	}
	return schemeGroupID(readName, del, field)
}
