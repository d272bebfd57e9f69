// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report provides the output collaborators a caller run drives:
// a parameter-dump report, a VCF-style variant writer, a debug-gated
// logger, and an optional per-target depth QC plot.
package report

import (
	"fmt"
	"io"
	"log"
	"os"
	"reflect"
	"sort"
)

// OpenReport creates path and writes a "#   --key = value" parameter
// dump of cfg (a struct; every exported field is reported by name) to
// it, returning the open file for the caller to defer-close.
func OpenReport(path string, cfg interface{}) (io.Closer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("report: creating %s: %v", path, err)
	}
	if err := writeParameterDump(f, cfg); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeParameterDump(w io.Writer, cfg interface{}) error {
	v := reflect.ValueOf(cfg)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("report: parameter dump requires a struct, got %s", v.Kind())
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		if _, err := fmt.Fprintf(w, "#   --%s = %v\n", f.Name, v.Field(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// OpenLog opens path for append and returns a *log.Logger writing to it
// when debug is true. When debug is false, the logger discards its
// output — the teacher's own logging idiom is the stdlib log package
// used directly, so report follows suit rather than reaching for a
// structured logging library the teacher never imports.
func OpenLog(path string, debug bool) (*log.Logger, io.Closer, error) {
	if !debug {
		return log.New(io.Discard, "", log.LstdFlags), nopCloser{}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("report: opening log %s: %v", path, err)
	}
	return log.New(f, "", log.LstdFlags), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// SortedKeys is a small helper used by the VCF writer to order a site's
// distinct allele keys, and so its ALT and AC lists, stably.
func SortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
