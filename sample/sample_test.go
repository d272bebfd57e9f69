// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sample

import (
	"fmt"
	"strings"
	"testing"
)

func TestFromFile(t *testing.T) {
	in := "sample1 extra columns\nsample2\n\nsample3\tfoo\n"
	reg, err := FromFile(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"sample1", "sample2", "sample3"}
	got := reg.IDs()
	if len(got) != len(want) {
		t.Fatal(fmt.Sprintf("got %d ids, want %d", len(got), len(want)))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Error(fmt.Sprintf("id %d: got %q, want %q", i, got[i], want[i]))
		}
	}
}

func TestFromReadGroups(t *testing.T) {
	header := "@HD\tVN:1.5\tSO:coordinate\n" +
		"@SQ\tSN:chr1\tLN:100\n" +
		"@RG\tID:rg1\tSM:patientA\n" +
		"@RG\tID:rg2\tSM:cohort:patientB\n"
	reg := FromReadGroups(header)
	want := []string{"patientA", "patientB"}
	got := reg.IDs()
	if len(got) != len(want) {
		t.Fatal(fmt.Sprintf("got %d ids, want %d", len(got), len(want)))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Error(fmt.Sprintf("id %d: got %q, want %q", i, got[i], want[i]))
		}
	}
}

func TestFromReadGroupsIgnoresNonRGLines(t *testing.T) {
	reg := FromReadGroups("@HD\tVN:1.5\n@SQ\tSN:chr1\tLN:100\n")
	if len(reg.IDs()) != 0 {
		t.Error(fmt.Sprintf("got %d ids, want 0", len(reg.IDs())))
	}
}

func TestSchemeGroupID(t *testing.T) {
	if got := NameFor("groupId", "read-42", "_", 0); got != "read-42" {
		t.Error(fmt.Sprintf("groupId: got %q, want %q", got, "read-42"))
	}
}

func TestSchemeField(t *testing.T) {
	cases := []struct {
		name  string
		field int
		want  string
	}{
		{"run1_lane2_sampleA", 2, "sampleA"},
		{"run1_lane2_sampleA", 0, "run1"},
		{"run1_lane2_sampleA", 99, "sampleA"}, // clamps to last field
		{"run1_lane2_sampleA", -1, "run1"},    // clamps to first field
	}
	for _, c := range cases {
		if got := NameFor("field", c.name, "_", c.field); got != c.want {
			t.Error(fmt.Sprintf("field(%q, %d): got %q, want %q", c.name, c.field, got, c.want))
		}
	}
}

func TestSchemeTrim(t *testing.T) {
	if got := NameFor("trim", "sampleA_rep1", "_", 0); got != "sampleA" {
		t.Error(fmt.Sprintf("trim: got %q, want %q", got, "sampleA"))
	}
	if got := NameFor("trim", "noDelimiter", "_", 0); got != "noDelimiter" {
		t.Error(fmt.Sprintf("trim with no delimiter: got %q, want %q", got, "noDelimiter"))
	}
}

func TestNameForUnknownSchemeFallsBackToGroupID(t *testing.T) {
	if got := NameFor("bogus-scheme", "read-1", "_", 0); got != "read-1" {
		t.Error(fmt.Sprintf("unknown scheme: got %q, want the read name unmodified", got))
	}
}
