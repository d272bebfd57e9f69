// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testConfig struct {
	BAM   string
	RMU   int
	Debug bool
}

func TestOpenReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	cfg := testConfig{BAM: "in.bam", RMU: 5, Debug: true}
	closer, err := OpenReport(path, cfg)
	if err != nil {
		t.Fatal(err)
	}
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{"#   --BAM = in.bam", "#   --RMU = 5", "#   --Debug = true"} {
		if !strings.Contains(text, want) {
			t.Error(fmt.Sprintf("report %q missing line %q", text, want))
		}
	}
}

func TestOpenLogDiscardsWhenNotDebugging(t *testing.T) {
	logger, closer, err := OpenLog("", false)
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()
	// Should not attempt to open a file at all; logging must not panic.
	logger.Printf("this should go nowhere")
}

func TestOpenLogWritesWhenDebugging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, closer, err := OpenLog(path, true)
	if err != nil {
		t.Fatal(err)
	}
	logger.Printf("hello %d", 42)
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello 42") {
		t.Error(fmt.Sprintf("log file %q missing expected message", string(data)))
	}
}

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(map[string]int{"snp:A:G": 2, "del:AT:": 1, "ins::TT": 1})
	want := []string{"del:AT:", "ins::TT", "snp:A:G"}
	if len(got) != len(want) {
		t.Fatal(fmt.Sprintf("got %v, want %v", got, want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Error(fmt.Sprintf("got %v, want %v", got, want))
		}
	}
}
