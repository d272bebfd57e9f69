// Copyright ©2016 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotDepth renders a per-target read-depth QC plot to path, one line
// per target named in perTargetDepth, where each value slice is the
// per-position depth across that target in left-to-right order. The
// output format is inferred from path's extension by gonum/plot's Save,
// matching the convention the teacher's own "carta" and "ranks" plotting
// tools follow.
//
// biogo/graphics' rings package — the teacher's other plotting
// dependency — renders circular karyotype tracks keyed to the hg19
// chromosome table and isn't reusable for an arbitrary reference's
// per-target depth; see DESIGN.md.
func PlotDepth(path string, perTargetDepth map[string][]int) error {
	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("report: creating plot: %v", err)
	}
	p.Title.Text = "per-target read depth"
	p.X.Label.Text = "position in target"
	p.Y.Label.Text = "depth"

	names := make([]string, 0, len(perTargetDepth))
	for name := range perTargetDepth {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		depths := perTargetDepth[name]
		pts := make(plotter.XYs, len(depths))
		for i, d := range depths {
			pts[i].X = float64(i)
			pts[i].Y = float64(d)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("report: building depth line for %q: %v", name, err)
		}
		p.Add(line)
		p.Legend.Add(name, line)
	}

	if err := p.Save(20*vg.Centimeter, 12*vg.Centimeter, path); err != nil {
		return fmt.Errorf("report: saving depth plot to %s: %v", path, err)
	}
	return nil
}
