/* Copyright (C) 2016 Philipp Benner
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */


package pseudobulk

/* -------------------------------------------------------------------------- */

import "fmt"

import "gonum.org/v1/plot"
import "gonum.org/v1/plot/plotter"
import "gonum.org/v1/plot/vg"

/* -------------------------------------------------------------------------- */

// Fragment length histograms cover [0, 1000] bp in bins of 5 bp, longer
// fragments are counted in the last bin.
const (
  maxPlotFragmentLength = 1000
  plotFragmentLengthBin = 5
)

// Plot the fragment length distribution of a pseudobulk. The image format is
// determined by the file extension (pdf, png, svg, ...).
func (f Fragments) PlotFragmentLengths(filename, title string) error {
  counts := make([]int, maxPlotFragmentLength/plotFragmentLengthBin+1)
  n      := 0
  for _, length := range f.Lengths() {
    counts[iMin(length, maxPlotFragmentLength)/plotFragmentLengthBin]++
    n++
  }
  if n == 0 {
    return fmt.Errorf("no fragments to plot")
  }
  xy := make(plotter.XYs, len(counts))
  for i, c := range counts {
    xy[i].X = float64(i*plotFragmentLengthBin)
    xy[i].Y = float64(c)/float64(n)
  }
  p := plot.New()
  p.Title.Text   = title
  p.X.Label.Text = "fragment length [bp]"
  p.Y.Label.Text = "frequency"

  line, err := plotter.NewLine(xy)
  if err != nil {
    return err
  }
  p.Add(line)

  if err := p.Save(8*vg.Inch, 4*vg.Inch, filename); err != nil {
    return err
  }
  return nil
}
