/*
 * plot.go, part of molingest.
 *
 * Copyright 2026 The molingest authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package stats

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//Plot saves a bar plot of H to filename. The format is taken from the extension
//(png, svg, pdf...).
func Plot(H *Histogram, title, xlabel, filename string) error {
	if H == nil || len(H.histo) == 0 {
		return fmt.Errorf("stats.Plot: empty histogram")
	}
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "Count"
	if H.normalized {
		p.Y.Label.Text = "Fraction"
	}
	p.Add(plotter.NewGrid())
	bins := make([]plotter.HistogramBin, len(H.histo))
	for i, v := range H.histo {
		bins[i] = plotter.HistogramBin{Min: H.dividers[i], Max: H.dividers[i+1], Weight: v}
	}
	h := &plotter.Histogram{
		Bins:      bins,
		Width:     H.dividers[len(H.dividers)-1] - H.dividers[0],
		FillColor: color.RGBA{R: 70, G: 130, B: 180, A: 255},
		LineStyle: plotter.DefaultLineStyle,
	}
	p.Add(h)
	if err := p.Save(5*vg.Inch, 4*vg.Inch, filename); err != nil {
		return fmt.Errorf("stats.Plot: %w", err)
	}
	return nil
}
