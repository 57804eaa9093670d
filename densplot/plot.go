/*
 * plot.go, part of godens.
 *
 *
 * Copyright 2024 The godens developers
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

//Package densplot produces the plots one usually wants after a density
//calculation: radial density profiles, per-atom charge comparisons and
//histograms of grid values. Everything is written as png.
package densplot

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

//RadialProfile plots one or several spherically averaged profiles, as
//returned by grid.RadialProfile, against the distance. NaN bins (empty
//bins in the average) are skipped. legends may be nil; if given, it
//needs one entry per profile.
func RadialProfile(r []float64, profiles [][]float64, legends []string, title, plotname string) error {
	if r == nil || len(profiles) == 0 {
		return fmt.Errorf("densplot: given nil data")
	}
	if legends != nil && len(legends) < len(profiles) {
		return fmt.Errorf("densplot: %d profiles but %d legends", len(profiles), len(legends))
	}
	p := basicPlot(title, "r (Å)", "density")
	for key, prof := range profiles {
		if len(prof) != len(r) {
			return fmt.Errorf("densplot: profile %d doesn't match the r axis", key)
		}
		pts := make(plotter.XYs, 0, len(r))
		for i, v := range prof {
			if math.IsNaN(v) {
				continue
			}
			pts = append(pts, plotter.XY{X: r[i], Y: v})
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		red, green, blue := colors(key, len(profiles))
		l.Color = color.RGBA{R: red, G: green, B: blue, A: 255}
		p.Add(l)
		if legends != nil {
			p.Legend.Add(legends[key], l)
		}
	}
	return p.Save(12*vg.Centimeter, 10*vg.Centimeter, plotname)
}

//ChargeComparison plots predicted per-atom charges against reference
//ones, plus the identity line; points on the line mean perfect
//agreement. Both slices must have the same length.
func ChargeComparison(ref, pred []float64, title, plotname string) error {
	if ref == nil || pred == nil {
		return fmt.Errorf("densplot: given nil data")
	}
	if len(ref) != len(pred) {
		return fmt.Errorf("densplot: %d reference but %d predicted charges", len(ref), len(pred))
	}
	p := basicPlot(title, "reference charge (e)", "predicted charge (e)")
	pts := make(plotter.XYs, len(ref))
	min, max := math.Inf(1), math.Inf(-1)
	for i := range ref {
		pts[i].X = ref[i]
		pts[i].Y = pred[i]
		for _, v := range []float64{ref[i], pred[i]} {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	ident := plotter.XYs{{X: min, Y: min}, {X: max, Y: max}}
	l, err := plotter.NewLine(ident)
	if err != nil {
		return err
	}
	l.Color = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	l.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(l)
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	s.GlyphStyle.Color = color.RGBA{R: 200, B: 60, A: 255}
	p.Add(s)
	return p.Save(10*vg.Centimeter, 10*vg.Centimeter, plotname)
}

//ValueHistogram plots a histogram of the sampled values, in nbins bins.
//Useful for eyeballing the dynamic range of a density or of a density
//difference.
func ValueHistogram(vals []float64, nbins int, title, plotname string) error {
	if vals == nil {
		return fmt.Errorf("densplot: given nil data")
	}
	if nbins <= 0 {
		nbins = 50
	}
	p := basicPlot(title, "value", "count")
	h, err := plotter.NewHist(plotter.Values(vals), nbins)
	if err != nil {
		return err
	}
	p.Add(h)
	return p.Save(12*vg.Centimeter, 10*vg.Centimeter, plotname)
}

//takes hue (0-360), v and s (0-1), returns r,g,b (0-255)
func iHVS2RGB(h, v, s float64) (uint8, uint8, uint8) {
	var i, f, p, q, t float64
	var r, g, b float64
	maxcolor := 255.0
	conversion := maxcolor * v
	if s == 0.0 {
		return uint8(conversion), uint8(conversion), uint8(conversion)
	}
	h = h / 60
	i = math.Floor(h)
	f = h - i
	p = v * (1 - s)
	q = v * (1 - s*f)
	t = v * (1 - s*(1-f))
	switch int(i) {
	case 0:
		r = v
		g = t
		b = p
	case 1:
		r = q
		g = v
		b = p
	case 2:
		r = p
		g = v
		b = t
	case 3:
		r = p
		g = q
		b = v
	case 4:
		r = t
		g = p
		b = v
	default: //case 5
		r = v
		g = p
		b = q
	}
	r = r * conversion
	g = g * conversion
	b = b * conversion
	return uint8(r), uint8(g), uint8(b)
}

func colors(key, steps int) (r, g, b uint8) {
	norm := 260.0 / float64(steps)
	hp := float64(key)*norm + 20.0
	var h float64
	if hp < 55 {
		h = hp - 20.0
	} else {
		h = hp + 20.0
	}
	s := 1.0
	v := 1.0
	r, g, b = iHVS2RGB(h, v, s)
	return r, g, b
}
