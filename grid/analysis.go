/*
 * analysis.go, part of godens.
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

package grid

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

//The analyses here are the post-hoc ones typically run on predicted or
//computed densities: integrating to count electrons, comparing two
//densities on the same mesh, and spherical averaging.

//Integrate returns the Riemann-sum integral of the sampled values over
//the grid, i.e. the sum of the values times the voxel volume. For an
//electron density in e/volume units this is the number of electrons.
//It returns an error if the number of values doesn't match the grid.
func (g *Grid) Integrate(vals []float64) (float64, error) {
	if len(vals) != g.Len() {
		return 0, Error{"values don't match the grid size", []string{"Integrate"}, true}
	}
	return floats.Sum(vals) * g.VoxelVolume(), nil
}

//Diff returns the pointwise difference a-b of two samplings on this
//grid. It returns an error if the lengths don't match the grid.
func (g *Grid) Diff(a, b []float64) ([]float64, error) {
	if len(a) != g.Len() || len(b) != g.Len() {
		return nil, Error{"values don't match the grid size", []string{"Diff"}, true}
	}
	d := make([]float64, len(a))
	copy(d, a)
	floats.Sub(d, b)
	return d, nil
}

//MAE returns the mean absolute error between two samplings on this grid.
func (g *Grid) MAE(a, b []float64) (float64, error) {
	if len(a) != g.Len() || len(b) != g.Len() {
		return 0, Error{"values don't match the grid size", []string{"MAE"}, true}
	}
	var acc float64
	for i, v := range a {
		acc += math.Abs(v - b[i])
	}
	return acc / float64(len(a)), nil
}

//RMSE returns the root mean square error between two samplings on this grid.
func (g *Grid) RMSE(a, b []float64) (float64, error) {
	if len(a) != g.Len() || len(b) != g.Len() {
		return 0, Error{"values don't match the grid size", []string{"RMSE"}, true}
	}
	var acc float64
	for i, v := range a {
		d := v - b[i]
		acc += d * d
	}
	return math.Sqrt(acc / float64(len(a))), nil
}

//RadialProfile returns the spherically averaged value of the sampling as
//a function of the distance to center, in nbins bins of width rmax/nbins.
//It returns the bin centers and the averages (NaN for empty bins), or an
//error if the arguments are inconsistent.
func (g *Grid) RadialProfile(vals []float64, center []float64, nbins int, rmax float64) (r, avg []float64, err error) {
	if len(vals) != g.Len() {
		return nil, nil, Error{"values don't match the grid size", []string{"RadialProfile"}, true}
	}
	if len(center) != 3 {
		return nil, nil, Error{"center must have 3 elements", []string{"RadialProfile"}, true}
	}
	if nbins <= 0 || rmax <= 0 {
		return nil, nil, Error{"nbins and rmax must be positive", []string{"RadialProfile"}, true}
	}
	width := rmax / float64(nbins)
	sums := make([]float64, nbins)
	counts := make([]int, nbins)
	for n, v := range vals {
		x, y, z := g.Point(n)
		d := math.Sqrt((x-center[0])*(x-center[0]) + (y-center[1])*(y-center[1]) + (z-center[2])*(z-center[2]))
		b := int(d / width)
		if b >= nbins {
			continue
		}
		sums[b] += v
		counts[b]++
	}
	r = make([]float64, nbins)
	avg = make([]float64, nbins)
	for i := range sums {
		r[i] = (float64(i) + 0.5) * width
		if counts[i] == 0 {
			avg[i] = math.NaN()
			continue
		}
		avg[i] = sums[i] / float64(counts[i])
	}
	return r, avg, nil
}

//Interpolate returns the trilinear interpolation of the sampling at the
//Cartesian position x, y, z. Only diagonal grids are supported. Positions
//outside the grid return an error.
func (g *Grid) Interpolate(vals []float64, x, y, z float64) (float64, error) {
	if len(vals) != g.Len() {
		return 0, Error{"values don't match the grid size", []string{"Interpolate"}, true}
	}
	if !g.Diagonal() {
		return 0, Error{"interpolation requires an axis-aligned grid", []string{"Interpolate"}, true}
	}
	pos := [3]float64{x, y, z}
	var idx [3]int
	var frac [3]float64
	for a := 0; a < 3; a++ {
		t := (pos[a] - g.origin[a]) / g.step[a][a]
		if t < 0 || t > float64(g.shape[a]-1) {
			return 0, Error{"position outside the grid", []string{"Interpolate"}, false}
		}
		idx[a] = int(t)
		if idx[a] >= g.shape[a]-1 { //the far face of the last voxel
			idx[a] = g.shape[a] - 2
			if idx[a] < 0 {
				idx[a] = 0
			}
		}
		frac[a] = t - float64(idx[a])
	}
	var out float64
	for ci := 0; ci < 2; ci++ {
		for cj := 0; cj < 2; cj++ {
			for ck := 0; ck < 2; ck++ {
				w := weight(frac[0], ci) * weight(frac[1], cj) * weight(frac[2], ck)
				i, j, k := clampAdd(idx[0], ci, g.shape[0]), clampAdd(idx[1], cj, g.shape[1]), clampAdd(idx[2], ck, g.shape[2])
				out += w * vals[g.Ravel(i, j, k)]
			}
		}
	}
	return out, nil
}

func weight(f float64, c int) float64 {
	if c == 1 {
		return f
	}
	return 1 - f
}

func clampAdd(i, c, n int) int {
	i += c
	if i >= n {
		return n - 1
	}
	return i
}
