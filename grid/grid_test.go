/*
 * grid_test.go, part of godens.
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
 */

package grid

import (
	"fmt"
	"io"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestIndexing(Te *testing.T) {
	fmt.Println("Grid indexing test!")
	g, err := Uniform([]float64{-1, -2, -3}, []int{3, 4, 5}, 0.5)
	if err != nil {
		Te.Fatal(err)
	}
	if g.Len() != 60 {
		Te.Errorf("wrong number of points: %d", g.Len())
	}
	x, y, z := g.At(0, 0, 0)
	if x != -1 || y != -2 || z != -3 {
		Te.Errorf("first point should be the origin: %f %f %f", x, y, z)
	}
	//flat order is x slowest, z fastest
	_, _, z1 := g.Point(1)
	if math.Abs(z1-(-2.5)) > 1e-12 {
		Te.Errorf("the second flat point should move along z: %f", z1)
	}
	for n := 0; n < g.Len(); n++ {
		i, j, k := g.Unravel(n)
		if g.Ravel(i, j, k) != n {
			Te.Fatalf("ravel/unravel disagree at %d", n)
		}
		xa, ya, za := g.At(i, j, k)
		xp, yp, zp := g.Point(n)
		if xa != xp || ya != yp || za != zp {
			Te.Fatalf("At and Point disagree at %d", n)
		}
	}
}

func TestNewFromCell(Te *testing.T) {
	fmt.Println("Grid from cell test!")
	cell := mat.NewDense(3, 3, []float64{3, 0, 0, 0, 4, 0, 0, 0, 5})
	g, err := New([]float64{0, 0, 0}, []int{3, 4, 5}, cell)
	if err != nil {
		Te.Fatal(err)
	}
	for axis := 0; axis < 3; axis++ {
		s := [3]float64{}
		s[0], s[1], s[2] = g.Step(axis)
		if math.Abs(s[axis]-1.0) > 1e-12 {
			Te.Errorf("axis %d step should be 1.0: %v", axis, s)
		}
	}
	if !g.Diagonal() {
		Te.Error("a diagonal cell should give a diagonal grid")
	}
	back := g.Cell()
	if !mat.EqualApprox(cell, back, 1e-12) {
		Te.Error("Cell() doesn't recover the input cell")
	}
	if math.Abs(g.VoxelVolume()-1.0) > 1e-12 {
		Te.Errorf("wrong voxel volume: %f", g.VoxelVolume())
	}
	//a negative shape must be refused
	if _, err := New([]float64{0, 0, 0}, []int{3, -4, 5}, cell); err == nil {
		Te.Error("a negative shape should be an error")
	}
}

func TestBounds(Te *testing.T) {
	fmt.Println("Grid bounds test!")
	coords := mat.NewDense(2, 3, []float64{0, 0, 0, 1, 1, 1})
	g, err := Bounds(coords, 2.0, 0.5)
	if err != nil {
		Te.Fatal(err)
	}
	ox, oy, oz := g.Origin()
	if ox != -2 || oy != -2 || oz != -2 {
		Te.Errorf("wrong origin: %f %f %f", ox, oy, oz)
	}
	nx, _, _ := g.Shape()
	//extent 5 Å at 0.5 Å spacing, plus the closing point
	if nx != 11 {
		Te.Errorf("wrong shape: %d", nx)
	}
}

func TestStream(Te *testing.T) {
	fmt.Println("Grid streaming test!")
	g, err := Uniform([]float64{0, 0, 0}, []int{4, 3, 5}, 0.3)
	if err != nil {
		Te.Fatal(err)
	}
	s := g.Stream(7) //not a divisor of 60, on purpose
	seen := 0
	for {
		out, start, n, err := s.Next(nil)
		if err == io.EOF {
			break
		}
		if err != nil {
			Te.Fatal(err)
		}
		if start != seen {
			Te.Fatalf("chunk starts at %d, expected %d", start, seen)
		}
		for i := 0; i < n; i++ {
			x, y, z := g.Point(start + i)
			if out.At(i, 0) != x || out.At(i, 1) != y || out.At(i, 2) != z {
				Te.Fatalf("streamed point %d doesn't match Point()", start+i)
			}
		}
		seen += n
	}
	if seen != g.Len() {
		Te.Errorf("stream produced %d of %d points", seen, g.Len())
	}
}

func TestAnalysis(Te *testing.T) {
	fmt.Println("Grid analysis test!")
	g, err := Uniform([]float64{0, 0, 0}, []int{10, 10, 10}, 0.2)
	if err != nil {
		Te.Fatal(err)
	}
	vals := make([]float64, g.Len())
	for i := range vals {
		vals[i] = 2.0
	}
	total, err := g.Integrate(vals)
	if err != nil {
		Te.Fatal(err)
	}
	want := 2.0 * g.VoxelVolume() * float64(g.Len())
	if math.Abs(total-want) > 1e-10 {
		Te.Errorf("integral %f, expected %f", total, want)
	}
	shift := make([]float64, g.Len())
	for i := range shift {
		shift[i] = 2.5
	}
	mae, err := g.MAE(vals, shift)
	if err != nil {
		Te.Fatal(err)
	}
	rmse, err := g.RMSE(vals, shift)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(mae-0.5) > 1e-10 || math.Abs(rmse-0.5) > 1e-10 {
		Te.Errorf("uniform shift should give MAE=RMSE=0.5: %f %f", mae, rmse)
	}
	diff, err := g.Diff(shift, vals)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(diff[0]-0.5) > 1e-10 {
		Te.Errorf("wrong difference: %f", diff[0])
	}
	//interpolating a constant field gives the constant anywhere inside
	v, err := g.Interpolate(vals, 0.93, 1.01, 0.37)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(v-2.0) > 1e-10 {
		Te.Errorf("interpolation of a constant field gave %f", v)
	}
}

func TestRadialProfile(Te *testing.T) {
	fmt.Println("Radial profile test!")
	g, err := Uniform([]float64{-1, -1, -1}, []int{21, 21, 21}, 0.1)
	if err != nil {
		Te.Fatal(err)
	}
	//a field that is exactly the distance from the center
	vals := make([]float64, g.Len())
	for n := range vals {
		x, y, z := g.Point(n)
		vals[n] = math.Sqrt(x*x + y*y + z*z)
	}
	r, avg, err := g.RadialProfile(vals, []float64{0, 0, 0}, 10, 1.0)
	if err != nil {
		Te.Fatal(err)
	}
	if len(r) != 10 || len(avg) != 10 {
		Te.Fatalf("expected 10 bins, got %d", len(r))
	}
	for i := range r {
		if math.IsNaN(avg[i]) {
			continue //an empty bin near the center is fine
		}
		//each bin's average distance stays within the bin
		if math.Abs(avg[i]-r[i]) > 0.1 {
			Te.Errorf("bin %d: average %f too far from bin center %f", i, avg[i], r[i])
		}
	}
}
