/*
 * dx_test.go, part of godens.
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

package dx

import (
	"fmt"
	"math"
	"testing"

	"github.com/mvera/godens/grid"
)

const rootdirtest = "../test"

func TestDXRoundTrip(Te *testing.T) {
	fmt.Println("DX round trip test!")
	g, err := grid.Uniform([]float64{-2.5, -2.0, -3.0}, []int{8, 9, 10}, 0.4)
	if err != nil {
		Te.Fatal(err)
	}
	vals := make([]float64, g.Len())
	for n := range vals {
		x, y, z := g.Point(n)
		vals[n] = math.Exp(-(x*x + y*y + z*z))
	}
	if err := FileWrite(rootdirtest+"/test.dx", g, vals, "dx round trip"); err != nil {
		Te.Fatal(err)
	}
	g2, vals2, err := FileRead(rootdirtest + "/test.dx")
	if err != nil {
		Te.Fatal(err)
	}
	nx, ny, nz := g.Shape()
	nx2, ny2, nz2 := g2.Shape()
	if nx != nx2 || ny != ny2 || nz != nz2 {
		Te.Fatalf("round trip changed the shape: %d %d %d", nx2, ny2, nz2)
	}
	ox, oy, oz := g.Origin()
	ox2, oy2, oz2 := g2.Origin()
	if math.Abs(ox-ox2) > 1e-6 || math.Abs(oy-oy2) > 1e-6 || math.Abs(oz-oz2) > 1e-6 {
		Te.Errorf("round trip moved the origin: %f %f %f", ox2, oy2, oz2)
	}
	if len(vals2) != len(vals) {
		Te.Fatalf("read %d of %d values", len(vals2), len(vals))
	}
	for i := range vals {
		if math.Abs(vals[i]-vals2[i]) > 1e-5*math.Abs(vals[i])+1e-12 {
			Te.Fatalf("value %d changed: %g vs %g", i, vals2[i], vals[i])
		}
	}
}

//DX only does axis-aligned grids; a triclinic one must be refused.
func TestDXDiagonalOnly(Te *testing.T) {
	fmt.Println("DX diagonal-only test!")
	step := [3][3]float64{{0.4, 0.1, 0}, {0, 0.4, 0}, {0, 0, 0.4}}
	g, err := grid.NewRaw([3]float64{0, 0, 0}, [3]int{4, 4, 4}, step)
	if err != nil {
		Te.Fatal(err)
	}
	vals := make([]float64, g.Len())
	if err := FileWrite(rootdirtest+"/test_triclinic.dx", g, vals, ""); err == nil {
		Te.Error("a triclinic grid should be refused by the dx writer")
	}
}

//Compressed variant through the extension convention.
func TestDXZst(Te *testing.T) {
	fmt.Println("Compressed DX test!")
	g, err := grid.Uniform([]float64{0, 0, 0}, []int{5, 5, 5}, 0.3)
	if err != nil {
		Te.Fatal(err)
	}
	vals := make([]float64, g.Len())
	for i := range vals {
		vals[i] = float64(i) * 0.01
	}
	if err := FileWrite(rootdirtest+"/test.dx.zst", g, vals, ""); err != nil {
		Te.Fatal(err)
	}
	_, vals2, err := FileRead(rootdirtest + "/test.dx.zst")
	if err != nil {
		Te.Fatal(err)
	}
	if len(vals2) != len(vals) {
		Te.Fatal("compressed round trip lost values")
	}
	if math.Abs(vals2[100]-1.0) > 1e-6 {
		Te.Errorf("wrong value read back: %f", vals2[100])
	}
}

//Close must report a failing final flush instead of swallowing it.
func TestDXCloseFlushError(Te *testing.T) {
	fmt.Println("DX close flush test!")
	g, err := grid.Uniform([]float64{0, 0, 0}, []int{2, 2, 2}, 0.5)
	if err != nil {
		Te.Fatal(err)
	}
	W, err := NewWriter(rootdirtest+"/test_flush.dx", g, "")
	if err != nil {
		Te.Fatal(err)
	}
	if err := W.WNext(make([]float64, g.Len())); err != nil {
		Te.Fatal(err)
	}
	//the header and data still sit in the buffer; closing the file
	//underneath makes the final flush fail, and Close must say so
	W.f.Close()
	if err := W.Close(); err == nil {
		Te.Error("a failing flush should surface from Close")
	}
}
