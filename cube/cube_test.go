/*
 * cube_test.go, part of godens.
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

package cube

import (
	"fmt"
	"math"
	"strings"
	"testing"

	dens "github.com/mvera/godens"
	"github.com/mvera/godens/grid"
	"gonum.org/v1/gonum/mat"
)

const rootdirtest = "../test"

func testDensity(Te *testing.T) (*dens.Molecule, *grid.Grid, []float64) {
	mol, err := dens.XYZFileRead(rootdirtest + "/water.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	g, err := grid.Bounds(mol.Coords[0], 2.0, 0.5)
	if err != nil {
		Te.Fatal(err)
	}
	vals := make([]float64, g.Len())
	for n := range vals {
		x, y, z := g.Point(n)
		vals[n] = math.Exp(-(x*x + y*y + z*z))
	}
	return mol, g, vals
}

//Writes a cube in odd-sized chunks and reads it back.
func TestCubeRoundTrip(Te *testing.T) {
	fmt.Println("Cube round trip test!")
	mol, g, vals := testDensity(Te)
	W, err := NewWriter(rootdirtest+"/test.cube", mol, mol.Coords[0], g, "round trip test")
	if err != nil {
		Te.Fatal(err)
	}
	//chunks that divide neither a line nor a z scan
	for i := 0; i < len(vals); i += 7 {
		end := i + 7
		if end > len(vals) {
			end = len(vals)
		}
		if err := W.WNext(vals[i:end]); err != nil {
			Te.Fatal(err)
		}
	}
	if err := W.Close(); err != nil {
		Te.Fatal(err)
	}
	mol2, g2, vals2, err := FileRead(rootdirtest + "/test.cube")
	if err != nil {
		Te.Fatal(err)
	}
	if mol2.Len() != mol.Len() {
		Te.Fatalf("round trip changed the atom count: %d vs %d", mol2.Len(), mol.Len())
	}
	if mol2.Atom(0).Z != 8 {
		Te.Errorf("first atom should be oxygen, got Z=%d", mol2.Atom(0).Z)
	}
	nx, ny, nz := g.Shape()
	nx2, ny2, nz2 := g2.Shape()
	if nx != nx2 || ny != ny2 || nz != nz2 {
		Te.Fatalf("round trip changed the shape: %d %d %d vs %d %d %d", nx2, ny2, nz2, nx, ny, nz)
	}
	ox, oy, oz := g.Origin()
	ox2, oy2, oz2 := g2.Origin()
	if math.Abs(ox-ox2) > 1e-5 || math.Abs(oy-oy2) > 1e-5 || math.Abs(oz-oz2) > 1e-5 {
		Te.Errorf("round trip moved the origin: %f %f %f vs %f %f %f", ox2, oy2, oz2, ox, oy, oz)
	}
	if len(vals2) != len(vals) {
		Te.Fatalf("read %d of %d values", len(vals2), len(vals))
	}
	for i := range vals {
		if math.Abs(vals[i]-vals2[i]) > 1e-4*math.Abs(vals[i])+1e-12 {
			Te.Fatalf("value %d changed: %g vs %g", i, vals2[i], vals[i])
		}
	}
	x1, y1, z1 := mol.Coord(0, 0)
	x2, y2, z2 := mol2.Coord(0, 0)
	if math.Abs(x1-x2) > 1e-5 || math.Abs(y1-y2) > 1e-5 || math.Abs(z1-z2) > 1e-5 {
		Te.Error("round trip moved the atoms")
	}
}

//Same as above but compressed, in one call.
func TestCubeGz(Te *testing.T) {
	fmt.Println("Compressed cube test!")
	mol, g, vals := testDensity(Te)
	err := FileWrite(rootdirtest+"/test.cube.gz", mol, mol.Coords[0], g, vals, "compressed test")
	if err != nil {
		Te.Fatal(err)
	}
	_, g2, vals2, err := FileRead(rootdirtest + "/test.cube.gz")
	if err != nil {
		Te.Fatal(err)
	}
	if g2.Len() != g.Len() || len(vals2) != len(vals) {
		Te.Fatal("compressed round trip lost data")
	}
	tot1, err := g.Integrate(vals)
	if err != nil {
		Te.Fatal(err)
	}
	tot2, err := g2.Integrate(vals2)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(tot1-tot2) > 1e-4*tot1 {
		Te.Errorf("integrals differ: %f vs %f", tot2, tot1)
	}
}

//Single-orbital cubes use a negative atom count, and negative voxel
//counts mean the file is already in Å; both are reader-side conventions
//this library never writes but must accept.
func TestCubeConventions(Te *testing.T) {
	fmt.Println("Cube conventions test!")
	orbital := `one hydrogen, one orbital, already in angstrom
OUTER LOOP: X, MIDDLE LOOP: Y, INNER LOOP: Z
   -1    0.000000    0.000000    0.000000
   -2    0.500000    0.000000    0.000000
   -2    0.000000    0.500000    0.000000
   -2    0.000000    0.000000    0.500000
    1    1.000000    0.100000    0.000000    0.000000
    1    1
 0.1 0.2 0.3 0.4 0.5 0.6
 0.7 0.8
`
	mol, g, vals, err := Read(strings.NewReader(orbital))
	if err != nil {
		Te.Fatal(err)
	}
	if mol.Len() != 1 || mol.Atom(0).Z != 1 {
		Te.Fatalf("wrong molecule from orbital cube: %d atoms", mol.Len())
	}
	//negative counts mean no Bohr conversion happens
	sx, _, _ := g.Step(0)
	if sx != 0.5 {
		Te.Errorf("angstrom-convention step got converted: %f", sx)
	}
	x, _, _ := mol.Coord(0, 0)
	if x != 0.1 {
		Te.Errorf("angstrom-convention coordinate got converted: %f", x)
	}
	if len(vals) != 8 || vals[7] != 0.8 {
		Te.Errorf("wrong values from orbital cube: %v", vals)
	}
	multi := strings.Replace(orbital, "    1    1\n", "    2    1    2\n", 1)
	if _, _, _, err := Read(strings.NewReader(multi)); err == nil {
		Te.Error("a multi-orbital cube should be refused")
	}
}

//A writer fed too few values must complain on Close, and one fed too
//many must complain on WNext.
func TestCubeAccounting(Te *testing.T) {
	fmt.Println("Cube accounting test!")
	mol, g, vals := testDensity(Te)
	W, err := NewWriter(rootdirtest+"/test_short.cube", mol, mol.Coords[0], g, "")
	if err != nil {
		Te.Fatal(err)
	}
	if err := W.WNext(vals[:10]); err != nil {
		Te.Fatal(err)
	}
	if err := W.Close(); err == nil {
		Te.Error("closing a half-written cube should be an error")
	}
	W, err = NewWriter(rootdirtest+"/test_long.cube", mol, mol.Coords[0], g, "")
	if err != nil {
		Te.Fatal(err)
	}
	if err := W.WNext(vals); err != nil {
		Te.Fatal(err)
	}
	if err := W.WNext(vals[:1]); err == nil {
		Te.Error("overfilling a cube should be an error")
	}
	W.Close()
}

//Close must report a failing final flush instead of swallowing it.
func TestCubeCloseFlushError(Te *testing.T) {
	fmt.Println("Cube close flush test!")
	at, err := dens.NewAtom("H")
	if err != nil {
		Te.Fatal(err)
	}
	top, err := dens.NewTopology([]*dens.Atom{at}, 0, 1)
	if err != nil {
		Te.Fatal(err)
	}
	coords := mat.NewDense(1, 3, []float64{0, 0, 0})
	g, err := grid.Uniform([]float64{0, 0, 0}, []int{2, 2, 2}, 0.5)
	if err != nil {
		Te.Fatal(err)
	}
	W, err := NewWriter(rootdirtest+"/test_flush.cube", top, coords, g, "")
	if err != nil {
		Te.Fatal(err)
	}
	if err := W.WNext(make([]float64, g.Len())); err != nil {
		Te.Fatal(err)
	}
	//everything still sits in the buffer; closing the file underneath
	//makes the final flush fail, and Close must say so
	W.f.Close()
	if err := W.Close(); err == nil {
		Te.Error("a failing flush should surface from Close")
	}
}
