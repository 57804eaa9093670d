/*
 * dens_test.go, part of godens.
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

package dens

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

//Reads a water molecule and checks the topology and coordinates.
func TestXYZRead(Te *testing.T) {
	fmt.Println("XYZ read test!")
	mol, err := XYZFileRead("test/water.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	if mol.Len() != 3 {
		Te.Errorf("expected 3 atoms, got %d", mol.Len())
	}
	if mol.Atom(0).Symbol != "O" || mol.Atom(1).Symbol != "H" {
		Te.Error("wrong element symbols read")
	}
	if mol.Atom(0).Z != 8 {
		Te.Errorf("oxygen should have Z=8, got %d", mol.Atom(0).Z)
	}
	_, y, _ := mol.Coord(1, 0)
	if math.Abs(y-0.7572) > 1e-6 {
		Te.Errorf("wrong coordinate read: %f", y)
	}
	fmt.Println("read molecule with", mol.Len(), "atoms")
}

//Writes the molecule back and re-reads it.
func TestXYZWrite(Te *testing.T) {
	fmt.Println("XYZ write test!")
	mol, err := XYZFileRead("test/water.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	err = XYZFileWrite("test/water_out.xyz", mol.Coords[0], mol)
	if err != nil {
		Te.Error(err)
	}
	mol2, err := XYZFileRead("test/water_out.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	if mol2.Len() != mol.Len() {
		Te.Fatalf("round trip changed the atom count: %d vs %d", mol2.Len(), mol.Len())
	}
	for i := 0; i < mol.Len(); i++ {
		x1, y1, z1 := mol.Coord(i, 0)
		x2, y2, z2 := mol2.Coord(i, 0)
		if math.Abs(x1-x2) > 1e-6 || math.Abs(y1-y2) > 1e-6 || math.Abs(z1-z2) > 1e-6 {
			Te.Errorf("round trip changed atom %d", i)
		}
	}
}

//Concatenated geometries become frames of one molecule; a changed atom
//count between them, or no geometry at all, is an error.
func TestXYZConcatenation(Te *testing.T) {
	fmt.Println("XYZ concatenation test!")
	two := `3
first
O     0.000000    0.000000    0.117300
H     0.000000    0.757200   -0.469200
H     0.000000   -0.757200   -0.469200
3
second
O     0.000000    0.000000    1.117300
H     0.000000    0.757200    0.530800
H     0.000000   -0.757200    0.530800
`
	mol, err := XYZRead(strings.NewReader(two))
	if err != nil {
		Te.Fatal(err)
	}
	if mol.LenFrames() != 2 {
		Te.Fatalf("expected 2 frames, got %d", mol.LenFrames())
	}
	if mol.Len() != 3 {
		Te.Errorf("expected 3 atoms, got %d", mol.Len())
	}
	_, _, z := mol.Coord(0, 1)
	if math.Abs(z-1.1173) > 1e-6 {
		Te.Errorf("wrong second-frame coordinate: %f", z)
	}
	mismatch := `3
first
O     0.000000    0.000000    0.117300
H     0.000000    0.757200   -0.469200
H     0.000000   -0.757200   -0.469200
2
second
O     0.000000    0.000000    1.117300
H     0.000000    0.757200    0.530800
`
	if _, err := XYZRead(strings.NewReader(mismatch)); err == nil {
		Te.Error("a changed atom count between geometries should be an error")
	}
	if _, err := XYZRead(strings.NewReader("")); err == nil {
		Te.Error("empty input should be an error")
	}
	if _, err := XYZRead(strings.NewReader("\n\n")); err == nil {
		Te.Error("blank input should be an error")
	}
}

func TestCenters(Te *testing.T) {
	fmt.Println("Geometric centers test!")
	mol, err := XYZFileRead("test/water.xyz")
	if err != nil {
		Te.Fatal(err)
	}
	cog, err := CenterOfGeometry(mol.Coords[0])
	if err != nil {
		Te.Error(err)
	}
	if math.Abs(cog[0]) > 1e-10 || math.Abs(cog[1]) > 1e-10 {
		Te.Errorf("water's center of geometry should sit on the z axis: %v", cog)
	}
	com, err := CenterOfMass(mol.Coords[0], mol)
	if err != nil {
		Te.Error(err)
	}
	//the center of mass leans towards the oxygen
	if com[2] < cog[2] {
		Te.Errorf("center of mass %v should be above center of geometry %v", com, cog)
	}
	fmt.Println("cog", cog, "com", com)
}

func TestTopology(Te *testing.T) {
	fmt.Println("Topology test!")
	at, err := NewAtom("C")
	if err != nil {
		Te.Fatal(err)
	}
	if at.Z != 6 || at.Mass < 12 || at.Mass > 12.5 {
		Te.Errorf("carbon built wrong: %+v", at)
	}
	if _, err := NewAtom("Xx"); err == nil {
		Te.Error("an unknown element should be an error")
	}
	top, err := NewTopology([]*Atom{at, at.Copy()}, -1, 2)
	if err != nil {
		Te.Fatal(err)
	}
	if top.Charge() != -1 || top.Multi() != 2 {
		Te.Error("charge/multiplicity not kept")
	}
	zs, err := top.ZNumbers()
	if err != nil {
		Te.Error(err)
	}
	if len(zs) != 2 || zs[0] != 6 {
		Te.Errorf("wrong atomic numbers: %v", zs)
	}
}
