/*
 * atom.go, part of godens.
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

package dens

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

/**Note: Some functions here panic instead of returning errors. This is because they are
 * "fundamental" functions; if something goes wrong in them, the program is way-most likely
 * wrong and should crash. Panics are related to using a function on a nil object or
 * accessing out-of-bounds fields**/

//Atom contains the per-atom info except for the coordinates, which live
//in a separate matrix so a molecule can have many geometries.
type Atom struct {
	Name   string  //PDB-style name, if any
	Id     int     //The atom's serial number
	Symbol string  //Chemical element symbol
	Z      int     //Atomic number, 0 if unknown
	Mass   float64 //in Dalton
	Charge float64 //Partial charge, in e
	Vdw    float64 //van der Waals radius, in A
}

//Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("dens: attempted to copy a nil Atom")
	}
	N := new(Atom)
	*N = *A
	return N
}

//NewAtom returns an atom of the given element with the data the library
//knows about that element (Z, mass, vdW radius) filled in. It returns an
//error if the symbol is not in the library's tables.
func NewAtom(symbol string) (*Atom, error) {
	z, ok := symbolZ[symbol]
	if !ok {
		return nil, cErrorf("NewAtom", "unknown element symbol: %s", symbol)
	}
	at := new(Atom)
	at.Symbol = symbol
	at.Z = z
	at.Mass = symbolMass[symbol]
	at.Vdw = symbolVdwrad[symbol]
	return at, nil
}

/*****Topology type***/

//Topology contains information about a molecule which is not expected to change in
//time (i.e. everything except for coordinates).
type Topology struct {
	Atoms    []*Atom
	charge   int
	multi    int
}

//NewTopology makes a topology from ats atoms, with the given total charge
//and multiplicity. It returns an error if ats is nil.
func NewTopology(ats []*Atom, charge, multi int) (*Topology, error) {
	if ats == nil {
		return nil, cError("nil atoms supplied", "NewTopology")
	}
	if multi < 1 {
		multi = 1
	}
	top := new(Topology)
	top.Atoms = ats
	top.charge = charge
	top.multi = multi
	return top, nil
}

//Charge gets the total charge of the topology
func (T *Topology) Charge() int {
	return T.charge
}

//Multi returns the multiplicity of the topology
func (T *Topology) Multi() int {
	return T.multi
}

//SetCharge sets the total charge of the topology to i
func (T *Topology) SetCharge(i int) {
	T.charge = i
}

//SetMulti sets the multiplicity of the topology to i
func (T *Topology) SetMulti(i int) {
	T.multi = i
}

//Atom returns the Atom corresponding to the index i of the Atom slice in
//the Topology. Panics if out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() {
		panic("dens: requested Atom out of bounds")
	}
	return T.Atoms[i]
}

//SetAtom sets the (i+1)th Atom of the topology to at. Panics if out of range.
func (T *Topology) SetAtom(i int, at *Atom) {
	if i >= T.Len() {
		panic("dens: tried to set Atom out of bounds")
	}
	T.Atoms[i] = at
}

//Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

//Masses returns a slice with the masses of all atoms, and an error if
//any of them has not been assigned.
func (T *Topology) Masses() ([]float64, error) {
	mass := make([]float64, T.Len())
	for i := 0; i < T.Len(); i++ {
		at := T.Atom(i)
		if at.Mass == 0 {
			return nil, cErrorf("Masses", "not all the masses have been obtained: %d %v", i, at)
		}
		mass[i] = at.Mass
	}
	return mass, nil
}

//ZNumbers returns a slice with the atomic numbers of all atoms, and an
//error if any of them is unknown.
func (T *Topology) ZNumbers() ([]int, error) {
	zs := make([]int, T.Len())
	for i := 0; i < T.Len(); i++ {
		at := T.Atom(i)
		if at.Z == 0 {
			return nil, cErrorf("ZNumbers", "atom %d (%s) has no atomic number assigned", i, at.Symbol)
		}
		zs[i] = at.Z
	}
	return zs, nil
}

//CopyAtoms returns a copy of the topology.
func (T *Topology) CopyAtoms() *Topology {
	N := new(Topology)
	N.Atoms = make([]*Atom, T.Len())
	for key, val := range T.Atoms {
		N.Atoms[key] = val.Copy()
	}
	N.charge = T.charge
	N.multi = T.multi
	return N
}

/**Type Molecule**/

//Molecule contains the topology for a molecule plus any number of geometries
//for it, each a N x 3 matrix of Ångström coordinates.
type Molecule struct {
	*Topology
	Coords []*mat.Dense
}

//NewMolecule makes a molecule from a topology and a slice of coordinate
//matrices. It returns an error if something is nil or the sizes are
//inconsistent.
func NewMolecule(top *Topology, coords []*mat.Dense) (*Molecule, error) {
	if top == nil {
		return nil, cError("nil topology supplied", "NewMolecule")
	}
	if coords == nil {
		return nil, cError("nil coords supplied", "NewMolecule")
	}
	M := new(Molecule)
	M.Topology = top
	M.Coords = coords
	if err := M.Corrupted(); err != nil {
		return nil, errDecorate(err, "NewMolecule")
	}
	return M, nil
}

//Corrupted checks whether the molecule is corrupted, i.e. the coordinates
//don't match the number of atoms, or a coordinate matrix doesn't have 3 columns.
func (M *Molecule) Corrupted() error {
	for i, v := range M.Coords {
		r, c := v.Dims()
		if M.Len() != r || c != 3 {
			return cErrorf("Corrupted", "inconsistent coordinates/atoms in frame %d: atoms %d, coords: %d x %d", i, M.Len(), r, c)
		}
	}
	return nil
}

//Copy returns a copy of the molecule including coordinates.
func (M *Molecule) Copy() *Molecule {
	if err := M.Corrupted(); err != nil {
		panic(fmt.Sprintf("dens: copying a corrupted molecule: %s", err.Error()))
	}
	N := new(Molecule)
	N.Topology = M.CopyAtoms()
	N.Coords = make([]*mat.Dense, 0, len(M.Coords))
	for _, v := range M.Coords {
		c := mat.DenseCopyOf(v)
		N.Coords = append(N.Coords, c)
	}
	return N
}

//Coord returns the x, y, z coordinates for the atom atom in the frame
//frame. Panics if out of range.
func (M *Molecule) Coord(atom, frame int) (float64, float64, float64) {
	if frame >= len(M.Coords) {
		panic(fmt.Sprintf("dens: frame requested (%d) out of range", frame))
	}
	c := M.Coords[frame]
	r, _ := c.Dims()
	if atom >= r {
		panic(fmt.Sprintf("dens: requested coordinate (%d) out of bounds (%d)", atom, r))
	}
	return c.At(atom, 0), c.At(atom, 1), c.At(atom, 2)
}

//LenFrames returns the number of geometries in the molecule.
func (M *Molecule) LenFrames() int {
	return len(M.Coords)
}

//AddFrame takes a matrix of coordinates and appends it at the end of
//Coords. It panics if the number of coordinates doesn't match the number
//of atoms.
func (M *Molecule) AddFrame(newframe *mat.Dense) {
	if newframe == nil {
		panic("dens: attempted to add nil frame")
	}
	r, c := newframe.Dims()
	if c != 3 {
		panic("dens: malformed coord matrix")
	}
	if M.Len() != r {
		panic(fmt.Sprintf("dens: wrong number of coordinates (%d)", r))
	}
	M.Coords = append(M.Coords, newframe)
}
