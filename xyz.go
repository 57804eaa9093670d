/*
 * xyz.go, part of godens.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//XYZFileRead reads an xyz file and returns a molecule. If the file
//contains several concatenated geometries for the same atoms, all of
//them are read, as frames of the same molecule.
func XYZFileRead(xyzname string) (*Molecule, error) {
	f, err := os.Open(xyzname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	mol, err := XYZRead(f)
	if err != nil {
		return nil, errDecorate(err, "XYZFileRead "+xyzname)
	}
	return mol, nil
}

//XYZRead reads an xyz-formatted geometry, or a concatenation of them,
//from the reader, and returns a molecule.
func XYZRead(r io.Reader) (*Molecule, error) {
	buf := bufio.NewReader(r)
	var mol *Molecule
	for {
		ats, coords, err := xyzReadFrame(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errDecorate(err, "XYZRead")
		}
		if mol == nil {
			top, err := NewTopology(ats, 0, 1)
			if err != nil {
				return nil, errDecorate(err, "XYZRead")
			}
			mol, err = NewMolecule(top, []*mat.Dense{coords})
			if err != nil {
				return nil, errDecorate(err, "XYZRead")
			}
			continue
		}
		if len(ats) != mol.Len() {
			return nil, cErrorf("XYZRead", "atom count changed between concatenated geometries: %d vs %d", mol.Len(), len(ats))
		}
		mol.AddFrame(coords)
	}
	if mol == nil {
		return nil, cError("empty xyz input", "XYZRead")
	}
	return mol, nil
}

//reads one natoms/comment/atoms block. Returns io.EOF, untouched, if the
//input ends cleanly before the block starts.
func xyzReadFrame(buf *bufio.Reader) ([]*Atom, *mat.Dense, error) {
	line, err := buf.ReadString('\n')
	if err != nil {
		if err == io.EOF && strings.TrimSpace(line) == "" {
			return nil, nil, io.EOF
		}
		return nil, nil, cError("ill-formatted XYZ input: "+err.Error(), "xyzReadFrame")
	}
	if strings.TrimSpace(line) == "" {
		//a stray blank line between geometries
		return xyzReadFrame(buf)
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || natoms <= 0 {
		return nil, nil, cErrorf("xyzReadFrame", "ill-formatted XYZ input, bad atom count: %q", strings.TrimSpace(line))
	}
	if _, err := buf.ReadString('\n'); err != nil && err != io.EOF {
		return nil, nil, cError("ill-formatted XYZ input: "+err.Error(), "xyzReadFrame")
	}
	ats := make([]*Atom, natoms)
	coords := make([]float64, natoms*3)
	for i := 0; i < natoms; i++ {
		line, err = buf.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, nil, cError("ill-formatted XYZ input: "+err.Error(), "xyzReadFrame")
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, nil, cErrorf("xyzReadFrame", "atom line %d ill-formed: %q", i, strings.TrimSpace(line))
		}
		at, err2 := NewAtom(fields[0])
		if err2 != nil {
			//We keep atoms of unknown elements, they just carry no data.
			at = &Atom{Symbol: fields[0]}
		}
		at.Id = i + 1
		ats[i] = at
		for j := 0; j < 3; j++ {
			coords[i*3+j], err2 = strconv.ParseFloat(fields[j+1], 64)
			if err2 != nil {
				return nil, nil, cErrorf("xyzReadFrame", "can't parse coordinate %d of atom %d: %s", j, i, err2.Error())
			}
		}
	}
	return ats, mat.NewDense(natoms, 3, coords), nil
}

//XYZFileWrite writes the frame frame of the molecule mol to an XYZ file
//with name xyzname, which will be created. If the file exists it will be
//overwritten.
func XYZFileWrite(xyzname string, coords *mat.Dense, mol Atomer) error {
	out, err := os.Create(xyzname)
	if err != nil {
		return err
	}
	defer out.Close()
	err = XYZWrite(out, coords, mol)
	if err != nil {
		return errDecorate(err, "XYZFileWrite "+xyzname)
	}
	return nil
}

//XYZWrite writes the molecule mol with coordinates coords, in XYZ format,
//to the given writer.
func XYZWrite(out io.Writer, coords *mat.Dense, mol Atomer) error {
	if mol == nil || coords == nil {
		return cError("nil molecule or coordinates", "XYZWrite")
	}
	r, c := coords.Dims()
	if r != mol.Len() || c != 3 {
		return cErrorf("XYZWrite", "mismatched molecule (%d atoms) and coordinates (%d x %d)", mol.Len(), r, c)
	}
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "%-4d\n\n", mol.Len())
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		_, err := fmt.Fprintf(w, "%-2s  %12.6f  %12.6f  %12.6f\n", at.Symbol, coords.At(i, 0), coords.At(i, 1), coords.At(i, 2))
		if err != nil {
			return cError(err.Error(), "XYZWrite")
		}
	}
	if err := w.Flush(); err != nil {
		return cError(err.Error(), "XYZWrite")
	}
	return nil
}
