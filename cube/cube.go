/*
 * cube.go, part of godens.
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

//Package cube reads and writes Gaussian cube files, the lingua franca for
//molecular volumetric data. Writing is incremental: the header goes out
//first and density values are appended in grid-flat order as they are
//produced, so a density predicted chunk by chunk is never fully held in
//memory. Files named *.gz or *.zst are compressed and decompressed
//transparently, as godens' other text formats do.
//
//Cube files are in atomic units. The package converts from and to the
//library's Ångström convention at this boundary.
package cube

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	dens "github.com/mvera/godens"
	"github.com/mvera/godens/grid"
	"gonum.org/v1/gonum/mat"
)

const valsPerLine = 6

//Writer streams density values into a cube file. The header (atoms, grid
//shape, origin, comments) is written on creation; values are then
//appended with WNext in row-major grid order (x slowest, z fastest), and
//Close verifies that exactly one value per voxel was given.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	w         *bufio.Writer
	g         *grid.Grid
	nz        int
	written   int
	filename  string
	writeable bool
}

//NewWriter creates name, writes the cube header for the given molecule
//and grid, and returns a Writer ready to receive values. The comment goes
//in the first line of the file. Coordinates and grid are taken in Å and
//written in Bohr.
func NewWriter(name string, atoms dens.Atomer, coords *mat.Dense, g *grid.Grid, comment string) (*Writer, error) {
	if atoms == nil || coords == nil || g == nil {
		return nil, Error{NilData, name, []string{"NewWriter"}, true}
	}
	r, c := coords.Dims()
	if r != atoms.Len() || c != 3 {
		return nil, Error{fmt.Sprintf("%d atoms but a %d x %d coordinate matrix", atoms.Len(), r, c), name, []string{"NewWriter"}, true}
	}
	W := new(Writer)
	var err error
	W.f, err = os.Create(name)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"NewWriter"}, true}
	}
	W.h, err = compressor(W.f, name)
	if err != nil {
		W.f.Close()
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	W.w = bufio.NewWriter(W.h)
	W.g = g
	_, _, W.nz = g.Shape()
	W.filename = name
	W.writeable = true
	if err := W.header(atoms, coords, comment); err != nil {
		W.f.Close()
		return nil, errDecorate(err, "NewWriter")
	}
	return W, nil
}

func (W *Writer) header(atoms dens.Atomer, coords *mat.Dense, comment string) error {
	if comment == "" {
		comment = "electron density"
	}
	comment = strings.ReplaceAll(comment, "\n", " ")
	fmt.Fprintf(W.w, "%s\n", comment)
	fmt.Fprintf(W.w, "OUTER LOOP: X, MIDDLE LOOP: Y, INNER LOOP: Z\n")
	ox, oy, oz := W.g.Origin()
	fmt.Fprintf(W.w, "%5d%12.6f%12.6f%12.6f\n", atoms.Len(), ox*dens.A2Bohr, oy*dens.A2Bohr, oz*dens.A2Bohr)
	nx, ny, nz := W.g.Shape()
	shape := []int{nx, ny, nz}
	for axis := 0; axis < 3; axis++ {
		sx, sy, sz := W.g.Step(axis)
		fmt.Fprintf(W.w, "%5d%12.6f%12.6f%12.6f\n", shape[axis], sx*dens.A2Bohr, sy*dens.A2Bohr, sz*dens.A2Bohr)
	}
	for i := 0; i < atoms.Len(); i++ {
		at := atoms.Atom(i)
		z := at.Z
		if z == 0 {
			z = dens.SymbolZ(at.Symbol)
		}
		if z == 0 {
			return Error{fmt.Sprintf("atom %d (%s) has no atomic number", i, at.Symbol), W.filename, []string{"header"}, true}
		}
		fmt.Fprintf(W.w, "%5d%12.6f%12.6f%12.6f%12.6f\n", z, float64(z),
			coords.At(i, 0)*dens.A2Bohr, coords.At(i, 1)*dens.A2Bohr, coords.At(i, 2)*dens.A2Bohr)
	}
	return nil
}

//WNext appends the given values to the file, in grid-flat order. It can
//be called any number of times with chunks of any size; the format's line
//breaks (6 values per line, and a break at the end of every z scan) are
//taken care of here. It returns an error if more values arrive than the
//grid has voxels.
func (W *Writer) WNext(vals []float64) error {
	if !W.writeable {
		return Error{UnInitializedWrite, W.filename, []string{"WNext"}, true}
	}
	total := W.g.Len()
	if W.written+len(vals) > total {
		return Error{fmt.Sprintf("too many values: grid has %d voxels", total), W.filename, []string{"WNext"}, true}
	}
	for _, v := range vals {
		fmt.Fprintf(W.w, " %12.5E", v)
		W.written++
		//a line holds up to 6 values and never crosses a z-scan boundary
		if p := W.written % W.nz; p == 0 || p%valsPerLine == 0 {
			W.w.WriteByte('\n')
		}
	}
	return nil
}

//Close flushes and closes the file. It returns an error if fewer values
//were written than the grid has voxels, or if the final flush fails; the
//file is closed regardless, so the partial output stays inspectable.
func (W *Writer) Close() error {
	if W == nil || !W.writeable {
		return nil
	}
	W.writeable = false
	var err error
	if W.written != W.g.Len() {
		err = Error{fmt.Sprintf("wrote %d of %d values", W.written, W.g.Len()), W.filename, []string{"Close"}, true}
	}
	if e := W.w.Flush(); e != nil && err == nil {
		err = Error{"can't flush: " + e.Error(), W.filename, []string{"Close"}, true}
	}
	if e := W.h.Close(); e != nil && err == nil {
		err = Error{"can't close: " + e.Error(), W.filename, []string{"Close"}, true}
	}
	W.f.Close()
	return err
}

//Len returns the number of values the full grid needs.
func (W *Writer) Len() int {
	if W == nil || W.g == nil {
		return 0
	}
	return W.g.Len()
}

//FileWrite writes a complete cube file in one call.
func FileWrite(name string, atoms dens.Atomer, coords *mat.Dense, g *grid.Grid, vals []float64, comment string) error {
	if g != nil && len(vals) != g.Len() {
		return Error{fmt.Sprintf("%d values for a %d-voxel grid", len(vals), g.Len()), name, []string{"FileWrite"}, true}
	}
	W, err := NewWriter(name, atoms, coords, g, comment)
	if err != nil {
		return errDecorate(err, "FileWrite")
	}
	if err := W.WNext(vals); err != nil {
		W.Close()
		return errDecorate(err, "FileWrite")
	}
	return W.Close()
}

//FileRead reads a cube file, compressed or not, and returns the molecule,
//the grid (in Å) and the values in grid-flat order. Both the Bohr (positive
//voxel counts) and Ångström (negative counts) conventions are handled, as
//is the negative-atom-count convention for single-orbital cubes.
func FileRead(name string) (*dens.Molecule, *grid.Grid, []float64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"FileRead"}, true}
	}
	defer f.Close()
	h, err := decompressor(f, name)
	if err != nil {
		return nil, nil, nil, Error{err.Error(), name, []string{"FileRead"}, true}
	}
	defer h.Close()
	mol, g, vals, err := Read(h)
	if err != nil {
		e, ok := err.(Error)
		if ok {
			e.filename = name
			return nil, nil, nil, e
		}
		return nil, nil, nil, err
	}
	return mol, g, vals, nil
}

//Read reads an uncompressed cube stream. See FileRead.
func Read(r io.Reader) (*dens.Molecule, *grid.Grid, []float64, error) {
	buf := bufio.NewReader(r)
	//two comment lines
	for i := 0; i < 2; i++ {
		if _, err := buf.ReadString('\n'); err != nil {
			return nil, nil, nil, Error{ShortFile, "", []string{"Read"}, true}
		}
	}
	natoms, origin, err := headerLine(buf)
	if err != nil {
		return nil, nil, nil, errDecorate(err, "Read")
	}
	orbitals := false
	if natoms < 0 {
		orbitals = true
		natoms = -natoms
	}
	var shape [3]int
	var step [3][3]float64
	unit := dens.Bohr2A
	for axis := 0; axis < 3; axis++ {
		n, v, err := headerLine(buf)
		if err != nil {
			return nil, nil, nil, errDecorate(err, "Read")
		}
		if n < 0 { //negative counts mean the file is already in Å
			n = -n
			unit = 1.0
		}
		shape[axis] = n
		step[axis] = v
	}
	for axis := 0; axis < 3; axis++ {
		for j := 0; j < 3; j++ {
			step[axis][j] *= unit
		}
	}
	for j := 0; j < 3; j++ {
		origin[j] *= unit
	}
	g, err := grid.NewRaw(origin, shape, step)
	if err != nil {
		return nil, nil, nil, errDecorate(err, "Read")
	}
	ats := make([]*dens.Atom, natoms)
	coords := make([]float64, natoms*3)
	for i := 0; i < natoms; i++ {
		line, err := buf.ReadString('\n')
		if err != nil {
			return nil, nil, nil, Error{ShortFile, "", []string{"Read"}, true}
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return nil, nil, nil, Error{fmt.Sprintf("atom line %d ill-formed: %q", i, strings.TrimSpace(line)), "", []string{"Read"}, true}
		}
		z, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, nil, nil, Error{fmt.Sprintf("can't parse atomic number in atom line %d", i), "", []string{"Read"}, true}
		}
		at := new(dens.Atom)
		at.Id = i + 1
		at.Z = z
		at.Symbol = dens.ZSymbol(z)
		at.Mass = dens.SymbolMass(at.Symbol)
		at.Vdw = dens.SymbolVdw(at.Symbol)
		at.Charge, _ = strconv.ParseFloat(fields[1], 64) //the nuclear charge column
		ats[i] = at
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(fields[2+j], 64)
			if err != nil {
				return nil, nil, nil, Error{fmt.Sprintf("can't parse coordinate %d in atom line %d", j, i), "", []string{"Read"}, true}
			}
			coords[i*3+j] = v * unit
		}
	}
	if orbitals {
		//only single-orbital cubes are supported; the orbital list line is consumed.
		line, err := buf.ReadString('\n')
		if err != nil {
			return nil, nil, nil, Error{ShortFile, "", []string{"Read"}, true}
		}
		fields := strings.Fields(line)
		if len(fields) < 1 || fields[0] != "1" {
			return nil, nil, nil, Error{"multi-orbital cube files are not supported", "", []string{"Read"}, true}
		}
	}
	vals := make([]float64, 0, g.Len())
	scanner := bufio.NewScanner(buf)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, nil, nil, Error{"can't parse density value: " + scanner.Text(), "", []string{"Read"}, true}
		}
		vals = append(vals, v)
		if len(vals) > g.Len() {
			return nil, nil, nil, Error{"more values than grid voxels", "", []string{"Read"}, true}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, nil, Error{err.Error(), "", []string{"Read"}, true}
	}
	if len(vals) != g.Len() {
		return nil, nil, nil, Error{fmt.Sprintf("read %d of %d values", len(vals), g.Len()), "", []string{"Read"}, true}
	}
	top, err := dens.NewTopology(ats, 0, 1)
	if err != nil {
		return nil, nil, nil, errDecorate(err, "Read")
	}
	mol, err := dens.NewMolecule(top, []*mat.Dense{mat.NewDense(natoms, 3, coords)})
	if err != nil {
		return nil, nil, nil, errDecorate(err, "Read")
	}
	return mol, g, vals, nil
}

//parses a "%5d%12.6f%12.6f%12.6f" header line.
func headerLine(buf *bufio.Reader) (int, [3]float64, error) {
	var v [3]float64
	line, err := buf.ReadString('\n')
	if err != nil {
		return 0, v, Error{ShortFile, "", []string{"headerLine"}, true}
	}
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return 0, v, Error{fmt.Sprintf("header line ill-formed: %q", strings.TrimSpace(line)), "", []string{"headerLine"}, true}
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		//Gaussian sometimes writes the count as a float
		fn, err2 := strconv.ParseFloat(fields[0], 64)
		if err2 != nil {
			return 0, v, Error{"can't parse header count: " + fields[0], "", []string{"headerLine"}, true}
		}
		n = int(fn)
	}
	for j := 0; j < 3; j++ {
		v[j], err = strconv.ParseFloat(fields[1+j], 64)
		if err != nil {
			return 0, v, Error{"can't parse header value: " + fields[1+j], "", []string{"headerLine"}, true}
		}
	}
	return n, v, nil
}

//compression plumbing, shared with the dx package through the same
//extension convention.

type nopWCloser struct{ io.Writer }

func (nopWCloser) Close() error { return nil }

//zstd.Decoder doesn't implement io.ReadCloser, as Close returns nothing.
type zstdql struct {
	closeql func()
	*zstd.Decoder
}

func (z zstdql) Close() error {
	z.closeql()
	return nil
}

func compressor(w io.Writer, name string) (io.WriteCloser, error) {
	switch filepath.Ext(name) {
	case ".gz":
		return gzip.NewWriter(w), nil
	case ".zst":
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	default:
		return nopWCloser{w}, nil
	}
}

func decompressor(r io.Reader, name string) (io.ReadCloser, error) {
	switch filepath.Ext(name) {
	case ".gz":
		return gzip.NewReader(r)
	case ".zst":
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdql{d.Close, d}, nil
	default:
		return io.NopCloser(r), nil
	}
}

//Errors

//errDecorate asserts that the error implements dens.Error and decorates
//it with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2, ok := err.(dens.Error)
	if !ok {
		return Error{err.Error(), "", []string{caller}, true}
	}
	err2.Decorate(caller)
	return err2
}

//Error is the error type for cube files. It fulfills dens.Error and
//dens.VolError.
type Error struct {
	message  string
	filename string //the problematic file, or empty if none
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("cube file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file associated to the error.
func (err Error) FileName() string { return err.filename }

//Format returns the format of the file associated to the error (always "cube").
func (err Error) Format() string { return "cube" }

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

const (
	NilData            = "nil data given"
	UnableToOpen       = "unable to open file"
	UnInitializedWrite = "cube writer uninitialized or closed"
	ShortFile          = "file ends before the format does"
)
