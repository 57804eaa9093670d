/*
 * dx.go, part of godens.
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

//Package dx writes and reads OpenDX scalar fields in the "regular
//positions, regular connections" form that APBS and most visualization
//programs use. Only axis-aligned grids can be represented. Everything is
//in Ångström, the usual convention for the format in molecular work.
//
//The value ordering is the same grid-flat ordering of the cube format
//(x slowest, z fastest), so the two packages can be fed from the same
//stream. Files named *.gz or *.zst are handled transparently.
package dx

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
)

const valsPerLine = 3

//Writer streams values into a DX file. Same incremental contract as
//cube.Writer: header on creation, WNext in grid-flat order, Close checks
//the count and writes the closing field object.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	w         *bufio.Writer
	g         *grid.Grid
	written   int
	filename  string
	writeable bool
}

//NewWriter creates name and writes the DX header for the grid. The
//comment, if any, goes in "#" lines at the top. It returns an error for
//non-axis-aligned grids, which the format can't hold.
func NewWriter(name string, g *grid.Grid, comment string) (*Writer, error) {
	if g == nil {
		return nil, Error{"nil grid given", name, []string{"NewWriter"}, true}
	}
	if !g.Diagonal() {
		return nil, Error{"the dx format requires an axis-aligned grid", name, []string{"NewWriter"}, true}
	}
	W := new(Writer)
	var err error
	W.f, err = os.Create(name)
	if err != nil {
		return nil, Error{"unable to open file: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	W.h, err = compressor(W.f, name)
	if err != nil {
		W.f.Close()
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	W.w = bufio.NewWriter(W.h)
	W.g = g
	W.filename = name
	W.writeable = true
	for _, l := range strings.Split(comment, "\n") {
		if l != "" {
			fmt.Fprintf(W.w, "# %s\n", l)
		}
	}
	nx, ny, nz := g.Shape()
	ox, oy, oz := g.Origin()
	fmt.Fprintf(W.w, "object 1 class gridpositions counts %d %d %d\n", nx, ny, nz)
	fmt.Fprintf(W.w, "origin %.6e %.6e %.6e\n", ox, oy, oz)
	for axis := 0; axis < 3; axis++ {
		sx, sy, sz := g.Step(axis)
		fmt.Fprintf(W.w, "delta %.6e %.6e %.6e\n", sx, sy, sz)
	}
	fmt.Fprintf(W.w, "object 2 class gridconnections counts %d %d %d\n", nx, ny, nz)
	fmt.Fprintf(W.w, "object 3 class array type double rank 0 items %d data follows\n", g.Len())
	return W, nil
}

//WNext appends values in grid-flat order, three per line.
func (W *Writer) WNext(vals []float64) error {
	if !W.writeable {
		return Error{"dx writer uninitialized or closed", W.filename, []string{"WNext"}, true}
	}
	if W.written+len(vals) > W.g.Len() {
		return Error{fmt.Sprintf("too many values: grid has %d voxels", W.g.Len()), W.filename, []string{"WNext"}, true}
	}
	for _, v := range vals {
		fmt.Fprintf(W.w, "%.6e ", v)
		W.written++
		if W.written%valsPerLine == 0 {
			W.w.WriteByte('\n')
		}
	}
	return nil
}

//Close writes the trailing field object, flushes and closes. An error is
//returned if the value count doesn't match the grid, or if the final
//flush fails.
func (W *Writer) Close() error {
	if W == nil || !W.writeable {
		return nil
	}
	W.writeable = false
	var err error
	if W.written != W.g.Len() {
		err = Error{fmt.Sprintf("wrote %d of %d values", W.written, W.g.Len()), W.filename, []string{"Close"}, true}
	}
	if W.written%valsPerLine != 0 {
		W.w.WriteByte('\n')
	}
	fmt.Fprintf(W.w, "attribute \"dep\" string \"positions\"\n")
	fmt.Fprintf(W.w, "object \"regular positions regular connections\" class field\n")
	fmt.Fprintf(W.w, "component \"positions\" value 1\n")
	fmt.Fprintf(W.w, "component \"connections\" value 2\n")
	fmt.Fprintf(W.w, "component \"data\" value 3\n")
	if e := W.w.Flush(); e != nil && err == nil {
		err = Error{"can't flush: " + e.Error(), W.filename, []string{"Close"}, true}
	}
	if e := W.h.Close(); e != nil && err == nil {
		err = Error{"can't close: " + e.Error(), W.filename, []string{"Close"}, true}
	}
	W.f.Close()
	return err
}

//FileWrite writes a complete DX file in one call.
func FileWrite(name string, g *grid.Grid, vals []float64, comment string) error {
	if g != nil && len(vals) != g.Len() {
		return Error{fmt.Sprintf("%d values for a %d-voxel grid", len(vals), g.Len()), name, []string{"FileWrite"}, true}
	}
	W, err := NewWriter(name, g, comment)
	if err != nil {
		return errDecorate(err, "FileWrite")
	}
	if err := W.WNext(vals); err != nil {
		W.Close()
		return errDecorate(err, "FileWrite")
	}
	return W.Close()
}

//FileRead reads a DX scalar field, compressed or not, and returns the
//grid and the values in grid-flat order.
func FileRead(name string) (*grid.Grid, []float64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, Error{"unable to open file: " + err.Error(), name, []string{"FileRead"}, true}
	}
	defer f.Close()
	h, err := decompressor(f, name)
	if err != nil {
		return nil, nil, Error{err.Error(), name, []string{"FileRead"}, true}
	}
	defer h.Close()
	g, vals, err := Read(h)
	if err != nil {
		if e, ok := err.(Error); ok {
			e.filename = name
			return nil, nil, e
		}
		return nil, nil, err
	}
	return g, vals, nil
}

//Read reads an uncompressed DX stream. See FileRead.
func Read(r io.Reader) (*grid.Grid, []float64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	var shape [3]int
	var origin [3]float64
	var step [3][3]float64
	var items int
	deltas := 0
	//header
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch {
		case strings.HasPrefix(line, "object 1"):
			if len(fields) < 8 {
				return nil, nil, Error{"ill-formed gridpositions line: " + line, "", []string{"Read"}, true}
			}
			for j := 0; j < 3; j++ {
				n, err := strconv.Atoi(fields[5+j])
				if err != nil {
					return nil, nil, Error{"can't parse grid counts: " + line, "", []string{"Read"}, true}
				}
				shape[j] = n
			}
		case strings.HasPrefix(line, "origin"):
			if err := parseFloats(fields[1:], origin[:]); err != nil {
				return nil, nil, Error{"can't parse origin: " + line, "", []string{"Read"}, true}
			}
		case strings.HasPrefix(line, "delta"):
			if deltas > 2 {
				return nil, nil, Error{"more than 3 delta lines", "", []string{"Read"}, true}
			}
			if err := parseFloats(fields[1:], step[deltas][:]); err != nil {
				return nil, nil, Error{"can't parse delta: " + line, "", []string{"Read"}, true}
			}
			deltas++
		case strings.HasPrefix(line, "object 2"):
			//gridconnections, nothing to keep
		case strings.HasPrefix(line, "object 3"):
			for i, f := range fields {
				if f == "items" && i+1 < len(fields) {
					var err error
					items, err = strconv.Atoi(fields[i+1])
					if err != nil {
						return nil, nil, Error{"can't parse item count: " + line, "", []string{"Read"}, true}
					}
					break
				}
			}
			if items == 0 {
				return nil, nil, Error{"ill-formed data array line: " + line, "", []string{"Read"}, true}
			}
		default:
			return nil, nil, Error{"unexpected header line: " + line, "", []string{"Read"}, true}
		}
		if items > 0 {
			break
		}
	}
	if deltas != 3 || items == 0 {
		return nil, nil, Error{"incomplete dx header", "", []string{"Read"}, true}
	}
	g, err := grid.NewRaw(origin, shape, step)
	if err != nil {
		return nil, nil, errDecorate(err, "Read")
	}
	if items != g.Len() {
		return nil, nil, Error{fmt.Sprintf("item count %d doesn't match the %d-voxel grid", items, g.Len()), "", []string{"Read"}, true}
	}
	vals := make([]float64, 0, items)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "attribute") || strings.HasPrefix(line, "object") || strings.HasPrefix(line, "component") {
			break //the trailer
		}
		for _, fld := range strings.Fields(line) {
			v, err := strconv.ParseFloat(fld, 64)
			if err != nil {
				return nil, nil, Error{"can't parse data value: " + fld, "", []string{"Read"}, true}
			}
			vals = append(vals, v)
			if len(vals) > items {
				return nil, nil, Error{"more values than declared items", "", []string{"Read"}, true}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, Error{err.Error(), "", []string{"Read"}, true}
	}
	if len(vals) != items {
		return nil, nil, Error{fmt.Sprintf("read %d of %d values", len(vals), items), "", []string{"Read"}, true}
	}
	return g, vals, nil
}

func parseFloats(fields []string, out []float64) error {
	if len(fields) < len(out) {
		return fmt.Errorf("too few fields")
	}
	for i := range out {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return err
		}
		out[i] = v
	}
	return nil
}

//compression plumbing, same extension convention as the cube package.

type nopWCloser struct{ io.Writer }

func (nopWCloser) Close() error { return nil }

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

func errDecorate(err error, caller string) error {
	err2, ok := err.(dens.Error)
	if !ok {
		return Error{err.Error(), "", []string{caller}, true}
	}
	err2.Decorate(caller)
	return err2
}

//Error is the error type for DX files. It fulfills dens.Error and
//dens.VolError.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("dx file %s error: %s", err.filename, err.message)
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

//Format returns the format of the file associated to the error (always "dx").
func (err Error) Format() string { return "dx" }

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }
