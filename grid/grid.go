/*
 * grid.go, part of godens.
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

//Package grid implements lazy voxel grids for volumetric molecular data,
//plus the analyses commonly run on densities sampled on them.
//
//A Grid never materializes its list of points. It only stores an origin,
//a shape and three step vectors, and computes any point position on
//demand as
//
//	position = origin + i*step0 + j*step1 + k*step2
//
//with the steps obtained by dividing the cell vectors by the shape.
//Flat indexing is row-major with x slowest and z fastest, which is also
//the data ordering of the cube format.
//
//The package is agnostic about length units; in this library grids are
//conventionally built in Ångström and converted by the file-format
//packages where a format demands atomic units.
package grid

import (
	"io"
	"math"

	"gonum.org/v1/gonum/mat"
)

//Grid is a voxel grid: an origin, a shape, and a step vector per axis.
type Grid struct {
	origin [3]float64
	shape  [3]int
	//step vectors are the rows. Only diagonal grids can be written as
	//OpenDX, but everything here works for triclinic cells too.
	step [3][3]float64
}

//New returns a grid spanning the given cell matrix (one cell vector per
//row) divided into shape voxels per axis, starting at origin. It returns
//an error if any dimension of the shape is not positive or the arguments
//have wrong sizes.
func New(origin []float64, shape []int, cell *mat.Dense) (*Grid, error) {
	if len(origin) != 3 || len(shape) != 3 {
		return nil, Error{"origin and shape must have 3 elements", []string{"New"}, true}
	}
	if cell == nil {
		return nil, Error{"nil cell matrix", []string{"New"}, true}
	}
	if r, c := cell.Dims(); r != 3 || c != 3 {
		return nil, Error{"cell matrix must be 3x3", []string{"New"}, true}
	}
	g := new(Grid)
	for i := 0; i < 3; i++ {
		if shape[i] <= 0 {
			return nil, Error{"grid dimensions must be positive", []string{"New"}, true}
		}
		g.origin[i] = origin[i]
		g.shape[i] = shape[i]
		for j := 0; j < 3; j++ {
			g.step[i][j] = cell.At(i, j) / float64(shape[i])
		}
	}
	return g, nil
}

//Uniform returns an axis-aligned grid with the same spacing on the three
//axes. It returns an error if a dimension of the shape is not positive.
func Uniform(origin []float64, shape []int, spacing float64) (*Grid, error) {
	if len(origin) != 3 || len(shape) != 3 {
		return nil, Error{"origin and shape must have 3 elements", []string{"Uniform"}, true}
	}
	if spacing <= 0 {
		return nil, Error{"spacing must be positive", []string{"Uniform"}, true}
	}
	g := new(Grid)
	for i := 0; i < 3; i++ {
		if shape[i] <= 0 {
			return nil, Error{"grid dimensions must be positive", []string{"Uniform"}, true}
		}
		g.origin[i] = origin[i]
		g.shape[i] = shape[i]
		g.step[i][i] = spacing
	}
	return g, nil
}

//NewRaw returns a grid directly from origin, shape and per-axis step
//vectors, without the cell division of New. This is what file readers use.
func NewRaw(origin [3]float64, shape [3]int, step [3][3]float64) (*Grid, error) {
	for i := 0; i < 3; i++ {
		if shape[i] <= 0 {
			return nil, Error{"grid dimensions must be positive", []string{"NewRaw"}, true}
		}
	}
	return &Grid{origin, shape, step}, nil
}

//Bounds returns an axis-aligned uniform grid containing all the given
//coordinates plus padding on each side, with voxels of the given spacing.
func Bounds(coords *mat.Dense, padding, spacing float64) (*Grid, error) {
	if coords == nil {
		return nil, Error{"nil coordinates", []string{"Bounds"}, true}
	}
	if spacing <= 0 {
		return nil, Error{"spacing must be positive", []string{"Bounds"}, true}
	}
	r, c := coords.Dims()
	if r == 0 || c != 3 {
		return nil, Error{"malformed coordinate matrix", []string{"Bounds"}, true}
	}
	var min, max [3]float64
	for j := 0; j < 3; j++ {
		min[j] = math.Inf(1)
		max[j] = math.Inf(-1)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < 3; j++ {
			v := coords.At(i, j)
			if v < min[j] {
				min[j] = v
			}
			if v > max[j] {
				max[j] = v
			}
		}
	}
	g := new(Grid)
	for j := 0; j < 3; j++ {
		g.origin[j] = min[j] - padding
		ext := max[j] - min[j] + 2*padding
		g.shape[j] = int(math.Ceil(ext/spacing)) + 1
		g.step[j][j] = spacing
	}
	return g, nil
}

//Shape returns the number of voxels along each axis.
func (g *Grid) Shape() (int, int, int) {
	return g.shape[0], g.shape[1], g.shape[2]
}

//Origin returns the position of the first grid point.
func (g *Grid) Origin() (float64, float64, float64) {
	return g.origin[0], g.origin[1], g.origin[2]
}

//Step returns the step vector of the given axis. Panics if the axis is
//not 0, 1 or 2.
func (g *Grid) Step(axis int) (float64, float64, float64) {
	if axis < 0 || axis > 2 {
		panic("grid: step axis out of range")
	}
	return g.step[axis][0], g.step[axis][1], g.step[axis][2]
}

//Cell returns the full cell matrix spanned by the grid, i.e. the step
//vectors multiplied back by the shape, one cell vector per row.
func (g *Grid) Cell() *mat.Dense {
	cell := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cell.Set(i, j, g.step[i][j]*float64(g.shape[i]))
		}
	}
	return cell
}

//Len returns the total number of grid points.
func (g *Grid) Len() int {
	return g.shape[0] * g.shape[1] * g.shape[2]
}

//At returns the Cartesian position of the voxel with indices i, j, k.
//This is the lazy meshgrid: O(1), no allocation. Panics if an index is
//out of range, as that means the caller's loop is wrong.
func (g *Grid) At(i, j, k int) (float64, float64, float64) {
	if i < 0 || i >= g.shape[0] || j < 0 || j >= g.shape[1] || k < 0 || k >= g.shape[2] {
		panic("grid: voxel index out of range")
	}
	fi, fj, fk := float64(i), float64(j), float64(k)
	x := g.origin[0] + fi*g.step[0][0] + fj*g.step[1][0] + fk*g.step[2][0]
	y := g.origin[1] + fi*g.step[0][1] + fj*g.step[1][1] + fk*g.step[2][1]
	z := g.origin[2] + fi*g.step[0][2] + fj*g.step[1][2] + fk*g.step[2][2]
	return x, y, z
}

//Point returns the Cartesian position of the n-th point in flat order
//(x slowest, z fastest). Panics if n is out of range.
func (g *Grid) Point(n int) (float64, float64, float64) {
	i, j, k := g.Unravel(n)
	return g.At(i, j, k)
}

//Unravel turns a flat index into voxel indices i, j, k. Panics if n is
//out of range.
func (g *Grid) Unravel(n int) (int, int, int) {
	if n < 0 || n >= g.Len() {
		panic("grid: flat index out of range")
	}
	k := n % g.shape[2]
	j := (n / g.shape[2]) % g.shape[1]
	i := n / (g.shape[1] * g.shape[2])
	return i, j, k
}

//Ravel turns voxel indices into the flat index. Panics if out of range.
func (g *Grid) Ravel(i, j, k int) int {
	if i < 0 || i >= g.shape[0] || j < 0 || j >= g.shape[1] || k < 0 || k >= g.shape[2] {
		panic("grid: voxel index out of range")
	}
	return (i*g.shape[1]+j)*g.shape[2] + k
}

//VoxelVolume returns the volume of one voxel, the absolute triple
//product of the step vectors.
func (g *Grid) VoxelVolume() float64 {
	a, b, c := g.step[0], g.step[1], g.step[2]
	v := a[0]*(b[1]*c[2]-b[2]*c[1]) - a[1]*(b[0]*c[2]-b[2]*c[0]) + a[2]*(b[0]*c[1]-b[1]*c[0])
	return math.Abs(v)
}

//Diagonal returns whether the step vectors are axis-aligned, which some
//formats (OpenDX among them) require.
func (g *Grid) Diagonal() bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i != j && g.step[i][j] != 0 {
				return false
			}
		}
	}
	return true
}

//Stream returns a PointStream producing the grid positions in flat
//order, in batches of up to chunk points, for feeding external density
//engines without ever holding the whole meshgrid in memory.
func (g *Grid) Stream(chunk int) *PointStream {
	if chunk <= 0 {
		chunk = 1024
	}
	return &PointStream{g: g, chunk: chunk}
}

//PointStream produces the points of a grid in flat order, lazily.
type PointStream struct {
	g     *Grid
	next  int
	chunk int
}

//Next fills out with the coordinates of the next batch of points and
//returns the flat index of the first one and how many rows were filled.
//out must have 3 columns and at least min(chunk, remaining) rows; pass
//nil to have a matrix allocated. When the grid is exhausted Next returns
//io.EOF.
func (s *PointStream) Next(out *mat.Dense) (*mat.Dense, int, int, error) {
	total := s.g.Len()
	if s.next >= total {
		return nil, s.next, 0, io.EOF
	}
	n := s.chunk
	if s.next+n > total {
		n = total - s.next
	}
	if out == nil {
		out = mat.NewDense(n, 3, nil)
	} else if r, c := out.Dims(); c != 3 || r < n {
		return nil, s.next, 0, Error{"output matrix too small for chunk", []string{"PointStream.Next"}, true}
	}
	start := s.next
	for i := 0; i < n; i++ {
		x, y, z := s.g.Point(start + i)
		out.Set(i, 0, x)
		out.Set(i, 1, y)
		out.Set(i, 2, z)
	}
	s.next += n
	return out, start, n, nil
}

//Len returns the total number of points the stream will produce.
func (s *PointStream) Len() int {
	return s.g.Len()
}

//Errors

//Error is the error type for the grid package. It fulfills the dens.Error
//interface.
type Error struct {
	message  string
	deco     []string
	critical bool
}

func (err Error) Error() string { return "grid error: " + err.message }

//Decorate adds new information to the error. The receiver is not a
//pointer but appending to the deco slice still works, the slice being a
//pointer itself.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }
