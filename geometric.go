/*
 * geometric.go, part of godens.
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
	"math"

	"gonum.org/v1/gonum/mat"
)

//CenterOfGeometry returns the geometric center of the coordinates in
//coords, as x, y, z. It returns an error if coords is nil or empty.
func CenterOfGeometry(coords *mat.Dense) ([]float64, error) {
	if coords == nil {
		return nil, cError("nil coordinates", "CenterOfGeometry")
	}
	r, c := coords.Dims()
	if r == 0 || c != 3 {
		return nil, cErrorf("CenterOfGeometry", "malformed coordinate matrix: %d x %d", r, c)
	}
	cog := make([]float64, 3)
	for i := 0; i < r; i++ {
		for j := 0; j < 3; j++ {
			cog[j] += coords.At(i, j)
		}
	}
	for j := 0; j < 3; j++ {
		cog[j] /= float64(r)
	}
	return cog, nil
}

//CenterOfMass returns the center of mass of the coordinates in coords,
//weighted by the masses in the Masser. It returns an error if the masses
//are unavailable or don't match the coordinates.
func CenterOfMass(coords *mat.Dense, m Masser) ([]float64, error) {
	if coords == nil || m == nil {
		return nil, cError("nil coordinates or masses", "CenterOfMass")
	}
	masses, err := m.Masses()
	if err != nil {
		return nil, errDecorate(err, "CenterOfMass")
	}
	r, _ := coords.Dims()
	if r != len(masses) {
		return nil, cErrorf("CenterOfMass", "mismatched coordinates (%d) and masses (%d)", r, len(masses))
	}
	com := make([]float64, 3)
	var mtot float64
	for i := 0; i < r; i++ {
		for j := 0; j < 3; j++ {
			com[j] += coords.At(i, j) * masses[i]
		}
		mtot += masses[i]
	}
	for j := 0; j < 3; j++ {
		com[j] /= mtot
	}
	return com, nil
}

//BoundingBox returns the minimum and maximum corners of the axis-aligned
//box containing all the coordinates in coords.
func BoundingBox(coords *mat.Dense) (min, max []float64, err error) {
	if coords == nil {
		return nil, nil, cError("nil coordinates", "BoundingBox")
	}
	r, c := coords.Dims()
	if r == 0 || c != 3 {
		return nil, nil, cErrorf("BoundingBox", "malformed coordinate matrix: %d x %d", r, c)
	}
	min = []float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = []float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
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
	return min, max, nil
}
