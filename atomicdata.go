/*
 * atomicdata.go, part of godens.
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

//A map for assigning mass to elements.
//Note that just common "bio-elements" are present
var symbolMass = map[string]float64{
	"H":  1.0,
	"C":  12.01,
	"O":  16.00,
	"N":  14.01,
	"P":  30.97,
	"S":  32.06,
	"Se": 78.96,
	"K":  39.1,
	"Ca": 40.08,
	"Mg": 24.30,
	"Cl": 35.45,
	"Na": 22.99,
	"Cu": 63.55,
	"Zn": 65.38,
	"Co": 58.93,
	"Fe": 55.84,
	"Mn": 54.94,
	"Cr": 51.996,
	"Si": 28.08,
	"Be": 9.012,
	"F":  18.998,
	"Br": 79.904,
	"I":  126.90,
	"B":  10.81,
	"Li": 6.94,
	"Al": 26.98,
}

//A map for assigning atomic numbers to elements. The cube format
//identifies atoms by Z, so this one covers the same set as symbolMass.
var symbolZ = map[string]int{
	"H":  1,
	"Li": 3,
	"Be": 4,
	"B":  5,
	"C":  6,
	"N":  7,
	"O":  8,
	"F":  9,
	"Na": 11,
	"Mg": 12,
	"Al": 13,
	"Si": 14,
	"P":  15,
	"S":  16,
	"Cl": 17,
	"K":  19,
	"Ca": 20,
	"Cr": 24,
	"Mn": 25,
	"Fe": 26,
	"Co": 27,
	"Cu": 29,
	"Zn": 30,
	"Se": 34,
	"Br": 35,
	"I":  53,
}

//The inverse of symbolZ, built on first use.
var zSymbol map[int]string

//A map for assigning van der Waals radii to elements
//Values from 10.1021/j100785a001 and 10.1021/jp8111556
//metal radii from 10.1023/A:1011625728803
var symbolVdwrad = map[string]float64{
	"H":  1.10,
	"C":  1.70,
	"O":  1.52,
	"N":  1.55,
	"P":  1.80,
	"S":  1.80,
	"Se": 1.90,
	"K":  2.75,
	"Ca": 2.31,
	"Mg": 1.73,
	"Cl": 1.75,
	"Na": 2.27,
	"Cu": 2.00,
	"Zn": 2.02,
	"Co": 1.95,
	"Fe": 1.96,
	"Mn": 1.96,
	"Cr": 1.97,
	"Si": 2.10,
	"Be": 1.53,
	"F":  1.47,
	"Br": 1.83,
	"I":  1.98,
	"B":  1.92,
	"Li": 1.81,
	"Al": 1.84,
}

//SymbolZ returns the atomic number for a chemical symbol, or 0
//if the symbol is not known to the library.
func SymbolZ(symbol string) int {
	return symbolZ[symbol]
}

//ZSymbol returns the chemical symbol for an atomic number, or the
//empty string if Z is not known to the library.
func ZSymbol(z int) string {
	if zSymbol == nil {
		zSymbol = make(map[int]string, len(symbolZ))
		for k, v := range symbolZ {
			zSymbol[v] = k
		}
	}
	return zSymbol[z]
}

//SymbolMass returns the mass for a chemical symbol, or 0 if the
//symbol is not known to the library.
func SymbolMass(symbol string) float64 {
	return symbolMass[symbol]
}

//SymbolVdw returns the van der Waals radius, in A, for a chemical
//symbol, or 0 if the symbol is not known to the library.
func SymbolVdw(symbol string) float64 {
	return symbolVdwrad[symbol]
}
