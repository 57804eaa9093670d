/*
 * qc.go, part of godens.
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

//Package qc drives external programs that produce molecular electron
//densities: a PySCF-based DFT driver and DeepDFT-style neural predictors.
//The programs themselves are opaque collaborators; this package only
//builds their inputs, launches them and parses the cube files they emit.
//You need the corresponding program installed for each handle to work.
package qc

import (
	"fmt"
	"os"
	"strings"

	dens "github.com/mvera/godens"
	"github.com/mvera/godens/grid"
	"gonum.org/v1/gonum/mat"
)

//Handle is the common interface for external density engines.
//Note that the default methods and grids vary with each program, and
//even for a given program they are NOT considered part of the API.
type Handle interface {

	//Sets the name for the job, used for input
	//and output files. The extensions depend on the program.
	SetName(name string)

	//BuildInput builds the input files for the engine from the
	//molecule and the options in Q. Returns only error.
	BuildInput(coords *mat.Dense, atoms dens.AtomMultiCharger, Q *Calc) error

	//Run runs the engine for a calculation previously set up.
	//It waits or not for the result depending on wait.
	Run(wait bool) error

	//Density parses the cube file produced by a terminated
	//calculation and returns the molecule as the engine saw it, the
	//grid (Å) and the values in grid-flat order. It returns an error
	//if the calculation didn't end normally.
	Density() (*dens.Molecule, *grid.Grid, []float64, error)
}

//Calc holds the options for a density calculation or prediction. Not
//every engine uses every field.
type Calc struct {
	Method  string     //DFT functional, or model name for neural predictors
	Basis   string     //basis set, DFT engines only
	Spacing float64    //grid spacing, in Å
	Padding float64    //extra space around the molecule, in Å
	Grid    *grid.Grid //explicit grid; overrides Spacing/Padding if set
	Memory  int        //max memory, in MB (the effect depends on the engine)
	Others  string     //extra keywords passed through verbatim
}

//SetDefaults sets method, basis and grid defaults. As per the Handle
//docs, the defaults can change between library versions.
func (Q *Calc) SetDefaults() {
	Q.Method = "pbe"
	Q.Basis = "def2-svp"
	Q.Spacing = 0.2
	Q.Padding = 3.0
}

//resolveGrid returns the grid for a calculation: the explicit one if
//given, otherwise one built around the molecule.
func resolveGrid(coords *mat.Dense, Q *Calc) (*grid.Grid, error) {
	if Q.Grid != nil {
		return Q.Grid, nil
	}
	spacing := Q.Spacing
	if spacing <= 0 {
		spacing = 0.2
	}
	padding := Q.Padding
	if padding <= 0 {
		padding = 3.0
	}
	return grid.Bounds(coords, padding, spacing)
}

//search a file backwards, i.e., starting from the end, for a string.
//Returns the line that contains the string, or an empty string.
func searchBackwards(str, filename string) string {
	var ini int64 = 0
	var end int64 = 0
	first := true
	buf := make([]byte, 1)
	f, err := os.Open(filename)
	if err != nil {
		return ""
	}
	defer f.Close()
	var i int64 = 1
	for ; ; i++ {
		if _, err := f.Seek(-1*i, 2); err != nil {
			return ""
		}
		if _, err := f.Read(buf); err != nil {
			return ""
		}
		if buf[0] == byte('\n') && first == false {
			first = true
		} else if buf[0] == byte('\n') && end == 0 {
			end = i
		} else if buf[0] == byte('\n') && ini == 0 {
			ini = i
			f.Seek(-1*(ini), 2)
			bufF := make([]byte, ini-end)
			f.Read(bufF)
			if strings.Contains(string(bufF), str) {
				return string(bufF)
			}
			end = 0
			ini = 0
		}
	}
}

//Errors

//Error is the error type for external engines. It fulfills dens.Error.
type Error struct {
	message   string
	program   string
	inputname string
	extra     string //any additional info, e.g. the underlying os/exec error
	deco      []string
	critical  bool
}

func (err Error) Error() string {
	return fmt.Sprintf("%s: %s engine, job %s. %s", err.message, err.program, err.inputname, err.extra)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

//The different error messages for the package.
const (
	ErrMissingData     = "missing molecule, coordinates or options"
	ErrCantInput       = "can't build input file"
	ErrNotRunning      = "the engine didn't run or exited abnormally"
	ErrNoDensity       = "can't read a density from the calculation"
	ErrProbableProblem = "probable problem in calculation"
)

//The programs the package knows about.
const (
	PySCF   = "PySCF"
	DeepDFT = "DeepDFT"
)
