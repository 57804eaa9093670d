/*
 * pyscf.go, part of godens.
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
//In order to use this part of the library you need a Python with the
//pyscf package installed. Please cite the PySCF references if you use it.

package qc

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	dens "github.com/mvera/godens"
	"github.com/mvera/godens/cube"
	"github.com/mvera/godens/grid"
	"gonum.org/v1/gonum/mat"
)

//PySCFHandle drives a DFT density calculation through a generated PySCF
//script. BuildInput writes the geometry and the script, Run launches the
//Python interpreter, Density reads back the cube the script wrote.
type PySCFHandle struct {
	command   string
	inputname string
	g         *grid.Grid
	ready     bool
}

func NewPySCFHandle() *PySCFHandle {
	run := new(PySCFHandle)
	run.SetDefaults()
	return run
}

//PySCFHandle methods

func (O *PySCFHandle) Command() string {
	return O.command
}

//SetCommand sets the Python interpreter used to run the script.
func (O *PySCFHandle) SetCommand(name string) {
	O.command = name
}

func (O *PySCFHandle) SetName(name string) {
	O.inputname = name
}

func (O *PySCFHandle) SetDefaults() {
	O.command = os.ExpandEnv("python3")
}

//BuildInput writes inputname.xyz and inputname.py. The script runs a
//restricted or unrestricted Kohn-Sham calculation depending on the
//multiplicity, and dumps the density on the calculation grid as
//inputname.cube (in Bohr, as the format demands).
func (O *PySCFHandle) BuildInput(coords *mat.Dense, atoms dens.AtomMultiCharger, Q *Calc) error {
	if O.inputname == "" {
		O.inputname = "godens"
	}
	if atoms == nil || coords == nil || Q == nil {
		return Error{ErrMissingData, PySCF, O.inputname, "", []string{"BuildInput"}, true}
	}
	if err := dens.XYZFileWrite(O.inputname+".xyz", coords, atoms); err != nil {
		return Error{ErrCantInput, PySCF, O.inputname, err.Error(), []string{"BuildInput"}, true}
	}
	g, err := resolveGrid(coords, Q)
	if err != nil {
		return Error{ErrCantInput, PySCF, O.inputname, err.Error(), []string{"BuildInput"}, true}
	}
	if !g.Diagonal() {
		return Error{ErrCantInput, PySCF, O.inputname, "pyscf cubegen needs an axis-aligned grid", []string{"BuildInput"}, true}
	}
	O.g = g
	method := Q.Method
	if method == "" {
		method = "pbe"
	}
	basis := Q.Basis
	if basis == "" {
		basis = "def2-svp"
	}
	script, err := os.Create(O.inputname + ".py")
	if err != nil {
		return Error{ErrCantInput, PySCF, O.inputname, err.Error(), []string{"os.Create", "BuildInput"}, true}
	}
	defer script.Close()
	nx, ny, nz := g.Shape()
	fmt.Fprintf(script, "from pyscf import gto, dft\n")
	fmt.Fprintf(script, "from pyscf.tools import cubegen\n\n")
	fmt.Fprintf(script, "mol = gto.M(atom=%q, basis=%q, charge=%d, spin=%d)\n",
		O.inputname+".xyz", basis, atoms.Charge(), atoms.Multi()-1)
	if atoms.Multi() == 1 {
		fmt.Fprintf(script, "mf = dft.RKS(mol)\n")
	} else {
		fmt.Fprintf(script, "mf = dft.UKS(mol)\n")
	}
	fmt.Fprintf(script, "mf.xc = %q\n", method)
	if Q.Memory > 0 {
		fmt.Fprintf(script, "mf.max_memory = %d\n", Q.Memory)
	}
	if Q.Others != "" {
		fmt.Fprintf(script, "%s\n", Q.Others)
	}
	fmt.Fprintf(script, "mf.kernel()\n")
	fmt.Fprintf(script, "dm = mf.make_rdm1()\n")
	//cubegen builds its own box from the margin; the cube file read back
	//by Density is the source of truth for the actual grid.
	margin := Q.Padding
	if margin <= 0 {
		margin = 3.0
	}
	fmt.Fprintf(script, "rho = cubegen.density(mol, %q, dm, nx=%d, ny=%d, nz=%d, margin=%.6f)\n",
		O.inputname+".cube", nx, ny, nz, margin*dens.A2Bohr)
	fmt.Fprintf(script, "print('SCF energy', mf.e_tot)\n")
	fmt.Fprintf(script, "print('GODENS TERMINATED NORMALLY')\n")
	O.ready = true
	return nil
}

//Run runs the calculation set by BuildInput. It waits or not for the
//result depending on wait. Not waiting only works on unix-compatible
//systems, as it uses sh and nohup.
func (O *PySCFHandle) Run(wait bool) error {
	if !O.ready {
		return Error{ErrNotRunning, PySCF, O.inputname, "no input has been built", []string{"Run"}, true}
	}
	var err error
	com := fmt.Sprintf(" %s.py > %s.out 2>&1", O.inputname, O.inputname)
	if wait {
		log.Printf(O.command + com)
		command := exec.Command("sh", "-c", O.command+com)
		err = command.Run()
	} else {
		command := exec.Command("sh", "-c", "nohup "+O.command+com)
		err = command.Start()
	}
	if err != nil {
		return Error{ErrNotRunning, PySCF, O.inputname, err.Error(), []string{"exec.Run", "Run"}, true}
	}
	return nil
}

//checks that the generated script ran to its last line.
func (O *PySCFHandle) normalTermination() bool {
	return searchBackwards("GODENS TERMINATED NORMALLY", fmt.Sprintf("%s.out", O.inputname)) != ""
}

//Energy returns the SCF energy, in kcal/mol, of a terminated
//calculation, by parsing the script output.
func (O *PySCFHandle) Energy() (float64, error) {
	if !O.normalTermination() {
		return 0, Error{ErrProbableProblem, PySCF, O.inputname, "", []string{"Energy"}, true}
	}
	line := searchBackwards("SCF energy", fmt.Sprintf("%s.out", O.inputname))
	if line == "" {
		return 0, Error{ErrProbableProblem, PySCF, O.inputname, "no energy printed", []string{"Energy"}, true}
	}
	fields := strings.Fields(line)
	energy, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return 0, Error{ErrProbableProblem, PySCF, O.inputname, err.Error(), []string{"strconv.ParseFloat", "Energy"}, true}
	}
	return energy * dens.H2Kcal, nil
}

//Density reads the cube produced by a terminated calculation.
func (O *PySCFHandle) Density() (*dens.Molecule, *grid.Grid, []float64, error) {
	if !O.normalTermination() {
		return nil, nil, nil, Error{ErrNoDensity, PySCF, O.inputname, "calculation didn't end normally", []string{"Density"}, true}
	}
	mol, g, vals, err := cube.FileRead(O.inputname + ".cube")
	if err != nil {
		return nil, nil, nil, Error{ErrNoDensity, PySCF, O.inputname, err.Error(), []string{"cube.FileRead", "Density"}, true}
	}
	return mol, g, vals, nil
}
