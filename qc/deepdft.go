/*
 * deepdft.go, part of godens.
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
//In order to use this part of the library you need a DeepDFT-style
//density predictor installed, i.e. any program that takes a geometry
//plus a grid description and writes the predicted density as a cube
//file. Please cite the corresponding model references if you use one.

package qc

import (
	"fmt"
	"log"
	"os"
	"os/exec"

	dens "github.com/mvera/godens"
	"github.com/mvera/godens/cube"
	"github.com/mvera/godens/grid"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

//DeepDFTHandle drives an external neural density predictor. The contract
//with the program is thin on purpose: it gets an xyz file and a YAML grid
//sidecar, and must write name.cube.
type DeepDFTHandle struct {
	command   string
	inputname string
	model     string
	ready     bool
}

func NewDeepDFTHandle() *DeepDFTHandle {
	run := new(DeepDFTHandle)
	run.SetDefaults()
	return run
}

//DeepDFTHandle methods

func (O *DeepDFTHandle) Command() string {
	return O.command
}

//SetCommand sets the predictor executable.
func (O *DeepDFTHandle) SetCommand(name string) {
	O.command = name
}

func (O *DeepDFTHandle) SetName(name string) {
	O.inputname = name
}

func (O *DeepDFTHandle) SetDefaults() {
	O.command = os.ExpandEnv("deepdft_predict")
}

//the grid sidecar handed to the predictor. Everything in Å.
type gridSidecar struct {
	Origin  []float64   `yaml:"origin"`
	Shape   []int       `yaml:"shape"`
	Step    [][]float64 `yaml:"step"`
	Model   string      `yaml:"model,omitempty"`
	Comment string      `yaml:"comment,omitempty"`
}

//BuildInput writes inputname.xyz and inputname.grid.yaml. Q.Method, if
//given, names the model checkpoint the predictor should load.
func (O *DeepDFTHandle) BuildInput(coords *mat.Dense, atoms dens.AtomMultiCharger, Q *Calc) error {
	if O.inputname == "" {
		O.inputname = "godens"
	}
	if atoms == nil || coords == nil || Q == nil {
		return Error{ErrMissingData, DeepDFT, O.inputname, "", []string{"BuildInput"}, true}
	}
	if err := dens.XYZFileWrite(O.inputname+".xyz", coords, atoms); err != nil {
		return Error{ErrCantInput, DeepDFT, O.inputname, err.Error(), []string{"BuildInput"}, true}
	}
	g, err := resolveGrid(coords, Q)
	if err != nil {
		return Error{ErrCantInput, DeepDFT, O.inputname, err.Error(), []string{"BuildInput"}, true}
	}
	side := gridSidecar{Model: Q.Method}
	ox, oy, oz := g.Origin()
	side.Origin = []float64{ox, oy, oz}
	nx, ny, nz := g.Shape()
	side.Shape = []int{nx, ny, nz}
	for axis := 0; axis < 3; axis++ {
		sx, sy, sz := g.Step(axis)
		side.Step = append(side.Step, []float64{sx, sy, sz})
	}
	f, err := os.Create(O.inputname + ".grid.yaml")
	if err != nil {
		return Error{ErrCantInput, DeepDFT, O.inputname, err.Error(), []string{"os.Create", "BuildInput"}, true}
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	if err := enc.Encode(&side); err != nil {
		return Error{ErrCantInput, DeepDFT, O.inputname, err.Error(), []string{"yaml.Encode", "BuildInput"}, true}
	}
	enc.Close()
	O.model = Q.Method
	O.ready = true
	return nil
}

//Run runs the predictor. It waits or not for the result depending on
//wait; not waiting only works on unix-compatible systems, as it uses sh
//and nohup.
func (O *DeepDFTHandle) Run(wait bool) error {
	if !O.ready {
		return Error{ErrNotRunning, DeepDFT, O.inputname, "no input has been built", []string{"Run"}, true}
	}
	var err error
	com := fmt.Sprintf(" %s.xyz --grid %s.grid.yaml --output %s.cube > %s.out 2>&1",
		O.inputname, O.inputname, O.inputname, O.inputname)
	if wait {
		log.Printf(O.command + com)
		command := exec.Command("sh", "-c", O.command+com)
		err = command.Run()
	} else {
		command := exec.Command("sh", "-c", "nohup "+O.command+com)
		err = command.Start()
	}
	if err != nil {
		return Error{ErrNotRunning, DeepDFT, O.inputname, err.Error(), []string{"exec.Run", "Run"}, true}
	}
	return nil
}

//Density reads the cube written by the predictor. The predictor's exit
//status isn't trusted on its own: a missing or truncated cube is an
//error regardless.
func (O *DeepDFTHandle) Density() (*dens.Molecule, *grid.Grid, []float64, error) {
	mol, g, vals, err := cube.FileRead(O.inputname + ".cube")
	if err != nil {
		return nil, nil, nil, Error{ErrNoDensity, DeepDFT, O.inputname, err.Error(), []string{"cube.FileRead", "Density"}, true}
	}
	return mol, g, vals, nil
}
