/*
 * cfg.go, part of godens.
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

//Package cfg runs a whole density workflow from a YAML file: geometry in,
//engine run, cube/dx out, and optionally Bader charges and plots. It is
//the glue behind the godens command; library users will usually call the
//packages it wires together directly.
package cfg

import (
	"bufio"
	"fmt"
	"log"
	"math"
	"os"

	dens "github.com/mvera/godens"
	"github.com/mvera/godens/bader"
	"github.com/mvera/godens/cube"
	"github.com/mvera/godens/densplot"
	"github.com/mvera/godens/dx"
	"github.com/mvera/godens/grid"
	"github.com/mvera/godens/qc"
	"gopkg.in/yaml.v3"
)

//Engine is the external program producing the density.
type Engine string

//The accepted engines.
const (
	EPySCF   Engine = "pyscf"
	EDeepDFT Engine = "deepdft"
)

//BaderCfg configures the optional Bader analysis of the produced cube.
type BaderCfg struct {
	// Run toggles the analysis
	Run bool `yaml:"run"`

	// Method is the partitioning method (ongrid, neargrid, weight);
	// empty means the bader program's default
	Method string `yaml:"method"`

	// Vacuum toggles automatic vacuum detection
	Vacuum bool `yaml:"vacuum"`

	// Reference is a reference cube to partition on, if any
	Reference string `yaml:"reference"`

	// Valence maps element symbols to explicit electron counts, for
	// core-stripped densities. Empty means all-electron
	Valence map[string]float64 `yaml:"valence"`

	// Table is the csv file for the joined per-atom report
	Table string `yaml:"table"`
}

//PlotCfg configures the optional plots.
type PlotCfg struct {
	// RadialProfile is the png for the spherically averaged profile;
	// empty skips it
	RadialProfile string `yaml:"radialProfile"`

	// Bins is the number of radial bins
	Bins int `yaml:"bins"`

	// Rmax is the profile cutoff, in Å. Zero means half the grid diagonal
	Rmax float64 `yaml:"rmax"`

	// Histogram is the png for the value histogram; empty skips it
	Histogram string `yaml:"histogram"`
}

//Cfg is the description of a density job. It can be instanced by hand;
//use the Check method to verify it meets the requirements.
type Cfg struct {
	// Geometry is the xyz file with the molecule
	Geometry string `yaml:"geometry"`

	// Name is the job name, used for every intermediate file
	Name string `yaml:"name"`

	// Engine picks the density program (pyscf or deepdft)
	Engine Engine `yaml:"engine"`

	// Command overrides the engine's executable, if not empty
	Command string `yaml:"command"`

	// Method is the functional (pyscf) or model checkpoint (deepdft)
	Method string `yaml:"method"`

	// Basis is the basis set, pyscf only
	Basis string `yaml:"basis"`

	// Charge and Multi are the total charge and spin multiplicity
	Charge int `yaml:"charge"`
	Multi  int `yaml:"multi"`

	// Spacing and Padding define the grid around the molecule, in Å
	Spacing float64 `yaml:"spacing"`
	Padding float64 `yaml:"padding"`

	// Memory is the engine's memory cap, in MB. Zero means no cap
	Memory int `yaml:"memory"`

	// Cube is an extra cube file to write (possibly .gz or .zst);
	// empty skips it. The engine's own cube stays on disk regardless
	Cube string `yaml:"cube"`

	// DX is an OpenDX file to write; empty skips it
	DX string `yaml:"dx"`

	// Bader configures the charge analysis
	Bader BaderCfg `yaml:"bader"`

	// Plot configures the plots
	Plot PlotCfg `yaml:"plot"`
}

//New creates a Cfg structure from the settings in a YAML file. It calls
//Check on the result.
func New(path string) (*Cfg, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var c Cfg
	r := bufio.NewReader(f)
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("can't parse %s: %w", path, err)
	}
	if err := c.Check(); err != nil {
		return nil, err
	}
	return &c, nil
}

//Check checks if Cfg is correct and fills the defaults. It returns an
//error if a field doesn't meet the requirements.
func (c *Cfg) Check() error {
	if c.Geometry == "" {
		return fmt.Errorf("a geometry file is required")
	}
	if c.Name == "" {
		c.Name = "godens"
	}
	if c.Engine == "" {
		c.Engine = EPySCF
	}
	if c.Engine != EPySCF && c.Engine != EDeepDFT {
		return fmt.Errorf("unknown engine %q", c.Engine)
	}
	if c.Multi == 0 {
		c.Multi = 1
	}
	if c.Multi < 0 {
		return fmt.Errorf("multiplicity must be positive")
	}
	if c.Spacing < 0 || c.Padding < 0 {
		return fmt.Errorf("spacing and padding must not be negative")
	}
	if c.Plot.RadialProfile != "" && c.Plot.Bins == 0 {
		c.Plot.Bins = 100
	}
	return nil
}

//handle returns the configured engine handle.
func (c *Cfg) handle() qc.Handle {
	var h qc.Handle
	switch c.Engine {
	case EDeepDFT:
		d := qc.NewDeepDFTHandle()
		if c.Command != "" {
			d.SetCommand(c.Command)
		}
		h = d
	default:
		p := qc.NewPySCFHandle()
		if c.Command != "" {
			p.SetCommand(c.Command)
		}
		h = p
	}
	h.SetName(c.Name)
	return h
}

//Run executes the whole job: it reads the geometry, runs the engine,
//writes the requested volumetric files, and runs the Bader analysis and
//the plots if asked for. Every intermediate file lands in the current
//directory.
func (c *Cfg) Run() error {
	mol, err := dens.XYZFileRead(c.Geometry)
	if err != nil {
		return err
	}
	mol.SetCharge(c.Charge)
	mol.SetMulti(c.Multi)
	Q := new(qc.Calc)
	Q.SetDefaults()
	Q.Method = c.Method
	Q.Basis = c.Basis
	if c.Spacing > 0 {
		Q.Spacing = c.Spacing
	}
	if c.Padding > 0 {
		Q.Padding = c.Padding
	}
	Q.Memory = c.Memory
	h := c.handle()
	if err := h.BuildInput(mol.Coords[0], mol, Q); err != nil {
		return err
	}
	log.Printf("running %s on %s", c.Engine, c.Geometry)
	if err := h.Run(true); err != nil {
		return err
	}
	cmol, g, vals, err := h.Density()
	if err != nil {
		return err
	}
	if c.Cube != "" {
		if err := cube.FileWrite(c.Cube, cmol, cmol.Coords[0], g, vals, "density for "+c.Geometry); err != nil {
			return err
		}
	}
	if c.DX != "" {
		if err := dx.FileWrite(c.DX, g, vals, "density for "+c.Geometry); err != nil {
			return err
		}
	}
	total, err := g.Integrate(vals)
	if err != nil {
		return err
	}
	log.Printf("density integrates to %.4f electrons on a %d-point grid", total, g.Len())
	if c.Bader.Run {
		if err := c.runBader(cmol); err != nil {
			return err
		}
	}
	return c.plots(cmol, g, vals)
}

func (c *Cfg) runBader(mol *dens.Molecule) error {
	b := bader.NewHandle()
	if c.Bader.Method != "" {
		b.SetMethod(c.Bader.Method)
	}
	if c.Bader.Reference != "" {
		b.SetReference(c.Bader.Reference)
	}
	b.SetVacuum(c.Bader.Vacuum)
	if err := b.Run(c.Name+".cube", true); err != nil {
		return err
	}
	acf, sum, err := b.Charges()
	if err != nil {
		return err
	}
	log.Printf("bader found %.4f electrons, vacuum charge %.4f", sum.Electrons, sum.VacuumCharge)
	var valence map[string]float64
	if len(c.Bader.Valence) > 0 {
		valence = c.Bader.Valence
	}
	rows, err := bader.Table(mol, mol.Coords[0], acf, valence)
	if err != nil {
		return err
	}
	name := c.Bader.Table
	if name == "" {
		name = c.Name + "_charges.csv"
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return bader.WriteTable(f, rows)
}

func (c *Cfg) plots(mol *dens.Molecule, g *grid.Grid, vals []float64) error {
	if c.Plot.RadialProfile != "" {
		center, err := dens.CenterOfGeometry(mol.Coords[0])
		if err != nil {
			return err
		}
		rmax := c.Plot.Rmax
		if rmax <= 0 {
			rmax = 0.5 * gridDiagonal(g)
		}
		r, avg, err := g.RadialProfile(vals, center, c.Plot.Bins, rmax)
		if err != nil {
			return err
		}
		err = densplot.RadialProfile(r, [][]float64{avg}, []string{c.Name},
			"radial density profile", c.Plot.RadialProfile)
		if err != nil {
			return err
		}
	}
	if c.Plot.Histogram != "" {
		err := densplot.ValueHistogram(vals, c.Plot.Bins, "density values", c.Plot.Histogram)
		if err != nil {
			return err
		}
	}
	return nil
}

//the length of the grid's cell diagonal.
func gridDiagonal(g *grid.Grid) float64 {
	cell := g.Cell()
	var d2 float64
	for j := 0; j < 3; j++ {
		v := cell.At(0, j) + cell.At(1, j) + cell.At(2, j)
		d2 += v * v
	}
	return math.Sqrt(d2)
}
