/*
 * bader.go, part of godens.
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

//Package bader wraps the Henkelman group's bader program, which
//partitions a density sampled on a grid into atomic basins. The
//partitioning algorithm itself lives in that program; this package
//builds the command line, runs it and digests the ACF.dat file it
//writes into per-atom populations, partial charges and a joined table.
//You need the bader executable installed for Run to work; the parsing
//functions work on any ACF.dat.
package bader

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"

	dens "github.com/mvera/godens"
	"gonum.org/v1/gonum/mat"
)

//Handle sets up and runs a Bader analysis through the external program.
type Handle struct {
	command string
	method  string //ongrid, neargrid or weight; empty for the program's default
	refcube string //a reference (e.g. core-augmented) density cube
	vacuum  bool   //treat low-density regions as vacuum
}

func NewHandle() *Handle {
	O := new(Handle)
	O.SetDefaults()
	return O
}

//Handle methods

func (O *Handle) SetDefaults() {
	O.command = os.ExpandEnv("bader")
}

func (O *Handle) Command() string {
	return O.command
}

//SetCommand sets the path of the bader executable.
func (O *Handle) SetCommand(name string) {
	O.command = name
}

//SetMethod selects the partitioning method (ongrid, neargrid, weight).
//The method names are the program's, not checked here.
func (O *Handle) SetMethod(m string) {
	O.method = m
}

//SetReference makes the partitioning follow the given reference cube
//(typically a core-augmented density) while integrating the analyzed one.
func (O *Handle) SetReference(cubefile string) {
	O.refcube = cubefile
}

//SetVacuum toggles automatic vacuum detection, for isolated molecules in
//large boxes.
func (O *Handle) SetVacuum(b bool) {
	O.vacuum = b
}

//Run runs bader on the given cube file, in the current directory, where
//the program drops its ACF.dat. It waits or not for the result depending
//on wait; not waiting only works on unix-compatible systems, as it uses
//sh and nohup.
func (O *Handle) Run(cubefile string, wait bool) error {
	opts := make([]string, 0, 6)
	if O.method != "" {
		opts = append(opts, "-b "+O.method)
	}
	if O.vacuum {
		opts = append(opts, "-vac auto")
	}
	if O.refcube != "" {
		opts = append(opts, "-ref "+O.refcube)
	}
	com := fmt.Sprintf(" %s %s > bader.out 2>&1", strings.Join(opts, " "), cubefile)
	var err error
	if wait {
		log.Printf(O.command + com)
		command := exec.Command("sh", "-c", O.command+com)
		err = command.Run()
	} else {
		command := exec.Command("sh", "-c", "nohup "+O.command+com)
		err = command.Start()
	}
	if err != nil {
		return Error{"bader didn't run: " + err.Error(), cubefile, []string{"exec.Run", "Run"}, true}
	}
	return nil
}

//Charges runs the whole parse for a terminated analysis in the current
//directory: it reads ACF.dat and returns the per-atom data plus the
//run summary.
func (O *Handle) Charges() ([]*AtomCharge, *Summary, error) {
	rows, sum, err := ReadACF("ACF.dat")
	if err != nil {
		return nil, nil, errDecorate(err, "Charges")
	}
	return rows, sum, nil
}

//AtomCharge is the per-atom result of a Bader analysis: the basin
//position, its integrated electron population, the distance from the
//atom to the nearest basin surface, and the basin volume. Units are
//those of the analyzed cube (Bohr for cubes this library writes).
type AtomCharge struct {
	Id         int
	X, Y, Z    float64
	Population float64
	MinDist    float64
	Volume     float64
}

//Summary holds the trailer of an ACF.dat file.
type Summary struct {
	VacuumCharge float64
	VacuumVolume float64
	Electrons    float64
}

//ReadACF parses the ACF.dat file written by bader.
func ReadACF(name string) ([]*AtomCharge, *Summary, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, Error{"unable to open file: " + err.Error(), name, []string{"ReadACF"}, true}
	}
	defer f.Close()
	rows, sum, err := parseACF(f)
	if err != nil {
		if e, ok := err.(Error); ok {
			e.filename = name
			return nil, nil, e
		}
		return nil, nil, err
	}
	return rows, sum, nil
}

func parseACF(r io.Reader) ([]*AtomCharge, *Summary, error) {
	scanner := bufio.NewScanner(r)
	rows := make([]*AtomCharge, 0, 10)
	sum := new(Summary)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if strings.Contains(line, ":") { //the trailer
			kv := strings.SplitN(line, ":", 2)
			v, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
			if err != nil {
				return nil, nil, Error{"can't parse summary line: " + line, "", []string{"parseACF"}, true}
			}
			switch {
			case strings.HasPrefix(kv[0], "VACUUM CHARGE"):
				sum.VacuumCharge = v
			case strings.HasPrefix(kv[0], "VACUUM VOLUME"):
				sum.VacuumVolume = v
			case strings.HasPrefix(kv[0], "NUMBER OF ELECTRONS"):
				sum.Electrons = v
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 7 {
			return nil, nil, Error{"atom line ill-formed: " + line, "", []string{"parseACF"}, true}
		}
		row := new(AtomCharge)
		var errs [7]error
		row.Id, errs[0] = strconv.Atoi(fields[0])
		row.X, errs[1] = strconv.ParseFloat(fields[1], 64)
		row.Y, errs[2] = strconv.ParseFloat(fields[2], 64)
		row.Z, errs[3] = strconv.ParseFloat(fields[3], 64)
		row.Population, errs[4] = strconv.ParseFloat(fields[4], 64)
		row.MinDist, errs[5] = strconv.ParseFloat(fields[5], 64)
		row.Volume, errs[6] = strconv.ParseFloat(fields[6], 64)
		for _, e := range errs {
			if e != nil {
				return nil, nil, Error{"atom line ill-formed: " + line, "", []string{"parseACF"}, true}
			}
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, Error{err.Error(), "", []string{"parseACF"}, true}
	}
	if len(rows) == 0 {
		return nil, nil, Error{"no atoms found", "", []string{"parseACF"}, true}
	}
	return rows, sum, nil
}

//PartialCharges turns Bader populations into partial charges,
//q = Z - population. For densities from pseudopotential or otherwise
//core-stripped calculations, pass a valence map (symbol to number of
//explicit electrons) to be used instead of Z; a nil map means all
//electrons are in the density.
func PartialCharges(atoms dens.Atomer, acf []*AtomCharge, valence map[string]float64) ([]float64, error) {
	if atoms == nil || acf == nil {
		return nil, Error{"nil atoms or populations", "", []string{"PartialCharges"}, true}
	}
	if atoms.Len() != len(acf) {
		return nil, Error{fmt.Sprintf("%d atoms but %d populations", atoms.Len(), len(acf)), "", []string{"PartialCharges"}, true}
	}
	q := make([]float64, len(acf))
	for i, row := range acf {
		at := atoms.Atom(i)
		z := float64(at.Z)
		if valence != nil {
			v, ok := valence[at.Symbol]
			if !ok {
				return nil, Error{"no valence given for element " + at.Symbol, "", []string{"PartialCharges"}, true}
			}
			z = v
		} else if at.Z == 0 {
			return nil, Error{fmt.Sprintf("atom %d (%s) has no atomic number", i, at.Symbol), "", []string{"PartialCharges"}, true}
		}
		q[i] = z - row.Population
	}
	return q, nil
}

//Row is one line of the joined per-atom report.
type Row struct {
	Id         int
	Symbol     string
	X, Y, Z    float64 //the molecule's coordinates, in Å
	Population float64
	Charge     float64
	MinDist    float64
	Volume     float64
}

//Table joins a molecule with its Bader results, row by row. The
//molecule's own coordinates (Å) go in the table; the basin data keeps
//the cube's units. A row-count mismatch is an error.
func Table(atoms dens.Atomer, coords *mat.Dense, acf []*AtomCharge, valence map[string]float64) ([]Row, error) {
	if coords == nil {
		return nil, Error{"nil coordinates", "", []string{"Table"}, true}
	}
	r, _ := coords.Dims()
	if r != atoms.Len() {
		return nil, Error{fmt.Sprintf("%d atoms but %d coordinates", atoms.Len(), r), "", []string{"Table"}, true}
	}
	q, err := PartialCharges(atoms, acf, valence)
	if err != nil {
		return nil, errDecorate(err, "Table")
	}
	rows := make([]Row, len(acf))
	for i, a := range acf {
		at := atoms.Atom(i)
		rows[i] = Row{
			Id:         at.Id,
			Symbol:     at.Symbol,
			X:          coords.At(i, 0),
			Y:          coords.At(i, 1),
			Z:          coords.At(i, 2),
			Population: a.Population,
			Charge:     q[i],
			MinDist:    a.MinDist,
			Volume:     a.Volume,
		}
	}
	return rows, nil
}

//WriteTable writes the joined report as CSV, with a header line.
func WriteTable(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "symbol", "x", "y", "z", "population", "charge", "min_dist", "volume"})
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.Id),
			r.Symbol,
			strconv.FormatFloat(r.X, 'f', 6, 64),
			strconv.FormatFloat(r.Y, 'f', 6, 64),
			strconv.FormatFloat(r.Z, 'f', 6, 64),
			strconv.FormatFloat(r.Population, 'f', 6, 64),
			strconv.FormatFloat(r.Charge, 'f', 6, 64),
			strconv.FormatFloat(r.MinDist, 'f', 6, 64),
			strconv.FormatFloat(r.Volume, 'f', 6, 64),
		}
		if err := cw.Write(rec); err != nil {
			return Error{err.Error(), "", []string{"WriteTable"}, true}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return Error{err.Error(), "", []string{"WriteTable"}, true}
	}
	return nil
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

//Error is the error type for the bader package. It fulfills dens.Error.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	if err.filename == "" {
		return "bader error: " + err.message
	}
	return fmt.Sprintf("bader error (%s): %s", err.filename, err.message)
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
