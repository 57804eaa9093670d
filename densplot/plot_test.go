/*
 * plot_test.go, part of godens.
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
 */

package densplot

import (
	"fmt"
	"math"
	"os"
	"testing"
)

const rootdirtest = "../test"

func TestRadialProfilePlot(Te *testing.T) {
	fmt.Println("Radial profile plot test!")
	n := 50
	r := make([]float64, n)
	prof := make([]float64, n)
	ref := make([]float64, n)
	for i := 0; i < n; i++ {
		r[i] = float64(i) * 0.1
		prof[i] = math.Exp(-r[i] * r[i])
		ref[i] = math.Exp(-r[i])
	}
	prof[3] = math.NaN() //an empty bin must not break the plot
	name := rootdirtest + "/profile.png"
	err := RadialProfile(r, [][]float64{prof, ref}, []string{"gaussian", "exponential"}, "test profiles", name)
	if err != nil {
		Te.Fatal(err)
	}
	if fi, err := os.Stat(name); err != nil || fi.Size() == 0 {
		Te.Error("no png written")
	}
	//mismatched lengths must be refused
	err = RadialProfile(r[:10], [][]float64{prof}, nil, "", name)
	if err == nil {
		Te.Error("mismatched axis should be an error")
	}
}

func TestChargeComparisonPlot(Te *testing.T) {
	fmt.Println("Charge comparison plot test!")
	ref := []float64{-1.05, 0.52, 0.53, -0.3}
	pred := []float64{-0.98, 0.49, 0.51, -0.28}
	name := rootdirtest + "/charges.png"
	if err := ChargeComparison(ref, pred, "test charges", name); err != nil {
		Te.Fatal(err)
	}
	if fi, err := os.Stat(name); err != nil || fi.Size() == 0 {
		Te.Error("no png written")
	}
	if err := ChargeComparison(ref, pred[:2], "", name); err == nil {
		Te.Error("mismatched slices should be an error")
	}
}

func TestValueHistogramPlot(Te *testing.T) {
	fmt.Println("Histogram plot test!")
	vals := make([]float64, 1000)
	for i := range vals {
		vals[i] = math.Sin(float64(i) * 0.01)
	}
	name := rootdirtest + "/hist.png"
	if err := ValueHistogram(vals, 0, "test histogram", name); err != nil {
		Te.Fatal(err)
	}
	if fi, err := os.Stat(name); err != nil || fi.Size() == 0 {
		Te.Error("no png written")
	}
}
