/*
 * doc.go, part of godens.
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

/*
Package dens provides atom and molecule structures and file facilities for working
with molecular electron densities sampled on voxel grids.

The density itself is always produced by an external engine (a DFT program driven
through PySCF, a pre-trained neural predictor, or any program that can write a
Gaussian cube file). This library covers everything around those engines: reading
and writing molecules, building grids, streaming samples into cube and OpenDX
files, driving the external programs, and analyzing their output (integration,
error measures, radial profiles and Bader charge tables).

Subpackages:

	grid      lazy voxel grids and grid analyses
	cube      Gaussian cube format, streaming and whole-file
	dx        OpenDX scalar fields
	qc        handles for external density engines
	bader     glue for the Henkelman group's bader program
	densplot  plots for densities and charges
	cfg       YAML-configured end-to-end pipelines

Coordinates in this package are in Ångström. The cube format is written in Bohr,
the conversion happens at the format boundary.
*/
package dens
