/*
 * godens.go, part of godens.
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

//The godens command runs a density workflow described in a YAML file:
//it computes or predicts the electron density of a molecule with an
//external engine, writes it as cube and/or OpenDX, and optionally runs
//a Bader charge analysis and a couple of plots on the result.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/mvera/godens/cfg"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("The path of the configuration file must be specified in the arguments")
	}

	log.Printf("Reading configuration file `%s`\n", os.Args[1])
	c, err := cfg.New(os.Args[1])
	if err != nil {
		log.Fatal(fmt.Errorf("cfg.New: %w", err))
	}

	if err := c.Run(); err != nil {
		log.Fatal(err)
	}

	log.Println("Done")
}
