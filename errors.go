/*
 * errors.go, part of godens.
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

import "fmt"

//CError is the concrete error type for the root package. It fulfills the
//Error interface declared in interfaces.go.
type CError struct {
	msg  string
	deco []string
}

func (err CError) Error() string { return err.msg }

//Decorate adds new information to the error. Even though the receiver is
//not a pointer, appending to the deco slice works, as the slice is a
//reference itself.
func (err CError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func cError(msg, caller string) CError {
	return CError{msg, []string{caller}}
}

func cErrorf(caller, format string, args ...interface{}) CError {
	return CError{fmt.Sprintf(format, args...), []string{caller}}
}

//errDecorate asserts that err implements Error and decorates it with the
//caller's name before returning it. If given some other error type it
//wraps it in a CError instead of panicking.
func errDecorate(err error, caller string) error {
	err2, ok := err.(Error)
	if !ok {
		return cError(err.Error(), caller)
	}
	err2.Decorate(caller)
	return err2
}
