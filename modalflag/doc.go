// This file is part of cdreader.
//
// cdreader is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// cdreader is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with cdreader.  If not, see <https://www.gnu.org/licenses/>.

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It provides a convenient method of handling program modes (and
// sub-modes) and allows different flags for each mode.
//
// At its simplest it can be used as a replacement for the flag package, with
// some differences. Notably, the Parse() function returns a ParseResult which
// should be checked before continuing.
//
//	md := Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	logging := md.AddBool("log", false, "echo log to stderr")
//	switch md.Parse() {
//	case ParseHelp:
//		return
//	case ParseError:
//		panic(err)
//	}
//
// Modes are added with AddSubMode(). The first mode added is the default mode
// and is selected if the first remaining argument does not name a mode. Mode
// names are matched without regard to case.
//
//	md.NewMode()
//	md.AddSubMode("INFO", "print the disc layout")
//	md.AddSubMode("READ", "dump sectors")
//	p, err := md.Parse()
//
//	switch md.Mode() {
//	case "INFO":
//		...
//	}
//
// After each call to Parse() the flags for the selected mode can be added,
// after a call to NewMode(), and Parse() called again. The Path() function
// returns the sequence of modes selected so far, separated by a slash.
package modalflag
