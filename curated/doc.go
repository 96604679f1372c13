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

// Package curated is a helper package for the plain Go language error type.
//
// Curated errors are created with the Errorf() function, which takes a
// pattern and placeholder values in the same way as fmt.Errorf(). The pattern
// is remembered and can be tested for with the Is() function:
//
//	e := curated.Errorf("cdif: bad lba %d", lba)
//
//	if curated.Is(e, "cdif: bad lba %d") {
//		...
//	}
//
// Has() checks whether the pattern occurs anywhere in the chain of curated
// errors. Is() only checks the outermost error.
//
// Sentinel errors are achieved by storing the pattern as an exported const
// string. For example, the sectorring package exports ErrClosed, which callers
// can test for with curated.Is(err, sectorring.ErrClosed).
//
// The Error() implementation normalises the message chain by removing
// duplicate adjacent parts. Parts are separated by the sub-string ": ". This
// means functions can wrap errors with their package prefix without worrying
// whether the callee has already done so:
//
//	cdaccess: cdaccess: file not found
//
// is printed as
//
//	cdaccess: file not found
//
// Curated errors implement Unwrap() so that errors created by the standard
// library, when used as a value in the error chain, can still be found with
// errors.Is().
package curated
