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

// Package cdaccess provides the disc image readers used by the cdif package.
//
// The Access interface is the contract between a reader and the rest of the
// system. Image is an implementation for CUE sheets and cdrdao TOC files,
// with BIN, WAVE, MP3 and Sun AU track files. Synthetic is an in-memory disc
// that generates its own sectors and is useful for testing.
//
// Implementations of Access are not required to be safe for concurrent use,
// with the exception of the FastReadRawPWOnly() function, which may be called
// from any goroutine at any time.
package cdaccess
