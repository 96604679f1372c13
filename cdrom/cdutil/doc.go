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

// Package cdutil contains the types, constants and helper functions common
// to all CD-ROM handling code.
//
// A raw sector is 2352 bytes of sector data followed by 96 bytes of
// interleaved P-W subchannel data. Sectors are addressed by LBA, where LBA
// zero is the first sector of the program area. Absolute sector addresses
// (ABA) are offset by 150 sectors, the two second pregap of the first track.
//
// The L-EC functions generate and check the error detection code and the
// Reed-Solomon product code of Mode 1 and Mode 2 Form 1 sectors.
package cdutil
