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

package cdutil

import "fmt"

// U8ToBCD converts a value in the range 0 to 99 to binary coded decimal.
func U8ToBCD(v uint8) uint8 {
	return ((v / 10) << 4) | (v % 10)
}

// BCDToU8 converts a binary coded decimal value to an integer.
func BCDToU8(v uint8) uint8 {
	return (v>>4)*10 + (v & 0x0f)
}

// BCDIsValid returns true if both nibbles of the value are decimal digits.
func BCDIsValid(v uint8) bool {
	return v&0xf0 <= 0x90 && v&0x0f <= 0x09
}

// MSF is a minute/second/frame address.
type MSF struct {
	M uint8
	S uint8
	F uint8
}

func (m MSF) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", m.M, m.S, m.F)
}

// Sectors returns the number of sectors represented by the MSF value.
func (m MSF) Sectors() int32 {
	return (int32(m.M)*60+int32(m.S))*75 + int32(m.F)
}

// BCD returns the MSF value as three BCD bytes.
func (m MSF) BCD() [3]uint8 {
	return [3]uint8{U8ToBCD(m.M), U8ToBCD(m.S), U8ToBCD(m.F)}
}

// SectorsToMSF converts a count of sectors to an MSF value.
func SectorsToMSF(n int32) MSF {
	return MSF{
		M: uint8(n / 75 / 60),
		S: uint8((n / 75) % 60),
		F: uint8(n % 75),
	}
}

// LBAToAMSF returns the absolute MSF address of an LBA.
func LBAToAMSF(lba int32) MSF {
	return SectorsToMSF(LBAToABA(lba))
}

// AMSFToLBA returns the LBA of an absolute MSF address.
func AMSFToLBA(m MSF) int32 {
	return ABAToLBA(m.Sectors())
}
