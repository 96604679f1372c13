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

// Sizes of the different parts of a raw sector.
const (
	SectorSize     = 2352
	SubchannelSize = 96
	RawSectorSize  = SectorSize + SubchannelSize
	UserDataSize   = 2048
)

// The range of LBAs that can be read. Reads outside of this range always fail
// without touching the disc image.
const (
	LBAReadMinimum int32 = -150
	LBAReadMaximum int32 = 449849
)

// InReadRange returns true if the LBA is in the readable range.
func InReadRange(lba int32) bool {
	return lba >= LBAReadMinimum && lba <= LBAReadMaximum
}

// LBAToABA converts a logical block address to an absolute block address.
func LBAToABA(lba int32) int32 {
	return lba + 150
}

// ABAToLBA converts an absolute block address to a logical block address.
func ABAToLBA(aba int32) int32 {
	return aba - 150
}

// offsets into a raw sector.
const (
	headerOffset    = 12
	modeOffset      = 15
	subheaderOffset = 16
	mode1DataOffset = 16
	mode2DataOffset = 24
)

var syncPattern = [12]byte{0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00}

// SectorMode returns the mode byte from the sector header.
func SectorMode(sector []byte) uint8 {
	return sector[modeOffset]
}

// IsForm2 returns true if the submode byte of a Mode 2 sector indicates Form 2.
func IsForm2(sector []byte) bool {
	return sector[subheaderOffset+2]&0x20 == 0x20
}

// UserData returns the 2048 bytes of user data in a Mode 1 or Mode 2 Form 1
// sector. Returns nil for any other mode.
func UserData(sector []byte) []byte {
	switch SectorMode(sector) {
	case 1:
		return sector[mode1DataOffset : mode1DataOffset+UserDataSize]
	case 2:
		return sector[mode2DataOffset : mode2DataOffset+UserDataSize]
	}
	return nil
}

// HasSync returns true if the sector begins with the sync pattern.
func HasSync(sector []byte) bool {
	return [12]byte(sector[:12]) == syncPattern
}
