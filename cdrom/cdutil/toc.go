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

import (
	"github.com/jetsetilly/cdreader/curated"
)

// DiscType is taken from the disc type byte in the TOC.
type DiscType uint8

// List of valid DiscType values.
const (
	DiscTypeCDDAOrMode1 DiscType = 0x00
	DiscTypeCDI         DiscType = 0x10
	DiscTypeCDXA        DiscType = 0x20
)

func (dt DiscType) String() string {
	switch dt {
	case DiscTypeCDDAOrMode1:
		return "CD-DA or CD-ROM"
	case DiscTypeCDI:
		return "CD-i"
	case DiscTypeCDXA:
		return "CD-ROM XA"
	}
	return "unknown"
}

// Bits of the subchannel Q control field.
const (
	ControlPreEmphasis = 0x01
	ControlCopyPermit  = 0x02
	ControlData        = 0x04
	ControlFourChannel = 0x08
)

// ADR value indicating that subchannel Q encodes the current position.
const ADRCurrentPosition = 0x01

// LeadoutTrack is the index of the leadout in the TOC Tracks array.
const LeadoutTrack = 100

// Track is a single entry in the TOC.
type Track struct {
	LBA     int32
	Adr     uint8
	Control uint8
	Valid   bool
}

// IsData returns true if the track is a data track.
func (t Track) IsData() bool {
	return t.Control&ControlData == ControlData
}

// TOC is the table of contents for a disc.
type TOC struct {
	FirstTrack uint8
	LastTrack  uint8
	DiscType   DiscType

	// indexed by track number. entry 0 is unused and entry 100 is the
	// leadout
	Tracks [101]Track
}

// BadTOC is returned by TOC.Validate().
const BadTOC = "cdutil: bad toc: first track %d, last track %d"

// Clear resets the TOC to an empty state.
func (toc *TOC) Clear() {
	*toc = TOC{}
}

// Validate checks that the first and last track numbers are sensible. A disc
// with a TOC that doesn't pass this check should not be used.
func (toc *TOC) Validate() error {
	if toc.FirstTrack < 1 || toc.FirstTrack > 99 || toc.LastTrack < toc.FirstTrack || toc.LastTrack > 99 {
		return curated.Errorf(BadTOC, toc.FirstTrack, toc.LastTrack)
	}
	return nil
}

// FindTrackByLBA returns the track number containing the LBA. Returns zero if
// the LBA is before the first track.
func (toc *TOC) FindTrackByLBA(lba int32) uint8 {
	for t := int(toc.FirstTrack); t <= int(toc.LastTrack)+1; t++ {
		next := t
		if t == int(toc.LastTrack)+1 {
			next = LeadoutTrack
		}
		if lba < toc.Tracks[next].LBA {
			return uint8(t - 1)
		}
	}
	return 0
}

// TrackSectors returns the length of the track in sectors.
func (toc *TOC) TrackSectors(track uint8) int32 {
	if track < toc.FirstTrack || track > toc.LastTrack {
		return 0
	}
	next := int(track) + 1
	if track == toc.LastTrack {
		next = LeadoutTrack
	}
	return toc.Tracks[next].LBA - toc.Tracks[track].LBA
}
