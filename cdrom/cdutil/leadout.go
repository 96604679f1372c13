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

// SubPWSynthLeadout writes 96 bytes of P-W subchannel data for an LBA in the
// leadout area of the disc.
func SubPWSynthLeadout(toc *TOC, lba int32, pw []byte) {
	control := toc.Tracks[LeadoutTrack].Control
	if toc.Tracks[toc.LastTrack].Valid {
		control |= toc.Tracks[toc.LastTrack].Control & ControlData
	} else if toc.DiscType == DiscTypeCDI {
		control |= ControlData
	}

	sq := SubQ{
		Adr:      ADRCurrentPosition,
		Control:  control,
		Track:    0xaa,
		Index:    1,
		Relative: SectorsToMSF(lba - toc.Tracks[LeadoutTrack].LBA),
		Absolute: LBAToAMSF(lba),
	}

	var q [SubQSize]byte
	sq.Encode(q[:])

	clear(pw[:SubchannelSize])
	SubPQInterleave(q[:], pw, true)
}

// SynthLeadoutSector writes a complete raw sector (with subchannel data) for
// an LBA in the leadout area. The mode argument selects how a data leadout is
// encoded. A mode of 0xff selects the mode according to the disc type.
func SynthLeadoutSector(mode uint8, toc *TOC, lba int32, sector []byte) {
	clear(sector[:RawSectorSize])
	SubPWSynthLeadout(toc, lba, sector[SectorSize:])

	// the data bit of the control field is the second bit of the Q
	// subchannel
	if sector[SectorSize+1]&0x40 != 0x40 {
		return
	}

	if mode == 0xff {
		if toc.DiscType == DiscTypeCDXA || toc.DiscType == DiscTypeCDI {
			mode = 0x02
		} else {
			mode = 0x01
		}
	}

	switch mode {
	case 0x01:
		EncodeMode1Sector(lba, sector)
	case 0x02:
		sector[subheaderOffset+2] = 0x20
		sector[subheaderOffset+6] = 0x20
		EncodeMode2Form2Sector(lba, sector)
	default:
		EncodeMode0Sector(lba, sector)
	}
}
