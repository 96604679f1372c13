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

package cdaccess

import (
	"sync/atomic"
	"time"

	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/curated"
)

// BadSector is the error pattern returned by Synthetic for sectors listed in
// the Bad field.
const BadSector = "cdaccess: synthetic: bad sector %d"

// Synthetic is an in-memory disc with a single Mode 1 data track. The user
// data of every sector is a pattern derived from the sector's LBA (see the
// SyntheticUserData() function).
//
// The exported fields should be set before the Synthetic is used and must not
// be changed afterwards.
type Synthetic struct {
	// the TOC returned by ReadTOC(). it can be altered after NewSynthetic()
	// to simulate damaged discs
	TOC cdutil.TOC

	// delay applied to every call to ReadRawSector()
	Delay time.Duration

	// sectors that will fail when read
	Bad map[int32]bool

	// the error returned by ReadTOC(). if it is not nil then the TOC field
	// is ignored
	TOCError error

	reads  atomic.Int64
	closed atomic.Bool
}

// NewSynthetic is the preferred method of initialisation for the Synthetic
// type. The disc will have the specified number of sectors in the data track.
func NewSynthetic(sectors int32) *Synthetic {
	s := &Synthetic{
		Bad: make(map[int32]bool),
	}

	s.TOC.FirstTrack = 1
	s.TOC.LastTrack = 1
	s.TOC.DiscType = cdutil.DiscTypeCDDAOrMode1
	s.TOC.Tracks[1] = cdutil.Track{
		LBA:     0,
		Adr:     cdutil.ADRCurrentPosition,
		Control: cdutil.ControlData,
		Valid:   true,
	}
	s.TOC.Tracks[cdutil.LeadoutTrack] = cdutil.Track{
		LBA:     sectors,
		Adr:     cdutil.ADRCurrentPosition,
		Control: cdutil.ControlData,
		Valid:   true,
	}

	return s
}

// SyntheticUserData fills data with the user data of a Synthetic sector.
func SyntheticUserData(lba int32, data []byte) {
	for i := range data {
		data[i] = byte(int(lba)*7 + i*13 + (i >> 8))
	}
}

// ReadTOC implements the Access interface.
func (s *Synthetic) ReadTOC() (cdutil.TOC, error) {
	if s.TOCError != nil {
		return cdutil.TOC{}, s.TOCError
	}
	return s.TOC, nil
}

// ReadRawSector implements the Access interface.
func (s *Synthetic) ReadRawSector(buf []byte, lba int32) error {
	s.reads.Add(1)

	if len(buf) < cdutil.RawSectorSize {
		return curated.Errorf(ShortBuffer, len(buf))
	}

	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}

	if s.Bad[lba] {
		return curated.Errorf(BadSector, lba)
	}

	if lba >= s.TOC.Tracks[cdutil.LeadoutTrack].LBA {
		cdutil.SynthLeadoutSector(0x01, &s.TOC, lba, buf)
		return nil
	}

	clear(buf[:cdutil.RawSectorSize])
	SyntheticUserData(lba, buf[16:16+cdutil.UserDataSize])
	cdutil.EncodeMode1Sector(lba, buf)
	s.subPW(buf[cdutil.SectorSize:], lba)

	return nil
}

func (s *Synthetic) subPW(pw []byte, lba int32) {
	rel := lba
	if lba < 0 {
		rel = -1 - lba
	}
	var index uint8 = 1
	if lba < 0 {
		index = 0
	}

	sq := cdutil.SubQ{
		Adr:      cdutil.ADRCurrentPosition,
		Control:  cdutil.ControlData,
		Track:    1,
		Index:    index,
		Relative: cdutil.SectorsToMSF(rel),
		Absolute: cdutil.LBAToAMSF(lba),
	}

	var q [cdutil.SubQSize]byte
	sq.Encode(q[:])

	clear(pw[:cdutil.SubchannelSize])
	cdutil.SubPQInterleave(q[:], pw, lba < 0)
}

// FastReadRawPWOnly implements the Access interface.
func (s *Synthetic) FastReadRawPWOnly(pwbuf []byte, lba int32) bool {
	if len(pwbuf) < cdutil.SubchannelSize {
		return false
	}
	if lba >= s.TOC.Tracks[cdutil.LeadoutTrack].LBA {
		cdutil.SubPWSynthLeadout(&s.TOC, lba, pwbuf)
		return true
	}
	s.subPW(pwbuf, lba)
	return true
}

// Close implements the Access interface.
func (s *Synthetic) Close() error {
	s.closed.Store(true)
	return nil
}

// Reads returns the number of calls made to ReadRawSector().
func (s *Synthetic) Reads() int64 {
	return s.reads.Load()
}

// Closed returns true if Close() has been called.
func (s *Synthetic) Closed() bool {
	return s.closed.Load()
}
