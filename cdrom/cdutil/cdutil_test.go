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

package cdutil_test

import (
	"math/rand/v2"
	"testing"

	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/test"
)

func TestBCD(t *testing.T) {
	for v := range uint8(100) {
		b := cdutil.U8ToBCD(v)
		test.ExpectSuccess(t, cdutil.BCDIsValid(b))
		test.ExpectEquality(t, cdutil.BCDToU8(b), v)
	}
	test.ExpectEquality(t, cdutil.U8ToBCD(59), 0x59)
	test.ExpectFailure(t, cdutil.BCDIsValid(0x5a))
	test.ExpectFailure(t, cdutil.BCDIsValid(0xa5))
}

func TestMSF(t *testing.T) {
	test.ExpectEquality(t, cdutil.LBAToAMSF(0), cdutil.MSF{M: 0, S: 2, F: 0})
	test.ExpectEquality(t, cdutil.LBAToAMSF(-150), cdutil.MSF{M: 0, S: 0, F: 0})
	test.ExpectEquality(t, cdutil.LBAToAMSF(4350), cdutil.MSF{M: 1, S: 0, F: 0})
	test.ExpectEquality(t, cdutil.LBAToAMSF(cdutil.LBAReadMaximum).String(), "99:59:74")

	for _, lba := range []int32{-150, 0, 1, 74, 75, 4499, 100000, cdutil.LBAReadMaximum} {
		test.ExpectEquality(t, cdutil.AMSFToLBA(cdutil.LBAToAMSF(lba)), lba)
	}
}

func TestTOCValidate(t *testing.T) {
	var toc cdutil.TOC

	toc.FirstTrack = 1
	toc.LastTrack = 1
	test.ExpectSuccess(t, toc.Validate())

	toc.FirstTrack = 1
	toc.LastTrack = 99
	test.ExpectSuccess(t, toc.Validate())

	toc.FirstTrack = 0
	toc.LastTrack = 1
	test.ExpectSuccess(t, curated.Is(toc.Validate(), cdutil.BadTOC))

	toc.FirstTrack = 1
	toc.LastTrack = 150
	test.ExpectFailure(t, toc.Validate())

	toc.FirstTrack = 5
	toc.LastTrack = 4
	test.ExpectFailure(t, toc.Validate())
}

func TestFindTrack(t *testing.T) {
	var toc cdutil.TOC
	toc.FirstTrack = 1
	toc.LastTrack = 3
	toc.Tracks[1].LBA = 0
	toc.Tracks[2].LBA = 1000
	toc.Tracks[3].LBA = 2000
	toc.Tracks[cdutil.LeadoutTrack].LBA = 3000

	test.ExpectEquality(t, toc.FindTrackByLBA(-1), 0)
	test.ExpectEquality(t, toc.FindTrackByLBA(0), 1)
	test.ExpectEquality(t, toc.FindTrackByLBA(999), 1)
	test.ExpectEquality(t, toc.FindTrackByLBA(1000), 2)
	test.ExpectEquality(t, toc.FindTrackByLBA(2999), 3)
	test.ExpectEquality(t, toc.FindTrackByLBA(3000), 0)

	test.ExpectEquality(t, toc.TrackSectors(1), 1000)
	test.ExpectEquality(t, toc.TrackSectors(3), 1000)
	test.ExpectEquality(t, toc.TrackSectors(4), 0)
}

func TestSubQ(t *testing.T) {
	sq := cdutil.SubQ{
		Adr:      cdutil.ADRCurrentPosition,
		Control:  cdutil.ControlData,
		Track:    2,
		Index:    1,
		Relative: cdutil.MSF{M: 0, S: 1, F: 2},
		Absolute: cdutil.MSF{M: 10, S: 20, F: 30},
	}

	var q [cdutil.SubQSize]byte
	sq.Encode(q[:])
	test.ExpectSuccess(t, cdutil.SubQCheckChecksum(q[:]))
	test.ExpectEquality(t, cdutil.DecodeSubQ(q[:]), sq)

	// interleaving and deinterleaving returns the same Q subchannel
	var pw [cdutil.SubchannelSize]byte
	cdutil.SubPQInterleave(q[:], pw[:], true)
	for _, b := range pw {
		test.ExpectEquality(t, b&0x80, 0x80)
	}

	var r [cdutil.SubQSize]byte
	cdutil.SubQDeinterleave(pw[:], r[:])
	test.ExpectEquality(t, r, q)

	// a corrupted Q subchannel fails the check
	q[3] ^= 0x01
	test.ExpectFailure(t, cdutil.SubQCheckChecksum(q[:]))
}

func randomSector(t *testing.T, seed uint64) []byte {
	t.Helper()
	rnd := rand.New(rand.NewPCG(seed, seed))
	sector := make([]byte, cdutil.RawSectorSize)
	for i := range sector {
		sector[i] = byte(rnd.UintN(256))
	}
	return sector
}

func TestMode1Encoding(t *testing.T) {
	sector := randomSector(t, 1)
	cdutil.EncodeMode1Sector(1000, sector)

	test.ExpectSuccess(t, cdutil.HasSync(sector))
	test.ExpectEquality(t, cdutil.SectorMode(sector), 1)
	test.ExpectSuccess(t, cdutil.CheckEDC(sector, false))
	test.ExpectSuccess(t, cdutil.CheckAndCorrect(sector, false))

	// header is the absolute MSF address in BCD
	msf := cdutil.LBAToAMSF(1000).BCD()
	test.ExpectEquality(t, [3]byte(sector[12:15]), msf)
}

func TestMode1Correction(t *testing.T) {
	sector := randomSector(t, 2)
	cdutil.EncodeMode1Sector(5000, sector)

	original := make([]byte, len(sector))
	copy(original, sector)

	// single byte error in the user data
	sector[0x100] ^= 0x5a
	test.ExpectFailure(t, cdutil.CheckEDC(sector, false))
	test.ExpectSuccess(t, cdutil.CheckAndCorrect(sector, false))
	test.ExpectEquality(t, string(sector[:cdutil.SectorSize]), string(original[:cdutil.SectorSize]))

	// errors in several vectors, including the header and the parity bytes
	sector[0x010] ^= 0xff
	sector[0x400] ^= 0x01
	sector[0x700] ^= 0x80
	sector[0x00e] ^= 0x12
	sector[0x820] ^= 0x34
	test.ExpectSuccess(t, cdutil.CheckAndCorrect(sector, false))
	test.ExpectEquality(t, string(sector[:cdutil.SectorSize]), string(original[:cdutil.SectorSize]))
}

func TestMode1Uncorrectable(t *testing.T) {
	sector := randomSector(t, 3)
	cdutil.EncodeMode1Sector(0, sector)

	// destroy a large part of the sector
	for i := 0x100; i < 0x300; i++ {
		sector[i] ^= 0xaa
	}
	test.ExpectFailure(t, cdutil.CheckAndCorrect(sector, false))
}

func TestMode2Form1Correction(t *testing.T) {
	sector := randomSector(t, 4)

	// submode with the form 2 bit clear
	sector[16+2] = 0x08
	sector[20+2] = 0x08
	cdutil.EncodeMode2Form1Sector(200, sector)

	test.ExpectEquality(t, cdutil.SectorMode(sector), 2)
	test.ExpectFailure(t, cdutil.IsForm2(sector))
	test.ExpectSuccess(t, cdutil.CheckEDC(sector, true))

	original := make([]byte, len(sector))
	copy(original, sector)

	sector[0x200] ^= 0x33
	test.ExpectSuccess(t, cdutil.CheckAndCorrect(sector, true))
	test.ExpectEquality(t, string(sector[:cdutil.SectorSize]), string(original[:cdutil.SectorSize]))

	// the header is not covered by the EDC or L-EC of a Mode 2 sector and is
	// not changed by the correction
	test.ExpectEquality(t, [4]byte(sector[12:16]), [4]byte(original[12:16]))
}

func TestUserData(t *testing.T) {
	sector := make([]byte, cdutil.RawSectorSize)
	for i := range cdutil.UserDataSize {
		sector[16+i] = byte(i)
	}
	cdutil.EncodeMode1Sector(0, sector)
	d := cdutil.UserData(sector)
	test.DemandEquality(t, len(d), cdutil.UserDataSize)
	test.ExpectEquality(t, d[10], 10)

	cdutil.EncodeMode0Sector(0, sector)
	test.ExpectSuccess(t, cdutil.UserData(sector) == nil)
}

func TestLeadout(t *testing.T) {
	var toc cdutil.TOC
	toc.FirstTrack = 1
	toc.LastTrack = 1
	toc.Tracks[1] = cdutil.Track{LBA: 0, Adr: 1, Control: cdutil.ControlData, Valid: true}
	toc.Tracks[cdutil.LeadoutTrack] = cdutil.Track{LBA: 1000, Adr: 1, Control: cdutil.ControlData, Valid: true}

	sector := make([]byte, cdutil.RawSectorSize)
	cdutil.SynthLeadoutSector(0xff, &toc, 1010, sector)

	// data leadout on a mode 1 disc
	test.ExpectEquality(t, cdutil.SectorMode(sector), 1)
	test.ExpectSuccess(t, cdutil.CheckEDC(sector, false))

	var q [cdutil.SubQSize]byte
	cdutil.SubQDeinterleave(sector[cdutil.SectorSize:], q[:])
	test.ExpectSuccess(t, cdutil.SubQCheckChecksum(q[:]))

	sq := cdutil.DecodeSubQ(q[:])
	test.ExpectEquality(t, sq.Track, 0xaa)
	test.ExpectEquality(t, sq.Index, 1)
	test.ExpectEquality(t, sq.Relative, cdutil.MSF{M: 0, S: 0, F: 10})
	test.ExpectEquality(t, sq.Absolute, cdutil.LBAToAMSF(1010))

	// audio leadout contains no data
	toc.Tracks[1].Control = 0
	toc.Tracks[cdutil.LeadoutTrack].Control = 0
	cdutil.SynthLeadoutSector(0xff, &toc, 1010, sector)
	for _, b := range sector[:cdutil.SectorSize] {
		test.DemandEquality(t, b, 0)
	}
}
