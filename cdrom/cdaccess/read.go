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
	"io"

	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/curated"
)

// Sentinel error patterns returned by ReadRawSector().
const (
	NoTrackForSector = "cdaccess: no track for sector %d"
	ShortBuffer      = "cdaccess: buffer too small (%d bytes)"
	ReadError        = "cdaccess: sector %d: %v"
)

// ReadRawSector implements the Access interface.
func (img *Image) ReadRawSector(buf []byte, lba int32) error {
	if len(buf) < cdutil.RawSectorSize {
		return curated.Errorf(ShortBuffer, len(buf))
	}

	if lba >= img.totalSectors {
		var mode uint8 = 0xff
		switch last := img.tracks[img.lastTrack].format; {
		case last.isMode1():
			mode = 0x01
		case last.isMode2():
			mode = 0x02
		}
		cdutil.SynthLeadoutSector(mode, &img.toc, lba, buf)
		return nil
	}

	clear(buf[cdutil.SectorSize:cdutil.RawSectorSize])
	track, err := img.makeSubPQ(lba, buf[cdutil.SectorSize:])
	if err != nil {
		return err
	}
	trk := &img.tracks[track]

	// pregap and postgap sectors are not in the track file
	if lba < trk.lba-trk.pregapDV || lba >= trk.lba+trk.sectors {
		img.synthGapSector(track, lba, buf)
		return nil
	}

	pos := trk.fileOffset + int64(lba-trk.lba)*trk.stride()

	read := func(p []byte, off int64) error {
		n, err := trk.src.ReadAt(p, off)
		if n == len(p) {
			return nil
		}
		if trk.src.decoded() {
			// decoded audio is silent past the end of the data
			clear(p[n:])
			return nil
		}
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return curated.Errorf(ReadError, lba, err)
	}

	switch trk.format {
	case FormatAudio:
		if err := read(buf[:cdutil.SectorSize], pos); err != nil {
			return err
		}
		if trk.msbFirst && !trk.src.decoded() {
			for i := 0; i < cdutil.SectorSize; i += 2 {
				buf[i], buf[i+1] = buf[i+1], buf[i]
			}
		}

	case FormatMode1:
		clear(buf[:cdutil.SectorSize])
		if err := read(buf[16:16+trk.format.Size()], pos); err != nil {
			return err
		}
		cdutil.EncodeMode1Sector(lba, buf)

	case FormatMode1Raw, FormatMode2Raw, FormatCDIRaw:
		if err := read(buf[:cdutil.SectorSize], pos); err != nil {
			return err
		}

	case FormatMode2:
		clear(buf[:cdutil.SectorSize])
		if err := read(buf[16:16+trk.format.Size()], pos); err != nil {
			return err
		}
		cdutil.EncodeMode2Sector(lba, buf)

	case FormatMode2Form1:
		clear(buf[:cdutil.SectorSize])
		if err := read(buf[24:24+trk.format.Size()], pos); err != nil {
			return err
		}
		cdutil.EncodeMode2Form1Sector(lba, buf)

	case FormatMode2Form2:
		clear(buf[:cdutil.SectorSize])
		if err := read(buf[24:24+trk.format.Size()], pos); err != nil {
			return err
		}
		buf[18] = 0x20
		buf[22] = 0x20
		cdutil.EncodeMode2Form2Sector(lba, buf)
	}

	if trk.subchannel {
		if err := read(buf[cdutil.SectorSize:cdutil.RawSectorSize], pos+trk.format.Size()); err != nil {
			return err
		}
	}

	return nil
}

// the track whose format should be used for the synthesis of a gap sector.
// the part of the pregap of a data track that follows an audio track and is
// more than two seconds before the start of the data is treated as audio.
func (img *Image) gapTrack(track int, lba int32) *imageTrack {
	trk := &img.tracks[track]
	if lba-trk.lba < -150 && trk.control&cdutil.ControlData == cdutil.ControlData && track > img.firstTrack {
		prev := &img.tracks[track-1]
		if prev.control&cdutil.ControlData == 0 {
			return prev
		}
	}
	return trk
}

func (img *Image) synthGapSector(track int, lba int32, buf []byte) {
	clear(buf[:cdutil.SectorSize])

	f := img.gapTrack(track, lba).format
	switch {
	case f.isMode1():
		cdutil.EncodeMode1Sector(lba, buf)
	case f.isMode2():
		buf[18] = 0x20
		buf[22] = 0x20
		cdutil.EncodeMode2Form2Sector(lba, buf)
	}
}

// FastReadRawPWOnly implements the Access interface. Subchannel data is
// synthesised from the track layout, which does not change after the image
// is opened, so the function is safe to call concurrently.
func (img *Image) FastReadRawPWOnly(pwbuf []byte, lba int32) bool {
	if len(pwbuf) < cdutil.SubchannelSize {
		return false
	}

	if lba >= img.totalSectors {
		cdutil.SubPWSynthLeadout(&img.toc, lba, pwbuf)
		return true
	}

	clear(pwbuf[:cdutil.SubchannelSize])
	track, err := img.makeSubPQ(lba, pwbuf)
	if err != nil {
		return false
	}

	// subchannel data stored in the track file can not be synthesised
	trk := &img.tracks[track]
	if trk.subchannel && lba >= trk.lba-trk.pregapDV && lba < trk.lba+trk.sectors {
		return false
	}

	return true
}

// makeSubPQ adds the P and Q subchannel data for the LBA to the existing
// contents of pw. Returns the track number.
func (img *Image) makeSubPQ(lba int32, pw []byte) (int, error) {
	track := -1
	for x := img.firstTrack; x <= img.lastTrack; x++ {
		trk := &img.tracks[x]
		if lba >= trk.lba-trk.pregapDV-trk.pregap && lba < trk.lba+trk.sectors+trk.postgap {
			track = x
			break
		}
	}
	if track < 0 {
		return 0, curated.Errorf(NoTrackForSector, lba)
	}
	trk := &img.tracks[track]

	var rel int32
	if lba < trk.lba {
		rel = trk.lba - 1 - lba
	} else {
		rel = lba - trk.lba
	}

	// pause bit is set in the pregap and postgap
	pause := lba < trk.lba || lba >= trk.lba+trk.sectors

	var index uint8
	for i, v := range trk.index {
		if lba >= v {
			index = uint8(i)
		}
	}

	sq := cdutil.SubQ{
		Adr:      cdutil.ADRCurrentPosition,
		Control:  img.gapTrack(track, lba).control,
		Track:    uint8(track),
		Index:    index,
		Relative: cdutil.SectorsToMSF(rel),
		Absolute: cdutil.LBAToAMSF(lba),
	}

	var q [cdutil.SubQSize]byte
	sq.Encode(q[:])

	if r, ok := img.subQReplace[cdutil.LBAToABA(lba)]; ok {
		q = r
	}

	cdutil.SubPQInterleave(q[:], pw, pause)

	return track, nil
}
