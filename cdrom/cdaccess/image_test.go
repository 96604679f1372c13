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

package cdaccess_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/cdreader/cdrom/cdaccess"
	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/logger"
	"github.com/jetsetilly/cdreader/test"
)

func writeFile(t *testing.T, dir string, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	test.DemandSuccess(t, os.WriteFile(path, data, 0o644))
	return path
}

// raw mode 1 sectors for a data track that starts at LBA start
func mode1Sectors(start int32, n int) []byte {
	data := make([]byte, 0, n*cdutil.SectorSize)
	buf := make([]byte, cdutil.SectorSize)
	for i := range n {
		clear(buf)
		lba := start + int32(i)
		cdaccess.SyntheticUserData(lba, buf[16:16+cdutil.UserDataSize])
		cdutil.EncodeMode1Sector(lba, buf)
		data = append(data, buf...)
	}
	return data
}

func pattern(n int, seed int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte((i + seed) % 251)
	}
	return b
}

func subQ(buf []byte) cdutil.SubQ {
	var q [cdutil.SubQSize]byte
	cdutil.SubQDeinterleave(buf, q[:])
	return cdutil.DecodeSubQ(q[:])
}

func openImage(t *testing.T, path string) *cdaccess.Image {
	t.Helper()
	img, err := cdaccess.OpenImage(logger.Allow, cdaccess.OSFileSystem{}, path, false)
	test.DemandSuccess(t, err)
	t.Cleanup(func() { img.Close() })
	return img
}

func TestImplementsAccess(t *testing.T) {
	var acc cdaccess.Access
	test.ExpectImplements(t, &cdaccess.Image{}, acc)
	test.ExpectImplements(t, &cdaccess.Synthetic{}, acc)
}

func TestCueSingleTrack(t *testing.T) {
	dir := t.TempDir()
	bin := mode1Sectors(0, 10)
	writeFile(t, dir, "disc.bin", bin)
	cue := writeFile(t, dir, "disc.cue", []byte(`FILE "disc.bin" BINARY
  TRACK 01 MODE1/2352
    INDEX 01 00:00:00
`))

	img := openImage(t, cue)

	toc, err := img.ReadTOC()
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, toc.Validate())
	test.ExpectEquality(t, toc.FirstTrack, 1)
	test.ExpectEquality(t, toc.LastTrack, 1)
	test.ExpectEquality(t, toc.DiscType, cdutil.DiscTypeCDDAOrMode1)
	test.ExpectEquality(t, toc.Tracks[1].LBA, 0)
	test.ExpectEquality(t, toc.Tracks[1].IsData(), true)
	test.ExpectEquality(t, toc.Tracks[cdutil.LeadoutTrack].LBA, 10)

	info := img.Tracks()
	test.ExpectEquality(t, len(info), 1)
	test.ExpectEquality(t, info[0].Format, cdaccess.FormatMode1Raw)
	test.ExpectEquality(t, info[0].Sectors, 10)
	test.ExpectEquality(t, info[0].Pregap, 150)

	buf := make([]byte, cdutil.RawSectorSize)

	// sector data from the file
	test.ExpectSuccess(t, img.ReadRawSector(buf, 3))
	test.ExpectEquality(t, bytes.Equal(buf[:cdutil.SectorSize], bin[3*cdutil.SectorSize:4*cdutil.SectorSize]), true)

	sq := subQ(buf[cdutil.SectorSize:])
	test.ExpectEquality(t, sq.Track, 1)
	test.ExpectEquality(t, sq.Index, 1)
	test.ExpectEquality(t, sq.Relative, cdutil.SectorsToMSF(3))
	test.ExpectEquality(t, sq.Absolute, cdutil.LBAToAMSF(3))
	test.ExpectEquality(t, buf[cdutil.SectorSize]&0x80, 0)

	// the subchannel data can be synthesised without reading the file
	pw := make([]byte, cdutil.SubchannelSize)
	test.ExpectSuccess(t, img.FastReadRawPWOnly(pw, 3))
	test.ExpectEquality(t, bytes.Equal(pw, buf[cdutil.SectorSize:]), true)

	// pregap is synthesised
	test.ExpectSuccess(t, img.ReadRawSector(buf, -1))
	test.ExpectEquality(t, cdutil.HasSync(buf), true)
	test.ExpectEquality(t, cdutil.SectorMode(buf), 1)
	test.ExpectEquality(t, cdutil.CheckEDC(buf, false), true)
	sq = subQ(buf[cdutil.SectorSize:])
	test.ExpectEquality(t, sq.Index, 0)
	test.ExpectEquality(t, sq.Relative, cdutil.SectorsToMSF(0))
	test.ExpectEquality(t, buf[cdutil.SectorSize]&0x80, 0x80)

	// leadout
	test.ExpectSuccess(t, img.ReadRawSector(buf, 10))
	sq = subQ(buf[cdutil.SectorSize:])
	test.ExpectEquality(t, sq.Track, 0xaa)
	test.ExpectEquality(t, cdutil.SectorMode(buf), 1)
	test.ExpectSuccess(t, img.FastReadRawPWOnly(pw, 10))
}

func TestCueMultiTrack(t *testing.T) {
	dir := t.TempDir()

	audio := pattern(5*cdutil.SectorSize, 0)
	data := mode1Sectors(5, 5)
	writeFile(t, dir, "mixed.bin", append(append([]byte{}, audio...), data...))
	cue := writeFile(t, dir, "mixed.cue", []byte(`REM a comment
FILE "mixed.bin" BINARY
  TRACK 01 AUDIO
    FLAGS DCP
    INDEX 01 00:00:00
  TRACK 02 MODE1/2352
    INDEX 00 00:00:05
    INDEX 01 00:00:07
`))

	img := openImage(t, cue)
	toc, err := img.ReadTOC()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, toc.FirstTrack, 1)
	test.ExpectEquality(t, toc.LastTrack, 2)
	test.ExpectEquality(t, toc.Tracks[1].LBA, 0)
	test.ExpectEquality(t, toc.Tracks[1].IsData(), false)
	test.ExpectEquality(t, toc.Tracks[1].Control&cdutil.ControlCopyPermit, cdutil.ControlCopyPermit)
	test.ExpectEquality(t, toc.Tracks[2].LBA, 7)
	test.ExpectEquality(t, toc.Tracks[2].IsData(), true)
	test.ExpectEquality(t, toc.Tracks[cdutil.LeadoutTrack].LBA, 10)
	test.ExpectEquality(t, toc.TrackSectors(1), 7)
	test.ExpectEquality(t, toc.FindTrackByLBA(6), 1)
	test.ExpectEquality(t, toc.FindTrackByLBA(7), 2)

	buf := make([]byte, cdutil.RawSectorSize)

	// audio data is returned as is
	test.ExpectSuccess(t, img.ReadRawSector(buf, 2))
	test.ExpectEquality(t, bytes.Equal(buf[:cdutil.SectorSize], audio[2*cdutil.SectorSize:3*cdutil.SectorSize]), true)
	test.ExpectEquality(t, subQ(buf[cdutil.SectorSize:]).Track, 1)

	// the index 0 part of track 2 is in the file
	test.ExpectSuccess(t, img.ReadRawSector(buf, 5))
	test.ExpectEquality(t, bytes.Equal(buf[:cdutil.SectorSize], data[:cdutil.SectorSize]), true)
	sq := subQ(buf[cdutil.SectorSize:])
	test.ExpectEquality(t, sq.Track, 2)
	test.ExpectEquality(t, sq.Index, 0)
	test.ExpectEquality(t, sq.Relative, cdutil.SectorsToMSF(1))
	test.ExpectEquality(t, sq.Control&cdutil.ControlData, cdutil.ControlData)

	test.ExpectSuccess(t, img.ReadRawSector(buf, 9))
	test.ExpectEquality(t, bytes.Equal(buf[:cdutil.SectorSize], data[4*cdutil.SectorSize:]), true)
	test.ExpectEquality(t, subQ(buf[cdutil.SectorSize:]).Index, 1)
}

func TestCueMode1Cooked(t *testing.T) {
	dir := t.TempDir()

	user := pattern(3*cdutil.UserDataSize, 7)
	writeFile(t, dir, "cooked.iso", user)
	cue := writeFile(t, dir, "cooked.cue", []byte("FILE cooked.iso BINARY\nTRACK 01 MODE1/2048\nINDEX 01 00:00:00\n"))

	img := openImage(t, cue)
	buf := make([]byte, cdutil.RawSectorSize)
	test.ExpectSuccess(t, img.ReadRawSector(buf, 1))
	test.ExpectEquality(t, cdutil.SectorMode(buf), 1)
	test.ExpectEquality(t, cdutil.CheckEDC(buf, false), true)
	test.ExpectEquality(t, bytes.Equal(cdutil.UserData(buf), user[cdutil.UserDataSize:2*cdutil.UserDataSize]), true)
}

func TestCueErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "disc.bin", mode1Sectors(0, 4))

	open := func(name string, cue string) error {
		path := writeFile(t, dir, name, []byte(cue))
		img, err := cdaccess.OpenImage(logger.Allow, cdaccess.OSFileSystem{}, path, false)
		if err == nil {
			img.Close()
		}
		return err
	}

	err := open("unknown.cue", "BOGUS directive\n")
	test.ExpectEquality(t, curated.Is(err, cdaccess.UnknownDirective), true)

	err = open("empty.cue", "REM nothing here\n")
	test.ExpectEquality(t, curated.Is(err, cdaccess.NoTracks), true)

	err = open("missing.cue", `FILE "disc.bin" BINARY
TRACK 01 MODE1/2352
INDEX 01 00:00:00
TRACK 03 MODE1/2352
INDEX 01 00:00:02
`)
	test.ExpectEquality(t, curated.Is(err, cdaccess.MissingTrack), true)

	err = open("format.cue", "FILE \"disc.bin\" BINARY\nTRACK 01 MODE3/2352\n")
	test.ExpectFailure(t, err)

	err = open("filetype.cue", "FILE \"disc.bin\" FLAC\n")
	test.ExpectEquality(t, curated.Is(err, cdaccess.UnsupportedFile), true)

	err = open("msf.cue", "FILE \"disc.bin\" BINARY\nTRACK 01 MODE1/2352\nINDEX 01 00:61:00\n")
	test.ExpectEquality(t, curated.Is(err, cdaccess.BadMSF), true)

	err = open("flags.cue", "FILE \"disc.bin\" BINARY\nTRACK 01 MODE1/2352\nFLAGS XYZ\n")
	test.ExpectFailure(t, err)

	err = open("nofile.cue", "FILE \"nosuchfile.bin\" BINARY\n")
	test.ExpectFailure(t, err)

	// unsupported directives are logged and otherwise ignored
	err = open("title.cue", "TITLE \"a title\"\nFILE \"disc.bin\" BINARY\nTRACK 01 MODE1/2352\nINDEX 01 00:00:00\n")
	test.ExpectSuccess(t, err)
}

func TestTOCFile(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, dir, "data.bin", mode1Sectors(0, 6))
	audio := pattern(3*cdutil.SectorSize, 3)
	writeFile(t, dir, "audio.bin", audio)
	path := writeFile(t, dir, "disc.toc", []byte(`CD_ROM
// the data track
TRACK MODE1_RAW
DATAFILE "data.bin" 00:00:04 // four sectors only

TRACK AUDIO
COPY
FILE "audio.bin" 0 00:00:02
`))

	img := openImage(t, path)
	toc, err := img.ReadTOC()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, toc.FirstTrack, 1)
	test.ExpectEquality(t, toc.LastTrack, 2)
	test.ExpectEquality(t, toc.Tracks[1].LBA, 0)
	test.ExpectEquality(t, toc.Tracks[1].IsData(), true)
	test.ExpectEquality(t, toc.Tracks[2].LBA, 4)
	test.ExpectEquality(t, toc.Tracks[2].IsData(), false)
	test.ExpectEquality(t, toc.Tracks[2].Control&cdutil.ControlCopyPermit, cdutil.ControlCopyPermit)
	test.ExpectEquality(t, toc.Tracks[cdutil.LeadoutTrack].LBA, 6)

	// cdrdao audio is byte swapped
	buf := make([]byte, cdutil.RawSectorSize)
	test.ExpectSuccess(t, img.ReadRawSector(buf, 5))
	test.ExpectEquality(t, buf[0], audio[cdutil.SectorSize+1])
	test.ExpectEquality(t, buf[1], audio[cdutil.SectorSize])
	test.ExpectEquality(t, subQ(buf[cdutil.SectorSize:]).Track, 2)

	// length too large
	bad := writeFile(t, dir, "bad.toc", []byte("TRACK MODE1_RAW\nDATAFILE \"data.bin\" 00:00:09\n"))
	_, err = cdaccess.OpenImage(logger.Allow, cdaccess.OSFileSystem{}, bad, false)
	test.ExpectFailure(t, err)

	// RW subchannel data is not supported
	bad = writeFile(t, dir, "rw.toc", []byte("TRACK MODE1_RAW RW\nDATAFILE \"data.bin\"\n"))
	_, err = cdaccess.OpenImage(logger.Allow, cdaccess.OSFileSystem{}, bad, false)
	test.ExpectFailure(t, err)
}

func TestTOCSubchannel(t *testing.T) {
	dir := t.TempDir()

	sectors := mode1Sectors(0, 2)
	var data []byte
	for i := range 2 {
		data = append(data, sectors[i*cdutil.SectorSize:(i+1)*cdutil.SectorSize]...)
		data = append(data, pattern(cdutil.SubchannelSize, i)...)
	}
	writeFile(t, dir, "sub.bin", data)
	path := writeFile(t, dir, "sub.toc", []byte("TRACK MODE1_RAW RW_RAW\nDATAFILE \"sub.bin\"\n"))

	img := openImage(t, path)

	buf := make([]byte, cdutil.RawSectorSize)
	test.ExpectSuccess(t, img.ReadRawSector(buf, 1))
	test.ExpectEquality(t, bytes.Equal(buf[:cdutil.SectorSize], sectors[cdutil.SectorSize:]), true)
	test.ExpectEquality(t, bytes.Equal(buf[cdutil.SectorSize:], pattern(cdutil.SubchannelSize, 1)), true)

	// subchannel data stored in the file can not be synthesised
	pw := make([]byte, cdutil.SubchannelSize)
	test.ExpectFailure(t, img.FastReadRawPWOnly(pw, 1))
	test.ExpectSuccess(t, img.FastReadRawPWOnly(pw, -10))
}

func TestSBI(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "disc.bin", mode1Sectors(0, 10))
	cue := writeFile(t, dir, "disc.cue", []byte("FILE \"disc.bin\" BINARY\nTRACK 01 MODE1/2352\nINDEX 01 00:00:00\n"))

	// replacement for 00:02:05, which is LBA 5
	sbi := []byte("SBI\x00")
	sbi = append(sbi, 0x00, 0x02, 0x05, 0x01)
	sbi = append(sbi, 0x41, 0x01, 0x01, 0x00, 0x00, 0x09, 0x00, 0x00, 0x02, 0x05)
	writeFile(t, dir, "disc.sbi", sbi)

	img := openImage(t, cue)

	buf := make([]byte, cdutil.RawSectorSize)
	var q [cdutil.SubQSize]byte

	test.ExpectSuccess(t, img.ReadRawSector(buf, 5))
	cdutil.SubQDeinterleave(buf[cdutil.SectorSize:], q[:])
	test.ExpectEquality(t, cdutil.SubQCheckChecksum(q[:]), false)
	test.ExpectEquality(t, q[5], 0x09)

	test.ExpectSuccess(t, img.ReadRawSector(buf, 4))
	cdutil.SubQDeinterleave(buf[cdutil.SectorSize:], q[:])
	test.ExpectEquality(t, cdutil.SubQCheckChecksum(q[:]), true)
}

func TestMemcache(t *testing.T) {
	dir := t.TempDir()
	bin := mode1Sectors(0, 4)
	writeFile(t, dir, "disc.bin", bin)
	cue := writeFile(t, dir, "disc.cue", []byte("FILE \"disc.bin\" BINARY\nTRACK 01 MODE1/2352\nINDEX 01 00:00:00\n"))

	img, err := cdaccess.OpenImage(logger.Allow, cdaccess.OSFileSystem{}, cue, true)
	test.DemandSuccess(t, err)
	defer img.Close()

	// the file is no longer needed
	test.DemandSuccess(t, os.Remove(filepath.Join(dir, "disc.bin")))

	buf := make([]byte, cdutil.RawSectorSize)
	test.ExpectSuccess(t, img.ReadRawSector(buf, 2))
	test.ExpectEquality(t, bytes.Equal(buf[:cdutil.SectorSize], bin[2*cdutil.SectorSize:3*cdutil.SectorSize]), true)
}
