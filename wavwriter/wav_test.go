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

package wavwriter_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	goaudiowav "github.com/go-audio/wav"

	"github.com/jetsetilly/cdreader/cdrom/cdaccess"
	"github.com/jetsetilly/cdreader/cdrom/cdda"
	"github.com/jetsetilly/cdreader/cdrom/cdif"
	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/cdrom/preferences"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/environment"
	"github.com/jetsetilly/cdreader/logger"
	"github.com/jetsetilly/cdreader/test"
	"github.com/jetsetilly/cdreader/wavwriter"
)

func newEnvironment(t *testing.T) *environment.Environment {
	t.Helper()
	p, err := preferences.NewPreferencesAt(filepath.Join(t.TempDir(), "preferences"))
	test.DemandSuccess(t, err)
	env, err := environment.NewEnvironment("test", p)
	test.DemandSuccess(t, err)
	return env
}

func audioData(sectors int) []byte {
	b := make([]byte, sectors*cdutil.SectorSize)
	for i := 0; i < len(b); i += 2 {
		binary.LittleEndian.PutUint16(b[i:], uint16(int16(i*37-20000)))
	}
	return b
}

func TestWriter(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "out.wav")

	aw, err := wavwriter.New(logger.Allow, fn)
	test.DemandSuccess(t, err)

	data := audioData(2)
	aw.AddSector(data[:cdutil.SectorSize])
	aw.AddSector(data[cdutil.SectorSize:])
	test.ExpectEquality(t, aw.Samples(), 2*cdutil.SectorSize/4)

	// partial frames are ignored
	aw.AddAudio([]byte{1, 2, 3})
	test.ExpectEquality(t, aw.Samples(), 2*cdutil.SectorSize/4)

	test.DemandSuccess(t, aw.Write())

	f, err := os.Open(fn)
	test.DemandSuccess(t, err)
	defer f.Close()

	d := goaudiowav.NewDecoder(f)
	test.DemandSuccess(t, d.IsValidFile())
	test.ExpectEquality(t, d.SampleRate, wavwriter.SampleRate)
	test.ExpectEquality(t, d.NumChans, wavwriter.NumChannels)
	test.ExpectEquality(t, d.BitDepth, wavwriter.BitsPerSample)

	buf, err := d.FullPCMBuffer()
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(buf.Data), len(data)/2)
	for i, v := range buf.Data {
		if !test.ExpectEquality(t, v, int(int16(binary.LittleEndian.Uint16(data[i*2:]))), i) {
			break
		}
	}

	_, err = wavwriter.New(logger.Allow, "")
	test.ExpectFailure(t, err)
}

func TestRipTrack(t *testing.T) {
	dir := t.TempDir()

	// track 1 is data and track 2 is audio
	data := make([]byte, 0, 10*cdutil.SectorSize)
	sector := make([]byte, cdutil.SectorSize)
	for lba := range int32(10) {
		clear(sector)
		cdaccess.SyntheticUserData(lba, sector[16:16+cdutil.UserDataSize])
		cdutil.EncodeMode1Sector(lba, sector)
		data = append(data, sector...)
	}
	audio := audioData(30)

	test.DemandSuccess(t, os.WriteFile(filepath.Join(dir, "data.bin"), data, 0o644))
	test.DemandSuccess(t, os.WriteFile(filepath.Join(dir, "audio.bin"), audio, 0o644))

	cue := "FILE \"data.bin\" BINARY\n  TRACK 01 MODE1/2352\n    INDEX 01 00:00:00\n" +
		"FILE \"audio.bin\" BINARY\n  TRACK 02 AUDIO\n    INDEX 01 00:00:00\n"
	test.DemandSuccess(t, os.WriteFile(filepath.Join(dir, "disc.cue"), []byte(cue), 0o644))

	env := newEnvironment(t)

	cd, err := cdif.Open(env, nil, filepath.Join(dir, "disc.cue"))
	test.DemandSuccess(t, err)
	defer cd.Close()

	fn := filepath.Join(dir, "track02.wav")
	test.DemandSuccess(t, wavwriter.RipTrack(env, cd, 2, fn))

	err = wavwriter.RipTrack(env, cd, 1, fn)
	test.ExpectSuccess(t, curated.Has(err, cdda.NotAudio))
	err = wavwriter.RipTrack(env, cd, 3, fn)
	test.ExpectSuccess(t, curated.Has(err, cdda.NoTrack))

	// the WAV file can be used as the audio track of a new disc image
	wavCue := "FILE \"track02.wav\" WAVE\n  TRACK 01 AUDIO\n    INDEX 01 00:00:00\n"
	test.DemandSuccess(t, os.WriteFile(filepath.Join(dir, "wav.cue"), []byte(wavCue), 0o644))

	wcd, err := cdif.Open(env, nil, filepath.Join(dir, "wav.cue"))
	test.DemandSuccess(t, err)
	defer wcd.Close()

	test.ExpectEquality(t, wcd.ReadTOC().Tracks[cdutil.LeadoutTrack].LBA, 30)

	buf := make([]byte, cdutil.RawSectorSize)
	for lba := range int32(30) {
		test.ExpectSuccess(t, wcd.ReadRawSector(buf, lba))
		test.ExpectSuccess(t, bytes.Equal(buf[:cdutil.SectorSize], audio[int(lba)*cdutil.SectorSize:int(lba+1)*cdutil.SectorSize]), lba)
	}
}
