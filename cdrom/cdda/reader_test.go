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

package cdda_test

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/cdreader/cdrom/cdaccess"
	"github.com/jetsetilly/cdreader/cdrom/cdda"
	"github.com/jetsetilly/cdreader/cdrom/cdif"
	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/cdrom/preferences"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/environment"
	"github.com/jetsetilly/cdreader/test"
)

// a synthetic disc with an audio track from LBA 10 to 39
func audioDisc(t *testing.T) (*environment.Environment, *cdaccess.Synthetic, cdif.Interface) {
	t.Helper()

	acc := cdaccess.NewSynthetic(40)
	acc.TOC.LastTrack = 2
	acc.TOC.Tracks[2] = cdutil.Track{
		LBA:   10,
		Adr:   cdutil.ADRCurrentPosition,
		Valid: true,
	}

	p, err := preferences.NewPreferencesAt(filepath.Join(t.TempDir(), "preferences"))
	test.DemandSuccess(t, err)
	env, err := environment.NewEnvironment("test", p)
	test.DemandSuccess(t, err)

	cd, err := cdif.NewST(env, acc)
	test.DemandSuccess(t, err)
	t.Cleanup(func() { cd.Close() })

	return env, acc, cd
}

func TestTrackReader(t *testing.T) {
	env, _, cd := audioDisc(t)

	r, err := cdda.NewTrackReader(env, cd, 2, true)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, r.Remaining(), 30)

	// odd sized reads
	var out bytes.Buffer
	p := make([]byte, 1000)
	for {
		n, err := r.Read(p)
		out.Write(p[:n])
		if err == io.EOF {
			break
		}
		test.DemandSuccess(t, err)
	}
	test.ExpectEquality(t, out.Len(), 30*cdutil.SectorSize)
	test.ExpectEquality(t, r.Remaining(), 0)

	want := make([]byte, cdutil.RawSectorSize)
	direct := cdaccess.NewSynthetic(40)
	for i := range int32(30) {
		test.DemandSuccess(t, direct.ReadRawSector(want, 10+i))
		test.ExpectSuccess(t, bytes.Equal(out.Bytes()[i*cdutil.SectorSize:(i+1)*cdutil.SectorSize], want[:cdutil.SectorSize]), i)
	}

	// hints are issued for every sector after the first
	test.ExpectEquality(t, cd.Stats().Hints, 29)

	_, err = cdda.NewTrackReader(env, cd, 1, true)
	test.ExpectSuccess(t, curated.Is(err, cdda.NotAudio))
	_, err = cdda.NewTrackReader(env, cd, 3, true)
	test.ExpectSuccess(t, curated.Is(err, cdda.NoTrack))
}

func TestBadSector(t *testing.T) {
	env, acc, cd := audioDisc(t)
	acc.Bad[15] = true

	r, err := cdda.NewTrackReader(env, cd, 2, true)
	test.DemandSuccess(t, err)
	_, err = io.ReadAll(r)
	test.ExpectSuccess(t, curated.Is(err, cdda.ReadFailed))

	// bad sector is silent when not strict
	r, err = cdda.NewTrackReader(env, cd, 2, false)
	test.DemandSuccess(t, err)
	b, err := io.ReadAll(r)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(b), 30*cdutil.SectorSize)

	silence := make([]byte, cdutil.SectorSize)
	test.ExpectSuccess(t, bytes.Equal(b[5*cdutil.SectorSize:6*cdutil.SectorSize], silence))
	test.ExpectFailure(t, bytes.Equal(b[4*cdutil.SectorSize:5*cdutil.SectorSize], silence))
}
