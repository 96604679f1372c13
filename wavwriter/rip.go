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

package wavwriter

import (
	"io"

	"github.com/jetsetilly/cdreader/cdrom/cdda"
	"github.com/jetsetilly/cdreader/cdrom/cdif"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/logger"
)

// RipTrack reads an audio track from the disc and writes it to a WAV file.
// The rip fails if any sector of the track can not be read.
func RipTrack(perm logger.Permission, cd cdif.Interface, track uint8, filename string) error {
	r, err := cdda.NewTrackReader(perm, cd, track, true)
	if err != nil {
		return curated.Errorf("wavwriter: rip: %v", err)
	}

	aw, err := New(perm, filename)
	if err != nil {
		return err
	}

	logger.Logf(perm, "wavwriter", "ripping track %d (%d sectors)", track, r.Remaining())

	data, err := io.ReadAll(r)
	if err != nil {
		return curated.Errorf("wavwriter: rip: %v", err)
	}
	aw.AddAudio(data)

	return aw.Write()
}
