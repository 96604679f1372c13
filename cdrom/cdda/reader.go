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

// Package cdda reads the audio of a CD-DA track as a stream of little-endian
// 16 bit stereo samples at 44.1kHz.
package cdda

import (
	"io"

	"github.com/jetsetilly/cdreader/cdrom/cdif"
	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/logger"
)

// Sentinel error patterns.
const (
	NoTrack    = "cdda: no track %d on disc"
	NotAudio   = "cdda: track %d is not an audio track"
	ReadFailed = "cdda: cannot read sector %d"
)

// CD-DA format.
const (
	SampleRate   = 44100
	ChannelCount = 2
	BytesPerSec  = SampleRate * ChannelCount * 2
)

// Reader implements the io.Reader interface for the audio data of a range of
// sectors.
type Reader struct {
	perm logger.Permission
	cd   cdif.Interface

	lba int32
	end int32

	// if strict is false then sectors that can not be read are replaced
	// with silence
	strict bool

	buf     [cdutil.RawSectorSize]byte
	pending []byte
}

// NewReader is the preferred method of initialisation for the Reader type.
// The reader will return the audio of sectors start to end-1.
func NewReader(perm logger.Permission, cd cdif.Interface, start int32, end int32, strict bool) *Reader {
	return &Reader{
		perm:   perm,
		cd:     cd,
		lba:    start,
		end:    end,
		strict: strict,
	}
}

// NewTrackReader creates a Reader for an audio track.
func NewTrackReader(perm logger.Permission, cd cdif.Interface, track uint8, strict bool) (*Reader, error) {
	toc := cd.ReadTOC()

	if track < toc.FirstTrack || track > toc.LastTrack {
		return nil, curated.Errorf(NoTrack, track)
	}
	if toc.Tracks[track].IsData() {
		return nil, curated.Errorf(NotAudio, track)
	}

	start := toc.Tracks[track].LBA
	return NewReader(perm, cd, start, start+toc.TrackSectors(track), strict), nil
}

// Remaining returns the number of sectors that have not yet been read.
func (r *Reader) Remaining() int32 {
	return max(0, r.end-r.lba)
}

// Read implements the io.Reader interface.
func (r *Reader) Read(p []byte) (int, error) {
	if len(r.pending) == 0 {
		if r.lba >= r.end {
			return 0, io.EOF
		}

		if !r.cd.ReadRawSector(r.buf[:], r.lba) {
			if r.strict {
				return 0, curated.Errorf(ReadFailed, r.lba)
			}
			logger.Logf(r.perm, "cdda", "sector %d replaced with silence", r.lba)
		}

		r.lba++
		if r.lba < r.end {
			r.cd.HintReadSector(r.lba)
		}

		r.pending = r.buf[:cdutil.SectorSize]
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}
