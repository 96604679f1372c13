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

// Package wavwriter writes CD-DA audio to disk as a WAV file. Audio data is
// buffered in memory in its entirety and written to disk when Write() is
// called.
package wavwriter

import (
	"encoding/binary"
	"os"

	"github.com/jetsetilly/cdreader/cdrom/cdda"
	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/logger"
	"github.com/youpy/go-wav"
)

// CD-DA format.
const (
	SampleRate    = cdda.SampleRate
	NumChannels   = cdda.ChannelCount
	BitsPerSample = 16
)

// size of one stereo frame in bytes
const frameSize = NumChannels * BitsPerSample / 8

// WavWriter collects CD-DA sectors for writing to a WAV file.
type WavWriter struct {
	perm     logger.Permission
	filename string
	buffer   []wav.Sample
}

// New is the preferred method of initialisation for the WavWriter type.
func New(perm logger.Permission, filename string) (*WavWriter, error) {
	if filename == "" {
		return nil, curated.Errorf("wavwriter: no filename")
	}

	aw := &WavWriter{
		perm:     perm,
		filename: filename,
		buffer:   make([]wav.Sample, 0),
	}

	return aw, nil
}

// AddAudio adds CD-DA audio data to the buffer. The data is little-endian
// 16 bit stereo, which is the format of the data in an audio sector. Any
// trailing partial frame is ignored.
func (aw *WavWriter) AddAudio(data []byte) {
	for i := 0; i+frameSize <= len(data); i += frameSize {
		w := wav.Sample{}
		w.Values[0] = int(int16(binary.LittleEndian.Uint16(data[i:])))
		w.Values[1] = int(int16(binary.LittleEndian.Uint16(data[i+2:])))
		aw.buffer = append(aw.buffer, w)
	}
}

// AddSector adds the audio data of a raw sector. Any subchannel data is
// ignored.
func (aw *WavWriter) AddSector(sector []byte) {
	aw.AddAudio(sector[:min(len(sector), cdutil.SectorSize)])
}

// Samples returns the number of stereo samples in the buffer.
func (aw *WavWriter) Samples() int {
	return len(aw.buffer)
}

// Write the buffered audio to the file.
func (aw *WavWriter) Write() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	defer func() {
		err := f.Close()
		if err != nil && rerr == nil {
			rerr = curated.Errorf("wavwriter: %v", err)
		}
	}()

	enc := wav.NewWriter(f, uint32(len(aw.buffer)), NumChannels, SampleRate, BitsPerSample)
	if enc == nil {
		return curated.Errorf("wavwriter: %v", "bad parameters for wav encoding")
	}

	logger.Logf(aw.perm, "wavwriter", "writing audio to %s", aw.filename)

	if err := enc.WriteSamples(aw.buffer); err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}

	return nil
}
