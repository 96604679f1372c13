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
	"encoding/binary"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/zaf/g711"
)

// decodeAudio decodes an audio file into 16bit little-endian stereo PCM data.
// the type of the file is decided by its content and not its name.
func decodeAudio(r io.ReadSeeker) ([]byte, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, curated.Errorf("audio: %v", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, curated.Errorf("audio: %v", err)
	}

	switch string(magic[:]) {
	case "RIFF":
		return decodeWAV(r)
	case ".snd":
		return decodeAU(r)
	}
	return decodeMP3(r)
}

func appendFrame(pcm []byte, left int16, right int16) []byte {
	pcm = binary.LittleEndian.AppendUint16(pcm, uint16(left))
	return binary.LittleEndian.AppendUint16(pcm, uint16(right))
}

func decodeWAV(r io.ReadSeeker) ([]byte, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, curated.Errorf("wav: not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, curated.Errorf("wav: %v", err)
	}

	return pcmFromIntBuffer(buf, int(dec.BitDepth))
}

func pcmFromIntBuffer(buf *audio.IntBuffer, depth int) ([]byte, error) {
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, curated.Errorf("wav: no channels")
	}
	channels := buf.Format.NumChannels

	var scale func(v int) int16
	switch depth {
	case 8:
		// 8bit wav data is unsigned
		scale = func(v int) int16 { return int16((v - 128) << 8) }
	case 16:
		scale = func(v int) int16 { return int16(v) }
	case 24:
		scale = func(v int) int16 { return int16(v >> 8) }
	case 32:
		scale = func(v int) int16 { return int16(v >> 16) }
	default:
		return nil, curated.Errorf("wav: unsupported bit depth (%d)", depth)
	}

	pcm := make([]byte, 0, len(buf.Data)/channels*4)
	for i := 0; i+channels <= len(buf.Data); i += channels {
		left := scale(buf.Data[i])
		right := left
		if channels > 1 {
			right = scale(buf.Data[i+1])
		}
		pcm = appendFrame(pcm, left, right)
	}

	return pcm, nil
}

func decodeMP3(r io.Reader) ([]byte, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, curated.Errorf("mp3: %v", err)
	}

	// go-mp3 output is always 16bit little-endian stereo, which is exactly
	// what is required
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, curated.Errorf("mp3: %v", err)
	}

	return pcm, nil
}

// Sun AU encodings
const (
	auULaw     = 1
	auLinear8  = 2
	auLinear16 = 3
	auLinear24 = 4
	auLinear32 = 5
	auALaw     = 27
)

const auHeaderSize = 24

func decodeAU(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, curated.Errorf("au: %v", err)
	}
	if len(data) < auHeaderSize {
		return nil, curated.Errorf("au: file too short")
	}

	offset := binary.BigEndian.Uint32(data[4:])
	length := binary.BigEndian.Uint32(data[8:])
	encoding := binary.BigEndian.Uint32(data[12:])
	channels := int(binary.BigEndian.Uint32(data[20:]))

	if channels < 1 || channels > 8 {
		return nil, curated.Errorf("au: unsupported number of channels (%d)", channels)
	}
	if int64(offset) > int64(len(data)) {
		return nil, curated.Errorf("au: data offset past end of file")
	}
	data = data[offset:]

	// a length of all bits set means the data extends to the end of the file
	if length != 0xffffffff && int64(length) < int64(len(data)) {
		data = data[:length]
	}

	var width int
	var sample func(b []byte) int16
	switch encoding {
	case auULaw:
		width = 1
		sample = func(b []byte) int16 { return g711.DecodeUlawFrame(b[0]) }
	case auALaw:
		width = 1
		sample = func(b []byte) int16 { return g711.DecodeAlawFrame(b[0]) }
	case auLinear8:
		width = 1
		sample = func(b []byte) int16 { return int16(int8(b[0])) << 8 }
	case auLinear16:
		width = 2
		sample = func(b []byte) int16 { return int16(binary.BigEndian.Uint16(b)) }
	case auLinear24:
		width = 3
		sample = func(b []byte) int16 { return int16(binary.BigEndian.Uint16(b)) }
	case auLinear32:
		width = 4
		sample = func(b []byte) int16 { return int16(binary.BigEndian.Uint16(b)) }
	default:
		return nil, curated.Errorf("au: unsupported encoding (%d)", encoding)
	}

	frame := width * channels
	pcm := make([]byte, 0, len(data)/frame*4)
	for i := 0; i+frame <= len(data); i += frame {
		left := sample(data[i:])
		right := left
		if channels > 1 {
			right = sample(data[i+width:])
		}
		pcm = appendFrame(pcm, left, right)
	}

	return pcm, nil
}
