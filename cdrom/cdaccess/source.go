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
	"bytes"
	"io"
	"sync"

	"github.com/jetsetilly/cdreader/curated"
)

// source is the data for one file referenced by an image. more than one
// track may share a source.
type source interface {
	io.ReaderAt
	io.Closer
	Size() int64

	// decoded is true for sources decoded from a compressed or otherwise
	// encoded audio file. the data of decoded sources is always 16bit
	// little-endian stereo.
	decoded() bool
}

// fileSource is a source reading directly from a FileSystem file.
type fileSource struct {
	crit sync.Mutex
	f    io.ReadSeekCloser
	size int64
}

func (src *fileSource) ReadAt(p []byte, off int64) (int, error) {
	if ra, ok := src.f.(io.ReaderAt); ok {
		return ra.ReadAt(p, off)
	}

	src.crit.Lock()
	defer src.crit.Unlock()

	if _, err := src.f.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	return io.ReadFull(src.f, p)
}

func (src *fileSource) Close() error {
	return src.f.Close()
}

func (src *fileSource) Size() int64 {
	return src.size
}

func (src *fileSource) decoded() bool {
	return false
}

// memSource is a source held entirely in memory.
type memSource struct {
	*bytes.Reader
	isDecoded bool
}

func (src *memSource) Close() error {
	return nil
}

func (src *memSource) decoded() bool {
	return src.isDecoded
}

// openSource opens the named file through the FileSystem. if audio is true
// the file is decoded into memory. if memcache is true a binary file is
// loaded into memory and the file closed.
func openSource(fsys FileSystem, name string, audio bool, memcache bool) (source, error) {
	f, size, err := fsys.Open(name)
	if err != nil {
		return nil, curated.Errorf("cdaccess: %v", err)
	}

	if audio {
		defer f.Close()
		data, err := decodeAudio(f)
		if err != nil {
			return nil, curated.Errorf("cdaccess: %s: %v", name, err)
		}
		return &memSource{Reader: bytes.NewReader(data), isDecoded: true}, nil
	}

	if memcache {
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, curated.Errorf("cdaccess: %s: %v", name, err)
		}
		return &memSource{Reader: bytes.NewReader(data)}, nil
	}

	return &fileSource{f: f, size: size}, nil
}
