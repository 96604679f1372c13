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
	"os"
	"path/filepath"

	"github.com/jetsetilly/cdreader/cdrom/cdutil"
)

// Access is implemented by all disc image readers.
type Access interface {
	// ReadTOC returns the table of contents for the disc.
	ReadTOC() (cdutil.TOC, error)

	// ReadRawSector reads 2352 bytes of sector data followed by 96 bytes of
	// P-W subchannel data into buf.
	ReadRawSector(buf []byte, lba int32) error

	// FastReadRawPWOnly fills pwbuf with the 96 bytes of subchannel data
	// for the LBA if it can do so without reading from the disc image.
	// Returns false if a full read is required. Must be safe to call
	// concurrently with any other function.
	FastReadRawPWOnly(pwbuf []byte, lba int32) bool

	// Close releases all resources held by the reader.
	Close() error
}

// FileSystem abstracts the opening of files referenced by a disc image.
type FileSystem interface {
	// Open the named file. Returns the file and its size in bytes.
	Open(name string) (io.ReadSeekCloser, int64, error)

	// Join a filename to the directory of the image that refers to it.
	// Absolute filenames should be returned unchanged.
	Join(dir string, name string) string

	// Dir returns the directory part of a filename.
	Dir(name string) string
}

// OSFileSystem is the FileSystem implementation for the host operating
// system. It is the default FileSystem for the cdif package.
type OSFileSystem struct{}

// Open implements the FileSystem interface.
func (OSFileSystem) Open(name string) (io.ReadSeekCloser, int64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, 0, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}

	return f, info.Size(), nil
}

// Join implements the FileSystem interface.
func (OSFileSystem) Join(dir string, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// Dir implements the FileSystem interface.
func (OSFileSystem) Dir(name string) string {
	return filepath.Dir(name)
}
