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

// Package archivefs allows disc images to be opened from inside zip archives.
// A zip archive anywhere in a path is treated as a directory. For example,
// the path "games/disc.zip/disc.cue" names the file disc.cue inside the
// archive games/disc.zip.
//
// The FS type implements the cdaccess.FileSystem interface. Files inside an
// archive are decompressed into memory when they are opened.
package archivefs

import (
	"io"
	"path/filepath"
)

// FS is an implementation of the cdaccess.FileSystem interface that can see
// inside zip archives. The zero value is ready to use.
type FS struct{}

// Open implements the cdaccess.FileSystem interface.
func (FS) Open(name string) (io.ReadSeekCloser, int64, error) {
	var afs Path
	if err := afs.Set(name); err != nil {
		return nil, 0, err
	}
	defer afs.Close()
	return afs.Open()
}

// Join implements the cdaccess.FileSystem interface.
func (FS) Join(dir string, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, filepath.FromSlash(name))
}

// Dir implements the cdaccess.FileSystem interface.
func (FS) Dir(name string) string {
	return filepath.Dir(name)
}

// List the entries of the directory or archive at path. If path is a file
// then the entries of the containing directory are listed.
func List(path string) ([]Node, error) {
	var afs Path
	if err := afs.Set(path); err != nil {
		return nil, err
	}
	defer afs.Close()
	return afs.List()
}
