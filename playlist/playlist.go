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

// Package playlist reads M3U files that list the discs of a multi-disc set.
//
// Each line of an M3U file is the path of a disc image, relative to the
// directory of the M3U file. Empty lines and lines beginning with '#' are
// ignored. A line can refer to another M3U file, up to a depth of MaxDepth.
package playlist

import (
	"bufio"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/cdreader/cdrom/cdaccess"
	"github.com/jetsetilly/cdreader/cdrom/cdif"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/environment"
)

// MaxDepth is the maximum nesting of M3U files.
const MaxDepth = 8

// Sentinel error patterns.
const (
	TooDeep = "playlist: %s: nested too deeply"
	NoDiscs = "playlist: %s: no discs"
)

// IsPlaylist returns true if the path has the M3U extension.
func IsPlaylist(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".m3u")
}

// Read the M3U file at path and return the list of disc images, in order. A
// nil filesystem is the same as cdaccess.OSFileSystem.
func Read(fsys cdaccess.FileSystem, path string) ([]string, error) {
	if fsys == nil {
		fsys = cdaccess.OSFileSystem{}
	}

	discs, err := read(fsys, path, 0)
	if err != nil {
		return nil, err
	}

	if len(discs) == 0 {
		return nil, curated.Errorf(NoDiscs, path)
	}

	return discs, nil
}

func read(fsys cdaccess.FileSystem, path string, depth int) ([]string, error) {
	if depth >= MaxDepth {
		return nil, curated.Errorf(TooDeep, path)
	}

	f, _, err := fsys.Open(path)
	if err != nil {
		return nil, curated.Errorf("playlist: %v", err)
	}
	defer f.Close()

	var discs []string

	dir := fsys.Dir(path)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		l := strings.TrimSpace(scanner.Text())
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}

		p := fsys.Join(dir, l)

		if IsPlaylist(p) {
			if p == path {
				return nil, curated.Errorf("playlist: %s: refers to itself", path)
			}
			nested, err := read(fsys, p, depth+1)
			if err != nil {
				return nil, err
			}
			discs = append(discs, nested...)
			continue
		}

		discs = append(discs, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, curated.Errorf("playlist: %v", err)
	}

	return discs, nil
}

// Open every disc in the M3U file at path. If path is not an M3U file then
// it is opened as a single disc. Either all discs are opened or none are.
func Open(env *environment.Environment, fsys cdaccess.FileSystem, path string) ([]cdif.Interface, error) {
	discs := []string{path}

	if IsPlaylist(path) {
		var err error
		discs, err = Read(fsys, path)
		if err != nil {
			return nil, err
		}
	}

	cds := make([]cdif.Interface, 0, len(discs))
	for _, d := range discs {
		cd, err := cdif.Open(env, fsys, d)
		if err != nil {
			for _, c := range cds {
				c.Close()
			}
			return nil, curated.Errorf("playlist: %v", err)
		}
		cds = append(cds, cd)
	}

	return cds, nil
}
