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

package cdif

import (
	"github.com/jetsetilly/cdreader/cdrom/cdaccess"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/environment"
	"github.com/jetsetilly/cdreader/logger"
)

// Open the CUE or TOC file at path using the filesystem. A nil filesystem
// is the same as cdaccess.OSFileSystem.
//
// The ST implementation is used if the filesystem is not the OS filesystem
// or if the cdrom.singleThreaded preference is set. Otherwise the MT
// implementation is used and the cdrom.affinity preference is applied to the
// reader goroutine.
func Open(env *environment.Environment, fsys cdaccess.FileSystem, path string) (Interface, error) {
	if fsys == nil {
		fsys = cdaccess.OSFileSystem{}
	}

	memcache := env.Prefs.ImageMemcache.Get().(bool)

	img, err := cdaccess.OpenImage(env, fsys, path, memcache)
	if err != nil {
		return nil, curated.Errorf(Startup, err)
	}

	if !isOSFileSystem(fsys) {
		logger.Logf(env, logTag, "%s: not using reader goroutine with non-OS filesystem", path)
		return NewST(env, img)
	}

	if env.Prefs.SingleThreaded.Get().(bool) {
		return NewST(env, img)
	}

	return newMT(env, img, uint64(env.Prefs.Affinity.Get().(int)))
}

func isOSFileSystem(fsys cdaccess.FileSystem) bool {
	switch fsys.(type) {
	case cdaccess.OSFileSystem, *cdaccess.OSFileSystem:
		return true
	}
	return false
}
