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

// Package commands implements the modes of the cdreader program. Each mode
// function adds its own flags to the modalflag.Modes instance before parsing
// the remaining arguments.
//
// A mode function returns nil if help was requested.
package commands

import (
	"errors"

	"github.com/jetsetilly/cdreader/archivefs"
	"github.com/jetsetilly/cdreader/cdrom/cdaccess"
	"github.com/jetsetilly/cdreader/cdrom/cdif"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/environment"
	"github.com/jetsetilly/cdreader/modalflag"
	"github.com/jetsetilly/cdreader/playlist"
)

// Sentinal error patterns.
const (
	NoDisc      = "%s mode: disc image required"
	TooManyArgs = "%s mode: too many arguments"
	BadFlag     = "%s mode: %s"
)

// archives are only understood by the archivefs filesystem
func fileSystem(path string) cdaccess.FileSystem {
	if archivefs.InArchive(path) {
		return archivefs.FS{}
	}
	return cdaccess.OSFileSystem{}
}

// the single argument remaining after parsing
func singleArg(md *modalflag.Modes) (string, error) {
	switch len(md.RemainingArgs()) {
	case 0:
		return "", curated.Errorf(NoDisc, md)
	case 1:
		return md.GetArg(0), nil
	}
	return "", curated.Errorf(TooManyArgs, md)
}

// openDiscs opens the disc at path or every disc in the playlist at path.
func openDiscs(env *environment.Environment, path string) ([]cdif.Interface, error) {
	return playlist.Open(env, fileSystem(path), path)
}

func closeDiscs(discs []cdif.Interface) error {
	var errs []error
	for _, cd := range discs {
		errs = append(errs, cd.Close())
	}
	return errors.Join(errs...)
}
