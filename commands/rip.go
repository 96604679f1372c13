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

package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/cdreader/archivefs"
	"github.com/jetsetilly/cdreader/cdrom/cdif"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/environment"
	"github.com/jetsetilly/cdreader/modalflag"
	"github.com/jetsetilly/cdreader/wavwriter"
)

// Rip writes a CD-DA track to a WAV file.
func Rip(md *modalflag.Modes, env *environment.Environment, output io.Writer) error {
	md.NewMode()
	track := md.AddInt("track", 0, "the audio track to rip")
	out := md.AddString("out", "", "name of the WAV file (default is based on the disc name)")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	path, err := singleArg(md)
	if err != nil {
		return err
	}

	if *track < 1 || *track > 99 {
		return curated.Errorf(BadFlag, md, "track must be between 1 and 99")
	}

	filename := *out
	if filename == "" {
		filename = ripFilename(path, *track)
	}

	cd, err := cdif.Open(env, fileSystem(path), path)
	if err != nil {
		return err
	}
	defer cd.Close()

	if err := wavwriter.RipTrack(env, cd, uint8(*track), filename); err != nil {
		return err
	}

	fmt.Fprintf(output, "track %d written to %s\n", *track, filename)
	return nil
}

// the name of the WAV file is made from the name of the disc and the track
// number. for discs inside an archive the archive name is used as a prefix
func ripFilename(path string, track int) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if archivefs.InArchive(path) {
		for dir := filepath.Dir(path); dir != "." && dir != string(filepath.Separator); dir = filepath.Dir(dir) {
			if base := filepath.Base(dir); archivefs.TrimArchiveExt(base) != base {
				name = fmt.Sprintf("%s_%s", archivefs.TrimArchiveExt(base), name)
				break // for loop
			}
		}
	}
	return fmt.Sprintf("%s_track%02d.wav", name, track)
}
