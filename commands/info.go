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
	"os"

	"github.com/bradleyjkemp/memviz"
	"github.com/jetsetilly/cdreader/archivefs"
	"github.com/jetsetilly/cdreader/cdrom/cdaccess"
	"github.com/jetsetilly/cdreader/cdrom/cdif"
	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/environment"
	"github.com/jetsetilly/cdreader/modalflag"
	"github.com/jetsetilly/cdreader/playlist"
)

// Info prints the layout of a disc or of every disc in a playlist. If the path
// is a directory or an archive then its contents are listed instead.
func Info(md *modalflag.Modes, env *environment.Environment, output io.Writer) error {
	md.NewMode()
	dot := md.AddString("dot", "", "write a graphviz representation of the TOC to file")
	tracks := md.AddBool("tracks", false, "show how each track is stored in the image")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	path, err := singleArg(md)
	if err != nil {
		return err
	}

	var pth archivefs.Path
	if err := pth.Set(path); err != nil {
		return err
	}
	isDir := pth.IsDir()
	pth.Close()

	if isDir {
		nodes, err := archivefs.List(path)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			if n.IsDir {
				fmt.Fprintf(output, "%s/\n", n)
			} else {
				fmt.Fprintln(output, n)
			}
		}
		return nil
	}

	discs, err := openDiscs(env, path)
	if err != nil {
		return err
	}
	defer closeDiscs(discs)

	tocs := make([]cdutil.TOC, len(discs))
	for i, cd := range discs {
		tocs[i] = cd.ReadTOC()
		if len(discs) > 1 {
			fmt.Fprintf(output, "disc %d\n", i+1)
		}
		if err := cdif.WriteLayout(output, tocs[i]); err != nil {
			return err
		}
	}
	fmt.Fprintf(output, "digest: %s\n", cdif.LayoutDigest(tocs...))

	if *tracks {
		if err := writeTracks(env, path, output); err != nil {
			return err
		}
	}

	if *dot != "" {
		f, err := os.Create(*dot)
		if err != nil {
			return curated.Errorf(BadFlag, md, err)
		}
		memviz.Map(f, &tocs)
		if err := f.Close(); err != nil {
			return curated.Errorf(BadFlag, md, err)
		}
	}

	return nil
}

func writeTracks(env *environment.Environment, path string, output io.Writer) error {
	fsys := fileSystem(path)

	paths := []string{path}
	if playlist.IsPlaylist(path) {
		var err error
		paths, err = playlist.Read(fsys, path)
		if err != nil {
			return err
		}
	}

	for _, p := range paths {
		img, err := cdaccess.OpenImage(env, fsys, p, false)
		if err != nil {
			return err
		}
		fmt.Fprintf(output, "%s\n", p)
		for _, ti := range img.Tracks() {
			fmt.Fprintf(output, "  %s\n", ti)
		}
		if err := img.Close(); err != nil {
			return err
		}
	}

	return nil
}
