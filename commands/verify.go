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
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/jetsetilly/cdreader/cdrom/cdaccess"
	"github.com/jetsetilly/cdreader/cdrom/cdif"
	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/digest"
	"github.com/jetsetilly/cdreader/environment"
	"github.com/jetsetilly/cdreader/modalflag"
	"github.com/jetsetilly/cdreader/playlist"
	"golang.org/x/sync/errgroup"
)

// Mismatch is the error pattern returned by Verify() when the two interface
// implementations disagree.
const Mismatch = "verify: %s: lba %d: %s"

type verifyResult struct {
	sectors  int
	failures int
	hash     string
}

// Verify reads every sector of a disc through both the ST and the MT
// implementations and compares the results. The discs of a playlist are
// verified concurrently.
func Verify(ctx context.Context, md *modalflag.Modes, env *environment.Environment, output io.Writer) error {
	md.NewMode()
	jobs := md.AddInt("jobs", runtime.NumCPU(), "number of discs to verify at the same time")
	leadout := md.AddInt("leadout", 150, "number of leadout sectors to verify")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	path, err := singleArg(md)
	if err != nil {
		return err
	}

	fsys := fileSystem(path)

	paths := []string{path}
	if playlist.IsPlaylist(path) {
		paths, err = playlist.Read(fsys, path)
		if err != nil {
			return err
		}
	}

	results := make([]verifyResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, *jobs))
	for i, p := range paths {
		g.Go(func() error {
			var err error
			results[i], err = verifyDisc(gctx, env, fsys, p, int32(max(0, *leadout)))
			return err
		})
	}
	err = g.Wait()

	for i, r := range results {
		if r.sectors > 0 {
			fmt.Fprintf(output, "%s: %d sectors identical (%d unreadable) sha1 %s\n", paths[i], r.sectors, r.failures, r.hash)
		}
	}

	return err
}

func verifyDisc(ctx context.Context, env *environment.Environment, fsys cdaccess.FileSystem, path string, leadout int32) (res verifyResult, err error) {
	memcache := env.Prefs.ImageMemcache.Get().(bool)

	img, err := cdaccess.OpenImage(env, fsys, path, memcache)
	if err != nil {
		return res, err
	}
	st, err := cdif.NewST(env, img)
	if err != nil {
		return res, err
	}
	defer st.Close()

	img, err = cdaccess.OpenImage(env, fsys, path, memcache)
	if err != nil {
		return res, err
	}
	mt, err := cdif.NewMT(env, img)
	if err != nil {
		return res, err
	}
	defer mt.Close()

	toc := st.ReadTOC()
	end := min(toc.Tracks[cdutil.LeadoutTrack].LBA+leadout, cdutil.LBAReadMaximum+1)

	a := make([]byte, cdutil.RawSectorSize)
	b := make([]byte, cdutil.RawSectorSize)
	dig := digest.NewSectors()
	defer func() {
		res.sectors, res.failures = dig.Count()
		res.hash = dig.Hash()
	}()

	for lba := int32(0); lba < end; lba++ {
		if lba&0x3f == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		mt.HintReadSector(lba + 1)
		okST := st.ReadRawSector(a, lba)
		okMT := mt.ReadRawSector(b, lba)

		switch {
		case okST != okMT:
			return res, curated.Errorf(Mismatch, path, lba, "sector readable by only one interface")
		case !okST:
			dig.AddFailure()
		case !bytes.Equal(a, b):
			return res, curated.Errorf(Mismatch, path, lba, "sector data differs")
		default:
			dig.AddSector(a)
		}
	}

	return res, nil
}
