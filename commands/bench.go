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
	"time"

	"github.com/jetsetilly/cdreader/cdrom/cdaccess"
	"github.com/jetsetilly/cdreader/cdrom/cdif"
	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/environment"
	"github.com/jetsetilly/cdreader/modalflag"
	"github.com/jetsetilly/cdreader/performance"
)

// Bench reads a synthetic disc sequentially through the MT implementation,
// once without hints and once with the next sector hinted after every read,
// and reports how often the caller had to wait for the reader goroutine.
func Bench(md *modalflag.Modes, env *environment.Environment, output io.Writer) error {
	md.NewMode()
	sectors := md.AddInt("sectors", 1000, "number of sectors to read")
	delay := md.AddDuration("delay", time.Millisecond, "time taken by the disc to read a sector")
	work := md.AddDuration("work", time.Millisecond, "time taken by the caller to process a sector")
	profile := md.AddString("profile", "none", "run the benchmark through the profilers: CPU, MEM, TRACE, ALL")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) > 0 {
		return curated.Errorf(TooManyArgs, md)
	}

	if *sectors < 1 || *sectors > int(cdutil.LBAReadMaximum) {
		return curated.Errorf(BadFlag, md, "sectors out of range")
	}

	prf, err := performance.ParseProfile(*profile)
	if err != nil {
		return curated.Errorf(BadFlag, md, err)
	}

	return performance.RunProfiler(prf, "bench", func() error {
		for _, hint := range []bool{false, true} {
			stats, elapsed, err := bench(env, int32(*sectors), *delay, *work, hint)
			if err != nil {
				return err
			}

			label := "without hints"
			if hint {
				label = "with hints"
			}
			fmt.Fprintf(output, "%-13s %d reads, %d failures, %d ring hits, %d stalls, %v\n",
				label, stats.Reads, stats.Failures, stats.Ring.Hits, stats.Ring.Stalls, elapsed.Round(time.Millisecond))
		}
		return nil
	})
}

func bench(env *environment.Environment, sectors int32, delay time.Duration, work time.Duration, hint bool) (cdif.Stats, time.Duration, error) {
	disc := cdaccess.NewSynthetic(sectors)
	disc.Delay = delay

	mt, err := cdif.NewMT(env, disc)
	if err != nil {
		return cdif.Stats{}, 0, err
	}
	defer mt.Close()

	buf := make([]byte, cdutil.RawSectorSize)

	start := time.Now()
	for lba := range sectors {
		mt.ReadRawSector(buf, lba)
		if hint && lba+1 < sectors {
			mt.HintReadSector(lba + 1)
		}
		if work > 0 {
			time.Sleep(work)
		}
	}

	return mt.Stats(), time.Since(start), nil
}
