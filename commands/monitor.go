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
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jetsetilly/cdreader/cdrom/cdif"
	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/easyterm"
	"github.com/jetsetilly/cdreader/environment"
	"github.com/jetsetilly/cdreader/logger"
	"github.com/jetsetilly/cdreader/metrics"
	"github.com/jetsetilly/cdreader/modalflag"
	"github.com/jetsetilly/cdreader/statsview"
	"github.com/prometheus/client_golang/prometheus"
)

// Monitor reads a disc (or every disc in a playlist) continuously, printing
// interface statistics at regular intervals. The statistics are also served
// to prometheus and the runtime statistics of the program can be viewed with
// statsview.
//
// Monitoring ends when the context is cancelled or, if input is a terminal,
// when a quit key is pressed.
func Monitor(ctx context.Context, md *modalflag.Modes, env *environment.Environment, input *os.File, output io.Writer) error {
	md.NewMode()
	metricsAddr := md.AddString("metrics", "localhost:12601", "address of the prometheus metrics server (empty to disable)")
	statsAddr := md.AddString("statsview", "", "address of the statsview server (empty to disable)")
	interval := md.AddDuration("interval", time.Second, "time between updates")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	path, err := singleArg(md)
	if err != nil {
		return err
	}

	if *interval <= 0 {
		*interval = time.Second
	}

	discs, err := openDiscs(env, path)
	if err != nil {
		return err
	}
	defer closeDiscs(discs)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	col := metrics.NewCollector()
	for i, cd := range discs {
		if err := col.Add(fmt.Sprintf("%d", i+1), cd); err != nil {
			return err
		}
	}

	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(col)
		go func() {
			if err := metrics.Serve(ctx, *metricsAddr, reg); err != nil {
				logger.Log(env, "monitor", err)
			}
		}()
		fmt.Fprintf(output, "metrics available at http://%s/metrics\n", *metricsAddr)
	}

	if *statsAddr != "" {
		stop := statsview.Launch(output, *statsAddr)
		defer stop()
	}

	var keys <-chan byte
	if easyterm.IsTerminal(input) {
		var pt easyterm.Terminal
		if err := pt.Initialise(input, input); err != nil {
			return err
		}
		defer pt.CleanUp()
		pt.CBreakMode()
		keys = pt.Keys(ctx.Done())
		fmt.Fprintln(output, "press q to quit")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		readContinuously(ctx, discs)
	}()

	tck := time.NewTicker(*interval)
	defer tck.Stop()

	for {
		select {
		case <-ctx.Done():
			<-done
			return nil

		case k, ok := <-keys:
			if !ok {
				keys = nil
				continue // for loop
			}
			if easyterm.IsQuit(k) {
				cancel()
			}

		case <-tck.C:
			for i, cd := range discs {
				s := cd.Stats()
				fmt.Fprintf(output, "disc %d: reads %d, failures %d, hints %d, ring hits %d, stalls %d, evictions %d, dropped %d\n",
					i+1, s.Reads, s.Failures, s.Hints, s.Ring.Hits, s.Ring.Stalls, s.Ring.Evictions, s.Dropped)
			}
		}
	}
}

// reads every disc from the first sector to the leadout, hinting the next
// sector every time, and then starts again
func readContinuously(ctx context.Context, discs []cdif.Interface) {
	buf := make([]byte, cdutil.RawSectorSize)
	for {
		for _, cd := range discs {
			end := cd.ReadTOC().Tracks[cdutil.LeadoutTrack].LBA
			for lba := int32(0); lba < end; lba++ {
				if ctx.Err() != nil {
					return
				}
				cd.HintReadSector(lba + 1)
				cd.ReadRawSector(buf, lba)
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}
