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

// Package player plays CD-DA audio through the host's audio device.
package player

import (
	"io"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/jetsetilly/cdreader/cdrom/cdda"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/logger"
)

// Player of CD-DA audio. Only one Player can be created by a program.
type Player struct {
	perm logger.Permission
	ctx  *oto.Context
}

// NewPlayer is the preferred method of initialisation for the Player type.
func NewPlayer(perm logger.Permission) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   cdda.SampleRate,
		ChannelCount: cdda.ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, curated.Errorf("player: %v", err)
	}
	<-ready

	return &Player{
		perm: perm,
		ctx:  ctx,
	}, nil
}

// Play audio from the reader until it is exhausted or until the quit channel
// is closed.
func (pl *Player) Play(r io.Reader, quit <-chan struct{}) error {
	p := pl.ctx.NewPlayer(r)
	defer p.Close()

	logger.Log(pl.perm, "player", "playing")
	p.Play()

	tck := time.NewTicker(50 * time.Millisecond)
	defer tck.Stop()

	for p.IsPlaying() {
		select {
		case <-quit:
			p.Pause()
			logger.Log(pl.perm, "player", "stopped")
			return nil
		case <-tck.C:
		}
	}

	if err := p.Err(); err != nil {
		return curated.Errorf("player: %v", err)
	}

	logger.Log(pl.perm, "player", "finished")
	return nil
}
