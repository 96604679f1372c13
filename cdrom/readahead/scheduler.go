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

// Package readahead decides which sectors the reader goroutine of a
// multithreaded CD interface should read speculatively.
//
// Sequential requests accelerate the read-ahead. Any other request restarts
// the read-ahead at the requested sector with a small count. After any
// request for a sector, that sector has either been handed out by Next() in
// the current run or will be handed out before the run ends.
package readahead

import (
	"fmt"

	"github.com/jetsetilly/cdreader/cdrom/cdutil"
)

// Config for a Scheduler.
type Config struct {
	// maximum number of sectors to read ahead of the cursor
	MaxAhead int

	// read-ahead count at the start of a run
	InitialAhead int

	// amount the read-ahead count increases by for every sequential request
	SpeedMult int
}

// DefaultConfig is the configuration used when no other is specified.
var DefaultConfig = Config{
	MaxAhead:     16,
	InitialAhead: 1,
	SpeedMult:    2,
}

func (cfg Config) normalise() Config {
	cfg.MaxAhead = max(1, cfg.MaxAhead)
	cfg.InitialAhead = min(max(1, cfg.InitialAhead), cfg.MaxAhead)
	cfg.SpeedMult = max(1, cfg.SpeedMult)
	return cfg
}

// Scheduler is not safe for concurrent use. It is intended to be used only by
// the reader goroutine.
type Scheduler struct {
	cfg Config

	started       bool
	lastRequested int32

	aheadLBA   int32
	aheadCount int32
}

// NewScheduler is the preferred method of initialisation for the Scheduler
// type. Invalid configuration values are corrected.
func NewScheduler(cfg Config) *Scheduler {
	return &Scheduler{
		cfg: cfg.normalise(),
	}
}

func (s *Scheduler) String() string {
	return fmt.Sprintf("last %d: ahead %d (+%d)", s.lastRequested, s.aheadLBA, s.aheadCount)
}

// Config returns the normalised configuration of the scheduler.
func (s *Scheduler) Config() Config {
	return s.cfg
}

// Request notes that the sector at the LBA has been requested.
func (s *Scheduler) Request(lba int32) {
	maxAhead := int32(s.cfg.MaxAhead)
	speedMult := int32(s.cfg.SpeedMult)

	switch {
	case s.started && lba == s.lastRequested+1:
		ahead := s.aheadLBA - lba

		switch {
		case ahead > maxAhead:
			// cursor is well ahead. keep pace without overshooting
			s.aheadCount = min(s.aheadCount+1, maxAhead)

		case ahead <= -maxAhead:
			// cursor lags too far behind. the sectors it would read have
			// been requested but they are no longer needed
			s.aheadLBA = lba
			s.aheadCount = min(s.aheadCount+speedMult, maxAhead)

		default:
			n := s.aheadCount + speedMult
			if ahead <= 0 {
				n = max(n, 1-ahead)
			}
			s.aheadCount = min(n, maxAhead)
		}

	default:
		// any other request, including a repeat of the last request, starts
		// a new run
		s.aheadLBA = lba
		s.aheadCount = int32(s.cfg.InitialAhead)
	}

	s.started = true
	s.lastRequested = lba
	s.clamp()
}

// the read-ahead never extends past the last readable LBA
func (s *Scheduler) clamp() {
	if s.aheadLBA > cdutil.LBAReadMaximum {
		s.aheadCount = 0
		return
	}
	s.aheadCount = min(s.aheadCount, cdutil.LBAReadMaximum-s.aheadLBA+1)
}

// Pending returns true if there are sectors still to be read.
func (s *Scheduler) Pending() bool {
	return s.aheadCount > 0
}

// Next returns the LBA of the next sector to read and advances the cursor.
// Returns false if there is nothing to read.
func (s *Scheduler) Next() (int32, bool) {
	if s.aheadCount <= 0 {
		return 0, false
	}
	lba := s.aheadLBA
	s.aheadLBA++
	s.aheadCount--
	return lba, true
}

// AheadLBA returns the LBA of the read-ahead cursor.
func (s *Scheduler) AheadLBA() int32 {
	return s.aheadLBA
}

// AheadCount returns the number of sectors still to be read.
func (s *Scheduler) AheadCount() int32 {
	return s.aheadCount
}

// LastRequested returns the most recently requested LBA. Returns false if no
// request has been made.
func (s *Scheduler) LastRequested() (int32, bool) {
	return s.lastRequested, s.started
}
