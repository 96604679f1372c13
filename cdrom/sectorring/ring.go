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

// Package sectorring is a fixed size buffer of raw sectors, written by the
// reader goroutine of a multithreaded CD interface and read by its caller.
//
// Sectors are evicted in the order they were written. A reader waiting for a
// sector that has not yet been written is woken by every write and rescans
// the buffer.
package sectorring

import (
	"sync"
	"time"

	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/curated"
)

// Sentinel error patterns returned by Read().
const (
	ErrClosed  = "sectorring: closed while waiting for sector %d"
	ErrTimeout = "sectorring: timeout waiting for sector %d"
)

// DefaultCapacity is the number of sectors in a ring created with a capacity
// of zero.
const DefaultCapacity = 256

type slot struct {
	lba    int32
	data   [cdutil.RawSectorSize]byte
	valid  bool
	failed bool
}

// Stats for a ring. Hits are reads that found the sector without waiting.
// Stalls are reads that had to wait at least once.
type Stats struct {
	Hits      uint64
	Stalls    uint64
	Writes    uint64
	Evictions uint64
}

// Ring is a fixed size circular buffer of raw sectors.
type Ring struct {
	crit   sync.Mutex
	cond   *sync.Cond
	slots  []slot
	cursor int
	closed bool
	stats  Stats
}

// New is the preferred method of initialisation for the Ring type.
func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	r := &Ring{
		slots: make([]slot, capacity),
	}
	r.cond = sync.NewCond(&r.crit)
	return r
}

// Capacity returns the number of sectors the ring can hold.
func (r *Ring) Capacity() int {
	return len(r.slots)
}

// Write a sector to the ring, replacing the oldest sector. If failed is true
// the sector data is zeroed and any reader of the sector will be told of the
// failure.
func (r *Ring) Write(lba int32, data []byte, failed bool) {
	r.crit.Lock()
	defer r.crit.Unlock()

	s := &r.slots[r.cursor]
	if s.valid {
		r.stats.Evictions++
	}

	s.lba = lba
	s.failed = failed
	if failed {
		clear(s.data[:])
	} else {
		copy(s.data[:], data)
	}
	s.valid = true

	r.cursor = (r.cursor + 1) % len(r.slots)
	r.stats.Writes++

	r.cond.Broadcast()
}

// the most recent write of the LBA is returned. must be called with the
// critical section locked
func (r *Ring) find(lba int32) *slot {
	n := len(r.slots)
	for i := 1; i <= n; i++ {
		s := &r.slots[(r.cursor-i+n)%n]
		if s.valid && s.lba == lba {
			return s
		}
	}
	return nil
}

// Read copies the sector for the LBA into buf, waiting for it to be written
// if necessary. Returns false if the sector was written as failed. A failed
// sector is only delivered once, so a later Read() waits for the sector to be
// written again.
//
// A timeout of zero means wait indefinitely. An error is returned if the
// timeout expires or if the ring is closed while waiting.
func (r *Ring) Read(buf []byte, lba int32, timeout time.Duration) (bool, error) {
	r.crit.Lock()
	defer r.crit.Unlock()

	var expired bool
	if timeout > 0 {
		timer := time.AfterFunc(timeout, func() {
			r.crit.Lock()
			expired = true
			r.crit.Unlock()
			r.cond.Broadcast()
		})
		defer timer.Stop()
	}

	stalled := false
	for {
		if s := r.find(lba); s != nil {
			if stalled {
				r.stats.Stalls++
			} else {
				r.stats.Hits++
			}
			copy(buf, s.data[:])
			if s.failed {
				s.valid = false
				return false, nil
			}
			return true, nil
		}

		if r.closed {
			return false, curated.Errorf(ErrClosed, lba)
		}
		if expired {
			return false, curated.Errorf(ErrTimeout, lba)
		}

		stalled = true
		r.cond.Wait()
	}
}

// Contains returns true if the sector for the LBA is in the ring. It never
// waits.
func (r *Ring) Contains(lba int32) bool {
	r.crit.Lock()
	defer r.crit.Unlock()
	return r.find(lba) != nil
}

// Close the ring. Any current or future Read() of a sector not in the ring
// will return an error.
func (r *Ring) Close() {
	r.crit.Lock()
	r.closed = true
	r.crit.Unlock()
	r.cond.Broadcast()
}

// Stats returns a copy of the ring statistics.
func (r *Ring) Stats() Stats {
	r.crit.Lock()
	defer r.crit.Unlock()
	return r.stats
}
