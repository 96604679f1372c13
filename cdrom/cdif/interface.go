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

// Package cdif is the interface between a CD image and the code that reads
// from it. There are two implementations of the Interface type. ST reads
// sectors synchronously on the calling goroutine. MT reads sectors on a
// dedicated reader goroutine, reading ahead of the caller when it detects
// sequential access.
//
// The Open() function chooses the implementation according to the
// filesystem in use and the preferences of the environment.
package cdif

import (
	"sync/atomic"

	"github.com/jetsetilly/cdreader/cdrom/cdaccess"
	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/cdrom/sectorring"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/environment"
	"github.com/jetsetilly/cdreader/logger"
)

// BadTOC is found in the error chain when an interface can not be created
// because of a malformed TOC.
const BadTOC = cdutil.BadTOC

// Sentinel error patterns.
const (
	Startup    = "cdif: %v"
	Terminated = "cdif: reader goroutine did not receive terminate message"
)

const logTag = "cdif"

// Interface to a CD image.
type Interface interface {
	// HintReadSector is advisory. The sector may be read before it is
	// requested with ReadRawSector(). Never blocks
	HintReadSector(lba int32)

	// ReadRawSector fills buf with the sector and subchannel data for the
	// LBA. The buffer must be at least cdutil.RawSectorSize bytes long.
	// Returns false and zero-fills the buffer if the sector can not be read
	ReadRawSector(buf []byte, lba int32) bool

	// ReadRawSectorPWOnly fills pwbuf with the subchannel data for the LBA.
	// If hintFullRead is true the full sector is hinted for a follow up call
	// to ReadRawSector()
	ReadRawSectorPWOnly(pwbuf []byte, lba int32, hintFullRead bool) bool

	// ReadSectors reads the user data of count sectors, starting with the
	// LBA. Sectors are checked and corrected. Returns zero on failure,
	// otherwise the mode of the first sector
	ReadSectors(buf []byte, lba int32, count uint32) uint8

	// ReadTOC returns the TOC read when the interface was created
	ReadTOC() cdutil.TOC

	// UnrecoverableError returns true if the interface can no longer read
	// sectors
	UnrecoverableError() bool

	Stats() Stats

	// Close the interface and the underlying image. Safe to call more than
	// once
	Close() error
}

// Stats for an interface. Ring is only used by the MT implementation.
type Stats struct {
	Reads    uint64
	Failures uint64
	Hints    uint64
	Dropped  int
	Ring     sectorring.Stats
}

// state common to both implementations
type common struct {
	env *environment.Environment
	acc cdaccess.Access
	toc cdutil.TOC

	unrecoverable atomic.Bool

	reads    atomic.Uint64
	failures atomic.Uint64
	hints    atomic.Uint64
}

func (c *common) ReadTOC() cdutil.TOC {
	return c.toc
}

func (c *common) UnrecoverableError() bool {
	return c.unrecoverable.Load()
}

func (c *common) stats() Stats {
	return Stats{
		Reads:    c.reads.Load(),
		Failures: c.failures.Load(),
		Hints:    c.hints.Load(),
	}
}

// checks that happen before a sector is read by either implementation.
// returns false if the read should not go ahead, in which case the buffer
// has been cleared
func (c *common) preRead(buf []byte, lba int32) bool {
	c.reads.Add(1)

	if len(buf) < cdutil.RawSectorSize {
		logger.Logf(c.env, logTag, "buffer too small for raw sector (%d bytes)", len(buf))
		clear(buf)
		c.failures.Add(1)
		return false
	}

	if c.unrecoverable.Load() {
		clear(buf[:cdutil.RawSectorSize])
		c.failures.Add(1)
		return false
	}

	if !cdutil.InReadRange(lba) {
		logger.Logf(c.env, logTag, "attempt to read sector out of range (%d)", lba)
		clear(buf[:cdutil.RawSectorSize])
		c.failures.Add(1)
		return false
	}

	return true
}

func readTOC(acc cdaccess.Access) (cdutil.TOC, error) {
	toc, err := acc.ReadTOC()
	if err != nil {
		return cdutil.TOC{}, err
	}
	if err := toc.Validate(); err != nil {
		return cdutil.TOC{}, err
	}
	return toc, nil
}

// readRawSectorPWOnly is shared by both implementations
func readRawSectorPWOnly(cd Interface, c *common, pwbuf []byte, lba int32, hintFullRead bool) bool {
	if len(pwbuf) < cdutil.SubchannelSize {
		logger.Logf(c.env, logTag, "buffer too small for subchannel data (%d bytes)", len(pwbuf))
		clear(pwbuf)
		return false
	}

	if c.unrecoverable.Load() {
		clear(pwbuf[:cdutil.SubchannelSize])
		return false
	}

	if !cdutil.InReadRange(lba) {
		logger.Logf(c.env, logTag, "attempt to read subchannel out of range (%d)", lba)
		clear(pwbuf[:cdutil.SubchannelSize])
		return false
	}

	if c.acc.FastReadRawPWOnly(pwbuf, lba) {
		if hintFullRead {
			cd.HintReadSector(lba)
		}
		return true
	}

	var buf [cdutil.RawSectorSize]byte
	ok := cd.ReadRawSector(buf[:], lba)
	copy(pwbuf, buf[cdutil.SectorSize:])
	return ok
}

// readSectors is shared by both implementations
func readSectors(cd Interface, c *common, buf []byte, lba int32, count uint32) uint8 {
	if uint64(len(buf)) < uint64(count)*cdutil.UserDataSize {
		logger.Logf(c.env, logTag, "buffer too small for %d sectors (%d bytes)", count, len(buf))
		return 0
	}

	var raw [cdutil.RawSectorSize]byte
	var mode uint8

	for i := range count {
		l := lba + int32(i)

		if !cd.ReadRawSector(raw[:], l) {
			logger.Logf(c.env, logTag, "error reading sector %d", l)
			return 0
		}

		m := cdutil.SectorMode(raw[:])
		if m != 1 && m != 2 {
			logger.Logf(c.env, logTag, "sector %d has unexpected mode (%d)", l, m)
			return 0
		}

		if m == 2 && cdutil.IsForm2(raw[:]) {
			logger.Logf(c.env, logTag, "sector %d is mode 2 form 2", l)
			return 0
		}

		if !cdutil.CheckAndCorrect(raw[:cdutil.SectorSize], m == 2) {
			logger.Logf(c.env, logTag, "uncorrectable error in sector %d", l)
			return 0
		}

		copy(buf[int(i)*cdutil.UserDataSize:], cdutil.UserData(raw[:]))

		if mode == 0 {
			mode = m
		}
	}

	return mode
}

// the error returned by an implementation when the image has been closed
// but the close failed
func closeError(err error) error {
	if err == nil {
		return nil
	}
	return curated.Errorf("cdif: close: %v", err)
}
