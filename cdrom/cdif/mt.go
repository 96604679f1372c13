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

package cdif

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/jetsetilly/cdreader/cdrom/cdaccess"
	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/cdrom/msgqueue"
	"github.com/jetsetilly/cdreader/cdrom/readahead"
	"github.com/jetsetilly/cdreader/cdrom/sectorring"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/environment"
	"github.com/jetsetilly/cdreader/logger"
)

// the ring must be able to hold every sector the reader goroutine can write
// between a request for a sector and the caller's read of it
const ringCapacityFactor = 4

// MT is the multithreaded implementation of the Interface. Sectors are read
// by a dedicated reader goroutine and passed to the caller through a
// sectorring.Ring.
//
// The Access instance is only used by the reader goroutine, with the
// exception of the FastReadRawPWOnly() function.
type MT struct {
	common

	// messages from the caller to the reader goroutine and from the reader
	// goroutine to the caller
	toRead *msgqueue.Queue
	toEmu  *msgqueue.Queue

	ring    *sectorring.Ring
	timeout time.Duration

	// the following fields are only accessed by the reader goroutine until
	// the done channel is closed
	sched    *readahead.Scheduler
	affinity uint64
	buf      [cdutil.RawSectorSize]byte
	initErr  error
	accErr   error

	// closed when the reader goroutine exits
	done chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// NewMT is the preferred method of initialisation for the MT type. The
// interface takes ownership of the Access instance.
//
// The function does not return until the reader goroutine has read the TOC.
// If the TOC can not be read or is not valid then the error is returned,
// the reader goroutine will have ended and the Access instance will have
// been closed.
func NewMT(env *environment.Environment, acc cdaccess.Access) (*MT, error) {
	return newMT(env, acc, 0)
}

func newMT(env *environment.Environment, acc cdaccess.Access, affinity uint64) (*MT, error) {
	cfg := readahead.Config{
		MaxAhead:     env.Prefs.ReadAheadMax.Get().(int),
		InitialAhead: env.Prefs.ReadAheadInitial.Get().(int),
		SpeedMult:    env.Prefs.ReadAheadSpeedMult.Get().(int),
	}
	sched := readahead.NewScheduler(cfg)

	capacity := max(env.Prefs.RingCapacity.Get().(int), sched.Config().MaxAhead*ringCapacityFactor)
	limit := env.Prefs.QueueLimit.Get().(int)

	mt := &MT{
		common: common{
			env: env,
			acc: acc,
		},
		toRead:   msgqueue.New(env, "to reader", limit),
		toEmu:    msgqueue.New(env, "to caller", limit),
		ring:     sectorring.New(capacity),
		timeout:  env.Prefs.Timeout(),
		sched:    sched,
		affinity: affinity,
		done:     make(chan struct{}),
	}

	go mt.readLoop()

	r := mt.toEmu.Pop(true)
	switch r.Status {
	case msgqueue.StatusOK:
		if r.Message.Kind == msgqueue.Done {
			return mt, nil
		}
		// not possible unless the reader goroutine is broken
		<-mt.done
		return nil, curated.Errorf(Startup, fmt.Sprintf("unexpected message from reader: %s", r.Message))
	}

	// no goroutine is left running after a failed construction
	<-mt.done

	if mt.initErr != nil {
		return nil, curated.Errorf(Startup, mt.initErr)
	}
	return nil, curated.Errorf(Startup, r.Err())
}

// the main loop of the reader goroutine
func (mt *MT) readLoop() {
	defer close(mt.done)
	defer mt.ring.Close()
	defer func() {
		mt.accErr = mt.acc.Close()
	}()
	defer func() {
		if r := recover(); r != nil {
			mt.unrecoverable.Store(true)

			// the constructor may still be waiting for a startup message
			mt.toEmu.Push(msgqueue.NewTextMessage(msgqueue.FatalError, fmt.Sprintf("reader goroutine: %v", r)))
		}
	}()

	if mt.affinity != 0 {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := setAffinity(mt.affinity); err != nil {
			logger.Log(mt.env, logTag, err)
		}
	}

	toc, err := readTOC(mt.acc)
	if err != nil {
		mt.initErr = err
		mt.toEmu.Push(msgqueue.NewTextMessage(msgqueue.FatalError, err.Error()))
		return
	}
	mt.toc = toc
	mt.toEmu.Push(msgqueue.NewMessage(msgqueue.Done))

	for {
		// only block if there is no read-ahead work to do
		r := mt.toRead.Pop(!mt.sched.Pending())

		switch r.Status {
		case msgqueue.StatusOK:
			switch r.Message.Kind {
			case msgqueue.Terminate:
				return
			case msgqueue.ReadSectorRequest:
				mt.sched.Request(r.Message.LBA())
			default:
				logger.Logf(mt.env, logTag, "reader goroutine: unexpected message: %s", r.Message)
			}
		case msgqueue.StatusFatal:
			logger.Log(mt.env, logTag, r.Err())
			return
		}

		if lba, ok := mt.sched.Next(); ok {
			mt.read(lba)
		}
	}
}

// read sector and write it to the ring. only called by the reader goroutine
func (mt *MT) read(lba int32) {
	if !cdutil.InReadRange(lba) {
		return
	}

	if err := mt.acc.ReadRawSector(mt.buf[:], lba); err != nil {
		mt.ring.Write(lba, nil, true)
		mt.toEmu.Push(msgqueue.NewTextMessage(msgqueue.Info, err.Error()))
		return
	}

	mt.ring.Write(lba, mt.buf[:], false)
}

// log any info messages from the reader goroutine. never blocks
func (mt *MT) drainInfo() {
	for {
		r := mt.toEmu.Pop(false)
		switch r.Status {
		case msgqueue.StatusEmpty:
			return
		case msgqueue.StatusFatal:
			logger.Log(mt.env, logTag, r.Err())
		default:
			logger.Log(mt.env, logTag, r.Message.Text)
		}
	}
}

// HintReadSector implements the Interface interface.
func (mt *MT) HintReadSector(lba int32) {
	mt.hints.Add(1)
	if !cdutil.InReadRange(lba) || mt.unrecoverable.Load() {
		return
	}
	mt.toRead.Push(msgqueue.NewReadSectorRequest(lba))
}

// ReadRawSector implements the Interface interface.
func (mt *MT) ReadRawSector(buf []byte, lba int32) bool {
	if !mt.preRead(buf, lba) {
		return false
	}
	defer mt.drainInfo()

	buf = buf[:cdutil.RawSectorSize]

	// the request is sent even if the sector is already in the ring. the
	// read-ahead depends on seeing every request
	if !mt.toRead.Push(msgqueue.NewReadSectorRequest(lba)) {
		clear(buf)
		mt.failures.Add(1)
		return false
	}

	ok, err := mt.ring.Read(buf, lba, mt.timeout)
	if err != nil {
		logger.Log(mt.env, logTag, err)
		if curated.Is(err, sectorring.ErrClosed) {
			mt.unrecoverable.Store(true)
		}
		clear(buf)
		mt.failures.Add(1)
		return false
	}

	if !ok {
		mt.failures.Add(1)
	}

	return ok
}

// ReadRawSectorPWOnly implements the Interface interface.
func (mt *MT) ReadRawSectorPWOnly(pwbuf []byte, lba int32, hintFullRead bool) bool {
	return readRawSectorPWOnly(mt, &mt.common, pwbuf, lba, hintFullRead)
}

// ReadSectors implements the Interface interface.
func (mt *MT) ReadSectors(buf []byte, lba int32, count uint32) uint8 {
	return readSectors(mt, &mt.common, buf, lba, count)
}

// Stats implements the Interface interface.
func (mt *MT) Stats() Stats {
	s := mt.stats()
	s.Dropped = mt.toRead.Dropped() + mt.toEmu.Dropped()
	s.Ring = mt.ring.Stats()
	return s
}

// Close implements the Interface interface. If the terminate message can not
// be sent to the reader goroutine then Close() returns an error without
// waiting for the goroutine to end.
func (mt *MT) Close() error {
	mt.closeOnce.Do(func() {
		mt.unrecoverable.Store(true)

		if !mt.toRead.Push(msgqueue.NewMessage(msgqueue.Terminate)) {
			mt.closeErr = curated.Errorf(Terminated)
			return
		}

		<-mt.done
		mt.drainInfo()
		mt.closeErr = closeError(mt.accErr)
	})
	return mt.closeErr
}
