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
	"sync"

	"github.com/jetsetilly/cdreader/cdrom/cdaccess"
	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/environment"
	"github.com/jetsetilly/cdreader/logger"
)

// ST is the single threaded implementation of the Interface. Sectors are
// read on the calling goroutine.
type ST struct {
	common

	closeOnce sync.Once
	closeErr  error
}

// NewST is the preferred method of initialisation for the ST type. The
// interface takes ownership of the Access instance. It will be closed if the
// TOC is not valid.
func NewST(env *environment.Environment, acc cdaccess.Access) (*ST, error) {
	toc, err := readTOC(acc)
	if err != nil {
		acc.Close()
		return nil, curated.Errorf(Startup, err)
	}

	st := &ST{
		common: common{
			env: env,
			acc: acc,
			toc: toc,
		},
	}

	return st, nil
}

// HintReadSector implements the Interface interface. It does nothing in the
// ST implementation.
func (st *ST) HintReadSector(lba int32) {
	st.hints.Add(1)
}

// ReadRawSector implements the Interface interface.
func (st *ST) ReadRawSector(buf []byte, lba int32) bool {
	if !st.preRead(buf, lba) {
		return false
	}

	err := st.acc.ReadRawSector(buf[:cdutil.RawSectorSize], lba)
	if err != nil {
		logger.Log(st.env, logTag, err)
		clear(buf[:cdutil.RawSectorSize])
		st.failures.Add(1)
		return false
	}

	return true
}

// ReadRawSectorPWOnly implements the Interface interface.
func (st *ST) ReadRawSectorPWOnly(pwbuf []byte, lba int32, hintFullRead bool) bool {
	return readRawSectorPWOnly(st, &st.common, pwbuf, lba, hintFullRead)
}

// ReadSectors implements the Interface interface.
func (st *ST) ReadSectors(buf []byte, lba int32, count uint32) uint8 {
	return readSectors(st, &st.common, buf, lba, count)
}

// Stats implements the Interface interface.
func (st *ST) Stats() Stats {
	return st.stats()
}

// Close implements the Interface interface.
func (st *ST) Close() error {
	st.closeOnce.Do(func() {
		// no more reads once the image has been closed
		st.unrecoverable.Store(true)
		st.closeErr = closeError(st.acc.Close())
	})
	return st.closeErr
}
