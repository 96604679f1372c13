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

//go:build linux

package cdif

import (
	"golang.org/x/sys/unix"

	"github.com/jetsetilly/cdreader/curated"
)

// setAffinity restricts the calling thread to the CPUs in the mask. The
// calling goroutine must be locked to its thread.
func setAffinity(mask uint64) error {
	var set unix.CPUSet
	set.Zero()
	for cpu := range 64 {
		if mask&(1<<cpu) != 0 {
			set.Set(cpu)
		}
	}

	// pid of zero is the calling thread
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return curated.Errorf("cdif: affinity: %v", err)
	}
	return nil
}
