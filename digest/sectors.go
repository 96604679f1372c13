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

package digest

import (
	"crypto/sha1"
	"fmt"

	"github.com/jetsetilly/cdreader/cdrom/cdutil"
)

// Sectors is an implementation of the Digest interface. It generates a SHA-1
// value of every sector added to it. The value of each sector is chained with
// the value of the previous sector.
type Sectors struct {
	digest [sha1.Size]byte

	// the previous digest followed by the sector data
	buf []byte

	count    int
	failures int
}

// NewSectors is the preferred method of initialisation for the Sectors type.
func NewSectors() *Sectors {
	return &Sectors{
		buf: make([]byte, sha1.Size+cdutil.SectorSize),
	}
}

// Hash implements the Digest interface.
func (dig *Sectors) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements the Digest interface.
func (dig *Sectors) ResetDigest() {
	clear(dig.digest[:])
	dig.count = 0
	dig.failures = 0
}

// AddSector adds the first 2352 bytes of the sector to the digest. Any
// subchannel data after that is ignored. A short sector is padded with zero
// bytes.
func (dig *Sectors) AddSector(sector []byte) {
	copy(dig.buf, dig.digest[:])
	n := copy(dig.buf[sha1.Size:], sector)
	clear(dig.buf[sha1.Size+n:])
	dig.digest = sha1.Sum(dig.buf)
	dig.count++
}

// AddFailure adds a sector that could not be read. A failure is represented
// in the chain by the digest of the previous sector alone so that a failed
// sector and a sector of zero bytes produce different values.
func (dig *Sectors) AddFailure() {
	dig.digest = sha1.Sum(dig.digest[:])
	dig.count++
	dig.failures++
}

// Count returns the number of sectors and the number of failures added since
// the last reset.
func (dig *Sectors) Count() (int, int) {
	return dig.count, dig.failures
}
