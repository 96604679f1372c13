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

package digest_test

import (
	"crypto/sha1"
	"fmt"
	"testing"

	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/digest"
	"github.com/jetsetilly/cdreader/test"
)

func TestSectors(t *testing.T) {
	var dig digest.Digest = digest.NewSectors()
	test.ExpectEquality(t, dig.Hash(), fmt.Sprintf("%x", [sha1.Size]byte{}))

	a := make([]byte, cdutil.RawSectorSize)
	b := make([]byte, cdutil.RawSectorSize)
	cdutil.EncodeMode1Sector(0, a)
	cdutil.EncodeMode1Sector(1, b)

	dig1 := digest.NewSectors()
	dig1.AddSector(a)
	dig1.AddSector(b)

	// order is significant
	dig2 := digest.NewSectors()
	dig2.AddSector(b)
	dig2.AddSector(a)
	test.ExpectInequality(t, dig1.Hash(), dig2.Hash())

	// subchannel data is ignored
	dig2.ResetDigest()
	b[cdutil.SectorSize] = 0xff
	dig2.AddSector(a)
	dig2.AddSector(b)
	test.ExpectEquality(t, dig1.Hash(), dig2.Hash())

	// a failure is not the same as a sector of zeroes
	dig1.ResetDigest()
	dig1.AddFailure()
	dig2.ResetDigest()
	dig2.AddSector(make([]byte, cdutil.SectorSize))
	test.ExpectInequality(t, dig1.Hash(), dig2.Hash())

	n, f := dig1.Count()
	test.ExpectEquality(t, n, 1)
	test.ExpectEquality(t, f, 1)
}
