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

package cdaccess

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/logger"
)

// Sentinel error pattern for SBI file problems.
const BadSBI = "cdaccess: sbi: %v"

var sbiMagic = []byte("SBI\x00")

// size of each record in an SBI file
const sbiRecordSize = 14

// sbiPath returns the filename of the SBI file that would accompany the
// image. the case of the extension follows the case of the image extension.
func sbiPath(path string) string {
	ext := filepath.Ext(path)
	sbi := "sbi"
	if len(ext) == 4 {
		var b strings.Builder
		for i := range 3 {
			c := sbi[i]
			if ext[1+i] >= 'A' && ext[1+i] <= 'Z' {
				c -= 'a' - 'A'
			}
			b.WriteByte(c)
		}
		sbi = b.String()
	}
	return strings.TrimSuffix(path, ext) + "." + sbi
}

// loadSBI loads Q subchannel replacements from an SBI file. a missing SBI
// file is not an error.
func (img *Image) loadSBI() {
	path := sbiPath(img.path)

	f, _, err := img.fsys.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	n, err := img.parseSBI(f)
	if err != nil {
		logger.Log(img.perm, logTag, err)
		return
	}

	logger.Logf(img.perm, logTag, "loaded q subchannel replacements for %d sectors from %s", n, filepath.Base(path))
}

func (img *Image) parseSBI(r io.Reader) (int, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, curated.Errorf(BadSBI, err)
	}
	if !bytes.Equal(hdr[:], sbiMagic) {
		return 0, curated.Errorf(BadSBI, "not a valid sbi file")
	}

	replace := make(map[int32][cdutil.SubQSize]byte)

	var rec [sbiRecordSize]byte
	for {
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			break
		}

		if !cdutil.BCDIsValid(rec[0]) || !cdutil.BCDIsValid(rec[1]) || !cdutil.BCDIsValid(rec[2]) {
			return 0, curated.Errorf(BadSBI, "bad bcd msf offset")
		}
		if rec[3] != 0x01 {
			return 0, curated.Errorf(BadSBI, "unrecognised record type")
		}

		var q [cdutil.SubQSize]byte
		copy(q[:], rec[4:])

		// the replacement q data has a deliberately bad checksum
		cdutil.SubQGenerateChecksum(q[:])
		q[10] ^= 0xff
		q[11] ^= 0xff

		msf := cdutil.MSF{
			M: cdutil.BCDToU8(rec[0]),
			S: cdutil.BCDToU8(rec[1]),
			F: cdutil.BCDToU8(rec[2]),
		}
		replace[cdutil.LBAToABA(cdutil.AMSFToLBA(msf))] = q
	}

	img.subQReplace = replace

	return len(replace), nil
}
