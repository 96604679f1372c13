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

package commands

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/jetsetilly/cdreader/cdrom/cdif"
	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/environment"
	"github.com/jetsetilly/cdreader/modalflag"
)

// Read dumps sectors of a disc as hexadecimal. The next sector is always
// hinted before the current sector is read.
func Read(md *modalflag.Modes, env *environment.Environment, output io.Writer) error {
	md.NewMode()
	start := md.AddInt("lba", 0, "first sector to read")
	count := md.AddInt("count", 1, "number of sectors to read")
	user := md.AddBool("user", false, "dump user data of mode 1 and mode 2 form 1 sectors")
	subq := md.AddBool("subq", false, "decode the Q subchannel of each sector")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	path, err := singleArg(md)
	if err != nil {
		return err
	}

	if *count < 1 {
		return curated.Errorf(BadFlag, md, "count must be at least one")
	}

	cd, err := cdif.Open(env, fileSystem(path), path)
	if err != nil {
		return err
	}
	defer cd.Close()

	raw := make([]byte, cdutil.RawSectorSize)
	data := make([]byte, cdutil.UserDataSize)
	q := make([]byte, cdutil.SubQSize)

	for i := range int32(*count) {
		lba := int32(*start) + i
		if i < int32(*count)-1 {
			cd.HintReadSector(lba + 1)
		}

		fmt.Fprintf(output, "lba %d (%s)", lba, cdutil.LBAToAMSF(lba))

		if *user {
			mode := cd.ReadSectors(data, lba, 1)
			if mode == 0 {
				fmt.Fprintln(output, " unreadable")
				continue
			}
			fmt.Fprintf(output, " mode %d\n", mode)
			fmt.Fprint(output, hex.Dump(data))
			continue
		}

		if !cd.ReadRawSector(raw, lba) {
			fmt.Fprintln(output, " unreadable")
			continue
		}
		fmt.Fprintln(output)
		fmt.Fprint(output, hex.Dump(raw[:cdutil.SectorSize]))

		if *subq {
			cdutil.SubQDeinterleave(raw[cdutil.SectorSize:], q)
			sq := cdutil.DecodeSubQ(q)
			fmt.Fprintf(output, "subq: track %d index %d relative %s absolute %s control %#x crc %v\n",
				sq.Track, sq.Index, sq.Relative, sq.Absolute, sq.Control, cdutil.SubQCheckChecksum(q))
		}
	}

	return nil
}
