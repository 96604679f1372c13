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

package cdutil

// the Q subchannel is 12 bytes. the last two bytes are a CRC16 of the first
// ten, inverted
const SubQSize = 12

var crc16Table [256]uint16

func init() {
	for i := range 256 {
		crc := uint16(i) << 8
		for range 8 {
			if crc&0x8000 == 0x8000 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
		crc16Table[i] = crc
	}
}

func subQChecksum(q []byte) uint16 {
	var crc uint16
	for _, b := range q[:0xa] {
		crc = crc16Table[byte(crc>>8)^b] ^ (crc << 8)
	}
	return ^crc
}

// SubQGenerateChecksum writes the checksum of the first ten bytes of the Q
// subchannel into bytes ten and eleven.
func SubQGenerateChecksum(q []byte) {
	crc := subQChecksum(q)
	q[0xa] = byte(crc >> 8)
	q[0xb] = byte(crc)
}

// SubQCheckChecksum returns true if the Q subchannel checksum is correct.
func SubQCheckChecksum(q []byte) bool {
	crc := subQChecksum(q)
	return q[0xa] == byte(crc>>8) && q[0xb] == byte(crc)
}

// SubQDeinterleave extracts the Q subchannel from 96 bytes of interleaved
// P-W subchannel data.
func SubQDeinterleave(pw []byte, q []byte) {
	clear(q[:SubQSize])
	for i := range SubchannelSize {
		q[i>>3] |= ((pw[i] & 0x40) >> 6) << (7 - (i & 7))
	}
}

// SubPQInterleave ORs the Q subchannel into 96 bytes of P-W subchannel data.
// The P bit of every byte is set if pause is true.
func SubPQInterleave(q []byte, pw []byte, pause bool) {
	var p byte
	if pause {
		p = 0x80
	}
	for i := range SubchannelSize {
		var b byte
		if (q[i>>3]>>(7-(i&7)))&1 == 1 {
			b = 0x40
		}
		pw[i] |= b | p
	}
}

// SubQ is the decoded form of a Q subchannel that encodes the current
// position (ADR 1).
type SubQ struct {
	Control  uint8
	Adr      uint8
	Track    uint8
	Index    uint8
	Relative MSF
	Absolute MSF
}

// Encode the SubQ into 12 bytes, including the checksum.
func (sq SubQ) Encode(q []byte) {
	clear(q[:SubQSize])
	q[0] = sq.Adr | (sq.Control << 4)
	if sq.Track == 0xaa {
		q[1] = 0xaa
	} else {
		q[1] = U8ToBCD(sq.Track)
	}
	q[2] = U8ToBCD(sq.Index)
	r := sq.Relative.BCD()
	copy(q[3:6], r[:])
	a := sq.Absolute.BCD()
	copy(q[7:10], a[:])
	SubQGenerateChecksum(q)
}

// DecodeSubQ decodes 12 bytes of Q subchannel. The checksum is not checked.
func DecodeSubQ(q []byte) SubQ {
	sq := SubQ{
		Adr:      q[0] & 0x0f,
		Control:  q[0] >> 4,
		Index:    BCDToU8(q[2]),
		Relative: MSF{M: BCDToU8(q[3]), S: BCDToU8(q[4]), F: BCDToU8(q[5])},
		Absolute: MSF{M: BCDToU8(q[7]), S: BCDToU8(q[8]), F: BCDToU8(q[9])},
	}
	if q[1] == 0xaa {
		sq.Track = 0xaa
	} else {
		sq.Track = BCDToU8(q[1])
	}
	return sq
}
