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

import "encoding/binary"

// lookup tables for the error detection code (a CRC32 with a reversed
// polynomial) and for the GF(2^8) arithmetic of the Reed-Solomon product code.
var (
	edcTable [256]uint32

	// multiplication by alpha
	eccF [256]uint8

	// division by (1 + alpha)
	eccB [256]uint8

	gfExp [255]uint8
	gfLog [256]uint8
)

func init() {
	for i := range 256 {
		j := uint8(i << 1)
		if i&0x80 == 0x80 {
			j ^= 0x1d
		}
		eccF[i] = j
		eccB[uint8(i)^j] = uint8(i)

		edc := uint32(i)
		for range 8 {
			if edc&1 == 1 {
				edc = (edc >> 1) ^ 0xd8018001
			} else {
				edc >>= 1
			}
		}
		edcTable[i] = edc
	}

	x := uint8(1)
	for i := range 255 {
		gfExp[i] = x
		gfLog[x] = uint8(i)
		x = eccF[x]
	}
}

func edcCompute(edc uint32, data []byte) uint32 {
	for _, b := range data {
		edc = (edc >> 8) ^ edcTable[byte(edc)^b]
	}
	return edc
}

// regions of a sector covered by the EDC and the location of the stored EDC
const (
	mode1EDCEnd      = 0x810
	mode2Form1EDCEnd = 0x818
	mode2Form2EDCEnd = 0x92c
)

// the product code operates on the 2236 bytes from the start of the header
// to the start of the Q parity. the P parity covers the first 2064 bytes of
// that region. each P vector is 24 bytes long, plus two parity bytes. each Q
// vector is 43 bytes long, plus two parity bytes
type eccParams struct {
	majorCount uint32
	minorCount uint32
	majorMult  uint32
	minorInc   uint32
	parity     uint32
}

var (
	eccP = eccParams{majorCount: 86, minorCount: 24, majorMult: 2, minorInc: 86, parity: 0x81c}
	eccQ = eccParams{majorCount: 52, minorCount: 43, majorMult: 86, minorInc: 88, parity: 0x8c8}
)

// vector calls f with the sector offset of each data byte in the numbered
// vector, followed by the offsets of the two parity bytes.
func (p eccParams) vector(major uint32, f func(i int, offset uint32)) {
	size := p.majorCount * p.minorCount
	idx := (major>>1)*p.majorMult + (major & 1)
	for minor := range p.minorCount {
		f(int(minor), headerOffset+idx)
		idx += p.minorInc
		if idx >= size {
			idx -= size
		}
	}
	f(int(p.minorCount), p.parity+major)
	f(int(p.minorCount)+1, p.parity+major+p.majorCount)
}

func (p eccParams) generate(sector []byte) {
	for major := range p.majorCount {
		var a, b uint8
		p.vector(major, func(i int, offset uint32) {
			if i >= int(p.minorCount) {
				return
			}
			a ^= sector[offset]
			b ^= sector[offset]
			a = eccF[a]
		})
		a = eccB[eccF[a]^b]
		sector[p.parity+major] = a
		sector[p.parity+major+p.majorCount] = a ^ b
	}
}

// correct fixes single byte errors in each vector. returns the number of
// corrections made and the number of vectors found to be uncorrectable.
func (p eccParams) correct(sector []byte) (fixed int, failed int) {
	n := int(p.minorCount) + 2
	var offsets [45]uint32

	for major := range p.majorCount {
		var s0, s1 uint8
		p.vector(major, func(i int, offset uint32) {
			offsets[i] = offset
			s0 ^= sector[offset]
			s1 = eccF[s1] ^ sector[offset]
		})

		if s0 == 0 && s1 == 0 {
			continue
		}
		if s0 == 0 || s1 == 0 {
			failed++
			continue
		}

		// s1 = s0 * alpha^(n-1-position)
		e := (int(gfLog[s1]) - int(gfLog[s0]) + 255) % 255
		pos := n - 1 - e
		if pos < 0 {
			failed++
			continue
		}

		sector[offsets[pos]] ^= s0
		fixed++
	}

	return fixed, failed
}

// generate P and Q parity. for Mode 2 sectors the header is treated as zero.
func eccGenerate(sector []byte, zeroHeader bool) {
	var hdr [4]byte
	if zeroHeader {
		copy(hdr[:], sector[headerOffset:])
		clear(sector[headerOffset : headerOffset+4])
	}
	eccP.generate(sector)
	eccQ.generate(sector)
	if zeroHeader {
		copy(sector[headerOffset:], hdr[:])
	}
}

func edcStore(sector []byte, start, end int) {
	binary.LittleEndian.PutUint32(sector[end:], edcCompute(0, sector[start:end]))
}

func edcCheck(sector []byte, start, end int) bool {
	return binary.LittleEndian.Uint32(sector[end:]) == edcCompute(0, sector[start:end])
}

func encodeHeader(lba int32, mode uint8, sector []byte) {
	copy(sector, syncPattern[:])
	msf := LBAToAMSF(lba).BCD()
	copy(sector[headerOffset:], msf[:])
	sector[modeOffset] = mode
}

// EncodeMode0Sector writes the sync pattern and header for a Mode 0 sector.
// Everything else in the sector is zeroed.
func EncodeMode0Sector(lba int32, sector []byte) {
	clear(sector[:SectorSize])
	encodeHeader(lba, 0, sector)
}

// EncodeMode1Sector writes the sync pattern, header, EDC and L-EC data for a
// Mode 1 sector. The 2048 bytes of user data must already be in place.
func EncodeMode1Sector(lba int32, sector []byte) {
	encodeHeader(lba, 1, sector)
	edcStore(sector, 0, mode1EDCEnd)
	clear(sector[mode1EDCEnd+4 : eccP.parity])
	eccGenerate(sector, false)
}

// EncodeMode2Sector writes the sync pattern and header for a formless Mode 2
// sector. The 2336 bytes of data following the header must already be in
// place.
func EncodeMode2Sector(lba int32, sector []byte) {
	encodeHeader(lba, 2, sector)
}

// EncodeMode2Form1Sector writes the sync pattern, header, EDC and L-EC data
// for a Mode 2 Form 1 sector. The subheader and the 2048 bytes of user data
// must already be in place.
func EncodeMode2Form1Sector(lba int32, sector []byte) {
	encodeHeader(lba, 2, sector)
	edcStore(sector, subheaderOffset, mode2Form1EDCEnd)
	eccGenerate(sector, true)
}

// EncodeMode2Form2Sector writes the sync pattern, header and EDC for a Mode 2
// Form 2 sector. The subheader and the 2324 bytes of user data must already
// be in place.
func EncodeMode2Form2Sector(lba int32, sector []byte) {
	encodeHeader(lba, 2, sector)
	edcStore(sector, subheaderOffset, mode2Form2EDCEnd)
}

// CheckEDC returns true if the error detection code of a Mode 1 (xa is false)
// or Mode 2 Form 1 (xa is true) sector is correct.
func CheckEDC(sector []byte, xa bool) bool {
	if xa {
		return edcCheck(sector, subheaderOffset, mode2Form1EDCEnd)
	}
	return edcCheck(sector, 0, mode1EDCEnd)
}

// maximum number of P/Q correction passes
const maxCorrectionPasses = 5

// CheckAndCorrect checks the EDC of a Mode 1 (xa is false) or Mode 2 Form 1
// (xa is true) sector. If the check fails the L-EC data is used to correct
// the sector, alternating P and Q passes until nothing more can be corrected.
// Returns true if the sector is correct or has been corrected.
func CheckAndCorrect(sector []byte, xa bool) bool {
	if CheckEDC(sector, xa) {
		return true
	}

	var hdr [4]byte
	if xa {
		copy(hdr[:], sector[headerOffset:])
		clear(sector[headerOffset : headerOffset+4])
	}

	for range maxCorrectionPasses {
		fp, _ := eccP.correct(sector)
		fq, _ := eccQ.correct(sector)
		if fp+fq == 0 {
			break
		}
	}

	if xa {
		copy(sector[headerOffset:], hdr[:])
	}

	return CheckEDC(sector, xa)
}
