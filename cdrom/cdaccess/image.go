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
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/logger"
)

// Sentinel error patterns returned by OpenImage().
const (
	NoTracks         = "cdaccess: no tracks found"
	MissingTrack     = "cdaccess: missing track %d"
	UnknownDirective = "cdaccess: unknown cue sheet directive: %s"
	UnsupportedFile  = "cdaccess: unsupported track file format: %s"
	BadMSF           = "cdaccess: malformed m:s:f time: %s"
	TrackOffset      = "cdaccess: track %d: offset into file exceeds the amount of data available"
)

const logTag = "cdaccess"

// an index that has not been specified
const unsetIndex = -1

type imageTrack struct {
	format     TrackFormat
	subchannel bool
	msbFirst   bool
	control    uint8

	src  source
	name string

	// the first track to use the source. CUE sheet file offsets are reset
	// when a new source is encountered
	firstFileInstance bool

	lba      int32
	pregap   int32
	pregapDV int32
	postgap  int32
	sectors  int32

	// before layout the index values are relative to the start of the
	// track file. after layout they are absolute LBA values, with unset
	// indexes replaced by math.MaxInt32
	index [100]int32

	fileOffset int64
}

// the size of a sector in the track file, including any subchannel data
func (trk *imageTrack) stride() int64 {
	if trk.subchannel {
		return trk.format.Size() + cdutil.SubchannelSize
	}
	return trk.format.Size()
}

func (trk *imageTrack) sectorCount(number int) (int32, error) {
	size := trk.src.Size() - trk.fileOffset
	if size < 0 {
		return 0, curated.Errorf(TrackOffset, number)
	}
	return int32(size / trk.stride()), nil
}

// Image is an implementation of the Access interface for CUE sheets and
// cdrdao TOC files.
type Image struct {
	perm logger.Permission
	fsys FileSystem
	path string

	isTOC    bool
	memcache bool

	tracks     [100]imageTrack
	firstTrack int
	lastTrack  int

	discType     cdutil.DiscType
	totalSectors int32
	toc          cdutil.TOC

	// list of sources in the order they were opened
	sources []source

	// q subchannel replacements from an SBI file, keyed by ABA
	subQReplace map[int32][cdutil.SubQSize]byte
}

// OpenImage opens the CUE sheet or cdrdao TOC file through the FileSystem.
// Files with a .toc extension are parsed as TOC files, all others as CUE
// sheets. If memcache is true then binary track files are loaded into memory.
func OpenImage(perm logger.Permission, fsys FileSystem, path string, memcache bool) (*Image, error) {
	img := &Image{
		perm:     perm,
		fsys:     fsys,
		path:     path,
		isTOC:    strings.EqualFold(filepath.Ext(path), ".toc"),
		memcache: memcache,
	}

	err := img.open()
	if err != nil {
		img.Close()
		return nil, err
	}

	return img, nil
}

func (img *Image) open() error {
	f, _, err := img.fsys.Open(img.path)
	if err != nil {
		return curated.Errorf("cdaccess: %v", err)
	}
	defer f.Close()

	p := newParser(img)
	if err := p.parse(f); err != nil {
		return err
	}

	if err := img.layout(); err != nil {
		return err
	}

	if !img.isTOC {
		img.loadSBI()
	}

	img.generateTOC()

	logger.Logf(img.perm, logTag, "%s: %d tracks, %d sectors", filepath.Base(img.path),
		img.lastTrack-img.firstTrack+1, img.totalSectors)

	return nil
}

func (img *Image) layout() error {
	if img.firstTrack > img.lastTrack {
		return curated.Errorf(NoTracks)
	}

	var runningLBA int32 = -150
	var fileOffset int64

	img.tracks[img.firstTrack].pregap += 150

	for x := img.firstTrack; x <= img.lastTrack; x++ {
		trk := &img.tracks[x]

		if trk.src == nil {
			return curated.Errorf(MissingTrack, x)
		}

		if trk.format == FormatAudio {
			trk.control &^= cdutil.ControlData
		} else {
			trk.control |= cdutil.ControlData
		}

		if img.isTOC {
			runningLBA += trk.pregap
			trk.lba = runningLBA
			runningLBA += trk.sectors
			runningLBA += trk.postgap
			continue
		}

		// disc type for TOC files is set by the CD_DA, CD_ROM and CD_ROM_XA
		// directives
		if img.discType != cdutil.DiscTypeCDI {
			if trk.format == FormatCDIRaw {
				img.discType = cdutil.DiscTypeCDI
			} else if trk.format.isMode2() {
				img.discType = cdutil.DiscTypeCDXA
			}
		}

		if trk.firstFileInstance {
			fileOffset = 0
		}

		runningLBA += trk.pregap

		trk.pregapDV = 0
		if trk.index[0] != unsetIndex {
			trk.pregapDV = trk.index[1] - trk.index[0]
		}

		fileOffset += int64(trk.pregapDV) * trk.format.Size()
		runningLBA += trk.pregapDV
		trk.lba = runningLBA
		trk.fileOffset = fileOffset

		if x == img.lastTrack || img.tracks[x+1].firstFileInstance {
			n, err := trk.sectorCount(x)
			if err != nil {
				return err
			}
			trk.sectors = n
		} else {
			// more than one track in the file
			next := &img.tracks[x+1]
			if next.index[0] == unsetIndex {
				trk.sectors = next.index[1] - trk.index[1]
			} else {
				trk.sectors = next.index[0] - trk.index[1]
			}
		}

		runningLBA += trk.sectors
		runningLBA += trk.postgap
		fileOffset += int64(trk.sectors) * trk.format.Size()
	}

	img.totalSectors = runningLBA

	for x := img.firstTrack; x <= img.lastTrack; x++ {
		trk := &img.tracks[x]
		base := trk.index[1]
		for i := range trk.index {
			if i == 0 || trk.index[i] == unsetIndex {
				trk.index[i] = math.MaxInt32
			} else {
				trk.index[i] = trk.lba + (trk.index[i] - base)
			}
		}
	}

	return nil
}

func (img *Image) generateTOC() {
	img.toc.Clear()
	img.toc.FirstTrack = uint8(img.firstTrack)
	img.toc.LastTrack = uint8(img.lastTrack)
	img.toc.DiscType = img.discType

	for x := img.firstTrack; x <= img.lastTrack; x++ {
		trk := &img.tracks[x]

		// the first track of a CD-i disc is not listed in the TOC
		if trk.format == FormatCDIRaw {
			img.toc.FirstTrack = uint8(min(99, x+1))
			img.toc.LastTrack = max(img.toc.FirstTrack, img.toc.LastTrack)
		}

		img.toc.Tracks[x] = cdutil.Track{
			LBA:     trk.lba,
			Adr:     cdutil.ADRCurrentPosition,
			Control: trk.control,
			Valid:   true,
		}
	}

	img.toc.Tracks[cdutil.LeadoutTrack] = cdutil.Track{
		LBA:     img.totalSectors,
		Adr:     cdutil.ADRCurrentPosition,
		Control: img.tracks[img.lastTrack].control,
		Valid:   true,
	}
}

// ReadTOC implements the Access interface.
func (img *Image) ReadTOC() (cdutil.TOC, error) {
	return img.toc, nil
}

// Close implements the Access interface.
func (img *Image) Close() error {
	var errs []string
	for _, src := range img.sources {
		if err := src.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	img.sources = nil

	if len(errs) > 0 {
		return curated.Errorf("cdaccess: close: %s", strings.Join(errs, "; "))
	}
	return nil
}

// TrackInfo describes how a track is stored in an image.
type TrackInfo struct {
	Number     int
	Format     TrackFormat
	File       string
	Subchannel bool
	LBA        int32
	Sectors    int32
	Pregap     int32
	Postgap    int32
}

func (ti TrackInfo) String() string {
	return fmt.Sprintf("%02d %-10s lba %6d sectors %6d pregap %3d postgap %3d %s",
		ti.Number, ti.Format, ti.LBA, ti.Sectors, ti.Pregap, ti.Postgap, filepath.Base(ti.File))
}

// Tracks returns information about every track in the image.
func (img *Image) Tracks() []TrackInfo {
	var info []TrackInfo
	for x := img.firstTrack; x <= img.lastTrack; x++ {
		trk := &img.tracks[x]
		info = append(info, TrackInfo{
			Number:     x,
			Format:     trk.format,
			File:       trk.name,
			Subchannel: trk.subchannel,
			LBA:        trk.lba,
			Sectors:    trk.sectors,
			Pregap:     trk.pregap + trk.pregapDV,
			Postgap:    trk.postgap,
		})
	}
	return info
}
