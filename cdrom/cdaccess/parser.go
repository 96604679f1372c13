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
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jetsetilly/cdreader/cdrom/cdutil"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/logger"
)

// maximum number of arguments to a directive. additional arguments are
// ignored
const maxArgs = 4

// splitLine separates a line into its upper cased directive and arguments.
// arguments may be quoted.
func splitLine(line string) (string, []string) {
	var cmd string
	var args []string

	next := func(quotes bool) string {
		line = strings.TrimLeft(line, " \t")
		if quotes && strings.HasPrefix(line, `"`) {
			line = line[1:]
			i := strings.IndexByte(line, '"')
			if i < 0 {
				s := line
				line = ""
				return s
			}
			s := line[:i]
			line = line[i+1:]
			return s
		}
		i := strings.IndexAny(line, " \t")
		if i < 0 {
			s := line
			line = ""
			return s
		}
		s := line[:i]
		line = line[i:]
		return s
	}

	cmd = strings.ToUpper(next(false))
	for len(args) < maxArgs && strings.TrimLeft(line, " \t") != "" {
		args = append(args, next(true))
	}

	return cmd, args
}

// parseMSF parses a time in the form m:s:f, returning the number of sectors.
func parseMSF(s string) (int32, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, curated.Errorf(BadMSF, s)
	}

	var v [3]int
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return 0, curated.Errorf(BadMSF, s)
		}
		v[i] = int(n)
	}

	if v[0] > 99 || v[1] > 59 || v[2] > 74 {
		return 0, curated.Errorf(BadMSF, s)
	}

	return int32((v[0]*60+v[1])*75 + v[2]), nil
}

type parser struct {
	img *Image

	lineNum int
	cmd     string
	args    []string

	// the track currently being defined. the track is not committed to the
	// image until the next TRACK or FILE directive or the end of the file
	active   int
	trk      imageTrack
	autoTrk  int
	tocFiles map[string]source

	// directory of the image. relative filenames are relative to this
	dir string
}

func newParser(img *Image) *parser {
	p := &parser{
		img:      img,
		active:   -1,
		autoTrk:  1,
		tocFiles: make(map[string]source),
		dir:      img.fsys.Dir(img.path),
	}

	img.firstTrack = 99
	img.lastTrack = 0
	img.discType = cdutil.DiscTypeCDDAOrMode1

	return p
}

func (p *parser) arg(i int) string {
	if i < len(p.args) {
		return p.args[i]
	}
	return ""
}

func (p *parser) errorf(pattern string, values ...any) error {
	return curated.Errorf("cdaccess: line %d: %v", p.lineNum, fmt.Errorf(pattern, values...))
}

func (p *parser) commit() {
	if p.active >= 0 {
		p.img.tracks[p.active] = p.trk
	}
}

func (p *parser) startTrack(number int) error {
	if number < 1 || number > 99 {
		return p.errorf("invalid track number: %d", number)
	}
	p.active = number
	p.img.firstTrack = min(p.img.firstTrack, number)
	p.img.lastTrack = max(p.img.lastTrack, number)
	for i := 2; i < len(p.trk.index); i++ {
		p.trk.index[i] = unsetIndex
	}
	return nil
}

func (p *parser) openSource(name string, audio bool) (source, error) {
	src, err := openSource(p.img.fsys, p.img.fsys.Join(p.dir, name), audio, p.img.memcache)
	if err != nil {
		return nil, err
	}
	p.img.sources = append(p.img.sources, src)
	return src, nil
}

func (p *parser) parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.lineNum++

		line := scanner.Text()
		if p.lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if p.img.isTOC {
			if i := strings.Index(line, "//"); i >= 0 {
				line = line[:i]
			}
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		p.cmd, p.args = splitLine(line)

		var err error
		if p.img.isTOC {
			err = p.tocDirective()
		} else {
			err = p.cueDirective()
		}
		if err != nil {
			if curated.IsAny(err) {
				return err
			}
			return p.errorf("%v", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return curated.Errorf("cdaccess: %v", err)
	}

	p.commit()

	return nil
}

func (p *parser) cueDirective() error {
	switch p.cmd {
	case "FILE":
		if p.active >= 0 {
			p.commit()
			p.trk = imageTrack{}
			p.active = -1
		}

		var audio bool
		switch strings.ToUpper(p.arg(1)) {
		case "BINARY":
			p.trk.msbFirst = false
		case "MOTOROLA":
			p.trk.msbFirst = true
		case "WAVE", "WAV", "PCM", "MP3", "AU", "OGG", "VORBIS", "MPC", "MP+":
			audio = true
		default:
			return curated.Errorf(UnsupportedFile, p.arg(1))
		}

		src, err := p.openSource(p.arg(0), audio)
		if err != nil {
			return err
		}
		p.trk.src = src
		p.trk.name = p.arg(0)
		p.trk.firstFileInstance = true

	case "TRACK":
		if p.active >= 0 {
			p.commit()
			p.trk.firstFileInstance = false
			p.trk.pregap = 0
			p.trk.pregapDV = 0
			p.trk.postgap = 0
			p.trk.index[0] = unsetIndex
			p.trk.index[1] = 0
		}

		n, err := strconv.Atoi(p.arg(0))
		if err != nil {
			return p.errorf("invalid track number: %s", p.arg(0))
		}
		if err := p.startTrack(n); err != nil {
			return err
		}

		f, ok := lookupFormat(p.arg(1), true)
		if !ok {
			return p.errorf("invalid track format: %s", p.arg(1))
		}
		p.trk.format = f

	case "INDEX":
		if p.active < 0 {
			return nil
		}
		t, err := parseMSF(p.arg(1))
		if err != nil {
			return err
		}
		i, err := strconv.ParseUint(p.arg(0), 10, 8)
		if err != nil || i >= 100 {
			return p.errorf("malformed INDEX directive")
		}
		p.trk.index[i] = t

	case "PREGAP", "POSTGAP":
		if p.active < 0 {
			return nil
		}
		t, err := parseMSF(p.arg(0))
		if err != nil {
			return err
		}
		if p.cmd == "PREGAP" {
			p.trk.pregap = t
		} else {
			p.trk.postgap = t
		}

	case "REM":

	case "FLAGS":
		p.trk.control &^= cdutil.ControlPreEmphasis | cdutil.ControlCopyPermit | cdutil.ControlFourChannel
		for _, f := range p.args {
			switch f {
			case "DCP":
				p.trk.control |= cdutil.ControlCopyPermit
			case "4CH":
				p.trk.control |= cdutil.ControlFourChannel
			case "PRE":
				p.trk.control |= cdutil.ControlPreEmphasis
			case "SCMS":
				// serial copy management is not emulated
			default:
				return p.errorf("unknown FLAGS flag: %s", f)
			}
		}

	case "CDTEXTFILE", "CATALOG", "ISRC", "TITLE", "PERFORMER", "SONGWRITER":
		logger.Logf(p.img.perm, logTag, "unsupported cue sheet directive: %s", p.cmd)

	default:
		return curated.Errorf(UnknownDirective, p.cmd)
	}

	return nil
}

func (p *parser) requireTrack() error {
	if p.active < 0 {
		return p.errorf("%s is outside of a TRACK definition", p.cmd)
	}
	return nil
}

func (p *parser) tocDirective() error {
	switch p.cmd {
	case "TRACK":
		if p.active >= 0 {
			p.commit()
			p.trk = imageTrack{}
			p.active = -1
		}

		if p.autoTrk > 99 {
			return p.errorf("invalid track number: %d", p.autoTrk)
		}
		if err := p.startTrack(p.autoTrk); err != nil {
			return err
		}
		p.autoTrk++

		f, ok := lookupFormat(p.arg(0), false)
		if !ok {
			return p.errorf("invalid track format: %s", p.arg(0))
		}
		p.trk.format = f

		// cdrdao writes audio data in big-endian order
		if f == FormatAudio {
			p.trk.msbFirst = true
		}

		switch strings.ToUpper(p.arg(1)) {
		case "RW":
			return p.errorf("RW subchannel data is not supported, only RW_RAW")
		case "RW_RAW":
			p.trk.subchannel = true
		}

	case "SILENCE", "ZERO":

	case "FIFO", "INDEX":
		return p.errorf("unsupported directive: %s", p.cmd)

	case "FILE", "AUDIOFILE":
		if err := p.requireTrack(); err != nil {
			return err
		}
		if strings.HasPrefix(p.arg(1), "#") {
			return p.tocFile(p.arg(0), p.arg(1)[1:], p.arg(2), p.arg(3))
		}
		return p.tocFile(p.arg(0), "", p.arg(1), p.arg(2))

	case "DATAFILE":
		if err := p.requireTrack(); err != nil {
			return err
		}
		if strings.HasPrefix(p.arg(1), "#") {
			return p.tocFile(p.arg(0), p.arg(1)[1:], "", p.arg(2))
		}
		return p.tocFile(p.arg(0), "", "", p.arg(1))

	case "PREGAP", "START":
		if err := p.requireTrack(); err != nil {
			return err
		}
		t, err := parseMSF(p.arg(0))
		if err != nil {
			return err
		}
		p.trk.pregap = t

	case "TWO_CHANNEL_AUDIO":
		p.trk.control &^= cdutil.ControlFourChannel
	case "FOUR_CHANNEL_AUDIO":
		p.trk.control |= cdutil.ControlFourChannel

	case "NO":
		switch strings.ToUpper(p.arg(0)) {
		case "COPY":
			p.trk.control &^= cdutil.ControlCopyPermit
		case "PRE_EMPHASIS":
			p.trk.control &^= cdutil.ControlPreEmphasis
		default:
			return p.errorf("unsupported argument to NO directive: %s", p.arg(0))
		}
	case "COPY":
		p.trk.control |= cdutil.ControlCopyPermit
	case "PRE_EMPHASIS":
		p.trk.control |= cdutil.ControlPreEmphasis

	case "CD_DA", "CD_ROM":
		p.img.discType = cdutil.DiscTypeCDDAOrMode1
	case "CD_ROM_XA":
		p.img.discType = cdutil.DiscTypeCDXA
	}

	return nil
}

// parse msf time if it is in the form m:s:f. any other form is ignored
func optionalMSF(s string) (int32, bool) {
	var m, sec, f int
	if n, err := fmt.Sscanf(s, "%d:%d:%d", &m, &sec, &f); err != nil || n != 3 {
		return 0, false
	}
	return int32((m*60+sec)*75 + f), true
}

func (p *parser) tocFile(name string, binOffset string, msfOffset string, length string) error {
	trk := &p.trk

	if src, ok := p.tocFiles[name]; ok {
		trk.firstFileInstance = false
		trk.src = src
	} else {
		ext := filepath.Ext(name)
		audio := strings.EqualFold(ext, ".wav") || strings.EqualFold(ext, ".mp3")
		src, err := p.openSource(name, audio)
		if err != nil {
			return err
		}
		trk.firstFileInstance = true
		trk.src = src
		p.tocFiles[name] = src
	}
	trk.name = name

	var offset int64
	if binOffset != "" {
		if n, err := strconv.ParseInt(binOffset, 10, 64); err == nil {
			offset += n
		}
	}
	if t, ok := optionalMSF(msfOffset); ok {
		offset += int64(t) * trk.stride()
	}

	trk.fileOffset = offset
	sectors, err := trk.sectorCount(p.active)
	if err != nil {
		return err
	}

	if length != "" {
		n := sectors
		if t, ok := optionalMSF(length); ok {
			n = t
		} else if trk.format == FormatAudio {
			// length of audio in samples
			if v, err := strconv.ParseInt(length, 10, 64); err == nil {
				n = int32(v / 588)
			}
		}

		if n > sectors {
			return p.errorf("length of track %d is too large by %d sectors", p.active, n-sectors)
		}
		sectors = n
	}

	trk.sectors = sectors

	return nil
}
