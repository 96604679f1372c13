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

import "strings"

// TrackFormat is the layout of sector data for a track in a track file.
type TrackFormat int

// List of valid TrackFormat values.
const (
	FormatAudio TrackFormat = iota
	FormatMode1
	FormatMode1Raw
	FormatMode2
	FormatMode2Form1
	FormatMode2Form2
	FormatMode2Raw
	FormatCDIRaw
)

type formatInfo struct {
	size int64
	cue  string
	toc  string
}

var formats = [...]formatInfo{
	FormatAudio:      {size: 2352, cue: "AUDIO", toc: "AUDIO"},
	FormatMode1:      {size: 2048, cue: "MODE1/2048", toc: "MODE1"},
	FormatMode1Raw:   {size: 2352, cue: "MODE1/2352", toc: "MODE1_RAW"},
	FormatMode2:      {size: 2336, cue: "MODE2/2336", toc: "MODE2"},
	FormatMode2Form1: {size: 2048, cue: "MODE2/2048", toc: "MODE2_FORM1"},
	FormatMode2Form2: {size: 2324, cue: "MODE2/2324", toc: "MODE2_FORM2"},
	FormatMode2Raw:   {size: 2352, cue: "MODE2/2352", toc: "MODE2_RAW"},
	FormatCDIRaw:     {size: 2352, cue: "CDI/2352", toc: "CDI_RAW"},
}

func (f TrackFormat) String() string {
	return formats[f].cue
}

// Size returns the number of bytes a sector of this format occupies in a
// track file, not counting any subchannel data.
func (f TrackFormat) Size() int64 {
	return formats[f].size
}

func (f TrackFormat) isMode1() bool {
	return f == FormatMode1 || f == FormatMode1Raw
}

func (f TrackFormat) isMode2() bool {
	switch f {
	case FormatMode2, FormatMode2Form1, FormatMode2Form2, FormatMode2Raw, FormatCDIRaw:
		return true
	}
	return false
}

// lookup the format named in a CUE sheet (cue is true) or cdrdao TOC file.
func lookupFormat(name string, cue bool) (TrackFormat, bool) {
	for i, f := range formats {
		s := f.toc
		if cue {
			s = f.cue
		}
		if strings.EqualFold(s, name) {
			return TrackFormat(i), true
		}
	}
	return 0, false
}
