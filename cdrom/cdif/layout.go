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

package cdif

import (
	"crypto/md5"
	"fmt"
	"io"
	"strings"

	"github.com/jetsetilly/cdreader/cdrom/cdutil"
)

// WriteLayout writes a summary of the TOC to w.
func WriteLayout(w io.Writer, toc cdutil.TOC) error {
	s := strings.Builder{}

	s.WriteString(fmt.Sprintf("disc type: %s\n", toc.DiscType))
	s.WriteString(fmt.Sprintf("tracks: %d - %d\n", toc.FirstTrack, toc.LastTrack))

	hasData := false
	for t := toc.FirstTrack; t <= toc.LastTrack && t >= 1 && t <= 99; t++ {
		trk := toc.Tracks[t]
		kind := "audio"
		if trk.IsData() {
			kind = "data"
			hasData = true
		}
		s.WriteString(fmt.Sprintf("track %2d: %s lba %6d %s (%d sectors)\n",
			t, cdutil.LBAToAMSF(trk.LBA), trk.LBA, kind, toc.TrackSectors(t)))
	}

	leadout := toc.Tracks[cdutil.LeadoutTrack]
	s.WriteString(fmt.Sprintf("leadout:  %s lba %6d\n", cdutil.LBAToAMSF(leadout.LBA), leadout.LBA))

	if toc.DiscType != cdutil.DiscTypeCDDAOrMode1 && !hasData {
		s.WriteString(fmt.Sprintf("warning: disc type is %s but there are no data tracks\n", toc.DiscType))
	}

	_, err := io.WriteString(w, s.String())
	return err
}

// LayoutDigest returns the MD5 digest of the layout of the TOCs. The TOCs of
// every disc in a multi-disc set should be passed to the function in order.
func LayoutDigest(tocs ...cdutil.TOC) string {
	h := md5.New()
	for _, toc := range tocs {
		_ = WriteLayout(h, toc)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
