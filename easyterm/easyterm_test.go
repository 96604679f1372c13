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

package easyterm_test

import (
	"os"
	"strings"
	"testing"

	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/easyterm"
	"github.com/jetsetilly/cdreader/test"
)

func TestKeys(t *testing.T) {
	quit := make(chan struct{})
	defer close(quit)

	var got []byte
	for k := range easyterm.Keys(strings.NewReader("ab q"), quit) {
		got = append(got, k)
	}
	test.ExpectEquality(t, string(got), "ab q")
	test.ExpectSuccess(t, easyterm.IsQuit(got[3]))
	test.ExpectFailure(t, easyterm.IsQuit(got[0]))
	test.ExpectSuccess(t, easyterm.IsQuit(easyterm.KeyEsc))
}

func TestNotATerminal(t *testing.T) {
	r, w, err := os.Pipe()
	test.DemandSuccess(t, err)
	defer r.Close()
	defer w.Close()

	test.ExpectFailure(t, easyterm.IsTerminal(r))
	test.ExpectFailure(t, easyterm.IsTerminal(nil))

	var pt easyterm.Terminal
	err = pt.Initialise(r, w)
	test.ExpectSuccess(t, curated.Is(err, easyterm.NotATerminal))
	err = pt.Initialise(nil, w)
	test.ExpectSuccess(t, curated.Is(err, easyterm.NoFile))

	// clean up of an uninitialised terminal is safe
	pt.CleanUp()
}
