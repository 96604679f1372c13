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

package statsview

import (
	"fmt"
	"io"
	"sync"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// DefaultAddress is used when Launch() is given an empty address.
const DefaultAddress = "localhost:12600"

const url = "/debug/statsview"

// the viewer configuration is package global in the statsview module so only
// one server can ever be started
var launch sync.Once

// Launch a new goroutine running the statsview. The returned function stops
// the server. Calling Launch() more than once has no effect beyond the first
// call and the returned stop function will do nothing.
func Launch(output io.Writer, address string) (stop func()) {
	if address == "" {
		address = DefaultAddress
	}

	stop = func() {}

	launch.Do(func() {
		viewer.SetConfiguration(viewer.WithAddr(address))
		mgr := statsview.New()
		go mgr.Start()
		stop = mgr.Stop
		fmt.Fprintf(output, "stats server available at %s%s\n", address, url)
	})

	return stop
}
