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

package environment_test

import (
	"path/filepath"
	"testing"

	"github.com/jetsetilly/cdreader/cdrom/preferences"
	"github.com/jetsetilly/cdreader/environment"
	"github.com/jetsetilly/cdreader/logger"
	"github.com/jetsetilly/cdreader/test"
)

func TestPermission(t *testing.T) {
	p, err := preferences.NewPreferencesAt(filepath.Join(t.TempDir(), "preferences"))
	test.DemandSuccess(t, err)

	main, err := environment.NewEnvironment(environment.MainLabel, p)
	test.DemandSuccess(t, err)
	other, err := environment.NewEnvironment("verify", p)
	test.DemandSuccess(t, err)

	var perm logger.Permission
	test.ExpectImplements(t, main, perm)
	test.ExpectSuccess(t, main.AllowLogging())
	test.ExpectFailure(t, other.AllowLogging())

	// preferences are shared
	test.ExpectSuccess(t, main.Prefs.SingleThreaded.Set(true))
	test.ExpectEquality(t, other.Prefs.SingleThreaded.Get().(bool), true)

	other.Normalise()
	test.ExpectEquality(t, main.Prefs.SingleThreaded.Get().(bool), false)
}
