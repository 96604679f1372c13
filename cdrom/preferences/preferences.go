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

// Package preferences defines the preference values for the CD interface.
package preferences

import (
	"time"

	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/prefs"
	"github.com/jetsetilly/cdreader/resources"
)

// Preferences for the CD interface. The zero value is not usable. Use the
// NewPreferences() or NewPreferencesAt() functions.
type Preferences struct {
	dsk *prefs.Disk

	// read-ahead policy of the reader goroutine
	ReadAheadMax       prefs.Int
	ReadAheadInitial   prefs.Int
	ReadAheadSpeedMult prefs.Int

	// number of sectors in the sector ring
	RingCapacity prefs.Int

	// maximum number of messages in each message queue. zero is unlimited
	QueueLimit prefs.Int

	// number of milliseconds to wait for a sector before giving up. zero
	// means wait for as long as the reader goroutine is running
	RingTimeout prefs.Int

	// use the single threaded interface even when the multithreaded interface
	// is available
	SingleThreaded prefs.Bool

	// CPU mask for the reader goroutine's thread. zero means no affinity
	Affinity prefs.Int

	// load binary track files into memory when opening an image
	ImageMemcache prefs.Bool
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type. Values are loaded from the default preferences file.
func NewPreferences() (*Preferences, error) {
	pth, err := resources.JoinPath(prefs.DefaultPrefsFile)
	if err != nil {
		return nil, err
	}
	return NewPreferencesAt(pth)
}

func nonNegative(v prefs.Value) error {
	if v.(int) < 0 {
		return curated.Errorf("preferences: value must not be negative (%d)", v)
	}
	return nil
}

func atLeastOne(v prefs.Value) error {
	if v.(int) < 1 {
		return curated.Errorf("preferences: value must be at least one (%d)", v)
	}
	return nil
}

// NewPreferencesAt creates a Preferences instance backed by the file at path.
func NewPreferencesAt(path string) (*Preferences, error) {
	p := &Preferences{}

	p.ReadAheadMax.SetHookPre(atLeastOne)
	p.ReadAheadInitial.SetHookPre(atLeastOne)
	p.ReadAheadSpeedMult.SetHookPre(atLeastOne)
	p.RingCapacity.SetHookPre(func(v prefs.Value) error {
		if v.(int) < 16 {
			return curated.Errorf("preferences: ring capacity must be at least 16 (%d)", v)
		}
		return nil
	})
	p.QueueLimit.SetHookPre(nonNegative)
	p.RingTimeout.SetHookPre(nonNegative)

	p.SetDefaults()

	var err error

	p.dsk, err = prefs.NewDisk(path)
	if err != nil {
		return nil, err
	}

	for _, e := range []struct {
		key  string
		pref prefs.Pref
	}{
		{"cdrom.readahead.max", &p.ReadAheadMax},
		{"cdrom.readahead.initial", &p.ReadAheadInitial},
		{"cdrom.readahead.speedmult", &p.ReadAheadSpeedMult},
		{"cdrom.ring.capacity", &p.RingCapacity},
		{"cdrom.ring.timeout", &p.RingTimeout},
		{"cdrom.queue.limit", &p.QueueLimit},
		{"cdrom.singleThreaded", &p.SingleThreaded},
		{"cdrom.affinity", &p.Affinity},
		{"cdrom.image.memcache", &p.ImageMemcache},
	} {
		if err := p.dsk.Add(e.key, e.pref); err != nil {
			return nil, err
		}
	}

	err = p.dsk.Load(true)
	if err != nil {
		// ignore missing prefs file errors
		if !curated.Is(err, prefs.NoPrefsFile) {
			return nil, err
		}
	}

	return p, nil
}

// SetDefaults reverts all settings to default values.
func (p *Preferences) SetDefaults() {
	p.ReadAheadMax.Set(16)
	p.ReadAheadInitial.Set(1)
	p.ReadAheadSpeedMult.Set(2)
	p.RingCapacity.Set(256)
	p.RingTimeout.Set(0)
	p.QueueLimit.Set(0)
	p.SingleThreaded.Set(false)
	p.Affinity.Set(0)
	p.ImageMemcache.Set(false)
}

// Timeout returns the RingTimeout value as a time.Duration.
func (p *Preferences) Timeout() time.Duration {
	return time.Duration(p.RingTimeout.Get().(int)) * time.Millisecond
}

// Load preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load(false)
}

// Save preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}
