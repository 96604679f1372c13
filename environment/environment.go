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

// Package environment provides the context for a CD interface. More than one
// environment can exist at once, each with a different label.
package environment

import (
	"github.com/jetsetilly/cdreader/cdrom/preferences"
)

// Label is used to name the environment
type Label string

// MainLabel is the label of the main environment. Only the main environment
// is allowed to write to the log.
const MainLabel = Label("")

// Environment is used to provide context for a CD interface. Particularly
// useful when using more than one interface at the same time.
type Environment struct {
	Label Label

	// the CD interface preferences
	Prefs *preferences.Preferences
}

// NewEnvironment is the preferred method of initialisation for the Environment type.
//
// The prefs argument can be nil and a new Preferences instance will be
// created. Providing a non-nil value allows the preferences of more than one
// environment to be synchronised.
func NewEnvironment(label Label, prefs *preferences.Preferences) (*Environment, error) {
	env := &Environment{
		Label: label,
	}

	var err error

	if prefs == nil {
		prefs, err = preferences.NewPreferences()
		if err != nil {
			return nil, err
		}
	}

	env.Prefs = prefs

	return env, nil
}

// Normalise ensures the environment is in an known default state.
func (env *Environment) Normalise() {
	env.Prefs.SetDefaults()
}

// IsMain returns true if the environment is the main environment
func (env *Environment) IsMain() bool {
	return env.Label == MainLabel
}

// AllowLogging implements the logger.Permission interface.
func (env *Environment) AllowLogging() bool {
	return env.IsMain()
}
