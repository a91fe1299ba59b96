// go-wiimote
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-wiimote.
//
// go-wiimote is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-wiimote is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-wiimote; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.


package mapper

import (
	"fmt"
	"strings"

	wiimote "github.com/ZaparooProject/go-wiimote"
)

// Profile is a control mapping mode.
type Profile uint8

// Profiles, in rotation order
const (
	ProfileMouse Profile = iota
	ProfileEmulator
	ProfileFPS
)

var profileOrder = [...]Profile{ProfileMouse, ProfileEmulator, ProfileFPS}

var profileNames = [...]string{
	ProfileMouse:    "mouse",
	ProfileEmulator: "emulator",
	ProfileFPS:      "fps",
}

var profileLEDs = [...]wiimote.LED{
	ProfileMouse:    wiimote.LEDOne,
	ProfileEmulator: wiimote.LEDTwo,
	ProfileFPS:      wiimote.LEDThree,
}

// Profiles returns every profile in rotation order.
func Profiles() []Profile {
	return append([]Profile(nil), profileOrder[:]...)
}

// Valid reports whether p is a known profile.
func (p Profile) Valid() bool {
	return int(p) < len(profileOrder)
}

// Next returns the following profile, wrapping from the last to the first.
func (p Profile) Next() Profile {
	return profileOrder[(p.index()+1)%len(profileOrder)]
}

// Prev returns the preceding profile, wrapping from the first to the last.
func (p Profile) Prev() Profile {
	return profileOrder[(p.index()+len(profileOrder)-1)%len(profileOrder)]
}

func (p Profile) index() int {
	for i, q := range profileOrder {
		if q == p {
			return i
		}
	}
	return 0
}

func (p Profile) String() string {
	if p.Valid() {
		return profileNames[p]
	}
	return fmt.Sprintf("Profile(%d)", uint8(p))
}

// LEDs returns the player LED pattern that indicates p.
func (p Profile) LEDs() wiimote.LED {
	if p.Valid() {
		return profileLEDs[p]
	}
	return wiimote.LEDNone
}

// ParseProfile accepts a profile name, case-insensitive.
func ParseProfile(s string) (Profile, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, p := range profileOrder {
		if profileNames[p] == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown profile %q", ErrInvalidConfig, s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Profile) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: profile %d", ErrInvalidConfig, uint8(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Profile) UnmarshalText(text []byte) error {
	parsed, err := ParseProfile(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
