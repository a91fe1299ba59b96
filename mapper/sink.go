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


// Package mapper turns decoded controller state into synthesized keyboard
// and mouse events through a set of selectable control profiles.
package mapper

import "fmt"

// Key is a HID keyboard usage code (usage page 0x07).
type Key uint8

// Keys used by the built-in profiles
const (
	KeyA         Key = 0x04
	KeyB         Key = 0x05
	KeyC         Key = 0x06
	KeyD         Key = 0x07
	KeyE         Key = 0x08
	KeyF         Key = 0x09
	KeyG         Key = 0x0A
	KeyQ         Key = 0x14
	KeyR         Key = 0x15
	KeyS         Key = 0x16
	KeyW         Key = 0x1A
	Key1         Key = 0x1E
	Key2         Key = 0x1F
	KeySpace     Key = 0x2C
	KeyRight     Key = 0x4F
	KeyLeft      Key = 0x50
	KeyDown      Key = 0x51
	KeyUp        Key = 0x52
	KeyLeftShift Key = 0xE1
)

var keyNames = map[Key]string{
	KeyA: "A", KeyB: "B", KeyC: "C", KeyD: "D", KeyE: "E", KeyF: "F", KeyG: "G",
	KeyQ: "Q", KeyR: "R", KeyS: "S", KeyW: "W", Key1: "1", Key2: "2",
	KeySpace: "Space", KeyRight: "Right", KeyLeft: "Left", KeyDown: "Down", KeyUp: "Up",
	KeyLeftShift: "LeftShift",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(0x%02X)", uint8(k))
}

// IsModifier reports whether k is one of the eight modifier usages
// (0xE0-0xE7).
func (k Key) IsModifier() bool {
	return k >= 0xE0 && k <= 0xE7
}

// MouseButton is a mouse button bit as used in HID mouse reports.
type MouseButton uint8

// Mouse buttons
const (
	MouseLeft   MouseButton = 0x01
	MouseRight  MouseButton = 0x02
	MouseMiddle MouseButton = 0x04
)

func (b MouseButton) String() string {
	switch b {
	case MouseLeft:
		return "left"
	case MouseRight:
		return "right"
	case MouseMiddle:
		return "middle"
	default:
		return fmt.Sprintf("MouseButton(0x%02X)", uint8(b))
	}
}

// Sink receives synthesized input events. Calls are synchronous and their
// outcome is not reported back to the mapper.
type Sink interface {
	KeyDown(k Key)
	KeyUp(k Key)
	MouseMove(dx, dy int)
	MouseButton(b MouseButton, down bool)
	MouseWheel(delta int)
}
