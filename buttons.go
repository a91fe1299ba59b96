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

package wiimote

import "github.com/ZaparooProject/go-wiimote/internal/frame"

// Core button masks. Combine report bytes 1 and 2 big-endian and test the
// resulting word against these.
const (
	ButtonTwo   uint16 = 0x0001
	ButtonOne   uint16 = 0x0002
	ButtonB     uint16 = 0x0004
	ButtonA     uint16 = 0x0008
	ButtonMinus uint16 = 0x0010
	ButtonHome  uint16 = 0x0080
	ButtonLeft  uint16 = 0x0100
	ButtonRight uint16 = 0x0200
	ButtonDown  uint16 = 0x0400
	ButtonUp    uint16 = 0x0800
	ButtonPlus  uint16 = 0x1000

	// buttonMask covers every bit that maps to a button. The remaining bits
	// carry accelerometer LSBs in some report modes.
	buttonMask = ButtonTwo | ButtonOne | ButtonB | ButtonA | ButtonMinus | ButtonHome |
		ButtonLeft | ButtonRight | ButtonDown | ButtonUp | ButtonPlus
)

// Extension button bits (decrypted extension byte 5). A cleared bit means
// the button is pressed.
const (
	ExtensionButtonZ byte = frame.ExtensionButtonZ
	ExtensionButtonC byte = frame.ExtensionButtonC
)

// DPad is the directional pad.
type DPad struct {
	Up    bool
	Down  bool
	Left  bool
	Right bool
}

// ButtonState is the decoded core button word.
type ButtonState struct {
	DPad  DPad
	A     bool
	B     bool
	One   bool
	Two   bool
	Plus  bool
	Minus bool
	Home  bool
}

// ButtonsFromMask decodes a 16-bit button word.
func ButtonsFromMask(mask uint16) ButtonState {
	return ButtonState{
		DPad: DPad{
			Up:    mask&ButtonUp != 0,
			Down:  mask&ButtonDown != 0,
			Left:  mask&ButtonLeft != 0,
			Right: mask&ButtonRight != 0,
		},
		A:     mask&ButtonA != 0,
		B:     mask&ButtonB != 0,
		One:   mask&ButtonOne != 0,
		Two:   mask&ButtonTwo != 0,
		Plus:  mask&ButtonPlus != 0,
		Minus: mask&ButtonMinus != 0,
		Home:  mask&ButtonHome != 0,
	}
}

// Mask encodes the state back into a button word.
func (b ButtonState) Mask() uint16 {
	var mask uint16
	set := func(on bool, bit uint16) {
		if on {
			mask |= bit
		}
	}
	set(b.DPad.Up, ButtonUp)
	set(b.DPad.Down, ButtonDown)
	set(b.DPad.Left, ButtonLeft)
	set(b.DPad.Right, ButtonRight)
	set(b.A, ButtonA)
	set(b.B, ButtonB)
	set(b.One, ButtonOne)
	set(b.Two, ButtonTwo)
	set(b.Plus, ButtonPlus)
	set(b.Minus, ButtonMinus)
	set(b.Home, ButtonHome)
	return mask
}

// ExtensionButtons holds the two extension buttons.
type ExtensionButtons struct {
	C bool
	Z bool
}

// ExtensionButtonsFromByte decodes a decrypted extension button byte.
// Polarity is inverted: bit clear means pressed.
func ExtensionButtonsFromByte(b byte) ExtensionButtons {
	return ExtensionButtons{
		C: b&ExtensionButtonC == 0,
		Z: b&ExtensionButtonZ == 0,
	}
}

// Byte encodes the buttons into the low bits of a decrypted button byte.
func (e ExtensionButtons) Byte() byte {
	var b byte
	if !e.C {
		b |= ExtensionButtonC
	}
	if !e.Z {
		b |= ExtensionButtonZ
	}
	return b
}
