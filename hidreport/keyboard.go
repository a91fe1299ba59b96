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


package hidreport

import "io"

// KeyboardReportSize is the length of a full keyboard report: modifiers,
// one reserved byte and a 256-bit key bitmap.
const KeyboardReportSize = 34

// KeyboardState is an N-key-rollover keyboard: one bit per HID usage plus
// the modifier byte.
type KeyboardState struct {
	Modifiers uint8     // bit 0-7: LCtrl, LShift, LAlt, LGui, RCtrl, RShift, RAlt, RGui
	KeyBitmap [32]uint8 // usages 0x00-0xFF
}

// Press sets usage. Modifier usages (0xE0-0xE7) set the modifier bit.
func (s *KeyboardState) Press(usage uint8) {
	if bit, ok := modifierBit(usage); ok {
		s.Modifiers |= bit
		return
	}
	s.KeyBitmap[usage/8] |= 1 << (usage % 8)
}

// Release clears usage.
func (s *KeyboardState) Release(usage uint8) {
	if bit, ok := modifierBit(usage); ok {
		s.Modifiers &^= bit
		return
	}
	s.KeyBitmap[usage/8] &^= 1 << (usage % 8)
}

// Pressed reports whether usage is down.
func (s KeyboardState) Pressed(usage uint8) bool {
	if bit, ok := modifierBit(usage); ok {
		return s.Modifiers&bit != 0
	}
	return s.KeyBitmap[usage/8]&(1<<(usage%8)) != 0
}

// Keys returns the pressed non-modifier usages in ascending order.
func (s KeyboardState) Keys() []uint8 {
	var keys []uint8
	for i := range 256 {
		if s.KeyBitmap[i/8]&(1<<(i%8)) != 0 {
			keys = append(keys, uint8(i))
		}
	}
	return keys
}

func modifierBit(usage uint8) (uint8, bool) {
	if usage >= 0xE0 && usage <= 0xE7 {
		return 1 << (usage - 0xE0), true
	}
	return 0, false
}

// BuildReport encodes the 34-byte bitmap report.
//
//	Byte 0: Modifiers
//	Byte 1: Reserved (0x00)
//	Bytes 2-33: Key bitmap
func (s *KeyboardState) BuildReport() []byte {
	b := make([]byte, KeyboardReportSize)
	b[0] = s.Modifiers
	copy(b[2:], s.KeyBitmap[:])
	return b
}

// MarshalBinary encodes the variable-length wire format.
//
//	Byte 0: Modifiers
//	Byte 1: Key count
//	Bytes 2+: Usages of pressed keys
func (s *KeyboardState) MarshalBinary() ([]byte, error) {
	keys := s.Keys()
	b := make([]byte, 2+len(keys))
	b[0] = s.Modifiers
	b[1] = uint8(len(keys))
	copy(b[2:], keys)
	return b, nil
}

// UnmarshalBinary decodes the variable-length wire format.
func (s *KeyboardState) UnmarshalBinary(data []byte) error {
	if len(data) < 2 {
		return io.ErrUnexpectedEOF
	}
	count := int(data[1])
	if len(data) < 2+count {
		return io.ErrUnexpectedEOF
	}

	s.Modifiers = data[0]
	clear(s.KeyBitmap[:])
	for _, usage := range data[2 : 2+count] {
		s.KeyBitmap[usage/8] |= 1 << (usage % 8)
	}
	return nil
}
