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

// MouseReportSize is the length of a mouse report.
const MouseReportSize = 5

// Mouse button bits
const (
	ButtonLeft    = 0x01
	ButtonRight   = 0x02
	ButtonMiddle  = 0x04
	ButtonBack    = 0x08
	ButtonForward = 0x10
)

// MouseState is one relative mouse report.
type MouseState struct {
	Buttons uint8 // bit 0=Left, 1=Right, 2=Middle, 3=Back, 4=Forward
	DX, DY  int8
	Wheel   int8
	Pan     int8
}

// MarshalBinary encodes the 5-byte report.
//
//	Byte 0: Buttons (bits 5-7 padding)
//	Byte 1: DX
//	Byte 2: DY
//	Byte 3: Wheel
//	Byte 4: Pan
func (m *MouseState) MarshalBinary() ([]byte, error) {
	return []byte{m.Buttons & 0x1F, byte(m.DX), byte(m.DY), byte(m.Wheel), byte(m.Pan)}, nil
}

// UnmarshalBinary decodes a 5-byte report.
func (m *MouseState) UnmarshalBinary(data []byte) error {
	if len(data) < MouseReportSize {
		return io.ErrUnexpectedEOF
	}
	m.Buttons = data[0]
	m.DX = int8(data[1])
	m.DY = int8(data[2])
	m.Wheel = int8(data[3])
	m.Pan = int8(data[4])
	return nil
}

// split breaks v into int8 steps with the same sum.
func split(v int) []int8 {
	var steps []int8
	for v != 0 {
		step := max(min(v, 127), -127)
		steps = append(steps, int8(step))
		v -= step
	}
	return steps
}
