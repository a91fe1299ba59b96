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

package frame

import (
	"errors"
	"fmt"
)

// ErrShortFrame is returned when a transport delivers fewer than Size bytes.
var ErrShortFrame = errors.New("short frame")

// FromBytes copies a raw buffer into a Frame. Buffers longer than Size are
// truncated; shorter ones are rejected so a partially read report never
// reaches the decoder.
func FromBytes(buf []byte) (Frame, error) {
	var f Frame
	if len(buf) < Size {
		return f, fmt.Errorf("%w: got %d bytes, want %d", ErrShortFrame, len(buf), Size)
	}
	copy(f[:], buf[:Size])
	return f, nil
}

// ValidateReadLength checks the byte count reported by a transport read.
func ValidateReadLength(n int) error {
	if n < Size {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrShortFrame, n, Size)
	}
	return nil
}

// FromReport copies a single HID report into a zero-padded Frame. HID
// devices deliver each report at its natural length, so anything from one
// byte (the report id alone) up to Size is accepted.
func FromReport(buf []byte) (Frame, error) {
	var f Frame
	if len(buf) == 0 {
		return f, fmt.Errorf("%w: empty report", ErrShortFrame)
	}
	copy(f[:], buf)
	return f, nil
}

// OutputLength returns the on-wire length of an output report, opcode
// byte included. Unknown opcodes are sent as a full frame.
func OutputLength(op byte) int {
	switch op {
	case OpLEDs, OpStatus, OpRumble:
		return 2
	case OpReportMode:
		return 3
	case OpReadData:
		return 7
	default:
		return Size
	}
}
