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

import (
	"fmt"

	"github.com/ZaparooProject/go-wiimote/internal/frame"
)

// CalibrationData maps raw accelerometer bytes to g: Zero reads as 0g and
// Scale as +1g on each axis.
type CalibrationData struct {
	Zero  AxisSample
	Scale AxisSample
}

// Validate reports ErrCalibrationDegenerate when any axis has Scale == Zero.
func (c CalibrationData) Validate() error {
	if c.Zero.X == c.Scale.X || c.Zero.Y == c.Scale.Y || c.Zero.Z == c.Scale.Z {
		return fmt.Errorf("%w: zero %v scale %v", ErrCalibrationDegenerate, c.Zero, c.Scale)
	}
	return nil
}

// StickCalibration describes the analog stick range per axis.
type StickCalibration struct {
	Min    StickSample
	Max    StickSample
	Center StickSample
}

// Validate reports ErrCalibrationDegenerate unless the center lies strictly
// between min and max on both axes.
func (s StickCalibration) Validate() error {
	if s.Min.X >= s.Center.X || s.Center.X >= s.Max.X ||
		s.Min.Y >= s.Center.Y || s.Center.Y >= s.Max.Y {
		return fmt.Errorf("%w: stick min %v center %v max %v",
			ErrCalibrationDegenerate, s.Min, s.Center, s.Max)
	}
	return nil
}

// ExtensionCalibration is the calibration block of the extension.
type ExtensionCalibration struct {
	Accel CalibrationData
	Stick StickCalibration
}

// ParseMoteCalibration reads the 7-byte block at 0x16: three zero bytes, one
// unknown byte, three +1g bytes.
func ParseMoteCalibration(payload []byte) (CalibrationData, error) {
	if len(payload) < frame.MoteCalibrationSize {
		return CalibrationData{}, fmt.Errorf("%w: mote calibration %d bytes, want %d",
			ErrInvalidParameter, len(payload), frame.MoteCalibrationSize)
	}
	return CalibrationData{
		Zero:  AxisSample{X: payload[0], Y: payload[1], Z: payload[2]},
		Scale: AxisSample{X: payload[4], Y: payload[5], Z: payload[6]},
	}, nil
}

// ParseExtensionCalibration decrypts and reads the 14-byte block at
// 0x04a40020. Bytes 3 and 7 hold accelerometer LSBs and are ignored.
func ParseExtensionCalibration(payload []byte) (ExtensionCalibration, error) {
	if len(payload) < frame.ExtensionCalibrationSize {
		return ExtensionCalibration{}, fmt.Errorf("%w: extension calibration %d bytes, want %d",
			ErrInvalidParameter, len(payload), frame.ExtensionCalibrationSize)
	}
	b := frame.DecryptBytes(payload[:frame.ExtensionCalibrationSize])
	return ExtensionCalibration{
		Accel: CalibrationData{
			Zero:  AxisSample{X: b[0], Y: b[1], Z: b[2]},
			Scale: AxisSample{X: b[4], Y: b[5], Z: b[6]},
		},
		Stick: StickCalibration{
			Max:    StickSample{X: b[8], Y: b[11]},
			Min:    StickSample{X: b[9], Y: b[12]},
			Center: StickSample{X: b[10], Y: b[13]},
		},
	}, nil
}

// CalibrationStore holds the calibration read during the handshake. It is
// written by the session before Open returns and read-only afterwards.
type CalibrationStore struct {
	mote      CalibrationData
	extension ExtensionCalibration
	hasMote   bool
	hasExt    bool
	sealed    bool
}

// Mote returns the main device calibration.
func (s *CalibrationStore) Mote() (CalibrationData, bool) {
	return s.mote, s.hasMote
}

// Extension returns the extension calibration.
func (s *CalibrationStore) Extension() (ExtensionCalibration, bool) {
	return s.extension, s.hasExt
}

// Sealed reports whether the store has become read-only.
func (s *CalibrationStore) Sealed() bool {
	return s.sealed
}

func (s *CalibrationStore) setMote(c CalibrationData) error {
	if s.sealed {
		return ErrCalibrationSealed
	}
	s.mote, s.hasMote = c, true
	return nil
}

func (s *CalibrationStore) setExtension(c ExtensionCalibration) error {
	if s.sealed {
		return ErrCalibrationSealed
	}
	s.extension, s.hasExt = c, true
	return nil
}

func (s *CalibrationStore) seal() {
	s.sealed = true
}
