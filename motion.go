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

import "math"

// Vec3 is a physical three-axis value.
type Vec3 struct {
	X, Y, Z float64
}

// Vec2 is a normalized two-axis value.
type Vec2 struct {
	X, Y float64
}

// AxisMask flags individual axes.
type AxisMask uint8

// Axis flags
const (
	AxisX AxisMask = 1 << iota
	AxisY
	AxisZ
)

// Has reports whether every axis in a is set.
func (m AxisMask) Has(a AxisMask) bool { return m&a == a }

// MotionState is the converted reading of one accelerometer (and, for the
// extension, its stick).
type MotionState struct {
	Tilt  Vec3 // degrees, -90..90
	Force Vec3 // g
	Stick Vec2 // -1..1, extension only

	// Uncalibrated flags axes whose calibration is degenerate. Those axes
	// read as neutral.
	Uncalibrated AxisMask
}

// ComputeMotion converts a raw sample into force and tilt. An axis with
// Scale == Zero is reported as neutral and flagged in Uncalibrated.
func ComputeMotion(sample AxisSample, cal CalibrationData) MotionState {
	var m MotionState
	var ok bool

	if m.Force.X, ok = force(sample.X, cal.Zero.X, cal.Scale.X); !ok {
		m.Uncalibrated |= AxisX
	}
	if m.Force.Y, ok = force(sample.Y, cal.Zero.Y, cal.Scale.Y); !ok {
		m.Uncalibrated |= AxisY
	}
	if m.Force.Z, ok = force(sample.Z, cal.Zero.Z, cal.Scale.Z); !ok {
		m.Uncalibrated |= AxisZ
	}

	m.Tilt = Vec3{X: tilt(m.Force.X), Y: tilt(m.Force.Y), Z: tilt(m.Force.Z)}
	return m
}

// NormalizeStick maps a raw stick reading onto -1..1 using the calibrated
// center and range. A degenerate half-range reads as 0.
func NormalizeStick(raw StickSample, cal StickCalibration) (Vec2, AxisMask) {
	var v Vec2
	var bad AxisMask
	var ok bool

	if v.X, ok = stickAxis(raw.X, cal.Min.X, cal.Center.X, cal.Max.X); !ok {
		bad |= AxisX
	}
	if v.Y, ok = stickAxis(raw.Y, cal.Min.Y, cal.Center.Y, cal.Max.Y); !ok {
		bad |= AxisY
	}
	return v, bad
}

// force is the linear map zero -> 0g, scale -> 1g.
func force(raw, zero, scale byte) (float64, bool) {
	span := float64(scale) - float64(zero)
	if span == 0 {
		return 0, false
	}
	return (float64(raw) - float64(zero)) / span, true
}

// tilt converts a gravity component to degrees. Readings beyond 1g (shakes)
// are clamped so asin stays defined.
func tilt(g float64) float64 {
	return math.Asin(math.Max(-1, math.Min(1, g))) * 180 / math.Pi
}

func stickAxis(raw, lo, center, hi byte) (float64, bool) {
	r, c := float64(raw), float64(center)
	switch {
	case raw == center:
		return 0, true
	case raw < center:
		span := c - float64(lo)
		if span <= 0 {
			return 0, false
		}
		return clampUnit((r - c) / span), true
	default:
		span := float64(hi) - c
		if span <= 0 {
			return 0, false
		}
		return clampUnit((r - c) / span), true
	}
}

// clampUnit keeps readings past the calibrated extremes inside -1..1.
func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
