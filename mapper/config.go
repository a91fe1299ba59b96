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
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned for out-of-range mapper settings.
var ErrInvalidConfig = errors.New("invalid mapper config")

// Window is an open interval of degrees on the positive side of an axis.
// Bindings mirror it for the negative side.
type Window struct {
	Min float64
	Max float64
}

// Contains reports whether v lies strictly inside the window.
func (w Window) Contains(v float64) bool {
	return v > w.Min && v < w.Max
}

// Config holds every mapping constant
type Config struct {
	// MouseTiltDivisorX and MouseTiltDivisorY scale mote tilt (degrees) to
	// pointer movement in the mouse profile.
	MouseTiltDivisorX float64
	MouseTiltDivisorY float64

	// WheelStep is sent on every tick dpad up (+) or down (-) is held.
	WheelStep int

	// StickScale scales the normalized extension stick to pointer movement
	// in the FPS profile; components smaller than StickDeadZone are dropped.
	StickScale    float64
	StickDeadZone int

	// StrafeWindow and WalkWindow select the extension tilt ranges that
	// press A/D and W/S.
	StrafeWindow Window
	WalkWindow   Window

	// JumpForce and ThrowForce are the z force (g) below which Space and G
	// are pressed.
	JumpForce  float64
	ThrowForce float64

	// RotationCooldown is the time after a profile change during which
	// Minus and Plus are ignored. Polling continues meanwhile.
	RotationCooldown time.Duration

	// MaxConsecutiveErrors stops the loop after this many failed polls in a
	// row. Zero means never stop.
	MaxConsecutiveErrors int

	InitialProfile Profile
}

// DefaultConfig returns the mapping constants of the stock profiles.
func DefaultConfig() *Config {
	return &Config{
		MouseTiltDivisorX: 4,
		MouseTiltDivisorY: 2,
		WheelStep:         120,
		StickScale:        18,
		StickDeadZone:     2,
		StrafeWindow:      Window{Min: 20, Max: 90},
		WalkWindow:        Window{Min: 20, Max: 60},
		JumpForce:         -2,
		ThrowForce:        -2,
		RotationCooldown:  time.Second,
		InitialProfile:    ProfileMouse,
	}
}

// Validate checks the config for values the mapping cannot use.
func (c *Config) Validate() error {
	switch {
	case c.MouseTiltDivisorX == 0 || c.MouseTiltDivisorY == 0:
		return fmt.Errorf("%w: tilt divisor must be non-zero", ErrInvalidConfig)
	case c.StickScale <= 0:
		return fmt.Errorf("%w: stick scale %v", ErrInvalidConfig, c.StickScale)
	case c.StickDeadZone < 0:
		return fmt.Errorf("%w: stick dead zone %d", ErrInvalidConfig, c.StickDeadZone)
	case c.StrafeWindow.Min >= c.StrafeWindow.Max:
		return fmt.Errorf("%w: strafe window %v", ErrInvalidConfig, c.StrafeWindow)
	case c.WalkWindow.Min >= c.WalkWindow.Max:
		return fmt.Errorf("%w: walk window %v", ErrInvalidConfig, c.WalkWindow)
	case c.RotationCooldown < 0:
		return fmt.Errorf("%w: rotation cooldown %v", ErrInvalidConfig, c.RotationCooldown)
	case c.MaxConsecutiveErrors < 0:
		return fmt.Errorf("%w: max consecutive errors %d", ErrInvalidConfig, c.MaxConsecutiveErrors)
	case !c.InitialProfile.Valid():
		return fmt.Errorf("%w: initial profile %v", ErrInvalidConfig, c.InitialProfile)
	}
	return nil
}
