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
	wiimote "github.com/ZaparooProject/go-wiimote"
)

// Output is what an edge-tracked control presses: a key or a mouse button.
type Output struct {
	Key    Key
	Button MouseButton
}

// KeyOutput returns an Output pressing k.
func KeyOutput(k Key) Output { return Output{Key: k} }

// ButtonOutput returns an Output pressing b.
func ButtonOutput(b MouseButton) Output { return Output{Button: b} }

func (o Output) String() string {
	if o.Button != 0 {
		return "mouse " + o.Button.String()
	}
	return "key " + o.Key.String()
}

func (o Output) emit(s Sink, down bool) {
	switch {
	case o.Button != 0:
		s.MouseButton(o.Button, down)
	case down:
		s.KeyDown(o.Key)
	default:
		s.KeyUp(o.Key)
	}
}

// binding is one row of a mapping table.
type binding struct {
	active  func(st *wiimote.State, cfg *Config) bool
	control Control
	output  Output
}

// table is the complete mapping of one profile: edge-triggered bindings
// plus an optional per-tick action for continuous outputs.
type table struct {
	continuous func(m *Mapper, st *wiimote.State)
	bindings   []binding
}

func (t *table) lookup(c Control) (binding, bool) {
	for _, b := range t.bindings {
		if b.control == c {
			return b, true
		}
	}
	return binding{}, false
}

// Controls
const (
	ControlA        Control = "a"
	ControlB        Control = "b"
	ControlOne      Control = "one"
	ControlTwo      Control = "two"
	ControlUp       Control = "up"
	ControlDown     Control = "down"
	ControlLeft     Control = "left"
	ControlRight    Control = "right"
	ControlThrow    Control = "throw"
	ControlStrafeL  Control = "strafe-left"
	ControlStrafeR  Control = "strafe-right"
	ControlForward  Control = "forward"
	ControlBackward Control = "backward"
	ControlRun      Control = "run"
	ControlCrouch   Control = "crouch"
	ControlJump     Control = "jump"
)

func button(get func(b *wiimote.ButtonState) bool) func(*wiimote.State, *Config) bool {
	return func(st *wiimote.State, _ *Config) bool { return get(&st.Buttons) }
}

// extension wraps a predicate that only holds while an extension is
// connected; on disconnect the control releases.
func extension(pred func(ext *wiimote.ExtensionState, cfg *Config) bool) func(*wiimote.State, *Config) bool {
	return func(st *wiimote.State, cfg *Config) bool {
		return st.Extension.Connected && pred(&st.Extension, cfg)
	}
}

var (
	pressA     = button(func(b *wiimote.ButtonState) bool { return b.A })
	pressB     = button(func(b *wiimote.ButtonState) bool { return b.B })
	pressOne   = button(func(b *wiimote.ButtonState) bool { return b.One })
	pressTwo   = button(func(b *wiimote.ButtonState) bool { return b.Two })
	pressUp    = button(func(b *wiimote.ButtonState) bool { return b.DPad.Up })
	pressDown  = button(func(b *wiimote.ButtonState) bool { return b.DPad.Down })
	pressLeft  = button(func(b *wiimote.ButtonState) bool { return b.DPad.Left })
	pressRight = button(func(b *wiimote.ButtonState) bool { return b.DPad.Right })
)

var mouseTable = table{
	continuous: mouseContinuous,
	bindings: []binding{
		{control: ControlA, output: ButtonOutput(MouseLeft), active: pressA},
		{control: ControlB, output: ButtonOutput(MouseRight), active: pressB},
	},
}

// The emulator table assumes the controller is held sideways.
var emulatorTable = table{
	bindings: []binding{
		{control: ControlA, output: KeyOutput(KeyA), active: pressA},
		{control: ControlB, output: KeyOutput(KeyB), active: pressB},
		{control: ControlOne, output: KeyOutput(Key1), active: pressOne},
		{control: ControlTwo, output: KeyOutput(Key2), active: pressTwo},
		{control: ControlDown, output: KeyOutput(KeyRight), active: pressDown},
		{control: ControlUp, output: KeyOutput(KeyLeft), active: pressUp},
		{control: ControlLeft, output: KeyOutput(KeyDown), active: pressLeft},
		{control: ControlRight, output: KeyOutput(KeyUp), active: pressRight},
	},
}

var fpsTable = table{
	continuous: fpsContinuous,
	bindings: []binding{
		{control: ControlA, output: ButtonOutput(MouseRight), active: pressA},
		{control: ControlB, output: ButtonOutput(MouseLeft), active: pressB},
		{control: ControlStrafeL, output: KeyOutput(KeyA), active: extension(func(e *wiimote.ExtensionState, c *Config) bool {
			return c.StrafeWindow.Contains(-e.Motion.Tilt.X)
		})},
		{control: ControlStrafeR, output: KeyOutput(KeyD), active: extension(func(e *wiimote.ExtensionState, c *Config) bool {
			return c.StrafeWindow.Contains(e.Motion.Tilt.X)
		})},
		{control: ControlForward, output: KeyOutput(KeyW), active: extension(func(e *wiimote.ExtensionState, c *Config) bool {
			return c.WalkWindow.Contains(e.Motion.Tilt.Y)
		})},
		{control: ControlBackward, output: KeyOutput(KeyS), active: extension(func(e *wiimote.ExtensionState, c *Config) bool {
			return c.WalkWindow.Contains(-e.Motion.Tilt.Y)
		})},
		{control: ControlRun, output: KeyOutput(KeyLeftShift), active: extension(func(e *wiimote.ExtensionState, _ *Config) bool {
			return e.Buttons.Z
		})},
		{control: ControlCrouch, output: KeyOutput(KeyC), active: extension(func(e *wiimote.ExtensionState, _ *Config) bool {
			return e.Buttons.C
		})},
		{control: ControlJump, output: KeyOutput(KeySpace), active: extension(func(e *wiimote.ExtensionState, c *Config) bool {
			return e.Motion.Force.Z < c.JumpForce
		})},
		{control: ControlOne, output: KeyOutput(KeyR), active: pressOne},
		{control: ControlTwo, output: KeyOutput(KeyF), active: pressTwo},
		{control: ControlDown, output: KeyOutput(KeyG), active: pressDown},
		{control: ControlUp, output: KeyOutput(KeyE), active: pressUp},
		// Both horizontal dpad directions press Q.
		{control: ControlLeft, output: KeyOutput(KeyQ), active: pressLeft},
		{control: ControlRight, output: KeyOutput(KeyQ), active: pressRight},
		{control: ControlThrow, output: KeyOutput(KeyG), active: func(st *wiimote.State, c *Config) bool {
			return st.Motion.Force.Z < c.ThrowForce
		}},
	},
}

var tables = [...]*table{
	ProfileMouse:    &mouseTable,
	ProfileEmulator: &emulatorTable,
	ProfileFPS:      &fpsTable,
}

func tableFor(p Profile) *table {
	return tables[p]
}

func mouseContinuous(m *Mapper, st *wiimote.State) {
	dx := int(st.Motion.Tilt.X / m.config.MouseTiltDivisorX)
	dy := int(st.Motion.Tilt.Y / m.config.MouseTiltDivisorY)
	m.move(dx, dy)

	// Wheel repeats every tick while held; down wins over up.
	switch {
	case st.Buttons.DPad.Down:
		m.wheel(-m.config.WheelStep)
	case st.Buttons.DPad.Up:
		m.wheel(m.config.WheelStep)
	}
}

func fpsContinuous(m *Mapper, st *wiimote.State) {
	if !st.Extension.Connected {
		return
	}
	stick := st.Extension.Motion.Stick
	m.move(deadZone(stick.X, m.config), deadZone(stick.Y, m.config))
}

func deadZone(v float64, cfg *Config) int {
	n := int(v * cfg.StickScale)
	if n < cfg.StickDeadZone && n > -cfg.StickDeadZone {
		return 0
	}
	return n
}
