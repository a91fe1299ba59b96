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


// Package hidreport implements a mapper.Sink that keeps keyboard and mouse
// state and writes HID input reports to io.Writers, one report per write.
// The formats match the virtual keyboard and mouse of a VIIPER server.
package hidreport

import (
	"encoding"
	"fmt"
	"io"
	"sync/atomic"

	wiimote "github.com/ZaparooProject/go-wiimote"
	"github.com/ZaparooProject/go-wiimote/internal/syncutil"
	"github.com/ZaparooProject/go-wiimote/mapper"
)

// Stats counts written reports and write failures.
type Stats struct {
	KeyboardReports int64
	MouseReports    int64
	WriteErrors     int64
}

// Sink writes keyboard reports to one writer and mouse reports to another.
// Either writer may be nil to drop that device. Sink is safe for
// concurrent use.
type Sink struct {
	keyboardOut io.Writer
	mouseOut    io.Writer
	lastErr     error
	keyboard    KeyboardState
	stats       struct {
		keyboard, mouse, errors atomic.Int64
	}
	mu      syncutil.Mutex
	buttons uint8
}

var _ mapper.Sink = (*Sink)(nil)

// NewSink creates a sink with every key and button released.
func NewSink(keyboard, mouse io.Writer) *Sink {
	return &Sink{keyboardOut: keyboard, mouseOut: mouse}
}

// KeyDown implements mapper.Sink.
func (s *Sink) KeyDown(k mapper.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keyboard.Pressed(uint8(k)) {
		return
	}
	s.keyboard.Press(uint8(k))
	s.writeKeyboard()
}

// KeyUp implements mapper.Sink.
func (s *Sink) KeyUp(k mapper.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.keyboard.Pressed(uint8(k)) {
		return
	}
	s.keyboard.Release(uint8(k))
	s.writeKeyboard()
}

// MouseMove implements mapper.Sink. Moves beyond the int8 range are split
// over several reports.
func (s *Sink) MouseMove(dx, dy int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	xs, ys := split(dx), split(dy)
	for i := range max(len(xs), len(ys)) {
		r := MouseState{Buttons: s.buttons}
		if i < len(xs) {
			r.DX = xs[i]
		}
		if i < len(ys) {
			r.DY = ys[i]
		}
		s.writeMouse(&r)
	}
}

// MouseButton implements mapper.Sink.
func (s *Sink) MouseButton(b mapper.MouseButton, down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.buttons &^ uint8(b)
	if down {
		next = s.buttons | uint8(b)
	}
	if next == s.buttons {
		return
	}
	s.buttons = next
	s.writeMouse(&MouseState{Buttons: s.buttons})
}

// MouseWheel implements mapper.Sink.
func (s *Sink) MouseWheel(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, step := range split(delta) {
		s.writeMouse(&MouseState{Buttons: s.buttons, Wheel: step})
	}
}

// Keyboard returns the current keyboard state.
func (s *Sink) Keyboard() KeyboardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keyboard
}

// Buttons returns the held mouse button bits.
func (s *Sink) Buttons() uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buttons
}

// Err returns the most recent write error.
func (s *Sink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Stats returns a snapshot of the report counters.
func (s *Sink) Stats() Stats {
	return Stats{
		KeyboardReports: s.stats.keyboard.Load(),
		MouseReports:    s.stats.mouse.Load(),
		WriteErrors:     s.stats.errors.Load(),
	}
}

func (s *Sink) writeKeyboard() {
	if s.keyboardOut == nil {
		return
	}
	if s.write(s.keyboardOut, &s.keyboard, "keyboard") {
		s.stats.keyboard.Add(1)
	}
}

func (s *Sink) writeMouse(r *MouseState) {
	if s.mouseOut == nil {
		return
	}
	if s.write(s.mouseOut, r, "mouse") {
		s.stats.mouse.Add(1)
	}
}

func (s *Sink) write(w io.Writer, m encoding.BinaryMarshaler, device string) bool {
	report, err := m.MarshalBinary()
	if err == nil {
		_, err = w.Write(report)
	}
	if err != nil {
		s.lastErr = fmt.Errorf("write %s report: %w", device, err)
		s.stats.errors.Add(1)
		wiimote.Debugf("hidreport: %v", s.lastErr)
		return false
	}
	return true
}
