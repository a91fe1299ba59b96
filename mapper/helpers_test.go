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
	"context"
	"fmt"
	"time"

	wiimote "github.com/ZaparooProject/go-wiimote"
)

// recordingSink records every call as a short string.
type recordingSink struct {
	events []string
}

func (s *recordingSink) KeyDown(k Key) { s.events = append(s.events, "down "+k.String()) }
func (s *recordingSink) KeyUp(k Key)   { s.events = append(s.events, "up "+k.String()) }
func (s *recordingSink) MouseMove(dx, dy int) {
	s.events = append(s.events, fmt.Sprintf("move %d,%d", dx, dy))
}

func (s *recordingSink) MouseButton(b MouseButton, down bool) {
	dir := "up"
	if down {
		dir = "down"
	}
	s.events = append(s.events, fmt.Sprintf("mouse %s %s", b, dir))
}

func (s *recordingSink) MouseWheel(delta int) {
	s.events = append(s.events, fmt.Sprintf("wheel %d", delta))
}

func (s *recordingSink) take() []string {
	ev := s.events
	s.events = nil
	return ev
}

type pollResult struct {
	err   error
	state wiimote.State
}

type modeCall struct {
	mode       wiimote.ReportMode
	continuous bool
}

// fakeController replays scripted poll results and records commands.
type fakeController struct {
	ledErr     error
	streamErr  error
	polls      []pollResult
	leds       []wiimote.LED
	modes      []modeCall
	pollCalls  int
	streamings int
}

func (f *fakeController) queue(states ...wiimote.State) {
	for _, st := range states {
		f.polls = append(f.polls, pollResult{state: st})
	}
}

func (f *fakeController) queueErr(err error) {
	f.polls = append(f.polls, pollResult{err: err})
}

func (f *fakeController) Poll(context.Context) (wiimote.State, error) {
	f.pollCalls++
	if len(f.polls) == 0 {
		return wiimote.State{}, wiimote.NewTransportReadError("Poll", "fake", wiimote.ErrTransportTimeout)
	}
	next := f.polls[0]
	f.polls = f.polls[1:]
	return next.state, next.err
}

func (f *fakeController) StartStreaming(context.Context) error {
	f.streamings++
	return f.streamErr
}

func (f *fakeController) SetLEDs(_ context.Context, leds wiimote.LED) error {
	if f.ledErr != nil {
		return f.ledErr
	}
	f.leds = append(f.leds, leds)
	return nil
}

func (f *fakeController) SetReportMode(_ context.Context, mode wiimote.ReportMode, continuous bool) error {
	f.modes = append(f.modes, modeCall{mode: mode, continuous: continuous})
	return nil
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func buttons(set func(b *wiimote.ButtonState)) wiimote.State {
	var st wiimote.State
	set(&st.Buttons)
	return st
}
