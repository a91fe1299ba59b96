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


package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ZaparooProject/go-wiimote/mapper"
)

type recordSink struct {
	events []string
}

func (r *recordSink) KeyDown(k mapper.Key) { r.events = append(r.events, "down "+k.String()) }
func (r *recordSink) KeyUp(k mapper.Key) { r.events = append(r.events, "up "+k.String()) }
func (r *recordSink) MouseMove(_, _ int) { r.events = append(r.events, "move") }
func (r *recordSink) MouseWheel(_ int) { r.events = append(r.events, "wheel") }
func (r *recordSink) MouseButton(b mapper.MouseButton, _ bool) {
	r.events = append(r.events, "button "+b.String())
}

func TestTeeSink(t *testing.T) {
	t.Parallel()

	a, b := &recordSink{}, &recordSink{}
	tee := teeSink{a, b}
	tee.KeyDown(mapper.KeyW)
	tee.KeyUp(mapper.KeyW)
	tee.MouseMove(1, -1)
	tee.MouseButton(mapper.MouseRight, true)
	tee.MouseWheel(120)

	assert.Equal(t, a.events, b.events)
	assert.Len(t, a.events, 5)
	assert.Equal(t, "button right", a.events[3])
}

func TestLogSink(t *testing.T) {
	t.Parallel()

	logger, buf := bufferLogger()
	s := logSink{logger: logger}
	s.MouseWheel(-120)
	s.MouseMove(3, 4)
	s.KeyDown(mapper.KeyW)

	out := buf.String()
	assert.Contains(t, out, `msg="mouse wheel" delta=-120`)
	assert.Contains(t, out, `level=DEBUG msg="mouse move" dx=3 dy=4`)
	assert.Contains(t, out, `msg="key down"`)
}
