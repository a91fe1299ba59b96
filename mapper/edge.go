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

import "sort"

// Control names one edge-tracked input of a profile, such as a button or
// a tilt window.
type Control string

// Edge is the transition of a control between two ticks.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
)

// EdgeTracker keeps the previous tick's value of every control it has seen.
type EdgeTracker struct {
	prev map[Control]bool
}

// NewEdgeTracker returns an empty tracker; every control starts released.
func NewEdgeTracker() *EdgeTracker {
	return &EdgeTracker{prev: make(map[Control]bool)}
}

// Update records v as the current value of c and returns the transition
// from the previous value.
func (t *EdgeTracker) Update(c Control, v bool) Edge {
	was := t.prev[c]
	t.prev[c] = v
	switch {
	case v && !was:
		return EdgeRising
	case !v && was:
		return EdgeFalling
	default:
		return EdgeNone
	}
}

// Active reports the last recorded value of c.
func (t *EdgeTracker) Active(c Control) bool {
	return t.prev[c]
}

// Held returns every control whose last value was true, sorted.
func (t *EdgeTracker) Held() []Control {
	var held []Control
	for c, v := range t.prev {
		if v {
			held = append(held, c)
		}
	}
	sort.Slice(held, func(i, j int) bool { return held[i] < held[j] })
	return held
}

// Reset forgets every recorded value.
func (t *EdgeTracker) Reset() {
	clear(t.prev)
}
