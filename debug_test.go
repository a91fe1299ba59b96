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
	"bytes"
	"io"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withDebugState restores package debug globals after the test.
func withDebugState(t *testing.T) {
	t.Helper()
	enabled, out, session := debugEnabled, debugOutput, sessionLogWriter
	t.Cleanup(func() {
		debugEnabled = enabled
		debugOutput = out
		sessionLogWriter = session
	})
}

func TestDebugf_WritesToSessionLog(t *testing.T) {
	withDebugState(t)

	var buf bytes.Buffer
	sessionLogWriter = &buf
	debugEnabled = false

	Debugf("unrecognized report 0x%02X", 0x3d)

	assert.Contains(t, buf.String(), "DEBUG: unrecognized report 0x3D\n")
}

func TestDebugf_IncludesTimestamp(t *testing.T) {
	withDebugState(t)

	var buf bytes.Buffer
	sessionLogWriter = &buf
	debugEnabled = false

	Debugf("tick skipped")

	matched, err := regexp.MatchString(`^\d{2}:\d{2}:\d{2}\.\d{3} DEBUG:`, buf.String())
	require.NoError(t, err)
	assert.True(t, matched, "timestamp missing: %q", buf.String())
}

func TestDebugf_EchoOnlyWhenEnabled(t *testing.T) {
	withDebugState(t)

	var out bytes.Buffer
	sessionLogWriter = nil
	SetDebugOutput(&out)

	SetDebugEnabled(false)
	Debugf("hidden")
	assert.Empty(t, out.String())

	SetDebugEnabled(true)
	assert.True(t, DebugEnabled())
	Debugf("shown %d", 1)
	assert.Equal(t, "DEBUG: shown 1\n", out.String())
}

func TestDebugln_WritesToBoth(t *testing.T) {
	withDebugState(t)

	var session, out bytes.Buffer
	sessionLogWriter = &session
	SetDebugOutput(&out)
	SetDebugEnabled(true)

	Debugln("battery", 88)

	assert.Contains(t, session.String(), "DEBUG: battery88")
	assert.Equal(t, "DEBUG: battery88\n", out.String())
}

func TestDebugf_NilWriters(t *testing.T) {
	withDebugState(t)

	sessionLogWriter = nil
	SetDebugOutput(nil)
	SetDebugEnabled(true)

	assert.NotPanics(t, func() { Debugf("nothing to write to") })

	SetDebugOutput(io.Discard)
	assert.NotPanics(t, func() { Debugln("discarded") })
}
