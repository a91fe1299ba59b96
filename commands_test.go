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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_Layouts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cmd    Command
		name   string
		prefix []byte
	}{
		{
			name:   "report mode default",
			cmd:    SetReportModeCommand{Mode: ReportModeButtons},
			prefix: []byte{0x12, 0x00, 0x30},
		},
		{
			name:   "report mode continuous ext",
			cmd:    SetReportModeCommand{Mode: ReportModeButtonsAccelExt, Continuous: true},
			prefix: []byte{0x12, 0x04, 0x35},
		},
		{
			name:   "status request",
			cmd:    StatusRequestCommand{},
			prefix: []byte{0x15, 0x00},
		},
		{
			name:   "write extension enable",
			cmd:    WriteDataCommand{Address: 0x04A40040, Data: []byte{0x00}},
			prefix: []byte{0x16, 0x04, 0xA4, 0x00, 0x40, 0x01, 0x00},
		},
		{
			name:   "read mote calibration",
			cmd:    ReadDataCommand{Address: 0x16, Size: 7},
			prefix: []byte{0x17, 0x00, 0x00, 0x00, 0x16, 0x00, 0x07},
		},
		{
			name:   "read extension calibration",
			cmd:    ReadDataCommand{Address: 0x04A40020, Size: 14},
			prefix: []byte{0x17, 0x04, 0xA4, 0x00, 0x20, 0x00, 0x0E},
		},
		{
			name:   "leds",
			cmd:    SetLEDsCommand{LEDs: LEDOne | LEDFour},
			prefix: []byte{0x11, 0x90},
		},
		{
			name:   "leds with rumble",
			cmd:    SetLEDsCommand{LEDs: LEDTwo, Rumble: true},
			prefix: []byte{0x11, 0x21},
		},
		{
			name:   "rumble on",
			cmd:    SetRumbleCommand{On: true},
			prefix: []byte{0x1A, 0x01},
		},
		{
			name:   "rumble off",
			cmd:    SetRumbleCommand{},
			prefix: []byte{0x1A, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := tt.cmd.Encode()
			assert.Equal(t, tt.cmd.Opcode(), f[0])
			assert.Equal(t, tt.prefix, f[:len(tt.prefix)])
			for i := len(tt.prefix); i < FrameSize; i++ {
				assert.Zero(t, f[i], "byte %d", i)
			}

			decoded, err := DecodeCommand(f)
			require.NoError(t, err)
			assert.Equal(t, tt.cmd, decoded)
		})
	}
}

func TestWriteDataCommand_Validate(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, WriteDataCommand{}.Validate(), ErrInvalidParameter)
	require.ErrorIs(t, WriteDataCommand{Data: make([]byte, 17)}.Validate(), ErrInvalidParameter)
	require.NoError(t, WriteDataCommand{Data: make([]byte, 16)}.Validate())

	// Oversized payloads are truncated to what fits.
	f := WriteDataCommand{Data: make([]byte, 20)}.Encode()
	assert.Equal(t, byte(16), f[5])
}

func TestDecodeCommand_Unknown(t *testing.T) {
	t.Parallel()

	_, err := DecodeCommand(Frame{0x13, 0x04})
	require.ErrorIs(t, err, ErrUnknownCommand)
	assert.Contains(t, err.Error(), "0x13")
}
