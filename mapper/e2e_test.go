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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wiimote "github.com/ZaparooProject/go-wiimote"
	testutil "github.com/ZaparooProject/go-wiimote/internal/testing"
)

// openDevice runs a scripted handshake without extension and forgets its
// writes.
func openDevice(t *testing.T) (*wiimote.Device, *wiimote.MockTransport) {
	t.Helper()

	mock := wiimote.NewMockTransport()
	mock.QueueReport(
		wiimote.InputReport{Mode: wiimote.ReportModeButtons},
		wiimote.StatusReport{BatteryRaw: 0xC8},
	)
	cal := wiimote.ReadDataResponse{SizeMinusOne: 6, Address: 0x0016}
	copy(cal.Payload[:], testutil.DefaultMoteCalibration[:])
	mock.QueueReport(cal)

	device, err := wiimote.Open(context.Background(), mock)
	require.NoError(t, err)
	mock.ClearWrites()
	return device, mock
}

func TestEndToEnd_ButtonAFrame(t *testing.T) {
	t.Parallel()

	device, mock := openDevice(t)
	sink := &recordingSink{}
	m, err := New(device, sink, nil)
	require.NoError(t, err)

	// Tag 0x31, buttons 0x00 0x08, accelerometer at rest.
	var f wiimote.Frame
	copy(f[:], []byte{0x31, 0x00, 0x08, 0x80, 0x80, 0x9a})
	mock.QueueRead(f)

	require.NoError(t, m.Tick(context.Background()))
	assert.Equal(t, []string{"mouse left down"}, sink.take())
	assert.True(t, m.trackers[ProfileMouse].Active(ControlA))
}

func TestEndToEnd_RunUntilHome(t *testing.T) {
	t.Parallel()

	device, mock := openDevice(t)
	sink := &recordingSink{}
	m, err := New(device, sink, nil)
	require.NoError(t, err)

	rest := wiimote.AxisSample{X: 0x80, Y: 0x80, Z: 0x9a}
	mock.QueueReport(wiimote.InputReport{Mode: wiimote.ReportModeButtonsAccel, Accel: rest})
	mock.QueueReport(wiimote.InputReport{
		Mode: wiimote.ReportModeButtonsAccel, Accel: rest,
		Buttons: wiimote.ButtonState{A: true},
	})
	for range 3 {
		mock.QueueReport(wiimote.InputReport{
			Mode: wiimote.ReportModeButtonsAccel, Accel: rest,
			Buttons: wiimote.ButtonState{A: true, Home: true},
		})
	}

	require.NoError(t, m.Run(context.Background()))
	assert.True(t, m.Disconnected())

	// Home ends the loop on the first frame carrying it; A is released on
	// the way out.
	assert.Equal(t, []string{"mouse left down", "mouse left up"}, sink.take())
	assert.Equal(t, 2, mock.Pending())

	assert.Equal(t, []wiimote.Command{
		wiimote.SetReportModeCommand{Mode: wiimote.ReportModeButtonsAccel, Continuous: true},
		wiimote.SetLEDsCommand{LEDs: wiimote.LEDOne},
		wiimote.SetReportModeCommand{Mode: wiimote.ReportModeButtons},
	}, mock.Commands())
	assert.Equal(t, wiimote.ReportModeButtons, device.ReportMode())
}

func TestEndToEnd_Simulator(t *testing.T) {
	t.Parallel()

	sim := testutil.NewVirtualWiimote()
	sim.AttachExtension(false)
	device, err := wiimote.Open(context.Background(), simTransport{sim})
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.InitialProfile = ProfileFPS
	sink := &recordingSink{}
	m, err := New(device, sink, cfg)
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))

	// The mode confirmation still carries the centered stick; streamed
	// reports carry the new state.
	sim.SetExtension(testutil.Extension{StickX: 0xe3, StickY: 0x80, AccelX: 0x80, AccelY: 0x80, AccelZ: 0xb3, Z: true})
	for range 3 {
		require.NoError(t, m.Tick(context.Background()))
	}
	assert.Equal(t, []string{"move 18,0", "down LeftShift", "move 18,0"}, sink.take())
	assert.Equal(t, byte(wiimote.LEDThree), sim.GetState().LEDs)
}

// simTransport adapts the simulator to wiimote.Transport.
type simTransport struct {
	*testutil.VirtualWiimote
}

func (simTransport) Type() wiimote.TransportType { return wiimote.TransportMock }
