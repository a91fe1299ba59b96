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

//go:build !prod

package wiimote

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZaparooProject/go-wiimote/internal/frame"
	testutil "github.com/ZaparooProject/go-wiimote/internal/testing"
)

// simTransport adapts the wire-level simulator to Transport. The simulator
// cannot name TransportType without an import cycle.
type simTransport struct {
	*testutil.VirtualWiimote
}

func (simTransport) Type() TransportType { return TransportMock }

// openSimDevice runs the handshake against a fresh simulator. setup runs
// before Open so tests can attach an extension or change calibration.
func openSimDevice(t *testing.T, setup func(v *testutil.VirtualWiimote), opts ...Option) (*Device, *testutil.VirtualWiimote) {
	t.Helper()
	sim := testutil.NewVirtualWiimote()
	if setup != nil {
		setup(sim)
	}
	device, err := Open(context.Background(), simTransport{sim}, opts...)
	require.NoError(t, err)
	return device, sim
}

// testMoteCalibration is zero 100, +1g 150 on every axis.
var testMoteCalibration = [7]byte{100, 100, 100, 0, 150, 150, 150}

// queueHandshake scripts a MockTransport with the replies of a successful
// handshake, with or without an extension.
func queueHandshake(m *MockTransport, extension bool, battery byte) {
	m.QueueReport(InputReport{Mode: ReportModeButtons})

	var flags StatusFlags
	if extension {
		flags = StatusFlags(frame.StatusExtension)
	}
	m.QueueReport(StatusReport{Flags: flags, BatteryRaw: battery})

	if extension {
		m.QueueReport(WriteAck{Report: frame.OpWriteData})
	}

	mote := ReadDataResponse{SizeMinusOne: 6, Address: 0x0016}
	copy(mote.Payload[:], testMoteCalibration[:])
	m.QueueReport(mote)

	if extension {
		ext := ReadDataResponse{SizeMinusOne: 13, Address: 0x0020}
		copy(ext.Payload[:], frame.EncryptBytes(testutil.DefaultExtensionCalibration[:]))
		m.QueueReport(ext)
	}
}

// openMockDevice completes a scripted handshake and clears the recorded
// handshake writes.
func openMockDevice(t *testing.T, extension bool) (*Device, *MockTransport) {
	t.Helper()
	mock := NewMockTransport()
	queueHandshake(mock, extension, 0xC8)
	device, err := Open(context.Background(), mock)
	require.NoError(t, err)
	require.Zero(t, mock.Pending())
	mock.ClearWrites()
	return device, mock
}
