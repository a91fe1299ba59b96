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
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaparooProject/go-wiimote/internal/frame"
	testutil "github.com/ZaparooProject/go-wiimote/internal/testing"
)

func recordStates(states *[]HandshakeState) Option {
	return WithStateHook(func(_, to HandshakeState) {
		*states = append(*states, to)
	})
}

func TestOpen_WithoutExtension(t *testing.T) {
	t.Parallel()

	var states []HandshakeState
	device, sim := openSimDevice(t, func(v *testutil.VirtualWiimote) {
		v.SetBattery(176)
		v.SetMoteCalibration(testMoteCalibration)
	}, recordStates(&states))

	assert.Equal(t, []HandshakeState{
		HandshakeAwaitModeConfirm,
		HandshakeRequestStatus,
		HandshakeAwaitStatus,
		HandshakeRequestMoteCalibration,
		HandshakeAwaitMoteCalibration,
		HandshakeReady,
	}, states)
	assert.Equal(t, HandshakeReady, device.HandshakeState())
	assert.Equal(t, ExtensionStatus{Connected: false, BatteryPercent: 88}, device.ExtensionStatus())

	mote, ok := device.Calibration().Mote()
	require.True(t, ok)
	assert.Equal(t, CalibrationData{Zero: AxisSample{100, 100, 100}, Scale: AxisSample{150, 150, 150}}, mote)
	_, ok = device.Calibration().Extension()
	assert.False(t, ok)
	assert.True(t, device.Calibration().Sealed())

	// One request per state, in order.
	sent := sim.Received()
	require.Len(t, sent, 3)
	assert.Equal(t, byte(frame.OpReportMode), sent[0][0])
	assert.Equal(t, byte(frame.ReportButtons), sent[0][2])
	assert.Equal(t, byte(frame.OpStatus), sent[1][0])
	assert.Equal(t, byte(frame.OpReadData), sent[2][0])
}

func TestOpen_WithExtension(t *testing.T) {
	t.Parallel()

	var states []HandshakeState
	device, sim := openSimDevice(t, func(v *testutil.VirtualWiimote) {
		v.AttachExtension(false)
	}, recordStates(&states))

	assert.Equal(t, []HandshakeState{
		HandshakeAwaitModeConfirm,
		HandshakeRequestStatus,
		HandshakeAwaitStatus,
		HandshakeEnableExtension,
		HandshakeAwaitEnableAck,
		HandshakeRequestMoteCalibration,
		HandshakeAwaitMoteCalibration,
		HandshakeRequestExtCalibration,
		HandshakeAwaitExtCalibration,
		HandshakeReady,
	}, states)
	assert.True(t, device.ExtensionStatus().Connected)
	assert.True(t, sim.GetState().ExtEnabled)

	ext, ok := device.Calibration().Extension()
	require.True(t, ok)
	assert.Equal(t, AxisSample{0x80, 0x80, 0x80}, ext.Accel.Zero)
	assert.Equal(t, AxisSample{0xb3, 0xb3, 0xb3}, ext.Accel.Scale)
	assert.Equal(t, StickSample{0xe3, 0xe3}, ext.Stick.Max)
	assert.Equal(t, StickSample{0x1c, 0x1c}, ext.Stick.Min)
	assert.Equal(t, StickSample{0x80, 0x80}, ext.Stick.Center)

	sent := sim.Received()
	require.Len(t, sent, 5)
	enable, err := DecodeCommand(sent[2])
	require.NoError(t, err)
	assert.Equal(t, WriteDataCommand{Address: 0x04A40040, Data: []byte{0x00}}, enable)
	read, err := DecodeCommand(sent[4])
	require.NoError(t, err)
	assert.Equal(t, ReadDataCommand{Address: 0x04A40020, Size: 14}, read)
}

func TestOpen_ModeConfirmationMismatch(t *testing.T) {
	t.Parallel()

	sim := testutil.NewVirtualWiimote()
	sim.ConfirmWithMode(frame.ReportButtonsAccel)

	var states []HandshakeState
	device, err := Open(context.Background(), simTransport{sim}, recordStates(&states))
	require.Error(t, err)
	assert.Nil(t, device)

	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, HandshakeAwaitModeConfirm, initErr.State)
	assert.Equal(t, "mode confirmation mismatch", initErr.Reason)
	require.ErrorIs(t, err, ErrProtocolMismatch)
	assert.Equal(t, HandshakeInitFailed, states[len(states)-1])

	// No retry: nothing beyond the mode request was sent.
	assert.Len(t, sim.Received(), 1)
}

func TestOpen_ModeConfirmationWrongReport(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.QueueReport(StatusReport{})

	_, err := Open(context.Background(), mock)
	require.ErrorIs(t, err, ErrProtocolMismatch)
}

func TestOpen_MoteCalibrationAddressMismatch(t *testing.T) {
	t.Parallel()

	sim := testutil.NewVirtualWiimote()
	sim.SkewReadResponses(0x0002, 0)

	_, err := Open(context.Background(), simTransport{sim})
	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, HandshakeAwaitMoteCalibration, initErr.State)
	require.ErrorIs(t, err, ErrProtocolMismatch)
}

func TestOpen_ExtensionCalibrationSizeMismatch(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.QueueReport(
		InputReport{Mode: ReportModeButtons},
		StatusReport{Flags: StatusFlags(frame.StatusExtension)},
		WriteAck{},
	)
	mote := ReadDataResponse{SizeMinusOne: 6, Address: 0x0016}
	copy(mote.Payload[:], testMoteCalibration[:])
	mock.QueueReport(mote, ReadDataResponse{SizeMinusOne: 12, Address: 0x0020})

	_, err := Open(context.Background(), mock)
	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, HandshakeAwaitExtCalibration, initErr.State)
	assert.Equal(t, "extension calibration mismatch", initErr.Reason)
}

func TestOpen_ReadErrorFlagRejected(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.QueueReport(
		InputReport{Mode: ReportModeButtons},
		StatusReport{},
		ReadDataResponse{Error: testutil.ReadErrBadAddress, SizeMinusOne: 6, Address: 0x0016},
	)

	_, err := Open(context.Background(), mock)
	require.ErrorIs(t, err, ErrProtocolMismatch)
}

func TestOpen_TransportFailureCollapses(t *testing.T) {
	t.Parallel()

	t.Run("read", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		mock.QueueReport(InputReport{Mode: ReportModeButtons})
		mock.QueueReadError(errors.New("link lost"))

		device, err := Open(context.Background(), mock)
		assert.Nil(t, device)
		var initErr *InitError
		require.ErrorAs(t, err, &initErr)
		assert.Equal(t, HandshakeAwaitStatus, initErr.State)
		assert.True(t, IsTransportError(err))
		require.ErrorIs(t, err, ErrTransportRead)
		assert.False(t, mock.IsClosed(), "Open leaves the transport to the caller")
	})

	t.Run("write", func(t *testing.T) {
		t.Parallel()
		mock := NewMockTransport()
		mock.SetWriteError(errors.New("broken pipe"))

		_, err := Open(context.Background(), mock)
		var initErr *InitError
		require.ErrorAs(t, err, &initErr)
		assert.Equal(t, HandshakeSetDefaultMode, initErr.State)
		require.ErrorIs(t, err, ErrTransportWrite)
	})
}

func TestOpen_NonStatusReplyAssumesNoExtension(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.QueueReport(InputReport{Mode: ReportModeButtons}, InputReport{Mode: ReportModeButtons})
	mote := ReadDataResponse{SizeMinusOne: 6, Address: 0x0016}
	copy(mote.Payload[:], testMoteCalibration[:])
	mock.QueueReport(mote)

	device, err := Open(context.Background(), mock)
	require.NoError(t, err)
	assert.False(t, device.ExtensionStatus().Connected)
	assert.Equal(t, uint64(1), device.Metrics().Ignored)
}

func TestOpen_EnableAckNotValidated(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	queueHandshake(mock, true, 100)

	device, err := Open(context.Background(), mock)
	require.NoError(t, err)
	assert.Equal(t, 50, device.ExtensionStatus().BatteryPercent)

	// Replace the ack with an arbitrary report: still accepted.
	mock = NewMockTransport()
	mock.QueueReport(InputReport{Mode: ReportModeButtons}, StatusReport{Flags: StatusFlags(frame.StatusExtension)})
	mock.QueueReport(Unrecognized{Tag: 0x3d, Raw: Frame{0x3d}})
	mote := ReadDataResponse{SizeMinusOne: 6, Address: 0x0016}
	copy(mote.Payload[:], testMoteCalibration[:])
	ext := ReadDataResponse{SizeMinusOne: 13, Address: 0x0020}
	copy(ext.Payload[:], frame.EncryptBytes(testutil.DefaultExtensionCalibration[:]))
	mock.QueueReport(mote, ext)

	_, err = Open(context.Background(), mock)
	require.NoError(t, err)
}

func TestOpen_HandshakeTimeout(t *testing.T) {
	t.Parallel()

	stall := &stallTransport{MockTransport: NewMockTransport()}
	start := time.Now()
	_, err := Open(context.Background(), stall, WithHandshakeTimeout(20*time.Millisecond))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestOpen_OptionErrors(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = Open(context.Background(), NewMockTransport(), WithHandshakeTimeout(-time.Second))
	require.ErrorIs(t, err, ErrInvalidParameter)

	_, err = Open(context.Background(), NewMockTransport(), WithConfig(nil))
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestHandshakeState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SetDefaultMode", HandshakeSetDefaultMode.String())
	assert.Equal(t, "AwaitExtCalibration", HandshakeAwaitExtCalibration.String())
	assert.Equal(t, "InitFailed", HandshakeInitFailed.String())
	assert.Equal(t, "HandshakeState(42)", HandshakeState(42).String())
	assert.True(t, HandshakeReady.Terminal())
	assert.False(t, HandshakeAwaitStatus.Terminal())
}

// stallTransport blocks every read until the context is done.
type stallTransport struct {
	*MockTransport
}

func (*stallTransport) ReadFrame(ctx context.Context) (Frame, error) {
	<-ctx.Done()
	return Frame{}, NewTransportReadError("ReadFrame", "stall", ctx.Err())
}
