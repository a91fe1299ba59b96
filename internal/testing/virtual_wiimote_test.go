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

package testing

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaparooProject/go-wiimote/internal/frame"
)

func command(op byte, args ...byte) frame.Frame {
	var f frame.Frame
	f[0] = op
	copy(f[1:], args)
	return f
}

func readCommand(addr uint32, size uint16) frame.Frame {
	f := command(frame.OpReadData)
	binary.BigEndian.PutUint32(f[1:5], addr)
	binary.BigEndian.PutUint16(f[5:7], size)
	return f
}

func TestVirtualWiimote_ModeChangeIsConfirmed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v := NewVirtualWiimote()
	v.SetButtons(0x0008)

	require.NoError(t, v.WriteFrame(ctx, command(frame.OpReportMode, 0x00, frame.ReportButtons)))

	f, err := v.ReadFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(frame.ReportButtons), f[0])
	assert.Equal(t, []byte{0x00, 0x08}, f[1:3])

	_, err = v.ReadFrame(ctx)
	require.ErrorIs(t, err, ErrNoReport)
}

func TestVirtualWiimote_ConfirmWithMode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v := NewVirtualWiimote()
	v.ConfirmWithMode(frame.ReportButtonsAccel)

	require.NoError(t, v.WriteFrame(ctx, command(frame.OpReportMode, 0x00, frame.ReportButtons)))
	f, err := v.ReadFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(frame.ReportButtonsAccel), f[0])
}

func TestVirtualWiimote_StatusReport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v := NewVirtualWiimote()
	v.SetBattery(176)
	v.AttachExtension(false)
	require.NoError(t, v.WriteFrame(ctx, command(frame.OpLEDs, 0x10)))

	require.NoError(t, v.WriteFrame(ctx, command(frame.OpStatus, 0x00)))
	f, err := v.ReadFrame(ctx)
	require.NoError(t, err)

	assert.Equal(t, byte(frame.ReportStatus), f[0])
	assert.Equal(t, byte(0x12), f[frame.OffsetStatusFlag])
	assert.Equal(t, byte(176), f[frame.OffsetBattery])
}

func TestVirtualWiimote_ExtensionEnableAndCalibration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v := NewVirtualWiimote()
	v.AttachExtension(false)

	// Before enabling, the extension block is unreadable.
	require.NoError(t, v.WriteFrame(ctx, readCommand(frame.AddrExtensionCal, frame.ExtensionCalibrationSize)))
	f, err := v.ReadFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(ReadErrBadAddress), f[3]&0x0F)

	w := command(frame.OpWriteData)
	binary.BigEndian.PutUint32(w[1:5], frame.AddrExtensionEnable)
	w[5] = 1
	require.NoError(t, v.WriteFrame(ctx, w))
	ack, err := v.ReadFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(frame.ReportWriteAck), ack[0])
	assert.Equal(t, byte(frame.OpWriteData), ack[3])
	assert.True(t, v.GetState().ExtEnabled)

	require.NoError(t, v.WriteFrame(ctx, readCommand(frame.AddrExtensionCal, frame.ExtensionCalibrationSize)))
	f, err = v.ReadFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(frame.ReportReadData), f[0])
	assert.Equal(t, byte(0xD0), f[3], "size-1 = 13, no error")
	assert.Equal(t, uint16(0x0020), binary.BigEndian.Uint16(f[4:6]))
	assert.Equal(t, DefaultExtensionCalibration[:], frame.DecryptBytes(f[6:20]))
}

func TestVirtualWiimote_MoteCalibration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v := NewVirtualWiimote()
	v.SkewReadResponses(0x0100, 0)

	require.NoError(t, v.WriteFrame(ctx, readCommand(frame.AddrMoteCalibration, frame.MoteCalibrationSize)))
	f, err := v.ReadFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(0x60), f[3])
	assert.Equal(t, uint16(0x0116), binary.BigEndian.Uint16(f[4:6]))
	assert.Equal(t, DefaultMoteCalibration[:], f[6:13])
}

func TestVirtualWiimote_Streaming(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v := NewVirtualWiimote()
	v.AttachExtension(false)
	w := command(frame.OpWriteData)
	binary.BigEndian.PutUint32(w[1:5], frame.AddrExtensionEnable)
	require.NoError(t, v.WriteFrame(ctx, w))
	_, err := v.ReadFrame(ctx)
	require.NoError(t, err)

	v.SetAccel(1, 2, 3)
	v.SetExtension(Extension{StickX: 0x10, StickY: 0x20, AccelX: 4, AccelY: 5, AccelZ: 6, Z: true})
	require.NoError(t, v.WriteFrame(ctx, command(frame.OpReportMode, frame.ContinuousBit, frame.ReportButtonsAccelExt)))

	for range 3 {
		f, err := v.ReadFrame(ctx)
		require.NoError(t, err)
		assert.Equal(t, byte(frame.ReportButtonsAccelExt), f[0])
		assert.Equal(t, []byte{1, 2, 3}, f[3:6])
		ext := frame.DecryptBytes(f[6:17])
		assert.Equal(t, []byte{0x10, 0x20, 4, 5, 6, frame.ExtensionButtonC}, ext[:6])
	}
	assert.True(t, v.GetState().Continuous)
}

func TestVirtualWiimote_DetachQueuesStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v := NewVirtualWiimote()
	v.AttachExtension(true)
	v.DetachExtension()

	f, err := v.ReadFrame(ctx)
	require.NoError(t, err)
	assert.Equal(t, byte(frame.StatusExtension), f[frame.OffsetStatusFlag]&frame.StatusExtension)
	f, err = v.ReadFrame(ctx)
	require.NoError(t, err)
	assert.Zero(t, f[frame.OffsetStatusFlag]&frame.StatusExtension)
}

func TestVirtualWiimote_InjectedErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	v := NewVirtualWiimote()
	boom := errors.New("boom")

	v.FailNextReads(boom)
	_, err := v.ReadFrame(ctx)
	require.ErrorIs(t, err, boom)

	v.FailWrites(boom)
	require.ErrorIs(t, v.WriteFrame(ctx, command(frame.OpStatus)), boom)
	v.FailWrites(nil)
	require.NoError(t, v.WriteFrame(ctx, command(frame.OpStatus)))
	assert.Len(t, v.Received(), 1)

	require.NoError(t, v.Close())
	_, err = v.ReadFrame(ctx)
	require.ErrorIs(t, err, ErrClosed)
}

func TestVirtualWiimote_ByteStream(t *testing.T) {
	t.Parallel()
	v := NewVirtualWiimote()
	out := command(frame.OpStatus)

	// Split the command across writes.
	n, err := v.Write(out[:5])
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.False(t, v.HasPendingResponse())
	_, err = v.Write(out[5:])
	require.NoError(t, err)
	require.True(t, v.HasPendingResponse())

	buf := make([]byte, 64)
	n, err = v.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, frame.Size, n)
	assert.Equal(t, byte(frame.ReportStatus), buf[0])
}

func TestJitteryConnection_DeliversEverything(t *testing.T) {
	t.Parallel()
	v := NewVirtualWiimote()
	conn := NewJitteryConnection(v, JitterConfig{FragmentReads: true, FragmentMinBytes: 1, Seed: 42})

	out := command(frame.OpStatus)
	_, err := conn.Write(out[:])
	require.NoError(t, err)
	_, err = conn.Write(out[:])
	require.NoError(t, err)

	var got []byte
	buf := make([]byte, frame.Size)
	for len(got) < 2*frame.Size {
		n, err := conn.Read(buf)
		require.NoError(t, err)
		require.NotZero(t, n)
		got = append(got, buf[:n]...)
	}
	assert.Equal(t, byte(frame.ReportStatus), got[0])
	assert.Equal(t, byte(frame.ReportStatus), got[frame.Size])
	assert.Zero(t, conn.Buffered())
}
