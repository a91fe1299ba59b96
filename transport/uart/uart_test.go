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


package uart

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wiimote "github.com/ZaparooProject/go-wiimote"
	"github.com/ZaparooProject/go-wiimote/detection"
	"github.com/ZaparooProject/go-wiimote/internal/frame"
	testutil "github.com/ZaparooProject/go-wiimote/internal/testing"
)

// fakePort adapts an io.ReadWriter to the port interface.
type fakePort struct {
	io.ReadWriter
	drainErrs []error
	drains    int
	resets    int
	closed    bool
}

func (*fakePort) SetReadTimeout(time.Duration) error { return nil }

func (p *fakePort) Drain() error {
	p.drains++
	if len(p.drainErrs) > 0 {
		err := p.drainErrs[0]
		p.drainErrs = p.drainErrs[1:]
		return err
	}
	return nil
}

func (p *fakePort) ResetInputBuffer() error {
	p.resets++
	return nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

// stream is a byte pipe whose reads return 0 bytes when empty, the way a
// serial port behaves at its read timeout.
type stream struct {
	readErr error
	in      []byte
	out     []byte
}

func (s *stream) Read(p []byte) (int, error) {
	if s.readErr != nil {
		return 0, s.readErr
	}
	n := copy(p, s.in)
	s.in = s.in[n:]
	return n, nil
}

func (s *stream) Write(p []byte) (int, error) {
	s.out = append(s.out, p...)
	return len(p), nil
}

func newStreamTransport(in ...byte) (*Transport, *stream, *fakePort) {
	s := &stream{in: in}
	p := &fakePort{ReadWriter: s}
	return newTransport(p, "/dev/ttyTEST", 20*time.Millisecond), s, p
}

func inputFrame(mask uint16) []byte {
	f := make([]byte, frame.Size)
	f[0] = frame.ReportButtonsAccel
	f[1] = byte(mask >> 8)
	f[2] = byte(mask)
	f[3], f[4], f[5] = 0x80, 0x80, 0x9a
	return f
}

func TestTransport_HandshakeOverJitteryBridge(t *testing.T) {
	t.Parallel()

	sim := testutil.NewVirtualWiimote()
	sim.AttachExtension(false)
	conn := testutil.NewJitteryConnection(sim, testutil.JitterConfig{
		FragmentReads:    true,
		FragmentMinBytes: 1,
		Seed:             7,
	})
	tr := newTransport(&fakePort{ReadWriter: conn}, "/dev/ttyTEST", 50*time.Millisecond)

	ctx := context.Background()
	dev, err := wiimote.Open(ctx, tr)
	require.NoError(t, err)
	assert.Equal(t, wiimote.HandshakeReady, dev.HandshakeState())
	assert.True(t, dev.ExtensionStatus().Connected)

	sim.SetButtons(wiimote.ButtonA)
	require.NoError(t, dev.StartStreaming(ctx))
	state, err := dev.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, wiimote.ReportModeButtonsAccelExt, state.Mode)
	assert.True(t, state.Buttons.A)
	assert.True(t, state.Extension.Connected)
	assert.Zero(t, tr.Dropped())
}

func TestTransport_ReassemblesFragments(t *testing.T) {
	t.Parallel()

	f := inputFrame(wiimote.ButtonB)
	tr, s, _ := newStreamTransport(f[:9]...)

	_, err := tr.ReadFrame(context.Background())
	require.Error(t, err)
	assert.False(t, wiimote.IsFatal(err))

	s.in = append(s.in, f[9:]...)
	got, err := tr.ReadFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f, got[:])
}

func TestTransport_ResyncsOnGarbage(t *testing.T) {
	t.Parallel()

	f := inputFrame(wiimote.ButtonHome)
	tr, _, _ := newStreamTransport(append([]byte{0x00, 0xFF, 0x12}, f...)...)

	got, err := tr.ReadFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f, got[:])
	assert.Equal(t, int64(3), tr.Dropped())
}

func TestTransport_BackToBackFrames(t *testing.T) {
	t.Parallel()

	a, b := inputFrame(wiimote.ButtonA), inputFrame(wiimote.ButtonB)
	tr, _, _ := newStreamTransport(append(a, b...)...)

	got, err := tr.ReadFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a, got[:])
	got, err = tr.ReadFrame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, b, got[:])
}

func TestTransport_ReadTimeout(t *testing.T) {
	t.Parallel()
	tr, _, _ := newStreamTransport()

	_, err := tr.ReadFrame(context.Background())
	var te *wiimote.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, wiimote.ErrorTypeTimeout, te.Type)
	require.ErrorIs(t, err, wiimote.ErrTransportTimeout)
}

func TestTransport_ReadError(t *testing.T) {
	t.Parallel()
	tr, s, _ := newStreamTransport()
	s.readErr = io.EOF

	_, err := tr.ReadFrame(context.Background())
	require.Error(t, err)
	assert.True(t, wiimote.IsFatal(err))
}

func TestTransport_ContextCancelled(t *testing.T) {
	t.Parallel()
	tr, _, _ := newStreamTransport()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tr.ReadFrame(ctx)
	require.ErrorIs(t, err, context.Canceled)
	err = tr.WriteFrame(ctx, wiimote.StatusRequestCommand{}.Encode())
	require.ErrorIs(t, err, context.Canceled)
}

func TestTransport_WriteFrame(t *testing.T) {
	t.Parallel()
	tr, s, p := newStreamTransport()

	cmd := wiimote.SetLEDsCommand{LEDs: wiimote.LEDTwo}.Encode()
	require.NoError(t, tr.WriteFrame(context.Background(), cmd))
	assert.Equal(t, cmd[:], s.out)
	assert.Equal(t, 1, p.drains)
}

func TestTransport_DrainRetriesInterrupted(t *testing.T) {
	t.Parallel()
	tr, _, p := newStreamTransport()
	p.drainErrs = []error{errors.New("interrupted system call"), errors.New("EINTR")}

	require.NoError(t, tr.WriteFrame(context.Background(), wiimote.StatusRequestCommand{}.Encode()))
	assert.Equal(t, 3, p.drains)

	p.drainErrs = []error{errors.New("input/output error")}
	err := tr.WriteFrame(context.Background(), wiimote.StatusRequestCommand{}.Encode())
	require.ErrorIs(t, err, wiimote.ErrTransportWrite)
}

func TestTransport_Close(t *testing.T) {
	t.Parallel()
	tr, _, p := newStreamTransport()

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	assert.True(t, p.closed)

	_, err := tr.ReadFrame(context.Background())
	require.ErrorIs(t, err, wiimote.ErrTransportClosed)
	err = tr.WriteFrame(context.Background(), wiimote.StatusRequestCommand{}.Encode())
	require.ErrorIs(t, err, wiimote.ErrTransportClosed)
	assert.Equal(t, wiimote.TransportUART, tr.Type())
}

func TestOptions(t *testing.T) {
	t.Parallel()

	_, err := New("/dev/ttyNONE", WithBaudRate(0))
	require.ErrorIs(t, err, wiimote.ErrInvalidParameter)
	_, err = New("/dev/ttyNONE", WithFrameTimeout(-time.Second))
	require.ErrorIs(t, err, wiimote.ErrInvalidParameter)
	_, err = NewFromDevice(detection.DeviceInfo{Transport: "hidraw", Path: "/dev/hidraw0"})
	require.ErrorIs(t, err, wiimote.ErrInvalidParameter)
}

func TestIsInterruptedSystemCall(t *testing.T) {
	t.Parallel()

	assert.False(t, isInterruptedSystemCall(nil))
	assert.True(t, isInterruptedSystemCall(errors.New("read: Interrupted System Call")))
	assert.True(t, isInterruptedSystemCall(errors.New("eintr")))
	assert.False(t, isInterruptedSystemCall(errors.New("timeout")))
}
