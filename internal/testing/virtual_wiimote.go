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

// Package testing provides a wire-level Wiimote simulator for tests.
//
// VirtualWiimote answers output reports the way a real controller does:
// a report mode change is confirmed by a report in the new mode, a status
// request by a 0x20 report, a memory write by a 0x22 ack and a memory read
// by 0x21 reports. Once a continuous mode is selected it streams the
// current input report whenever no other report is pending.
//
// It deliberately does not import the wiimote package: frames are built
// from raw offsets so tests cross-check the codec against an independent
// encoder.
package testing

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-wiimote/internal/frame"
	"github.com/ZaparooProject/go-wiimote/internal/syncutil"
)

// ErrNoReport is returned by ReadFrame when nothing is pending and the
// device is not streaming.
var ErrNoReport = errors.New("virtual wiimote: no report pending")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("virtual wiimote: closed")

// Read error codes carried in the low nibble of byte 3 of a 0x21 report.
const (
	ReadErrNone       = 0x00
	ReadErrBadAddress = 0x07
	ReadErrWriteOnly  = 0x08
)

// DefaultMoteCalibration is the 7-byte block served from 0x0016: zero
// 0x80 on every axis, +1g at 0x9a.
var DefaultMoteCalibration = [frame.MoteCalibrationSize]byte{0x80, 0x80, 0x80, 0x00, 0x9a, 0x9a, 0x9a}

// DefaultExtensionCalibration is the plain (unobfuscated) 14-byte block
// served from 0x04a40020: accelerometer zero 0x80, +1g 0xb3, stick X
// 0x1c..0xe3 centered at 0x80, stick Y 0x1c..0xe3 centered at 0x80.
var DefaultExtensionCalibration = [frame.ExtensionCalibrationSize]byte{
	0x80, 0x80, 0x80, 0x00,
	0xb3, 0xb3, 0xb3, 0x00,
	0xe3, 0x1c, 0x80,
	0xe3, 0x1c, 0x80,
}

// Extension is the plain state of an attached extension.
type Extension struct {
	StickX, StickY byte
	AccelX, AccelY byte
	AccelZ         byte
	C, Z           bool
}

// VirtualWiimote simulates one controller. It is safe for concurrent use.
type VirtualWiimote struct {
	readErrs       []error
	writeErr       error
	pending        []frame.Frame
	received       []frame.Frame
	stream         []byte
	extension      Extension
	extCalibration [frame.ExtensionCalibrationSize]byte
	moteCal        [frame.MoteCalibrationSize]byte
	mu             syncutil.Mutex
	accel          [3]byte
	buttons        uint16
	mode           byte
	leds           byte
	battery        byte
	confirmMode    byte
	readAddrSkew   uint16
	readSizeSkew   byte
	continuous     bool
	rumble         bool
	extAttached    bool
	extEnabled     bool
	closed         bool
}

// NewVirtualWiimote creates a controller in buttons-only mode with a full
// battery and no extension.
func NewVirtualWiimote() *VirtualWiimote {
	return &VirtualWiimote{
		mode:           frame.ReportButtons,
		battery:        0xC8,
		moteCal:        DefaultMoteCalibration,
		extCalibration: DefaultExtensionCalibration,
		accel:          [3]byte{0x80, 0x80, 0x9a},
		extension:      Extension{StickX: 0x80, StickY: 0x80, AccelX: 0x80, AccelY: 0x80, AccelZ: 0xb3},
	}
}

// ReadFrame returns the next pending report, or the current input report
// when streaming.
func (v *VirtualWiimote) ReadFrame(ctx context.Context) (frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return frame.Frame{}, fmt.Errorf("read cancelled: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return frame.Frame{}, ErrClosed
	}
	if len(v.readErrs) > 0 {
		err := v.readErrs[0]
		v.readErrs = v.readErrs[1:]
		return frame.Frame{}, err
	}
	if len(v.pending) > 0 {
		f := v.pending[0]
		v.pending = v.pending[1:]
		return f, nil
	}
	if v.continuous && v.mode != frame.ReportButtons {
		return v.inputReport(v.mode), nil
	}
	return frame.Frame{}, ErrNoReport
}

// WriteFrame receives one output report and queues the device's answer.
func (v *VirtualWiimote) WriteFrame(ctx context.Context, f frame.Frame) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write cancelled: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return ErrClosed
	}
	if v.writeErr != nil {
		return v.writeErr
	}
	v.received = append(v.received, f)
	v.handle(f)
	return nil
}

// Write implements io.Writer for byte-stream bridge tests. Every complete
// 22-byte chunk is handled as one output report.
func (v *VirtualWiimote) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return 0, ErrClosed
	}
	if v.writeErr != nil {
		return 0, v.writeErr
	}

	v.stream = append(v.stream, p...)
	for len(v.stream) >= frame.Size {
		var f frame.Frame
		copy(f[:], v.stream[:frame.Size])
		v.stream = v.stream[frame.Size:]
		v.received = append(v.received, f)
		v.handle(f)
	}
	return len(p), nil
}

// Read implements io.Reader for byte-stream bridge tests. It returns whole
// pending reports only and 0 bytes when none is pending.
func (v *VirtualWiimote) Read(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return 0, ErrClosed
	}
	n := 0
	for len(v.pending) > 0 && len(p)-n >= frame.Size {
		copy(p[n:], v.pending[0][:])
		v.pending = v.pending[1:]
		n += frame.Size
	}
	return n, nil
}

// Close makes every further call fail with ErrClosed.
func (v *VirtualWiimote) Close() error {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	return nil
}

func (v *VirtualWiimote) handle(f frame.Frame) {
	// Bit 0 of byte 1 is the rumble flag on every output report.
	switch f[0] {
	case frame.OpReportMode:
		v.rumble = f[1]&frame.RumbleBit != 0
		v.continuous = f[1]&frame.ContinuousBit != 0
		v.mode = f[2]
		confirm := v.mode
		if v.confirmMode != 0 {
			confirm = v.confirmMode
		}
		v.pending = append(v.pending, v.inputReport(confirm))
	case frame.OpStatus:
		v.rumble = f[1]&frame.RumbleBit != 0
		v.pending = append(v.pending, v.statusReport())
	case frame.OpLEDs:
		v.rumble = f[1]&frame.RumbleBit != 0
		v.leds = f[1] & frame.StatusLEDMask
	case frame.OpRumble:
		v.rumble = f[1]&frame.RumbleBit != 0
	case frame.OpWriteData:
		v.handleWrite(f)
	case frame.OpReadData:
		v.handleRead(f)
	}
}

func (v *VirtualWiimote) handleWrite(f frame.Frame) {
	addr := binary.BigEndian.Uint32(f[1:5])
	if addr&^0x01000000 == frame.AddrExtensionEnable && f[6] == 0x00 && v.extAttached {
		v.extEnabled = true
	}
	var ack frame.Frame
	ack[0] = frame.ReportWriteAck
	v.putButtons(&ack)
	ack[3] = frame.OpWriteData
	v.pending = append(v.pending, ack)
}

func (v *VirtualWiimote) handleRead(f frame.Frame) {
	addr := binary.BigEndian.Uint32(f[1:5]) &^ 0x01000000
	size := int(binary.BigEndian.Uint16(f[5:7]))

	var data []byte
	errCode := byte(ReadErrNone)
	switch {
	case addr == frame.AddrMoteCalibration:
		data = v.moteCal[:]
	case addr == frame.AddrExtensionCal && v.extEnabled:
		data = frame.EncryptBytes(v.extCalibration[:])
	default:
		errCode = ReadErrBadAddress
	}
	if size > len(data) {
		size = len(data)
	}

	var r frame.Frame
	r[0] = frame.ReportReadData
	v.putButtons(&r)
	sizeMinusOne := byte(0)
	if size > 0 {
		sizeMinusOne = byte(size-1) + v.readSizeSkew
	}
	r[3] = errCode&0x0F | (sizeMinusOne&0x0F)<<4
	binary.BigEndian.PutUint16(r[4:6], uint16(addr)+v.readAddrSkew)
	copy(r[6:], data[:size])
	v.pending = append(v.pending, r)
}

func (v *VirtualWiimote) statusReport() frame.Frame {
	var f frame.Frame
	f[0] = frame.ReportStatus
	v.putButtons(&f)
	flags := v.leds & frame.StatusLEDMask
	if v.extAttached {
		flags |= frame.StatusExtension
	}
	if v.continuous {
		flags |= frame.StatusContinuous
	}
	f[frame.OffsetStatusFlag] = flags
	f[frame.OffsetBattery] = v.battery
	return f
}

func (v *VirtualWiimote) inputReport(mode byte) frame.Frame {
	var f frame.Frame
	f[0] = mode
	v.putButtons(&f)
	if mode == frame.ReportButtonsAccel || mode == frame.ReportButtonsAccelExt {
		copy(f[frame.OffsetAccel:], v.accel[:])
	}
	if mode == frame.ReportButtonsAccelExt {
		var ext [frame.ExtensionLength]byte
		// C and Z are active low.
		ext[5] = frame.ExtensionButtonZ | frame.ExtensionButtonC
		if v.extAttached && v.extEnabled {
			e := v.extension
			ext[0], ext[1] = e.StickX, e.StickY
			ext[2], ext[3], ext[4] = e.AccelX, e.AccelY, e.AccelZ
			if e.Z {
				ext[5] &^= frame.ExtensionButtonZ
			}
			if e.C {
				ext[5] &^= frame.ExtensionButtonC
			}
		}
		copy(f[frame.OffsetExtension:], frame.EncryptBytes(ext[:]))
	}
	return f
}

func (v *VirtualWiimote) putButtons(f *frame.Frame) {
	binary.BigEndian.PutUint16(f[frame.OffsetButtons:], v.buttons)
}

// SetButtons sets the raw 16-bit button word.
func (v *VirtualWiimote) SetButtons(mask uint16) {
	v.mu.Lock()
	v.buttons = mask
	v.mu.Unlock()
}

// SetAccel sets the raw accelerometer reading.
func (v *VirtualWiimote) SetAccel(x, y, z byte) {
	v.mu.Lock()
	v.accel = [3]byte{x, y, z}
	v.mu.Unlock()
}

// SetExtension sets the plain extension state.
func (v *VirtualWiimote) SetExtension(e Extension) {
	v.mu.Lock()
	v.extension = e
	v.mu.Unlock()
}

// SetBattery sets the raw battery level (0-200).
func (v *VirtualWiimote) SetBattery(raw byte) {
	v.mu.Lock()
	v.battery = raw
	v.mu.Unlock()
}

// AttachExtension plugs an extension in. When announce is set an
// unsolicited status report is queued, as the real device does.
func (v *VirtualWiimote) AttachExtension(announce bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.extAttached = true
	if announce {
		v.pending = append(v.pending, v.statusReport())
	}
}

// DetachExtension unplugs the extension and queues a status report.
func (v *VirtualWiimote) DetachExtension() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.extAttached = false
	v.extEnabled = false
	v.pending = append(v.pending, v.statusReport())
}

// SetMoteCalibration replaces the block served from 0x0016.
func (v *VirtualWiimote) SetMoteCalibration(cal [frame.MoteCalibrationSize]byte) {
	v.mu.Lock()
	v.moteCal = cal
	v.mu.Unlock()
}

// SetExtensionCalibration replaces the plain block served from 0x04a40020.
func (v *VirtualWiimote) SetExtensionCalibration(cal [frame.ExtensionCalibrationSize]byte) {
	v.mu.Lock()
	v.extCalibration = cal
	v.mu.Unlock()
}

// ConfirmWithMode makes report mode changes answered with mode instead of
// the requested one. Zero restores normal behavior.
func (v *VirtualWiimote) ConfirmWithMode(mode byte) {
	v.mu.Lock()
	v.confirmMode = mode
	v.mu.Unlock()
}

// SkewReadResponses corrupts the echoed address and size nibble of every
// read response.
func (v *VirtualWiimote) SkewReadResponses(addr uint16, size byte) {
	v.mu.Lock()
	v.readAddrSkew = addr
	v.readSizeSkew = size
	v.mu.Unlock()
}

// QueueFrame appends an arbitrary frame to the pending reports.
func (v *VirtualWiimote) QueueFrame(f frame.Frame) {
	v.mu.Lock()
	v.pending = append(v.pending, f)
	v.mu.Unlock()
}

// FailNextReads makes the next len(errs) reads fail in order.
func (v *VirtualWiimote) FailNextReads(errs ...error) {
	v.mu.Lock()
	v.readErrs = append(v.readErrs, errs...)
	v.mu.Unlock()
}

// FailWrites makes every write fail with err. Nil clears it.
func (v *VirtualWiimote) FailWrites(err error) {
	v.mu.Lock()
	v.writeErr = err
	v.mu.Unlock()
}

// State is a snapshot of what the host has configured.
type State struct {
	Mode       byte
	LEDs       byte
	Continuous bool
	Rumble     bool
	ExtEnabled bool
}

// GetState returns the current simulator state.
func (v *VirtualWiimote) GetState() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return State{
		Mode:       v.mode,
		LEDs:       v.leds,
		Continuous: v.continuous,
		Rumble:     v.rumble,
		ExtEnabled: v.extEnabled,
	}
}

// Received returns every output report written so far.
func (v *VirtualWiimote) Received() []frame.Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]frame.Frame(nil), v.received...)
}

// HasPendingResponse returns true if a report is waiting to be read.
func (v *VirtualWiimote) HasPendingResponse() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.pending) > 0
}
