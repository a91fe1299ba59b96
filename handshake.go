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
	"fmt"

	"github.com/ZaparooProject/go-wiimote/internal/frame"
)

// HandshakeState is a step of the initialization handshake. Each Request
// state writes one command and each Await state reads exactly one frame.
type HandshakeState int

// Handshake states, in order
const (
	HandshakeSetDefaultMode HandshakeState = iota
	HandshakeAwaitModeConfirm
	HandshakeRequestStatus
	HandshakeAwaitStatus
	HandshakeEnableExtension
	HandshakeAwaitEnableAck
	HandshakeRequestMoteCalibration
	HandshakeAwaitMoteCalibration
	HandshakeRequestExtCalibration
	HandshakeAwaitExtCalibration
	HandshakeReady
	HandshakeInitFailed
)

var handshakeStateNames = [...]string{
	HandshakeSetDefaultMode:         "SetDefaultMode",
	HandshakeAwaitModeConfirm:       "AwaitModeConfirm",
	HandshakeRequestStatus:          "RequestStatus",
	HandshakeAwaitStatus:            "AwaitStatus",
	HandshakeEnableExtension:        "EnableExtension",
	HandshakeAwaitEnableAck:         "AwaitEnableAck",
	HandshakeRequestMoteCalibration: "RequestMoteCalibration",
	HandshakeAwaitMoteCalibration:   "AwaitMoteCalibration",
	HandshakeRequestExtCalibration:  "RequestExtCalibration",
	HandshakeAwaitExtCalibration:    "AwaitExtCalibration",
	HandshakeReady:                  "Ready",
	HandshakeInitFailed:             "InitFailed",
}

func (s HandshakeState) String() string {
	if s >= 0 && int(s) < len(handshakeStateNames) {
		return handshakeStateNames[s]
	}
	return fmt.Sprintf("HandshakeState(%d)", int(s))
}

// Terminal reports whether no further transition is possible.
func (s HandshakeState) Terminal() bool {
	return s == HandshakeReady || s == HandshakeInitFailed
}

// Handshake failure reasons
const (
	reasonModeMismatch    = "mode confirmation mismatch"
	reasonMoteCalMismatch = "mote calibration address mismatch"
	reasonExtCalMismatch  = "extension calibration mismatch"
	reasonTransport       = "transport failure"
	reasonCalibration     = "calibration store rejected data"
)

// handshake runs the initialization sequence: one request or response per
// state, no pipelining. Responses are correlated with requests by order
// only.
func (d *Device) handshake(ctx context.Context) error {
	state := HandshakeSetDefaultMode
	d.setHandshakeState(state)

	for !state.Terminal() {
		next, err := d.handshakeStep(ctx, state)
		if err != nil {
			d.setHandshakeState(HandshakeInitFailed)
			Debugf("handshake failed in %s: %v", state, err)
			return err
		}
		state = next
		d.setHandshakeState(state)
	}

	Debugf("handshake complete: extension=%t battery=%d%%", d.extension, d.battery)
	return nil
}

func (d *Device) handshakeStep(ctx context.Context, state HandshakeState) (HandshakeState, error) {
	switch state {
	case HandshakeSetDefaultMode:
		cmd := SetReportModeCommand{Mode: ReportModeButtons}
		if err := d.handshakeWrite(ctx, state, cmd); err != nil {
			return state, err
		}
		d.mode, d.continuous = cmd.Mode, cmd.Continuous
		return HandshakeAwaitModeConfirm, nil

	case HandshakeAwaitModeConfirm:
		r, err := d.handshakeRead(ctx, state)
		if err != nil {
			return state, err
		}
		confirm, ok := AsModeConfirm(r)
		if !ok || confirm.Mode != ReportModeButtons {
			return state, mismatch(state, reasonModeMismatch,
				"got report 0x%02X, want mode %s", r.ID(), ReportModeButtons)
		}
		return HandshakeRequestStatus, nil

	case HandshakeRequestStatus:
		if err := d.handshakeWrite(ctx, state, StatusRequestCommand{}); err != nil {
			return state, err
		}
		return HandshakeAwaitStatus, nil

	case HandshakeAwaitStatus:
		r, err := d.handshakeRead(ctx, state)
		if err != nil {
			return state, err
		}
		if status, ok := r.(StatusReport); ok {
			d.applyStatus(status)
		} else {
			d.metrics.ignored.Add(1)
			Debugf("expected status report, got 0x%02X; assuming no extension", r.ID())
			d.extension = false
		}
		if d.extension {
			return HandshakeEnableExtension, nil
		}
		return HandshakeRequestMoteCalibration, nil

	case HandshakeEnableExtension:
		cmd := WriteDataCommand{Address: frame.AddrExtensionEnable, Data: []byte{0x00}}
		if err := d.handshakeWrite(ctx, state, cmd); err != nil {
			return state, err
		}
		return HandshakeAwaitEnableAck, nil

	case HandshakeAwaitEnableAck:
		// The acknowledgement is consumed but its contents are not checked.
		r, err := d.handshakeRead(ctx, state)
		if err != nil {
			return state, err
		}
		if _, ok := r.(WriteAck); !ok {
			d.metrics.ignored.Add(1)
			Debugf("extension enable answered with 0x%02X instead of an ack", r.ID())
		}
		return HandshakeRequestMoteCalibration, nil

	case HandshakeRequestMoteCalibration:
		cmd := ReadDataCommand{Address: frame.AddrMoteCalibration, Size: frame.MoteCalibrationSize}
		if err := d.handshakeWrite(ctx, state, cmd); err != nil {
			return state, err
		}
		return HandshakeAwaitMoteCalibration, nil

	case HandshakeAwaitMoteCalibration:
		return d.awaitMoteCalibration(ctx, state)

	case HandshakeRequestExtCalibration:
		cmd := ReadDataCommand{Address: frame.AddrExtensionCal, Size: frame.ExtensionCalibrationSize}
		if err := d.handshakeWrite(ctx, state, cmd); err != nil {
			return state, err
		}
		return HandshakeAwaitExtCalibration, nil

	case HandshakeAwaitExtCalibration:
		return d.awaitExtensionCalibration(ctx, state)

	default:
		return state, &InitError{
			State:  state,
			Reason: "unexpected handshake state",
			Err:    ErrNotReady,
		}
	}
}

func (d *Device) awaitMoteCalibration(ctx context.Context, state HandshakeState) (HandshakeState, error) {
	r, err := d.handshakeRead(ctx, state)
	if err != nil {
		return state, err
	}

	resp, ok := r.(ReadDataResponse)
	if !ok {
		return state, mismatch(state, reasonMoteCalMismatch, "got report 0x%02X", r.ID())
	}
	if resp.Address != uint16(frame.AddrMoteCalibration) || resp.Error != 0 {
		return state, mismatch(state, reasonMoteCalMismatch,
			"address 0x%04X error %d", resp.Address, resp.Error)
	}

	cal, err := ParseMoteCalibration(resp.Payload[:])
	if err != nil {
		return state, &InitError{State: state, Reason: reasonCalibration, Err: err}
	}
	if err := cal.Validate(); err != nil {
		Debugf("mote calibration: %v; affected axes read as neutral", err)
	}
	if err := d.calibration.setMote(cal); err != nil {
		return state, &InitError{State: state, Reason: reasonCalibration, Err: err}
	}

	if d.extension {
		return HandshakeRequestExtCalibration, nil
	}
	d.calibration.seal()
	return HandshakeReady, nil
}

func (d *Device) awaitExtensionCalibration(ctx context.Context, state HandshakeState) (HandshakeState, error) {
	r, err := d.handshakeRead(ctx, state)
	if err != nil {
		return state, err
	}

	resp, ok := r.(ReadDataResponse)
	if !ok {
		return state, mismatch(state, reasonExtCalMismatch, "got report 0x%02X", r.ID())
	}
	if resp.Address != uint16(frame.AddrExtensionCal&0xFFFF) ||
		resp.Size() != frame.ExtensionCalibrationSize ||
		resp.Error != 0 {
		return state, mismatch(state, reasonExtCalMismatch,
			"address 0x%04X size %d error %d", resp.Address, resp.Size(), resp.Error)
	}

	cal, err := ParseExtensionCalibration(resp.Payload[:])
	if err != nil {
		return state, &InitError{State: state, Reason: reasonCalibration, Err: err}
	}
	if err := cal.Accel.Validate(); err != nil {
		Debugf("extension calibration: %v; affected axes read as neutral", err)
	}
	if err := cal.Stick.Validate(); err != nil {
		Debugf("extension calibration: %v; stick reads as centered", err)
	}
	if err := d.calibration.setExtension(cal); err != nil {
		return state, &InitError{State: state, Reason: reasonCalibration, Err: err}
	}

	d.calibration.seal()
	return HandshakeReady, nil
}

func (d *Device) handshakeWrite(ctx context.Context, state HandshakeState, cmd Command) error {
	if err := d.transport.WriteFrame(ctx, cmd.Encode()); err != nil {
		d.metrics.transportErrors.Add(1)
		return &InitError{State: state, Reason: reasonTransport, Err: err}
	}
	return nil
}

func (d *Device) handshakeRead(ctx context.Context, state HandshakeState) (Report, error) {
	f, err := d.transport.ReadFrame(ctx)
	if err != nil {
		d.metrics.transportErrors.Add(1)
		return nil, &InitError{State: state, Reason: reasonTransport, Err: err}
	}
	d.metrics.framesRead.Add(1)
	return Decode(f), nil
}

func (d *Device) setHandshakeState(to HandshakeState) {
	from := d.handshakeState
	d.handshakeState = to
	if d.stateHook != nil && from != to {
		d.stateHook(from, to)
	}
}

func mismatch(state HandshakeState, reason, format string, args ...any) *InitError {
	return &InitError{
		State:  state,
		Reason: reason,
		Err:    fmt.Errorf("%w: %s", ErrProtocolMismatch, fmt.Sprintf(format, args...)),
	}
}
