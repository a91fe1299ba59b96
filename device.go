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
	"sync/atomic"
	"time"
)

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// Port names the device in logs and transport errors.
	Port string
	// HandshakeTimeout bounds the whole initialization handshake. Zero means
	// no timeout: reads block until the transport returns.
	HandshakeTimeout time.Duration
	// Continuous asks the device to stream reports even when nothing changes.
	Continuous bool
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		Continuous: true,
	}
}

// Option configures a Device before the handshake runs.
type Option func(*Device) error

// WithConfig replaces the device configuration.
func WithConfig(cfg *DeviceConfig) Option {
	return func(d *Device) error {
		if cfg == nil {
			return fmt.Errorf("%w: nil device config", ErrInvalidParameter)
		}
		c := *cfg
		d.config = &c
		return nil
	}
}

// WithHandshakeTimeout bounds the initialization handshake.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(d *Device) error {
		if timeout < 0 {
			return fmt.Errorf("%w: negative handshake timeout %v", ErrInvalidParameter, timeout)
		}
		d.config.HandshakeTimeout = timeout
		return nil
	}
}

// WithStateHook registers a callback invoked on every handshake transition.
func WithStateHook(hook func(from, to HandshakeState)) Option {
	return func(d *Device) error {
		d.stateHook = hook
		return nil
	}
}

// ExtensionState is the last decoded state of the extension controller.
type ExtensionState struct {
	Buttons   ExtensionButtons
	Stick     StickSample
	Accel     AxisSample
	Motion    MotionState // Motion.Stick holds the normalized stick
	Connected bool
}

// State is the device state after the most recent Poll.
type State struct {
	Extension ExtensionState
	Motion    MotionState
	Buttons   ButtonState
	Accel     AxisSample
	Mode      ReportMode
	Battery   int // percent
}

// ExtensionStatus reports extension presence and battery level as last seen
// in a status report.
type ExtensionStatus struct {
	Connected      bool
	BatteryPercent int
}

// Metrics counts frames and every degradation path of a session.
type Metrics struct {
	FramesRead          uint64
	TransportErrors     uint64
	Unrecognized        uint64
	Ignored             uint64
	UncalibratedSamples uint64
	StatusReports       uint64
}

type deviceMetrics struct {
	framesRead          atomic.Uint64
	transportErrors     atomic.Uint64
	unrecognized        atomic.Uint64
	ignored             atomic.Uint64
	uncalibratedSamples atomic.Uint64
	statusReports       atomic.Uint64
}

// Device is an initialized Wiimote session.
//
// Thread Safety: Device is NOT thread-safe. Poll and the command methods
// must be called from a single goroutine; only Metrics may be read
// concurrently.
type Device struct {
	transport      Transport
	config         *DeviceConfig
	stateHook      func(from, to HandshakeState)
	calibration    CalibrationStore
	state          State
	metrics        deviceMetrics
	handshakeState HandshakeState
	battery        int
	mode           ReportMode
	leds           LED
	continuous     bool
	rumble         bool
	extension      bool
}

// Open runs the initialization handshake against transport and returns a
// ready Device. On failure no Device is returned and the error is an
// *InitError; the transport is left open for the caller to close.
func Open(ctx context.Context, transport Transport, opts ...Option) (*Device, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: nil transport", ErrInvalidParameter)
	}

	d := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	if d.config.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.HandshakeTimeout)
		defer cancel()
	}

	if err := d.handshake(ctx); err != nil {
		return nil, err
	}
	d.state.Mode = d.mode
	d.state.Battery = d.battery
	d.state.Extension.Connected = d.extension
	return d, nil
}

// Poll reads and applies one frame. On a transport error the previous state
// is returned together with the error; callers skip the tick. Frames that
// carry no input are applied (status) or counted and ignored.
func (d *Device) Poll(ctx context.Context) (State, error) {
	f, err := d.transport.ReadFrame(ctx)
	if err != nil {
		d.metrics.transportErrors.Add(1)
		Debugf("poll %s: %v", d.config.Port, err)
		return d.state, fmt.Errorf("poll: %w", err)
	}
	d.metrics.framesRead.Add(1)

	switch r := Decode(f).(type) {
	case InputReport:
		d.applyInput(r)
	case StatusReport:
		d.metrics.statusReports.Add(1)
		d.applyStatus(r)
		d.state.Buttons = r.Buttons
		// The device stops streaming after a status report until the mode
		// is set again.
		if err := d.SetReportMode(ctx, d.mode, d.continuous); err != nil {
			return d.state, err
		}
	case Unrecognized:
		d.metrics.unrecognized.Add(1)
		Debugf("ignoring unrecognized report 0x%02X", r.Tag)
	default:
		d.metrics.ignored.Add(1)
		Debugf("ignoring report 0x%02X in steady state", r.ID())
	}
	return d.state, nil
}

func (d *Device) applyInput(r InputReport) {
	d.state.Mode = r.Mode
	d.state.Buttons = r.Buttons
	if !r.Mode.HasAccel() {
		return
	}

	d.state.Accel = r.Accel
	mote, _ := d.calibration.Mote()
	d.state.Motion = ComputeMotion(r.Accel, mote)
	if d.state.Motion.Uncalibrated != 0 {
		d.metrics.uncalibratedSamples.Add(1)
	}

	if r.Extension == nil {
		return
	}
	ext := &d.state.Extension
	ext.Buttons = r.Extension.Buttons
	ext.Stick = r.Extension.Stick
	ext.Accel = r.Extension.Accel

	cal, ok := d.calibration.Extension()
	if !ok {
		// Extension attached after the handshake: no calibration was read.
		ext.Motion = MotionState{Uncalibrated: AxisX | AxisY | AxisZ}
		d.metrics.uncalibratedSamples.Add(1)
		return
	}
	ext.Motion = ComputeMotion(r.Extension.Accel, cal.Accel)
	var bad AxisMask
	ext.Motion.Stick, bad = NormalizeStick(r.Extension.Stick, cal.Stick)
	if ext.Motion.Uncalibrated != 0 || bad != 0 {
		d.metrics.uncalibratedSamples.Add(1)
	}
}

func (d *Device) applyStatus(r StatusReport) {
	prev := d.extension
	d.extension = r.ExtensionPresent()
	d.battery = r.BatteryPercent()
	d.state.Battery = d.battery
	d.state.Extension.Connected = d.extension
	if prev != d.extension && d.handshakeState == HandshakeReady {
		Debugf("extension connected=%t, calibration not refreshed", d.extension)
	}
}

// Send writes one command frame.
func (d *Device) Send(ctx context.Context, cmd Command) error {
	if w, ok := cmd.(WriteDataCommand); ok {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	if err := d.transport.WriteFrame(ctx, cmd.Encode()); err != nil {
		d.metrics.transportErrors.Add(1)
		return fmt.Errorf("send 0x%02X: %w", cmd.Opcode(), err)
	}
	return nil
}

// SetReportMode selects the streaming report mode. The confirmation arrives
// through Poll like any other input report.
func (d *Device) SetReportMode(ctx context.Context, mode ReportMode, continuous bool) error {
	if err := d.Send(ctx, SetReportModeCommand{Mode: mode, Continuous: continuous}); err != nil {
		return err
	}
	d.mode, d.continuous = mode, continuous
	return nil
}

// StartStreaming selects buttons+accel, or buttons+accel+extension when an
// extension is present.
func (d *Device) StartStreaming(ctx context.Context) error {
	mode := ReportModeButtonsAccel
	if d.extension {
		mode = ReportModeButtonsAccelExt
	}
	return d.SetReportMode(ctx, mode, d.config.Continuous)
}

// RequestStatus asks for a status report. The answer arrives through Poll.
func (d *Device) RequestStatus(ctx context.Context) error {
	return d.Send(ctx, StatusRequestCommand{Rumble: d.rumble})
}

// SetLEDs lights the given player LEDs, keeping the rumble motor state.
func (d *Device) SetLEDs(ctx context.Context, leds LED) error {
	if err := d.Send(ctx, SetLEDsCommand{LEDs: leds, Rumble: d.rumble}); err != nil {
		return err
	}
	d.leds = leds
	return nil
}

// SetRumble switches the rumble motor.
func (d *Device) SetRumble(ctx context.Context, on bool) error {
	if err := d.Send(ctx, SetRumbleCommand{On: on}); err != nil {
		return err
	}
	d.rumble = on
	return nil
}

// State returns the state after the most recent Poll.
func (d *Device) State() State { return d.state }

// HandshakeState returns the handshake state; HandshakeReady for every
// Device returned by Open.
func (d *Device) HandshakeState() HandshakeState { return d.handshakeState }

// Calibration returns the sealed calibration store.
func (d *Device) Calibration() *CalibrationStore { return &d.calibration }

// ExtensionStatus returns extension presence and battery level.
func (d *Device) ExtensionStatus() ExtensionStatus {
	return ExtensionStatus{Connected: d.extension, BatteryPercent: d.battery}
}

// ReportMode returns the last requested report mode.
func (d *Device) ReportMode() ReportMode { return d.mode }

// LEDs returns the last LED mask written.
func (d *Device) LEDs() LED { return d.leds }

// Rumbling reports whether the rumble motor is on.
func (d *Device) Rumbling() bool { return d.rumble }

// Transport returns the underlying transport
func (d *Device) Transport() Transport { return d.transport }

// Metrics returns a snapshot of the session counters.
func (d *Device) Metrics() Metrics {
	return Metrics{
		FramesRead:          d.metrics.framesRead.Load(),
		TransportErrors:     d.metrics.transportErrors.Load(),
		Unrecognized:        d.metrics.unrecognized.Load(),
		Ignored:             d.metrics.ignored.Load(),
		UncalibratedSamples: d.metrics.uncalibratedSamples.Load(),
		StatusReports:       d.metrics.statusReports.Load(),
	}
}

// Close closes the device connection
func (d *Device) Close() error {
	if d.transport != nil {
		if err := d.transport.Close(); err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
	}
	return nil
}
