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


package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	wiimote "github.com/ZaparooProject/go-wiimote"
	"github.com/ZaparooProject/go-wiimote/detection"
	"github.com/ZaparooProject/go-wiimote/mapper"
	"github.com/ZaparooProject/go-wiimote/transport/hidraw"
	"github.com/ZaparooProject/go-wiimote/transport/i2c"
	"github.com/ZaparooProject/go-wiimote/transport/uart"
)

// MappingConfig mirrors mapper.Config as flags.
type MappingConfig struct {
	MouseTiltDivisorX    float64       `help:"Tilt degrees per horizontal pointer step" default:"4"`
	MouseTiltDivisorY    float64       `help:"Tilt degrees per vertical pointer step" default:"2"`
	WheelStep            int           `help:"Wheel delta per tick" default:"120"`
	StickScale           float64       `help:"Pointer speed of the extension stick" default:"18"`
	StickDeadZone        int           `help:"Smallest stick movement passed on" default:"2"`
	StrafeMin            float64       `help:"Lower bound of the strafe tilt window (degrees)" default:"20"`
	StrafeMax            float64       `help:"Upper bound of the strafe tilt window (degrees)" default:"90"`
	WalkMin              float64       `help:"Lower bound of the walk tilt window (degrees)" default:"20"`
	WalkMax              float64       `help:"Upper bound of the walk tilt window (degrees)" default:"60"`
	JumpForce            float64       `help:"Extension z force (g) below which jump is pressed" default:"-2"`
	ThrowForce           float64       `help:"Remote z force (g) below which throw is pressed" default:"-2"`
	RotationCooldown     time.Duration `help:"Time Minus/Plus are ignored after a profile change" default:"1s"`
	MaxConsecutiveErrors int           `help:"Stop after this many failed polls in a row (0 = never)" default:"0"`
}

func (c MappingConfig) config(profile string) (*mapper.Config, error) {
	p, err := mapper.ParseProfile(profile)
	if err != nil {
		return nil, err
	}
	cfg := &mapper.Config{
		MouseTiltDivisorX:    c.MouseTiltDivisorX,
		MouseTiltDivisorY:    c.MouseTiltDivisorY,
		WheelStep:            c.WheelStep,
		StickScale:           c.StickScale,
		StickDeadZone:        c.StickDeadZone,
		StrafeWindow:         mapper.Window{Min: c.StrafeMin, Max: c.StrafeMax},
		WalkWindow:           mapper.Window{Min: c.WalkMin, Max: c.WalkMax},
		JumpForce:            c.JumpForce,
		ThrowForce:           c.ThrowForce,
		RotationCooldown:     c.RotationCooldown,
		MaxConsecutiveErrors: c.MaxConsecutiveErrors,
		InitialProfile:       p,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReconnectConfig controls recovery after the controller goes away.
type ReconnectConfig struct {
	Enabled  bool          `help:"Reconnect after the device disappears" default:"true" negatable:""`
	Attempts int           `help:"Reconnect attempts before giving up" default:"3"`
	Backoff  time.Duration `help:"Delay between reconnect attempts" default:"500ms"`
}

// RunCmd connects to a Wiimote and maps it to keyboard and mouse input
// until Home is pressed or the process is interrupted.
type RunCmd struct {
	Device           string          `arg:"" optional:"" help:"Device path; auto-detected when empty"`
	Transport        string          `help:"Transport for an explicit device path" enum:"auto,hidraw,uart,i2c" default:"auto"`
	Allow            []string        `help:"Extra VID:PID pairs to accept as controllers"`
	Profile          string          `help:"Initial profile" enum:"mouse,emulator,fps" default:"mouse"`
	HandshakeTimeout time.Duration   `help:"Initialization handshake timeout" default:"5s"`
	ConnectAttempts  int             `help:"Connection attempts before giving up" default:"3"`
	SessionLog       string          `help:"Directory for a library debug session log" type:"path"`
	Reconnect        ReconnectConfig `embed:"" prefix:"reconnect."`
	Mapping          MappingConfig   `embed:"" prefix:"mapping."`
	Output           OutputConfig    `embed:"" prefix:"output."`
}

// connectFunc opens a ready device.
type connectFunc func(ctx context.Context) (*wiimote.Device, error)

// Run is called by kong when the run command is executed.
func (r *RunCmd) Run(logger *slog.Logger, raw RawLog) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.run(ctx, logger, r.connector(raw.Writer))
}

func (r *RunCmd) run(ctx context.Context, logger *slog.Logger, connect connectFunc) error {
	if r.SessionLog != "" {
		path, err := wiimote.InitSessionLog(r.SessionLog)
		if err != nil {
			return fmt.Errorf("failed to open session log: %w", err)
		}
		logger.Info("writing session log", "path", path)
		defer func() { _ = wiimote.CloseSessionLog() }()
	}

	cfg, err := r.Mapping.config(r.Profile)
	if err != nil {
		return err
	}

	out, err := buildOutputs(r.Output, logger)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	dev, err := connect(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to Wiimote: %w", err)
	}
	current := dev
	defer func() { _ = current.Close() }()
	logReady(logger, current)

	opts := []mapper.Option{
		mapper.WithProfileHook(func(from, to mapper.Profile) {
			logger.Info("profile changed", "from", from, "to", to)
		}),
	}
	if r.Reconnect.Enabled {
		reopen := func(ctx context.Context) (mapper.Controller, error) {
			_ = current.Close()
			logger.Warn("controller lost, reconnecting")
			d, err := connect(ctx)
			if err != nil {
				return nil, err
			}
			current = d
			logReady(logger, d)
			return d, nil
		}
		opts = append(opts, mapper.WithRecoverer(
			mapper.NewDefaultRecoverer(reopen, r.Reconnect.Backoff, r.Reconnect.Attempts)))
	}

	m, err := mapper.New(dev, out.sink, cfg, opts...)
	if err != nil {
		return err
	}

	logger.Info("mapping started", "profile", m.Profile())
	err = m.Run(ctx)

	mm, dm := m.Metrics(), current.Metrics()
	logger.Info("mapping stopped",
		"ticks", mm.Ticks, "skipped", mm.SkippedTicks, "events", mm.Events,
		"rotations", mm.Rotations, "recoveries", mm.Recoveries,
		"frames", dm.FramesRead, "unrecognized", dm.Unrecognized)
	if out.hid != nil {
		st := out.hid.Stats()
		logger.Info("hid reports", "keyboard", st.KeyboardReports, "mouse", st.MouseReports, "errors", st.WriteErrors)
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func logReady(logger *slog.Logger, dev *wiimote.Device) {
	st := dev.ExtensionStatus()
	logger.Info("wiimote ready",
		"transport", dev.Transport().Type(),
		"extension", st.Connected,
		"battery", st.BatteryPercent)
}

// connector builds the connectFunc for the configured device. raw, when
// set, receives a trace line per frame.
func (r *RunCmd) connector(raw io.Writer) connectFunc {
	trace := func(t wiimote.Transport, err error) (wiimote.Transport, error) {
		if err != nil || raw == nil {
			return t, err
		}
		return wiimote.NewTraceTransport(t, raw), nil
	}

	retry := wiimote.DefaultRetryConfig()
	retry.MaxAttempts = r.ConnectAttempts
	opts := []wiimote.ConnectOption{
		wiimote.WithDeviceOptions(wiimote.WithHandshakeTimeout(r.HandshakeTimeout)),
		wiimote.WithConnectRetry(retry),
	}
	if r.Device == "" {
		detectOpts := detection.DefaultOptions()
		detectOpts.Allow = append(detectOpts.Allow, r.Allow...)
		detectOpts.EnableCache = false
		opts = append(opts,
			wiimote.WithAutoDetection(),
			wiimote.WithDetectionOptions(detectOpts),
			wiimote.WithTransportFromDeviceFactory(func(d detection.DeviceInfo) (wiimote.Transport, error) {
				return trace(newTransportFromDevice(d, r.Allow))
			}))
	} else {
		opts = append(opts, wiimote.WithTransportFactory(func(path string) (wiimote.Transport, error) {
			return trace(newTransport(path, r.Transport, r.Allow))
		}))
	}

	return func(ctx context.Context) (*wiimote.Device, error) {
		return wiimote.Connect(ctx, r.Device, opts...)
	}
}

// newTransportFromDevice creates a transport from a detected device.
func newTransportFromDevice(device detection.DeviceInfo, allow []string) (wiimote.Transport, error) {
	return newTransport(device.Path, device.Transport, allow)
}

// inferTransport picks a transport from the path when kind is auto.
func inferTransport(path, kind string) string {
	if kind != "" && kind != "auto" {
		return strings.ToLower(kind)
	}
	lower := strings.ToLower(path)
	switch {
	case strings.Contains(lower, "hidraw"):
		return string(wiimote.TransportHIDRaw)
	case strings.Contains(lower, "i2c"):
		return string(wiimote.TransportI2C)
	default:
		return string(wiimote.TransportUART)
	}
}

// newTransport creates a transport for path.
func newTransport(path, kind string, allow []string) (wiimote.Transport, error) {
	if path == "" {
		return nil, errors.New("empty device path")
	}

	switch inferTransport(path, kind) {
	case string(wiimote.TransportHIDRaw):
		t, err := hidraw.New(path, hidraw.WithAllowList(allow))
		if err != nil {
			return nil, fmt.Errorf("failed to create hidraw transport: %w", err)
		}
		return t, nil
	case string(wiimote.TransportI2C):
		t, err := i2c.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create I2C transport: %w", err)
		}
		return t, nil
	case string(wiimote.TransportUART):
		t, err := uart.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create UART transport: %w", err)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", kind)
	}
}
