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


// Package i2c provides a wiimote.Transport for I2C bridges. The bridge
// buffers Wiimote reports and hands them out as 22-byte frames, each read
// prefixed with a status byte.
package i2c

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	wiimote "github.com/ZaparooProject/go-wiimote"
	"github.com/ZaparooProject/go-wiimote/detection"
	"github.com/ZaparooProject/go-wiimote/internal/frame"
	"github.com/ZaparooProject/go-wiimote/internal/syncutil"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	// DefaultAddr is the bridge's 7-bit address.
	DefaultAddr = 0x2A

	// DefaultTimeout bounds a single ReadFrame.
	DefaultTimeout = 100 * time.Millisecond

	bridgeReady = 0x01

	maxClockFreq = 400 * physic.KiloHertz
	pollInterval = 2 * time.Millisecond
)

// Transport implements wiimote.Transport over an I2C bridge.
type Transport struct {
	dev     *i2c.Dev
	bus     i2c.BusCloser // Held so Close() can release the OS file descriptor
	busName string
	timeout time.Duration
	mu      syncutil.Mutex
	closed  atomic.Bool
}

// parseI2CPath splits a detection path into bus and address.
// Accepts "/dev/i2c-1:0x2a" or "/dev/i2c-1" (bare bus, DefaultAddr).
func parseI2CPath(path string) (bus string, addr uint16, err error) {
	bus, suffix, found := strings.Cut(path, ":")
	if !found {
		return bus, DefaultAddr, nil
	}
	v, err := strconv.ParseUint(suffix, 0, 7)
	if err != nil {
		return "", 0, fmt.Errorf("%w: I2C address %q: %w", wiimote.ErrInvalidParameter, suffix, err)
	}
	return bus, uint16(v), nil
}

// New opens the bus named in path and talks to the bridge at the address
// suffix, DefaultAddr when there is none.
func New(path string) (*Transport, error) {
	busName, addr, err := parseI2CPath(path)
	if err != nil {
		return nil, err
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}
	_ = bus.SetSpeed(maxClockFreq) // Ignore error, continue with default speed

	return &Transport{
		dev:     &i2c.Dev{Addr: addr, Bus: bus},
		bus:     bus,
		busName: path,
		timeout: DefaultTimeout,
	}, nil
}

// NewFromDevice opens a bridge found by detection.
func NewFromDevice(d detection.DeviceInfo) (*Transport, error) {
	if d.Transport != "" && d.Transport != string(wiimote.TransportI2C) {
		return nil, fmt.Errorf("%w: %s device given to I2C transport", wiimote.ErrInvalidParameter, d.Transport)
	}
	return New(d.Path)
}

// SetTimeout sets how long one ReadFrame waits for the bridge.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", wiimote.ErrInvalidParameter)
	}
	t.mu.Lock()
	t.timeout = timeout
	t.mu.Unlock()
	return nil
}

// sleepCtx performs a context-aware sleep. Returns ctx.Err() if context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReadFrame implements wiimote.Transport.
func (t *Transport) ReadFrame(ctx context.Context) (wiimote.Frame, error) {
	if err := ctx.Err(); err != nil {
		return wiimote.Frame{}, err
	}
	if t.closed.Load() {
		return wiimote.Frame{}, wiimote.NewTransportReadError("ReadFrame", t.busName, wiimote.ErrTransportClosed)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.waitReady(ctx); err != nil {
		return wiimote.Frame{}, err
	}

	// The bridge prepends its status byte to every read.
	var buf [1 + frame.Size]byte
	if err := t.dev.Tx(nil, buf[:]); err != nil {
		return wiimote.Frame{}, wiimote.NewTransportReadError("ReadFrame", t.busName, err)
	}
	if buf[0] != bridgeReady {
		return wiimote.Frame{}, wiimote.NewTransportReadError("ReadFrame", t.busName, wiimote.ErrNotReady)
	}

	f, err := frame.FromBytes(buf[1:])
	if err != nil {
		return wiimote.Frame{}, wiimote.NewTransportReadError("ReadFrame", t.busName, err)
	}
	return f, nil
}

// waitReady polls the status byte until a frame is buffered.
func (t *Transport) waitReady(ctx context.Context) error {
	deadline := time.Now().Add(t.timeout)
	var ready [1]byte
	for {
		if err := t.dev.Tx(nil, ready[:]); err != nil {
			return wiimote.NewTransportReadError("checkReady", t.busName, fmt.Errorf("I2C ready check failed: %w", err))
		}
		if ready[0] == bridgeReady {
			return nil
		}
		if !time.Now().Before(deadline) {
			return wiimote.NewTransportReadError("checkReady", t.busName, wiimote.ErrTransportTimeout)
		}
		if err := sleepCtx(ctx, pollInterval); err != nil {
			return err
		}
	}
}

// WriteFrame implements wiimote.Transport.
func (t *Transport) WriteFrame(ctx context.Context, f wiimote.Frame) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write cancelled: %w", err)
	}
	if t.closed.Load() {
		return wiimote.NewTransportWriteError("WriteFrame", t.busName, wiimote.ErrTransportClosed)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.dev.Tx(f[:], nil); err != nil {
		return wiimote.NewTransportWriteError("WriteFrame", t.busName, err)
	}
	return nil
}

// Close closes the transport connection
func (t *Transport) Close() error {
	if t.closed.Swap(true) || t.bus == nil {
		return nil
	}
	if err := t.bus.Close(); err != nil {
		return fmt.Errorf("I2C close failed: %w", err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() wiimote.TransportType {
	return wiimote.TransportI2C
}

var _ wiimote.Transport = (*Transport)(nil)
