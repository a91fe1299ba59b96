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


// Package uart provides a wiimote.Transport for serial bridges that relay
// Wiimote reports as fixed 22-byte frames in both directions.
package uart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	wiimote "github.com/ZaparooProject/go-wiimote"
	"github.com/ZaparooProject/go-wiimote/detection"
	"github.com/ZaparooProject/go-wiimote/internal/frame"
	"github.com/ZaparooProject/go-wiimote/internal/syncutil"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the bridge firmware default.
	DefaultBaudRate = 115200
	// DefaultFrameTimeout bounds a single ReadFrame.
	DefaultFrameTimeout = 100 * time.Millisecond
)

// port is the subset of serial.Port the transport uses.
type port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	Drain() error
	ResetInputBuffer() error
}

// Transport implements wiimote.Transport over a serial bridge.
type Transport struct {
	port         port
	portName     string
	pending      []byte
	chunk        [64]byte
	frameTimeout time.Duration
	dropped      atomic.Int64
	readMu       syncutil.Mutex
	writeMu      syncutil.Mutex
	closed       atomic.Bool
}

// Option configures a Transport.
type Option func(*config) error

type config struct {
	baudRate     int
	frameTimeout time.Duration
}

// WithBaudRate overrides DefaultBaudRate.
func WithBaudRate(rate int) Option {
	return func(c *config) error {
		if rate <= 0 {
			return fmt.Errorf("%w: baud rate must be positive", wiimote.ErrInvalidParameter)
		}
		c.baudRate = rate
		return nil
	}
}

// WithFrameTimeout sets how long one ReadFrame waits for a full frame.
func WithFrameTimeout(d time.Duration) Option {
	return func(c *config) error {
		if d <= 0 {
			return fmt.Errorf("%w: frame timeout must be positive", wiimote.ErrInvalidParameter)
		}
		c.frameTimeout = d
		return nil
	}
}

// isWindows returns true if running on Windows
func isWindows() bool {
	return runtime.GOOS == "windows"
}

// getWindowsTimeout returns the per-read port timeout. Windows USB serial
// drivers need a longer one.
func getWindowsTimeout() time.Duration {
	if isWindows() {
		return 100 * time.Millisecond
	}
	return 50 * time.Millisecond
}

// windowsPostWriteDelay gives Windows time to flush its write buffer.
func windowsPostWriteDelay() {
	if isWindows() {
		time.Sleep(15 * time.Millisecond)
	}
}

// windowsPortRecovery drops buffered input after a read error on Windows.
func (t *Transport) windowsPortRecovery() error {
	if !isWindows() || t.port == nil {
		return nil
	}
	t.pending = t.pending[:0]
	if err := t.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("UART reset input buffer failed: %w", err)
	}
	return nil
}

// New opens a serial bridge.
func New(portName string, opts ...Option) (*Transport, error) {
	cfg := config{baudRate: DefaultBaudRate, frameTimeout: DefaultFrameTimeout}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	p, err := serial.Open(portName, &serial.Mode{
		BaudRate: cfg.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open UART port %s: %w", portName, err)
	}

	if err := p.SetReadTimeout(getWindowsTimeout()); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("failed to set UART read timeout: %w", err)
	}
	// Stale bytes from a previous session would misalign every frame.
	if err := p.ResetInputBuffer(); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("failed to reset UART input buffer: %w", err)
	}

	return newTransport(p, portName, cfg.frameTimeout), nil
}

// NewFromDevice opens a bridge found by detection.
func NewFromDevice(d detection.DeviceInfo, opts ...Option) (*Transport, error) {
	if d.Transport != "" && d.Transport != string(wiimote.TransportUART) {
		return nil, fmt.Errorf("%w: %s device given to UART transport", wiimote.ErrInvalidParameter, d.Transport)
	}
	return New(d.Path, opts...)
}

func newTransport(p port, name string, frameTimeout time.Duration) *Transport {
	return &Transport{port: p, portName: name, frameTimeout: frameTimeout}
}

// ReadFrame implements wiimote.Transport. Partial frames are kept across
// calls, so a timeout in the middle of a frame loses nothing.
func (t *Transport) ReadFrame(ctx context.Context) (wiimote.Frame, error) {
	if err := ctx.Err(); err != nil {
		return wiimote.Frame{}, err
	}
	if t.closed.Load() {
		return wiimote.Frame{}, wiimote.NewTransportReadError("ReadFrame", t.portName, wiimote.ErrTransportClosed)
	}

	t.readMu.Lock()
	defer t.readMu.Unlock()

	deadline := time.Now().Add(t.frameTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	for {
		if f, ok := t.takeFrame(); ok {
			return f, nil
		}
		if err := ctx.Err(); err != nil {
			return wiimote.Frame{}, err
		}
		if !time.Now().Before(deadline) {
			return wiimote.Frame{}, wiimote.NewTransportReadError("ReadFrame", t.portName, wiimote.ErrTransportTimeout)
		}

		n, err := t.port.Read(t.chunk[:])
		if err != nil {
			if isInterruptedSystemCall(err) {
				continue
			}
			if recErr := t.windowsPortRecovery(); recErr != nil {
				wiimote.Debugf("uart: %v", recErr)
			}
			return wiimote.Frame{}, wiimote.NewTransportReadError("ReadFrame", t.portName, err)
		}
		t.pending = append(t.pending, t.chunk[:n]...)
	}
}

// takeFrame resyncs on the next input report id and returns a frame when one
// is fully buffered.
func (t *Transport) takeFrame() (wiimote.Frame, bool) {
	skip := 0
	for skip < len(t.pending) && !isInputReportID(t.pending[skip]) {
		skip++
	}
	if skip > 0 {
		t.dropped.Add(int64(skip))
		wiimote.Debugf("uart: %s dropped %d bytes while resyncing", t.portName, skip)
		t.pending = t.pending[skip:]
	}

	if len(t.pending) < frame.Size {
		return wiimote.Frame{}, false
	}
	f, _ := frame.FromBytes(t.pending)
	t.pending = t.pending[frame.Size:]
	return f, true
}

func isInputReportID(b byte) bool {
	return b >= frame.ReportStatus && b <= 0x3F
}

// Dropped returns how many bytes were discarded while resyncing.
func (t *Transport) Dropped() int64 {
	return t.dropped.Load()
}

// WriteFrame implements wiimote.Transport.
func (t *Transport) WriteFrame(ctx context.Context, f wiimote.Frame) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write cancelled: %w", err)
	}
	if t.closed.Load() {
		return wiimote.NewTransportWriteError("WriteFrame", t.portName, wiimote.ErrTransportClosed)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	n, err := t.port.Write(f[:])
	if err != nil {
		return wiimote.NewTransportWriteError("WriteFrame", t.portName, err)
	}
	if n != frame.Size {
		return wiimote.NewTransportWriteError("WriteFrame", t.portName, io.ErrShortWrite)
	}
	if err := t.drainWithRetry("frame"); err != nil {
		return wiimote.NewTransportWriteError("WriteFrame", t.portName, err)
	}
	windowsPostWriteDelay()
	return nil
}

// Close closes the transport connection
func (t *Transport) Close() error {
	if t.closed.Swap(true) || t.port == nil {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("UART close failed: %w", err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() wiimote.TransportType {
	return wiimote.TransportUART
}

// isInterruptedSystemCall checks if an error is caused by an interrupted system call
func isInterruptedSystemCall(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "interrupted system call") ||
		strings.Contains(errStr, "eintr")
}

// drainWithRetry performs port drain with retry logic for interrupted system calls
func (t *Transport) drainWithRetry(operation string) error {
	const maxRetries = 3
	baseDelay := 2 * time.Millisecond

	var err error
	for attempt := range maxRetries {
		err = t.port.Drain()
		if err == nil {
			return nil
		}
		if !isInterruptedSystemCall(err) {
			return fmt.Errorf("UART %s drain failed: %w", operation, err)
		}
		if attempt < maxRetries-1 {
			time.Sleep(baseDelay * time.Duration(1<<attempt)) // 2ms, 4ms
		}
	}
	return errors.Join(fmt.Errorf("UART %s drain failed after %d retries", operation, maxRetries), err)
}

// Ensure Transport implements wiimote.Transport
var _ wiimote.Transport = (*Transport)(nil)
