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


// Package hidraw provides a wiimote.Transport over a Linux /dev/hidrawN
// node. Each read returns one input report and each write sends one output
// report at its natural length.
package hidraw

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	wiimote "github.com/ZaparooProject/go-wiimote"
	"github.com/ZaparooProject/go-wiimote/detection"
	"github.com/ZaparooProject/go-wiimote/internal/frame"
	"github.com/ZaparooProject/go-wiimote/internal/syncutil"
)

// DefaultReadTimeout bounds a single ReadFrame when ctx has no earlier
// deadline.
const DefaultReadTimeout = 100 * time.Millisecond

// ErrNotWiimote is returned when the identity check finds a device that is
// neither a Wiimote nor on the allow list.
var ErrNotWiimote = errors.New("hidraw device is not a Wiimote")

// Info is the identity reported by HIDIOCGRAWINFO and HIDIOCGRAWNAME.
type Info struct {
	Name    string
	Bus     uint32
	Vendor  uint16
	Product uint16
}

// device is the subset of *os.File the transport needs.
type device interface {
	io.ReadWriteCloser
	SetReadDeadline(t time.Time) error
}

// Transport implements wiimote.Transport for a hidraw node.
type Transport struct {
	dev         device
	path        string
	allow       []string
	info        Info
	readTimeout time.Duration
	readMu      syncutil.Mutex
	writeMu     syncutil.Mutex
	closed      atomic.Bool
	skipCheck   bool
}

// Option configures a Transport.
type Option func(*Transport) error

// WithReadTimeout sets how long one ReadFrame waits for a report.
func WithReadTimeout(d time.Duration) Option {
	return func(t *Transport) error {
		if d <= 0 {
			return fmt.Errorf("%w: read timeout must be positive", wiimote.ErrInvalidParameter)
		}
		t.readTimeout = d
		return nil
	}
}

// WithAllowList accepts additional VID:PID pairs in the identity check.
func WithAllowList(allow []string) Option {
	return func(t *Transport) error {
		t.allow = append(t.allow, allow...)
		return nil
	}
}

// WithoutIdentityCheck skips HIDIOCGRAWINFO. Needed on platforms without
// the ioctl and for nodes behind unusual drivers.
func WithoutIdentityCheck() Option {
	return func(t *Transport) error {
		t.skipCheck = true
		return nil
	}
}

// New opens path read-write and checks that it is a Wiimote.
func New(path string, opts ...Option) (*Transport, error) {
	t := &Transport{path: path, readTimeout: DefaultReadTimeout}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open hidraw device %s: %w", path, err)
	}

	if !t.skipCheck {
		info, err := identify(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to identify %s: %w", path, err)
		}
		if _, ok := detection.Classify(info.Vendor, info.Product, t.allow); !ok {
			_ = f.Close()
			return nil, fmt.Errorf("%w: %s is %s (%s)", ErrNotWiimote, path,
				detection.FormatVIDPID(info.Vendor, info.Product), info.Name)
		}
		t.info = info
		wiimote.Debugf("hidraw: %s is %s %q", path, detection.FormatVIDPID(info.Vendor, info.Product), info.Name)
	}

	t.dev = f
	return t, nil
}

// NewFromDevice opens a device found by detection.
func NewFromDevice(d detection.DeviceInfo, opts ...Option) (*Transport, error) {
	if d.Transport != "" && d.Transport != string(wiimote.TransportHIDRaw) {
		return nil, fmt.Errorf("%w: %s device given to hidraw transport", wiimote.ErrInvalidParameter, d.Transport)
	}
	return New(d.Path, opts...)
}

// Info returns the identity read when the node was opened. It is zero when
// the identity check was skipped.
func (t *Transport) Info() Info {
	return t.info
}

// ReadFrame implements wiimote.Transport.
func (t *Transport) ReadFrame(ctx context.Context) (wiimote.Frame, error) {
	if err := ctx.Err(); err != nil {
		return wiimote.Frame{}, err
	}

	if t.closed.Load() {
		return wiimote.Frame{}, wiimote.NewTransportReadError("ReadFrame", t.path, wiimote.ErrTransportClosed)
	}

	t.readMu.Lock()
	defer t.readMu.Unlock()

	deadline := time.Now().Add(t.readTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := t.dev.SetReadDeadline(deadline); err != nil {
		return wiimote.Frame{}, wiimote.NewTransportReadError("ReadFrame", t.path, closedErr(err))
	}

	var buf [64]byte
	n, err := t.dev.Read(buf[:])
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, os.ErrDeadlineExceeded) {
			return wiimote.Frame{}, ctxErr
		}
		return wiimote.Frame{}, wiimote.NewTransportReadError("ReadFrame", t.path, closedErr(err))
	}

	f, err := frame.FromReport(buf[:n])
	if err != nil {
		return wiimote.Frame{}, wiimote.NewTransportReadError("ReadFrame", t.path, err)
	}
	return f, nil
}

// WriteFrame implements wiimote.Transport.
func (t *Transport) WriteFrame(ctx context.Context, f wiimote.Frame) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write cancelled: %w", err)
	}

	if t.closed.Load() {
		return wiimote.NewTransportWriteError("WriteFrame", t.path, wiimote.ErrTransportClosed)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	report := f[:frame.OutputLength(f[0])]
	n, err := t.dev.Write(report)
	if err != nil {
		return wiimote.NewTransportWriteError("WriteFrame", t.path, closedErr(err))
	}
	if n != len(report) {
		return wiimote.NewTransportWriteError("WriteFrame", t.path, io.ErrShortWrite)
	}
	return nil
}

// Close implements wiimote.Transport.
func (t *Transport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	if err := t.dev.Close(); err != nil {
		return fmt.Errorf("hidraw close failed: %w", err)
	}
	return nil
}

func closedErr(err error) error {
	if errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("%w: %w", wiimote.ErrTransportClosed, err)
	}
	return err
}

// Type implements wiimote.Transport.
func (*Transport) Type() wiimote.TransportType {
	return wiimote.TransportHIDRaw
}

var _ wiimote.Transport = (*Transport)(nil)
