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

	"github.com/ZaparooProject/go-wiimote/internal/syncutil"
)

// Transport moves whole frames to and from a device. This can be
// implemented by hidraw, UART or I2C backends.
type Transport interface {
	// ReadFrame blocks until one inbound frame is available or ctx is done.
	ReadFrame(ctx context.Context) (Frame, error)

	// WriteFrame sends one outbound frame.
	WriteFrame(ctx context.Context, f Frame) error

	// Close closes the transport connection
	Close() error

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportHIDRaw represents a Linux hidraw character device.
	TransportHIDRaw TransportType = "hidraw"
	// TransportUART represents a serial bridge.
	TransportUART TransportType = "uart"
	// TransportI2C represents an I2C bus bridge.
	TransportI2C TransportType = "i2c"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// MockTransport provides a scripted Transport for testing. Reads are served
// from a queue in order; writes are recorded.
type MockTransport struct {
	readErr   error
	writeErr  error
	reads     []mockRead
	writes    []Frame
	mu        syncutil.Mutex
	closed    bool
	readCalls int
}

type mockRead struct {
	err   error
	frame Frame
}

// NewMockTransport creates a new mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// ReadFrame implements Transport.
func (m *MockTransport) ReadFrame(ctx context.Context) (Frame, error) {
	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.readCalls++
	if m.closed {
		return Frame{}, NewTransportReadError("ReadFrame", "mock", ErrTransportClosed)
	}
	if len(m.reads) == 0 {
		if m.readErr != nil {
			return Frame{}, NewTransportReadError("ReadFrame", "mock", m.readErr)
		}
		return Frame{}, NewTransportReadError("ReadFrame", "mock", ErrTransportTimeout)
	}

	next := m.reads[0]
	m.reads = m.reads[1:]
	if next.err != nil {
		return Frame{}, NewTransportReadError("ReadFrame", "mock", next.err)
	}
	return next.frame, nil
}

// WriteFrame implements Transport.
func (m *MockTransport) WriteFrame(ctx context.Context, f Frame) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write cancelled: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return NewTransportWriteError("WriteFrame", "mock", ErrTransportClosed)
	}
	if m.writeErr != nil {
		return NewTransportWriteError("WriteFrame", "mock", m.writeErr)
	}
	m.writes = append(m.writes, f)
	return nil
}

// Close implements Transport interface
func (m *MockTransport) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Type implements Transport interface
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// Test helper methods

// QueueRead appends frames to the read queue.
func (m *MockTransport) QueueRead(frames ...Frame) {
	m.mu.Lock()
	for _, f := range frames {
		m.reads = append(m.reads, mockRead{frame: f})
	}
	m.mu.Unlock()
}

// QueueReport appends encoded reports to the read queue.
func (m *MockTransport) QueueReport(reports ...Report) {
	m.mu.Lock()
	for _, r := range reports {
		m.reads = append(m.reads, mockRead{frame: r.Encode()})
	}
	m.mu.Unlock()
}

// QueueReadError appends a failing read to the queue.
func (m *MockTransport) QueueReadError(err error) {
	m.mu.Lock()
	m.reads = append(m.reads, mockRead{err: err})
	m.mu.Unlock()
}

// SetReadError configures the error returned once the queue is empty.
func (m *MockTransport) SetReadError(err error) {
	m.mu.Lock()
	m.readErr = err
	m.mu.Unlock()
}

// SetWriteError configures an error returned by every write. Pass nil to
// clear it.
func (m *MockTransport) SetWriteError(err error) {
	m.mu.Lock()
	m.writeErr = err
	m.mu.Unlock()
}

// Writes returns a copy of every frame written so far.
func (m *MockTransport) Writes() []Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Frame(nil), m.writes...)
}

// Commands decodes every frame written so far.
func (m *MockTransport) Commands() []Command {
	writes := m.Writes()
	cmds := make([]Command, 0, len(writes))
	for _, f := range writes {
		if c, err := DecodeCommand(f); err == nil {
			cmds = append(cmds, c)
		}
	}
	return cmds
}

// ClearWrites forgets the recorded writes.
func (m *MockTransport) ClearWrites() {
	m.mu.Lock()
	m.writes = nil
	m.mu.Unlock()
}

// ReadCalls returns how many times ReadFrame was called.
func (m *MockTransport) ReadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readCalls
}

// Pending returns the number of queued reads not yet consumed.
func (m *MockTransport) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reads)
}

// IsClosed reports whether Close was called.
func (m *MockTransport) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Reset clears queued reads, recorded writes and injected errors.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	m.reads = nil
	m.writes = nil
	m.readErr = nil
	m.writeErr = nil
	m.closed = false
	m.readCalls = 0
	m.mu.Unlock()
}
