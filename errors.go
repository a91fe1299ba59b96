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
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/ZaparooProject/go-wiimote/detection"
)

// Error categories
var (
	// Transport errors: the current operation failed, the device may still
	// be usable.
	ErrTransportTimeout = errors.New("transport timeout")
	ErrTransportWrite   = errors.New("transport write failed")
	ErrTransportRead    = errors.New("transport read failed")
	ErrTransportClosed  = errors.New("transport is closed")

	// Protocol errors: fatal to initialization, never retried.
	ErrProtocolMismatch = errors.New("protocol mismatch")

	// Device errors
	ErrDeviceNotFound = errors.New("device not found")
	ErrNotReady       = errors.New("device not ready")

	// Calibration errors. The motion math never returns these; it yields a
	// neutral reading instead.
	ErrCalibrationDegenerate = errors.New("calibration degenerate")
	ErrCalibrationSealed     = errors.New("calibration already sealed")

	// Data errors
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ErrorType represents the category of a transport error
type ErrorType int

const (
	// ErrorTypeTransient indicates the next operation may succeed
	ErrorTypeTransient ErrorType = iota
	// ErrorTypePermanent indicates the transport is gone
	ErrorTypePermanent
	// ErrorTypeTimeout indicates the operation timed out
	ErrorTypeTimeout
)

// String returns the category name.
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypePermanent:
		return "permanent"
	case ErrorTypeTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(t))
	}
}

// TransportError wraps transport-level errors with additional context
type TransportError struct {
	Err  error     // Underlying error
	Op   string    // Operation that failed
	Port string    // Port or device identifier
	Type ErrorType // Error category
}

func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a transport error with consistent formatting
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:   op,
		Port: port,
		Err:  err,
		Type: errType,
	}
}

// NewTransportReadError wraps a failed read. Device-gone conditions are
// classified as permanent.
func NewTransportReadError(op, port string, err error) *TransportError {
	return classify(op, port, fmt.Errorf("%w: %w", ErrTransportRead, err))
}

// NewTransportWriteError wraps a failed write.
func NewTransportWriteError(op, port string, err error) *TransportError {
	return classify(op, port, fmt.Errorf("%w: %w", ErrTransportWrite, err))
}

func classify(op, port string, err error) *TransportError {
	errType := ErrorTypeTransient
	switch {
	case isDeviceGoneError(err), errors.Is(err, ErrTransportClosed), errors.Is(err, io.EOF):
		errType = ErrorTypePermanent
	case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, ErrTransportTimeout):
		errType = ErrorTypeTimeout
	}
	return NewTransportError(op, port, err, errType)
}

// IsTransportError reports whether err came from the transport layer.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsFatal returns true if the error indicates the device/connection is gone.
// The control loop still skips such ticks instead of exiting; callers that
// want to stop use this to decide.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type == ErrorTypePermanent
	}

	if isDeviceGoneError(err) {
		return true
	}

	switch {
	case errors.Is(err, ErrTransportClosed),
		errors.Is(err, ErrDeviceNotFound),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrClosedPipe):
		return true
	default:
		return false
	}
}

// IsRetryable reports whether opening the controller again may succeed.
// Protocol mismatches, bad parameters and cancellation are final. A
// handshake that timed out is retried.
func IsRetryable(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, context.Canceled),
		errors.Is(err, ErrProtocolMismatch),
		errors.Is(err, ErrInvalidParameter):
		return false
	case IsTransportError(err),
		isDeviceGoneError(err),
		errors.Is(err, ErrTransportTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, ErrNotReady),
		errors.Is(err, ErrDeviceNotFound),
		errors.Is(err, detection.ErrNoDevicesFound),
		errors.Is(err, os.ErrNotExist):
		return true
	default:
		return false
	}
}

// isDeviceGoneError checks for OS-level errors raised when a Bluetooth HID
// device drops off the bus during I/O.
func isDeviceGoneError(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	switch errno {
	case syscall.ENODEV, syscall.ENXIO, syscall.EIO, syscall.ESHUTDOWN:
		return true
	default:
		return false
	}
}

// InitError reports why the initialization handshake stopped.
type InitError struct {
	Err    error          // Underlying cause, wraps ErrProtocolMismatch or a *TransportError
	Reason string         // Human readable reason
	State  HandshakeState // State in which the failure happened
}

func (e *InitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("initialization failed in %s: %s: %v", e.State, e.Reason, e.Err)
	}
	return fmt.Sprintf("initialization failed in %s: %s", e.State, e.Reason)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
