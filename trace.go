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
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ZaparooProject/go-wiimote/internal/syncutil"
)

// TraceTransport wraps a Transport and writes one hex dump line per frame.
// H->D lines are writes to the device, D->H lines are reads from it.
type TraceTransport struct {
	inner Transport
	w     io.Writer
	mu    syncutil.Mutex
}

// NewTraceTransport wraps t. A nil writer disables tracing.
func NewTraceTransport(t Transport, w io.Writer) *TraceTransport {
	return &TraceTransport{inner: t, w: w}
}

// ReadFrame implements Transport.
func (t *TraceTransport) ReadFrame(ctx context.Context) (Frame, error) {
	f, err := t.inner.ReadFrame(ctx)
	if err == nil {
		t.log("D->H", f)
	}
	return f, err //nolint:wrapcheck // pass-through wrapper
}

// WriteFrame implements Transport.
func (t *TraceTransport) WriteFrame(ctx context.Context, f Frame) error {
	t.log("H->D", f)
	return t.inner.WriteFrame(ctx, f) //nolint:wrapcheck // pass-through wrapper
}

// Close implements Transport.
func (t *TraceTransport) Close() error {
	if err := t.inner.Close(); err != nil {
		return fmt.Errorf("failed to close underlying transport: %w", err)
	}
	return nil
}

// Type implements Transport.
func (t *TraceTransport) Type() TransportType {
	return t.inner.Type()
}

// Unwrap returns the wrapped transport.
func (t *TraceTransport) Unwrap() Transport {
	return t.inner
}

func (t *TraceTransport) log(dir string, f Frame) {
	if t.w == nil {
		return
	}

	var hexbuf bytes.Buffer
	const hexdigits = "0123456789abcdef"
	for i, b := range f {
		if i > 0 {
			hexbuf.WriteByte(' ')
		}
		hexbuf.WriteByte(hexdigits[b>>4])
		hexbuf.WriteByte(hexdigits[b&0x0f])
	}

	line := fmt.Sprintf("%s %s frame 0x%02x: %s\n",
		time.Now().Format("2006/01/02 15:04:05.000"), dir, f[0], hexbuf.String())

	t.mu.Lock()
	_, _ = io.WriteString(t.w, line)
	t.mu.Unlock()
}
