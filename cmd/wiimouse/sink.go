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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ZaparooProject/go-wiimote/hidreport"
	"github.com/ZaparooProject/go-wiimote/mapper"
)

// OutputConfig selects where mapped input goes.
type OutputConfig struct {
	Sink     string `help:"Output sink" enum:"log,hid" default:"log" env:"WIIMOUSE_SINK"`
	Keyboard string `help:"Keyboard report device or file for the hid sink"`
	Mouse    string `help:"Mouse report device or file for the hid sink"`
}

// logSink logs every event. Moves are logged at debug since they arrive on
// most ticks.
type logSink struct {
	logger *slog.Logger
}

func (s logSink) KeyDown(k mapper.Key) { s.logger.Info("key down", "key", k) }
func (s logSink) KeyUp(k mapper.Key) { s.logger.Info("key up", "key", k) }

func (s logSink) MouseMove(dx, dy int) {
	s.logger.Debug("mouse move", "dx", dx, "dy", dy)
}

func (s logSink) MouseButton(b mapper.MouseButton, down bool) {
	s.logger.Info("mouse button", "button", b, "down", down)
}

func (s logSink) MouseWheel(delta int) { s.logger.Info("mouse wheel", "delta", delta) }

// teeSink forwards every event to each sink in order.
type teeSink []mapper.Sink

func (t teeSink) KeyDown(k mapper.Key) {
	for _, s := range t {
		s.KeyDown(k)
	}
}

func (t teeSink) KeyUp(k mapper.Key) {
	for _, s := range t {
		s.KeyUp(k)
	}
}

func (t teeSink) MouseMove(dx, dy int) {
	for _, s := range t {
		s.MouseMove(dx, dy)
	}
}

func (t teeSink) MouseButton(b mapper.MouseButton, down bool) {
	for _, s := range t {
		s.MouseButton(b, down)
	}
}

func (t teeSink) MouseWheel(delta int) {
	for _, s := range t {
		s.MouseWheel(delta)
	}
}

// outputs is the built sink plus the files it writes to.
type outputs struct {
	sink    mapper.Sink
	hid     *hidreport.Sink
	closers []io.Closer
}

func (o *outputs) Close() error {
	var errs []error
	for _, c := range o.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func buildOutputs(cfg OutputConfig, logger *slog.Logger) (*outputs, error) {
	events := logSink{logger: logger.With("component", "sink")}
	if cfg.Sink != "hid" {
		return &outputs{sink: events}, nil
	}
	if cfg.Keyboard == "" && cfg.Mouse == "" {
		return nil, errors.New("hid sink needs --output.keyboard or --output.mouse")
	}

	out := &outputs{}
	open := func(path string) (io.Writer, error) {
		if path == "" {
			return nil, nil
		}
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open report output %s: %w", path, err)
		}
		out.closers = append(out.closers, f)
		return f, nil
	}

	kb, err := open(cfg.Keyboard)
	if err != nil {
		_ = out.Close()
		return nil, err
	}
	mouse, err := open(cfg.Mouse)
	if err != nil {
		_ = out.Close()
		return nil, err
	}

	out.hid = hidreport.NewSink(kb, mouse)
	out.sink = teeSink{out.hid, events}
	return out, nil
}
