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
	"time"

	"github.com/ZaparooProject/go-wiimote/detection"
)

// DetectCmd lists attached controllers.
type DetectCmd struct {
	Allow   []string      `help:"Extra VID:PID pairs to accept as controllers"`
	Timeout time.Duration `help:"Detection timeout" default:"5s"`
}

// Run is called by kong when the detect command is executed.
func (d *DetectCmd) Run(logger *slog.Logger) error {
	return d.run(context.Background(), logger, os.Stdout, detection.DetectAll)
}

func (d *DetectCmd) run(
	ctx context.Context,
	logger *slog.Logger,
	w io.Writer,
	detect func(context.Context, *detection.Options) ([]detection.DeviceInfo, error),
) error {
	opts := detection.DefaultOptions()
	opts.Allow = append(opts.Allow, d.Allow...)
	opts.Timeout = d.Timeout
	opts.EnableCache = false

	devices, err := detect(ctx, &opts)
	if errors.Is(err, detection.ErrNoDevicesFound) {
		logger.Info("no controllers found")
		return nil
	}
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	for _, dev := range devices {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", dev.Transport, dev.Path, dev.Confidence, dev.Name)
	}
	return nil
}
