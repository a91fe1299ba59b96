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


package mapper

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Recoverer replaces a controller whose transport failed fatally.
type Recoverer interface {
	// Recover returns a working controller or an error once it gives up.
	Recover(ctx context.Context) (Controller, error)
}

// ReopenFunc opens a fresh controller, typically by reconnecting the
// transport and repeating the handshake.
type ReopenFunc func(ctx context.Context) (Controller, error)

// DefaultRecoverer retries a ReopenFunc with a fixed backoff.
type DefaultRecoverer struct {
	reopen      ReopenFunc
	backoff     time.Duration
	maxAttempts int
}

// NewDefaultRecoverer creates a recoverer calling reopen up to maxAttempts
// times. Non-positive values select 3 attempts and a 500ms backoff.
func NewDefaultRecoverer(reopen ReopenFunc, backoff time.Duration, maxAttempts int) *DefaultRecoverer {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	return &DefaultRecoverer{
		reopen:      reopen,
		backoff:     backoff,
		maxAttempts: maxAttempts,
	}
}

// Recover implements Recoverer.
func (r *DefaultRecoverer) Recover(ctx context.Context) (Controller, error) {
	if r.reopen == nil {
		return nil, errors.New("no reopen function configured")
	}

	var lastErr error
	for attempt := range r.maxAttempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.backoff):
			}
		}

		ctrl, err := r.reopen(ctx)
		if err == nil {
			return ctrl, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("gave up after %d attempts: %w", r.maxAttempts, lastErr)
}
