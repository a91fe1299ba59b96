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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRecoverer_RetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	attempts := 0
	want := &fakeController{}
	r := NewDefaultRecoverer(func(context.Context) (Controller, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("not yet")
		}
		return want, nil
	}, time.Millisecond, 5)

	got, err := r.Recover(context.Background())
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.Equal(t, 3, attempts)
}

func TestDefaultRecoverer_GivesUp(t *testing.T) {
	t.Parallel()

	boom := errors.New("gone")
	attempts := 0
	r := NewDefaultRecoverer(func(context.Context) (Controller, error) {
		attempts++
		return nil, boom
	}, time.Millisecond, 2)

	_, err := r.Recover(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, attempts)
}

func TestDefaultRecoverer_Defaults(t *testing.T) {
	t.Parallel()

	r := NewDefaultRecoverer(nil, 0, 0)
	assert.Equal(t, 3, r.maxAttempts)
	assert.Equal(t, 500*time.Millisecond, r.backoff)

	_, err := r.Recover(context.Background())
	require.Error(t, err)
}

func TestDefaultRecoverer_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	r := NewDefaultRecoverer(func(context.Context) (Controller, error) {
		cancel()
		return nil, errors.New("fail")
	}, time.Hour, 3)

	_, err := r.Recover(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
