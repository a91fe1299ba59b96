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
	"sync/atomic"
	"time"

	wiimote "github.com/ZaparooProject/go-wiimote"
)

var (
	// ErrDisconnected is returned by Step and Tick once Home was pressed.
	ErrDisconnected = errors.New("controller disconnected by user")
	// ErrTooManyErrors is returned when Config.MaxConsecutiveErrors polls
	// failed in a row.
	ErrTooManyErrors = errors.New("too many consecutive poll errors")
)

// Controller is the device side of the mapper. *wiimote.Device implements
// it.
type Controller interface {
	Poll(ctx context.Context) (wiimote.State, error)
	StartStreaming(ctx context.Context) error
	SetLEDs(ctx context.Context, leds wiimote.LED) error
	SetReportMode(ctx context.Context, mode wiimote.ReportMode, continuous bool) error
}

// Metrics counts ticks and every degradation path of the loop.
type Metrics struct {
	Ticks        int64 // Steps applied
	SkippedTicks int64 // Polls that failed
	Events       int64 // Sink calls made
	Rotations    int64 // Profile rotations
	LEDErrors    int64 // Failed LED indicator writes
	Recoveries   int64 // Successful controller recoveries
}

// Option configures a Mapper.
type Option func(*Mapper) error

// WithClock replaces time.Now for the rotation cooldown.
func WithClock(now func() time.Time) Option {
	return func(m *Mapper) error {
		if now == nil {
			return fmt.Errorf("%w: nil clock", ErrInvalidConfig)
		}
		m.now = now
		return nil
	}
}

// WithProfileHook registers a callback invoked after every profile change.
func WithProfileHook(hook func(from, to Profile)) Option {
	return func(m *Mapper) error {
		m.profileHook = hook
		return nil
	}
}

// WithRecoverer enables recovery from fatal poll errors.
func WithRecoverer(r Recoverer) Option {
	return func(m *Mapper) error {
		m.recoverer = r
		return nil
	}
}

// Mapper is the steady-state control loop. It is not safe for concurrent
// use; only Metrics may be called from another goroutine.
type Mapper struct {
	cooldownUntil time.Time
	ctrl          Controller
	sink          Sink
	recoverer     Recoverer
	config        *Config
	now           func() time.Time
	profileHook   func(from, to Profile)
	trackers      map[Profile]*EdgeTracker
	metrics       struct {
		ticks, skipped, events, rotations, ledErrors, recoveries atomic.Int64
	}
	consecutiveErrors int
	profile           Profile
	disconnected      bool
	shutdown          bool
}

// New creates a mapper driving sink from ctrl. A nil config selects
// DefaultConfig.
func New(ctrl Controller, sink Sink, cfg *Config, opts ...Option) (*Mapper, error) {
	if ctrl == nil || sink == nil {
		return nil, fmt.Errorf("%w: controller and sink are required", ErrInvalidConfig)
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := *cfg
	m := &Mapper{
		ctrl:     ctrl,
		sink:     sink,
		config:   &c,
		now:      time.Now,
		profile:  c.InitialProfile,
		trackers: make(map[Profile]*EdgeTracker, len(profileOrder)),
	}
	for _, p := range profileOrder {
		m.trackers[p] = NewEdgeTracker()
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Start selects the streaming report mode and lights the LED of the
// current profile.
func (m *Mapper) Start(ctx context.Context) error {
	if err := m.ctrl.StartStreaming(ctx); err != nil {
		return fmt.Errorf("start streaming: %w", err)
	}
	m.showProfile(ctx)
	return nil
}

// Run starts streaming and ticks until Home is pressed, ctx is done or the
// error limit is reached. On exit held outputs are released and the
// controller is returned to its minimal report mode. Home returns nil.
func (m *Mapper) Run(ctx context.Context) (err error) {
	if err := m.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if serr := m.Shutdown(context.WithoutCancel(ctx)); serr != nil && err == nil {
			err = serr
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("mapper stopped: %w", err)
		}
		if err := m.Tick(ctx); err != nil {
			if errors.Is(err, ErrDisconnected) {
				return nil
			}
			return err
		}
	}
}

// Tick polls one frame and applies it. A failed poll skips the tick and
// keeps the previous state; it is only returned once the consecutive error
// limit is hit or recovery fails.
func (m *Mapper) Tick(ctx context.Context) error {
	if m.disconnected {
		return ErrDisconnected
	}

	st, err := m.ctrl.Poll(ctx)
	if err != nil {
		return m.handlePollError(ctx, err)
	}
	m.consecutiveErrors = 0
	return m.Step(ctx, st)
}

// Step applies one decoded state: profile dispatch, edge tracking,
// rotation and the Home check, in that order.
func (m *Mapper) Step(ctx context.Context, st wiimote.State) error {
	if m.disconnected {
		return ErrDisconnected
	}
	m.metrics.ticks.Add(1)

	m.dispatch(&st)
	m.rotate(ctx, st.Buttons)

	if st.Buttons.Home {
		m.disconnected = true
		wiimote.Debugf("mapper: home pressed, disconnecting")
		return ErrDisconnected
	}
	return nil
}

// Shutdown releases every held output and sets the minimal report mode.
// Only the first call has an effect.
func (m *Mapper) Shutdown(ctx context.Context) error {
	if m.shutdown {
		return nil
	}
	m.shutdown = true
	m.disconnected = true

	m.releaseAll(m.profile)
	if err := m.ctrl.SetReportMode(ctx, wiimote.ReportModeButtons, false); err != nil {
		return fmt.Errorf("restore report mode: %w", err)
	}
	return nil
}

// Profile returns the active profile.
func (m *Mapper) Profile() Profile { return m.profile }

// Disconnected reports whether Home was pressed or Shutdown ran.
func (m *Mapper) Disconnected() bool { return m.disconnected }

// Held returns the controls of the active profile currently pressed.
func (m *Mapper) Held() []Control { return m.trackers[m.profile].Held() }

// Metrics returns a snapshot of the loop counters.
func (m *Mapper) Metrics() Metrics {
	return Metrics{
		Ticks:        m.metrics.ticks.Load(),
		SkippedTicks: m.metrics.skipped.Load(),
		Events:       m.metrics.events.Load(),
		Rotations:    m.metrics.rotations.Load(),
		LEDErrors:    m.metrics.ledErrors.Load(),
		Recoveries:   m.metrics.recoveries.Load(),
	}
}

func (m *Mapper) dispatch(st *wiimote.State) {
	t := tableFor(m.profile)
	if t.continuous != nil {
		t.continuous(m, st)
	}

	tracker := m.trackers[m.profile]
	for _, b := range t.bindings {
		switch tracker.Update(b.control, b.active(st, m.config)) {
		case EdgeRising:
			m.press(b.output, true)
		case EdgeFalling:
			m.press(b.output, false)
		case EdgeNone:
		}
	}
}

// rotate applies Minus and Plus as levels. Within the cooldown both are
// ignored but the tick is otherwise processed normally.
func (m *Mapper) rotate(ctx context.Context, b wiimote.ButtonState) {
	if !b.Minus && !b.Plus {
		return
	}
	now := m.now()
	if now.Before(m.cooldownUntil) {
		return
	}

	next := m.profile
	if b.Minus {
		next = next.Prev()
	}
	if b.Plus {
		next = next.Next()
	}
	m.cooldownUntil = now.Add(m.config.RotationCooldown)
	m.metrics.rotations.Add(1)

	if next != m.profile {
		prev := m.profile
		m.releaseAll(prev)
		m.profile = next
		wiimote.Debugf("mapper: profile %s -> %s", prev, next)
		if m.profileHook != nil {
			m.profileHook(prev, next)
		}
	}
	m.showProfile(ctx)
}

// releaseAll sends the release event of every output p still holds and
// clears its tracker, so the next profile starts without stale edges.
func (m *Mapper) releaseAll(p Profile) {
	tracker := m.trackers[p]
	t := tableFor(p)
	released := make(map[Output]bool)
	for _, c := range tracker.Held() {
		b, ok := t.lookup(c)
		if !ok || released[b.output] {
			continue
		}
		released[b.output] = true
		m.press(b.output, false)
	}
	tracker.Reset()
}

func (m *Mapper) showProfile(ctx context.Context) {
	if err := m.ctrl.SetLEDs(ctx, m.profile.LEDs()); err != nil {
		m.metrics.ledErrors.Add(1)
		wiimote.Debugf("mapper: LED indicator for %s: %v", m.profile, err)
	}
}

func (m *Mapper) handlePollError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("mapper stopped: %w", ctxErr)
	}
	m.metrics.skipped.Add(1)
	m.consecutiveErrors++
	wiimote.Debugf("mapper: skipping tick: %v", err)

	if wiimote.IsFatal(err) && m.recoverer != nil {
		return m.recover(ctx, err)
	}
	if limit := m.config.MaxConsecutiveErrors; limit > 0 && m.consecutiveErrors >= limit {
		return fmt.Errorf("%w: %d in a row, last: %w", ErrTooManyErrors, m.consecutiveErrors, err)
	}
	return nil
}

func (m *Mapper) recover(ctx context.Context, cause error) error {
	m.releaseAll(m.profile)
	ctrl, err := m.recoverer.Recover(ctx)
	if err != nil {
		return fmt.Errorf("recover from %w: %w", cause, err)
	}
	m.ctrl = ctrl
	m.consecutiveErrors = 0
	m.metrics.recoveries.Add(1)
	wiimote.Debugf("mapper: controller recovered")
	return m.Start(ctx)
}

func (m *Mapper) press(o Output, down bool) {
	m.metrics.events.Add(1)
	o.emit(m.sink, down)
}

func (m *Mapper) move(dx, dy int) {
	if dx == 0 && dy == 0 {
		return
	}
	m.metrics.events.Add(1)
	m.sink.MouseMove(dx, dy)
}

func (m *Mapper) wheel(delta int) {
	m.metrics.events.Add(1)
	m.sink.MouseWheel(delta)
}
