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

	"github.com/ZaparooProject/go-wiimote/detection"
)

// TransportFactory is a function type for creating transports
type TransportFactory func(path string) (Transport, error)

// TransportFromDeviceFactory is a function type for creating transports from detected devices
type TransportFromDeviceFactory func(device detection.DeviceInfo) (Transport, error)

// DeviceDetector lists candidate devices, detection.DetectAll by default.
type DeviceDetector func(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error)

// ConnectOption represents a functional option for Connect
type ConnectOption func(*connectConfig) error

type connectConfig struct {
	transportFactory       TransportFactory
	transportDeviceFactory TransportFromDeviceFactory
	deviceDetector         DeviceDetector
	detectOptions          *detection.Options
	retry                  *RetryConfig
	deviceOptions          []Option
	autoDetect             bool
}

// WithAutoDetection enables automatic device detection instead of using a specific path
func WithAutoDetection() ConnectOption {
	return func(c *connectConfig) error {
		c.autoDetect = true
		return nil
	}
}

// WithDetectionOptions overrides detection.DefaultOptions for auto-detection.
func WithDetectionOptions(opts detection.Options) ConnectOption {
	return func(c *connectConfig) error {
		c.detectOptions = &opts
		return nil
	}
}

// WithDeviceOptions adds device-level options
func WithDeviceOptions(opts ...Option) ConnectOption {
	return func(c *connectConfig) error {
		c.deviceOptions = append(c.deviceOptions, opts...)
		return nil
	}
}

// WithTransportFactory sets the transport factory function
func WithTransportFactory(factory TransportFactory) ConnectOption {
	return func(c *connectConfig) error {
		c.transportFactory = factory
		return nil
	}
}

// WithTransportFromDeviceFactory sets the transport from device factory function
func WithTransportFromDeviceFactory(factory TransportFromDeviceFactory) ConnectOption {
	return func(c *connectConfig) error {
		c.transportDeviceFactory = factory
		return nil
	}
}

// WithConnectRetry retries transport creation and the handshake on
// retryable errors. A nil config uses DefaultRetryConfig. Without this
// option Connect makes a single attempt.
func WithConnectRetry(config *RetryConfig) ConnectOption {
	return func(c *connectConfig) error {
		if config == nil {
			config = DefaultRetryConfig()
		}
		c.retry = config
		return nil
	}
}

// WithDeviceDetector sets a custom device detector function for auto-detection
func WithDeviceDetector(detector DeviceDetector) ConnectOption {
	return func(c *connectConfig) error {
		c.deviceDetector = detector
		return nil
	}
}

// Connect creates a transport from a path or auto-detection and runs Open on
// it. The transport is closed when the handshake fails.
//
// Example usage:
//
//	dev, err := wiimote.Connect(ctx, "/dev/hidraw3",
//		wiimote.WithTransportFactory(openHIDRaw))
//
//	dev, err := wiimote.Connect(ctx, "", wiimote.WithAutoDetection(),
//		wiimote.WithTransportFromDeviceFactory(openDetected))
func Connect(ctx context.Context, path string, opts ...ConnectOption) (*Device, error) {
	config := &connectConfig{}
	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, fmt.Errorf("failed to apply connect option: %w", err)
		}
	}

	if config.retry == nil {
		return connectOnce(ctx, path, config)
	}

	var device *Device
	err := RetryWithConfig(ctx, config.retry, func(ctx context.Context) error {
		d, err := connectOnce(ctx, path, config)
		if err != nil {
			return err
		}
		device = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return device, nil
}

func connectOnce(ctx context.Context, path string, config *connectConfig) (*Device, error) {
	transport, err := createTransport(ctx, path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	device, err := Open(ctx, transport, config.deviceOptions...)
	if err != nil {
		_ = transport.Close()
		return nil, err
	}
	return device, nil
}

func createTransport(ctx context.Context, path string, config *connectConfig) (Transport, error) {
	if !config.autoDetect && path != "" {
		if config.transportFactory == nil {
			return nil, errors.New("transport factory not provided")
		}
		transport, err := config.transportFactory(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create transport for path %s: %w", path, err)
		}
		return transport, nil
	}

	detectOpts := detection.DefaultOptions()
	if config.detectOptions != nil {
		detectOpts = *config.detectOptions
	}
	detect := config.deviceDetector
	if detect == nil {
		detect = detection.DetectAll
	}

	devices, err := detect(ctx, &detectOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to detect devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, ErrDeviceNotFound
	}
	if config.transportDeviceFactory == nil {
		return nil, errors.New("transport device factory not provided")
	}

	Debugf("using detected device %s", devices[0])
	return config.transportDeviceFactory(devices[0])
}
