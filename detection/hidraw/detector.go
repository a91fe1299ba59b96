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

// Package hidraw detects Wiimotes exposed by the Linux hid-generic or
// hid-wiimote drivers as /dev/hidrawN nodes.
package hidraw

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/ZaparooProject/go-wiimote/detection"
)

// TransportName is the transport string this detector reports.
const TransportName = "hidraw"

// Detector scans sysfs for hidraw nodes.
type Detector struct {
	// SysfsRoot is the hidraw class directory, /sys/class/hidraw by default
	SysfsRoot string
	// DevRoot is where device nodes live, /dev by default
	DevRoot string
}

func init() {
	detection.RegisterDetector(&Detector{})
}

// Transport implements detection.Detector.
func (*Detector) Transport() string { return TransportName }

// Detect implements detection.Detector.
func (d *Detector) Detect(ctx context.Context, opts *detection.Options) ([]detection.DeviceInfo, error) {
	sysfs, dev := d.SysfsRoot, d.DevRoot
	if sysfs == "" {
		if runtime.GOOS != "linux" {
			return nil, detection.ErrUnsupportedPlatform
		}
		sysfs = "/sys/class/hidraw"
	}
	if dev == "" {
		dev = "/dev"
	}

	entries, err := os.ReadDir(sysfs)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", sysfs, err)
	}

	var devices []detection.DeviceInfo
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, detection.ErrDetectionTimeout
		}

		id, err := readUevent(filepath.Join(sysfs, entry.Name(), "device", "uevent"))
		if err != nil {
			continue
		}
		confidence, ok := detection.Classify(id.vendor, id.product, opts.Allow)
		if !ok {
			continue
		}

		vidpid := detection.FormatVIDPID(id.vendor, id.product)
		path := filepath.Join(dev, entry.Name())
		if detection.IsPathIgnored(path, opts.IgnorePaths) || detection.IsBlocked(vidpid, opts.Blocklist) {
			continue
		}

		devices = append(devices, detection.DeviceInfo{
			Transport:  TransportName,
			Path:       path,
			Name:       id.name,
			Confidence: confidence,
			Metadata: map[string]string{
				"vidpid": vidpid,
				"bus":    busName(id.bus),
			},
		})
	}

	if len(devices) == 0 {
		return nil, detection.ErrNoDevicesFound
	}
	return devices, nil
}

type hidID struct {
	name    string
	bus     uint16
	vendor  uint16
	product uint16
}

// readUevent parses HID_ID=bbbb:vvvvvvvv:pppppppp and HID_NAME.
func readUevent(path string) (hidID, error) {
	f, err := os.Open(path) //nolint:gosec // path is built from a sysfs listing
	if err != nil {
		return hidID{}, fmt.Errorf("open uevent: %w", err)
	}
	defer func() { _ = f.Close() }()

	var id hidID
	var found bool
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		switch key {
		case "HID_ID":
			if id.bus, id.vendor, id.product, err = parseHIDID(value); err != nil {
				return hidID{}, err
			}
			found = true
		case "HID_NAME":
			id.name = value
		}
	}
	if err := scanner.Err(); err != nil {
		return hidID{}, fmt.Errorf("read uevent: %w", err)
	}
	if !found {
		return hidID{}, fmt.Errorf("no HID_ID in %s", path)
	}
	return id, nil
}

func parseHIDID(value string) (bus, vendor, product uint16, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("malformed HID_ID %q", value)
	}
	var nums [3]uint64
	for i, p := range parts {
		if nums[i], err = strconv.ParseUint(p, 16, 32); err != nil {
			return 0, 0, 0, fmt.Errorf("malformed HID_ID %q: %w", value, err)
		}
		if nums[i] > 0xFFFF {
			return 0, 0, 0, fmt.Errorf("HID_ID field out of range in %q", value)
		}
	}
	return uint16(nums[0]), uint16(nums[1]), uint16(nums[2]), nil
}

func busName(bus uint16) string {
	switch bus {
	case 0x03:
		return "usb"
	case 0x05:
		return "bluetooth"
	default:
		return fmt.Sprintf("0x%04x", bus)
	}
}
