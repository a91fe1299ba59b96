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

package detection

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Nintendo vendor id and the controllers that speak the Wiimote protocol.
const (
	VendorNintendo   = 0x057E
	ProductWiimote   = 0x0306
	ProductWiimoteTR = 0x0330 // Wii Remote Plus
)

// KnownControllers returns the VID:PID pairs accepted by default.
func KnownControllers() []string {
	return []string{
		FormatVIDPID(VendorNintendo, ProductWiimote),
		FormatVIDPID(VendorNintendo, ProductWiimoteTR),
	}
}

// FormatVIDPID renders a vendor/product pair the way lists store it.
func FormatVIDPID(vid, pid uint16) string {
	return fmt.Sprintf("%04X:%04X", vid, pid)
}

// IsBlocked checks if a VID:PID pair appears in list (case-insensitive).
func IsBlocked(vidpid string, list []string) bool {
	vidpid = strings.ToUpper(strings.TrimSpace(vidpid))
	for _, entry := range list {
		if vidpid == strings.ToUpper(strings.TrimSpace(entry)) {
			return true
		}
	}
	return false
}

// Classify rates a VID:PID pair against the allow list.
func Classify(vid, pid uint16, allow []string) (Confidence, bool) {
	if IsBlocked(FormatVIDPID(vid, pid), allow) {
		return High, true
	}
	if vid == VendorNintendo {
		return Medium, true
	}
	return Low, false
}

// IsPathIgnored checks if a device path should be ignored.
// Supports exact path matching and normalized path comparison.
func IsPathIgnored(devicePath string, ignorePaths []string) bool {
	if devicePath == "" || len(ignorePaths) == 0 {
		return false
	}

	normalizedDevice := normalizedPath(devicePath)
	for _, ignorePath := range ignorePaths {
		if ignorePath == "" {
			continue
		}
		if devicePath == ignorePath || normalizedDevice == normalizedPath(ignorePath) {
			return true
		}
	}
	return false
}

func normalizedPath(path string) string {
	return strings.ToLower(filepath.Clean(path))
}

// FilterDevices applies IgnorePaths and Blocklist filtering to a device list.
func FilterDevices(devices []DeviceInfo, opts *Options) []DeviceInfo {
	if len(opts.IgnorePaths) == 0 && len(opts.Blocklist) == 0 {
		return devices
	}

	var filtered []DeviceInfo
	for _, device := range devices {
		if IsPathIgnored(device.Path, opts.IgnorePaths) {
			continue
		}
		if vidpid, ok := device.Metadata["vidpid"]; ok && IsBlocked(vidpid, opts.Blocklist) {
			continue
		}
		filtered = append(filtered, device)
	}
	return filtered
}
