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

package hidraw

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaparooProject/go-wiimote/detection"
)

func writeNode(t *testing.T, root, name, uevent string) {
	t.Helper()
	dir := filepath.Join(root, name, "device")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "uevent"), []byte(uevent), 0o600))
}

func TestDetect_FindsWiimotes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeNode(t, root, "hidraw0", "DRIVER=hid-generic\nHID_ID=0003:0000046D:0000C52B\nHID_NAME=Logitech Receiver\n")
	writeNode(t, root, "hidraw1", "DRIVER=wiimote\nHID_ID=0005:0000057E:00000306\nHID_NAME=Nintendo RVL-CNT-01\n")
	writeNode(t, root, "hidraw2", "HID_ID=0005:0000057E:00002009\nHID_NAME=Pro Controller\n")
	writeNode(t, root, "hidraw3", "garbage\n")

	d := &Detector{SysfsRoot: root, DevRoot: "/dev"}
	opts := detection.DefaultOptions()

	devices, err := d.Detect(context.Background(), &opts)
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, "/dev/hidraw1", devices[0].Path)
	assert.Equal(t, "Nintendo RVL-CNT-01", devices[0].Name)
	assert.Equal(t, detection.High, devices[0].Confidence)
	assert.Equal(t, "057E:0306", devices[0].Metadata["vidpid"])
	assert.Equal(t, "bluetooth", devices[0].Metadata["bus"])

	assert.Equal(t, "/dev/hidraw2", devices[1].Path)
	assert.Equal(t, detection.Medium, devices[1].Confidence)
}

func TestDetect_HonoursIgnoreAndBlocklist(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeNode(t, root, "hidraw1", "HID_ID=0005:0000057E:00000306\n")
	writeNode(t, root, "hidraw4", "HID_ID=0005:0000057E:00000330\n")

	d := &Detector{SysfsRoot: root, DevRoot: "/dev"}
	opts := detection.DefaultOptions()
	opts.IgnorePaths = []string{"/dev/hidraw1"}
	opts.Blocklist = []string{"057E:0330"}

	_, err := d.Detect(context.Background(), &opts)
	require.ErrorIs(t, err, detection.ErrNoDevicesFound)
}

func TestDetect_MissingSysfs(t *testing.T) {
	t.Parallel()

	d := &Detector{SysfsRoot: filepath.Join(t.TempDir(), "absent")}
	opts := detection.DefaultOptions()

	_, err := d.Detect(context.Background(), &opts)
	require.Error(t, err)
}

func TestParseHIDID(t *testing.T) {
	t.Parallel()

	bus, vid, pid, err := parseHIDID("0005:0000057E:00000306")
	require.NoError(t, err)
	assert.Equal(t, uint16(0x05), bus)
	assert.Equal(t, uint16(0x057e), vid)
	assert.Equal(t, uint16(0x0306), pid)

	_, _, _, err = parseHIDID("0005:057E")
	require.Error(t, err)
	_, _, _, err = parseHIDID("0005:0001057E:00000306")
	require.Error(t, err)
	_, _, _, err = parseHIDID("zz:57E:306")
	require.Error(t, err)
}
