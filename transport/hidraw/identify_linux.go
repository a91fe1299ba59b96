//go:build linux

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
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// identify runs HIDIOCGRAWINFO and HIDIOCGRAWNAME through the raw
// connection so the descriptor stays in non-blocking mode.
func identify(f *os.File) (Info, error) {
	conn, err := f.SyscallConn()
	if err != nil {
		return Info{}, fmt.Errorf("raw connection: %w", err)
	}

	var (
		info   Info
		ioErr  error
		rawErr error
	)
	rawErr = conn.Control(func(fd uintptr) {
		raw, err := unix.IoctlHIDGetRawInfo(int(fd))
		if err != nil {
			ioErr = fmt.Errorf("HIDIOCGRAWINFO: %w", err)
			return
		}
		info.Bus = raw.Bustype
		info.Vendor = uint16(raw.Vendor)
		info.Product = uint16(raw.Product)

		if name, err := unix.IoctlHIDGetRawName(int(fd)); err == nil {
			info.Name = name
		}
	})
	if rawErr != nil {
		return Info{}, fmt.Errorf("raw connection: %w", rawErr)
	}
	return info, ioErr
}
