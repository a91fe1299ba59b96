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

// Package frame holds the fixed-size wire format shared by the device
// session, the transports and the test simulator.
package frame

// Size is the length of every frame exchanged with the device, in both
// directions.
const Size = 22

// Frame is one fixed-length report or command. Byte 0 is the report id
// (inbound) or opcode (outbound).
type Frame [Size]byte

// Input report ids (device to host)
const (
	ReportStatus          = 0x20 // Controller status
	ReportReadData        = 0x21 // Memory/register read response
	ReportWriteAck        = 0x22 // Acknowledge of an output report
	ReportButtons         = 0x30 // Core buttons only
	ReportButtonsAccel    = 0x31 // Core buttons + accelerometer
	ReportButtonsAccelExt = 0x35 // Core buttons + accelerometer + 16 extension bytes
)

// Output report opcodes (host to device)
const (
	OpLEDs       = 0x11 // Player LEDs, byte 1 = LED mask | rumble
	OpReportMode = 0x12 // Data reporting mode, byte 1 = continuous, byte 2 = mode
	OpStatus     = 0x15 // Status request
	OpWriteData  = 0x16 // Write memory/registers
	OpReadData   = 0x17 // Read memory/registers
	OpRumble     = 0x1A // Rumble toggle
)

// Flag bits carried in output report byte 1
const (
	RumbleBit     = 0x01
	ContinuousBit = 0x04
)

// Status flag bits (status report byte 3)
const (
	StatusExtension  = 0x02
	StatusSpeaker    = 0x04
	StatusContinuous = 0x08
	StatusLEDMask    = 0xF0
)

// Memory addresses used during initialization. The top byte selects the
// address space (0x00 EEPROM, 0x04 control registers).
const (
	AddrMoteCalibration = 0x00000016
	AddrExtensionEnable = 0x04A40040
	AddrExtensionCal    = 0x04A40020
)

// Block sizes of the calibration reads
const (
	MoteCalibrationSize      = 7
	ExtensionCalibrationSize = 14
)

// Payload limits
const (
	MaxWritePayload = 16 // bytes 6..21 of a write-data command
	MaxReadPayload  = 16 // bytes 6..21 of a read-data response
)

// Offsets into input reports
const (
	OffsetButtons    = 1
	OffsetAccel      = 3
	OffsetExtension  = 6
	ExtensionLength  = 11 // bytes 6..16 inclusive
	OffsetStatusFlag = 3
	OffsetBattery    = 6
)

// Extension button bits in decrypted payload byte 5, active low
const (
	ExtensionButtonZ = 0x01
	ExtensionButtonC = 0x02
)
