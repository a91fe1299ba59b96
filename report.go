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
	"encoding/binary"
	"fmt"

	"github.com/ZaparooProject/go-wiimote/internal/frame"
)

// Frame is one fixed-size report or command.
type Frame = frame.Frame

// FrameSize is the length of every frame.
const FrameSize = frame.Size

// ReportMode selects which input report the device streams.
type ReportMode byte

// Supported report modes
const (
	ReportModeButtons         ReportMode = frame.ReportButtons
	ReportModeButtonsAccel    ReportMode = frame.ReportButtonsAccel
	ReportModeButtonsAccelExt ReportMode = frame.ReportButtonsAccelExt
)

// String returns a readable mode name.
func (m ReportMode) String() string {
	switch m {
	case ReportModeButtons:
		return "buttons"
	case ReportModeButtonsAccel:
		return "buttons+accel"
	case ReportModeButtonsAccelExt:
		return "buttons+accel+ext"
	default:
		return fmt.Sprintf("mode(0x%02X)", byte(m))
	}
}

// HasAccel reports whether frames in this mode carry accelerometer bytes.
func (m ReportMode) HasAccel() bool {
	return m == ReportModeButtonsAccel || m == ReportModeButtonsAccelExt
}

// HasExtension reports whether frames in this mode carry extension bytes.
func (m ReportMode) HasExtension() bool {
	return m == ReportModeButtonsAccelExt
}

// AxisSample is one raw accelerometer reading.
type AxisSample struct {
	X, Y, Z byte
}

// StickSample is one raw analog stick reading.
type StickSample struct {
	X, Y byte
}

// Report is a decoded inbound frame. Decode never fails; frames it does not
// understand decode to Unrecognized.
type Report interface {
	// ID returns the report id byte the frame was tagged with.
	ID() byte
	// Encode rebuilds the wire frame.
	Encode() Frame
}

// StatusFlags is the status byte of a status report.
type StatusFlags byte

// ExtensionPresent reports bit 1.
func (s StatusFlags) ExtensionPresent() bool { return byte(s)&frame.StatusExtension != 0 }

// Speaker reports bit 2.
func (s StatusFlags) Speaker() bool { return byte(s)&frame.StatusSpeaker != 0 }

// Continuous reports bit 3.
func (s StatusFlags) Continuous() bool { return byte(s)&frame.StatusContinuous != 0 }

// LEDs returns bits 4-7.
func (s StatusFlags) LEDs() LED { return LED(byte(s) & frame.StatusLEDMask) }

// StatusReport (0x20) answers a status request and is also sent unsolicited
// when an extension is plugged or unplugged.
type StatusReport struct {
	Buttons    ButtonState
	Flags      StatusFlags
	BatteryRaw byte
}

// ID implements Report.
func (StatusReport) ID() byte { return frame.ReportStatus }

// ExtensionPresent reports whether an extension controller is attached.
func (r StatusReport) ExtensionPresent() bool { return r.Flags.ExtensionPresent() }

// BatteryPercent converts the raw 0-200 battery level to 0-100.
func (r StatusReport) BatteryPercent() int { return int(r.BatteryRaw) / 2 }

// Encode implements Report.
func (r StatusReport) Encode() Frame {
	var f Frame
	f[0] = frame.ReportStatus
	putButtons(&f, r.Buttons)
	f[frame.OffsetStatusFlag] = byte(r.Flags)
	f[frame.OffsetBattery] = r.BatteryRaw
	return f
}

// ReadDataResponse (0x21) carries up to 16 bytes read from memory or
// registers. Only the low 16 bits of the address are echoed; the caller
// correlates responses with requests by order.
type ReadDataResponse struct {
	Buttons      ButtonState
	Error        byte // low nibble of byte 3, 0 = success
	SizeMinusOne byte // high nibble of byte 3
	Address      uint16
	Payload      [frame.MaxReadPayload]byte
}

// ID implements Report.
func (ReadDataResponse) ID() byte { return frame.ReportReadData }

// Size returns the number of valid payload bytes.
func (r ReadDataResponse) Size() int { return int(r.SizeMinusOne) + 1 }

// Data returns the valid part of the payload.
func (r ReadDataResponse) Data() []byte {
	return append([]byte(nil), r.Payload[:r.Size()]...)
}

// Encode implements Report.
func (r ReadDataResponse) Encode() Frame {
	var f Frame
	f[0] = frame.ReportReadData
	putButtons(&f, r.Buttons)
	f[3] = (r.Error & 0x0F) | (r.SizeMinusOne&0x0F)<<4
	binary.BigEndian.PutUint16(f[4:6], r.Address)
	copy(f[6:], r.Payload[:])
	return f
}

// WriteAck (0x22) acknowledges an output report. Its contents are decoded
// but the session never validates them.
type WriteAck struct {
	Buttons ButtonState
	Report  byte // opcode being acknowledged
	Error   byte
}

// ID implements Report.
func (WriteAck) ID() byte { return frame.ReportWriteAck }

// Encode implements Report.
func (r WriteAck) Encode() Frame {
	var f Frame
	f[0] = frame.ReportWriteAck
	putButtons(&f, r.Buttons)
	f[3] = r.Report
	f[4] = r.Error
	return f
}

// ExtensionPayload is the decrypted extension block of a 0x35 report.
type ExtensionPayload struct {
	Stick   StickSample
	Accel   AxisSample
	Buttons ExtensionButtons
}

// InputReport is one of the streaming modes (0x30, 0x31, 0x35).
type InputReport struct {
	Mode      ReportMode
	Buttons   ButtonState
	Accel     AxisSample        // valid when Mode.HasAccel()
	Extension *ExtensionPayload // non-nil when Mode.HasExtension()
}

// ID implements Report.
func (r InputReport) ID() byte { return byte(r.Mode) }

// Encode implements Report. The extension block is re-encrypted.
func (r InputReport) Encode() Frame {
	var f Frame
	f[0] = byte(r.Mode)
	putButtons(&f, r.Buttons)
	if r.Mode.HasAccel() {
		f[frame.OffsetAccel] = r.Accel.X
		f[frame.OffsetAccel+1] = r.Accel.Y
		f[frame.OffsetAccel+2] = r.Accel.Z
	}
	if r.Mode.HasExtension() {
		var ext [frame.ExtensionLength]byte
		if r.Extension != nil {
			ext[0] = r.Extension.Stick.X
			ext[1] = r.Extension.Stick.Y
			ext[2] = r.Extension.Accel.X
			ext[3] = r.Extension.Accel.Y
			ext[4] = r.Extension.Accel.Z
			ext[5] = r.Extension.Buttons.Byte()
		}
		for i, b := range ext {
			f[frame.OffsetExtension+i] = frame.Encrypt(b)
		}
	}
	return f
}

// ModeConfirm is how the device confirms a report mode change: it starts
// sending reports tagged with the new mode. It has no tag of its own.
type ModeConfirm struct {
	Mode    ReportMode
	Buttons ButtonState
}

// AsModeConfirm interprets r as the confirmation of a report mode change.
func AsModeConfirm(r Report) (ModeConfirm, bool) {
	in, ok := r.(InputReport)
	if !ok {
		return ModeConfirm{}, false
	}
	return ModeConfirm{Mode: in.Mode, Buttons: in.Buttons}, true
}

// Unrecognized wraps a frame with a tag the decoder does not handle.
type Unrecognized struct {
	Tag byte
	Raw Frame
}

// ID implements Report.
func (u Unrecognized) ID() byte { return u.Tag }

// Encode implements Report.
func (u Unrecognized) Encode() Frame { return u.Raw }

// Decode turns an inbound frame into a Report. It is a pure function of the
// tag byte and fixed offsets.
func Decode(f Frame) Report {
	buttons := ButtonsFromMask(binary.BigEndian.Uint16(f[frame.OffsetButtons:]))

	switch f[0] {
	case frame.ReportStatus:
		return StatusReport{
			Buttons:    buttons,
			Flags:      StatusFlags(f[frame.OffsetStatusFlag]),
			BatteryRaw: f[frame.OffsetBattery],
		}
	case frame.ReportReadData:
		r := ReadDataResponse{
			Buttons:      buttons,
			Error:        f[3] & 0x0F,
			SizeMinusOne: f[3] >> 4,
			Address:      binary.BigEndian.Uint16(f[4:6]),
		}
		copy(r.Payload[:], f[6:])
		return r
	case frame.ReportWriteAck:
		return WriteAck{Buttons: buttons, Report: f[3], Error: f[4]}
	case frame.ReportButtons:
		return InputReport{Mode: ReportModeButtons, Buttons: buttons}
	case frame.ReportButtonsAccel:
		return InputReport{
			Mode:    ReportModeButtonsAccel,
			Buttons: buttons,
			Accel:   accelAt(f, frame.OffsetAccel),
		}
	case frame.ReportButtonsAccelExt:
		ext := frame.DecryptBytes(f[frame.OffsetExtension : frame.OffsetExtension+frame.ExtensionLength])
		return InputReport{
			Mode:    ReportModeButtonsAccelExt,
			Buttons: buttons,
			Accel:   accelAt(f, frame.OffsetAccel),
			Extension: &ExtensionPayload{
				Stick:   StickSample{X: ext[0], Y: ext[1]},
				Accel:   AxisSample{X: ext[2], Y: ext[3], Z: ext[4]},
				Buttons: ExtensionButtonsFromByte(ext[5]),
			},
		}
	default:
		return Unrecognized{Tag: f[0], Raw: f}
	}
}

// Decrypt applies the extension obfuscation transform to one byte.
func Decrypt(b byte) byte {
	return frame.Decrypt(b)
}

func accelAt(f Frame, off int) AxisSample {
	return AxisSample{X: f[off], Y: f[off+1], Z: f[off+2]}
}

// putButtons writes the button word, keeping only button bits.
func putButtons(f *Frame, b ButtonState) {
	binary.BigEndian.PutUint16(f[frame.OffsetButtons:], b.Mask()&buttonMask)
}
