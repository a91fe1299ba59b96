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
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-wiimote/internal/frame"
)

// Output report opcodes
const (
	cmdLEDs       = frame.OpLEDs
	cmdReportMode = frame.OpReportMode
	cmdStatus     = frame.OpStatus
	cmdWriteData  = frame.OpWriteData
	cmdReadData   = frame.OpReadData
	cmdRumble     = frame.OpRumble
)

// LED is a player LED mask as sent in byte 1 of an LED command.
type LED byte

// Player LEDs
const (
	LEDNone  LED = 0x00
	LEDOne   LED = 0x10
	LEDTwo   LED = 0x20
	LEDThree LED = 0x40
	LEDFour  LED = 0x80
)

// ErrUnknownCommand is returned by DecodeCommand for opcodes it does not
// know how to parse.
var ErrUnknownCommand = errors.New("unknown command opcode")

// Command is an outbound frame.
type Command interface {
	Opcode() byte
	Encode() Frame
}

// SetReportModeCommand selects the streaming report mode (0x12).
type SetReportModeCommand struct {
	Mode       ReportMode
	Continuous bool
}

// Opcode implements Command.
func (SetReportModeCommand) Opcode() byte { return cmdReportMode }

// Encode implements Command.
func (c SetReportModeCommand) Encode() Frame {
	var f Frame
	f[0] = cmdReportMode
	if c.Continuous {
		f[1] = frame.ContinuousBit
	}
	f[2] = byte(c.Mode)
	return f
}

// StatusRequestCommand asks for a status report (0x15).
type StatusRequestCommand struct {
	Rumble bool
}

// Opcode implements Command.
func (StatusRequestCommand) Opcode() byte { return cmdStatus }

// Encode implements Command.
func (c StatusRequestCommand) Encode() Frame {
	var f Frame
	f[0] = cmdStatus
	if c.Rumble {
		f[1] = frame.RumbleBit
	}
	return f
}

// WriteDataCommand writes up to 16 bytes at Address (0x16).
type WriteDataCommand struct {
	Data    []byte
	Address uint32
}

// Opcode implements Command.
func (WriteDataCommand) Opcode() byte { return cmdWriteData }

// Validate checks the payload fits into one frame.
func (c WriteDataCommand) Validate() error {
	if len(c.Data) == 0 || len(c.Data) > frame.MaxWritePayload {
		return fmt.Errorf("%w: write payload %d bytes, want 1-%d",
			ErrInvalidParameter, len(c.Data), frame.MaxWritePayload)
	}
	return nil
}

// Encode implements Command. Payloads longer than 16 bytes are truncated;
// call Validate first.
func (c WriteDataCommand) Encode() Frame {
	var f Frame
	f[0] = cmdWriteData
	binary.BigEndian.PutUint32(f[1:5], c.Address)
	n := copy(f[6:], c.Data)
	f[5] = byte(n)
	return f
}

// ReadDataCommand requests Size bytes starting at Address (0x17).
type ReadDataCommand struct {
	Address uint32
	Size    uint16
}

// Opcode implements Command.
func (ReadDataCommand) Opcode() byte { return cmdReadData }

// Encode implements Command.
func (c ReadDataCommand) Encode() Frame {
	var f Frame
	f[0] = cmdReadData
	binary.BigEndian.PutUint32(f[1:5], c.Address)
	binary.BigEndian.PutUint16(f[5:7], c.Size)
	return f
}

// SetLEDsCommand lights the player LEDs (0x11), optionally keeping the
// rumble motor running.
type SetLEDsCommand struct {
	LEDs   LED
	Rumble bool
}

// Opcode implements Command.
func (SetLEDsCommand) Opcode() byte { return cmdLEDs }

// Encode implements Command.
func (c SetLEDsCommand) Encode() Frame {
	var f Frame
	f[0] = cmdLEDs
	f[1] = byte(c.LEDs)
	if c.Rumble {
		f[1] |= frame.RumbleBit
	}
	return f
}

// SetRumbleCommand toggles the rumble motor (0x1a).
type SetRumbleCommand struct {
	On bool
}

// Opcode implements Command.
func (SetRumbleCommand) Opcode() byte { return cmdRumble }

// Encode implements Command.
func (c SetRumbleCommand) Encode() Frame {
	var f Frame
	f[0] = cmdRumble
	if c.On {
		f[1] = frame.RumbleBit
	}
	return f
}

// DecodeCommand parses an outbound frame. It is used by simulators and
// frame tracing.
func DecodeCommand(f Frame) (Command, error) {
	switch f[0] {
	case cmdReportMode:
		return SetReportModeCommand{
			Mode:       ReportMode(f[2]),
			Continuous: f[1]&frame.ContinuousBit != 0,
		}, nil
	case cmdStatus:
		return StatusRequestCommand{Rumble: f[1]&frame.RumbleBit != 0}, nil
	case cmdWriteData:
		n := int(f[5])
		if n > frame.MaxWritePayload {
			n = frame.MaxWritePayload
		}
		return WriteDataCommand{
			Address: binary.BigEndian.Uint32(f[1:5]),
			Data:    append([]byte(nil), f[6:6+n]...),
		}, nil
	case cmdReadData:
		return ReadDataCommand{
			Address: binary.BigEndian.Uint32(f[1:5]),
			Size:    binary.BigEndian.Uint16(f[5:7]),
		}, nil
	case cmdLEDs:
		return SetLEDsCommand{
			LEDs:   LED(f[1] &^ frame.RumbleBit),
			Rumble: f[1]&frame.RumbleBit != 0,
		}, nil
	case cmdRumble:
		return SetRumbleCommand{On: f[1]&frame.RumbleBit != 0}, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownCommand, f[0])
	}
}
