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

package frame

// obfuscationKey is both the XOR mask and the additive offset.
const obfuscationKey = 0x17

// Decrypt undoes the fixed transform applied by the extension controller to
// every byte it reports: ((b XOR 0x17) + 0x17) mod 256.
func Decrypt(b byte) byte {
	return (b ^ obfuscationKey) + obfuscationKey
}

// Encrypt is the inverse of Decrypt.
func Encrypt(b byte) byte {
	return (b - obfuscationKey) ^ obfuscationKey
}

// DecryptBytes returns a decrypted copy of data.
func DecryptBytes(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = Decrypt(b)
	}
	return out
}

// EncryptBytes returns an encrypted copy of data.
func EncryptBytes(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = Encrypt(b)
	}
	return out
}
