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
	"os"
	"time"

	"github.com/ZaparooProject/go-wiimote/internal/syncutil"
)

type cacheEntry struct {
	timestamp time.Time
	devices   []DeviceInfo
}

// detectionCache holds the last result per transport. A Wiimote drops its
// hidraw node when it powers down or loses the Bluetooth link, so an entry
// naming a node that has gone is discarded before its TTL runs out.
type detectionCache struct {
	entries map[string]cacheEntry
	mu      syncutil.Mutex
}

var cache = &detectionCache{
	entries: make(map[string]cacheEntry),
}

// nodeExists reports whether a device node is still present.
var nodeExists = func(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// getCached returns a copy of the cached devices while the entry is fresh
// and every device node in it still exists.
func getCached(transport string, ttl time.Duration) ([]DeviceInfo, bool) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	entry, exists := cache.entries[transport]
	if !exists {
		return nil, false
	}
	if time.Since(entry.timestamp) > ttl {
		delete(cache.entries, transport)
		return nil, false
	}
	for _, d := range entry.devices {
		if d.Path != "" && !nodeExists(d.Path) {
			delete(cache.entries, transport)
			return nil, false
		}
	}
	return append([]DeviceInfo(nil), entry.devices...), true
}

func setCached(transport string, devices []DeviceInfo) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	cache.entries[transport] = cacheEntry{
		devices:   append([]DeviceInfo(nil), devices...),
		timestamp: time.Now(),
	}
}

func clearCache() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.entries = make(map[string]cacheEntry)
}

func clearCacheForTransport(transport string) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	delete(cache.entries, transport)
}
