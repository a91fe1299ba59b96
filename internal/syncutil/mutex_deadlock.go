//go:build deadlock

// Package syncutil provides the lock type shared by transports and test
// doubles. This file is compiled when building with -tags=deadlock.
package syncutil

import deadlock "github.com/sasha-s/go-deadlock"

// Mutex wraps deadlock.Mutex so lock-order inversions between a transport
// and its caller are reported instead of hanging.
type Mutex struct {
	deadlock.Mutex
}
