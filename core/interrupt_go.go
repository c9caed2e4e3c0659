//go:build !tinygo

package core

import "sync/atomic"

// InterruptState is the saved interrupt mask on regular Go
type InterruptState uintptr

// maskDepth counts nested DisableInterrupts calls so simulated peripherals
// can hold back interrupt delivery while a critical section is open.
var maskDepth int32

// DisableInterrupts masks (simulated) interrupts and returns the previous state
func DisableInterrupts() InterruptState {
	return InterruptState(atomic.AddInt32(&maskDepth, 1) - 1)
}

// RestoreInterrupts restores the state returned by DisableInterrupts
func RestoreInterrupts(state InterruptState) {
	atomic.StoreInt32(&maskDepth, int32(state))
}

// InterruptsMasked reports whether a critical section is currently open.
func InterruptsMasked() bool {
	return atomic.LoadInt32(&maskDepth) > 0
}
