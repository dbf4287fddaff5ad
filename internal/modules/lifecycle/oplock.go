package lifecycle

import (
	"errors"
	"sync/atomic"
)

// ErrBusy is returned when an operation is attempted while another
// state-mutating operation is in flight.
var ErrBusy = errors.New("another operation is in progress")

// OpLock is a single-slot, non-reentrant mutual exclusion over state-mutating
// operations. A second concurrent acquisition fails immediately with ErrBusy
// instead of queuing.
type OpLock struct {
	held atomic.Bool
}

// NewOpLock creates an unheld OpLock.
func NewOpLock() *OpLock {
	return &OpLock{}
}

// Do runs action while holding the lock. If the lock is already held it
// returns ErrBusy without running action. The lock is released on every exit
// path, including a panic inside action.
func (l *OpLock) Do(action func()) error {
	if !l.held.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer l.held.Store(false)

	action()
	return nil
}
