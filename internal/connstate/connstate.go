// Package connstate names the link states shared by the network connector
// and the broker client.
package connstate

import "sync/atomic"

type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Value holds a State for lock-free reads across goroutines.
type Value struct {
	v atomic.Int32
}

func (v *Value) Load() State {
	return State(v.v.Load())
}

// Store sets s and returns the previous state.
func (v *Value) Store(s State) State {
	return State(v.v.Swap(int32(s)))
}
