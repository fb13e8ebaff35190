package bank

import "sync/atomic"

// Status is the lifecycle state of the Bank and of every unit it runs.
type Status int32

const (
	// Created is the state of a bank that was never started.
	Created Status = iota

	// Running means clients perform operations and the watcher samples balances.
	Running

	// Interrupting means a stop was requested and in-flight operations are finishing.
	Interrupting

	// Stopped means every unit has confirmed termination.
	Stopped
)

// String provides a string representation of Status for logging and reports.
func (s Status) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Interrupting:
		return "interrupting"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// statusCell is an atomically readable Status.
type statusCell struct {
	v atomic.Int32
}

func (c *statusCell) load() Status {
	return Status(c.v.Load())
}

func (c *statusCell) store(s Status) {
	c.v.Store(int32(s))
}

// transition moves from one of the allowed states to next and reports whether it happened.
func (c *statusCell) transition(next Status, from ...Status) bool {
	for _, f := range from {
		if c.v.CompareAndSwap(int32(f), int32(next)) {
			return true
		}
	}

	return false
}
