// Copyright ©2026 The go-linalg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

// EventKind identifies the stage of the iterative process that an Event
// reports.
type EventKind int

const (
	// Initialization is fired exactly once after the method has set up
	// the iterative process. Initialization counts as iteration one.
	Initialization EventKind = iota + 1
	// IterationStarted is fired before the work of each subsequent
	// iteration begins.
	IterationStarted
	// IterationPerformed is fired after each iteration with the refined
	// solution estimate.
	IterationPerformed
	// Termination is fired exactly once when the solve finishes,
	// regardless of the exit path (convergence, iteration limit, or a
	// fatal numerical error).
	Termination
)

// String returns the name of the event kind.
func (k EventKind) String() string {
	switch k {
	case Initialization:
		return "Initialization"
	case IterationStarted:
		return "IterationStarted"
	case IterationPerformed:
		return "IterationPerformed"
	case Termination:
		return "Termination"
	default:
		return "Unknown"
	}
}

// Event is a snapshot of the state of an iterative solve. The slices
// reference live buffers of the solve, they are valid only for the
// duration of the Monitor call and must be copied if retained.
type Event struct {
	// Kind is the stage being reported.
	Kind EventKind
	// Iteration is the iteration count. Initialization is reported with
	// count one, an IterationStarted event carries the count of the
	// iteration it opens.
	Iteration int
	// X is the current solution estimate.
	X []float64
	// B is the right-hand side of the system.
	B []float64
	// ResidualNorm is (an estimate of) the norm of the current
	// (possibly preconditioned) residual.
	ResidualNorm float64
	// Residual is the current residual vector, or nil if the method
	// does not maintain one explicitly.
	Residual []float64
}

// Monitor observes the progress of a solve. It is called synchronously
// from LinearSolve and must not modify the event's slices.
type Monitor func(Event)
