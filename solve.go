// Copyright ©2026 The go-linalg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"time"

	"gonum.org/v1/gonum/floats"
)

// Settings holds various settings for
// solving a linear system.
type Settings struct {
	// X0 is an initial guess.
	// If it is nil, the zero vector will
	// be used.
	// If it is not nil, the length of X0
	// must be equal to the dimension of
	// the system. Note that SymmLQ never
	// adds the initial guess back: it
	// solves for the correction
	//  A*d = b - A*x0
	// and returns d. Callers wanting a
	// warm start must add x0 themselves.
	X0 []float64

	// Tolerance specifies error
	// tolerance for the final
	// approximate solution produced by
	// the iterative method.
	// Tolerance must be smaller than one
	// and greater than the machine
	// epsilon.
	//
	// For methods that use the caller's
	// convergence test and if NormA is
	// not zero, the stopping criterion
	// used will be
	//  |r_i| < Tolerance * (|A|*|x_i| + |b|).
	// If NormA is zero (not available),
	// the stopping criterion will be
	//  |r_i| < Tolerance * |b|.
	// SymmLQ uses its own stopping rule
	// scaled by running estimates of |A|
	// and |x|.
	Tolerance float64

	// NormA is an estimate of a norm |A|
	// of A, for example, an approximation
	// of the largest entry. Zero value
	// means that the norm is unknown,
	// and it will not be used in the
	// stopping criterion.
	NormA float64

	// MaxIterations is the limit on the
	// number of iterations, counting the
	// initialization as the first one.
	// If it is zero, it will be set to
	// twice the dimension of the system.
	MaxIterations int

	// OnIterationLimit, if non-nil, is
	// called instead of failing with
	// ErrIterationLimit whenever the
	// iteration count reaches or exceeds
	// MaxIterations without convergence.
	// A nil return lets the iteration
	// continue, a non-nil return aborts
	// the solve with that error.
	OnIterationLimit func(iterations int) error

	// PSolve describes the
	// preconditioner solve that stores
	// into dst the solution of the
	// system
	//  M z = rhs.
	// If it is nil, no preconditioning
	// will be used (M is the identity).
	// For SymmLQ and CG, M must be
	// self-adjoint and positive
	// definite.
	PSolve func(dst, rhs []float64) error

	// Dst, if non-nil, is the vector
	// that the solution will be stored
	// into and returned in Result.X. Its
	// length must be equal to the
	// dimension of the system. Any prior
	// content is discarded, Dst is never
	// an initial guess.
	Dst []float64

	// Monitor, if non-nil, observes the
	// solve. It receives exactly one
	// Initialization event, one
	// IterationStarted/IterationPerformed
	// pair per subsequent iteration, and
	// exactly one final Termination
	// event regardless of the exit path.
	Monitor Monitor
}

// DefaultSettings returns Settings with the default tolerance.
func DefaultSettings() Settings {
	return Settings{
		Tolerance: 1e-8,
	}
}

func defaultSettings(s *Settings, dim int) {
	if s.Tolerance == 0 {
		s.Tolerance = 1e-8
	}
	if s.MaxIterations == 0 {
		s.MaxIterations = 2 * dim
	}
}

// Result holds the result of an iterative solve.
type Result struct {
	// X is the approximate solution.
	X []float64
	// Stats holds the statistics of the
	// solve.
	Stats Stats
}

// Stats holds statistics about an iterative solve.
type Stats struct {
	// Iterations is the number of
	// iterations done by Method,
	// counting the initialization as the
	// first one.
	Iterations int
	// MatVec is the number of MatVec and
	// MatTransVec operations commanded
	// by a Method.
	MatVec int
	// PSolve is the number of PSolve
	// operations commanded by a Method.
	PSolve int
	// ResidualNorm is the final norm of
	// the residual.
	ResidualNorm float64
	// StartTime is an approximate time
	// when the solve was started.
	StartTime time.Time
	// Runtime is an approximate duration
	// of the solve.
	Runtime time.Duration
}

// LinearSolve solves the system of n linear equations
//  A*x = b,
// where the n×n matrix A is represented by the matrix-vector operations in a.
// The dimension of the problem n is determined by the length of b.
//
// method is an iterative method used for finding an approximate solution of the
// linear system. It must not be nil. The operations in a must provide what the
// method needs.
//
// settings provide means for adjusting the iterative process. Zero values of
// the fields mean default values.
//
// LinearSolve returns an error if the method detects a breakdown or a
// property of A or of the preconditioner that it cannot work with, or
// ErrIterationLimit if the iteration limit was reached without convergence.
// If the returned error is non-nil, the returned solution must not be
// assumed to be valid.
func LinearSolve(a MatrixOps, b []float64, method Method, settings Settings) (Result, error) {
	stats := Stats{StartTime: time.Now()}

	dim := len(b)
	if a.MatVec == nil {
		panic("iterative: nil matrix-vector multiplication")
	}
	if settings.X0 != nil && len(settings.X0) != dim {
		panic("iterative: mismatched length of initial guess")
	}
	if settings.Dst != nil && len(settings.Dst) != dim {
		panic("iterative: mismatched length of destination vector")
	}

	if dim == 0 {
		// An empty system is solved trivially, but the telemetry
		// contract still holds: one Initialization, one Termination.
		stats.Iterations = 1
		if settings.Monitor != nil {
			settings.Monitor(Event{Kind: Initialization, Iteration: 1, X: settings.Dst, B: b})
			settings.Monitor(Event{Kind: Termination, Iteration: 1, X: settings.Dst, B: b})
		}
		stats.Runtime = time.Since(stats.StartTime)
		return Result{X: settings.Dst, Stats: stats}, nil
	}

	defaultSettings(&settings, dim)
	if settings.Tolerance < dlamchE || 1 <= settings.Tolerance {
		panic("iterative: invalid tolerance")
	}

	x := settings.Dst
	if x == nil {
		x = make([]float64, dim)
	} else {
		for i := range x {
			x[i] = 0
		}
	}
	ctx := &Context{
		X:         x,
		Residual:  make([]float64, dim),
		Tolerance: settings.Tolerance,
	}
	if settings.X0 != nil {
		a.MatVec(ctx.Residual, settings.X0)
		stats.MatVec++
		floats.AddScaledTo(ctx.Residual, b, -1, ctx.Residual) // r = b - A*x0
	} else {
		copy(ctx.Residual, b) // r = b
	}
	ctx.ResidualNorm = floats.Norm(ctx.Residual, 2)

	err := iterate(a, b, ctx, settings, method, &stats)

	stats.Runtime = time.Since(stats.StartTime)
	return Result{
		X:     ctx.X,
		Stats: stats,
	}, err
}

func iterate(a MatrixOps, b []float64, ctx *Context, settings Settings, method Method, stats *Stats) error {
	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		bnorm = 1
	}

	fire := func(kind EventKind, iteration int) {
		if settings.Monitor == nil {
			return
		}
		ev := Event{
			Kind:         kind,
			Iteration:    iteration,
			X:            ctx.X,
			B:            b,
			ResidualNorm: ctx.ResidualNorm,
		}
		if ctx.ExplicitResidual {
			ev.Residual = ctx.Residual
		}
		settings.Monitor(ev)
	}

	method.Init(len(ctx.X))

	// Termination must be reported exactly once whatever the exit path.
	defer func() {
		fire(Termination, stats.Iterations)
	}()

	for {
		op, err := method.Iterate(ctx)
		if err != nil {
			return err
		}

		switch op {
		case NoOperation:

		case MatVec, MatTransVec:
			if op == MatVec {
				a.MatVec(ctx.Dst, ctx.Src)
			} else {
				if a.MatTransVec == nil {
					panic("iterative: operator is not transposable")
				}
				a.MatTransVec(ctx.Dst, ctx.Src)
			}
			stats.MatVec++

		case PSolve:
			if settings.PSolve == nil {
				copy(ctx.Dst, ctx.Src)
				continue
			}
			if err := settings.PSolve(ctx.Dst, ctx.Src); err != nil {
				return err
			}
			stats.PSolve++

		case CheckResidualNorm:
			if settings.NormA != 0 {
				xnorm := floats.Norm(ctx.X, 2)
				ctx.Converged = ctx.ResidualNorm < settings.Tolerance*(settings.NormA*xnorm+bnorm)
			} else {
				ctx.Converged = ctx.ResidualNorm/bnorm < settings.Tolerance
			}

		case EndInitialization, EndIteration:
			if op == EndInitialization {
				stats.Iterations = 1
				stats.ResidualNorm = ctx.ResidualNorm
				fire(Initialization, stats.Iterations)
			} else {
				stats.Iterations++
				stats.ResidualNorm = ctx.ResidualNorm
				fire(IterationPerformed, stats.Iterations)
			}
			if ctx.Converged {
				return nil
			}
			if stats.Iterations >= settings.MaxIterations {
				if settings.OnIterationLimit == nil {
					return ErrIterationLimit
				}
				if err := settings.OnIterationLimit(stats.Iterations); err != nil {
					return err
				}
			}
			fire(IterationStarted, stats.Iterations+1)

		default:
			panic("iterative: invalid operation")
		}
	}
}
