// Copyright ©2026 The go-linalg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/go-linalg/iterative/internal/dok"
)

// laplacian1D assembles the n×n matrix of the 1-D Poisson problem, a
// symmetric positive-definite tridiagonal matrix.
func laplacian1D(n int) *dok.Matrix {
	m := dok.New(n, n)
	for i := 0; i < n; i++ {
		m.Set(i, i, 2)
		if i > 0 {
			m.Set(i, i-1, -1)
		}
		if i < n-1 {
			m.Set(i, i+1, -1)
		}
	}
	return m
}

func TestEventOrdering(t *testing.T) {
	for _, method := range []Method{&SymmLQ{}, &CG{}} {
		var events []Event
		a := OperatorOps(laplacian1D(20).Triplet())
		b := make([]float64, 20)
		b[0] = 1
		b[19] = 1
		_, err := LinearSolve(a, b, method, Settings{
			Tolerance: 1e-10,
			Monitor: func(ev Event) {
				// The slices in ev are live buffers, drop them.
				ev.X = nil
				ev.B = nil
				ev.Residual = nil
				events = append(events, ev)
			},
		})
		require.NoError(t, err)
		require.NotEmpty(t, events)

		require.Equal(t, Initialization, events[0].Kind, "first event must be Initialization")
		require.Equal(t, 1, events[0].Iteration, "initialization counts as iteration one")
		last := events[len(events)-1]
		require.Equal(t, Termination, last.Kind, "last event must be Termination")

		var inits, terms int
		for _, ev := range events {
			switch ev.Kind {
			case Initialization:
				inits++
			case Termination:
				terms++
			}
		}
		require.Equal(t, 1, inits, "Initialization must fire exactly once")
		require.Equal(t, 1, terms, "Termination must fire exactly once")

		// Between Initialization and Termination the events come in
		// started/performed pairs with matching iteration counts.
		inner := events[1 : len(events)-1]
		require.Zero(t, len(inner)%2, "unpaired iteration events")
		for i := 0; i < len(inner); i += 2 {
			started, performed := inner[i], inner[i+1]
			require.Equal(t, IterationStarted, started.Kind)
			require.Equal(t, IterationPerformed, performed.Kind)
			require.Equal(t, started.Iteration, performed.Iteration)
			require.Equal(t, 2+i/2, started.Iteration)
		}
	}
}

func TestEventResidual(t *testing.T) {
	a := OperatorOps(laplacian1D(10).Triplet())
	b := make([]float64, 10)
	b[0] = 1

	// CG maintains an explicit residual and reports it.
	var sawResidual bool
	_, err := LinearSolve(a, b, &CG{}, Settings{
		Monitor: func(ev Event) {
			if ev.Kind == IterationPerformed && ev.Residual != nil {
				sawResidual = true
				require.InDelta(t, ev.ResidualNorm, floats.Norm(ev.Residual, 2), 1e-12)
			}
		},
	})
	require.NoError(t, err)
	require.True(t, sawResidual, "CG events must carry the residual vector")

	// SymmLQ only estimates the residual norm.
	_, err = LinearSolve(a, b, &SymmLQ{}, Settings{
		Monitor: func(ev Event) {
			require.Nil(t, ev.Residual, "SymmLQ events must not carry a residual vector")
		},
	})
	require.NoError(t, err)
}

func TestTerminationOnError(t *testing.T) {
	// Termination must fire exactly once even when the solve fails.
	rnd := rand.New(rand.NewSource(17))
	a, b, _ := randomSPD(50, rnd)
	var terms int
	_, err := LinearSolve(a, b, &SymmLQ{}, Settings{
		Tolerance:     1e-13,
		MaxIterations: 2,
		Monitor: func(ev Event) {
			if ev.Kind == Termination {
				terms++
			}
		},
	})
	require.ErrorIs(t, err, ErrIterationLimit)
	require.Equal(t, 1, terms)
}

func TestOperatorOps(t *testing.T) {
	m := laplacian1D(4)
	ops := OperatorOps(m)
	require.NotNil(t, ops.MatVec)
	require.NotNil(t, ops.MatTransVec, "dok matrices are transposable")

	x := []float64{1, 1, 1, 1}
	dst := make([]float64, 4)
	ops.MatVec(dst, x)
	require.Equal(t, []float64{1, 0, 0, 1}, dst)

	require.Panics(t, func() {
		ops.MatVec(make([]float64, 3), x)
	}, "mismatched destination length must panic")
	require.Panics(t, func() {
		OperatorOps(dok.New(3, 4))
	}, "non-square operator must panic")
}

func TestLinearSolveValidation(t *testing.T) {
	a := identityOps()
	b := []float64{1, 1}
	require.Panics(t, func() {
		LinearSolve(MatrixOps{}, b, &SymmLQ{}, Settings{})
	})
	require.Panics(t, func() {
		LinearSolve(a, b, &SymmLQ{}, Settings{X0: make([]float64, 3)})
	})
	require.Panics(t, func() {
		LinearSolve(a, b, &SymmLQ{}, Settings{Dst: make([]float64, 1)})
	})
	require.Panics(t, func() {
		LinearSolve(a, b, &SymmLQ{}, Settings{Tolerance: math.Nextafter(1, 2)})
	})
}

func TestSolveSparse(t *testing.T) {
	n := 64
	a := OperatorOps(laplacian1D(n).Triplet())
	want := make([]float64, n)
	for i := range want {
		want[i] = 1 + float64(i%3)
	}
	b := make([]float64, n)
	a.MatVec(b, want)

	for _, method := range []Method{&SymmLQ{Check: true}, &CG{Check: true}} {
		r, err := LinearSolve(a, b, method, Settings{Tolerance: 1e-12})
		require.NoError(t, err)
		require.Less(t, floats.Distance(r.X, want, math.Inf(1)), 1e-6)
	}
}

func TestSolveEmptySystem(t *testing.T) {
	// The telemetry contract holds even for a zero-dimensional system.
	var kinds []EventKind
	r, err := LinearSolve(identityOps(), nil, &SymmLQ{}, Settings{
		Monitor: func(ev Event) { kinds = append(kinds, ev.Kind) },
	})
	require.NoError(t, err)
	require.Equal(t, []EventKind{Initialization, Termination}, kinds)
	require.Equal(t, 1, r.Stats.Iterations)
}
