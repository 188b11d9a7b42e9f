// Copyright ©2026 The go-linalg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestCG(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for _, n := range []int{1, 2, 3, 4, 5, 10, 20, 50, 100, 200, 500} {
		a, b, want := randomSPD(n, rnd)
		r, err := LinearSolve(a, b, &CG{}, Settings{Tolerance: 1e-14})
		if err != nil {
			t.Errorf("Case n=%v: unexpected error %v", n, err)
			continue
		}
		dist := floats.Distance(r.X, want, math.Inf(1))
		if dist > 1e-10 {
			t.Errorf("Case n=%v: unexpected solution, |want-got|=%v", n, dist)
		}
	}
}

func TestCGPreconditioned(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))
	n := 200
	d := make([]float64, n)
	b := make([]float64, n)
	want := make([]float64, n)
	for i := range d {
		d[i] = 1 + 1000*rnd.Float64()
		want[i] = 1
		b[i] = d[i]
	}
	a := diagonalOps(d)
	r, err := LinearSolve(a, b, &CG{}, Settings{
		Tolerance: 1e-13,
		PSolve: func(dst, rhs []float64) error {
			for i := range dst {
				dst[i] = rhs[i] / d[i]
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if r.Stats.PSolve == 0 {
		t.Error("preconditioner was never applied")
	}
	if dist := floats.Distance(r.X, want, math.Inf(1)); dist > 1e-9 {
		t.Errorf("unexpected solution, |want-got|=%v", dist)
	}
}

func TestCGNotPositiveDefinite(t *testing.T) {
	a := diagonalOps([]float64{1, -1})
	b := []float64{1, 1}
	_, err := LinearSolve(a, b, &CG{Check: true}, Settings{})
	var npd *NonPositiveDefiniteError
	if !errors.As(err, &npd) {
		t.Fatalf("expected NonPositiveDefiniteError, got %v", err)
	}
	if npd.Preconditioner {
		t.Error("error implicates the preconditioner instead of the operator")
	}
}
