// Copyright ©2026 The go-linalg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative_test

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/go-linalg/iterative"
)

// MassMatrix assembles the matrix-vector operations and the right-hand side
// of the L2 projection of f onto piecewise linear finite elements on a
// uniform mesh of [x0,x1] with n cells. The mass matrix is symmetric
// positive definite and tridiagonal.
func MassMatrix(x0, x1 float64, n int, f func(float64) float64) (a iterative.MatrixOps, b []float64) {
	h := (x1 - x0) / float64(n)

	matvec := func(dst, src []float64) {
		dst[0] = h / 3 * (src[0] + src[1]/2)
		for i := 1; i < n; i++ {
			dst[i] = h / 3 * (src[i-1]/2 + 2*src[i] + src[i+1]/2)
		}
		dst[n] = h / 3 * (src[n-1]/2 + src[n])
	}

	b = make([]float64, n+1)
	b[0] = f(x0) * h / 2
	for i := 1; i < n; i++ {
		b[i] = f(x0+float64(i)*h) * h
	}
	b[n] = f(x1) * h / 2

	return iterative.MatrixOps{MatVec: matvec}, b
}

func ExampleSymmLQ() {
	A, b := MassMatrix(0, 1, 10, func(x float64) float64 {
		return x * math.Sin(x)
	})
	res, err := iterative.LinearSolve(A, b, &iterative.SymmLQ{}, iterative.Settings{
		Tolerance: 1e-10,
	})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	// Verify the approximate solution against the true residual.
	r := make([]float64, len(b))
	A.MatVec(r, res.X)
	floats.Sub(r, b)
	fmt.Println("converged:", floats.Norm(r, 2) <= 1e-8*floats.Norm(b, 2))
	fmt.Println("solution increasing:", floats.Max(res.X) == res.X[len(res.X)-1])

	// Output:
	// converged: true
	// solution increasing: true
}
