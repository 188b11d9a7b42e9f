// Copyright ©2026 The go-linalg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"errors"
	"fmt"
)

var (
	// ErrIterationLimit is returned when the configured maximum number
	// of iterations was reached without convergence.
	ErrIterationLimit = errors.New("iterative: iteration limit reached")

	// ErrSingularOperator is returned when the starting vector is
	// numerically an eigenvector of the (shifted) operator, so the
	// Lanczos process cannot make further progress.
	ErrSingularOperator = errors.New("iterative: singular operator")
)

// NonSelfAdjointError is returned when symmetry checking is enabled and a
// probe exposed an asymmetry of the operator or of the preconditioner.
type NonSelfAdjointError struct {
	// Preconditioner reports whether the preconditioner, rather than
	// the operator, failed the check.
	Preconditioner bool
	// X and Y are copies of the probe vectors that exposed the
	// asymmetry: with y = L*x, the quadratic forms (L*x)^T*(L*x) and
	// x^T*L*(L*x) must agree for a self-adjoint L.
	X, Y []float64
	// Self and Cross are the two quadratic forms that disagreed.
	Self, Cross float64
	// Tolerance is the bound that |Self-Cross| exceeded.
	Tolerance float64
}

func (e *NonSelfAdjointError) Error() string {
	what := "operator"
	if e.Preconditioner {
		what = "preconditioner"
	}
	return fmt.Sprintf("iterative: %s is not self-adjoint: |%g - %g| > %g",
		what, e.Self, e.Cross, e.Tolerance)
}

// NonPositiveDefiniteError is returned when a required quadratic form
// x^T*L*x turned out negative, proving that the operator or the
// preconditioner is not positive definite.
type NonPositiveDefiniteError struct {
	// Preconditioner reports whether the preconditioner, rather than
	// the operator, is implicated.
	Preconditioner bool
	// Form is the offending value of the quadratic form.
	Form float64
	// X is a copy of the vector for which the form was evaluated.
	X []float64
}

func (e *NonPositiveDefiniteError) Error() string {
	what := "operator"
	if e.Preconditioner {
		what = "preconditioner"
	}
	return fmt.Sprintf("iterative: %s is not positive definite: x^T*L*x = %g", what, e.Form)
}

// IllConditionedError is returned when the running condition-number
// estimate of the operator crossed the machine-precision bound and the
// computed solution can no longer be trusted.
type IllConditionedError struct {
	// Cond is the condition-number estimate.
	Cond float64
}

func (e *IllConditionedError) Error() string {
	return fmt.Sprintf("iterative: operator is ill-conditioned, condition number estimate %.5e", e.Cond)
}
