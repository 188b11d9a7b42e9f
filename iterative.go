// Copyright ©2026 The go-linalg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package iterative provides iterative algorithms for solving systems of
// linear equations with self-adjoint operators.
package iterative

// Operator represents a square linear operator through its action on
// vectors. No access to individual coefficients is provided.
type Operator interface {
	// Dims returns the row and column dimensions of the operator.
	Dims() (r, c int)

	// MulVec computes A*x and stores the result into dst. It must
	// panic if len(x) or len(dst) does not match the dimensions of
	// the operator.
	MulVec(dst, x []float64)
}

// TransposeOperator is an Operator that can also compute the transpose
// product A^T*x. An Operator that does not implement TransposeOperator
// is considered not transposable.
type TransposeOperator interface {
	Operator

	// MulTransVec computes A^T*x and stores the result into dst.
	MulTransVec(dst, x []float64)
}

// MatrixOps describes the matrix of the
// linear system in terms of A*x and A^T*x
// operations.
type MatrixOps struct {
	// Compute A*x and store the result
	// into dst.
	// It must be non-nil.
	MatVec func(dst, x []float64)

	// Compute A^T*x and store the result
	// into dst.
	// It can be nil, in which case the
	// matrix is treated as not
	// transposable. Methods for
	// self-adjoint systems (SymmLQ, CG)
	// never use it.
	MatTransVec func(dst, x []float64)
}

// OperatorOps validates that a is square and returns the MatrixOps view
// of a that additionally checks the dimensions of the source and
// destination vectors on every product. OperatorOps panics if a is not
// square.
func OperatorOps(a Operator) MatrixOps {
	r, c := a.Dims()
	if r != c {
		panic("iterative: operator is not square")
	}
	ops := MatrixOps{
		MatVec: func(dst, x []float64) {
			if len(x) != c || len(dst) != r {
				panic("iterative: dimension mismatch")
			}
			a.MulVec(dst, x)
		},
	}
	if t, ok := a.(TransposeOperator); ok {
		ops.MatTransVec = func(dst, x []float64) {
			if len(x) != r || len(dst) != c {
				panic("iterative: dimension mismatch")
			}
			t.MulTransVec(dst, x)
		}
	}
	return ops
}

// Operation specifies the type of operation.
type Operation uint64

// Operations commanded by Method.Iterate.
const (
	NoOperation Operation = 0

	// Multiply A*x where x is stored
	// in Context.Src and the result will
	// be stored in Context.Dst.
	MatVec Operation = 1 << (iota - 1)

	// Multiply A^T*x where x is stored
	// in Context.Src and the result will
	// be stored in Context.Dst.
	MatTransVec

	// Do the preconditioner solve
	//  M z = r,
	// where r is stored in Context.Src,
	// and store the solution z in
	// Context.Dst.
	PSolve

	// Check convergence using the
	// current approximation in Context.X
	// and the residual norm in
	// Context.ResidualNorm.
	// If convergence is detected,
	// Context.Converged will be set to
	// true before Method.Iterate is
	// called again.
	CheckResidualNorm

	// EndInitialization indicates that
	// Method has finished setting up the
	// iterative process. It accounts for
	// the first iteration: the caller
	// must set the iteration count to
	// one and report initialization. If
	// Context.Converged is true, the
	// iterative process must be
	// terminated.
	EndInitialization

	// EndIteration indicates that Method
	// has finished what it considers to
	// be one iteration. It is used
	// to update the iteration counter. If
	// Context.Converged is true, the
	// iterative process must be
	// terminated, and Method.Init must
	// be called before calling
	// Method.Iterate again.
	EndIteration
)

// Method is an iterative method that produces a sequence of vectors
// converging to the vector x satisfying a system of linear equations
//  A x = b,
// where A is a non-singular dim×dim matrix, and x and b are vectors of
// dimension dim.
//
// Method uses a reverse-communication interface between the iterative
// algorithm and the caller. Method acts as a client that commands the caller
// to perform needed operations via Operation returned from Iterate methods.
// This provides independence of Method on representation of the matrix A, and
// enables automation of common operations like checking for convergence and
// maintaining statistics.
type Method interface {
	// Init initializes the method for solving a dim×dim linear system.
	Init(dim int)

	// Iterate retrieves data from Context, updates it, and returns the next
	// operation. The caller must perform the Operation using data in
	// Context, and depending on the state call Iterate again.
	Iterate(*Context) (Operation, error)
}

// Context mediates the communication between a Method and the caller. It must
// not be modified or accessed apart from the commanded Operations.
type Context struct {
	// X is the current approximate solution. Method must update X with
	// the current estimate when it commands EndInitialization and
	// EndIteration. X is never an initial guess, Method owns its content.
	X []float64
	// Residual is the initial residual b-A*x0 on the first call to
	// Method.Iterate (equal to b when no initial guess was given).
	// Methods that maintain an explicit residual must keep it current
	// when they command EndIteration and set ExplicitResidual.
	Residual []float64
	// ExplicitResidual indicates that Residual holds the current
	// residual whenever EndIteration is commanded. Methods that only
	// estimate the residual norm leave it false.
	ExplicitResidual bool
	// ResidualNorm is (an estimate of) the norm of the current residual.
	// Method must update it when it commands CheckResidualNorm,
	// EndInitialization and EndIteration. It does not have to be equal
	// to the norm of Residual, some methods can estimate the residual
	// norm without forming the residual itself.
	ResidualNorm float64
	// Converged indicates to Method that the ResidualNorm satisfies the
	// stopping criterion as a result of CheckResidualNorm operation.
	// Methods implementing their own stopping rule set it directly.
	// If a Method commands EndIteration with Converged true, the caller
	// must not call Method.Iterate again without calling Method.Init
	// first.
	Converged bool
	// Tolerance is the caller's convergence tolerance, for methods that
	// implement their own stopping rule. It is set by LinearSolve from
	// Settings.Tolerance and must not be modified.
	Tolerance float64

	// Src and Dst are the source and destination vectors for various
	// Operations.
	Src, Dst []float64
}

func reuse(v []float64, n int) []float64 {
	if cap(v) < n {
		return make([]float64, n)
	}
	return v[:n]
}

const dlamchE = 1.0 / (1 << 53)
