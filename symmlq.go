// Copyright ©2026 The go-linalg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// SymmLQ implements the SYMMLQ iterative method for solving the system of
// linear equations
//  (A - shift*I) x = b,
// where A is a self-adjoint matrix that may be indefinite and singular. If
// a preconditioner is supplied through Settings.PSolve, it must be
// self-adjoint and positive definite.
//
// SymmLQ performs a Lanczos process on A, factorizing the growing
// tridiagonal system in LQ form with plane rotations. Two solution
// estimates are available at every iteration, the LQ point and the CG
// point; the one with the smaller residual-norm estimate is stored into
// Context.X. The default stopping rule declares convergence when the
// residual norm of the CG point falls below the caller's tolerance scaled
// by running estimates of the operator and solution norms, or below the
// machine-precision floor of those estimates.
//
// SymmLQ needs MatVec and PSolve matrix operations. One solve never shares
// state with another: Init resets the method completely, and two solves of
// the same system produce bit-identical results.
type SymmLQ struct {
	// GoodB enables the rank-one correction along the right-hand side
	// that is useful when b is known to be a good approximation of the
	// wanted eigenvector of A and Shift is an approximation of the
	// corresponding eigenvalue.
	GoodB bool

	// Shift is the scalar subtracted from the diagonal of A. The system
	// actually solved is (A - Shift*I) x = b.
	Shift float64

	// Check enables verification that A (and the preconditioner, if
	// any) is self-adjoint, at the cost of one extra matrix-vector
	// product (and one extra preconditioner solve) during
	// initialization.
	Check bool

	resume int

	x    []float64 // Accumulated LQ point.
	r1   []float64
	r2   []float64
	y    []float64
	v    []float64 // Current Lanczos vector.
	wbar []float64
	z    []float64 // Scratch for the self-adjointness probes.
	mb   []float64 // Preconditioned right-hand side, kept for GoodB.

	beta1        float64
	beta, oldb   float64
	alpha        float64
	gbar, dbar   float64
	gammaZeta    float64
	minusEpsZeta float64
	bstep        float64
	snprod       float64
	tnorm        float64
	ynorm2       float64
	gmax, gmin   float64
	cgnorm       float64
	lqnorm       float64
	rnorm        float64

	hasConverged bool
}

// Init implements the Method interface.
func (s *SymmLQ) Init(dim int) {
	if dim <= 0 {
		panic("iterative: dimension not positive")
	}

	s.x = reuse(s.x, dim)
	for i := range s.x {
		s.x[i] = 0
	}
	s.r1 = reuse(s.r1, dim)
	s.r2 = reuse(s.r2, dim)
	s.y = reuse(s.y, dim)
	s.v = reuse(s.v, dim)
	s.wbar = reuse(s.wbar, dim)
	if s.Check {
		s.z = reuse(s.z, dim)
	}
	if s.GoodB {
		s.mb = reuse(s.mb, dim)
	}

	s.beta1 = 0
	s.beta = 0
	s.oldb = 0
	s.alpha = 0
	s.gbar = 0
	s.dbar = 0
	s.gammaZeta = 0
	s.minusEpsZeta = 0
	s.bstep = 0
	s.snprod = 0
	s.tnorm = 0
	s.ynorm2 = 0
	s.gmax = 0
	s.gmin = 0
	s.cgnorm = 0
	s.lqnorm = 0
	s.rnorm = 0
	s.hasConverged = false

	s.resume = 1
}

// Iterate implements the Method interface.
func (s *SymmLQ) Iterate(ctx *Context) (Operation, error) {
	switch s.resume {
	case 1:
		// The initial residual is the effective right-hand side.
		copy(s.r1, ctx.Residual)
		ctx.Src = s.r1
		ctx.Dst = s.y
		s.resume = 2
		return PSolve, nil
		// Solve M y = b.
	case 2:
		if s.GoodB {
			copy(s.mb, s.y)
		}
		if s.Check {
			// Whether a preconditioner is installed is not visible
			// to the method. Without one the solve below is a copy
			// and the check cannot fail.
			ctx.Src = s.y
			ctx.Dst = s.z
			s.resume = 3
			return PSolve, nil
			// Solve M z = M b, to probe the symmetry of M.
		}
		s.resume = 4
		return NoOperation, nil
	case 3:
		if err := symmetryProbe(s.r1, s.y, s.z, true); err != nil {
			s.resume = 0
			return NoOperation, err
		}
		s.resume = 4
		return NoOperation, nil
	case 4:
		s.beta1 = floats.Dot(s.r1, s.y)
		// A negative quadratic form b^T M b proves that the
		// preconditioner is not positive definite.
		if s.beta1 < 0 {
			s.resume = 0
			return NoOperation, npdError(s.beta1, s.y, true)
		}
		if s.beta1 == 0 {
			// If b = 0 exactly, stop with x = 0.
			for i := range ctx.X {
				ctx.X[i] = 0
			}
			ctx.ResidualNorm = 0
			ctx.Converged = true
			s.resume = 0
			return EndInitialization, nil
		}
		s.beta1 = math.Sqrt(s.beta1)
		floats.ScaleTo(s.v, 1/s.beta1, s.y)
		ctx.Src = s.v
		ctx.Dst = s.y
		s.resume = 5
		return MatVec, nil
		// Compute y = A v[1].
	case 5:
		if s.Check {
			ctx.Src = s.y
			ctx.Dst = s.z
			s.resume = 6
			return MatVec, nil
			// Compute z = A (A v[1]), to probe the symmetry of A.
		}
		s.resume = 7
		return NoOperation, nil
	case 6:
		if err := symmetryProbe(s.v, s.y, s.z, false); err != nil {
			s.resume = 0
			return NoOperation, err
		}
		s.resume = 7
		return NoOperation, nil
	case 7:
		// Set up y for the second Lanczos vector. y and beta will be
		// zero or very small if b is an eigenvector of the shifted
		// operator.
		floats.AddScaled(s.y, -s.Shift, s.v)
		s.alpha = floats.Dot(s.v, s.y)
		floats.AddScaled(s.y, -s.alpha/s.beta1, s.r1)
		// Make sure r2 is orthogonal to the first Lanczos vector.
		vty := floats.Dot(s.v, s.y)
		vtv := floats.Dot(s.v, s.v)
		floats.AddScaled(s.y, -vty/vtv, s.v)
		copy(s.r2, s.y)
		ctx.Src = s.r2
		ctx.Dst = s.y
		s.resume = 8
		return PSolve, nil
		// Solve M y = r2.
	case 8:
		s.oldb = s.beta1
		s.beta = floats.Dot(s.r2, s.y)
		if s.beta < 0 {
			s.resume = 0
			return NoOperation, npdError(s.beta, s.y, true)
		}
		s.beta = math.Sqrt(s.beta)

		// Seed the running quantities of the recurrence.
		s.gbar = s.alpha
		s.dbar = s.beta
		s.gammaZeta = s.beta1
		s.minusEpsZeta = 0
		s.bstep = 0
		s.snprod = 1
		s.tnorm = s.alpha*s.alpha + s.beta*s.beta
		s.ynorm2 = 0
		s.gmax = math.Abs(s.alpha) + dlamchE
		s.gmin = s.gmax
		if s.GoodB {
			for i := range s.wbar {
				s.wbar[i] = 0
			}
		} else {
			copy(s.wbar, s.v)
		}

		if err := s.updateNorms(ctx.Tolerance); err != nil {
			s.resume = 0
			return NoOperation, err
		}
		s.refineSolution(ctx.X)
		ctx.ResidualNorm = s.rnorm
		// A vanishing beta means that b is an eigenvector of the
		// shifted operator and the refined point is already the
		// solution.
		ctx.Converged = s.hasConverged || s.beta < dlamchE
		if ctx.Converged {
			s.resume = 0
		} else {
			s.resume = 9
		}
		return EndInitialization, nil

	case 9:
		// Obtain the next Lanczos vector v[k+1].
		floats.ScaleTo(s.v, 1/s.beta, s.y)
		ctx.Src = s.v
		ctx.Dst = s.y
		s.resume = 10
		return MatVec, nil
		// Compute y = A v[k+1].
	case 10:
		floats.AddScaled(s.y, -s.Shift, s.v)
		floats.AddScaled(s.y, -s.beta/s.oldb, s.r1)
		s.alpha = floats.Dot(s.v, s.y)
		floats.AddScaled(s.y, -s.alpha/s.beta, s.r2)
		s.r1, s.r2, s.y = s.r2, s.y, s.r1
		ctx.Src = s.r2
		ctx.Dst = s.y
		s.resume = 11
		return PSolve, nil
		// Solve M y = r2.
	case 11:
		s.oldb = s.beta
		s.beta = floats.Dot(s.r2, s.y)
		if s.beta < 0 {
			s.resume = 0
			return NoOperation, npdError(s.beta, s.y, true)
		}
		s.beta = math.Sqrt(s.beta)
		s.tnorm += s.alpha*s.alpha + s.oldb*s.oldb + s.beta*s.beta

		// Compute the next plane rotation for the LQ factorization
		// of the tridiagonal system.
		gamma := math.Sqrt(s.gbar*s.gbar + s.oldb*s.oldb)
		c := s.gbar / gamma
		sn := s.oldb / gamma
		delta := c*s.dbar + sn*s.alpha
		s.gbar = sn*s.dbar - c*s.alpha
		epsln := sn * s.beta
		s.dbar = -c * s.beta

		// Update the LQ point and the rotated basis vector.
		zeta := s.gammaZeta / gamma
		floats.AddScaled(s.x, zeta*c, s.wbar)
		floats.AddScaled(s.x, zeta*sn, s.v)
		floats.Scale(sn, s.wbar)
		floats.AddScaled(s.wbar, -c, s.v)

		// Accumulate the step along the direction b.
		s.bstep += s.snprod * c * zeta
		s.snprod *= sn
		s.gmax = math.Max(s.gmax, gamma)
		s.gmin = math.Min(s.gmin, gamma)
		s.ynorm2 += zeta * zeta
		s.gammaZeta = s.minusEpsZeta - delta*zeta
		s.minusEpsZeta = -epsln * zeta

		if err := s.updateNorms(ctx.Tolerance); err != nil {
			s.resume = 0
			return NoOperation, err
		}
		s.refineSolution(ctx.X)
		ctx.ResidualNorm = s.rnorm
		ctx.Converged = s.hasConverged
		if ctx.Converged {
			s.resume = 0
		} else {
			s.resume = 9
		}
		return EndIteration, nil

	default:
		panic("iterative: SymmLQ.Init not called")
	}
}

// updateNorms recomputes the residual-norm estimates of the LQ and CG
// points, the condition-number estimate, and the default stopping rule.
// delta is the caller's relative tolerance.
func (s *SymmLQ) updateNorms(delta float64) error {
	anorm := math.Sqrt(s.tnorm)
	ynorm := math.Sqrt(s.ynorm2)
	epsa := anorm * dlamchE
	epsx := anorm * ynorm * dlamchE
	epsr := anorm * ynorm * delta
	diag := s.gbar
	if diag == 0 {
		diag = epsa
	}

	s.lqnorm = math.Sqrt(s.gammaZeta*s.gammaZeta + s.minusEpsZeta*s.minusEpsZeta)
	qrnorm := s.snprod * s.beta1
	s.cgnorm = qrnorm * s.beta / math.Abs(diag)

	// Estimate cond(A) from the diagonals of the L factor. T[k] can be
	// misleadingly ill-conditioned when T[k+1] is not, so the estimate
	// must not include the last diagonal unless the LQ point is the one
	// behind.
	var acond float64
	if s.lqnorm <= s.cgnorm {
		acond = s.gmax / s.gmin
	} else {
		acond = s.gmax / math.Min(s.gmin, math.Abs(diag))
	}
	if acond*dlamchE >= 0.1 {
		return &IllConditionedError{Cond: acond}
	}
	if s.beta1 <= epsx {
		// x has converged to an eigenvector of A corresponding to
		// the eigenvalue Shift.
		return ErrSingularOperator
	}
	s.rnorm = math.Min(s.cgnorm, s.lqnorm)
	// Convergence is declared only from the CG point, which is the one
	// usually reported.
	s.hasConverged = s.cgnorm <= epsx || s.cgnorm <= epsr
	return nil
}

// refineSolution stores into x the better of the LQ and the CG points. The
// accumulated iterate is the LQ point; the CG point is obtained from it by
// a step along wbar.
func (s *SymmLQ) refineSolution(x []float64) {
	if s.lqnorm < s.cgnorm {
		copy(x, s.x)
		if s.GoodB {
			step := s.bstep / s.beta1
			floats.AddScaled(x, step, s.mb)
		}
		return
	}
	anorm := math.Sqrt(s.tnorm)
	diag := s.gbar
	if diag == 0 {
		diag = anorm * dlamchE
	}
	zbar := s.gammaZeta / diag
	copy(x, s.x)
	floats.AddScaled(x, zbar, s.wbar)
	if s.GoodB {
		step := (s.bstep + s.snprod*zbar) / s.beta1
		floats.AddScaled(x, step, s.mb)
	}
}

// symmetryProbe verifies that the quadratic forms (L x)^T (L x) and
// x^T L (L x) agree within a tolerance derived from the machine precision
// and its cube root. y must hold L x and z must hold L y.
func symmetryProbe(x, y, z []float64, precon bool) error {
	self := floats.Dot(y, y)
	cross := floats.Dot(x, z)
	epsa := (self + dlamchE) * math.Cbrt(dlamchE)
	if math.Abs(self-cross) <= epsa {
		return nil
	}
	xc := make([]float64, len(x))
	copy(xc, x)
	yc := make([]float64, len(y))
	copy(yc, y)
	return &NonSelfAdjointError{
		Preconditioner: precon,
		X:              xc,
		Y:              yc,
		Self:           self,
		Cross:          cross,
		Tolerance:      epsa,
	}
}

func npdError(form float64, x []float64, precon bool) error {
	xc := make([]float64, len(x))
	copy(xc, x)
	return &NonPositiveDefiniteError{
		Preconditioner: precon,
		Form:           form,
		X:              xc,
	}
}
