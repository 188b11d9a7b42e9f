// Copyright ©2026 The go-linalg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iterative

import "gonum.org/v1/gonum/floats"

// CG implements the preconditioned conjugate gradient iterative method for
// solving the system of linear equations
//  A x = b,
// where A is a self-adjoint positive definite matrix. For self-adjoint
// systems that may be indefinite use SymmLQ.
//
// CG needs MatVec and PSolve matrix operations. It uses the caller's
// convergence test on the true residual.
type CG struct {
	// Check enables verification that the directional quadratic form
	// p^T A p stays positive. A non-positive value proves that A is not
	// positive definite and fails the solve.
	Check bool

	first        bool
	rho, rhoPrev float64
	resume       int

	z  []float64
	p  []float64
	ap []float64
}

// Init implements the Method interface.
func (cg *CG) Init(dim int) {
	if dim <= 0 {
		panic("iterative: dimension not positive")
	}

	cg.z = reuse(cg.z, dim)
	cg.p = reuse(cg.p, dim)
	cg.ap = reuse(cg.ap, dim)

	cg.first = true
	cg.resume = 1
}

// Iterate implements the Method interface.
func (cg *CG) Iterate(ctx *Context) (Operation, error) {
	switch cg.resume {
	case 1:
		ctx.ExplicitResidual = true
		for i := range ctx.X {
			ctx.X[i] = 0
		}
		ctx.Converged = false
		cg.resume = 2
		return CheckResidualNorm, nil
		// The initial residual was set up by the caller.
	case 2:
		cg.resume = 3
		return EndInitialization, nil
	case 3:
		ctx.Src = ctx.Residual
		ctx.Dst = cg.z
		cg.resume = 4
		return PSolve, nil
		// Solve M z = r_{i-1}.
	case 4:
		cg.rho = floats.Dot(ctx.Residual, cg.z) // ρ_i = r_{i-1} · z
		if !cg.first {
			beta := cg.rho / cg.rhoPrev        // β = ρ_i / ρ_{i-1}
			floats.AddScaled(cg.z, beta, cg.p) // z = z + β p_{i-1}
		}
		copy(cg.p, cg.z) // p_i = z
		ctx.Src = cg.p
		ctx.Dst = cg.ap
		cg.resume = 5
		return MatVec, nil
		// Compute A p_i.
	case 5:
		pap := floats.Dot(cg.p, cg.ap)
		if cg.Check && pap <= 0 {
			cg.resume = 0
			return NoOperation, npdError(pap, cg.p, false)
		}
		alpha := cg.rho / pap                         // α = ρ_i / (p_i · Ap_i)
		floats.AddScaled(ctx.Residual, -alpha, cg.ap) // r_i = r_{i-1} - α Ap_i
		floats.AddScaled(ctx.X, alpha, cg.p)          // x_i = x_{i-1} + α p_i

		ctx.Src = nil
		ctx.Dst = nil
		ctx.ResidualNorm = floats.Norm(ctx.Residual, 2)
		ctx.Converged = false
		cg.resume = 6
		return CheckResidualNorm, nil
	case 6:
		if ctx.Converged {
			cg.resume = 0
			return EndIteration, nil
		}
		cg.rhoPrev = cg.rho
		cg.first = false
		cg.resume = 3
		return EndIteration, nil

	default:
		panic("iterative: CG.Init not called")
	}
}
