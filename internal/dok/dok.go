// Copyright ©2026 The go-linalg Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dok provides a dictionary-of-keys sparse matrix intended for
// incremental assembly. Convert to triplet form for repeated products.
package dok

import "github.com/go-linalg/iterative/internal/triplet"

// Matrix is a sparse matrix stored as a map from index pairs to values.
type Matrix struct {
	rows, cols int
	data       map[index]float64
}

type index struct {
	row, col int
}

// New returns an empty r×c matrix.
func New(r, c int) *Matrix {
	return &Matrix{
		rows: r,
		cols: c,
		data: make(map[index]float64),
	}
}

// Dims returns the dimensions of the matrix.
func (m *Matrix) Dims() (r, c int) {
	return m.rows, m.cols
}

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int {
	return len(m.data)
}

// At returns the entry at (i, j).
func (m *Matrix) At(i, j int) float64 {
	m.boundsCheck(i, j)
	return m.data[index{i, j}]
}

// Set stores v at (i, j), replacing any previous value.
func (m *Matrix) Set(i, j int, v float64) {
	m.boundsCheck(i, j)
	m.data[index{i, j}] = v
}

// Add accumulates v into the entry at (i, j).
func (m *Matrix) Add(i, j int, v float64) {
	m.boundsCheck(i, j)
	m.data[index{i, j}] += v
}

func (m *Matrix) boundsCheck(i, j int) {
	if i < 0 || m.rows <= i {
		panic("dok: row index out of range")
	}
	if j < 0 || m.cols <= j {
		panic("dok: column index out of range")
	}
}

// MulVec computes m*x and stores the result into dst.
func (m *Matrix) MulVec(dst, x []float64) {
	if m.cols != len(x) {
		panic("dok: dimension mismatch")
	}
	if m.rows != len(dst) {
		panic("dok: dimension mismatch")
	}
	for i := range dst {
		dst[i] = 0
	}
	for ij, aij := range m.data {
		dst[ij.row] += aij * x[ij.col]
	}
}

// MulTransVec computes m^T*x and stores the result into dst.
func (m *Matrix) MulTransVec(dst, x []float64) {
	if m.cols != len(dst) {
		panic("dok: dimension mismatch")
	}
	if m.rows != len(x) {
		panic("dok: dimension mismatch")
	}
	for i := range dst {
		dst[i] = 0
	}
	for ij, aij := range m.data {
		dst[ij.col] += aij * x[ij.row]
	}
}

// Triplet returns the matrix converted to coordinate form.
func (m *Matrix) Triplet() *triplet.Matrix {
	t := triplet.New(m.rows, m.cols)
	for ij, aij := range m.data {
		t.Append(ij.row, ij.col, aij)
	}
	return t
}
