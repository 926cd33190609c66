package types

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrDimensionMismatch = errors.New("types: matrix dimension mismatch")
	ErrSingularMatrix    = errors.New("types: matrix is singular")
)

// Mat3 is a row-major 3x3 matrix.
type Mat3 [9]float32

// Create a 3x3 identity matrix.
func Ident3() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Get matrix row.
func (m Mat3) Row(i int) Vec3 {
	return Vec3{m[i*3], m[i*3+1], m[i*3+2]}
}

// Get matrix column.
func (m Mat3) Col(i int) Vec3 {
	return Vec3{m[i], m[3+i], m[6+i]}
}

// Multiply two matrices.
func (m Mat3) Mul(m2 Mat3) Mat3 {
	var out Mat3
	for r := 0; r < 3; r++ {
		row := m.Row(r)
		for c := 0; c < 3; c++ {
			out[r*3+c] = row.Dot(m2.Col(c))
		}
	}
	return out
}

// Multiply matrix with a column vector.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{m.Row(0).Dot(v), m.Row(1).Dot(v), m.Row(2).Dot(v)}
}

// Multiply all matrix elements with a scalar.
func (m Mat3) Scale(s float32) Mat3 {
	for i := range m {
		m[i] *= s
	}
	return m
}

// Transpose matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Convert to a dense matrix.
func (m Mat3) Matrix() Matrix {
	out := NewMatrix(3, 3)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r][c] = float64(m[r*3+c])
		}
	}
	return out
}

// Calculate the Moore-Penrose pseudo inverse of the matrix.
func (m Mat3) PseudoInverse() (Mat3, error) {
	inv, err := m.Matrix().PseudoInverse()
	if err != nil {
		return Mat3{}, err
	}

	var out Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = float32(inv[r][c])
		}
	}
	return out, nil
}

// Matrix is a dense row-major matrix of arbitrary size. Decompositions are
// carried out in float64.
type Matrix [][]float64

// Allocate a zero matrix.
func NewMatrix(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for r := range m {
		m[r] = make([]float64, cols)
	}
	return m
}

// Allocate an identity matrix.
func Identity(dim int) Matrix {
	m := NewMatrix(dim, dim)
	for i := 0; i < dim; i++ {
		m[i][i] = 1
	}
	return m
}

// Get row count.
func (m Matrix) Rows() int {
	return len(m)
}

// Get column count.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Transpose matrix.
func (m Matrix) Transpose() Matrix {
	out := NewMatrix(m.Cols(), m.Rows())
	for r, row := range m {
		for c, v := range row {
			out[c][r] = v
		}
	}
	return out
}

// Multiply two matrices.
func (m Matrix) Mul(m2 Matrix) (Matrix, error) {
	if m.Cols() != m2.Rows() {
		return nil, fmt.Errorf("%w: %dx%d * %dx%d", ErrDimensionMismatch, m.Rows(), m.Cols(), m2.Rows(), m2.Cols())
	}

	out := NewMatrix(m.Rows(), m2.Cols())
	for r := range out {
		for c := range out[r] {
			var sum float64
			for k := 0; k < m.Cols(); k++ {
				sum += m[r][k] * m2[k][c]
			}
			out[r][c] = sum
		}
	}
	return out, nil
}

// Multiply matrix with a column vector.
func (m Matrix) MulVec(v []float64) ([]float64, error) {
	if m.Cols() != len(v) {
		return nil, fmt.Errorf("%w: %dx%d * %d", ErrDimensionMismatch, m.Rows(), m.Cols(), len(v))
	}

	out := make([]float64, m.Rows())
	for r, row := range m {
		out[r] = dot(row, v)
	}
	return out, nil
}

// Decompose the matrix into an orthonormal Q and an upper triangular R using
// Gram-Schmidt orthogonalization of the matrix columns. Columns that are
// linearly dependent on the previous ones produce zero columns in Q.
func (m Matrix) QR() (q, r Matrix) {
	cols := m.Transpose()
	basis := make([][]float64, len(cols))

	for i, col := range cols {
		b := append([]float64(nil), col...)
		for _, prev := range basis[:i] {
			pp := dot(prev, prev)
			if pp == 0 {
				continue
			}
			f := dot(prev, col) / pp
			for k := range b {
				b[k] -= f * prev[k]
			}
		}
		basis[i] = b
	}

	qt := make(Matrix, len(basis))
	for i, b := range basis {
		qt[i] = normalize(b)
	}

	// Dimensions always match: qt is cols x rows and m is rows x cols.
	r, _ = qt.Mul(m)
	return qt.Transpose(), r
}

// Calculate the Moore-Penrose pseudo inverse (A^T A)^-1 A^T. The normal
// matrix is inverted through its QR decomposition. If that fails, the
// inverse is derived from the pseudo inverse of A^T instead.
func (m Matrix) PseudoInverse() (Matrix, error) {
	inv, err := m.pseudoInverse()
	if err == nil {
		return inv, nil
	}

	invT, errT := m.Transpose().pseudoInverse()
	if errT != nil {
		return nil, err
	}
	return invT.Transpose(), nil
}

func (m Matrix) pseudoInverse() (Matrix, error) {
	at := m.Transpose()
	ata, err := at.Mul(m)
	if err != nil {
		return nil, err
	}

	q, r := ata.QR()
	rInv, err := r.invertUpper()
	if err != nil {
		return nil, err
	}

	ataInv, err := rInv.Mul(q.Transpose())
	if err != nil {
		return nil, err
	}
	return ataInv.Mul(at)
}

// Invert an upper triangular matrix using back substitution.
func (m Matrix) invertUpper() (Matrix, error) {
	n := m.Rows()
	if n != m.Cols() {
		return nil, fmt.Errorf("%w: cannot invert %dx%d", ErrDimensionMismatch, m.Rows(), m.Cols())
	}

	out := NewMatrix(n, n)
	for i := n - 1; i >= 0; i-- {
		if math.Abs(m[i][i]) < floatCmpEpsilon {
			return nil, ErrSingularMatrix
		}
		out[i][i] = 1 / m[i][i]
		for c := i + 1; c < n; c++ {
			var sum float64
			for k := i + 1; k <= c; k++ {
				sum += m[i][k] * out[k][c]
			}
			out[i][c] = -sum / m[i][i]
		}
	}
	return out, nil
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(v []float64) []float64 {
	l := math.Sqrt(dot(v, v))
	out := make([]float64, len(v))
	if l < floatCmpEpsilon {
		return out
	}
	for i := range v {
		out[i] = v[i] / l
	}
	return out
}
