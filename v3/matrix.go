package v3

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Matrix3D is a row-major 3x3 matrix, used as the canonical representation
// of a UnitCell and as a rotation/transformation operator on Vector3D.
type Matrix3D struct {
	rows [3]Vector3D
}

// NewMatrix3D builds a Matrix3D from its three rows.
func NewMatrix3D(r0, r1, r2 Vector3D) Matrix3D {
	return Matrix3D{[3]Vector3D{r0, r1, r2}}
}

// Identity returns the 3x3 identity matrix.
func Identity() Matrix3D {
	return NewMatrix3D(
		NewVector3D(1, 0, 0),
		NewVector3D(0, 1, 0),
		NewVector3D(0, 0, 1),
	)
}

func (m Matrix3D) Row(i int) Vector3D {
	return m.rows[i]
}

func (m Matrix3D) At(i, j int) float64 {
	return m.rows[i].At(j)
}

// Col returns the jth column as a Vector3D.
func (m Matrix3D) Col(j int) Vector3D {
	return NewVector3D(m.At(0, j), m.At(1, j), m.At(2, j))
}

// MulVec applies the matrix (on the left) to the column vector v.
func (m Matrix3D) MulVec(v Vector3D) Vector3D {
	return NewVector3D(m.Row(0).Dot(v), m.Row(1).Dot(v), m.Row(2).Dot(v))
}

// Transpose returns the transpose of m.
func (m Matrix3D) Transpose() Matrix3D {
	return NewMatrix3D(m.Col(0), m.Col(1), m.Col(2))
}

// Det returns the determinant of m. This is the same formula goChem uses
// in its v3 package to compute the determinant of a 3x3 matrix.
func (m Matrix3D) Det() float64 {
	a, b, c := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	d, e, f := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	g, h, i := m.At(2, 0), m.At(2, 1), m.At(2, 2)
	return a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
}

// Inverse returns the inverse of m via gonum's general Dense inverse, the
// same library goChem relies on for its linear algebra.
func (m Matrix3D) Inverse() (Matrix3D, error) {
	det := m.Det()
	if det == 0 {
		return Matrix3D{}, fmt.Errorf("v3: singular matrix has no inverse")
	}
	dense := m.toDense()
	var inv mat.Dense
	if err := inv.Inverse(dense); err != nil {
		return Matrix3D{}, fmt.Errorf("v3: %w", err)
	}
	return denseToMatrix3D(&inv), nil
}

func (m Matrix3D) toDense() *mat.Dense {
	data := make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			data[i*3+j] = m.At(i, j)
		}
	}
	return mat.NewDense(3, 3, data)
}

func denseToMatrix3D(d mat.Matrix) Matrix3D {
	return NewMatrix3D(
		NewVector3D(d.At(0, 0), d.At(0, 1), d.At(0, 2)),
		NewVector3D(d.At(1, 0), d.At(1, 1), d.At(1, 2)),
		NewVector3D(d.At(2, 0), d.At(2, 1), d.At(2, 2)),
	)
}

// Mul returns the matrix product m*o.
func (m Matrix3D) Mul(o Matrix3D) Matrix3D {
	var out [3]Vector3D
	for i := 0; i < 3; i++ {
		out[i] = NewVector3D(
			m.Row(i).Dot(o.Col(0)),
			m.Row(i).Dot(o.Col(1)),
			m.Row(i).Dot(o.Col(2)),
		)
	}
	return Matrix3D{out}
}
