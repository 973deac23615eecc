package v3

import "math"

// Vector3D is an ordered triple of 64-bit floats, used for atomic positions,
// velocities, and cell parameters. The zero value is the origin.
type Vector3D struct {
	X, Y, Z float64
}

// NewVector3D builds a Vector3D from three components.
func NewVector3D(x, y, z float64) Vector3D {
	return Vector3D{x, y, z}
}

func (v Vector3D) Add(o Vector3D) Vector3D {
	return Vector3D{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector3D) Sub(o Vector3D) Vector3D {
	return Vector3D{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vector3D) Scale(s float64) Vector3D {
	return Vector3D{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector3D) Dot(o Vector3D) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vector3D) Cross(o Vector3D) Vector3D {
	return Vector3D{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Norm returns the Euclidean norm of v.
func (v Vector3D) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns v scaled to unit length. It panics on the zero vector,
// mirroring goChem's Unit, which assumes a well-formed direction vector.
func (v Vector3D) Normalize() Vector3D {
	n := v.Norm()
	if n <= appzero {
		panic("v3: cannot normalize the zero vector")
	}
	return v.Scale(1.0 / n)
}

func (v Vector3D) At(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	panic("v3: Vector3D index out of range")
}

// appzero is the tolerance under which floating point results are treated
// as exactly zero, matching goChem's convention.
const appzero float64 = 1e-12
