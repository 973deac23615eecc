package v3

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Coords is a set of vectors in 3D space, stored as the rows of an Nx3
// matrix. It is the representation used for the positions and velocities
// of a Frame. The underlying storage is a gonum *mat.Dense, the same
// foundation goChem's v3.Matrix builds on.
type Coords struct {
	*mat.Dense
}

// ZeroCoords returns a Coords with n vectors, all set to the origin.
func ZeroCoords(n int) *Coords {
	if n == 0 {
		// mat.NewDense panics on a zero dimension; an empty Dense has 0 rows.
		return &Coords{&mat.Dense{}}
	}
	return &Coords{mat.NewDense(n, 3, make([]float64, 3*n))}
}

// NewCoords builds a Coords from a flat, row-major slice of 3*n floats.
func NewCoords(data []float64) (*Coords, error) {
	if len(data)%3 != 0 {
		return nil, fmt.Errorf("v3: data length %d is not a multiple of 3", len(data))
	}
	n := len(data) / 3
	cp := make([]float64, len(data))
	copy(cp, data)
	return &Coords{mat.NewDense(n, 3, cp)}, nil
}

// NVecs returns the number of vectors (rows) held.
func (c *Coords) NVecs() int {
	r, _ := c.Dims()
	return r
}

// Vec returns the ith vector as a Vector3D.
func (c *Coords) Vec(i int) Vector3D {
	return NewVector3D(c.At(i, 0), c.At(i, 1), c.At(i, 2))
}

// SetVec overwrites the ith vector.
func (c *Coords) SetVec(i int, v Vector3D) {
	c.Set(i, 0, v.X)
	c.Set(i, 1, v.Y)
	c.Set(i, 2, v.Z)
}

// Clone returns a deep copy of c.
func (c *Coords) Clone() *Coords {
	n := ZeroCoords(c.NVecs())
	n.Copy(c)
	return n
}

// Resize returns a Coords with n vectors: c truncated, or zero-padded, to
// that length. The original is left untouched.
func (c *Coords) Resize(n int) *Coords {
	out := ZeroCoords(n)
	lim := n
	if c.NVecs() < lim {
		lim = c.NVecs()
	}
	for i := 0; i < lim; i++ {
		out.SetVec(i, c.Vec(i))
	}
	return out
}

// AppendVec returns a new Coords with v appended as the last row.
func (c *Coords) AppendVec(v Vector3D) *Coords {
	out := ZeroCoords(c.NVecs() + 1)
	for i := 0; i < c.NVecs(); i++ {
		out.SetVec(i, c.Vec(i))
	}
	out.SetVec(c.NVecs(), v)
	return out
}

// RemoveVec returns a new Coords with the ith vector removed and all
// higher indices shifted down.
func (c *Coords) RemoveVec(i int) *Coords {
	out := ZeroCoords(c.NVecs() - 1)
	k := 0
	for j := 0; j < c.NVecs(); j++ {
		if j == i {
			continue
		}
		out.SetVec(k, c.Vec(j))
		k++
	}
	return out
}

// Translate adds the lattice vector t to every row of c, in place.
func (c *Coords) Translate(t Vector3D) {
	for i := 0; i < c.NVecs(); i++ {
		c.SetVec(i, c.Vec(i).Add(t))
	}
}
