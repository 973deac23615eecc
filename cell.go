package chem

import (
	"math"

	"github.com/AspirinCode/chemfiles/v3"
)

// CellShape tags the three recognized unit cell shapes.
type CellShape int

const (
	CellInfinite CellShape = iota
	CellOrthorhombic
	CellTriclinic
)

func (s CellShape) String() string {
	switch s {
	case CellOrthorhombic:
		return "orthorhombic"
	case CellTriclinic:
		return "triclinic"
	default:
		return "infinite"
	}
}

// UnitCell describes the periodic boundary of a Frame. Internally it is
// kept as a 3x3 matrix of lattice vectors (rows a, b, c), the canonical form
// every PBC computation in geometry.go operates on; Lengths/Angles gives the
// (a,b,c,alpha,beta,gamma) parameter view most formats actually store.
type UnitCell struct {
	shape  CellShape
	matrix v3.Matrix3D
}

// InfiniteCell returns the (non-periodic) cell used by formats and systems
// with no box information.
func InfiniteCell() UnitCell {
	return UnitCell{shape: CellInfinite}
}

// NewOrthorhombicCell builds a rectangular cell with edge lengths a, b, c
// (in Angstrom).
func NewOrthorhombicCell(a, b, c float64) UnitCell {
	return UnitCell{
		shape: CellOrthorhombic,
		matrix: v3.NewMatrix3D(
			v3.NewVector3D(a, 0, 0),
			v3.NewVector3D(0, b, 0),
			v3.NewVector3D(0, 0, c),
		),
	}
}

// NewTriclinicCell builds a general cell from edge lengths a, b, c
// (Angstrom) and angles alpha, beta, gamma (degrees), following the same
// convention goChem's geometric.go uses to build a box from GRO/PDB-style
// cell parameters: a along x, b in the xy-plane.
func NewTriclinicCell(a, b, c, alpha, beta, gamma float64) UnitCell {
	if a == 0 && b == 0 && c == 0 {
		return InfiniteCell()
	}
	rad := math.Pi / 180
	cosA, cosB, cosG := math.Cos(alpha*rad), math.Cos(beta*rad), math.Cos(gamma*rad)
	sinG := math.Sin(gamma * rad)

	ax, ay, az := a, 0.0, 0.0
	bx, by, bz := b*cosG, b*sinG, 0.0

	cx := c * cosB
	cy := c * (cosA - cosB*cosG) / sinG
	cz2 := c*c - cx*cx - cy*cy
	cz := 0.0
	if cz2 > 0 {
		cz = math.Sqrt(cz2)
	}
	return UnitCell{
		shape: CellTriclinic,
		matrix: v3.NewMatrix3D(
			v3.NewVector3D(ax, ay, az),
			v3.NewVector3D(bx, by, bz),
			v3.NewVector3D(cx, cy, cz),
		),
	}
}

// NewCellFromMatrix wraps an already-built lattice matrix as a triclinic
// cell. Used by adapters (GRO's nine-value box, TRR, XTC) that read the
// matrix form directly instead of lengths/angles.
func NewCellFromMatrix(m v3.Matrix3D) UnitCell {
	return UnitCell{shape: CellTriclinic, matrix: m}
}

// Shape reports which of the three recognized shapes the cell has.
func (c UnitCell) Shape() CellShape { return c.shape }

// Matrix returns the cell's lattice vectors as rows of a 3x3 matrix.
func (c UnitCell) Matrix() v3.Matrix3D { return c.matrix }

// Lengths returns the (a,b,c) edge lengths, zero for an infinite cell.
func (c UnitCell) Lengths() (a, b, c2 float64) {
	if c.shape == CellInfinite {
		return 0, 0, 0
	}
	return c.matrix.Row(0).Norm(), c.matrix.Row(1).Norm(), c.matrix.Row(2).Norm()
}

// Angles returns the (alpha,beta,gamma) cell angles in degrees, zero for an
// infinite cell. alpha is the angle between b and c, beta between a and c,
// gamma between a and b -- the standard crystallographic convention.
func (c UnitCell) Angles() (alpha, beta, gamma float64) {
	if c.shape == CellInfinite {
		return 0, 0, 0
	}
	rowA, rowB, rowC := c.matrix.Row(0), c.matrix.Row(1), c.matrix.Row(2)
	angle := func(u, v v3.Vector3D) float64 {
		cos := u.Dot(v) / (u.Norm() * v.Norm())
		if cos > 1 {
			cos = 1
		} else if cos < -1 {
			cos = -1
		}
		return math.Acos(cos) * 180 / math.Pi
	}
	return angle(rowB, rowC), angle(rowA, rowC), angle(rowA, rowB)
}

// Volume returns the cell volume: the determinant of the lattice matrix,
// or zero for an infinite cell.
func (c UnitCell) Volume() float64 {
	if c.shape == CellInfinite {
		return 0
	}
	return math.Abs(c.matrix.Det())
}

// Wrap applies minimum-image wrapping to a displacement vector d, expressed
// in Cartesian coordinates, returning the equivalent displacement with
// minimal norm under the cell's periodicity. Infinite cells return d
// unchanged.
func (c UnitCell) Wrap(d v3.Vector3D) v3.Vector3D {
	if c.shape == CellInfinite {
		return d
	}
	// d = fracA*a + fracB*b + fracC*c, i.e. d = matrix^T * frac, since the
	// cell's rows are the lattice vectors a, b, c.
	invT, err := c.matrix.Transpose().Inverse()
	if err != nil {
		return d
	}
	frac := invT.MulVec(d)
	wrapped := v3.NewVector3D(
		frac.At(0)-math.Round(frac.At(0)),
		frac.At(1)-math.Round(frac.At(1)),
		frac.At(2)-math.Round(frac.At(2)),
	)
	return c.matrix.Transpose().MulVec(wrapped)
}
