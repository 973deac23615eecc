package chem

import (
	"math"
	"testing"

	v3 "github.com/AspirinCode/chemfiles/v3"
)

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestInfiniteCell(t *testing.T) {
	c := InfiniteCell()
	if c.Shape() != CellInfinite {
		t.Errorf("Shape: got %v", c.Shape())
	}
	a, b, cc := c.Lengths()
	if a != 0 || b != 0 || cc != 0 {
		t.Errorf("Lengths of an infinite cell should be zero: got (%v,%v,%v)", a, b, cc)
	}
	v := v3.NewVector3D(10, 20, 30)
	if c.Wrap(v) != v {
		t.Error("Wrap on an infinite cell should be the identity")
	}
}

func TestOrthorhombicCell(t *testing.T) {
	c := NewOrthorhombicCell(10, 20, 30)
	a, b, cc := c.Lengths()
	if a != 10 || b != 20 || cc != 30 {
		t.Errorf("Lengths: got (%v,%v,%v)", a, b, cc)
	}
	alpha, beta, gamma := c.Angles()
	for _, ang := range []float64{alpha, beta, gamma} {
		if !almostEqual(ang, 90, 1e-6) {
			t.Errorf("orthorhombic angle: got %v, want 90", ang)
		}
	}
	if !almostEqual(c.Volume(), 10*20*30, 1e-6) {
		t.Errorf("Volume: got %v, want 6000", c.Volume())
	}
}

func TestTriclinicCellFromLengthsAndAngles(t *testing.T) {
	c := NewTriclinicCell(10, 10, 10, 90, 90, 90)
	a, b, cc := c.Lengths()
	if !almostEqual(a, 10, 1e-6) || !almostEqual(b, 10, 1e-6) || !almostEqual(cc, 10, 1e-6) {
		t.Errorf("Lengths: got (%v,%v,%v)", a, b, cc)
	}
	if !almostEqual(c.Volume(), 1000, 1e-3) {
		t.Errorf("cubic cell volume: got %v, want 1000", c.Volume())
	}
}

func TestTriclinicCellAllZeroIsInfinite(t *testing.T) {
	c := NewTriclinicCell(0, 0, 0, 90, 90, 90)
	if c.Shape() != CellInfinite {
		t.Errorf("all-zero lengths should produce an infinite cell, got %v", c.Shape())
	}
}

func TestCellWrapMinimumImage(t *testing.T) {
	c := NewOrthorhombicCell(10, 10, 10)
	d := v3.NewVector3D(7, 0, 0)
	wrapped := c.Wrap(d)
	if !almostEqual(wrapped.Norm(), 3, 1e-9) {
		t.Errorf("Wrap(7,0,0) in a 10-box: got norm %v, want 3", wrapped.Norm())
	}
}
