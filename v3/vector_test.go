package v3

import (
	"math"
	"testing"
)

func TestVectorArithmetic(t *testing.T) {
	a := NewVector3D(1, 2, 3)
	b := NewVector3D(4, 5, 6)

	if got := a.Add(b); got != NewVector3D(5, 7, 9) {
		t.Errorf("Add: got %v", got)
	}
	if got := b.Sub(a); got != NewVector3D(3, 3, 3) {
		t.Errorf("Sub: got %v", got)
	}
	if got := a.Scale(2); got != NewVector3D(2, 4, 6) {
		t.Errorf("Scale: got %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot: got %v, want 32", got)
	}
}

func TestVectorCross(t *testing.T) {
	x := NewVector3D(1, 0, 0)
	y := NewVector3D(0, 1, 0)
	if got := x.Cross(y); got != NewVector3D(0, 0, 1) {
		t.Errorf("Cross(x,y): got %v, want z", got)
	}
}

func TestVectorNorm(t *testing.T) {
	v := NewVector3D(3, 4, 0)
	if got := v.Norm(); got != 5 {
		t.Errorf("Norm: got %v, want 5", got)
	}
}

func TestVectorNormalize(t *testing.T) {
	v := NewVector3D(0, 0, 5)
	u := v.Normalize()
	if math.Abs(u.Norm()-1) > 1e-12 {
		t.Errorf("Normalize: norm is %v, want 1", u.Norm())
	}
}

func TestVectorNormalizeZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Normalize on the zero vector should panic")
		}
	}()
	NewVector3D(0, 0, 0).Normalize()
}

func TestVectorAt(t *testing.T) {
	v := NewVector3D(1, 2, 3)
	for i, want := range []float64{1, 2, 3} {
		if got := v.At(i); got != want {
			t.Errorf("At(%d): got %v, want %v", i, got, want)
		}
	}
}

func TestVectorAtOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("At(3) should panic")
		}
	}()
	NewVector3D(1, 2, 3).At(3)
}
