package v3

import "testing"

func TestMatrixIdentity(t *testing.T) {
	id := Identity()
	v := NewVector3D(1, 2, 3)
	if got := id.MulVec(v); got != v {
		t.Errorf("Identity.MulVec: got %v, want %v", got, v)
	}
}

func TestMatrixDet(t *testing.T) {
	if got := Identity().Det(); got != 1 {
		t.Errorf("Det(identity): got %v, want 1", got)
	}
	diag := NewMatrix3D(
		NewVector3D(2, 0, 0),
		NewVector3D(0, 3, 0),
		NewVector3D(0, 0, 4),
	)
	if got := diag.Det(); got != 24 {
		t.Errorf("Det(diag 2,3,4): got %v, want 24", got)
	}
}

func TestMatrixInverse(t *testing.T) {
	m := NewMatrix3D(
		NewVector3D(2, 0, 0),
		NewVector3D(0, 4, 0),
		NewVector3D(0, 0, 5),
	)
	inv, err := m.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	prod := m.Mul(inv)
	id := Identity()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if diff := prod.At(i, j) - id.At(i, j); diff > 1e-9 || diff < -1e-9 {
				t.Errorf("m * inv(m) at (%d,%d): got %v, want %v", i, j, prod.At(i, j), id.At(i, j))
			}
		}
	}
}

func TestMatrixInverseSingular(t *testing.T) {
	zero := NewMatrix3D(NewVector3D(0, 0, 0), NewVector3D(0, 0, 0), NewVector3D(0, 0, 0))
	if _, err := zero.Inverse(); err == nil {
		t.Error("Inverse of the zero matrix should fail")
	}
}

func TestMatrixTranspose(t *testing.T) {
	m := NewMatrix3D(
		NewVector3D(1, 2, 3),
		NewVector3D(4, 5, 6),
		NewVector3D(7, 8, 9),
	)
	tp := m.Transpose()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if tp.At(i, j) != m.At(j, i) {
				t.Errorf("Transpose at (%d,%d): got %v, want %v", i, j, tp.At(i, j), m.At(j, i))
			}
		}
	}
}
