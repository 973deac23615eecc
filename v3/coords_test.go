package v3

import "testing"

func TestCoordsResizeGrowAndShrink(t *testing.T) {
	c := ZeroCoords(2)
	c.SetVec(0, NewVector3D(1, 1, 1))
	c.SetVec(1, NewVector3D(2, 2, 2))

	grown := c.Resize(3)
	if grown.NVecs() != 3 {
		t.Fatalf("Resize(3): got %d vectors", grown.NVecs())
	}
	if grown.Vec(2) != (Vector3D{}) {
		t.Errorf("Resize(3): new row should be zero, got %v", grown.Vec(2))
	}
	if grown.Vec(0) != NewVector3D(1, 1, 1) {
		t.Errorf("Resize(3) should preserve row 0, got %v", grown.Vec(0))
	}

	shrunk := c.Resize(1)
	if shrunk.NVecs() != 1 {
		t.Fatalf("Resize(1): got %d vectors", shrunk.NVecs())
	}
	if shrunk.Vec(0) != NewVector3D(1, 1, 1) {
		t.Errorf("Resize(1) should preserve row 0, got %v", shrunk.Vec(0))
	}

	// original untouched
	if c.NVecs() != 2 {
		t.Errorf("Resize mutated the receiver: NVecs()=%d", c.NVecs())
	}
}

func TestCoordsAppendAndRemove(t *testing.T) {
	c := ZeroCoords(0)
	c = c.AppendVec(NewVector3D(1, 0, 0))
	c = c.AppendVec(NewVector3D(2, 0, 0))
	c = c.AppendVec(NewVector3D(3, 0, 0))
	if c.NVecs() != 3 {
		t.Fatalf("AppendVec: got %d vectors, want 3", c.NVecs())
	}

	c = c.RemoveVec(1)
	if c.NVecs() != 2 {
		t.Fatalf("RemoveVec: got %d vectors, want 2", c.NVecs())
	}
	if c.Vec(0) != NewVector3D(1, 0, 0) || c.Vec(1) != NewVector3D(3, 0, 0) {
		t.Errorf("RemoveVec: rows shifted incorrectly: %v, %v", c.Vec(0), c.Vec(1))
	}
}

func TestCoordsTranslate(t *testing.T) {
	c := ZeroCoords(2)
	c.SetVec(0, NewVector3D(1, 0, 0))
	c.SetVec(1, NewVector3D(0, 1, 0))
	c.Translate(NewVector3D(10, 10, 10))
	if c.Vec(0) != NewVector3D(11, 10, 10) {
		t.Errorf("Translate row 0: got %v", c.Vec(0))
	}
	if c.Vec(1) != NewVector3D(10, 11, 10) {
		t.Errorf("Translate row 1: got %v", c.Vec(1))
	}
}

func TestNewCoordsRejectsBadLength(t *testing.T) {
	_, err := NewCoords([]float64{1, 2, 3, 4})
	if err == nil {
		t.Error("NewCoords with a non-multiple-of-3 length should fail")
	}
}

func TestCoordsClone(t *testing.T) {
	c := ZeroCoords(1)
	c.SetVec(0, NewVector3D(1, 2, 3))
	clone := c.Clone()
	clone.SetVec(0, NewVector3D(9, 9, 9))
	if c.Vec(0) != NewVector3D(1, 2, 3) {
		t.Error("Clone should not alias the original's storage")
	}
}
