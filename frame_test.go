package chem

import (
	"testing"

	v3 "github.com/AspirinCode/chemfiles/v3"
)

func TestNewFrameIsEmpty(t *testing.T) {
	f := NewFrame()
	if f.AtomCount() != 0 {
		t.Errorf("NewFrame: AtomCount()=%d, want 0", f.AtomCount())
	}
	if f.Cell.Shape() != CellInfinite {
		t.Errorf("NewFrame: Cell.Shape()=%v, want infinite", f.Cell.Shape())
	}
}

func TestFrameAddAtomKeepsPositionsInSync(t *testing.T) {
	f := NewFrame()
	i := f.AddAtom(NewAtom("O"), v3.NewVector3D(1, 2, 3), v3.Vector3D{})
	if i != 0 || f.AtomCount() != 1 {
		t.Fatalf("AddAtom: got index %d, AtomCount %d", i, f.AtomCount())
	}
	if f.Positions.Vec(0) != v3.NewVector3D(1, 2, 3) {
		t.Errorf("Positions: got %v", f.Positions.Vec(0))
	}
}

func TestFrameAddAtomWithVelocities(t *testing.T) {
	f := NewFrame()
	f.Velocities = Some(v3.ZeroCoords(0))
	f.AddAtom(NewAtom("O"), v3.NewVector3D(0, 0, 0), v3.NewVector3D(1, 1, 1))
	vel, ok := f.Velocities.Get()
	if !ok || vel.Vec(0) != v3.NewVector3D(1, 1, 1) {
		t.Errorf("Velocities after AddAtom: got (%v, %v)", vel, ok)
	}
}

func TestFrameRemoveKeepsEverythingInSync(t *testing.T) {
	f := NewFrame()
	f.AddAtom(NewAtom("O"), v3.NewVector3D(0, 0, 0), v3.Vector3D{})
	f.AddAtom(NewAtom("H"), v3.NewVector3D(1, 0, 0), v3.Vector3D{})
	f.Remove(0)
	if f.AtomCount() != 1 || f.Positions.NVecs() != 1 {
		t.Fatalf("Remove: AtomCount=%d NVecs=%d", f.AtomCount(), f.Positions.NVecs())
	}
	if f.Topology.Atom(0).Name != "H" {
		t.Errorf("Remove: remaining atom is %q, want H", f.Topology.Atom(0).Name)
	}
}

func TestFrameSetTopologyRejectsMismatch(t *testing.T) {
	f := NewFrame()
	f.AddAtom(NewAtom("O"), v3.NewVector3D(0, 0, 0), v3.Vector3D{})
	bad := NewTopology()
	bad.AddAtom(NewAtom("O"))
	bad.AddAtom(NewAtom("H"))
	if err := f.SetTopology(bad); err == nil {
		t.Error("SetTopology with a mismatched atom count should fail")
	}
}

func TestFrameCloneIsIndependent(t *testing.T) {
	f := NewFrame()
	f.AddAtom(NewAtom("O"), v3.NewVector3D(1, 1, 1), v3.Vector3D{})
	clone := f.Clone()
	clone.Positions.SetVec(0, v3.NewVector3D(9, 9, 9))
	if f.Positions.Vec(0) != v3.NewVector3D(1, 1, 1) {
		t.Error("Clone should not alias the original's Positions")
	}
}

func TestFrameProperty(t *testing.T) {
	f := NewFrame()
	if _, err := f.Property("title"); err == nil {
		t.Error("Property on an unset key should fail")
	}
	f.SetProperty("title", NewStringProperty("alanine dipeptide"))
	p, err := f.Property("title")
	if err != nil {
		t.Fatalf("Property: %v", err)
	}
	s, _ := p.String()
	if s != "alanine dipeptide" {
		t.Errorf("Property value: got %q", s)
	}
}
