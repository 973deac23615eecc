package chem

import (
	"math"
	"testing"

	v3 "github.com/AspirinCode/chemfiles/v3"
)

func threeAtomAngleFrame() *Frame {
	f := NewFrame()
	f.AddAtom(NewAtom("C"), v3.NewVector3D(1, 0, 0), v3.Vector3D{})
	f.AddAtom(NewAtom("C"), v3.NewVector3D(0, 0, 0), v3.Vector3D{})
	f.AddAtom(NewAtom("C"), v3.NewVector3D(0, 1, 0), v3.Vector3D{})
	return f
}

func TestDistance(t *testing.T) {
	f := NewFrame()
	f.AddAtom(NewAtom("C"), v3.NewVector3D(0, 0, 0), v3.Vector3D{})
	f.AddAtom(NewAtom("C"), v3.NewVector3D(3, 4, 0), v3.Vector3D{})
	if got := Distance(f, 0, 1); !almostEqual(got, 5, 1e-9) {
		t.Errorf("Distance: got %v, want 5", got)
	}
}

func TestDistanceWithPBC(t *testing.T) {
	f := NewFrame()
	f.Cell = NewOrthorhombicCell(10, 10, 10)
	f.AddAtom(NewAtom("C"), v3.NewVector3D(0, 0, 0), v3.Vector3D{})
	f.AddAtom(NewAtom("C"), v3.NewVector3D(9, 0, 0), v3.Vector3D{})
	if got := Distance(f, 0, 1); !almostEqual(got, 1, 1e-9) {
		t.Errorf("PBC Distance: got %v, want 1 (minimum image)", got)
	}
}

func TestAngleRightAngle(t *testing.T) {
	f := threeAtomAngleFrame()
	got := Angle(f, 0, 1, 2)
	if !almostEqual(got, math.Pi/2, 1e-9) {
		t.Errorf("Angle: got %v rad, want pi/2", got)
	}
}

func TestDihedralPlanar(t *testing.T) {
	f := NewFrame()
	f.AddAtom(NewAtom("C"), v3.NewVector3D(0, 0, 0), v3.Vector3D{})
	f.AddAtom(NewAtom("C"), v3.NewVector3D(1, 0, 0), v3.Vector3D{})
	f.AddAtom(NewAtom("C"), v3.NewVector3D(2, 1, 0), v3.Vector3D{})
	f.AddAtom(NewAtom("C"), v3.NewVector3D(3, 1, 0), v3.Vector3D{})
	got := Dihedral(f, 0, 1, 2, 3)
	if !almostEqual(got, 0, 1e-9) && !almostEqual(math.Abs(got), math.Pi, 1e-9) {
		t.Errorf("Dihedral of four coplanar points: got %v rad, want 0 or pi", got)
	}
}

func TestImproperDistancePlanarIsZero(t *testing.T) {
	f := NewFrame()
	f.AddAtom(NewAtom("C"), v3.NewVector3D(0, 0, 0), v3.Vector3D{})     // i
	f.AddAtom(NewAtom("N"), v3.NewVector3D(0.3, 0.3, 0), v3.Vector3D{}) // j, coplanar
	f.AddAtom(NewAtom("C"), v3.NewVector3D(1, 0, 0), v3.Vector3D{})     // k
	f.AddAtom(NewAtom("C"), v3.NewVector3D(0, 1, 0), v3.Vector3D{})     // m
	got := ImproperDistance(f, 0, 1, 2, 3)
	if !almostEqual(got, 0, 1e-9) {
		t.Errorf("ImproperDistance for a coplanar j: got %v, want 0", got)
	}
}

func TestGuessTopologyFindsBond(t *testing.T) {
	f := NewFrame()
	f.AddAtom(NewAtom("O"), v3.NewVector3D(0, 0, 0), v3.Vector3D{})
	f.AddAtom(NewAtom("H"), v3.NewVector3D(0.96, 0, 0), v3.Vector3D{})
	if err := GuessTopology(f); err != nil {
		t.Fatalf("GuessTopology: %v", err)
	}
	if !f.Topology.IsBonded(0, 1) {
		t.Error("GuessTopology should have found the O-H bond at 0.96A")
	}
}

func TestGuessTopologyNoBondWhenFar(t *testing.T) {
	f := NewFrame()
	f.AddAtom(NewAtom("O"), v3.NewVector3D(0, 0, 0), v3.Vector3D{})
	f.AddAtom(NewAtom("H"), v3.NewVector3D(10, 0, 0), v3.Vector3D{})
	if err := GuessTopology(f); err != nil {
		t.Fatalf("GuessTopology: %v", err)
	}
	if f.Topology.IsBonded(0, 1) {
		t.Error("GuessTopology should not bond atoms 10A apart")
	}
}

func TestGuessTopologyUnknownElement(t *testing.T) {
	f := NewFrame()
	f.AddAtom(NewAtom("Xx99"), v3.NewVector3D(0, 0, 0), v3.Vector3D{})
	f.AddAtom(NewAtom("O"), v3.NewVector3D(1, 0, 0), v3.Vector3D{})
	if err := GuessTopology(f); err == nil {
		t.Error("GuessTopology on an unknown element should fail")
	}
}

func TestGuessTopologyCapsValenceByElement(t *testing.T) {
	f := NewFrame()
	f.AddAtom(NewAtom("O"), v3.NewVector3D(0, 0, 0), v3.Vector3D{})    // O1
	f.AddAtom(NewAtom("H"), v3.NewVector3D(0.96, 0, 0), v3.Vector3D{}) // H, closest to O1
	f.AddAtom(NewAtom("O"), v3.NewVector3D(2.46, 0, 0), v3.Vector3D{}) // O2, also in range of H
	if err := GuessTopology(f); err != nil {
		t.Fatalf("GuessTopology: %v", err)
	}
	if !f.Topology.IsBonded(0, 1) {
		t.Error("H should keep its closest bond, to O1")
	}
	if f.Topology.IsBonded(1, 2) {
		t.Error("H has symbolMaxBonds == 1 and should drop its farther candidate bond to O2")
	}
}

func TestGuessMassesFillsFromElement(t *testing.T) {
	f := NewFrame()
	f.AddAtom(NewAtom("O"), v3.NewVector3D(0, 0, 0), v3.Vector3D{})
	a := NewAtom("C")
	a.Mass = 99 // already set; GuessMasses must not overwrite it
	f.AddAtom(a, v3.NewVector3D(1, 0, 0), v3.Vector3D{})

	GuessMasses(f)

	if !almostEqual(f.Topology.Atom(0).Mass, 16.00, 1e-9) {
		t.Errorf("O mass: got %v, want 16.00", f.Topology.Atom(0).Mass)
	}
	if f.Topology.Atom(1).Mass != 99 {
		t.Errorf("pre-set mass should survive GuessMasses, got %v", f.Topology.Atom(1).Mass)
	}
}

func TestElementOf(t *testing.T) {
	cases := map[string]string{
		"CA1": "Ca",
		"HB2": "H",
		"O":   "O",
		"N3":  "N",
	}
	for name, want := range cases {
		if got := elementOf(name); got != want {
			t.Errorf("elementOf(%q): got %q, want %q", name, got, want)
		}
	}
}
