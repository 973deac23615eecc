package formats

import (
	"path/filepath"
	"testing"

	chem "github.com/AspirinCode/chemfiles"
	"github.com/AspirinCode/chemfiles/chemio"
	v3 "github.com/AspirinCode/chemfiles/v3"
)

func TestLAMMPSDataRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mol.data")

	w, err := chem.OpenTrajectory(path, chemio.WriteMode, "", chemio.NONE)
	if err != nil {
		t.Fatalf("OpenTrajectory for write: %v", err)
	}
	f := chem.NewFrame()
	f.Cell = chem.NewOrthorhombicCell(20, 20, 20)
	a0 := chem.NewAtom("C")
	a0.Type = "C"
	f.AddAtom(a0, v3.NewVector3D(1, 1, 1), v3.Vector3D{})
	a1 := chem.NewAtom("H")
	a1.Type = "H"
	f.AddAtom(a1, v3.NewVector3D(2, 1, 1), v3.Vector3D{})
	f.Topology.AddBond(0, 1, chem.BondSingle)
	if err := w.Write(f); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rd, err := chem.OpenTrajectory(path, chemio.ReadMode, "", chemio.AUTO)
	if err != nil {
		t.Fatalf("OpenTrajectory for read: %v", err)
	}
	defer rd.Close()
	got := chem.NewFrame()
	if err := rd.Read(got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.AtomCount() != 2 {
		t.Fatalf("AtomCount: got %d, want 2", got.AtomCount())
	}
	if got.Topology.Atom(0).Type == got.Topology.Atom(1).Type {
		t.Errorf("distinct atom types should round trip to distinct type labels: got %q, %q",
			got.Topology.Atom(0).Type, got.Topology.Atom(1).Type)
	}
	if !got.Topology.IsBonded(0, 1) {
		t.Error("Bonds section round trip: expected 0-1 bonded")
	}
	if x := got.Positions.Vec(1).X; x != 2 {
		t.Errorf("position round trip: got x=%v, want 2", x)
	}
	if got.Cell.Shape() != chem.CellOrthorhombic {
		t.Errorf("box bounds round trip: got shape %v", got.Cell.Shape())
	}
	a, b, c := got.Cell.Lengths()
	if a != 20 || b != 20 || c != 20 {
		t.Errorf("box lengths round trip: got (%v,%v,%v), want (20,20,20)", a, b, c)
	}
}

func TestLAMMPSDataSecondReadIsEOF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "single.data")
	w, err := chem.OpenTrajectory(path, chemio.WriteMode, "", chemio.NONE)
	if err != nil {
		t.Fatal(err)
	}
	f := chem.NewFrame()
	f.AddAtom(chem.NewAtom("C"), v3.NewVector3D(0, 0, 0), v3.Vector3D{})
	if err := w.Write(f); err != nil {
		t.Fatal(err)
	}
	w.Close()

	rd, err := chem.OpenTrajectory(path, chemio.ReadMode, "", chemio.AUTO)
	if err != nil {
		t.Fatalf("OpenTrajectory: %v", err)
	}
	defer rd.Close()
	got := chem.NewFrame()
	if err := rd.Read(got); err != nil {
		t.Fatalf("first Read: %v", err)
	}
	if err := rd.Read(got); err == nil || !chem.IsEOF(err) {
		t.Errorf("second Read on a single-step data file: got %v, want ErrNoMoreSteps", err)
	}
}
