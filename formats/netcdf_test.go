package formats

import (
	"path/filepath"
	"testing"

	chem "github.com/AspirinCode/chemfiles"
	"github.com/AspirinCode/chemfiles/chemio"
	v3 "github.com/AspirinCode/chemfiles/v3"
)

func TestAmberNetCDFRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "traj.nc")

	w, err := chem.OpenTrajectory(path, chemio.WriteMode, "", chemio.NONE)
	if err != nil {
		t.Fatalf("OpenTrajectory for write: %v", err)
	}
	for i := 0; i < 3; i++ {
		f := chem.NewFrame()
		f.Cell = chem.NewOrthorhombicCell(40, 40, 40)
		f.Velocities = chem.Some(v3.ZeroCoords(0))
		f.AddAtom(chem.NewAtom("X"), v3.NewVector3D(float64(i), 1, 2), v3.NewVector3D(0.1, 0, 0))
		f.AddAtom(chem.NewAtom("X"), v3.NewVector3D(3, 4, 5), v3.NewVector3D(0, 0.2, 0))
		if err := w.Write(f); err != nil {
			t.Fatalf("Write step %d: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rd, err := chem.OpenTrajectory(path, chemio.ReadMode, "", chemio.AUTO)
	if err != nil {
		t.Fatalf("OpenTrajectory for read: %v", err)
	}
	defer rd.Close()

	n, err := rd.NSteps()
	if err != nil || n != 3 {
		t.Fatalf("NSteps: got (%v, %v), want 3", n, err)
	}

	got := chem.NewFrame()
	if err := rd.ReadStep(2, got); err != nil {
		t.Fatalf("ReadStep(2): %v", err)
	}
	if got.AtomCount() != 2 {
		t.Fatalf("AtomCount: got %d, want 2", got.AtomCount())
	}
	if !almostEqual(got.Positions.Vec(0).X, 2, 1e-4) {
		t.Errorf("ReadStep(2) position: got x=%v, want ~2", got.Positions.Vec(0).X)
	}
	vel, ok := got.Velocities.Get()
	if !ok {
		t.Fatal("expected velocities to round-trip")
	}
	if !almostEqual(vel.Vec(0).X, 0.1, 1e-4) {
		t.Errorf("velocity round trip: got x=%v, want ~0.1", vel.Vec(0).X)
	}
	a, b, c := got.Cell.Lengths()
	if !almostEqual(a, 40, 1e-3) || !almostEqual(b, 40, 1e-3) || !almostEqual(c, 40, 1e-3) {
		t.Errorf("cell lengths round trip: got (%v,%v,%v), want ~(40,40,40)", a, b, c)
	}

	if err := rd.ReadStep(0, got); err != nil {
		t.Fatalf("ReadStep(0): %v", err)
	}
	if !almostEqual(got.Positions.Vec(0).X, 0, 1e-4) {
		t.Errorf("ReadStep(0) after ReadStep(2): got x=%v, want ~0", got.Positions.Vec(0).X)
	}
}

func TestAmberNetCDFRejectsAtomCountMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mismatch.nc")
	w, err := chem.OpenTrajectory(path, chemio.WriteMode, "", chemio.NONE)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	f1 := chem.NewFrame()
	f1.AddAtom(chem.NewAtom("X"), v3.NewVector3D(0, 0, 0), v3.Vector3D{})
	if err := w.Write(f1); err != nil {
		t.Fatalf("Write first frame: %v", err)
	}

	f2 := chem.NewFrame()
	f2.AddAtom(chem.NewAtom("X"), v3.NewVector3D(0, 0, 0), v3.Vector3D{})
	f2.AddAtom(chem.NewAtom("X"), v3.NewVector3D(1, 0, 0), v3.Vector3D{})
	if err := w.Write(f2); err == nil {
		t.Error("writing a frame with a different atom count should fail")
	}
}

func TestAmberNetCDFBadMagicRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.nc")
	h, err := chemio.Open(path, chemio.WriteMode, chemio.NONE)
	if err != nil {
		t.Fatal(err)
	}
	h.Write([]byte("XYZZ"))
	h.Close()

	rd, err := chem.OpenTrajectory(path, chemio.ReadMode, "", chemio.AUTO)
	if err != nil {
		t.Fatalf("OpenTrajectory: %v", err)
	}
	defer rd.Close()
	if _, err := rd.NSteps(); err == nil {
		t.Error("a file without the CDF magic should fail to index")
	}
}
