package formats

import (
	"path/filepath"
	"testing"

	chem "github.com/AspirinCode/chemfiles"
	"github.com/AspirinCode/chemfiles/chemio"
	v3 "github.com/AspirinCode/chemfiles/v3"
)

func almostEqual(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func TestTRRRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "traj.trr")

	w, err := chem.OpenTrajectory(path, chemio.WriteMode, "", chemio.NONE)
	if err != nil {
		t.Fatalf("OpenTrajectory for write: %v", err)
	}
	f := chem.NewFrame()
	f.Step = 7
	f.Cell = chem.NewOrthorhombicCell(30, 30, 30)
	f.Velocities = chem.Some(v3.ZeroCoords(0))
	f.AddAtom(chem.NewAtom("X"), v3.NewVector3D(1, 2, 3), v3.NewVector3D(0.1, 0.2, 0.3))
	f.AddAtom(chem.NewAtom("X"), v3.NewVector3D(4, 5, 6), v3.NewVector3D(0.4, 0.5, 0.6))
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

	n, err := rd.NSteps()
	if err != nil || n != 1 {
		t.Fatalf("NSteps: got (%v, %v), want 1", n, err)
	}

	got := chem.NewFrame()
	if err := rd.Read(got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.AtomCount() != 2 {
		t.Fatalf("AtomCount: got %d, want 2", got.AtomCount())
	}
	if got.Step != 7 {
		t.Errorf("step round trip: got %d, want 7", got.Step)
	}
	p := got.Positions.Vec(1)
	if !almostEqual(p.X, 4, 1e-4) || !almostEqual(p.Y, 5, 1e-4) || !almostEqual(p.Z, 6, 1e-4) {
		t.Errorf("position round trip (via nm XDR floats): got %v, want (4,5,6)", p)
	}
	vel, ok := got.Velocities.Get()
	if !ok {
		t.Fatal("expected velocities to round-trip")
	}
	v := vel.Vec(0)
	if !almostEqual(v.X, 0.1, 1e-4) {
		t.Errorf("velocity round trip: got x=%v, want ~0.1", v.X)
	}
	if got.Cell.Shape() == chem.CellInfinite {
		t.Error("box round trip: expected a periodic cell")
	}
	a, b, c := got.Cell.Lengths()
	if !almostEqual(a, 30, 1e-3) || !almostEqual(b, 30, 1e-3) || !almostEqual(c, 30, 1e-3) {
		t.Errorf("cell lengths round trip: got (%v,%v,%v), want ~(30,30,30)", a, b, c)
	}
}

func TestTRRReadStepRandomAccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "multi.trr")
	w, err := chem.OpenTrajectory(path, chemio.WriteMode, "", chemio.NONE)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		f := chem.NewFrame()
		f.Step = uint64(i)
		f.AddAtom(chem.NewAtom("X"), v3.NewVector3D(float64(i), 0, 0), v3.Vector3D{})
		if err := w.Write(f); err != nil {
			t.Fatal(err)
		}
	}
	w.Close()

	rd, err := chem.OpenTrajectory(path, chemio.ReadMode, "", chemio.AUTO)
	if err != nil {
		t.Fatal(err)
	}
	defer rd.Close()
	n, err := rd.NSteps()
	if err != nil || n != 3 {
		t.Fatalf("NSteps: got (%v, %v), want 3", n, err)
	}
	f := chem.NewFrame()
	if err := rd.ReadStep(2, f); err != nil {
		t.Fatalf("ReadStep(2): %v", err)
	}
	if !almostEqual(f.Positions.Vec(0).X, 2, 1e-4) {
		t.Errorf("ReadStep(2): x=%v, want ~2", f.Positions.Vec(0).X)
	}
}

func TestTRRBadMagicRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.trr")
	h, err := chemio.Open(path, chemio.WriteMode, chemio.NONE)
	if err != nil {
		t.Fatal(err)
	}
	h.Write([]byte{0, 0, 0, 1})
	h.Close()

	rd, err := chem.OpenTrajectory(path, chemio.ReadMode, "", chemio.AUTO)
	if err != nil {
		t.Fatalf("OpenTrajectory: %v", err)
	}
	defer rd.Close()
	if _, err := rd.NSteps(); err == nil {
		t.Error("a file that doesn't start with the TRR magic number should fail to index")
	}
}
