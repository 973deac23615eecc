package formats

import (
	"path/filepath"
	"testing"

	chem "github.com/AspirinCode/chemfiles"
	"github.com/AspirinCode/chemfiles/chemio"
	v3 "github.com/AspirinCode/chemfiles/v3"
)

func TestGRORoundTripOrthorhombic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "box.gro")

	w, err := chem.OpenTrajectory(path, chemio.WriteMode, "", chemio.NONE)
	if err != nil {
		t.Fatalf("OpenTrajectory for write: %v", err)
	}
	f := chem.NewFrame()
	f.Cell = chem.NewOrthorhombicCell(30, 30, 30)
	f.SetProperty("name", chem.NewStringProperty("test box"))
	f.AddAtom(chem.NewAtom("OW"), v3.NewVector3D(5, 5, 5), v3.Vector3D{})
	r := chem.NewResidue("SOL")
	r.ID = chem.Some(uint(1))
	r.AddAtom(0)
	f.Topology.AddResidue(r)
	if err := w.Write(f); err != nil {
		t.Fatalf("Write: %v", err)
	}
	w.Close()

	rd, err := chem.OpenTrajectory(path, chemio.ReadMode, "", chemio.AUTO)
	if err != nil {
		t.Fatalf("OpenTrajectory for read: %v", err)
	}
	defer rd.Close()
	got := chem.NewFrame()
	if err := rd.Read(got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.AtomCount() != 1 {
		t.Fatalf("AtomCount: got %d", got.AtomCount())
	}
	if got.Topology.Atom(0).Name != "OW" {
		t.Errorf("atom name: got %q", got.Topology.Atom(0).Name)
	}
	if x := got.Positions.Vec(0).X; x < 4.99 || x > 5.01 {
		t.Errorf("position round-trip (nm<->angstrom): got x=%v, want ~5", x)
	}
	if got.Cell.Shape() != chem.CellOrthorhombic {
		t.Errorf("cell shape: got %v", got.Cell.Shape())
	}
	a, b, c := got.Cell.Lengths()
	if a < 29.9 || a > 30.1 || b < 29.9 || c < 29.9 {
		t.Errorf("cell lengths round-trip: got (%v,%v,%v), want ~(30,30,30)", a, b, c)
	}
	res, ok := got.Topology.ResidueForAtom(0)
	if !ok || res.Name != "SOL" {
		t.Errorf("residue round-trip: got (%v, %v)", res, ok)
	}
}

func TestGROFixedColumnParsing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "literal.gro")
	h, err := chemio.Open(path, chemio.WriteMode, chemio.NONE)
	if err != nil {
		t.Fatal(err)
	}
	// Canonical fixed-width GRO layout: resid(5) resname(5) atomname(5)
	// index(5) x(8.3) y(8.3) z(8.3), positions in nm.
	h.WriteString("MDANALYSIS\n")
	h.WriteString("    1\n")
	h.WriteString("    1SOL     OW    1   1.500   2.500   3.500\n")
	h.WriteString("   0.00000   0.00000   0.00000\n")
	h.Close()

	rd, err := chem.OpenTrajectory(path, chemio.ReadMode, "", chemio.AUTO)
	if err != nil {
		t.Fatalf("OpenTrajectory: %v", err)
	}
	defer rd.Close()
	f := chem.NewFrame()
	if err := rd.Read(f); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if f.Topology.Atom(0).Name != "OW" {
		t.Errorf("parsed atom name: got %q, want OW", f.Topology.Atom(0).Name)
	}
	pos := f.Positions.Vec(0)
	if pos.X < 14.99 || pos.X > 15.01 {
		t.Errorf("parsed x (nm->angstrom): got %v, want 15", pos.X)
	}
	if f.Cell.Shape() != chem.CellInfinite {
		t.Errorf("all-zero box line should parse as infinite: got %v", f.Cell.Shape())
	}
}

func TestGROIndexFieldOverflow(t *testing.T) {
	if got := groIndexField(42); got != "   42" {
		t.Errorf("groIndexField(42): got %q", got)
	}
	if got := groIndexField(123456); got != "*****" {
		t.Errorf("groIndexField(123456): got %q, want *****", got)
	}
}
