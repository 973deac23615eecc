package chem

import "testing"

// linearTopology builds a 4-atom chain 0-1-2-3, all single bonds.
func linearTopology() *Topology {
	top := NewTopology()
	for _, name := range []string{"C", "C", "C", "C"} {
		top.AddAtom(NewAtom(name))
	}
	top.AddBond(0, 1, BondSingle)
	top.AddBond(1, 2, BondSingle)
	top.AddBond(2, 3, BondSingle)
	return top
}

func TestTopologyAddAndRemoveAtom(t *testing.T) {
	top := NewTopology()
	top.AddAtom(NewAtom("O"))
	top.AddAtom(NewAtom("H"))
	if top.AtomCount() != 2 {
		t.Fatalf("AtomCount: got %d", top.AtomCount())
	}
	if top.Atom(1).Name != "H" {
		t.Errorf("Atom(1): got %q", top.Atom(1).Name)
	}
}

func TestTopologyAtomOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Atom out of range should panic")
		}
	}()
	NewTopology().Atom(0)
}

func TestTopologyBonds(t *testing.T) {
	top := linearTopology()
	if !top.IsBonded(0, 1) || !top.IsBonded(1, 0) {
		t.Error("IsBonded should be symmetric and true for bonded atoms")
	}
	if top.IsBonded(0, 3) {
		t.Error("IsBonded(0,3) should be false, they are not directly bonded")
	}
	if top.IsBonded(2, 2) {
		t.Error("an atom should not be bonded to itself")
	}
	order, ok := top.BondOrderOf(0, 1)
	if !ok || order != BondSingle {
		t.Errorf("BondOrderOf(0,1): got (%v, %v)", order, ok)
	}
	top.RemoveBond(0, 1)
	if top.IsBonded(0, 1) {
		t.Error("RemoveBond should clear the bond")
	}
}

func TestTopologyAddBondRejectsOutOfRangeAndSelf(t *testing.T) {
	top := NewTopology()
	top.AddAtom(NewAtom("C"))
	if err := top.AddBond(0, 5, BondSingle); err == nil {
		t.Error("AddBond with an out-of-range endpoint should fail")
	}
	if err := top.AddBond(0, 0, BondSingle); err == nil {
		t.Error("AddBond(i,i) should fail")
	}
}

func TestTopologyRemoveAtomShiftsIndices(t *testing.T) {
	top := linearTopology()
	top.RemoveAtom(1)
	if top.AtomCount() != 3 {
		t.Fatalf("AtomCount after removal: got %d", top.AtomCount())
	}
	// original chain was 0-1-2-3; after removing 1, bond 0-1 and 1-2 are
	// gone, and what was 2-3 becomes 1-2.
	if top.IsBonded(0, 1) {
		t.Error("bond to the removed atom should be gone")
	}
	if !top.IsBonded(1, 2) {
		t.Error("bond (2,3) should have shifted to (1,2)")
	}
}

func TestTopologyResiduesAndResidueForAtom(t *testing.T) {
	top := NewTopology()
	top.AddAtom(NewAtom("N"))
	top.AddAtom(NewAtom("CA"))
	r := NewResidue("ALA")
	r.AddAtom(0)
	r.AddAtom(1)
	top.AddResidue(r)

	found, ok := top.ResidueForAtom(1)
	if !ok || found.Name != "ALA" {
		t.Errorf("ResidueForAtom(1): got (%v, %v)", found, ok)
	}
	if _, ok := top.ResidueForAtom(5); ok {
		t.Error("ResidueForAtom on an atom index outside any residue should fail")
	}
}

func TestTopologyAnglesDihedralsImpropers(t *testing.T) {
	top := linearTopology()

	if !top.IsAngle(0, 1, 2) || !top.IsAngle(2, 1, 0) {
		t.Error("IsAngle should be true (and direction-agnostic) for 0-1-2")
	}
	if top.IsAngle(0, 1, 3) {
		t.Error("0-1-3 is not a bonded angle")
	}

	if !top.IsDihedral(0, 1, 2, 3) || !top.IsDihedral(3, 2, 1, 0) {
		t.Error("IsDihedral should be true (and direction-agnostic) for 0-1-2-3")
	}

	branch := NewTopology()
	for _, n := range []string{"N", "C", "C", "C", "C"} {
		branch.AddAtom(NewAtom(n))
	}
	branch.AddBond(0, 1, BondSingle)
	branch.AddBond(0, 2, BondSingle)
	branch.AddBond(0, 3, BondSingle)
	branch.AddBond(0, 4, BondSingle)
	if !branch.IsImproper(0, 1, 2, 3) {
		t.Error("atom 0 has four neighbors: (0,1,2,3) should be a derived improper")
	}
}

func TestTopologyCopyIsIndependent(t *testing.T) {
	top := linearTopology()
	clone := top.Copy()
	clone.RemoveBond(0, 1)
	if !top.IsBonded(0, 1) {
		t.Error("Copy should not alias the original's bond graph")
	}
}
