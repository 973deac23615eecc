package chem

import "testing"

func TestResidueAddAtomDeduplicates(t *testing.T) {
	r := NewResidue("ALA")
	r.AddAtom(3)
	r.AddAtom(5)
	r.AddAtom(3)
	if got := r.Atoms(); len(got) != 2 {
		t.Errorf("AddAtom should dedupe: got %v", got)
	}
	if !r.Contains(5) || r.Contains(9) {
		t.Error("Contains gave the wrong answer")
	}
}

func TestResidueShiftDown(t *testing.T) {
	r := NewResidue("GLY")
	r.AddAtom(1)
	r.AddAtom(4)
	r.AddAtom(5)
	r.shiftDown(4)
	if got := r.Atoms(); len(got) != 2 || got[0] != 1 || got[1] != 4 {
		t.Errorf("shiftDown(4): got %v, want [1 4]", got)
	}
}

func TestResidueCopyIsIndependent(t *testing.T) {
	r := NewResidue("LIG")
	r.AddAtom(0)
	c := r.Copy()
	c.AddAtom(1)
	if len(r.Atoms()) != 1 {
		t.Error("Copy should not alias the original's atom slice")
	}
}
