/*
 * topology.go, part of chemfiles.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package chem

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// BondOrder is the symbolic multiplicity of a chemical bond.
type BondOrder int

const (
	BondUnknown BondOrder = iota
	BondSingle
	BondDouble
	BondTriple
	BondAromatic
	BondQuadruple
	BondQuintuplet
	BondAmide
)

// Bond is an unordered pair of atom indices with an associated order.
type Bond struct {
	I, J  int
	Order BondOrder
}

// Topology holds the atoms, residues, and connectivity of a molecular
// system: everything about a Frame that is not a per-step coordinate.
// The bond graph is kept in a gonum/graph/simple.UndirectedGraph, the same
// library goChem's chemgraph package uses to expose bonds as graph edges.
// The derived angle, dihedral, and improper sets are a pure function of the
// bond graph: they are invalidated by any bond mutation and recomputed
// lazily, on demand, rather than eagerly maintained.
type Topology struct {
	atoms     []Atom
	residues  []Residue
	bonds     []Bond
	g         *simple.UndirectedGraph
	dirty     bool
	angles    [][3]int
	dihedrals [][4]int
	impropers [][4]int
}

// NewTopology returns an empty topology.
func NewTopology() *Topology {
	return &Topology{g: simple.NewUndirectedGraph(), dirty: true}
}

// AtomCount returns the number of atoms, N, in the topology.
func (t *Topology) AtomCount() int { return len(t.atoms) }

// Atom returns a copy of the atom at index i. It panics out of range, the
// same "fundamental function" contract goChem uses for its Atom accessor.
func (t *Topology) Atom(i int) Atom {
	if i < 0 || i >= len(t.atoms) {
		panic("chem: Topology.Atom index out of range")
	}
	return t.atoms[i]
}

// SetAtom replaces the atom at index i.
func (t *Topology) SetAtom(i int, a Atom) {
	if i < 0 || i >= len(t.atoms) {
		panic("chem: Topology.SetAtom index out of range")
	}
	t.atoms[i] = a
}

// AddAtom appends an atom, returning its new index.
func (t *Topology) AddAtom(a Atom) int {
	t.atoms = append(t.atoms, a)
	id := int64(len(t.atoms) - 1)
	t.g.AddNode(simple.Node(id))
	return len(t.atoms) - 1
}

// RemoveAtom deletes the atom at index i, shifting all higher indices down
// by one, rewriting bond endpoints, and dropping any bond or residue
// reference to i.
func (t *Topology) RemoveAtom(i int) {
	if i < 0 || i >= len(t.atoms) {
		panic("chem: Topology.RemoveAtom index out of range")
	}
	t.atoms = append(t.atoms[:i], t.atoms[i+1:]...)

	kept := t.bonds[:0]
	for _, b := range t.bonds {
		if b.I == i || b.J == i {
			continue
		}
		nb := b
		if nb.I > i {
			nb.I--
		}
		if nb.J > i {
			nb.J--
		}
		kept = append(kept, nb)
	}
	t.bonds = kept

	for ri := range t.residues {
		t.residues[ri].shiftDown(i)
	}
	t.rebuildGraph()
}

// Residues returns the topology's residues.
func (t *Topology) Residues() []Residue { return t.residues }

// ResidueAt returns a pointer to the ith residue, for callers (format
// adapters, mostly) that need to mutate a residue -- add an atom to it --
// after it has already been appended to the topology.
func (t *Topology) ResidueAt(i int) *Residue { return &t.residues[i] }

// AddResidue appends a residue, returning its new index.
func (t *Topology) AddResidue(r Residue) int {
	t.residues = append(t.residues, r)
	return len(t.residues) - 1
}

// ResidueForAtom returns the residue containing atom index i, if any.
func (t *Topology) ResidueForAtom(i int) (Residue, bool) {
	for _, r := range t.residues {
		if r.Contains(i) {
			return r, true
		}
	}
	return Residue{}, false
}

// Bonds returns the bond list, in insertion order.
func (t *Topology) Bonds() []Bond { return t.bonds }

// IsBonded reports whether atoms i and j are directly bonded.
func (t *Topology) IsBonded(i, j int) bool {
	if i == j {
		return false
	}
	return t.g.HasEdgeBetween(int64(i), int64(j))
}

// AddBond inserts a bond between i and j with the given order. Adding an
// already-present bond updates its order in place. Any mutation marks the
// derived angle/dihedral/improper sets dirty.
func (t *Topology) AddBond(i, j int, order BondOrder) error {
	if i < 0 || i >= len(t.atoms) || j < 0 || j >= len(t.atoms) {
		return ConfigurationError("bond endpoints (%d,%d) out of range for %d atoms", i, j, len(t.atoms))
	}
	if i == j {
		return ConfigurationError("cannot bond atom %d to itself", i)
	}
	lo, hi := i, j
	if lo > hi {
		lo, hi = hi, lo
	}
	for k, b := range t.bonds {
		if b.I == lo && b.J == hi {
			t.bonds[k].Order = order
			t.dirty = true
			return nil
		}
	}
	t.bonds = append(t.bonds, Bond{I: lo, J: hi, Order: order})
	t.g.SetEdge(simple.Edge{F: simple.Node(lo), T: simple.Node(hi)})
	t.dirty = true
	return nil
}

// RemoveBond deletes the bond between i and j, if any.
func (t *Topology) RemoveBond(i, j int) {
	lo, hi := i, j
	if lo > hi {
		lo, hi = hi, lo
	}
	out := t.bonds[:0]
	for _, b := range t.bonds {
		if b.I == lo && b.J == hi {
			continue
		}
		out = append(out, b)
	}
	t.bonds = out
	t.g.RemoveEdge(int64(lo), int64(hi))
	t.dirty = true
}

// BondOrderOf returns the order of the bond between i and j, if it exists.
func (t *Topology) BondOrderOf(i, j int) (BondOrder, bool) {
	lo, hi := i, j
	if lo > hi {
		lo, hi = hi, lo
	}
	for _, b := range t.bonds {
		if b.I == lo && b.J == hi {
			return b.Order, true
		}
	}
	return BondUnknown, false
}

func (t *Topology) rebuildGraph() {
	t.g = simple.NewUndirectedGraph()
	for i := range t.atoms {
		t.g.AddNode(simple.Node(int64(i)))
	}
	for _, b := range t.bonds {
		t.g.SetEdge(simple.Edge{F: simple.Node(b.I), T: simple.Node(b.J)})
	}
	t.dirty = true
}

func (t *Topology) neighbors(i int) []int {
	it := t.g.From(int64(i))
	var out []int
	for it.Next() {
		out = append(out, int(it.Node().ID()))
	}
	sort.Ints(out)
	return out
}

// ensureDerived recomputes angles, dihedrals, and impropers from the bond
// graph if the graph has changed since the last computation.
func (t *Topology) ensureDerived() {
	if !t.dirty {
		return
	}
	t.angles = deriveAngles(t)
	t.dihedrals = deriveDihedrals(t)
	t.impropers = deriveImpropers(t)
	t.dirty = false
}

// Angles returns the derived ordered triples (a,b,c), canonicalized so that
// a < c, with b -- the bonded center -- always in the middle.
func (t *Topology) Angles() [][3]int {
	t.ensureDerived()
	return t.angles
}

// Dihedrals returns the derived ordered quadruples (a,b,c,d) along bonded
// chains a-b-c-d.
func (t *Topology) Dihedrals() [][4]int {
	t.ensureDerived()
	return t.dihedrals
}

// Impropers returns the derived (center, i, k, m) tuples for every atom
// with three or more bonded neighbors.
func (t *Topology) Impropers() [][4]int {
	t.ensureDerived()
	return t.impropers
}

func deriveAngles(t *Topology) [][3]int {
	seen := make(map[[3]int]bool)
	var out [][3]int
	for b := range t.atoms {
		neigh := t.neighbors(b)
		for x := 0; x < len(neigh); x++ {
			for y := 0; y < len(neigh); y++ {
				if x == y {
					continue
				}
				a, c := neigh[x], neigh[y]
				if a == c {
					continue
				}
				lo, hi := a, c
				if lo > hi {
					lo, hi = hi, lo
				}
				key := [3]int{lo, b, hi}
				if !seen[key] {
					seen[key] = true
					out = append(out, key)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessTuple3(out[i], out[j]) })
	return out
}

func deriveDihedrals(t *Topology) [][4]int {
	seen := make(map[[4]int]bool)
	var out [][4]int
	for _, bond := range t.bonds {
		b, c := bond.I, bond.J
		for _, a := range t.neighbors(b) {
			if a == c {
				continue
			}
			for _, d := range t.neighbors(c) {
				if d == b || d == a {
					continue
				}
				tup := canonicalDihedral(a, b, c, d)
				if !seen[tup] {
					seen[tup] = true
					out = append(out, tup)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessTuple4(out[i], out[j]) })
	return out
}

// canonicalDihedral orients (a,b,c,d) so that the pair (a,b) is
// lexicographically no greater than (d,c); otherwise the tuple is reversed.
func canonicalDihedral(a, b, c, d int) [4]int {
	if lessPair(a, b, d, c) {
		return [4]int{a, b, c, d}
	}
	return [4]int{d, c, b, a}
}

func lessPair(a, b, c, d int) bool {
	if a != c {
		return a < c
	}
	return b < d
}

func deriveImpropers(t *Topology) [][4]int {
	var out [][4]int
	for b := range t.atoms {
		neigh := t.neighbors(b)
		if len(neigh) < 3 {
			continue
		}
		for x := 0; x < len(neigh); x++ {
			for y := x + 1; y < len(neigh); y++ {
				for z := y + 1; z < len(neigh); z++ {
					trio := [3]int{neigh[x], neigh[y], neigh[z]}
					sort.Ints(trio[:])
					out = append(out, [4]int{b, trio[0], trio[1], trio[2]})
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessTuple4(out[i], out[j]) })
	return out
}

func lessTuple3(a, b [3]int) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func lessTuple4(a, b [4]int) bool {
	for i := 0; i < 4; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// IsAngle reports whether (i,j,k) -- in either direction -- is a derived angle.
func (t *Topology) IsAngle(i, j, k int) bool {
	for _, a := range t.Angles() {
		if a[1] == j && ((a[0] == i && a[2] == k) || (a[0] == k && a[2] == i)) {
			return true
		}
	}
	return false
}

// IsDihedral reports whether (i,j,k,m) -- in either direction -- is a derived dihedral.
func (t *Topology) IsDihedral(i, j, k, m int) bool {
	for _, d := range t.Dihedrals() {
		if d == [4]int{i, j, k, m} || d == [4]int{m, k, j, i} {
			return true
		}
	}
	return false
}

// IsImproper reports whether (center,i,k,m) is a derived improper, for any
// ordering of the three leaves.
func (t *Topology) IsImproper(center, i, k, m int) bool {
	trio := [3]int{i, k, m}
	sort.Ints(trio[:])
	for _, imp := range t.Impropers() {
		if imp[0] == center && imp[1] == trio[0] && imp[2] == trio[1] && imp[3] == trio[2] {
			return true
		}
	}
	return false
}

// Copy returns a deep copy of the topology, including atoms, residues, and
// bonds. Derived sets are recomputed lazily by the copy.
func (t *Topology) Copy() *Topology {
	n := NewTopology()
	n.atoms = make([]Atom, len(t.atoms))
	for i, a := range t.atoms {
		n.atoms[i] = a.Copy()
	}
	n.residues = make([]Residue, len(t.residues))
	for i, r := range t.residues {
		n.residues[i] = r.Copy()
	}
	n.bonds = append([]Bond(nil), t.bonds...)
	n.rebuildGraph()
	return n
}

var _ graph.Graph = (*simple.UndirectedGraph)(nil)
