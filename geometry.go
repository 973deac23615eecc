package chem

import (
	"math"
	"sort"

	"github.com/AspirinCode/chemfiles/v3"
)

// Distance returns the PBC-aware distance between atoms i and j of frame f:
// the minimum-image displacement, wrapped through f.Cell, under its
// Euclidean norm. For an INFINITE cell this is the plain Cartesian distance.
func Distance(f *Frame, i, j int) float64 {
	d := f.Positions.Vec(i).Sub(f.Positions.Vec(j))
	return f.Cell.Wrap(d).Norm()
}

// Angle returns the angle, in radians, at vertex j of the chain i-j-k, on
// PBC-wrapped vectors.
func Angle(f *Frame, i, j, k int) float64 {
	a := f.Cell.Wrap(f.Positions.Vec(i).Sub(f.Positions.Vec(j)))
	b := f.Cell.Wrap(f.Positions.Vec(k).Sub(f.Positions.Vec(j)))
	cos := a.Dot(b) / (a.Norm() * b.Norm())
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// Dihedral returns the dihedral angle, in radians, along the bonded chain
// i-j-k-m, on PBC-wrapped vectors.
func Dihedral(f *Frame, i, j, k, m int) float64 {
	b1 := f.Cell.Wrap(f.Positions.Vec(j).Sub(f.Positions.Vec(i)))
	b2 := f.Cell.Wrap(f.Positions.Vec(k).Sub(f.Positions.Vec(j)))
	b3 := f.Cell.Wrap(f.Positions.Vec(m).Sub(f.Positions.Vec(k)))

	n1 := b1.Cross(b2)
	n2 := b2.Cross(b3)
	m1 := n1.Cross(b2.Normalize())

	x := n1.Dot(n2)
	y := m1.Dot(n2)
	return math.Atan2(y, x)
}

// ImproperDistance returns the signed out-of-plane distance from atom j to
// the plane spanned by i, k, m: the plane through their centroid, with
// normal given by the cross product (k-i) x (m-i).
func ImproperDistance(f *Frame, i, j, k, m int) float64 {
	pi, pj, pk, pm := f.Positions.Vec(i), f.Positions.Vec(j), f.Positions.Vec(k), f.Positions.Vec(m)
	centroid := v3.NewVector3D(
		(pi.X+pk.X+pm.X)/3,
		(pi.Y+pk.Y+pm.Y)/3,
		(pi.Z+pk.Z+pm.Z)/3,
	)
	normal := pk.Sub(pi).Cross(pm.Sub(pi))
	n := normal.Norm()
	if n == 0 {
		return 0
	}
	normal = normal.Scale(1 / n)
	return pj.Sub(centroid).Dot(normal)
}

// GuessTopology derives bonds for every pair of atoms whose PBC distance
// falls within the van der Waals envelope used by goChem's original bond
// guesser: a bond is added when
//
//	0.5*min(rI,rJ) < d < 0.833*(rI+rJ)
//
// Every atom's element is recovered from its Name by elementOf: its first
// two letters when they form a symbol with a known radius, otherwise its
// first letter alone.
// An atom whose element has no known van der Waals radius produces a
// ConfigurationError naming the atom. Bond guessing is idempotent: running
// it twice over an unchanged set of positions produces the same bond set,
// since it only ever adds, never removes, single bonds. After guessing, the
// topology's derived angle/dihedral/improper sets are invalidated, to be
// recomputed lazily on next access.
//
// Once every candidate bond is in, any atom left with more bonds than
// symbolMaxBonds allows for its element has its longest bonds trimmed (from
// both ends) until it is back within its valence, the same cleanup goChem's
// own AssignBonds runs, atom by atom, after its own distance pass. An
// element absent from symbolMaxBonds (maxBonds == 0) is left unchecked.
func GuessTopology(f *Frame) error {
	n := f.AtomCount()
	radii := make([]float64, n)
	elems := make([]string, n)
	for i := 0; i < n; i++ {
		elem := elementOf(f.Topology.Atom(i).Name)
		r, ok := symbolVdwrad[elem]
		if !ok {
			return ConfigurationError("missing VdW radius for atom %s (index %d)", f.Topology.Atom(i).Name, i)
		}
		elems[i] = elem
		radii[i] = r
	}

	type candidate struct {
		j int
		d float64
	}
	bonds := make([][]candidate, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := Distance(f, i, j)
			lo := 0.5 * math.Min(radii[i], radii[j])
			hi := 0.833 * (radii[i] + radii[j])
			if d > lo && d < hi {
				bonds[i] = append(bonds[i], candidate{j, d})
				bonds[j] = append(bonds[j], candidate{i, d})
			}
		}
	}

	for i := 0; i < n; i++ {
		max := symbolMaxBonds[elems[i]]
		if max == 0 || len(bonds[i]) <= max {
			continue
		}
		sort.Slice(bonds[i], func(a, b int) bool { return bonds[i][a].d < bonds[i][b].d })
		for _, c := range bonds[i][max:] {
			kept := bonds[c.j][:0]
			for _, back := range bonds[c.j] {
				if back.j != i {
					kept = append(kept, back)
				}
			}
			bonds[c.j] = kept
		}
		bonds[i] = bonds[i][:max]
	}

	for i := 0; i < n; i++ {
		for _, c := range bonds[i] {
			if c.j > i {
				f.Topology.AddBond(i, c.j, BondSingle)
			}
		}
	}
	return nil
}

// GuessMasses fills Atom.Mass for every atom in f.Topology whose mass is
// still zero, from its guessed element, the same enrichment goChem's PDB
// reader applies right after parsing an atom (atom.Mass =
// symbolMass[atom.Symbol], with no error if the element is unknown -- mass
// is a convenience fill, not a required field).
func GuessMasses(f *Frame) {
	n := f.AtomCount()
	for i := 0; i < n; i++ {
		a := f.Topology.Atom(i)
		if a.Mass != 0 {
			continue
		}
		if m, ok := symbolMass[elementOf(a.Name)]; ok {
			a.Mass = m
			f.Topology.SetAtom(i, a)
		}
	}
}

// elementOf recovers a chemical element symbol from an atom/type name: the
// leading letters, capitalized the conventional way (first upper, rest
// lower), discarding any numeric suffix (e.g. "CA1" -> "Ca"; "HB2" -> "H",
// since "Hb" is not in symbolVdwrad).
// Names are tried against symbolVdwrad both in this two-letter form and as
// a single leading letter, since many atom names (e.g. "CA" for alpha
// carbon) collide with two-letter element symbols.
func elementOf(name string) string {
	letters := ""
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters += string(r)
		} else {
			break
		}
	}
	if letters == "" {
		return name
	}
	if len(letters) == 1 {
		return toElementCase(letters)
	}
	one := toElementCase(letters[:1])
	two := toElementCase(letters[:2])
	if _, ok := symbolVdwrad[two]; ok {
		return two
	}
	return one
}

func toElementCase(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	for i := 1; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
