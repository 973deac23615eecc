package chem

// Residue groups a set of atom indices under a name and an optional
// semantic residue number. A Residue does not own its atoms; it refers to
// them by index into the Topology that holds it.
type Residue struct {
	Name       string
	ID         Optional[uint]
	atoms      []int // ordered, de-duplicated indices into the owning Topology
	Properties map[string]Property
}

// NewResidue builds an empty residue named name with no assigned id.
func NewResidue(name string) Residue {
	return Residue{Name: name}
}

// AddAtom appends atom index i to the residue if it isn't already present.
func (r *Residue) AddAtom(i int) {
	for _, existing := range r.atoms {
		if existing == i {
			return
		}
	}
	r.atoms = append(r.atoms, i)
}

// Atoms returns the ordered atom indices referenced by the residue.
func (r Residue) Atoms() []int {
	return r.atoms
}

// Contains reports whether atom index i belongs to the residue.
func (r Residue) Contains(i int) bool {
	for _, existing := range r.atoms {
		if existing == i {
			return true
		}
	}
	return false
}

// shiftDown rewrites the residue's atom indices after atom index removed
// has been deleted from the owning Topology: indices above removed shift
// down by one, and a reference to removed itself is dropped.
func (r *Residue) shiftDown(removed int) {
	out := r.atoms[:0]
	for _, idx := range r.atoms {
		switch {
		case idx == removed:
			continue
		case idx > removed:
			out = append(out, idx-1)
		default:
			out = append(out, idx)
		}
	}
	r.atoms = out
}

func (r Residue) Property(key string) (Property, error) {
	p, ok := r.Properties[key]
	if !ok {
		return Property{}, GenericError("residue has no property %q", key)
	}
	return p, nil
}

func (r *Residue) SetProperty(key string, p Property) {
	if r.Properties == nil {
		r.Properties = make(map[string]Property)
	}
	r.Properties[key] = p
}

func (r Residue) Copy() Residue {
	n := r
	n.atoms = append([]int(nil), r.atoms...)
	if r.Properties != nil {
		n.Properties = make(map[string]Property, len(r.Properties))
		for k, v := range r.Properties {
			n.Properties[k] = v
		}
	}
	return n
}
