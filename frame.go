package chem

import "github.com/AspirinCode/chemfiles/v3"

// Frame is one step of a trajectory: a set of positions, optional
// velocities, the topology and cell in force at that step, and any
// step-level metadata. Frame keeps the invariant that the number of rows in
// Positions (and, when present, Velocities) always equals the topology's
// atom count; every mutator below except Resize (see its doc) either
// maintains it or returns an error.
type Frame struct {
	Step       uint64
	Positions  *v3.Coords
	Velocities Optional[*v3.Coords]
	Topology   *Topology
	Cell       UnitCell
	Properties map[string]Property
}

// NewFrame returns an empty frame: no atoms, an infinite cell, step zero.
func NewFrame() *Frame {
	return &Frame{
		Positions: v3.ZeroCoords(0),
		Topology:  NewTopology(),
		Cell:      InfiniteCell(),
	}
}

// AtomCount returns the number of atoms currently in the frame.
func (f *Frame) AtomCount() int { return f.Topology.AtomCount() }

// Resize truncates or zero-pads the frame's positions (and velocities, if
// present) to n atoms. It does not touch the topology; callers that grow a
// frame should pair a Resize with the matching topology AddAtom calls, or
// use AddAtom below, which does both together.
func (f *Frame) Resize(n int) {
	f.Positions = f.Positions.Resize(n)
	if v, ok := f.Velocities.Get(); ok {
		f.Velocities = Some(v.Resize(n))
	}
}

// AddAtom appends atom a to the topology, with position pos and, if the
// frame already carries velocities, velocity vel. Returns the new atom's
// index.
func (f *Frame) AddAtom(a Atom, pos v3.Vector3D, vel v3.Vector3D) int {
	idx := f.Topology.AddAtom(a)
	f.Positions = f.Positions.AppendVec(pos)
	if v, ok := f.Velocities.Get(); ok {
		f.Velocities = Some(v.AppendVec(vel))
	}
	return idx
}

// Remove deletes atom index i from the frame: its position, its velocity if
// any, and its entry (and bonds) in the topology.
func (f *Frame) Remove(i int) {
	f.Positions = f.Positions.RemoveVec(i)
	if v, ok := f.Velocities.Get(); ok {
		f.Velocities = Some(v.RemoveVec(i))
	}
	f.Topology.RemoveAtom(i)
}

// SetTopology replaces the frame's topology. It returns a ConfigurationError
// if the new topology's atom count does not match the frame's current
// position count, the same check goChem's trajectory readers perform before
// accepting a user-supplied topology override.
func (f *Frame) SetTopology(t *Topology) error {
	if t.AtomCount() != f.Positions.NVecs() {
		return ConfigurationError("topology has %d atoms, frame has %d positions", t.AtomCount(), f.Positions.NVecs())
	}
	f.Topology = t
	return nil
}

// Property returns the named frame-level property, or an error if unset.
func (f *Frame) Property(key string) (Property, error) {
	p, ok := f.Properties[key]
	if !ok {
		return Property{}, GenericError("frame has no property %q", key)
	}
	return p, nil
}

// SetProperty attaches or replaces a named frame-level property.
func (f *Frame) SetProperty(key string, p Property) {
	if f.Properties == nil {
		f.Properties = make(map[string]Property)
	}
	f.Properties[key] = p
}

// Clone returns a deep copy of the frame: independent positions,
// velocities, topology, and property map.
func (f *Frame) Clone() *Frame {
	n := &Frame{
		Step:      f.Step,
		Positions: f.Positions.Clone(),
		Topology:  f.Topology.Copy(),
		Cell:      f.Cell,
	}
	if v, ok := f.Velocities.Get(); ok {
		n.Velocities = Some(v.Clone())
	}
	if f.Properties != nil {
		n.Properties = make(map[string]Property, len(f.Properties))
		for k, v := range f.Properties {
			n.Properties[k] = v
		}
	}
	return n
}
