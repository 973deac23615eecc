/*
 * atom.go, part of chemfiles.
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

// Atom holds the per-atom data that a Topology owns, except for coordinates,
// which live in the Frame's Coords.
type Atom struct {
	Name       string
	Type       string
	Mass       float64
	Charge     float64
	Properties map[string]Property
}

// NewAtom builds an Atom named name. Type defaults to name, matching the
// convention most of the adapters rely on when a format doesn't separate
// the two (XYZ, most force-field-free formats).
func NewAtom(name string) Atom {
	return Atom{Name: name, Type: name}
}

// Property returns the named property, or an error if it isn't set.
func (a Atom) Property(key string) (Property, error) {
	p, ok := a.Properties[key]
	if !ok {
		return Property{}, GenericError("atom has no property %q", key)
	}
	return p, nil
}

// SetProperty attaches or replaces a named property on the atom.
func (a *Atom) SetProperty(key string, p Property) {
	if a.Properties == nil {
		a.Properties = make(map[string]Property)
	}
	a.Properties[key] = p
}

// Equal reports whether two atoms have identical intrinsic fields. Property
// maps are compared by key/kind/value, not by map identity.
func (a Atom) Equal(o Atom) bool {
	if a.Name != o.Name || a.Type != o.Type || a.Mass != o.Mass || a.Charge != o.Charge {
		return false
	}
	if len(a.Properties) != len(o.Properties) {
		return false
	}
	for k, v := range a.Properties {
		ov, ok := o.Properties[k]
		if !ok || v != ov {
			return false
		}
	}
	return true
}

// Copy returns an independent copy of the atom, including its property map.
func (a Atom) Copy() Atom {
	n := a
	if a.Properties != nil {
		n.Properties = make(map[string]Property, len(a.Properties))
		for k, v := range a.Properties {
			n.Properties[k] = v
		}
	}
	return n
}
