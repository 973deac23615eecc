package chem

import "github.com/AspirinCode/chemfiles/v3"

// PropertyKind tags which of the four variants a Property currently holds.
type PropertyKind int

const (
	PropertyBool PropertyKind = iota
	PropertyDouble
	PropertyString
	PropertyVector3D
)

// Property is a tagged variant over {bool, double, string, Vector3D}, used
// for the open-ended metadata carried by Atoms, Residues, and Frames.
// Reading a Property as the wrong kind is a typed error, not undefined
// behavior -- a Go sum type in place of goChem's looser interface{} fields.
type Property struct {
	kind PropertyKind
	b    bool
	d    float64
	s    string
	v    v3.Vector3D
}

func NewBoolProperty(b bool) Property      { return Property{kind: PropertyBool, b: b} }
func NewDoubleProperty(d float64) Property { return Property{kind: PropertyDouble, d: d} }
func NewStringProperty(s string) Property  { return Property{kind: PropertyString, s: s} }
func NewVectorProperty(v v3.Vector3D) Property {
	return Property{kind: PropertyVector3D, v: v}
}

func (p Property) Kind() PropertyKind { return p.kind }

func (p Property) wrongKind(want PropertyKind) Error {
	return GenericError("property holds a %s, not a %s", kindName(p.kind), kindName(want))
}

func kindName(k PropertyKind) string {
	switch k {
	case PropertyBool:
		return "bool"
	case PropertyDouble:
		return "double"
	case PropertyString:
		return "string"
	case PropertyVector3D:
		return "Vector3D"
	default:
		return "unknown"
	}
}

func (p Property) Bool() (bool, error) {
	if p.kind != PropertyBool {
		return false, p.wrongKind(PropertyBool)
	}
	return p.b, nil
}

func (p Property) Double() (float64, error) {
	if p.kind != PropertyDouble {
		return 0, p.wrongKind(PropertyDouble)
	}
	return p.d, nil
}

func (p Property) String() (string, error) {
	if p.kind != PropertyString {
		return "", p.wrongKind(PropertyString)
	}
	return p.s, nil
}

func (p Property) Vector() (v3.Vector3D, error) {
	if p.kind != PropertyVector3D {
		return v3.Vector3D{}, p.wrongKind(PropertyVector3D)
	}
	return p.v, nil
}
