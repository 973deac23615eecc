package chem

import (
	"testing"

	v3 "github.com/AspirinCode/chemfiles/v3"
)

func TestPropertyRoundTrip(t *testing.T) {
	if b, err := NewBoolProperty(true).Bool(); err != nil || !b {
		t.Errorf("Bool property: got (%v, %v)", b, err)
	}
	if d, err := NewDoubleProperty(3.5).Double(); err != nil || d != 3.5 {
		t.Errorf("Double property: got (%v, %v)", d, err)
	}
	if s, err := NewStringProperty("abc").String(); err != nil || s != "abc" {
		t.Errorf("String property: got (%v, %v)", s, err)
	}
	vec := v3.NewVector3D(1, 2, 3)
	if v, err := NewVectorProperty(vec).Vector(); err != nil || v != vec {
		t.Errorf("Vector property: got (%v, %v)", v, err)
	}
}

func TestPropertyWrongKind(t *testing.T) {
	p := NewBoolProperty(true)
	if _, err := p.Double(); err == nil {
		t.Error("reading a bool Property as a Double should fail")
	}
	if _, err := p.String(); err == nil {
		t.Error("reading a bool Property as a String should fail")
	}
}
