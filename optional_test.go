package chem

import "testing"

func TestOptionalSome(t *testing.T) {
	o := Some(42)
	v, ok := o.Get()
	if !ok || v != 42 {
		t.Errorf("Some(42).Get(): got (%v, %v)", v, ok)
	}
	if !o.IsSome() {
		t.Error("Some(42).IsSome() should be true")
	}
	if got := o.MustGet(); got != 42 {
		t.Errorf("MustGet: got %v, want 42", got)
	}
}

func TestOptionalNone(t *testing.T) {
	o := None[string]()
	v, ok := o.Get()
	if ok || v != "" {
		t.Errorf("None().Get(): got (%q, %v)", v, ok)
	}
	if o.IsSome() {
		t.Error("None().IsSome() should be false")
	}
}

func TestOptionalMustGetPanicsOnNone(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustGet on None should panic")
		}
	}()
	None[int]().MustGet()
}
