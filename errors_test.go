package chem

import "testing"

func TestErrorKindAndMessage(t *testing.T) {
	err := FileError("cannot open %s", "traj.xtc")
	if err.Kind() != KindFile {
		t.Errorf("Kind(): got %v, want KindFile", err.Kind())
	}
	want := "FileError: cannot open traj.xtc"
	if err.Error() != want {
		t.Errorf("Error(): got %q, want %q", err.Error(), want)
	}
}

func TestErrorDecorate(t *testing.T) {
	err := FormatError("bad header")
	trail := err.Decorate("ReadStep")
	if len(trail) != 1 || trail[0] != "ReadStep" {
		t.Errorf("Decorate: got %v", trail)
	}
	trail = err.Decorate("Read")
	if len(trail) != 2 || trail[1] != "Read" {
		t.Errorf("Decorate (second call): got %v", trail)
	}
	// empty string just returns the current trail
	if got := err.Decorate(""); len(got) != 2 {
		t.Errorf("Decorate(\"\"): got %v", got)
	}
}

func TestDecorateHelper(t *testing.T) {
	err := SelectionError("unexpected token")
	wrapped := Decorate(err, "Compile")
	e, ok := wrapped.(Error)
	if !ok {
		t.Fatal("Decorate should return something implementing Error")
	}
	trail := e.Decorate("")
	if len(trail) != 1 || trail[0] != "Compile" {
		t.Errorf("Decorate helper: got %v", trail)
	}
}

func TestDecoratePanicsOnForeignError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Decorate on a non-chem.Error should panic")
		}
	}()
	Decorate(errPlain{"boom"}, "caller")
}

type errPlain struct{ msg string }

func (e errPlain) Error() string { return e.msg }

func TestIsEOF(t *testing.T) {
	if !IsEOF(ErrNoMoreSteps) {
		t.Error("IsEOF(ErrNoMoreSteps) should be true")
	}
	if IsEOF(FileError("no more steps")) == false {
		t.Error("IsEOF should match on kind and message, not identity")
	}
	if IsEOF(FileError("disk full")) {
		t.Error("IsEOF should be false for an unrelated FileError")
	}
	if IsEOF(FormatError("no more steps")) {
		t.Error("IsEOF should be false for the wrong Kind even with a matching message")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindFile:          "FileError",
		KindFormat:        "FormatError",
		KindMemory:        "MemoryError",
		KindSelection:     "SelectionError",
		KindConfiguration: "ConfigurationError",
		KindGeneric:       "Error",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String(): got %q, want %q", k, got, want)
		}
	}
}
