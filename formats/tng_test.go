package formats

import (
	"path/filepath"
	"testing"

	chem "github.com/AspirinCode/chemfiles"
	"github.com/AspirinCode/chemfiles/chemio"
)

func TestTNGReadReturnsExplicitUnsupportedError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "traj.tng")
	h, err := chemio.Open(path, chemio.WriteMode, chemio.NONE)
	if err != nil {
		t.Fatal(err)
	}
	h.WriteString("not a real TNG container")
	h.Close()

	rd, err := chem.OpenTrajectory(path, chemio.ReadMode, "", chemio.AUTO)
	if err != nil {
		t.Fatalf("OpenTrajectory: %v", err)
	}
	defer rd.Close()

	if _, err := rd.NSteps(); err == nil {
		t.Error("NSteps on TNG should report the unsupported-codec error, not succeed")
	}
	f := chem.NewFrame()
	if err := rd.Read(f); err == nil {
		t.Error("Read on TNG should report the unsupported-codec error, not succeed")
	}
}

func TestTNGRegisteredAsReadOnly(t *testing.T) {
	info := (&tngFormat{}).Info()
	if !info.SupportsRead {
		t.Error("TNG should report SupportsRead=true (block dispatch only)")
	}
	if info.SupportsWrite {
		t.Error("TNG should report SupportsWrite=false, writing is not implemented")
	}
}
