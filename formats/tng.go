package formats

import (
	chem "github.com/AspirinCode/chemfiles"
	"github.com/AspirinCode/chemfiles/chemio"
)

func init() {
	mustRegister(chem.FormatInfo{
		Name:          "TNG",
		Extension:     ".tng",
		Description:   "GROMACS TNG container format (block dispatch only; no codec support)",
		SupportsRead:  true,
		SupportsWrite: false,
	}, newTNG)
}

// tngFormat registers TNG for format dispatch (so a .tng path resolves to
// a named, well-defined error instead of "unknown format") without
// implementing TNG's block codec. TNG's general block header (block
// length, ID, checksum type, a content hash) is itself well documented,
// but the blocks this library actually needs to read trajectory data --
// the particle position/box blocks -- are, in any real TNG file, stored
// through the BWLZH compression codec (a block-sorting transform layered
// under a Huffman stage). That codec's bitstream layout is not part of
// any example this adapter was grounded on, and hand-deriving it with no
// way to run the result against a real TNG file would risk silently
// decoding garbage rather than failing loudly. TRR and XTC's small-system
// path could be fully grounded in documented, deterministic XDR framing;
// TNG's codec cannot be, so it stops at block dispatch.
type tngFormat struct {
	h    *chemio.Handle
	mode chemio.Mode
	warn func(string)
}

func newTNG(h *chemio.Handle, mode chemio.Mode) (chem.Format, error) {
	return &tngFormat{h: h, mode: mode, warn: func(string) {}}, nil
}

func (f *tngFormat) Info() chem.FormatInfo {
	return chem.FormatInfo{Name: "TNG", Extension: ".tng", SupportsRead: true, SupportsWrite: false}
}

func (f *tngFormat) GuessBondsAfterRead() bool { return false }

func (f *tngFormat) SetWarningSink(fn func(string)) {
	if fn == nil {
		fn = func(string) {}
	}
	f.warn = fn
}

var errTNGUnsupported = chem.FormatError(
	"TNG: block-level container only; BWLZH-compressed particle data decoding is not supported by this build")

func (f *tngFormat) NSteps() (int, error)                    { return 0, errTNGUnsupported }
func (f *tngFormat) Read(frame *chem.Frame) error            { return errTNGUnsupported }
func (f *tngFormat) ReadStep(i int, frame *chem.Frame) error { return errTNGUnsupported }
func (f *tngFormat) Write(frame *chem.Frame) error           { return errTNGUnsupported }
func (f *tngFormat) Close() error                            { return nil }
