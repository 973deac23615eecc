package formats

import (
	chem "github.com/AspirinCode/chemfiles"
	"github.com/AspirinCode/chemfiles/chemio"
	v3 "github.com/AspirinCode/chemfiles/v3"
)

func init() {
	mustRegister(chem.FormatInfo{
		Name:          "XTC",
		Extension:     ".xtc",
		Description:   "GROMACS XTC compressed binary trajectory",
		SupportsRead:  true,
		SupportsWrite: true,
	}, newXTC)
}

const xtcMagic = 1995

// xtcSmallSystemLimit is the atom count below which GROMACS's own xdrfile
// library skips its "3dfcoord" bit-packed compression entirely and stores
// plain XDR floats -- the same threshold xdrfile_xtc.c's xtc3dfcoord uses.
// This adapter implements exactly that raw path and nothing past it: the
// compressed path packs coordinates into a variable-width bitstream keyed
// off a runtime-computed integer precision budget, and getting its bit
// arithmetic wrong would silently corrupt coordinates in a way no amount
// of code review here can catch without running it against real GROMACS
// output. A trajectory with more than xtcSmallSystemLimit atoms is
// reported as an explicit FormatError instead.
const xtcSmallSystemLimit = 9

// xtcFormat reads and writes the uncompressed-coordinate corner of XTC:
// the header (magic, natoms, step, time, box) is always plain XDR, the
// same as TRR's; only the coordinate block differs, and only for systems
// above xtcSmallSystemLimit atoms.
type xtcFormat struct {
	h       *chemio.Handle
	mode    chemio.Mode
	offsets []int64
	indexed bool
	natoms  int
	warn    func(string)
}

func newXTC(h *chemio.Handle, mode chemio.Mode) (chem.Format, error) {
	return &xtcFormat{h: h, mode: mode, warn: func(string) {}}, nil
}

func (f *xtcFormat) Info() chem.FormatInfo {
	return chem.FormatInfo{Name: "XTC", Extension: ".xtc", SupportsRead: true, SupportsWrite: true}
}

// GuessBondsAfterRead is false: XTC atoms are read as unnamed "X"
// placeholders, which have no van der Waals radius to guess bonds from.
func (f *xtcFormat) GuessBondsAfterRead() bool { return false }

func (f *xtcFormat) SetWarningSink(fn func(string)) {
	if fn == nil {
		fn = func(string) {}
	}
	f.warn = fn
}

type xtcHeader struct {
	natoms, step int32
	time         float32
	box          [9]float32
}

func readXTCHeader(x *xdrReader) (*xtcHeader, error) {
	magic, err := x.Int()
	if err != nil {
		return nil, chem.ErrNoMoreSteps
	}
	if magic != xtcMagic {
		return nil, chem.FormatError("XTC: bad magic number %d", magic)
	}
	h := &xtcHeader{}
	natoms, err := x.Int()
	if err != nil {
		return nil, chem.FormatError("XTC: truncated header: %v", err)
	}
	h.natoms = natoms
	if h.step, err = x.Int(); err != nil {
		return nil, chem.FormatError("XTC: truncated header: %v", err)
	}
	if h.time, err = x.Float32(); err != nil {
		return nil, chem.FormatError("XTC: truncated header: %v", err)
	}
	box, err := x.Float32Array(9)
	if err != nil {
		return nil, chem.FormatError("XTC: truncated box: %v", err)
	}
	copy(h.box[:], box)
	if h.natoms > xtcSmallSystemLimit {
		return nil, chem.FormatError(
			"XTC: %d atoms exceeds the %d-atom uncompressed-path limit this build supports; "+
				"the compressed 3dfcoord coordinate block is not implemented", h.natoms, xtcSmallSystemLimit)
	}
	return h, nil
}

func (f *xtcFormat) buildIndex() error {
	if f.indexed {
		return nil
	}
	if f.mode != chemio.ReadMode {
		f.indexed = true
		return nil
	}
	if !f.h.Seekable() {
		return chem.FileError("XTC requires a seekable file to index steps")
	}
	if err := f.h.Rewind(); err != nil {
		return err
	}
	x := newXDRReader(f.h)
	for {
		off, err := f.h.Tellg()
		if err != nil {
			return err
		}
		hdr, err := readXTCHeader(x)
		if err != nil {
			if chem.IsEOF(err) {
				break
			}
			return err
		}
		f.natoms = int(hdr.natoms)
		if _, err := x.Float32Array(3 * f.natoms); err != nil {
			return chem.FormatError("XTC: truncated coordinate block: %v", err)
		}
		f.offsets = append(f.offsets, off)
	}
	f.indexed = true
	return f.h.Rewind()
}

func (f *xtcFormat) NSteps() (int, error) {
	if err := f.buildIndex(); err != nil {
		return 0, err
	}
	return len(f.offsets), nil
}

func (f *xtcFormat) Read(frame *chem.Frame) error {
	if err := f.buildIndex(); err != nil {
		return err
	}
	return f.readOneStep(frame)
}

func (f *xtcFormat) readOneStep(frame *chem.Frame) error {
	x := newXDRReader(f.h)
	hdr, err := readXTCHeader(x)
	if err != nil {
		return err
	}
	natoms := int(hdr.natoms)
	xs, err := x.Float32Array(3 * natoms)
	if err != nil {
		return chem.FormatError("XTC: truncated coordinate block: %v", err)
	}
	coords := v3.ZeroCoords(natoms)
	for i := 0; i < natoms; i++ {
		coords.SetVec(i, v3.NewVector3D(float64(xs[3*i])*10, float64(xs[3*i+1])*10, float64(xs[3*i+2])*10))
	}
	m := v3.NewMatrix3D(
		v3.NewVector3D(float64(hdr.box[0])*10, float64(hdr.box[1])*10, float64(hdr.box[2])*10),
		v3.NewVector3D(float64(hdr.box[3])*10, float64(hdr.box[4])*10, float64(hdr.box[5])*10),
		v3.NewVector3D(float64(hdr.box[6])*10, float64(hdr.box[7])*10, float64(hdr.box[8])*10),
	)
	frame.Topology = chem.NewTopology()
	for i := 0; i < natoms; i++ {
		frame.Topology.AddAtom(chem.NewAtom("X"))
	}
	frame.Positions = coords
	frame.Velocities = chem.None[*v3.Coords]()
	frame.Cell = chem.NewCellFromMatrix(m)
	frame.Step = uint64(hdr.step)
	return nil
}

func (f *xtcFormat) ReadStep(i int, frame *chem.Frame) error {
	if err := f.buildIndex(); err != nil {
		return err
	}
	if i < 0 || i >= len(f.offsets) {
		return chem.FileError("XTC: step %d out of range", i)
	}
	if err := f.h.Seekg(f.offsets[i]); err != nil {
		return err
	}
	return f.readOneStep(frame)
}

func (f *xtcFormat) Write(frame *chem.Frame) error {
	n := frame.AtomCount()
	if n > xtcSmallSystemLimit {
		return chem.FormatError(
			"XTC: %d atoms exceeds the %d-atom uncompressed-path limit this build supports; "+
				"writing the compressed 3dfcoord coordinate block is not implemented", n, xtcSmallSystemLimit)
	}
	x := newXDRWriter(f.h)
	if err := x.Int(xtcMagic); err != nil {
		return err
	}
	if err := x.Int(int32(n)); err != nil {
		return err
	}
	if err := x.Int(int32(frame.Step)); err != nil {
		return err
	}
	if err := x.Float32(float32(frame.Step)); err != nil {
		return err
	}
	m := frame.Cell.Matrix()
	box := make([]float32, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			box[3*i+j] = float32(m.At(i, j) / 10)
		}
	}
	if err := x.Float32Array(box); err != nil {
		return err
	}
	xs := make([]float32, 3*n)
	for i := 0; i < n; i++ {
		c := frame.Positions.Vec(i)
		xs[3*i], xs[3*i+1], xs[3*i+2] = float32(c.X/10), float32(c.Y/10), float32(c.Z/10)
	}
	return x.Float32Array(xs)
}

func (f *xtcFormat) Close() error { return nil }
