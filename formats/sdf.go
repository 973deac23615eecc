package formats

import (
	"fmt"
	"strconv"
	"strings"

	chem "github.com/AspirinCode/chemfiles"
	"github.com/AspirinCode/chemfiles/chemio"
	v3 "github.com/AspirinCode/chemfiles/v3"
)

func init() {
	mustRegister(chem.FormatInfo{
		Name:          "SDF",
		Extension:     ".sdf",
		Description:   "MDL molfile V2000 / SDF structure format",
		SupportsRead:  true,
		SupportsWrite: true,
	}, newSDF)
}

// sdfFormat reads and writes MDL molfile V2000 records; an SDF file is a
// sequence of them separated by a "$$$$" line. Each record is one step.
type sdfFormat struct {
	h       *chemio.Handle
	mode    chemio.Mode
	offsets []int64
	indexed bool
	warn    func(string)
}

func newSDF(h *chemio.Handle, mode chemio.Mode) (chem.Format, error) {
	return &sdfFormat{h: h, mode: mode, warn: func(string) {}}, nil
}

func (f *sdfFormat) Info() chem.FormatInfo {
	return chem.FormatInfo{Name: "SDF", Extension: ".sdf", SupportsRead: true, SupportsWrite: true}
}

func (f *sdfFormat) GuessBondsAfterRead() bool { return false }

func (f *sdfFormat) SetWarningSink(fn func(string)) {
	if fn == nil {
		fn = func(string) {}
	}
	f.warn = fn
}

func (f *sdfFormat) buildIndex() error {
	if f.indexed {
		return nil
	}
	if f.mode != chemio.ReadMode {
		f.indexed = true
		return nil
	}
	if !f.h.Seekable() {
		return chem.FileError("SDF requires a seekable file to index steps")
	}
	if err := f.h.Rewind(); err != nil {
		return err
	}
	atStart := true
	for {
		cur, err := f.h.Tellg()
		if err != nil {
			return err
		}
		if atStart {
			f.offsets = append(f.offsets, cur)
			atStart = false
		}
		line, err := f.h.ReadLine()
		if err != nil {
			break
		}
		if strings.TrimSpace(line) == "$$$$" {
			atStart = true
		}
	}
	// A trailing "$$$$" leaves a phantom empty record starting at EOF;
	// drop it.
	if eof, err := f.h.Tellg(); err == nil && len(f.offsets) > 0 && f.offsets[len(f.offsets)-1] == eof {
		f.offsets = f.offsets[:len(f.offsets)-1]
	}
	f.indexed = true
	return f.h.Rewind()
}

func (f *sdfFormat) NSteps() (int, error) {
	if err := f.buildIndex(); err != nil {
		return 0, err
	}
	return len(f.offsets), nil
}

func (f *sdfFormat) Read(frame *chem.Frame) error {
	if err := f.buildIndex(); err != nil {
		return err
	}
	return f.readOneStep(frame)
}

var sdfBondOrders = map[int]chem.BondOrder{1: chem.BondSingle, 2: chem.BondDouble, 3: chem.BondTriple, 4: chem.BondAromatic}

func sdfBondOrderInt(o chem.BondOrder) int {
	switch o {
	case chem.BondDouble:
		return 2
	case chem.BondTriple:
		return 3
	case chem.BondAromatic:
		return 4
	default:
		return 1
	}
}

func (f *sdfFormat) readOneStep(frame *chem.Frame) error {
	name, err := f.h.ReadLine()
	if err != nil {
		return chem.ErrNoMoreSteps
	}
	if _, err := f.h.ReadLine(); err != nil { // program/timestamp line
		return chem.FormatError("SDF: missing header line 2: %v", err)
	}
	comment, err := f.h.ReadLine()
	if err != nil {
		return chem.FormatError("SDF: missing header line 3: %v", err)
	}
	countsLine, err := f.h.ReadLine()
	if err != nil {
		return chem.FormatError("SDF: missing counts line: %v", err)
	}
	if len(countsLine) < 6 {
		return chem.FormatError("SDF: malformed counts line %q", countsLine)
	}
	natoms, e1 := strconv.Atoi(strings.TrimSpace(countsLine[0:3]))
	nbonds, e2 := strconv.Atoi(strings.TrimSpace(countsLine[3:6]))
	if e1 != nil || e2 != nil {
		return chem.FormatError("SDF: malformed counts line %q", countsLine)
	}

	top := chem.NewTopology()
	coords := v3.ZeroCoords(natoms)
	for i := 0; i < natoms; i++ {
		l, err := f.h.ReadLine()
		if err != nil {
			return chem.FormatError("SDF: truncated atom block at atom %d: %v", i, err)
		}
		fs := strings.Fields(l)
		if len(fs) < 4 {
			return chem.FormatError("SDF: malformed atom line %q", l)
		}
		x, e1 := strconv.ParseFloat(fs[0], 64)
		y, e2 := strconv.ParseFloat(fs[1], 64)
		z, e3 := strconv.ParseFloat(fs[2], 64)
		if e1 != nil || e2 != nil || e3 != nil {
			return chem.FormatError("SDF: bad coordinates on atom line %q", l)
		}
		a := chem.NewAtom(fs[3])
		top.AddAtom(a)
		coords.SetVec(i, v3.NewVector3D(x, y, z))
	}
	for b := 0; b < nbonds; b++ {
		l, err := f.h.ReadLine()
		if err != nil {
			return chem.FormatError("SDF: truncated bond block at bond %d: %v", b, err)
		}
		if len(l) < 9 {
			return chem.FormatError("SDF: malformed bond line %q", l)
		}
		from, e1 := strconv.Atoi(strings.TrimSpace(l[0:3]))
		to, e2 := strconv.Atoi(strings.TrimSpace(l[3:6]))
		ord, e3 := strconv.Atoi(strings.TrimSpace(l[6:9]))
		if e1 != nil || e2 != nil || e3 != nil {
			return chem.FormatError("SDF: malformed bond line %q", l)
		}
		order, ok := sdfBondOrders[ord]
		if !ok {
			order = chem.BondUnknown
		}
		top.AddBond(from-1, to-1, order)
	}

	// Drain to the next "$$$$" record separator, or EOF.
	for {
		l, err := f.h.ReadLine()
		if err != nil {
			break
		}
		if strings.TrimSpace(l) == "$$$$" {
			break
		}
	}

	frame.Topology = top
	frame.Positions = coords
	frame.Velocities = chem.None[*v3.Coords]()
	frame.Cell = chem.InfiniteCell()
	frame.Properties = map[string]chem.Property{
		"name":    chem.NewStringProperty(name),
		"comment": chem.NewStringProperty(comment),
	}
	return nil
}

func (f *sdfFormat) ReadStep(i int, frame *chem.Frame) error {
	if err := f.buildIndex(); err != nil {
		return err
	}
	if i < 0 || i >= len(f.offsets) {
		return chem.FileError("SDF: step %d out of range", i)
	}
	if err := f.h.Seekg(f.offsets[i]); err != nil {
		return err
	}
	return f.readOneStep(frame)
}

func (f *sdfFormat) Write(frame *chem.Frame) error {
	n := frame.AtomCount()
	bonds := frame.Topology.Bonds()
	name := ""
	if p, err := frame.Property("name"); err == nil {
		if s, err := p.String(); err == nil {
			name = s
		}
	}
	if err := f.h.WriteString(name + "\n  chemfiles\n\n"); err != nil {
		return err
	}
	if err := f.h.WriteString(fmt.Sprintf("%3d%3d  0  0  0  0  0  0  0  0999 V2000\n", n, len(bonds))); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		c := frame.Positions.Vec(i)
		a := frame.Topology.Atom(i)
		line := fmt.Sprintf("%10.4f%10.4f%10.4f %-3s 0  0  0  0  0  0  0  0  0  0  0  0\n", c.X, c.Y, c.Z, a.Name)
		if err := f.h.WriteString(line); err != nil {
			return err
		}
	}
	for _, b := range bonds {
		line := fmt.Sprintf("%3d%3d%3d  0\n", b.I+1, b.J+1, sdfBondOrderInt(b.Order))
		if err := f.h.WriteString(line); err != nil {
			return err
		}
	}
	return f.h.WriteString("M  END\n$$$$\n")
}

func (f *sdfFormat) Close() error { return nil }
