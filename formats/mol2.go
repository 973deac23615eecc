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
		Name:          "MOL2",
		Extension:     ".mol2",
		Description:   "Tripos MOL2 molecule format",
		SupportsRead:  true,
		SupportsWrite: true,
	}, newMOL2)
}

// mol2Format reads and writes single- or multi-molecule Tripos MOL2 files.
// Each @<TRIPOS>MOLECULE block is one trajectory step; this mirrors the
// "one record block per step" shape goChem's stf.go header/frame loop
// uses, applied to MOL2's section-tag framing instead of stf's "**" marker.
type mol2Format struct {
	h       *chemio.Handle
	mode    chemio.Mode
	offsets []int64
	indexed bool
	warn    func(string)
}

func newMOL2(h *chemio.Handle, mode chemio.Mode) (chem.Format, error) {
	return &mol2Format{h: h, mode: mode, warn: func(string) {}}, nil
}

func (f *mol2Format) Info() chem.FormatInfo {
	return chem.FormatInfo{Name: "MOL2", Extension: ".mol2", SupportsRead: true, SupportsWrite: true}
}

func (f *mol2Format) GuessBondsAfterRead() bool { return false }

func (f *mol2Format) SetWarningSink(fn func(string)) {
	if fn == nil {
		fn = func(string) {}
	}
	f.warn = fn
}

func (f *mol2Format) buildIndex() error {
	if f.indexed {
		return nil
	}
	if f.mode != chemio.ReadMode {
		f.indexed = true
		return nil
	}
	if !f.h.Seekable() {
		return chem.FileError("MOL2 requires a seekable file to index steps")
	}
	if err := f.h.Rewind(); err != nil {
		return err
	}
	for {
		off, err := f.h.Tellg()
		if err != nil {
			return err
		}
		line, err := f.h.ReadLine()
		if err != nil {
			break
		}
		if strings.HasPrefix(strings.TrimSpace(line), "@<TRIPOS>MOLECULE") {
			f.offsets = append(f.offsets, off)
		}
	}
	f.indexed = true
	return f.h.Rewind()
}

func (f *mol2Format) NSteps() (int, error) {
	if err := f.buildIndex(); err != nil {
		return 0, err
	}
	return len(f.offsets), nil
}

func (f *mol2Format) Read(frame *chem.Frame) error {
	if err := f.buildIndex(); err != nil {
		return err
	}
	return f.readOneStep(frame)
}

var mol2BondOrders = map[string]chem.BondOrder{
	"1":  chem.BondSingle,
	"2":  chem.BondDouble,
	"3":  chem.BondTriple,
	"ar": chem.BondAromatic,
	"am": chem.BondAmide,
	"du": chem.BondUnknown,
	"un": chem.BondUnknown,
}

func mol2BondOrderString(o chem.BondOrder) string {
	switch o {
	case chem.BondSingle:
		return "1"
	case chem.BondDouble:
		return "2"
	case chem.BondTriple:
		return "3"
	case chem.BondAromatic:
		return "ar"
	case chem.BondAmide:
		return "am"
	default:
		return "un"
	}
}

func (f *mol2Format) readOneStep(frame *chem.Frame) error {
	line, err := f.h.ReadLine()
	if err != nil {
		return chem.ErrNoMoreSteps
	}
	if !strings.HasPrefix(strings.TrimSpace(line), "@<TRIPOS>MOLECULE") {
		return chem.FormatError("MOL2: expected @<TRIPOS>MOLECULE, got %q", line)
	}
	name, err := f.h.ReadLine()
	if err != nil {
		return chem.FormatError("MOL2: missing molecule name: %v", err)
	}
	counts, err := f.h.ReadLine()
	if err != nil {
		return chem.FormatError("MOL2: missing counts line: %v", err)
	}
	fields := strings.Fields(counts)
	if len(fields) < 2 {
		return chem.FormatError("MOL2: malformed counts line %q", counts)
	}
	natoms, e1 := strconv.Atoi(fields[0])
	nbonds, e2 := strconv.Atoi(fields[1])
	if e1 != nil || e2 != nil {
		return chem.FormatError("MOL2: malformed counts line %q", counts)
	}

	top := chem.NewTopology()
	coords := v3.ZeroCoords(natoms)
	residues := map[string]int{}

	for {
		l, err := f.h.ReadLine()
		if err != nil {
			return chem.FormatError("MOL2: missing @<TRIPOS>ATOM section: %v", err)
		}
		if strings.HasPrefix(strings.TrimSpace(l), "@<TRIPOS>ATOM") {
			break
		}
	}
	for i := 0; i < natoms; i++ {
		l, err := f.h.ReadLine()
		if err != nil {
			return chem.FormatError("MOL2: truncated atom section at atom %d: %v", i, err)
		}
		fs := strings.Fields(l)
		if len(fs) < 5 {
			return chem.FormatError("MOL2: malformed atom line %q", l)
		}
		x, e1 := strconv.ParseFloat(fs[2], 64)
		y, e2 := strconv.ParseFloat(fs[3], 64)
		z, e3 := strconv.ParseFloat(fs[4], 64)
		if e1 != nil || e2 != nil || e3 != nil {
			return chem.FormatError("MOL2: bad coordinates on atom line %q", l)
		}
		a := chem.NewAtom(fs[1])
		if len(fs) >= 6 {
			a.Type = fs[5]
		}
		if len(fs) >= 9 {
			if q, err := strconv.ParseFloat(fs[8], 64); err == nil {
				a.Charge = q
			}
		}
		idx := top.AddAtom(a)
		coords.SetVec(i, v3.NewVector3D(x, y, z))

		if len(fs) >= 7 {
			resid := fs[6]
			resname := "SYS"
			if len(fs) >= 8 {
				resname = fs[7]
			}
			key := resid + "|" + resname
			ri, ok := residues[key]
			if !ok {
				r := chem.NewResidue(resname)
				if rid, err := strconv.Atoi(resid); err == nil {
					r.ID = chem.Some(uint(rid))
				}
				ri = top.AddResidue(r)
				residues[key] = ri
			}
			top.ResidueAt(ri).AddAtom(idx)
		}
	}

	for {
		off, err := f.h.Tellg()
		if err != nil {
			return err
		}
		l, err := f.h.ReadLine()
		if err != nil {
			break
		}
		if strings.HasPrefix(strings.TrimSpace(l), "@<TRIPOS>BOND") {
			for b := 0; b < nbonds; b++ {
				bl, err := f.h.ReadLine()
				if err != nil {
					return chem.FormatError("MOL2: truncated bond section at bond %d: %v", b, err)
				}
				bf := strings.Fields(bl)
				if len(bf) < 4 {
					return chem.FormatError("MOL2: malformed bond line %q", bl)
				}
				from, e1 := strconv.Atoi(bf[1])
				to, e2 := strconv.Atoi(bf[2])
				if e1 != nil || e2 != nil {
					return chem.FormatError("MOL2: malformed bond line %q", bl)
				}
				order, ok := mol2BondOrders[strings.ToLower(bf[3])]
				if !ok {
					order = chem.BondUnknown
				}
				top.AddBond(from-1, to-1, order)
			}
			break
		}
		if strings.HasPrefix(strings.TrimSpace(l), "@<TRIPOS>MOLECULE") {
			// next molecule starts; this one had no bond section. Step back
			// to its header so the next Read starts there.
			if err := f.h.Seekg(off); err != nil {
				return err
			}
			break
		}
	}

	frame.Topology = top
	frame.Positions = coords
	frame.Velocities = chem.None[*v3.Coords]()
	frame.Cell = chem.InfiniteCell()
	frame.Properties = map[string]chem.Property{"name": chem.NewStringProperty(name)}
	return nil
}

func (f *mol2Format) ReadStep(i int, frame *chem.Frame) error {
	if err := f.buildIndex(); err != nil {
		return err
	}
	if i < 0 || i >= len(f.offsets) {
		return chem.FileError("MOL2: step %d out of range", i)
	}
	if err := f.h.Seekg(f.offsets[i]); err != nil {
		return err
	}
	return f.readOneStep(frame)
}

func (f *mol2Format) Write(frame *chem.Frame) error {
	n := frame.AtomCount()
	bonds := frame.Topology.Bonds()
	name := "molecule"
	if p, err := frame.Property("name"); err == nil {
		if s, err := p.String(); err == nil && s != "" {
			name = s
		}
	}
	if err := f.h.WriteString("@<TRIPOS>MOLECULE\n"); err != nil {
		return err
	}
	if err := f.h.WriteString(name + "\n"); err != nil {
		return err
	}
	if err := f.h.WriteString(fmt.Sprintf("%d %d 0 0 0\n", n, len(bonds))); err != nil {
		return err
	}
	if err := f.h.WriteString("SMALL\nNO_CHARGES\n"); err != nil {
		return err
	}
	if err := f.h.WriteString("@<TRIPOS>ATOM\n"); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		c := frame.Positions.Vec(i)
		a := frame.Topology.Atom(i)
		resname, resid := "SYS", 1
		if res, ok := frame.Topology.ResidueForAtom(i); ok {
			resname = res.Name
			if id, ok := res.ID.Get(); ok {
				resid = int(id)
			}
		}
		line := fmt.Sprintf("%7d %-8s %10.4f %10.4f %10.4f %-5s %5d %-8s %10.4f\n",
			i+1, a.Name, c.X, c.Y, c.Z, a.Type, resid, resname, a.Charge)
		if err := f.h.WriteString(line); err != nil {
			return err
		}
	}
	if err := f.h.WriteString("@<TRIPOS>BOND\n"); err != nil {
		return err
	}
	for i, b := range bonds {
		line := fmt.Sprintf("%6d %5d %5d %s\n", i+1, b.I+1, b.J+1, mol2BondOrderString(b.Order))
		if err := f.h.WriteString(line); err != nil {
			return err
		}
	}
	return nil
}

func (f *mol2Format) Close() error { return nil }
