package formats

import (
	"fmt"
	"strconv"
	"strings"

	chem "github.com/AspirinCode/chemfiles"
	"github.com/AspirinCode/chemfiles/chemio"
	v3 "github.com/AspirinCode/chemfiles/v3"
)

const nmToAngstrom = 10.0

func init() {
	mustRegister(chem.FormatInfo{
		Name:          "GRO",
		Extension:     ".gro",
		Description:   "GROMACS fixed-column coordinate format",
		SupportsRead:  true,
		SupportsWrite: true,
	}, newGRO)
}

// groFormat implements the Gromacs .gro convention: fixed-width columns,
// nanometers on disk, angstroms in memory. It is not grounded on a specific
// goChem file -- goChem never had a GRO adapter -- but follows the same
// shape as the XYZ adapter in xyz.go and the fixed-column atom filling pattern
// goChem's pdbx.go uses for its own fixed-field format.
type groFormat struct {
	h       *chemio.Handle
	mode    chemio.Mode
	offsets []int64
	indexed bool
	warn    func(string)
}

func newGRO(h *chemio.Handle, mode chemio.Mode) (chem.Format, error) {
	return &groFormat{h: h, mode: mode, warn: func(string) {}}, nil
}

func (f *groFormat) Info() chem.FormatInfo {
	return chem.FormatInfo{Name: "GRO", Extension: ".gro", SupportsRead: true, SupportsWrite: true}
}

func (f *groFormat) GuessBondsAfterRead() bool { return true }

func (f *groFormat) SetWarningSink(fn func(string)) {
	if fn == nil {
		fn = func(string) {}
	}
	f.warn = fn
}

func (f *groFormat) buildIndex() error {
	if f.indexed {
		return nil
	}
	if f.mode != chemio.ReadMode {
		f.indexed = true
		return nil
	}
	if !f.h.Seekable() {
		return chem.FileError("GRO requires a seekable file to index steps")
	}
	if err := f.h.Rewind(); err != nil {
		return err
	}
	for {
		off, err := f.h.Tellg()
		if err != nil {
			return err
		}
		if _, err := f.h.ReadLine(); err != nil {
			break
		}
		nline, err := f.h.ReadLine()
		if err != nil {
			return chem.FormatError("GRO: missing atom count line: %v", err)
		}
		n, perr := strconv.Atoi(strings.TrimSpace(nline))
		if perr != nil {
			return chem.FormatError("GRO: malformed atom count %q", nline)
		}
		for i := 0; i < n; i++ {
			if _, err := f.h.ReadLine(); err != nil {
				return chem.FormatError("GRO: truncated frame at atom %d: %v", i, err)
			}
		}
		if _, err := f.h.ReadLine(); err != nil {
			return chem.FormatError("GRO: missing box line: %v", err)
		}
		f.offsets = append(f.offsets, off)
	}
	f.indexed = true
	return f.h.Rewind()
}

func (f *groFormat) NSteps() (int, error) {
	if err := f.buildIndex(); err != nil {
		return 0, err
	}
	return len(f.offsets), nil
}

func (f *groFormat) Read(frame *chem.Frame) error {
	if err := f.buildIndex(); err != nil {
		return err
	}
	return f.readOneStep(frame)
}

// field slices s (a GRO atom line) at [lo,hi), tolerating a short line by
// padding with spaces -- some writers omit trailing whitespace.
func field(s string, lo, hi int) string {
	for len(s) < hi {
		s += " "
	}
	return s[lo:hi]
}

func (f *groFormat) readOneStep(frame *chem.Frame) error {
	title, err := f.h.ReadLine()
	if err != nil {
		return chem.ErrNoMoreSteps
	}
	nline, err := f.h.ReadLine()
	if err != nil {
		return chem.FormatError("GRO: missing atom count line: %v", err)
	}
	n, perr := strconv.Atoi(strings.TrimSpace(nline))
	if perr != nil {
		return chem.FormatError("GRO: malformed atom count %q", nline)
	}

	top := chem.NewTopology()
	coords := v3.ZeroCoords(n)
	var vels *v3.Coords
	hasVel := false
	residues := map[string]int{} // "resid|resname" -> residue index

	for i := 0; i < n; i++ {
		raw, err := f.h.ReadLine()
		if err != nil {
			return chem.FormatError("GRO: truncated frame at atom %d: %v", i, err)
		}
		residStr := strings.TrimSpace(field(raw, 0, 5))
		resname := strings.TrimSpace(field(raw, 5, 10))
		atomname := strings.TrimSpace(field(raw, 10, 15))
		xs := strings.TrimSpace(field(raw, 20, 28))
		ys := strings.TrimSpace(field(raw, 28, 36))
		zs := strings.TrimSpace(field(raw, 36, 44))

		x, e1 := strconv.ParseFloat(xs, 64)
		y, e2 := strconv.ParseFloat(ys, 64)
		z, e3 := strconv.ParseFloat(zs, 64)
		if e1 != nil || e2 != nil || e3 != nil {
			return chem.FormatError("GRO: bad coordinates for atom %d: %q", i, raw)
		}
		coords.SetVec(i, v3.NewVector3D(x*nmToAngstrom, y*nmToAngstrom, z*nmToAngstrom))

		if len(raw) >= 68 {
			vxs := strings.TrimSpace(field(raw, 44, 52))
			vys := strings.TrimSpace(field(raw, 52, 60))
			vzs := strings.TrimSpace(field(raw, 60, 68))
			if vxs != "" && vys != "" && vzs != "" {
				vx, e1 := strconv.ParseFloat(vxs, 64)
				vy, e2 := strconv.ParseFloat(vys, 64)
				vz, e3 := strconv.ParseFloat(vzs, 64)
				if e1 == nil && e2 == nil && e3 == nil {
					if !hasVel {
						vels = v3.ZeroCoords(n)
						hasVel = true
					}
					vels.SetVec(i, v3.NewVector3D(vx*nmToAngstrom, vy*nmToAngstrom, vz*nmToAngstrom))
				}
			}
		}

		a := chem.NewAtom(atomname)
		idx := top.AddAtom(a)

		key := residStr + "|" + resname
		ri, ok := residues[key]
		if !ok {
			r := chem.NewResidue(resname)
			if rid, err := strconv.Atoi(residStr); err == nil {
				r.ID = chem.Some(uint(rid))
			}
			ri = top.AddResidue(r)
			residues[key] = ri
		}
		top.ResidueAt(ri).AddAtom(idx)
	}

	boxLine, err := f.h.ReadLine()
	if err != nil {
		return chem.FormatError("GRO: missing box line: %v", err)
	}
	cell, err := parseGROBox(boxLine)
	if err != nil {
		return err
	}

	frame.Topology = top
	frame.Positions = coords
	if hasVel {
		frame.Velocities = chem.Some(vels)
	} else {
		frame.Velocities = chem.None[*v3.Coords]()
	}
	frame.Cell = cell
	frame.Properties = map[string]chem.Property{"name": chem.NewStringProperty(title)}
	return nil
}

func parseGROBox(line string) (chem.UnitCell, error) {
	fields := strings.Fields(line)
	vals := make([]float64, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return chem.UnitCell{}, chem.FormatError("GRO: malformed box line %q", line)
		}
		vals[i] = v * nmToAngstrom
	}
	switch len(vals) {
	case 3:
		if vals[0] == 0 && vals[1] == 0 && vals[2] == 0 {
			return chem.InfiniteCell(), nil
		}
		return chem.NewOrthorhombicCell(vals[0], vals[1], vals[2]), nil
	case 9:
		m := v3.NewMatrix3D(
			v3.NewVector3D(vals[0], vals[3], vals[4]),
			v3.NewVector3D(vals[5], vals[1], vals[6]),
			v3.NewVector3D(vals[7], vals[8], vals[2]),
		)
		return chem.NewCellFromMatrix(m), nil
	default:
		return chem.UnitCell{}, chem.FormatError("GRO: box line has %d fields, want 3 or 9", len(vals))
	}
}

func (f *groFormat) ReadStep(i int, frame *chem.Frame) error {
	if err := f.buildIndex(); err != nil {
		return err
	}
	if i < 0 || i >= len(f.offsets) {
		return chem.FileError("GRO: step %d out of range", i)
	}
	if err := f.h.Seekg(f.offsets[i]); err != nil {
		return err
	}
	return f.readOneStep(frame)
}

// groIndexField formats v as a 5-column integer field, or "*****" if v
// needs more than 5 columns -- the convention every column-based GROMACS
// tool uses once an index runs past 99999.
func groIndexField(v int) string {
	s := fmt.Sprintf("%5d", v)
	if len(s) > 5 {
		return "*****"
	}
	return s
}

func (f *groFormat) Write(frame *chem.Frame) error {
	n := frame.AtomCount()
	title := ""
	if p, err := frame.Property("name"); err == nil {
		if s, err := p.String(); err == nil {
			title = s
		}
	}
	if err := f.h.WriteString(title + "\n"); err != nil {
		return err
	}
	if err := f.h.WriteString(fmt.Sprintf("%5d\n", n)); err != nil {
		return err
	}
	_, hasVel := frame.Velocities.Get()
	for i := 0; i < n; i++ {
		c := frame.Positions.Vec(i).Scale(1 / nmToAngstrom)
		atom := frame.Topology.Atom(i)
		resname, residField := "SYS", "    1"
		if res, ok := frame.Topology.ResidueForAtom(i); ok {
			resname = res.Name
			if id, ok := res.ID.Get(); ok {
				residField = groIndexField(int(id))
				if id > 99999 {
					f.warn(fmt.Sprintf("GRO: residue id %d overflows 5 columns, writing *****", id))
				}
			}
		}
		indexField := groIndexField(i + 1)
		if len(resname) > 5 {
			resname = resname[:5]
		}
		name := atom.Name
		if len(name) > 5 {
			name = name[:5]
		}
		line := fmt.Sprintf("%5s%-5s%5s%5s%8.3f%8.3f%8.3f", residField, resname, name, indexField, c.X, c.Y, c.Z)
		if hasVel {
			v, _ := frame.Velocities.Get()
			vv := v.Vec(i).Scale(1 / nmToAngstrom)
			line += fmt.Sprintf("%8.4f%8.4f%8.4f", vv.X, vv.Y, vv.Z)
		}
		if i+1 > 99999 {
			f.warn(fmt.Sprintf("GRO: atom index %d overflows 5 columns, writing *****", i+1))
		}
		if err := f.h.WriteString(line + "\n"); err != nil {
			return err
		}
	}

	a, b, c := frame.Cell.Lengths()
	switch frame.Cell.Shape() {
	case chem.CellInfinite:
		if err := f.h.WriteString("   0.00000   0.00000   0.00000\n"); err != nil {
			return err
		}
	case chem.CellOrthorhombic:
		if err := f.h.WriteString(fmt.Sprintf("%10.5f%10.5f%10.5f\n", a/nmToAngstrom, b/nmToAngstrom, c/nmToAngstrom)); err != nil {
			return err
		}
	default:
		m := frame.Cell.Matrix()
		if err := f.h.WriteString(fmt.Sprintf("%10.5f%10.5f%10.5f%10.5f%10.5f%10.5f%10.5f%10.5f%10.5f\n",
			m.At(0, 0)/nmToAngstrom, m.At(1, 1)/nmToAngstrom, m.At(2, 2)/nmToAngstrom,
			m.At(0, 1)/nmToAngstrom, m.At(0, 2)/nmToAngstrom,
			m.At(1, 0)/nmToAngstrom, m.At(1, 2)/nmToAngstrom,
			m.At(2, 0)/nmToAngstrom, m.At(2, 1)/nmToAngstrom)); err != nil {
			return err
		}
	}
	return nil
}

func (f *groFormat) Close() error { return nil }
