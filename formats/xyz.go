// Package formats holds the built-in format adapters (XYZ, GRO, PDB,
// MOL2, SDF, Tinker XYZ, LAMMPS data, Amber NetCDF, TRR, XTC, TNG) and
// registers each with the chem package's format registry on import. A
// caller that only needs a subset imports only the formats it needs for
// side effect, e.g. `import _ "github.com/AspirinCode/chemfiles/formats"`
// to get all of them, the same underscore-import idiom goChem's traj/*
// sub-packages are meant to be pulled in with.
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
		Name:          "XYZ",
		Extension:     ".xyz",
		Description:   "plain XYZ coordinates, goChem's original XyzRead/XyzWrite format",
		SupportsRead:  true,
		SupportsWrite: true,
	}, newXYZ)
}

func mustRegister(info chem.FormatInfo, f chem.Factory) {
	if err := chem.RegisterFormat(info, f); err != nil {
		panic(err)
	}
}

// xyzFormat implements chem.Format for the plain XYZ convention: line 1 is
// the atom count, line 2 a free-form comment (kept as the frame's "name"
// property), then one "NAME X Y Z [VX VY VZ]" line per atom, in angstroms.
type xyzFormat struct {
	h       *chemio.Handle
	mode    chemio.Mode
	natoms  int
	offsets []int64 // byte offset of the start of each step, built on first NSteps/Read
	indexed bool
	nwrites int
}

func newXYZ(h *chemio.Handle, mode chemio.Mode) (chem.Format, error) {
	return &xyzFormat{h: h, mode: mode, natoms: -1}, nil
}

func (f *xyzFormat) Info() chem.FormatInfo {
	return chem.FormatInfo{Name: "XYZ", Extension: ".xyz", SupportsRead: true, SupportsWrite: true}
}

func (f *xyzFormat) GuessBondsAfterRead() bool { return true }

func (f *xyzFormat) SetWarningSink(func(string)) {}

// buildIndex performs the linear forward scan the file substrate's
// indexing discipline calls for with variable-length text formats: it
// reads every step's atom count line, records the step's starting offset,
// and skips ahead by natoms+2 lines.
func (f *xyzFormat) buildIndex() error {
	if f.indexed {
		return nil
	}
	if f.mode != chemio.ReadMode {
		f.indexed = true
		return nil
	}
	if !f.h.Seekable() {
		return chem.FileError("XYZ requires a seekable file to index steps")
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
			break // EOF: done indexing
		}
		n, perr := strconv.Atoi(strings.TrimSpace(line))
		if perr != nil {
			return chem.FormatError("XYZ: malformed atom count %q", line)
		}
		if _, err := f.h.ReadLine(); err != nil {
			return chem.FormatError("XYZ: missing comment line: %v", err)
		}
		for i := 0; i < n; i++ {
			if _, err := f.h.ReadLine(); err != nil {
				return chem.FormatError("XYZ: truncated frame at atom %d: %v", i, err)
			}
		}
		f.offsets = append(f.offsets, off)
		if f.natoms < 0 {
			f.natoms = n
		}
	}
	f.indexed = true
	return f.h.Rewind()
}

func (f *xyzFormat) NSteps() (int, error) {
	if err := f.buildIndex(); err != nil {
		return 0, err
	}
	return len(f.offsets), nil
}

func (f *xyzFormat) Read(frame *chem.Frame) error {
	if err := f.buildIndex(); err != nil {
		return err
	}
	return f.readOneStep(frame)
}

func (f *xyzFormat) readOneStep(frame *chem.Frame) error {
	line, err := f.h.ReadLine()
	if err != nil {
		return chem.ErrNoMoreSteps
	}
	n, perr := strconv.Atoi(strings.TrimSpace(line))
	if perr != nil {
		return chem.FormatError("XYZ: malformed atom count %q", line)
	}
	comment, err := f.h.ReadLine()
	if err != nil {
		return chem.FormatError("XYZ: missing comment line: %v", err)
	}

	top := chem.NewTopology()
	coords := v3.ZeroCoords(n)
	var vels *v3.Coords
	hasVel := false

	for i := 0; i < n; i++ {
		raw, err := f.h.ReadLine()
		if err != nil {
			return chem.FormatError("XYZ: truncated frame at atom %d: %v", i, err)
		}
		fields := strings.Fields(raw)
		if len(fields) < 4 {
			return chem.FormatError("XYZ: line for atom %d ill-formed: %q", i, raw)
		}
		x, e1 := strconv.ParseFloat(fields[1], 64)
		y, e2 := strconv.ParseFloat(fields[2], 64)
		z, e3 := strconv.ParseFloat(fields[3], 64)
		if e1 != nil || e2 != nil || e3 != nil {
			return chem.FormatError("XYZ: bad coordinates for atom %d: %q", i, raw)
		}
		a := chem.NewAtom(fields[0])
		top.AddAtom(a)
		coords.SetVec(i, v3.NewVector3D(x, y, z))

		if len(fields) >= 7 {
			if !hasVel {
				vels = v3.ZeroCoords(n)
				hasVel = true
			}
			vx, e1 := strconv.ParseFloat(fields[4], 64)
			vy, e2 := strconv.ParseFloat(fields[5], 64)
			vz, e3 := strconv.ParseFloat(fields[6], 64)
			if e1 != nil || e2 != nil || e3 != nil {
				return chem.FormatError("XYZ: bad velocity for atom %d: %q", i, raw)
			}
			vels.SetVec(i, v3.NewVector3D(vx, vy, vz))
		}
	}

	frame.Topology = top
	frame.Positions = coords
	if hasVel {
		frame.Velocities = chem.Some(vels)
	} else {
		frame.Velocities = chem.None[*v3.Coords]()
	}
	frame.Cell = chem.InfiniteCell()
	frame.Properties = map[string]chem.Property{"name": chem.NewStringProperty(comment)}
	return nil
}

func (f *xyzFormat) ReadStep(i int, frame *chem.Frame) error {
	if err := f.buildIndex(); err != nil {
		return err
	}
	if i < 0 || i >= len(f.offsets) {
		return chem.FileError("XYZ: step %d out of range", i)
	}
	if err := f.h.Seekg(f.offsets[i]); err != nil {
		return err
	}
	return f.readOneStep(frame)
}

// Write appends frame in the XYZ convention. The comment line is taken from
// the frame's "name" property if set, otherwise left blank, mirroring
// goChem's XyzWrite, which always wrote a blank second line.
func (f *xyzFormat) Write(frame *chem.Frame) error {
	n := frame.AtomCount()
	if err := f.h.WriteString(fmt.Sprintf("%-4d\n", n)); err != nil {
		return err
	}
	comment := ""
	if p, err := frame.Property("name"); err == nil {
		if s, err := p.String(); err == nil {
			comment = s
		}
	}
	if err := f.h.WriteString(comment + "\n"); err != nil {
		return err
	}
	_, hasVel := frame.Velocities.Get()
	for i := 0; i < n; i++ {
		c := frame.Positions.Vec(i)
		name := frame.Topology.Atom(i).Name
		var line string
		if hasVel {
			v, _ := frame.Velocities.Get()
			vv := v.Vec(i)
			line = fmt.Sprintf("%-2s  %8.3f%8.3f%8.3f  %8.3f%8.3f%8.3f\n", name, c.X, c.Y, c.Z, vv.X, vv.Y, vv.Z)
		} else {
			line = fmt.Sprintf("%-2s  %8.3f%8.3f%8.3f\n", name, c.X, c.Y, c.Z)
		}
		if err := f.h.WriteString(line); err != nil {
			return err
		}
	}
	f.nwrites++
	return nil
}

func (f *xyzFormat) Close() error { return nil }
