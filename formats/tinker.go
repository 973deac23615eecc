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
		Name:          "TinkerXYZ",
		Extension:     ".txyz",
		Description:   "Tinker XYZ coordinate/connectivity format",
		SupportsRead:  true,
		SupportsWrite: true,
	}, newTinker)
}

// tinkerFormat reads and writes the Tinker molecular-mechanics XYZ
// convention: like the plain XYZ adapter's counting header, but each atom
// line also carries an atom type and an inline list of 1-based bonded atom
// indices instead of a separate bond section.
type tinkerFormat struct {
	h       *chemio.Handle
	mode    chemio.Mode
	offsets []int64
	indexed bool
	warn    func(string)
}

func newTinker(h *chemio.Handle, mode chemio.Mode) (chem.Format, error) {
	return &tinkerFormat{h: h, mode: mode, warn: func(string) {}}, nil
}

func (f *tinkerFormat) Info() chem.FormatInfo {
	return chem.FormatInfo{Name: "TinkerXYZ", Extension: ".txyz", SupportsRead: true, SupportsWrite: true}
}

func (f *tinkerFormat) GuessBondsAfterRead() bool { return false }

func (f *tinkerFormat) SetWarningSink(fn func(string)) {
	if fn == nil {
		fn = func(string) {}
	}
	f.warn = fn
}

func (f *tinkerFormat) buildIndex() error {
	if f.indexed {
		return nil
	}
	if f.mode != chemio.ReadMode {
		f.indexed = true
		return nil
	}
	if !f.h.Seekable() {
		return chem.FileError("TinkerXYZ requires a seekable file to index steps")
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
		fs := strings.Fields(line)
		if len(fs) == 0 {
			continue
		}
		n, perr := strconv.Atoi(fs[0])
		if perr != nil {
			return chem.FormatError("Tinker: malformed atom count %q", line)
		}
		for i := 0; i < n; i++ {
			if _, err := f.h.ReadLine(); err != nil {
				return chem.FormatError("Tinker: truncated frame at atom %d: %v", i, err)
			}
		}
		f.offsets = append(f.offsets, off)
	}
	f.indexed = true
	return f.h.Rewind()
}

func (f *tinkerFormat) NSteps() (int, error) {
	if err := f.buildIndex(); err != nil {
		return 0, err
	}
	return len(f.offsets), nil
}

func (f *tinkerFormat) Read(frame *chem.Frame) error {
	if err := f.buildIndex(); err != nil {
		return err
	}
	return f.readOneStep(frame)
}

func (f *tinkerFormat) readOneStep(frame *chem.Frame) error {
	header, err := f.h.ReadLine()
	if err != nil {
		return chem.ErrNoMoreSteps
	}
	fs := strings.Fields(header)
	if len(fs) == 0 {
		return chem.FormatError("Tinker: empty header line")
	}
	n, perr := strconv.Atoi(fs[0])
	if perr != nil {
		return chem.FormatError("Tinker: malformed atom count %q", header)
	}
	title := ""
	if len(fs) > 1 {
		title = strings.Join(fs[1:], " ")
	}

	top := chem.NewTopology()
	coords := v3.ZeroCoords(n)
	type pending struct{ from, to int }
	var links []pending

	for i := 0; i < n; i++ {
		line, err := f.h.ReadLine()
		if err != nil {
			return chem.FormatError("Tinker: truncated frame at atom %d: %v", i, err)
		}
		lf := strings.Fields(line)
		if len(lf) < 5 {
			return chem.FormatError("Tinker: malformed atom line %q", line)
		}
		x, e1 := strconv.ParseFloat(lf[2], 64)
		y, e2 := strconv.ParseFloat(lf[3], 64)
		z, e3 := strconv.ParseFloat(lf[4], 64)
		if e1 != nil || e2 != nil || e3 != nil {
			return chem.FormatError("Tinker: bad coordinates on atom line %q", line)
		}
		a := chem.NewAtom(lf[1])
		if len(lf) >= 6 {
			a.Type = lf[5]
		}
		top.AddAtom(a)
		coords.SetVec(i, v3.NewVector3D(x, y, z))
		for _, s := range lf[6:] {
			to, err := strconv.Atoi(s)
			if err == nil {
				links = append(links, pending{i, to - 1})
			}
		}
	}
	for _, l := range links {
		if l.from < l.to {
			top.AddBond(l.from, l.to, chem.BondSingle)
		}
	}

	frame.Topology = top
	frame.Positions = coords
	frame.Velocities = chem.None[*v3.Coords]()
	frame.Cell = chem.InfiniteCell()
	frame.Properties = map[string]chem.Property{"name": chem.NewStringProperty(title)}
	return nil
}

func (f *tinkerFormat) ReadStep(i int, frame *chem.Frame) error {
	if err := f.buildIndex(); err != nil {
		return err
	}
	if i < 0 || i >= len(f.offsets) {
		return chem.FileError("TinkerXYZ: step %d out of range", i)
	}
	if err := f.h.Seekg(f.offsets[i]); err != nil {
		return err
	}
	return f.readOneStep(frame)
}

func (f *tinkerFormat) Write(frame *chem.Frame) error {
	n := frame.AtomCount()
	title := ""
	if p, err := frame.Property("name"); err == nil {
		if s, err := p.String(); err == nil {
			title = s
		}
	}
	header := fmt.Sprintf("%6d", n)
	if title != "" {
		header += "  " + title
	}
	if err := f.h.WriteString(header + "\n"); err != nil {
		return err
	}
	neighbors := make([][]int, n)
	for _, b := range frame.Topology.Bonds() {
		neighbors[b.I] = append(neighbors[b.I], b.J+1)
		neighbors[b.J] = append(neighbors[b.J], b.I+1)
	}
	for i := 0; i < n; i++ {
		c := frame.Positions.Vec(i)
		a := frame.Topology.Atom(i)
		line := fmt.Sprintf("%6d  %-3s%12.6f%12.6f%12.6f %5s", i+1, a.Name, c.X, c.Y, c.Z, a.Type)
		for _, nb := range neighbors[i] {
			line += fmt.Sprintf("%6d", nb)
		}
		if err := f.h.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func (f *tinkerFormat) Close() error { return nil }
