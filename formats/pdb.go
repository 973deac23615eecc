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
		Name:          "PDB",
		Extension:     ".pdb",
		Description:   "Protein Data Bank fixed-column format",
		SupportsRead:  true,
		SupportsWrite: true,
	}, newPDB)
}

// pdbFormat reads and writes the classic (non-mmCIF) PDB fixed-column
// convention. goChem's own PDB support (pdbx.go) targets the newer mmCIF
// dialect; this adapter follows the same "read fields, fill an Atom, build
// a Molecule" shape that pdbxFillAtom uses, applied to the older, strictly
// columnar record layout instead of mmCIF's loop_ tables.
type pdbFormat struct {
	h       *chemio.Handle
	mode    chemio.Mode
	offsets []int64
	indexed bool
	warn    func(string)
}

func newPDB(h *chemio.Handle, mode chemio.Mode) (chem.Format, error) {
	return &pdbFormat{h: h, mode: mode, warn: func(string) {}}, nil
}

func (f *pdbFormat) Info() chem.FormatInfo {
	return chem.FormatInfo{Name: "PDB", Extension: ".pdb", SupportsRead: true, SupportsWrite: true}
}

func (f *pdbFormat) GuessBondsAfterRead() bool { return false }

func (f *pdbFormat) SetWarningSink(fn func(string)) {
	if fn == nil {
		fn = func(string) {}
	}
	f.warn = fn
}

// A PDB trajectory (a multi-MODEL file) indexes each MODEL/ENDMDL block. A
// single-structure file with no MODEL records at all is treated as one
// step starting at offset 0.
func (f *pdbFormat) buildIndex() error {
	if f.indexed {
		return nil
	}
	if f.mode != chemio.ReadMode {
		f.indexed = true
		return nil
	}
	if !f.h.Seekable() {
		return chem.FileError("PDB requires a seekable file to index steps")
	}
	if err := f.h.Rewind(); err != nil {
		return err
	}
	sawModel := false
	for {
		off, err := f.h.Tellg()
		if err != nil {
			return err
		}
		line, err := f.h.ReadLine()
		if err != nil {
			break
		}
		if strings.HasPrefix(line, "MODEL") {
			sawModel = true
			f.offsets = append(f.offsets, off)
		}
	}
	if !sawModel {
		f.offsets = []int64{0}
	}
	f.indexed = true
	return f.h.Rewind()
}

func (f *pdbFormat) NSteps() (int, error) {
	if err := f.buildIndex(); err != nil {
		return 0, err
	}
	return len(f.offsets), nil
}

func (f *pdbFormat) Read(frame *chem.Frame) error {
	if err := f.buildIndex(); err != nil {
		return err
	}
	return f.readOneStep(frame)
}

func pdbField(s string, lo, hi int) string {
	for len(s) < hi {
		s += " "
	}
	return s[lo:hi]
}

func (f *pdbFormat) readOneStep(frame *chem.Frame) error {
	top := chem.NewTopology()
	var coordList []v3.Vector3D
	cell := chem.InfiniteCell()
	residues := map[string]int{}
	bonds := [][2]int{}
	serialToIndex := map[int]int{}
	started := false
	title := ""

	for {
		line, err := f.h.ReadLine()
		if err != nil {
			if !started && len(coordList) == 0 {
				return chem.ErrNoMoreSteps
			}
			break
		}
		rec := strings.TrimRight(line, " ")
		switch {
		case strings.HasPrefix(line, "MODEL"):
			started = true
		case strings.HasPrefix(line, "ENDMDL"):
			goto done
		case strings.HasPrefix(line, "END"):
			goto done
		case strings.HasPrefix(line, "TITLE"):
			title = strings.TrimSpace(pdbField(line, 10, len(line)))
		case strings.HasPrefix(line, "CRYST1"):
			cell = parsePDBCryst1(line)
		case strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM"):
			started = true
			serial, _ := strconv.Atoi(strings.TrimSpace(pdbField(rec, 6, 11)))
			name := strings.TrimSpace(pdbField(rec, 12, 16))
			resname := strings.TrimSpace(pdbField(rec, 17, 20))
			chainID := strings.TrimSpace(pdbField(rec, 21, 22))
			resSeqStr := strings.TrimSpace(pdbField(rec, 22, 26))
			x, e1 := strconv.ParseFloat(strings.TrimSpace(pdbField(rec, 30, 38)), 64)
			y, e2 := strconv.ParseFloat(strings.TrimSpace(pdbField(rec, 38, 46)), 64)
			z, e3 := strconv.ParseFloat(strings.TrimSpace(pdbField(rec, 46, 54)), 64)
			if e1 != nil || e2 != nil || e3 != nil {
				return chem.FormatError("PDB: bad coordinates on line %q", line)
			}
			a := chem.NewAtom(name)
			elem := strings.TrimSpace(pdbField(rec, 76, 78))
			if elem != "" {
				a.Type = elem
			}
			idx := top.AddAtom(a)
			coordList = append(coordList, v3.NewVector3D(x, y, z))
			if serial != 0 {
				serialToIndex[serial] = idx
			}

			key := chainID + "|" + resSeqStr + "|" + resname
			ri, ok := residues[key]
			if !ok {
				r := chem.NewResidue(resname)
				if rid, err := strconv.Atoi(resSeqStr); err == nil {
					r.ID = chem.Some(uint(rid))
				}
				ri = top.AddResidue(r)
				residues[key] = ri
			}
			top.ResidueAt(ri).AddAtom(idx)
		case strings.HasPrefix(line, "CONECT"):
			fields := splitFixed(rec, 6, 5)
			if len(fields) == 0 {
				continue
			}
			from, err := strconv.Atoi(strings.TrimSpace(fields[0]))
			if err != nil {
				continue
			}
			for _, tf := range fields[1:] {
				tf = strings.TrimSpace(tf)
				if tf == "" {
					continue
				}
				to, err := strconv.Atoi(tf)
				if err != nil {
					continue
				}
				bonds = append(bonds, [2]int{from, to})
			}
		}
	}
done:
	if len(coordList) == 0 {
		return chem.ErrNoMoreSteps
	}
	coords := v3.ZeroCoords(len(coordList))
	for i, v := range coordList {
		coords.SetVec(i, v)
	}
	for _, b := range bonds {
		fi, ok1 := serialToIndex[b[0]]
		ti, ok2 := serialToIndex[b[1]]
		if ok1 && ok2 && fi != ti {
			top.AddBond(fi, ti, chem.BondUnknown)
		}
	}
	frame.Topology = top
	frame.Positions = coords
	frame.Velocities = chem.None[*v3.Coords]()
	frame.Cell = cell
	frame.Properties = map[string]chem.Property{"name": chem.NewStringProperty(title)}
	return nil
}

// splitFixed splits s into width-wide fields starting at offset start,
// the layout CONECT records (and several other PDB record types) use
// instead of whitespace-delimited fields.
func splitFixed(s string, start, width int) []string {
	var out []string
	for start < len(s) {
		end := start + width
		if end > len(s) {
			end = len(s)
		}
		out = append(out, s[start:end])
		start = end
	}
	return out
}

func parsePDBCryst1(line string) chem.UnitCell {
	fields := strings.Fields(line)
	if len(fields) < 7 {
		return chem.InfiniteCell()
	}
	a, e1 := strconv.ParseFloat(fields[1], 64)
	b, e2 := strconv.ParseFloat(fields[2], 64)
	c, e3 := strconv.ParseFloat(fields[3], 64)
	alpha, e4 := strconv.ParseFloat(fields[4], 64)
	beta, e5 := strconv.ParseFloat(fields[5], 64)
	gamma, e6 := strconv.ParseFloat(fields[6], 64)
	if e1 != nil || e2 != nil || e3 != nil || e4 != nil || e5 != nil || e6 != nil {
		return chem.InfiniteCell()
	}
	return chem.NewTriclinicCell(a, b, c, alpha, beta, gamma)
}

func (f *pdbFormat) ReadStep(i int, frame *chem.Frame) error {
	if err := f.buildIndex(); err != nil {
		return err
	}
	if i < 0 || i >= len(f.offsets) {
		return chem.FileError("PDB: step %d out of range", i)
	}
	if err := f.h.Seekg(f.offsets[i]); err != nil {
		return err
	}
	return f.readOneStep(frame)
}

func (f *pdbFormat) Write(frame *chem.Frame) error {
	n := frame.AtomCount()
	if a, b, c := frame.Cell.Lengths(); frame.Cell.Shape() != chem.CellInfinite {
		alpha, beta, gamma := frame.Cell.Angles()
		if err := f.h.WriteString(fmt.Sprintf("CRYST1%9.3f%9.3f%9.3f%7.2f%7.2f%7.2f P 1           1\n", a, b, c, alpha, beta, gamma)); err != nil {
			return err
		}
	}
	for i := 0; i < n; i++ {
		serial := i + 1
		if serial > 99999 {
			f.warn(fmt.Sprintf("PDB: atom serial %d overflows 5 columns", serial))
			serial = 99999
		}
		atom := frame.Topology.Atom(i)
		resname, resid := "SYS", 1
		if res, ok := frame.Topology.ResidueForAtom(i); ok {
			resname = res.Name
			if id, ok := res.ID.Get(); ok {
				resid = int(id)
			}
		}
		c := frame.Positions.Vec(i)
		name := atom.Name
		if len(name) > 4 {
			name = name[:4]
		}
		if len(resname) > 3 {
			resname = resname[:3]
		}
		line := fmt.Sprintf("ATOM  %5d %-4s %3s  %4d    %8.3f%8.3f%8.3f  1.00  0.00          %2s\n",
			serial, name, resname, resid, c.X, c.Y, c.Z, strings.ToUpper(atom.Type))
		if err := f.h.WriteString(line); err != nil {
			return err
		}
	}
	for _, b := range frame.Topology.Bonds() {
		line := fmt.Sprintf("CONECT%5d%5d\n", b.I+1, b.J+1)
		if err := f.h.WriteString(line); err != nil {
			return err
		}
	}
	return f.h.WriteString("END\n")
}

func (f *pdbFormat) Close() error { return nil }
