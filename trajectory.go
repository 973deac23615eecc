package chem

import (
	"github.com/AspirinCode/chemfiles/chemio"
)

// Trajectory is the engine wrapping a single open Format: it tracks the
// current step, applies any user-supplied topology/cell override after
// each read, and enforces the single-threaded-per-Trajectory contract by
// simply not synchronizing anything -- callers serialize their own access.
type Trajectory struct {
	format    Format
	handle    *chemio.Handle
	stepIndex int
	done      bool

	topologyOverride Optional[*Topology]
	cellOverride     Optional[UnitCell]

	warn func(string)
}

// OpenTrajectory opens path for mode, dispatching to a registered format
// either by formatHint (if non-empty) or by path's extension, after
// stripping any recognized compression suffix. compressionHint selects the
// file substrate's compression (chemio.AUTO infers it from path).
func OpenTrajectory(path string, mode chemio.Mode, formatHint string, compressionHint chemio.Compression) (*Trajectory, error) {
	var entry registryEntry
	var ok bool
	if formatHint != "" {
		entry, ok = lookupByName(formatHint)
		if !ok {
			return nil, FormatError("no format registered under name %q", formatHint)
		}
	} else {
		entry, ok = lookupByExtension(path)
		if !ok {
			return nil, FormatError("cannot find a format for extension of %q", path)
		}
	}

	h, err := chemio.Open(path, mode, compressionHint)
	if err != nil {
		return nil, err
	}
	f, err := entry.factory(h, mode)
	if err != nil {
		h.Close()
		return nil, err
	}
	f.SetWarningSink(defaultWarn)
	return &Trajectory{
		format: f,
		handle: h,
		warn:   defaultWarn,
	}, nil
}

func defaultWarn(msg string) { _ = msg }

// SetWarningSink installs the pluggable sink format adapters and the
// trajectory engine report non-fatal conditions to (e.g. GRO's "*****"
// overflow). The default sink discards warnings.
func (t *Trajectory) SetWarningSink(fn func(string)) {
	if fn == nil {
		fn = defaultWarn
	}
	t.warn = fn
	t.format.SetWarningSink(fn)
}

func (t *Trajectory) warnf(msg string) {
	if t.warn != nil {
		t.warn(msg)
	}
}

// NSteps delegates to the underlying format.
func (t *Trajectory) NSteps() (int, error) { return t.format.NSteps() }

// Done reports whether the trajectory has been read past its last step.
func (t *Trajectory) Done() bool { return t.done }

// Read reads the current step into frame, advances the step index, and
// applies any topology/cell override. Overrides are applied after the
// format populates the frame, so the caller always sees consistent data
// regardless of what (if anything) the format itself carries.
func (t *Trajectory) Read(frame *Frame) error {
	if t.done {
		return ErrNoMoreSteps
	}
	if err := t.format.Read(frame); err != nil {
		if IsEOF(err) {
			t.done = true
		}
		return err
	}
	if t.format.GuessBondsAfterRead() {
		if err := GuessTopology(frame); err != nil {
			return err
		}
	}
	GuessMasses(frame)
	frame.Step = uint64(t.stepIndex)
	t.stepIndex++
	n, err := t.format.NSteps()
	if err == nil && t.stepIndex >= n {
		t.done = true
	}
	t.applyOverrides(frame)
	return nil
}

// ReadStep performs a random-access read of step i into frame, setting the
// step index to i+1 afterward.
func (t *Trajectory) ReadStep(i int, frame *Frame) error {
	n, err := t.format.NSteps()
	if err != nil {
		return err
	}
	if i < 0 || i >= n {
		return FileError("step %d out of range [0,%d)", i, n)
	}
	if err := t.format.ReadStep(i, frame); err != nil {
		return err
	}
	if t.format.GuessBondsAfterRead() {
		if err := GuessTopology(frame); err != nil {
			return err
		}
	}
	GuessMasses(frame)
	frame.Step = uint64(i)
	t.stepIndex = i + 1
	t.done = t.stepIndex >= n
	t.applyOverrides(frame)
	return nil
}

func (t *Trajectory) applyOverrides(frame *Frame) {
	if top, ok := t.topologyOverride.Get(); ok {
		if err := frame.SetTopology(top); err != nil {
			t.warnf("topology override rejected: " + err.Error())
		}
	}
	if cell, ok := t.cellOverride.Get(); ok {
		frame.Cell = cell
	}
}

// SetTopology installs top as a standing override: every subsequent Read or
// ReadStep call replaces the format-provided topology with it, as long as
// its atom count matches the frame's.
func (t *Trajectory) SetTopology(top *Topology) {
	t.topologyOverride = Some(top)
}

// SetTopologyFrom reads a topology from another trajectory file (by opening
// it, reading its first frame, and taking that frame's topology) and
// installs it as the override.
func SetTopologyFrom(t *Trajectory, path string, formatHint string) error {
	src, err := OpenTrajectory(path, chemio.ReadMode, formatHint, chemio.AUTO)
	if err != nil {
		return err
	}
	defer src.Close()
	f := NewFrame()
	if err := src.Read(f); err != nil {
		return err
	}
	t.SetTopology(f.Topology)
	return nil
}

// SetCell installs cell as a standing override for every subsequent read.
func (t *Trajectory) SetCell(cell UnitCell) {
	t.cellOverride = Some(cell)
}

// Write appends frame as the next step. Formats that cannot write fail with
// a FormatError.
func (t *Trajectory) Write(frame *Frame) error {
	return t.format.Write(frame)
}

// Close flushes and releases the trajectory's format and file substrate.
// Subsequent operations on a closed Trajectory fail.
func (t *Trajectory) Close() error {
	err := t.format.Close()
	if herr := t.handle.Close(); herr != nil && err == nil {
		err = herr
	}
	return err
}
