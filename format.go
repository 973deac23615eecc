package chem

import (
	"strings"
	"sync"

	"github.com/AspirinCode/chemfiles/chemio"
)

// FormatInfo is the static metadata a format factory carries: goChem never
// had a unifying registry (each of its traj/* packages was opened by its
// own constructor), but every one of those packages advertises the same
// handful of facts -- can it write, can it append, what extension does it
// own -- so this is where that metadata lives once, centrally.
type FormatInfo struct {
	Name           string
	Extension      string
	Description    string
	SupportsRead   bool
	SupportsWrite  bool
	SupportsAppend bool
}

// Format is the contract every trajectory format adapter implements.
type Format interface {
	Info() FormatInfo
	// NSteps returns the number of steps in the trajectory, indexing the
	// file on first call if the format requires a scan to know it.
	NSteps() (int, error)
	// Read reads the next step into frame, in place. Any velocities,
	// topology, or cell data not dictated by the format are cleared first.
	// Returns ErrNoMoreSteps at EOF.
	Read(frame *Frame) error
	// ReadStep performs a random-access read of step i into frame.
	ReadStep(i int, frame *Frame) error
	// Write appends frame as the next step. Returns a FormatError if the
	// format does not support writing.
	Write(frame *Frame) error
	// GuessBondsAfterRead reports whether the trajectory engine should run
	// GuessTopology on every frame this format produces, because the format
	// itself carries no connectivity.
	GuessBondsAfterRead() bool
	// SetWarningSink installs the sink non-fatal conditions (GRO index
	// overflow, and the like) are reported through. A nil sink must be
	// tolerated by discarding warnings.
	SetWarningSink(func(string))
	// Close releases any resources (the underlying chemio.Handle, an index)
	// the format holds.
	Close() error
}

// Factory builds a Format over an already-opened file substrate handle.
type Factory func(h *chemio.Handle, mode chemio.Mode) (Format, error)

type registryEntry struct {
	info    FormatInfo
	factory Factory
}

// registry is the process-wide name/extension -> factory mapping described
// by the format registry: it must be populated by RegisterFormat calls
// before any Trajectory is opened, and mutating it concurrently with
// readers is undefined, matching the single-threaded-per-Trajectory
// contract the rest of the package follows.
var (
	registryMu  sync.Mutex
	byName      = map[string]registryEntry{}
	byExtension = map[string]registryEntry{}
)

// RegisterFormat adds factory under both its name and extension keys.
// Registration is idempotent per key: registering the same name or
// extension twice fails with a FormatError, the same as goChem's per-package
// uniqueness (every traj/* package owns exactly one extension).
func RegisterFormat(info FormatInfo, factory Factory) error {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := byName[info.Name]; exists {
		return FormatError("a format is already registered under name %q", info.Name)
	}
	entry := registryEntry{info: info, factory: factory}
	if info.Extension != "" {
		ext := strings.ToLower(info.Extension)
		if _, exists := byExtension[ext]; exists {
			return FormatError("a format is already registered under extension %q", ext)
		}
		byExtension[ext] = entry
	}
	byName[info.Name] = entry
	return nil
}

// lookupByName resolves a registered format by its name.
func lookupByName(name string) (registryEntry, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	e, ok := byName[name]
	return e, ok
}

// lookupByExtension resolves a registered format from path by the longest
// matching registered extension, after the file substrate has stripped any
// compression suffix.
func lookupByExtension(path string) (registryEntry, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()

	stripped := strings.ToLower(chemio.StripCompressionSuffix(path))
	var best registryEntry
	bestLen := -1
	found := false
	for ext, e := range byExtension {
		if strings.HasSuffix(stripped, ext) && len(ext) > bestLen {
			best, bestLen, found = e, len(ext), true
		}
	}
	return best, found
}

// resetRegistryForTest clears the registry; used only by tests that need a
// clean slate between RegisterFormat cases.
func resetRegistryForTest() {
	registryMu.Lock()
	defer registryMu.Unlock()
	byName = map[string]registryEntry{}
	byExtension = map[string]registryEntry{}
}
