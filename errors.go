/*
 * errors.go, part of chemfiles.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package chem

import "github.com/AspirinCode/chemfiles/chemerr"

// Error, Kind, and the error-kind constructors below live in package
// chemerr: chemio (the file substrate this package depends on) needs them
// too, and a package below chem in the import graph can't import back up to
// it. chem re-exports them under their original names so every other file
// in this package -- and every caller outside it -- keeps using
// chem.FileError, chem.Error, and so on exactly as before.
type Error = chemerr.Error

// Kind tags the family an Error belongs to.
type Kind = chemerr.Kind

const (
	KindGeneric       = chemerr.KindGeneric
	KindFile          = chemerr.KindFile
	KindFormat        = chemerr.KindFormat
	KindMemory        = chemerr.KindMemory
	KindSelection     = chemerr.KindSelection
	KindConfiguration = chemerr.KindConfiguration
)

// FileError reports I/O failures: unreadable files, EOF, unseekable streams,
// or unsupported compression.
var FileError = chemerr.FileError

// FormatError reports malformed files, unsupported operations on a format,
// or an unknown extension.
var FormatError = chemerr.FormatError

// MemoryError reports an allocation failure.
var MemoryError = chemerr.MemoryError

// SelectionError reports a selection parsing or evaluation failure.
var SelectionError = chemerr.SelectionError

// ConfigurationError reports an inconsistency in Frame or Topology state,
// such as a size mismatch on SetTopology.
var ConfigurationError = chemerr.ConfigurationError

// GenericError reports a failure not otherwise classified.
var GenericError = chemerr.GenericError

// Decorate wraps err, asserting it implements Error, and adds caller to its
// decoration trail. It panics if err does not implement Error.
var Decorate = chemerr.Decorate

// ErrNoMoreSteps is the sentinel FileError raised when a read is attempted
// past the last step of a trajectory.
var ErrNoMoreSteps = chemerr.ErrNoMoreSteps

// IsEOF reports whether err is the "no more steps" condition (wrapped errors are not unwrapped),
// letting callers distinguish the harmless end of a trajectory from a real
// failure -- the same purpose goChem's LastFrameError interface serves.
var IsEOF = chemerr.IsEOF
