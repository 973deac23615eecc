/*
 * substrate.go, part of chemfiles.
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

// Package chemio is the file substrate: a single handle that reads and
// writes either text lines or raw bytes, hiding whichever compression the
// underlying file carries. It plays the role goChem's traj/stf package
// plays for its own trajectory format, generalized to any adapter in the
// registry: dispatch on a filename's trailing suffix picks the codec, the
// same way stf.New and stf.NewWriter pick a compressor from the last
// character of the file name.
package chemio

import (
	"bufio"
	"compress/bzip2"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"

	"github.com/AspirinCode/chemfiles/chemerr"
)

// Mode is the access mode a Handle is opened with.
type Mode int

const (
	ReadMode Mode = iota
	WriteMode
	AppendMode
)

// Compression identifies the codec a Handle applies to the underlying file.
// AUTO infers it from the path's suffix at Open time.
type Compression int

const (
	AUTO Compression = iota
	NONE
	GZIP
	BZIP2
	LZMA
)

// Handle is the file substrate: a line- and byte-oriented view over a
// (possibly compressed) file. Zero value is not usable; build one with Open.
type Handle struct {
	path        string
	mode        Mode
	compression Compression
	f           *os.File
	r           *bufio.Reader
	w           *bufio.Writer
	closer      io.Closer // the compression layer, closed before f
	seekable    bool
	eof         bool
	counter     *countingReader // tracks logical position in the decompressed stream
}

// countingReader wraps an io.Reader, counting every byte pulled through it.
// Combined with bufio.Reader.Buffered, this gives Tellg an exact logical
// position in the decompressed stream even though bufio reads ahead.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// detectCompression infers a Compression from path's suffix, the same
// last-character dispatch goChem's stf package uses, generalized to whole
// suffixes since the formats this substrate serves use conventional
// extensions (.gz, .bz2, .xz, .lzma) rather than stf's single-letter codes.
func detectCompression(path string) Compression {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		return GZIP
	case strings.HasSuffix(lower, ".bz2"):
		return BZIP2
	case strings.HasSuffix(lower, ".xz"), strings.HasSuffix(lower, ".lzma"):
		return LZMA
	default:
		return NONE
	}
}

// StripCompressionSuffix removes a recognized compression suffix from path,
// the step the format registry performs before matching a format extension
// (4.2: "the longest extension suffix after stripping compression suffix").
func StripCompressionSuffix(path string) string {
	lower := strings.ToLower(path)
	for _, suf := range []string{".gz", ".bz2", ".xz", ".lzma"} {
		if strings.HasSuffix(lower, suf) {
			return path[:len(path)-len(suf)]
		}
	}
	return path
}

// Open opens path under mode with the given compression (AUTO infers it
// from path's suffix). Binary formats and text formats share this handle;
// the caller picks byte- or line-oriented operations as it needs them.
func Open(path string, mode Mode, compression Compression) (*Handle, error) {
	if compression == AUTO {
		compression = detectCompression(path)
	}
	h := &Handle{path: path, mode: mode, compression: compression}

	switch mode {
	case ReadMode:
		f, err := os.Open(path)
		if err != nil {
			return nil, chemerr.FileError("cannot open %s for reading: %v", path, err)
		}
		h.f = f
		if err := h.openReadCodec(); err != nil {
			f.Close()
			return nil, err
		}
	case WriteMode, AppendMode:
		flags := os.O_CREATE | os.O_WRONLY
		if mode == AppendMode {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		f, err := os.OpenFile(path, flags, 0644)
		if err != nil {
			return nil, chemerr.FileError("cannot open %s for writing: %v", path, err)
		}
		h.f = f
		if err := h.openWriteCodec(); err != nil {
			f.Close()
			return nil, err
		}
	default:
		return nil, chemerr.ConfigurationError("unknown file substrate mode %d", mode)
	}
	return h, nil
}

func (h *Handle) openReadCodec() error {
	switch h.compression {
	case NONE:
		h.counter = &countingReader{r: h.f}
		h.r = bufio.NewReader(h.counter)
		h.seekable = true
	case GZIP:
		gz, err := gzip.NewReader(h.f)
		if err != nil {
			return chemerr.FileError("cannot open %s as gzip: %v", h.path, err)
		}
		h.closer = gz
		h.counter = &countingReader{r: gz}
		h.r = bufio.NewReader(h.counter)
		h.seekable = true // re-openable from the start; see Seekg
	case BZIP2:
		h.counter = &countingReader{r: bzip2.NewReader(h.f)}
		h.r = bufio.NewReader(h.counter)
		h.seekable = false
	case LZMA:
		xr, err := xz.NewReader(h.f)
		if err != nil {
			return chemerr.FileError("cannot open %s as xz/lzma: %v", h.path, err)
		}
		h.counter = &countingReader{r: xr}
		h.r = bufio.NewReader(h.counter)
		h.seekable = false
	default:
		return chemerr.ConfigurationError("unknown compression %d", h.compression)
	}
	return nil
}

func (h *Handle) openWriteCodec() error {
	switch h.compression {
	case NONE:
		h.w = bufio.NewWriter(h.f)
	case GZIP:
		gz := gzip.NewWriter(h.f)
		h.closer = gz
		h.w = bufio.NewWriter(gz)
	case BZIP2:
		return chemerr.FileError("bzip2 writing is not supported; bzip2 files are read-only here")
	case LZMA:
		return chemerr.FileError("xz/lzma compression is not supported by this build")
	default:
		return chemerr.ConfigurationError("unknown compression %d", h.compression)
	}
	return nil
}

// ReadLine reads one line, stripping a trailing "\n" or "\r\n". Reaching
// EOF with no bytes read returns io.EOF; reaching EOF mid-line (a partial,
// unterminated final line after at least one byte) is still returned as
// that partial line with a nil error, matching the forgiving behavior most
// of the corpus's readers need for files missing a trailing newline; only a
// read error distinct from EOF is reported as a FileError.
func (h *Handle) ReadLine() (string, error) {
	if h.r == nil {
		return "", chemerr.ConfigurationError("ReadLine on a handle not opened for reading")
	}
	line, err := h.r.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			if line == "" {
				h.eof = true
				return "", io.EOF
			}
			h.eof = true
			return line, nil
		}
		return "", chemerr.FileError("read error on %s: %v", h.path, err)
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

// ReadLines reads exactly n lines, failing with a FileError if fewer than n
// remain.
func (h *Handle) ReadLines(n int) ([]string, error) {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		l, err := h.ReadLine()
		if err != nil {
			return nil, chemerr.FileError("expected %d lines, got %d from %s: %v", n, i, h.path, err)
		}
		out = append(out, l)
	}
	return out, nil
}

// ReadExact reads exactly n bytes, failing with a FileError on short read.
func (h *Handle) ReadExact(n int) ([]byte, error) {
	if h.r == nil {
		return nil, chemerr.ConfigurationError("ReadExact on a handle not opened for reading")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(h.r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			h.eof = true
		}
		return nil, chemerr.FileError("short read on %s: wanted %d bytes: %v", h.path, n, err)
	}
	return buf, nil
}

// ReadUntil reads bytes up to and including delim, returning the bytes read
// without the delimiter.
func (h *Handle) ReadUntil(delim byte) ([]byte, error) {
	if h.r == nil {
		return nil, chemerr.ConfigurationError("ReadUntil on a handle not opened for reading")
	}
	b, err := h.r.ReadBytes(delim)
	if err != nil {
		if err == io.EOF {
			h.eof = true
		}
		return nil, chemerr.FileError("read error on %s: %v", h.path, err)
	}
	return b[:len(b)-1], nil
}

// Write appends data to the handle's buffered writer.
func (h *Handle) Write(data []byte) (int, error) {
	if h.w == nil {
		return 0, chemerr.ConfigurationError("Write on a handle not opened for writing")
	}
	n, err := h.w.Write(data)
	if err != nil {
		return n, chemerr.FileError("write error on %s: %v", h.path, err)
	}
	return n, nil
}

// WriteString is a convenience wrapper over Write for text formats.
func (h *Handle) WriteString(s string) error {
	_, err := h.Write([]byte(s))
	return err
}

// Tellg returns the current logical byte offset in the decompressed
// stream: the number of bytes pulled from the codec so far, minus what
// bufio has buffered ahead but not yet handed to a caller. A later
// Seekg(offset) with this value lands exactly back at this point, for any
// compression this substrate can seek at all.
func (h *Handle) Tellg() (int64, error) {
	if h.r == nil || h.counter == nil {
		return 0, chemerr.ConfigurationError("Tellg on a handle not opened for reading")
	}
	return h.counter.n - int64(h.r.Buffered()), nil
}

// Seekg seeks to byte offset in the underlying file. Only NONE-compression
// handles support true random-access seeking; GZIP handles seek by
// reopening the codec at the start of the compressed stream and skipping
// forward, which is the only way to reach an arbitrary offset in a
// standard, non-indexed gzip stream. BZIP2 and LZMA handles reject seeking
// entirely, per the substrate's "not seekable" contract.
func (h *Handle) Seekg(offset int64) error {
	if !h.seekable {
		return chemerr.FileError("%s is not seekable under compression %d", h.path, h.compression)
	}
	switch h.compression {
	case NONE:
		if _, err := h.f.Seek(offset, io.SeekStart); err != nil {
			return chemerr.FileError("seekg failed on %s: %v", h.path, err)
		}
		h.counter = &countingReader{r: h.f, n: offset}
		h.r = bufio.NewReader(h.counter)
	case GZIP:
		if _, err := h.f.Seek(0, io.SeekStart); err != nil {
			return chemerr.FileError("seekg failed on %s: %v", h.path, err)
		}
		if err := h.openReadCodec(); err != nil {
			return err
		}
		if _, err := io.CopyN(io.Discard, h.r, offset); err != nil {
			return chemerr.FileError("seekg failed on %s: %v", h.path, err)
		}
	default:
		return chemerr.FileError("%s is not seekable under compression %d", h.path, h.compression)
	}
	h.eof = false
	return nil
}

// Rewind seeks back to the start of the file.
func (h *Handle) Rewind() error { return h.Seekg(0) }

// PatchAt overwrites data at a fixed byte offset in a NONE-compression
// write handle, then resumes appending at the end of the file. It exists
// for formats like Amber NetCDF that need to go back and correct a header
// field (a record count) once the true value is known, without giving up
// the simple sequential-append model every other write path uses.
func (h *Handle) PatchAt(offset int64, data []byte) error {
	if h.w == nil {
		return chemerr.ConfigurationError("PatchAt on a handle not opened for writing")
	}
	if h.compression != NONE {
		return chemerr.FileError("%s: PatchAt requires uncompressed output", h.path)
	}
	if err := h.w.Flush(); err != nil {
		return chemerr.FileError("flush before patch failed on %s: %v", h.path, err)
	}
	end, err := h.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return chemerr.FileError("patch failed on %s: %v", h.path, err)
	}
	if _, err := h.f.Seek(offset, io.SeekStart); err != nil {
		return chemerr.FileError("patch failed on %s: %v", h.path, err)
	}
	if _, err := h.f.Write(data); err != nil {
		return chemerr.FileError("patch failed on %s: %v", h.path, err)
	}
	if _, err := h.f.Seek(end, io.SeekStart); err != nil {
		return chemerr.FileError("patch failed on %s: %v", h.path, err)
	}
	return nil
}

// Eof reports whether the last read operation reached end of file.
func (h *Handle) Eof() bool { return h.eof }

// Seekable reports whether the handle supports Seekg/Rewind.
func (h *Handle) Seekable() bool { return h.seekable }

// Close flushes any buffered writes and releases the underlying file.
// Closing is the only way to guarantee a write handle's durability.
func (h *Handle) Close() error {
	var err error
	if h.w != nil {
		if ferr := h.w.Flush(); ferr != nil {
			err = chemerr.FileError("flush failed on %s: %v", h.path, ferr)
		}
	}
	if h.closer != nil {
		h.closer.Close()
	}
	if h.f != nil {
		h.f.Close()
	}
	return err
}
