package formats

import (
	"encoding/binary"
	"math"

	"github.com/AspirinCode/chemfiles/chemio"
)

// xdrReader/xdrWriter wrap a chemio.Handle's byte-oriented ReadExact/Write
// in the big-endian, 4-byte-aligned XDR encoding GROMACS's TRR and XTC
// formats are built on (RFC 1832). Ints and floats are 4-byte units and
// doubles 8-byte ones; XDR strings are a length-prefixed byte run padded to a 4-byte
// boundary, same as GROMACS's own xdrfile library.
type xdrReader struct {
	h *chemio.Handle
}

func newXDRReader(h *chemio.Handle) *xdrReader { return &xdrReader{h: h} }

func (x *xdrReader) Int() (int32, error) {
	b, err := x.h.ReadExact(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (x *xdrReader) Float32() (float32, error) {
	b, err := x.h.ReadExact(4)
	if err != nil {
		return 0, err
	}
	return float32FromBits(binary.BigEndian.Uint32(b)), nil
}

func (x *xdrReader) Float64() (float64, error) {
	b, err := x.h.ReadExact(8)
	if err != nil {
		return 0, err
	}
	return float64FromBits(binary.BigEndian.Uint64(b)), nil
}

// Float32Array reads n consecutive float32 values.
func (x *xdrReader) Float32Array(n int) ([]float32, error) {
	b, err := x.h.ReadExact(4 * n)
	if err != nil {
		return nil, err
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = float32FromBits(binary.BigEndian.Uint32(b[4*i : 4*i+4]))
	}
	return out, nil
}

func (x *xdrReader) Float64Array(n int) ([]float64, error) {
	b, err := x.h.ReadExact(8 * n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = float64FromBits(binary.BigEndian.Uint64(b[8*i : 8*i+8]))
	}
	return out, nil
}

// String reads an XDR opaque string: a 4-byte length, followed by that many
// bytes, padded to the next 4-byte boundary.
func (x *xdrReader) String() (string, error) {
	n, err := x.Int()
	if err != nil {
		return "", err
	}
	padded := (int(n) + 3) &^ 3
	b, err := x.h.ReadExact(padded)
	if err != nil {
		return "", err
	}
	return string(b[:n]), nil
}

type xdrWriter struct {
	h *chemio.Handle
}

func newXDRWriter(h *chemio.Handle) *xdrWriter { return &xdrWriter{h: h} }

func (x *xdrWriter) Int(v int32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	_, err := x.h.Write(b[:])
	return err
}

func (x *xdrWriter) Float32(v float32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], float32Bits(v))
	_, err := x.h.Write(b[:])
	return err
}

func (x *xdrWriter) Float32Array(vs []float32) error {
	b := make([]byte, 4*len(vs))
	for i, v := range vs {
		binary.BigEndian.PutUint32(b[4*i:4*i+4], float32Bits(v))
	}
	_, err := x.h.Write(b)
	return err
}

func (x *xdrWriter) String(s string) error {
	if err := x.Int(int32(len(s))); err != nil {
		return err
	}
	padded := (len(s) + 3) &^ 3
	b := make([]byte, padded)
	copy(b, s)
	_, err := x.h.Write(b)
	return err
}

func float32FromBits(u uint32) float32 { return math.Float32frombits(u) }
func float32Bits(f float32) uint32     { return math.Float32bits(f) }
func float64FromBits(u uint64) float64 { return math.Float64frombits(u) }
