package server

import (
	"encoding/binary"
	"math"

	"github.com/replicest/replicvar/rerrors"
	"gonum.org/v1/gonum/mat"
)

// bytesToVector decodes a raw row-major f64 byte buffer (native endianness)
// into a flat float64 slice. The byte count must be a multiple of 8.
func bytesToVector(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, rerrors.NewDataLength()
	}
	n := len(b) / 8
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		bits := binary.NativeEndian.Uint64(b[i*8 : i*8+8])
		out[i] = math.Float64frombits(bits)
	}
	return out, nil
}

// bytesToMatrix decodes a raw row-major f64 byte buffer into a *mat.Dense
// with the given column count; the row count is inferred from the byte
// length. A length not divisible by 8*cols is a fatal DataLength error.
func bytesToMatrix(b []byte, cols int) (*mat.Dense, error) {
	if cols <= 0 || len(b) == 0 || len(b)%(8*cols) != 0 {
		return nil, rerrors.NewDataLength()
	}
	flat, err := bytesToVector(b)
	if err != nil {
		return nil, err
	}
	rows := len(flat) / cols
	return mat.NewDense(rows, cols, flat), nil
}

// vectorToBytes encodes a flat float64 slice as raw row-major bytes in
// native endianness, the inverse of bytesToVector.
func vectorToBytes(v []float64) []byte {
	out := make([]byte, len(v)*8)
	for i, f := range v {
		binary.NativeEndian.PutUint64(out[i*8:i*8+8], math.Float64bits(f))
	}
	return out
}
