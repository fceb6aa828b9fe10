// Package fieldio loads and stores 2-D fields: the ECF1 raw float32 grid
// format, and greyscale PNG/TIFF images for import.
package fieldio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/echoflow/internal/array"
)

// Magic opens every raw field file.
const Magic = "ECF1"

const (
	headerSize = 12
	// maxCells bounds the allocation a header can request.
	maxCells = 1 << 28
)

// ErrBadFormat is returned for malformed raw field data.
var ErrBadFormat = errors.New("fieldio: bad field format")

// Marshal encodes f as ECF1: magic, rows and cols as little-endian uint32,
// then row-major little-endian float32 samples. NaN is preserved.
func Marshal(f *array.Array2[float32]) []byte {
	rows, cols := f.Shape()
	buf := make([]byte, headerSize+4*rows*cols)
	copy(buf, Magic)
	binary.LittleEndian.PutUint32(buf[4:], uint32(rows))
	binary.LittleEndian.PutUint32(buf[8:], uint32(cols))
	off := headerSize
	for _, s := range f.Data() {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(s))
		off += 4
	}
	return buf
}

// Unmarshal decodes an ECF1 buffer.
func Unmarshal(data []byte) (*array.Array2[float32], error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrBadFormat, len(data))
	}
	if string(data[:4]) != Magic {
		return nil, fmt.Errorf("%w: magic %q", ErrBadFormat, data[:4])
	}
	rows := int(binary.LittleEndian.Uint32(data[4:]))
	cols := int(binary.LittleEndian.Uint32(data[8:]))
	if rows == 0 || cols == 0 || rows > maxCells/cols {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrBadFormat, rows, cols)
	}
	if want := headerSize + 4*rows*cols; len(data) != want {
		return nil, fmt.Errorf("%w: %dx%d grid needs %d bytes, got %d", ErrBadFormat, rows, cols, want, len(data))
	}

	f := array.New2[float32](rows, cols)
	out := f.Data()
	for i, off := 0, headerSize; i < len(out); i, off = i+1, off+4 {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
	}
	return f, nil
}
