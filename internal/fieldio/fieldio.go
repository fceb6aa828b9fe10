package fieldio

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/banshee-data/echoflow/internal/array"
	"github.com/banshee-data/echoflow/internal/fsutil"
)

// RawExt is the file extension of ECF1 fields.
const RawExt = ".ecf"

// Store reads and writes fields through a FileSystem.
type Store struct {
	FS fsutil.FileSystem
	// ImageScale multiplies normalised image samples; zero means 1.
	ImageScale float32
}

// NewStore returns a Store over the OS filesystem.
func NewStore() *Store {
	return &Store{FS: fsutil.OSFileSystem{}}
}

// Read loads a field, choosing the decoder from the file extension.
func (s *Store) Read(path string) (*array.Array2[float32], error) {
	decode, err := s.decoder(path)
	if err != nil {
		return nil, fmt.Errorf("read field %s: %w", path, err)
	}
	data, err := s.FS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read field %s: %w", path, err)
	}
	f, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("read field %s: %w", path, err)
	}
	return f, nil
}

func (s *Store) decoder(path string) (func([]byte) (*array.Array2[float32], error), error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case RawExt:
		return Unmarshal, nil
	case ".png", ".tif", ".tiff":
		return func(data []byte) (*array.Array2[float32], error) {
			return DecodeImage(data, s.ImageScale)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported extension %q", ext)
	}
}

// Write stores f as ECF1, creating the parent directory if needed.
func (s *Store) Write(path string, f *array.Array2[float32]) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := s.FS.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("write field %s: %w", path, err)
		}
	}
	if err := s.FS.WriteFile(path, Marshal(f), 0o644); err != nil {
		return fmt.Errorf("write field %s: %w", path, err)
	}
	return nil
}

// Frames lists the readable fields in dir in lexical order, which is
// taken as time order.
func (s *Store) Frames(dir string) ([]string, error) {
	var out []string
	for _, ext := range []string{RawExt, ".png", ".tif", ".tiff"} {
		m, err := s.FS.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return nil, fmt.Errorf("list frames in %s: %w", dir, err)
		}
		out = append(out, m...)
	}
	slices.Sort(out)
	return out, nil
}
