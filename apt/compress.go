package apt

import (
	"bytes"
	"fmt"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// Compression selects the compressed form of a Packages index.
type Compression string

const (
	CompressionGZIP Compression = "gz"
	CompressionXZ   Compression = "xz"
)

func (c Compression) Extension() string {
	return "." + string(c)
}

// Compress encodes data. The output carries no timestamp or origin
// name, so identical input always yields identical bytes.
func (c Compression) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	switch c {
	case CompressionGZIP:
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case CompressionXZ:
		w, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown compression %q", c)
	}
	return buf.Bytes(), nil
}

// Decompress is the inverse of Compress.
func (c Compression) Decompress(data []byte) ([]byte, error) {
	switch c {
	case CompressionGZIP:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(r); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionXZ:
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(r); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown compression %q", c)
	}
}

// CompressIndex produces the compressed sibling of a Packages index
// and returns its path and bytes. With reuse set, the previously
// persisted compressed file is returned unchanged instead of being
// recompressed; the caller sets reuse when the plain index was not
// regenerated on this run.
func CompressIndex(indexPath, content string, c Compression, reuse bool) (string, []byte, error) {
	compressedPath := indexPath + c.Extension()

	if reuse {
		data, err := os.ReadFile(compressedPath)
		if err == nil {
			return compressedPath, data, nil
		}
		if !os.IsNotExist(err) {
			return "", nil, fmt.Errorf("reading %s: %w", compressedPath, err)
		}
		// Fall through: nothing persisted yet.
	}

	data, err := c.Compress([]byte(content))
	if err != nil {
		return "", nil, fmt.Errorf("compressing %s: %w", indexPath, err)
	}
	if err := WriteFileAtomic(compressedPath, data, 0o644); err != nil {
		return "", nil, err
	}
	return compressedPath, data, nil
}
