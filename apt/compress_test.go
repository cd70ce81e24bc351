package apt

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestCompressionRoundTrip(t *testing.T) {
	content := []byte("Package: hello\nVersion: 1.0\n\n")
	for _, c := range []Compression{CompressionGZIP, CompressionXZ} {
		compressed, err := c.Compress(content)
		if err != nil {
			t.Fatalf("%s compress: %v", c, err)
		}
		plain, err := c.Decompress(compressed)
		if err != nil {
			t.Fatalf("%s decompress: %v", c, err)
		}
		if !bytes.Equal(plain, content) {
			t.Errorf("%s round trip not byte-identical", c)
		}
	}
}

func TestCompressionDeterministic(t *testing.T) {
	content := []byte("Package: hello\nVersion: 1.0\n")
	for _, c := range []Compression{CompressionGZIP, CompressionXZ} {
		a, err := c.Compress(content)
		if err != nil {
			t.Fatal(err)
		}
		b, err := c.Compress(content)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("%s output differs across runs over identical input", c)
		}
	}
}

func TestCompressIndexWritesSibling(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "Packages")
	content := "Package: hello\nVersion: 1.0\n"

	path, data, err := CompressIndex(indexPath, content, CompressionGZIP, false)
	if err != nil {
		t.Fatalf("CompressIndex: %v", err)
	}
	if path != indexPath+".gz" {
		t.Errorf("compressed path = %q, want %q", path, indexPath+".gz")
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(onDisk, data) {
		t.Error("returned bytes differ from persisted bytes")
	}

	plain, err := CompressionGZIP.Decompress(onDisk)
	if err != nil {
		t.Fatal(err)
	}
	if string(plain) != content {
		t.Error("decompressed artifact differs from plain index content")
	}
}

func TestCompressIndexReuse(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "Packages")

	// Whatever is persisted must come back unchanged in reuse mode,
	// even if it does not match the current content.
	sentinel := []byte("previously persisted bytes")
	if err := os.WriteFile(indexPath+".gz", sentinel, 0o644); err != nil {
		t.Fatal(err)
	}

	_, data, err := CompressIndex(indexPath, "fresh content", CompressionGZIP, true)
	if err != nil {
		t.Fatalf("CompressIndex reuse: %v", err)
	}
	if !bytes.Equal(data, sentinel) {
		t.Error("reuse mode recompressed instead of returning persisted bytes")
	}
}

func TestCompressIndexReuseWithoutPersisted(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "Packages")

	// Reuse requested but nothing persisted yet: compress normally.
	_, data, err := CompressIndex(indexPath, "content", CompressionGZIP, true)
	if err != nil {
		t.Fatalf("CompressIndex: %v", err)
	}
	plain, err := CompressionGZIP.Decompress(data)
	if err != nil {
		t.Fatal(err)
	}
	if string(plain) != "content" {
		t.Error("fallback compression produced wrong content")
	}
}
