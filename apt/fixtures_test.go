package apt

import (
	"archive/tar"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/gzip"
)

// writeTestDeb writes a minimal but well-formed .deb (ar container
// with debian-binary, control.tar.gz, data.tar.gz) and returns its
// path.
func writeTestDeb(t *testing.T, dir, pkg, version, arch string) string {
	t.Helper()

	control := fmt.Sprintf("Package: %s\nVersion: %s\nArchitecture: %s\nMaintainer: Test <test@example.com>\nDescription: test package\n", pkg, version, arch)
	controlTar := gzipTar(t, "./control", []byte(control))
	dataTar := gzipTar(t, "./usr/share/doc/"+pkg, []byte("docs\n"))

	var buf bytes.Buffer
	w := ar.NewWriter(&buf)
	if err := w.WriteGlobalHeader(); err != nil {
		t.Fatalf("ar global header: %v", err)
	}
	for _, entry := range []struct {
		name string
		data []byte
	}{
		{"debian-binary", []byte("2.0\n")},
		{"control.tar.gz", controlTar},
		{"data.tar.gz", dataTar},
	} {
		hdr := &ar.Header{
			Name:    entry.name,
			ModTime: time.Unix(0, 0),
			Mode:    0o644,
			Size:    int64(len(entry.data)),
		}
		if err := w.WriteHeader(hdr); err != nil {
			t.Fatalf("ar header %s: %v", entry.name, err)
		}
		if _, err := w.Write(entry.data); err != nil {
			t.Fatalf("ar body %s: %v", entry.name, err)
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s_%s.deb", pkg, version, arch))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func gzipTar(t *testing.T, name string, body []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	if err := tw.WriteHeader(&tar.Header{
		Name:   name,
		Size:   int64(len(body)),
		Mode:   0o644,
		Format: tar.FormatGNU,
	}); err != nil {
		t.Fatalf("tar header: %v", err)
	}
	if _, err := tw.Write(body); err != nil {
		t.Fatalf("tar body: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("closing gzip: %v", err)
	}
	return buf.Bytes()
}

// newTestEntity generates a fast Ed25519 signing key.
func newTestEntity(t *testing.T) *openpgp.Entity {
	t.Helper()
	entity, err := openpgp.NewEntity("Test Key", "", "test@example.com", &packet.Config{
		Algorithm: packet.PubKeyAlgoEdDSA,
	})
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	return entity
}

// writeTestKey writes an armored private key file and returns its
// path together with the entity.
func writeTestKey(t *testing.T, dir string) (string, *openpgp.Entity) {
	t.Helper()
	entity := newTestEntity(t)

	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PrivateKeyType, nil)
	if err != nil {
		t.Fatalf("armor encode: %v", err)
	}
	if err := entity.SerializePrivate(w, nil); err != nil {
		t.Fatalf("serializing private key: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing armor: %v", err)
	}

	path := filepath.Join(dir, "signing.key")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("writing key: %v", err)
	}
	return path, entity
}

// writePublicOnlyKey writes an armored key file holding no secret
// material.
func writePublicOnlyKey(t *testing.T, dir string) string {
	t.Helper()
	entity := newTestEntity(t)

	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatalf("armor encode: %v", err)
	}
	if err := entity.Serialize(w); err != nil {
		t.Fatalf("serializing public key: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing armor: %v", err)
	}

	path := filepath.Join(dir, "public.key")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing key: %v", err)
	}
	return path
}
