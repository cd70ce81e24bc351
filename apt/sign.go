package apt

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"
)

// Signer produces the repository signature set from one key entity.
type Signer struct {
	entity *openpgp.Entity
}

func NewSigner(entity *openpgp.Entity) *Signer {
	return &Signer{entity: entity}
}

// DetachedSign returns an armored detached signature over content.
// The content itself is not re-encoded or embedded.
func (s *Signer) DetachedSign(content []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&buf, s.entity, bytes.NewReader(content), nil); err != nil {
		return nil, fmt.Errorf("detached sign: %w", err)
	}
	return buf.Bytes(), nil
}

// ClearSign returns a single document embedding content with an
// inline signature block.
func (s *Signer) ClearSign(content []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := clearsign.Encode(&buf, s.entity.PrivateKey, nil)
	if err != nil {
		return nil, fmt.Errorf("clearsign encode: %w", err)
	}
	if _, err := w.Write(content); err != nil {
		return nil, fmt.Errorf("clearsign write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("clearsign close: %w", err)
	}
	return buf.Bytes(), nil
}

// PublicKey returns the public half of the key in binary (unarmored)
// form, with no secret material. This is what end users import to
// establish trust.
func (s *Signer) PublicKey() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.entity.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("serializing public key: %w", err)
	}
	return buf.Bytes(), nil
}

// SignRepo runs the signing chain over dists/<suite>/Release: imports
// the private key into an ephemeral keyring, writes the detached
// signature to Release.gpg and the clear-signed document to InRelease,
// and exports the public key to pubFile. The keyring is torn down on
// every exit path. On any signing failure the
// Release/InRelease/Release.gpg triple is removed so a failed run
// never leaves a signature without its matching manifest.
func SignRepo(repo, suite, keyFile, pubFile string) (err error) {
	suiteDir := filepath.Join(repo, "dists", suite)
	releasePath := filepath.Join(suiteDir, "Release")
	inReleasePath := filepath.Join(suiteDir, "InRelease")
	releaseGPGPath := releasePath + ".gpg"

	release, err := os.ReadFile(releasePath)
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	keyring, err := NewKeyring("")
	if err != nil {
		return err
	}
	defer keyring.Close()

	defer func() {
		if err == nil {
			return
		}
		// A partially signed tree must not survive the failure.
		for _, p := range []string{releasePath, inReleasePath, releaseGPGPath} {
			os.Remove(p)
		}
	}()

	if err = keyring.ImportKey(keyFile); err != nil {
		return err
	}
	signer := NewSigner(keyring.Entity())

	detached, err := signer.DetachedSign(release)
	if err != nil {
		return &SigningError{Step: "detach-sign", Err: err}
	}
	if err = WriteFileAtomic(releaseGPGPath, detached, 0o644); err != nil {
		return &SigningError{Step: "detach-sign", Err: err}
	}

	inRelease, err := signer.ClearSign(release)
	if err != nil {
		return &SigningError{Step: "clearsign", Err: err}
	}
	if err = WriteFileAtomic(inReleasePath, inRelease, 0o644); err != nil {
		return &SigningError{Step: "clearsign", Err: err}
	}

	pub, err := signer.PublicKey()
	if err != nil {
		return &SigningError{Step: "export", Err: err}
	}
	if err = WriteFileAtomic(pubFile, pub, 0o644); err != nil {
		return &SigningError{Step: "export", Err: err}
	}

	slog.Info("Signed repository", "suite", suite, "pub", pubFile)
	return nil
}
