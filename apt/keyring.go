package apt

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// Keyring is a disposable key store scoped to a single signing
// operation. It owns a private temp directory holding one imported
// key and nothing else; Close removes the directory unconditionally.
// A Keyring is never reused across operations.
type Keyring struct {
	dir    string
	entity *openpgp.Entity
}

// NewKeyring creates the keyring directory under parent (the system
// temp directory when parent is empty).
func NewKeyring(parent string) (*Keyring, error) {
	dir, err := os.MkdirTemp(parent, "apt-keyring-*")
	if err != nil {
		return nil, fmt.Errorf("creating keyring directory: %w", err)
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("restricting keyring directory: %w", err)
	}
	return &Keyring{dir: dir}, nil
}

// Dir returns the keyring directory path.
func (k *Keyring) Dir() string { return k.dir }

// ImportKey loads a private key file (armored or binary) into the
// keyring. Fails with KeyImportError when the file yields no usable
// secret key. Exactly one key is held; a second import is refused.
func (k *Keyring) ImportKey(path string) error {
	if k.entity != nil {
		return &KeyImportError{Err: fmt.Errorf("keyring already holds a key")}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &KeyImportError{Err: err}
	}

	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return &KeyImportError{Err: fmt.Errorf("parsing %s: %w", path, err)}
		}
	}

	var entity *openpgp.Entity
	for _, e := range entities {
		if e.PrivateKey != nil {
			entity = e
			break
		}
	}
	if entity == nil {
		return &KeyImportError{Err: fmt.Errorf("no secret keys in %s", path)}
	}

	if err := os.WriteFile(filepath.Join(k.dir, "secring.gpg"), data, 0o600); err != nil {
		return &KeyImportError{Err: fmt.Errorf("storing key material: %w", err)}
	}

	k.entity = entity
	return nil
}

// Entity returns the imported key, or nil before a successful import.
func (k *Keyring) Entity() *openpgp.Entity { return k.entity }

// Close destroys the keyring directory and all key material in it.
// Safe to call on every exit path, including after failures.
func (k *Keyring) Close() error {
	k.entity = nil
	return os.RemoveAll(k.dir)
}
