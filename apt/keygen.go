package apt

import (
	"bytes"
	"crypto"
	"fmt"
	"log/slog"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// GeneratePrivateKey creates an unprotected RSA-4096 signing key and
// writes it, armored, to path. Refuses to overwrite an existing file.
func GeneratePrivateKey(path, name, email string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking %s: %w", path, err)
	}

	if name == "" {
		name = "example"
	}
	if email == "" {
		email = "example@example.com"
	}

	cfg := &packet.Config{
		Algorithm:   packet.PubKeyAlgoRSA,
		RSABits:     4096,
		DefaultHash: crypto.SHA256,
	}
	entity, err := openpgp.NewEntity(name, "", email, cfg)
	if err != nil {
		return fmt.Errorf("generating key: %w", err)
	}

	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PrivateKeyType, nil)
	if err != nil {
		return fmt.Errorf("creating armor encoder: %w", err)
	}
	if err := entity.SerializePrivate(w, nil); err != nil {
		return fmt.Errorf("serializing private key: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing armor encoder: %w", err)
	}

	if err := WriteFileAtomic(path, buf.Bytes(), 0o600); err != nil {
		return err
	}
	slog.Warn("Created private key file", "path", path)
	return nil
}
