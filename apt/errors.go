package apt

import (
	"errors"
	"fmt"
)

// ErrNoPackages is reported by the scanner when an architecture has no
// packages in the pool. Callers skip the architecture rather than fail.
var ErrNoPackages = errors.New("no packages found")

// UnexpectedFileError reports an input file whose extension is neither
// the package container extension nor an ignorable archive suffix.
type UnexpectedFileError struct {
	Path string
}

func (e *UnexpectedFileError) Error() string {
	return fmt.Sprintf("unexpected file kind: %s", e.Path)
}

// ScanError wraps a hard scanner failure for one architecture.
type ScanError struct {
	Arch string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scanning binary-%s: %v", e.Arch, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// KeyImportError reports a private key that could not be imported into
// the ephemeral keyring, including the zero-usable-secret-keys case.
type KeyImportError struct {
	Err error
}

func (e *KeyImportError) Error() string {
	return fmt.Sprintf("importing private key: %v", e.Err)
}

func (e *KeyImportError) Unwrap() error { return e.Err }

// SigningError reports a failure past key import in the signing chain.
// The manifest/signature triple is removed before it is returned.
type SigningError struct {
	Step string // "detach-sign", "clearsign", "export"
	Err  error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }
