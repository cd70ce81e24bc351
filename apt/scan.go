package apt

import (
	"bytes"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ScanPackages builds the Packages index content for one architecture
// from the pool under repo. prior holds the content of previously
// generated indices (any architecture); a pool file whose name and
// size match a prior stanza for the same architecture is carried over
// verbatim instead of being re-read.
//
// Returns ErrNoPackages when the pool holds no package for arch.
func ScanPackages(repo, arch string, prior []string) (string, error) {
	hints := make(map[string]Stanza)
	for _, content := range prior {
		for name, s := range ParsePackagesIndex(content) {
			if stanzaArch(s) == arch {
				hints[name] = s
			}
		}
	}

	poolDir := filepath.Join(repo, "pool")
	var stanzas []Stanza
	err := filepath.WalkDir(poolDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".deb") {
			return nil
		}

		rel, err := filepath.Rel(repo, p)
		if err != nil {
			return err
		}
		filename := filepath.ToSlash(rel)

		info, err := os.Stat(p) // follows pool symlinks
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}

		if hint, ok := hints[filepath.Base(p)]; ok && hint.Size == info.Size() {
			slog.Debug("Reusing index entry", "arch", arch, "file", filename)
			stanzas = append(stanzas, hint)
			return nil
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		ctrl, err := ParseDebControl(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("parsing %s: %w", p, err)
		}
		if ctrl.Architecture != arch {
			return nil
		}

		stanzas = append(stanzas, NewStanza(ctrl, filename, int64(len(data)),
			fmt.Sprintf("%x", md5.Sum(data)),
			fmt.Sprintf("%x", sha1.Sum(data)),
			fmt.Sprintf("%x", sha256.Sum256(data))))
		slog.Debug("Scanned package", "arch", arch, "pkg", ctrl.Package, "version", ctrl.Version)
		return nil
	})
	if err != nil {
		return "", err
	}

	if len(stanzas) == 0 {
		return "", fmt.Errorf("binary-%s: %w", arch, ErrNoPackages)
	}
	return FormatPackagesIndex(stanzas), nil
}

func stanzaArch(s Stanza) string {
	for _, line := range strings.Split(s.Text, "\n") {
		if v, ok := strings.CutPrefix(line, "Architecture:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
