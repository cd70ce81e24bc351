package apt

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LinkPool places the given package files into pool/main under repo as
// relative symlinks. An existing entry with the same name is replaced.
// Files with a .tar or .tar.gz suffix are skipped; any other non-.deb
// file is rejected with UnexpectedFileError before the pool is touched
// for that file.
func LinkPool(repo string, pkgs []string) error {
	pool := filepath.Join(repo, "pool", "main")
	if err := os.MkdirAll(pool, 0o755); err != nil {
		return fmt.Errorf("creating pool directory: %w", err)
	}

	for _, raw := range pkgs {
		pkg, err := filepath.Abs(raw)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", raw, err)
		}
		if filepath.Ext(pkg) != ".deb" {
			if isIgnorableArchive(pkg) {
				slog.Debug("Skipping non-package archive", "file", pkg)
				continue
			}
			return &UnexpectedFileError{Path: pkg}
		}

		target := filepath.Join(pool, filepath.Base(pkg))
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing stale pool entry %s: %w", target, err)
		}
		if err := RelativeSymlink(pkg, target); err != nil {
			return fmt.Errorf("linking %s into pool: %w", pkg, err)
		}
		slog.Debug("Linked package", "pkg", pkg, "target", target)
	}
	return nil
}

func isIgnorableArchive(path string) bool {
	return strings.HasSuffix(path, ".tar") || strings.HasSuffix(path, ".tar.gz")
}
