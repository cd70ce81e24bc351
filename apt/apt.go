// Package apt builds and signs an apt package repository tree: pool
// symlinks, per-architecture Packages indices, compressed siblings,
// and a signed Release manifest.
package apt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Builder holds the parameters of one repository build. A Builder is
// not safe for concurrent use; concurrent builds targeting the same
// repository directory must be serialized by the caller.
type Builder struct {
	RepoDir     string
	Suite       string
	Arches      []string
	Meta        ReleaseMeta
	KeyFile     string
	PubFile     string // defaults to <repo>/pub.gpg
	Compression Compression
	Publisher   *S3Publisher // optional bucket mirror
}

// NewBuilder returns a Builder with the stock suite, architecture
// list, and release metadata.
func NewBuilder(repoDir, keyFile string) *Builder {
	return &Builder{
		RepoDir:     repoDir,
		Suite:       "stable",
		Arches:      []string{"all", "amd64", "arm64"},
		Meta:        DefaultReleaseMeta("stable"),
		KeyFile:     keyFile,
		PubFile:     filepath.Join(repoDir, "pub.gpg"),
		Compression: CompressionGZIP,
	}
}

// Build links pkgs into the pool, regenerates every architecture
// index incrementally, composes and signs the Release manifest, and
// optionally mirrors the tree to S3. Architectures without packages
// are omitted from the manifest, not treated as failures.
func (b *Builder) Build(ctx context.Context, pkgs []string) error {
	suiteDir := filepath.Join(b.RepoDir, "dists", b.Suite)
	for _, arch := range b.Arches {
		dir := filepath.Join(suiteDir, "main", "binary-"+arch)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	if err := LinkPool(b.RepoDir, pkgs); err != nil {
		return err
	}

	// Prior indices across all architectures feed the merge hint, so
	// unchanged stanzas are carried over instead of rescanned.
	prior := make(map[string]string)
	var hints []string
	for _, arch := range b.Arches {
		data, err := os.ReadFile(b.indexPath(arch))
		if err != nil {
			continue
		}
		prior[arch] = string(data)
		hints = append(hints, string(data))
	}

	// A stale manifest or signature pair from a previous run must not
	// outlive this build.
	for _, name := range []string{"Release", "InRelease", "Release.gpg"} {
		if err := os.Remove(filepath.Join(suiteDir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing stale %s: %w", name, err)
		}
	}

	var included []ArchIndexes
	for _, arch := range b.Arches {
		indexes, err := b.buildArch(arch, hints, prior[arch])
		if err != nil {
			if errors.Is(err, ErrNoPackages) {
				slog.Info("No packages for architecture", "arch", arch)
				continue
			}
			return err
		}
		included = append(included, indexes)
	}

	release, err := ComposeRelease(b.Meta, suiteDir, included, time.Now())
	if err != nil {
		return fmt.Errorf("composing Release: %w", err)
	}
	if err := WriteFileAtomic(filepath.Join(suiteDir, "Release"), []byte(release), 0o644); err != nil {
		return err
	}

	if err := SignRepo(b.RepoDir, b.Suite, b.KeyFile, b.PubFile); err != nil {
		return err
	}

	if b.Publisher != nil {
		if err := b.Publisher.PublishTree(ctx, b.RepoDir); err != nil {
			return fmt.Errorf("publishing to S3: %w", err)
		}
	}

	slog.Info("Repository built", "repo", b.RepoDir, "suite", b.Suite, "arches", len(included))
	return nil
}

// buildArch produces the index artifact pair for one architecture.
func (b *Builder) buildArch(arch string, hints []string, priorContent string) (ArchIndexes, error) {
	content, err := ScanPackages(b.RepoDir, arch, hints)
	if err != nil {
		if errors.Is(err, ErrNoPackages) {
			return ArchIndexes{}, err
		}
		return ArchIndexes{}, &ScanError{Arch: arch, Err: err}
	}

	indexPath := b.indexPath(arch)
	unchanged := content == priorContent
	if !unchanged {
		if err := WriteFileAtomic(indexPath, []byte(content), 0o644); err != nil {
			return ArchIndexes{}, err
		}
	}

	compressedPath, compressed, err := CompressIndex(indexPath, content, b.Compression, unchanged)
	if err != nil {
		return ArchIndexes{}, err
	}

	return ArchIndexes{
		Arch:       arch,
		Plain:      IndexArtifact{Path: indexPath, Data: []byte(content)},
		Compressed: IndexArtifact{Path: compressedPath, Data: compressed},
	}, nil
}

func (b *Builder) indexPath(arch string) string {
	return filepath.Join(b.RepoDir, "dists", b.Suite, "main", "binary-"+arch, "Packages")
}
