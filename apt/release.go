package apt

import (
	"bytes"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ReleaseMeta holds the scalar header fields of a Release file.
type ReleaseMeta struct {
	Origin      string
	Label       string
	Suite       string
	Codename    string
	Version     string
	Components  string
	Description string
}

// DefaultReleaseMeta returns the stock header values for a suite.
func DefaultReleaseMeta(suite string) ReleaseMeta {
	return ReleaseMeta{
		Origin:      "Custom Repository",
		Label:       "Custom",
		Suite:       suite,
		Codename:    suite,
		Version:     "1.0",
		Components:  "main",
		Description: "A set of packages not available in the official repositories.",
	}
}

// IndexArtifact is one on-disk index file and the exact bytes that
// were persisted to it.
type IndexArtifact struct {
	Path string
	Data []byte
}

// ArchIndexes pairs the plain and compressed index of one included
// architecture.
type ArchIndexes struct {
	Arch       string
	Plain      IndexArtifact
	Compressed IndexArtifact
}

// ComposeRelease renders the Release document: header fields, then
// MD5Sum/SHA1/SHA256 blocks listing every artifact with its digest,
// byte length, and path relative to suiteDir. Architectures appear in
// the order given; an empty slice still yields a valid document with
// empty hash blocks.
func ComposeRelease(meta ReleaseMeta, suiteDir string, arches []ArchIndexes, now time.Time) (string, error) {
	var buf bytes.Buffer

	names := make([]string, len(arches))
	for i, a := range arches {
		names[i] = a.Arch
	}

	fmt.Fprintf(&buf, "Origin: %s\n", meta.Origin)
	fmt.Fprintf(&buf, "Label: %s\n", meta.Label)
	fmt.Fprintf(&buf, "Suite: %s\n", meta.Suite)
	fmt.Fprintf(&buf, "Codename: %s\n", meta.Codename)
	fmt.Fprintf(&buf, "Version: %s\n", meta.Version)
	fmt.Fprintf(&buf, "Architectures: %s\n", strings.Join(names, " "))
	fmt.Fprintf(&buf, "Components: %s\n", meta.Components)
	fmt.Fprintf(&buf, "Description: %s\n", meta.Description)
	fmt.Fprintf(&buf, "Date: %s\n", now.UTC().Format(time.RFC1123Z))

	type digestFunc func([]byte) string
	algorithms := []struct {
		header string
		digest digestFunc
	}{
		{"MD5Sum", func(b []byte) string { return fmt.Sprintf("%x", md5.Sum(b)) }},
		{"SHA1", func(b []byte) string { return fmt.Sprintf("%x", sha1.Sum(b)) }},
		{"SHA256", func(b []byte) string { return fmt.Sprintf("%x", sha256.Sum256(b)) }},
	}

	for _, alg := range algorithms {
		fmt.Fprintf(&buf, "%s:\n", alg.header)
		for _, a := range arches {
			for _, artifact := range []IndexArtifact{a.Plain, a.Compressed} {
				rel, err := filepath.Rel(suiteDir, artifact.Path)
				if err != nil {
					return "", fmt.Errorf("relativizing %s: %w", artifact.Path, err)
				}
				fmt.Fprintf(&buf, " %s %d %s\n", alg.digest(artifact.Data), len(artifact.Data), filepath.ToSlash(rel))
			}
		}
	}

	return buf.String(), nil
}
