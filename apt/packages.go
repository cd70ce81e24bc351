package apt

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
)

// Stanza is a single package entry in a Packages index. Text holds the
// rendered stanza (no trailing blank line) so entries carried over from
// a prior index are reproduced verbatim.
type Stanza struct {
	Package  string
	Version  string
	Filename string
	Size     int64
	Text     string
}

// NewStanza renders a stanza from a package's control fields, pool
// path, and content digests.
func NewStanza(ctrl *DebControl, filename string, size int64, md5sum, sha1sum, sha256sum string) Stanza {
	var buf bytes.Buffer
	for _, f := range ctrl.Fields {
		fmt.Fprintf(&buf, "%s: %s\n", f.Key, f.Value)
	}
	fmt.Fprintf(&buf, "Filename: %s\n", filename)
	fmt.Fprintf(&buf, "Size: %d\n", size)
	fmt.Fprintf(&buf, "MD5sum: %s\n", md5sum)
	fmt.Fprintf(&buf, "SHA1: %s\n", sha1sum)
	fmt.Fprintf(&buf, "SHA256: %s\n", sha256sum)

	return Stanza{
		Package:  ctrl.Package,
		Version:  ctrl.Version,
		Filename: filename,
		Size:     size,
		Text:     buf.String(),
	}
}

// FormatPackagesIndex renders the full index: stanzas in (Package,
// Version) order, separated by blank lines.
func FormatPackagesIndex(stanzas []Stanza) string {
	sorted := make([]Stanza, len(stanzas))
	copy(sorted, stanzas)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Package != sorted[j].Package {
			return sorted[i].Package < sorted[j].Package
		}
		return sorted[i].Version < sorted[j].Version
	})

	texts := make([]string, len(sorted))
	for i, s := range sorted {
		texts[i] = s.Text
	}
	return strings.Join(texts, "\n")
}

// ParsePackagesIndex splits prior index content back into stanzas,
// keyed by the base name of each Filename field. Used as the merge
// hint: a pool file matching a prior stanza's name and size is not
// rescanned.
func ParsePackagesIndex(content string) map[string]Stanza {
	stanzas := make(map[string]Stanza)
	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimLeft(block, "\n")
		if strings.TrimSpace(block) == "" {
			continue
		}
		if !strings.HasSuffix(block, "\n") {
			block += "\n"
		}
		s := Stanza{Text: block}
		for _, line := range strings.Split(block, "\n") {
			if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
				continue
			}
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			value = strings.TrimSpace(value)
			switch key {
			case "Package":
				s.Package = value
			case "Version":
				s.Version = value
			case "Filename":
				s.Filename = value
			case "Size":
				s.Size, _ = strconv.ParseInt(value, 10, 64)
			}
		}
		if s.Package == "" || s.Filename == "" {
			continue
		}
		stanzas[path.Base(s.Filename)] = s
	}
	return stanzas
}
