package apt

import (
	"archive/tar"
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/blakesmith/ar"
	"github.com/klauspost/compress/gzip"
)

// DebControl holds the control stanza of a binary package. Fields
// preserves the original key order so index stanzas reproduce it.
type DebControl struct {
	Package      string
	Version      string
	Architecture string
	Fields       []ControlField
}

type ControlField struct {
	Key   string
	Value string
}

// ParseDebControl extracts the control file from a .deb ar container.
func ParseDebControl(r io.Reader) (*DebControl, error) {
	arReader := ar.NewReader(r)

	for {
		header, err := arReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ar archive: %w", err)
		}

		name := strings.TrimRight(header.Name, "/ ")
		if strings.HasPrefix(name, "control.tar") {
			return parseControlTar(arReader, name)
		}
	}

	return nil, fmt.Errorf("control.tar not found in .deb")
}

func parseControlTar(r io.Reader, name string) (*DebControl, error) {
	var tarReader *tar.Reader

	switch {
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("opening gzip: %w", err)
		}
		defer gz.Close()
		tarReader = tar.NewReader(gz)
	case strings.HasSuffix(name, ".xz") || strings.HasSuffix(name, ".zst"):
		return nil, fmt.Errorf("%s compression not supported", name)
	default:
		tarReader = tar.NewReader(r)
	}

	for {
		hdr, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading control tar: %w", err)
		}

		if strings.TrimPrefix(hdr.Name, "./") == "control" {
			return parseControlFile(tarReader)
		}
	}

	return nil, fmt.Errorf("control file not found in control.tar")
}

func parseControlFile(r io.Reader) (*DebControl, error) {
	ctrl := &DebControl{}
	scanner := bufio.NewScanner(r)

	var currentKey, currentValue string

	flush := func() {
		if currentKey == "" {
			return
		}
		value := strings.TrimSpace(currentValue)
		ctrl.Fields = append(ctrl.Fields, ControlField{Key: currentKey, Value: value})
		switch currentKey {
		case "Package":
			ctrl.Package = value
		case "Version":
			ctrl.Version = value
		case "Architecture":
			ctrl.Architecture = value
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}

		// Continuation lines belong to the previous field.
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			currentValue += "\n" + line
			continue
		}

		flush()

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		currentKey = strings.TrimSpace(key)
		currentValue = strings.TrimSpace(value)
	}
	flush()

	if ctrl.Package == "" {
		return nil, fmt.Errorf("Package field not found in control file")
	}
	return ctrl, nil
}
