package apt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteFileAtomic writes data to a temporary file in path's directory
// and renames it into place, so an interrupted build never leaves a
// half-written artifact at the final path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming %s to %s: %w", tmpName, path, err)
	}
	return nil
}

// CommonParent returns the longest common ancestor directory of the
// given absolute paths.
func CommonParent(paths ...string) string {
	if len(paths) == 0 {
		return string(filepath.Separator)
	}
	split := make([][]string, len(paths))
	for i, p := range paths {
		split[i] = strings.Split(filepath.Clean(p), string(filepath.Separator))
	}
	var common []string
	for i := 0; i < len(split[0]); i++ {
		part := split[0][i]
		same := true
		for _, parts := range split[1:] {
			if i >= len(parts) || parts[i] != part {
				same = false
				break
			}
		}
		if !same {
			break
		}
		common = append(common, part)
	}
	joined := strings.Join(common, string(filepath.Separator))
	if joined == "" {
		return string(filepath.Separator)
	}
	return joined
}

// RelativeSymlink creates target as a symlink to src, expressed
// relative to their common parent directory so the link survives
// relocation of the whole tree.
func RelativeSymlink(src, target string) error {
	src, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return err
	}
	parent := CommonParent(src, target)
	relSrc, err := filepath.Rel(parent, src)
	if err != nil {
		return fmt.Errorf("relativizing %s against %s: %w", src, parent, err)
	}
	relTarget, err := filepath.Rel(parent, filepath.Dir(target))
	if err != nil {
		return fmt.Errorf("relativizing %s against %s: %w", target, parent, err)
	}
	up := ""
	if relTarget != "." {
		up = strings.Repeat(".."+string(filepath.Separator), len(strings.Split(relTarget, string(filepath.Separator))))
	}
	return os.Symlink(up+relSrc, target)
}
