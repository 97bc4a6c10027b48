// Package filex has small filesystem helpers for files voxkeeper keeps on
// the operator's machine.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// WritePrivate writes data to path with mode 0600, creating missing parent
// directories with mode 0700. A relative path is resolved against the
// working directory.
func WritePrivate(path string, data []byte) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("abs %s: %w", path, err)
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	if err := os.WriteFile(abs, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", abs, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(abs, 0o600); err != nil {
		return fmt.Errorf("chmod %s: %w", abs, err)
	}
	return nil
}
