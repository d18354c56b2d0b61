package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

// TempFilePrefix marks in-flight note writes; the watcher and List ignore them.
const TempFilePrefix = "notebench-tmp-"

// writeFileAtomic stages data next to filename and renames it into place.
// On any failure the staged file is removed and filename is left untouched.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) (err error) {
	staged, err := os.CreateTemp(filepath.Dir(filename), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("stage %s: %w", filepath.Base(filename), err)
	}
	name := staged.Name()
	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			_ = staged.Close()
		}
		_ = os.Remove(name)
	}()

	if err = staged.Chmod(perm); err != nil {
		return fmt.Errorf("chmod staged note: %w", err)
	}
	if _, err = staged.Write(data); err != nil {
		return fmt.Errorf("write staged note: %w", err)
	}
	if err = staged.Sync(); err != nil {
		return fmt.Errorf("sync staged note: %w", err)
	}
	closed = true
	if err = staged.Close(); err != nil {
		return fmt.Errorf("close staged note: %w", err)
	}
	if err = os.Rename(name, filename); err != nil {
		return fmt.Errorf("replace %s: %w", filename, err)
	}
	return nil
}
