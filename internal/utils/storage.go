package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// CheckUploadRoot verifies the upload root exists and is writable by creating
// and removing a probe file. The healthcheck binary calls this so a read-only
// mount is reported before the first upload fails.
func CheckUploadRoot(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("upload root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("upload root is not a directory: %s", dir)
	}

	probe := filepath.Join(dir, ".probe-"+uuid.New().String())
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("upload root not writable: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		return fmt.Errorf("upload root probe cleanup failed: %w", err)
	}

	return nil
}
