package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Stdout is the output path that writes to standard output.
const Stdout = "-"

// WriteOutput writes body to path, or to stdout when path is empty or "-".
func WriteOutput(path string, body []byte, stdout io.Writer) error {
	if path == "" || path == Stdout {
		if _, err := stdout.Write(body); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
	return WriteFile(path, body)
}

// WriteFile writes data to path through a temporary file in the same
// directory and renames it into place, so readers see the old content or
// the new content and never a partial file.
func WriteFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output file: %w", err)
	}
	return nil
}
