package util

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/edsrzf/mmap-go"
)

// WithFileBytes maps filePath read-only and passes its contents to fn. The
// slice is only valid for the duration of the call; fn must copy anything it
// keeps.
//
// Compiled declaration bundles can be several megabytes, and on a rescan most
// of them are only hashed to confirm they did not change. Mapping avoids
// copying those bytes onto the heap. If mmap fails the file is read with
// os.ReadFile instead.
func WithFileBytes(filePath string, fn func(data []byte) error) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file %q: %w", filePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}

	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		return fn(nil)
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		slog.Debug("mmap failed, using fallback", "file", filePath, "size", stat.Size(), "error", err)

		buf, readErr := os.ReadFile(filePath)
		if readErr != nil {
			return fmt.Errorf("mmap failed and fallback failed for %q: mmap error: %v, read error: %w",
				filePath, err, readErr)
		}
		return fn(buf)
	}
	defer func() {
		if unmapErr := data.Unmap(); unmapErr != nil {
			slog.Warn("failed to unmap file", "path", filePath, "error", unmapErr)
		}
	}()

	return fn(data)
}

// ReadFile returns a private copy of the file contents, read through
// WithFileBytes.
func ReadFile(filePath string) ([]byte, error) {
	var out []byte
	err := WithFileBytes(filePath, func(data []byte) error {
		out = make([]byte, len(data))
		copy(out, data)
		return nil
	})
	return out, err
}
