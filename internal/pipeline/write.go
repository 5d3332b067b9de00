package pipeline

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// WriteIfChanged writes data to path unless the file already holds the same
// bytes. Parent directories are created. Reports whether a write happened.
func WriteIfChanged(path string, data []byte, log *slog.Logger) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && ContentHashHex(existing) == ContentHashHex(data) {
		log.Info("unchanged", "path", path)
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	log.Info("wrote", "path", path, "bytes", len(data))
	return true, nil
}
