package service

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/basel-ax/diffusionto/internal/domain"
)

// DecodeRaw extracts the image bytes from a "<prefix>,<base64>" payload
func DecodeRaw(raw string) ([]byte, error) {
	i := strings.LastIndex(raw, ",")
	if i < 0 {
		return nil, domain.ErrInvalidRawImage
	}

	data, err := base64.StdEncoding.DecodeString(raw[i+1:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}
	return data, nil
}

// OutputFilename returns explicit when set, otherwise the hex sha256 of data with a .png extension
func OutputFilename(data []byte, explicit string) string {
	if explicit != "" {
		return explicit
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + ".png"
}

// WriteImage writes data to path, replacing any existing file
func WriteImage(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}
