package services

import (
	"fmt"
	"os"
	"path/filepath"
)

func GetEnv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

// CreateTempFile stores uploaded bytes under a temp path keeping the original
// extension, so the provider can infer the MIME type from the name.
func CreateTempFile(data []byte, filename string) (string, error) {
	ext := filepath.Ext(filename)
	tempFile, err := os.CreateTemp("", "wardrobe-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %v", err)
	}
	defer tempFile.Close()
	if _, err := tempFile.Write(data); err != nil {
		return "", fmt.Errorf("failed to write to temp file: %v", err)
	}
	return tempFile.Name(), nil
}
