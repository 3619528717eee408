package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SaveFileWithTimestamp writes the reader to the destination directory under
// the original name plus a timestamp suffix, so repeated uploads of the same
// file never clobber each other. Returns the stored file name.
func SaveFileWithTimestamp(src io.Reader, destDir, originalName string) (string, error) {
	// Create destination directory if it doesn't exist
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %v", err)
	}

	// Create destination filename with timestamp
	originalName = filepath.Base(originalName)
	ext := filepath.Ext(originalName)
	baseFileName := strings.TrimSuffix(originalName, ext)
	timestamp := time.Now().Unix()
	destFileName := fmt.Sprintf("%s_%d%s", baseFileName, timestamp, ext)
	destPath := filepath.Join(destDir, destFileName)

	// Create destination file
	destFile, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %v", err)
	}
	defer destFile.Close()

	// Copy the file
	if _, err := io.Copy(destFile, src); err != nil {
		return "", fmt.Errorf("failed to copy file: %v", err)
	}

	return destFileName, nil
}
