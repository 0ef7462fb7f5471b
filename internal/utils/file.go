// Package utils holds small file helpers shared by the CLI and ingest.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var (
	textExtensions     = []string{".txt", ".md", ".markdown", ".text"}
	documentExtensions = []string{".pdf", ".docx", ".odt"}
)

// ValidateInputFile checks that filename is a readable regular file no
// larger than maxSize bytes. A maxSize of zero disables the size check.
func ValidateInputFile(filename string, maxSize int64) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filename)
		}
		return fmt.Errorf("cannot access file %s: %w", filename, err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filename)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return fmt.Errorf("file %s is %s, limit is %s", filename, FormatFileSize(info.Size()), FormatFileSize(maxSize))
	}

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", filename, err)
	}
	return nil
}

// ValidateOutputFile creates the parent directory of filename if needed.
// An empty name means stdout.
func ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil
	}
	dir := filepath.Dir(filename)
	if dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", dir, err)
			}
		}
	}
	return nil
}

// GetFileExtension returns the file extension in lowercase
func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// IsTextFile checks if the file has a plain text extension
func IsTextFile(filename string) bool {
	return slices.Contains(textExtensions, GetFileExtension(filename))
}

// IsDocumentFile checks if the file is a PDF or office document
func IsDocumentFile(filename string) bool {
	return slices.Contains(documentExtensions, GetFileExtension(filename))
}

// MIMEType returns the MIME type sent to the model for a file name.
func MIMEType(filename string) string {
	switch GetFileExtension(filename) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".odt":
		return "application/vnd.oasis.opendocument.text"
	case ".json":
		return "application/json"
	case ".md", ".markdown":
		return "text/markdown"
	default:
		return "text/plain"
	}
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
