package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"applykit/internal/errors"
	"applykit/internal/utils"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger *errors.Logger
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

// ReadFile reads a file, or stdin when filename is "-".
func (fp *FileProcessor) ReadFile(filename string) ([]byte, error) {
	if filename == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "Cannot read standard input", err)
		}
		return data, nil
	}

	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil && fp.logger != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}
	return content, nil
}

// WriteFile writes data to a file, creating parent directories.
func (fp *FileProcessor) WriteFile(filename string, data []byte) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}

// ValidateAndReadFile validates the size and readability of a text input
// and returns its content.
func (fp *FileProcessor) ValidateAndReadFile(filename string, maxSize int64) (string, error) {
	if filename != "-" {
		if err := utils.ValidateInputFile(filename, maxSize); err != nil {
			return "", errors.NewValidationError("INVALID_INPUT_FILE",
				fmt.Sprintf("Invalid file %s", filename), err)
		}
		if !utils.IsTextFile(filename) && fp.logger != nil {
			fp.logger.Warn("File may not be a text file", "filename", filename)
		}
	}

	content, err := fp.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}
	return nil
}
