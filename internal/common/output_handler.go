package common

import (
	"fmt"
	"io"
	"path/filepath"

	"applykit/internal/documents"
	"applykit/internal/errors"
	"applykit/internal/formatters"
	"applykit/internal/utils"
)

// CommandConfig holds common configuration for commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
}

// OutputHandler handles formatting and writing output
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	logger        *errors.Logger
}

// NewOutputHandler creates a new output handler
func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger),
		registry:      formatters.GlobalRegistry,
		logger:        logger,
	}
}

// HandleOutput formats data and writes it to the configured file, or to out
// when no file is set.
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig, out io.Writer) error {
	if err := oh.fileProcessor.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}

	output, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile == "" {
		_, err := io.WriteString(out, output)
		return err
	}

	if err := oh.fileProcessor.WriteFile(config.OutputFile, []byte(output)); err != nil {
		return err
	}
	if oh.logger != nil {
		oh.logger.Info("Output written successfully",
			"file", config.OutputFile, "format", config.OutputFormat)
	}
	return nil
}

// WriteDocument saves a rendered PDF under dir and returns its path.
func (oh *OutputHandler) WriteDocument(doc *documents.Output, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, doc.Filename)
	if err := oh.fileProcessor.WriteFile(path, doc.Data); err != nil {
		return "", err
	}
	if oh.logger != nil {
		oh.logger.Info("Document written",
			"kind", doc.Kind,
			"file", path,
			"pages", doc.Pages,
			"size", utils.FormatFileSize(int64(len(doc.Data))))
	}
	return path, nil
}

// GetSupportedFormats returns all supported output formats
func (oh *OutputHandler) GetSupportedFormats() []string {
	return oh.registry.GetSupportedFormats()
}
