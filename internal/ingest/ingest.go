// Package ingest reads job descriptions and profiles from local files,
// with local document extraction and an optional AI fallback.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"applykit/internal/config"
	"applykit/internal/errors"
	"applykit/internal/observability"
	"applykit/internal/types"
	"applykit/internal/utils"

	"github.com/tsawler/tabula"
)

// TextExtractor transcribes a document with a model.
type TextExtractor interface {
	ExtractText(ctx context.Context, input types.ExtractTextInput) (string, error)
}

// ProfileParser turns a document or text into a profile with a model.
type ProfileParser interface {
	ParseProfile(ctx context.Context, input types.ParseProfileInput) (types.CandidateProfile, error)
}

// Ingestor extracts text and imports profiles.
type Ingestor struct {
	maxSize    int64
	aiFallback bool

	extractor TextExtractor
	parser    ProfileParser
	metrics   *observability.Metrics
	logger    *errors.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithTextExtractor sets the model used when local PDF extraction finds
// no text.
func WithTextExtractor(e TextExtractor) Option {
	return func(i *Ingestor) { i.extractor = e }
}

// WithProfileParser sets the model used for non-JSON profile imports.
func WithProfileParser(p ProfileParser) Option {
	return func(i *Ingestor) { i.parser = p }
}

// WithMetrics records extraction and import counts on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(i *Ingestor) {
		if m != nil {
			i.metrics = m
		}
	}
}

// New creates an Ingestor from the ingest configuration.
func New(cfg config.IngestConfig, logger *errors.Logger, opts ...Option) *Ingestor {
	i := &Ingestor{
		maxSize:    cfg.MaxFileSize,
		aiFallback: cfg.AIFallback,
		metrics:    &observability.Metrics{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// MaxFileSize returns the upload limit in bytes.
func (i *Ingestor) MaxFileSize() int64 {
	return i.maxSize
}

// ExtractText returns the text of the file at path.
func (i *Ingestor) ExtractText(ctx context.Context, path string) (string, error) {
	data, err := i.readFile(path)
	if err != nil {
		return "", err
	}
	return i.ExtractBytes(ctx, filepath.Base(path), data)
}

// ExtractBytes returns the text of an uploaded file. name selects the
// format by extension.
func (i *Ingestor) ExtractBytes(ctx context.Context, name string, data []byte) (string, error) {
	if err := i.checkSize(name, int64(len(data))); err != nil {
		return "", err
	}

	switch {
	case utils.IsTextFile(name):
		text := normalizeText(string(data))
		i.metrics.RecordExtraction(ctx, "direct", text != "")
		if text == "" {
			return "", errors.NewValidationError(errors.ErrCodeExtractionEmpty, fmt.Sprintf("%s is empty", name), nil)
		}
		return text, nil

	case utils.IsDocumentFile(name):
		text, err := i.extractDocument(name, data)
		if err != nil {
			i.metrics.RecordExtraction(ctx, "local", false)
			return "", err
		}
		if text != "" {
			i.metrics.RecordExtraction(ctx, "local", true)
			return text, nil
		}
		if utils.GetFileExtension(name) != ".pdf" || !i.aiFallback || i.extractor == nil {
			i.metrics.RecordExtraction(ctx, "local", false)
			return "", errors.NewValidationError(errors.ErrCodeExtractionEmpty,
				fmt.Sprintf("no text found in %s", name), nil)
		}

		i.logger.Info("Local extraction found no text, using AI fallback", "file", name)
		text, err = i.extractor.ExtractText(ctx, types.ExtractTextInput{Document: data, MIMEType: utils.MIMEType(name)})
		i.metrics.RecordExtraction(ctx, "ai", err == nil)
		if err != nil {
			return "", err
		}
		return normalizeText(text), nil

	default:
		return "", errors.NewValidationError(errors.ErrCodeUnsupportedFormat,
			fmt.Sprintf("unsupported file type %q", utils.GetFileExtension(name)), nil)
	}
}

// ImportProfile reads a profile from a JSON file or, through the profile
// parser, from a resume in any supported format.
func (i *Ingestor) ImportProfile(ctx context.Context, path string) (types.CandidateProfile, error) {
	data, err := i.readFile(path)
	if err != nil {
		return types.CandidateProfile{}, err
	}
	return i.ImportProfileBytes(ctx, filepath.Base(path), data)
}

// ImportProfileBytes is ImportProfile for uploaded content.
func (i *Ingestor) ImportProfileBytes(ctx context.Context, name string, data []byte) (types.CandidateProfile, error) {
	source := strings.TrimPrefix(utils.GetFileExtension(name), ".")
	profile, err := i.importProfile(ctx, name, data)
	i.metrics.RecordProfileImport(ctx, source, err == nil)
	if err != nil {
		return types.CandidateProfile{}, err
	}
	i.logger.Info("Profile imported", "source", source, "name", profile.Name)
	return profile, nil
}

func (i *Ingestor) importProfile(ctx context.Context, name string, data []byte) (types.CandidateProfile, error) {
	if err := i.checkSize(name, int64(len(data))); err != nil {
		return types.CandidateProfile{}, err
	}

	ext := utils.GetFileExtension(name)
	if ext == ".json" {
		return DecodeProfile(data)
	}
	if i.parser == nil {
		return types.CandidateProfile{}, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			fmt.Sprintf("importing %s profiles needs the AI parser", ext), nil)
	}

	if ext == ".pdf" {
		return i.parser.ParseProfile(ctx, types.ParseProfileInput{Document: data, MIMEType: utils.MIMEType(name)})
	}
	text, err := i.ExtractBytes(ctx, name, data)
	if err != nil {
		return types.CandidateProfile{}, err
	}
	return i.parser.ParseProfile(ctx, types.ParseProfileInput{Text: text})
}

func (i *Ingestor) readFile(path string) ([]byte, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.NewIOError(errors.ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path), err)
	}
	if err := utils.ValidateInputFile(path, i.maxSize); err != nil {
		code := errors.ErrCodeFileNotReadable
		if info, statErr := os.Stat(path); statErr == nil && i.maxSize > 0 && info.Size() > i.maxSize {
			code = errors.ErrCodeFileTooLarge
		}
		return nil, errors.NewIOError(code, err.Error(), err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, fmt.Sprintf("cannot read %s", path), err)
	}
	return data, nil
}

func (i *Ingestor) checkSize(name string, size int64) error {
	if i.maxSize > 0 && size > i.maxSize {
		return errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("%s is %s, limit is %s", name, utils.FormatFileSize(size), utils.FormatFileSize(i.maxSize)), nil)
	}
	return nil
}

// extractDocument runs tabula on a temporary copy of data, since tabula
// opens documents by path.
func (i *Ingestor) extractDocument(name string, data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "applykit-*"+utils.GetFileExtension(name))
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable, "cannot stage document for extraction", err)
	}
	defer func() {
		if err := os.Remove(tmp.Name()); err != nil {
			i.logger.Warn("Failed to remove temporary file", "file", tmp.Name(), "error", err)
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable, "cannot stage document for extraction", err)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable, "cannot stage document for extraction", err)
	}

	text, warnings, err := tabula.Open(tmp.Name()).Text()
	if err != nil {
		return "", errors.NewValidationError(errors.ErrCodeInvalidFormat, fmt.Sprintf("cannot read %s", name), err)
	}
	if len(warnings) > 0 {
		i.logger.Debug("Document extracted with warnings", "file", name, "warnings", len(warnings))
	}
	return normalizeText(text), nil
}

// normalizeText unifies line endings, trims trailing spaces and collapses
// runs of blank lines.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	blank := 0
	for line := range strings.SplitSeq(s, "\n") {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}
