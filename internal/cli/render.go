package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"applykit/internal/common"
	"applykit/internal/config"
	"applykit/internal/documents"
	"applykit/internal/errors"
	"applykit/internal/store"
	"applykit/internal/types"
	"applykit/internal/utils"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render generated content to PDF documents",
	Long: `Render a saved generation result (the JSON written by
"applykit generate --format json") to paginated PDFs.

The stored profile is used unless --profile is given.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

var renderOpts struct {
	contentFile string
	profileFile string
	kinds       []string
	role        string
	outDir      string
	showDates   bool
	font        string
}

func init() {
	renderCmd.Flags().StringVar(&renderOpts.contentFile, "content", "", "Generated content JSON file ('-' for stdin)")
	renderCmd.Flags().StringVar(&renderOpts.profileFile, "profile", "", "Profile file to render with (default: stored profile)")
	renderCmd.Flags().StringSliceVar(&renderOpts.kinds, "kind", []string{"all"}, "Documents to render: resume, cover-letter, brief or all")
	renderCmd.Flags().StringVar(&renderOpts.role, "role", "", "Target role shown in the header (default: stored target role)")
	renderCmd.Flags().StringVar(&renderOpts.outDir, "out-dir", ".", "Directory for the PDF files")
	renderCmd.Flags().BoolVar(&renderOpts.showDates, "show-dates", false, "Show experience dates")
	renderCmd.Flags().StringVar(&renderOpts.font, "font", "", "Font family: helvetica or go (default from config)")
	_ = renderCmd.MarkFlagRequired("content")

	_ = renderCmd.RegisterFlagCompletionFunc("kind", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		kinds := []string{"all"}
		for _, k := range documents.Kinds() {
			kinds = append(kinds, string(k))
		}
		return kinds, cobra.ShellCompDirectiveNoFileComp
	})
}

func runRender(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	kinds, err := common.ParseKinds(renderOpts.kinds)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, err.Error(), err)
	}

	fp := common.NewFileProcessor(logger)
	data, err := fp.ReadFile(renderOpts.contentFile)
	if err != nil {
		return err
	}
	var content types.TailoredContent
	if err := json.Unmarshal(data, &content); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("%s is not generated content JSON", renderOpts.contentFile), err)
	}

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	profile, err := resolveProfile(ctx, cfg, logger, st, renderOpts.profileFile)
	if err != nil {
		return err
	}

	req := renderRequest{
		profile:   profile,
		content:   content,
		kinds:     kinds,
		role:      renderOpts.role,
		showDates: renderOpts.showDates,
		outDir:    renderOpts.outDir,
		font:      renderOpts.font,
	}
	return renderDocuments(cfg, logger, st.Snapshot(), req, cmd.OutOrStdout())
}

// resolveProfile imports path when given, otherwise returns the stored
// profile. JSON profiles need no AI key.
func resolveProfile(ctx context.Context, cfg *config.Config, logger *errors.Logger, st *store.FileStore, path string) (types.CandidateProfile, error) {
	if path == "" {
		return st.Profile(), nil
	}
	if utils.GetFileExtension(path) == ".json" {
		return newIngestor(cfg, logger, nil, nil).ImportProfile(ctx, path)
	}
	services, err := requireServices(ctx, cfg, logger, nil)
	if err != nil {
		return types.CandidateProfile{}, err
	}
	defer closeServices(services, logger)
	return newIngestor(cfg, logger, services, nil).ImportProfile(ctx, path)
}

type renderRequest struct {
	profile   types.CandidateProfile
	content   types.TailoredContent
	kinds     []documents.Kind
	role      string
	showDates bool
	outDir    string
	font      string
}

// renderDocuments builds and writes each requested kind. Flags fall back
// to the stored preferences.
func renderDocuments(cfg *config.Config, logger *errors.Logger, state store.State, req renderRequest, out io.Writer) error {
	docCfg := cfg.Document
	if req.font != "" {
		docCfg.FontFamily = req.font
	}
	builder, err := documents.NewBuilderFromConfig(docCfg, "applykit "+Version)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid document settings", err)
	}

	role := req.role
	if role == "" {
		role = state.TargetRole
	}

	handler := common.NewOutputHandler(logger)
	for _, kind := range req.kinds {
		opts, err := documents.OptionsFor(docCfg, kind)
		if err != nil {
			return errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid document settings", err)
		}
		opts.TargetRole = role
		opts.ShowDates = opts.ShowDates || state.ShowDates || req.showDates

		doc, err := builder.Build(kind, req.profile, req.content, opts)
		if err != nil {
			return errors.NewRenderError(errors.ErrCodeRenderFailed, fmt.Sprintf("failed to render %s", kind), err)
		}
		path, err := handler.WriteDocument(doc, req.outDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s (%d %s)\n", kind, path, doc.Pages, plural(doc.Pages, "page"))
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
