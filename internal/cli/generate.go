package cli

import (
	"context"
	"strings"

	"applykit/internal/common"
	"applykit/internal/errors"
	"applykit/internal/types"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a tailored application kit for a job description",
	Long: `Generate tailored resume content, a cover letter, outreach messages and
interview notes for one job description.

The job description comes from a file (text, PDF, DOCX or ODT), from the
job library by id, or from an interactive pick. The stored profile is used
unless --profile is given. With --pdf-dir the documents are also rendered.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		format, err := common.ResolveOutputFormat(generateOpts.output.OutputFormat, cfg.App.DefaultFormat, cfg.App.SupportedFormats)
		generateOpts.output.OutputFormat = format
		return err
	},
	RunE: runGenerate,
}

var generateOpts struct {
	output      common.CommandConfig
	jobFile     string
	jobID       string
	pick        bool
	role        string
	profileFile string
	pdfDir      string
	kinds       []string
	showDates   bool
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&generateOpts.jobFile, "job", "", "Job description file ('-' for stdin)")
	f.StringVar(&generateOpts.jobID, "job-id", "", "Job library id")
	f.BoolVar(&generateOpts.pick, "pick", false, "Pick the job interactively from the library")
	f.StringVar(&generateOpts.role, "role", "", "Target role (default: stored target role)")
	f.StringVar(&generateOpts.profileFile, "profile", "", "Profile file to generate from (default: stored profile)")
	f.StringVarP(&generateOpts.output.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	f.StringVar(&generateOpts.output.OutputFormat, "format", "", "Output format: json, text, or markdown")
	f.StringVar(&generateOpts.pdfDir, "pdf-dir", "", "Also render PDFs into this directory")
	f.StringSliceVar(&generateOpts.kinds, "kind", []string{"all"}, "Documents to render with --pdf-dir")
	f.BoolVar(&generateOpts.showDates, "show-dates", false, "Show experience dates in rendered PDFs")
	generateCmd.MarkFlagsMutuallyExclusive("job", "job-id", "pick")

	_ = generateCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return common.NewOutputHandler(nil).GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	kinds, err := common.ParseKinds(generateOpts.kinds)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, err.Error(), err)
	}

	services, err := requireServices(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer closeServices(services, logger)

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	ingestor := newIngestor(cfg, logger, services, nil)
	state := st.Snapshot()

	loadInput := func(ctx context.Context) (types.GenerateContentInput, error) {
		var jobDescription string
		switch {
		case generateOpts.jobFile == "-":
			text, err := common.NewFileProcessor(logger).ValidateAndReadFile("-", 0)
			if err != nil {
				return types.GenerateContentInput{}, err
			}
			jobDescription = text
		case generateOpts.jobFile != "":
			text, err := ingestor.ExtractText(ctx, generateOpts.jobFile)
			if err != nil {
				return types.GenerateContentInput{}, err
			}
			jobDescription = text
		case generateOpts.jobID != "":
			job, err := st.Job(generateOpts.jobID)
			if err != nil {
				return types.GenerateContentInput{}, err
			}
			jobDescription = job.Description
		case generateOpts.pick:
			job, err := pickJob(st.Jobs())
			if err != nil {
				return types.GenerateContentInput{}, err
			}
			jobDescription = job.Description
		default:
			return types.GenerateContentInput{}, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				"a job description is required: use --job, --job-id or --pick", nil)
		}

		profile, err := resolveProfile(ctx, cfg, logger, st, generateOpts.profileFile)
		if err != nil {
			return types.GenerateContentInput{}, err
		}
		role := strings.TrimSpace(generateOpts.role)
		if role == "" {
			role = state.TargetRole
		}
		return types.GenerateContentInput{
			Profile:        profile,
			JobDescription: jobDescription,
			TargetRole:     role,
		}, nil
	}

	var input types.GenerateContentInput
	logDetails := func(in types.GenerateContentInput, c common.CommandConfig) {
		input = in
		logger.Info("Starting content generation",
			"candidate", in.Profile.Name,
			"target_role", in.TargetRole,
			"job_chars", len(in.JobDescription),
			"output_format", c.OutputFormat)
	}

	content, err := common.RunCommand(ctx, logger, generateOpts.output, cmd.OutOrStdout(),
		loadInput, services.Generate.GenerateContent, logDetails)
	if err != nil {
		return err
	}
	logger.Info("Content generation completed", "match_score", content.MatchScore)

	if generateOpts.pdfDir == "" {
		return nil
	}
	return renderDocuments(cfg, logger, state, renderRequest{
		profile:   input.Profile,
		content:   content,
		kinds:     kinds,
		role:      input.TargetRole,
		showDates: generateOpts.showDates,
		outDir:    generateOpts.pdfDir,
	}, cmd.ErrOrStderr())
}
