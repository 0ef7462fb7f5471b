package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"applykit/internal/common"
	"applykit/internal/errors"
	"applykit/internal/types"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage the job description library",
}

var jobsListFormat string

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored jobs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := getConfigFromContext(cmd.Context())
		logger := getLoggerFromContext(cmd.Context())

		format, err := common.ResolveOutputFormat(jobsListFormat, cfg.App.DefaultFormat, cfg.App.SupportedFormats)
		if err != nil {
			return err
		}
		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		return common.NewOutputHandler(logger).HandleOutput(st.Jobs(), common.CommandConfig{OutputFormat: format}, cmd.OutOrStdout())
	},
}

var jobsAddOpts struct {
	title  string
	source string
	file   string
}

var jobsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a job description to the library",
	Long: `Add a job description from a text, PDF, DOCX or ODT file, or from
stdin with --file -. Scanned PDFs need an AI API key for extraction.`,
	Args: cobra.NoArgs,
	RunE: runJobsAdd,
}

var jobsRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove a job from the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		logger := getLoggerFromContext(cmd.Context())

		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		if err := st.RemoveJob(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed job %s\n", args[0])
		return nil
	},
}

var jobsPickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Choose a job interactively and print its description",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := getConfigFromContext(cmd.Context())
		logger := getLoggerFromContext(cmd.Context())

		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		job, err := pickJob(st.Jobs())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n", job.ID, job.Description)
		return nil
	},
}

func init() {
	jobsListCmd.Flags().StringVar(&jobsListFormat, "format", "", "Output format: json, text, or markdown")

	jobsAddCmd.Flags().StringVar(&jobsAddOpts.title, "title", "", "Job title (default: file name)")
	jobsAddCmd.Flags().StringVar(&jobsAddOpts.source, "source", "", "Where the job was found")
	jobsAddCmd.Flags().StringVar(&jobsAddOpts.file, "file", "", "Job description file ('-' for stdin)")
	_ = jobsAddCmd.MarkFlagRequired("file")

	jobsCmd.AddCommand(jobsListCmd, jobsAddCmd, jobsRemoveCmd, jobsPickCmd)
}

func runJobsAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	var text string
	if jobsAddOpts.file == "-" {
		text, err = common.NewFileProcessor(logger).ValidateAndReadFile("-", 0)
	} else {
		services, serr := optionalServices(ctx, cfg, logger, nil)
		if serr != nil {
			return serr
		}
		defer closeServices(services, logger)
		text, err = newIngestor(cfg, logger, services, nil).ExtractText(ctx, jobsAddOpts.file)
	}
	if err != nil {
		return err
	}

	title := jobsAddOpts.title
	if title == "" && jobsAddOpts.file != "-" {
		base := filepath.Base(jobsAddOpts.file)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	job, err := st.AddJob(types.JobDescription{Title: title, Source: jobsAddOpts.source, Description: text})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added job %s (%s)\n", job.ID, job.Title)
	return nil
}

// pickJob shows the library in a select prompt.
func pickJob(jobs []types.JobDescription) (types.JobDescription, error) {
	if len(jobs) == 0 {
		return types.JobDescription{}, errors.NewNotFoundError(errors.ErrCodeJobNotFound, "the job library is empty")
	}

	items := make([]string, len(jobs))
	for i, j := range jobs {
		items[i] = j.Title
		if j.Source != "" {
			items[i] += " / " + j.Source
		}
	}

	prompt := promptui.Select{
		Label: "Choose a job and press ENTER",
		Items: items,
		Size:  10,
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return types.JobDescription{}, fmt.Errorf("job selection cancelled: %w", err)
	}
	return jobs[idx], nil
}
