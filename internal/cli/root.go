package cli

import (
	"context"

	"applykit/internal/config"
	"applykit/internal/errors"

	"github.com/spf13/cobra"
)

type configKeyType struct{}
type loggerKeyType struct{}

var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "applykit",
	Short: "Tailor resumes and cover letters to job descriptions",
	Long: `applykit turns your career profile and a job description into a
tailored application kit: resume, cover letter, outreach messages and
interview notes. Results can be rendered to paginated PDFs or served
over HTTP.`,
	SilenceUsage: true,
}

// Execute runs the root command with cfg and logger available to every
// subcommand through the context.
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context")
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context")
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
