package cli

import (
	"encoding/json"
	"fmt"

	"applykit/internal/common"
	"applykit/internal/errors"
	"applykit/internal/ingest"
	"applykit/internal/utils"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show, import, export and validate the candidate profile",
}

var profileShowFormat string

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := getConfigFromContext(cmd.Context())
		logger := getLoggerFromContext(cmd.Context())

		format, err := common.ResolveOutputFormat(profileShowFormat, cfg.App.DefaultFormat, cfg.App.SupportedFormats)
		if err != nil {
			return err
		}
		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		return common.NewOutputHandler(logger).HandleOutput(st.Profile(), common.CommandConfig{OutputFormat: format}, cmd.OutOrStdout())
	},
}

var profileImportDryRun bool

var profileImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace the stored profile from a JSON, PDF, DOCX, ODT or text file",
	Long: `Import a profile. JSON files are validated against the profile schema.
Other formats are parsed by the AI model and need an API key.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := getConfigFromContext(ctx)
		logger := getLoggerFromContext(ctx)

		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		profile, err := resolveProfile(ctx, cfg, logger, st, args[0])
		if err != nil {
			return err
		}

		if profileImportDryRun {
			return common.NewOutputHandler(logger).HandleOutput(profile, common.CommandConfig{OutputFormat: "json"}, cmd.OutOrStdout())
		}
		if err := st.SetProfile(profile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported profile for %s\n", profile.Name)
		return nil
	},
}

var profileExportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Write the stored profile as JSON ('-' for stdout)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		logger := getLoggerFromContext(cmd.Context())

		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		output := common.CommandConfig{OutputFormat: "json", OutputFile: args[0]}
		if args[0] == "-" {
			output.OutputFile = ""
		}
		return common.NewOutputHandler(logger).HandleOutput(st.Profile(), output, cmd.OutOrStdout())
	},
}

var profileValidateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a JSON profile against the profile schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		logger := getLoggerFromContext(cmd.Context())

		if args[0] != "-" {
			if err := utils.ValidateInputFile(args[0], cfg.Ingest.MaxFileSize); err != nil {
				return errors.NewValidationError("INVALID_INPUT_FILE", err.Error(), err)
			}
		}
		data, err := common.NewFileProcessor(logger).ReadFile(args[0])
		if err != nil {
			return err
		}

		if err := ingest.ValidateProfileJSON(data); err != nil {
			if appErr, ok := errors.AsAppError(err); ok {
				if violations, ok := appErr.Context["violations"].([]string); ok {
					for _, v := range violations {
						fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", v)
					}
				}
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is a valid profile\n", args[0])
		return nil
	},
}

var profilePrefsOpts struct {
	showDates bool
	role      string
}

var profilePrefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change the target role and date visibility",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := getConfigFromContext(cmd.Context())
		logger := getLoggerFromContext(cmd.Context())

		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		state := st.Snapshot()
		flags := cmd.Flags()
		if flags.Changed("show-dates") || flags.Changed("role") {
			showDates, role := state.ShowDates, state.TargetRole
			if flags.Changed("show-dates") {
				showDates = profilePrefsOpts.showDates
			}
			if flags.Changed("role") {
				role = profilePrefsOpts.role
			}
			if err := st.SetPreferences(showDates, role); err != nil {
				return err
			}
			state = st.Snapshot()
		}

		prefs := map[string]any{"target_role": state.TargetRole, "show_dates": state.ShowDates}
		data, err := json.MarshalIndent(prefs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	profileShowCmd.Flags().StringVar(&profileShowFormat, "format", "", "Output format: json, text, or markdown")
	profileImportCmd.Flags().BoolVar(&profileImportDryRun, "dry-run", false, "Print the imported profile without saving it")
	profilePrefsCmd.Flags().BoolVar(&profilePrefsOpts.showDates, "show-dates", false, "Show experience dates in documents")
	profilePrefsCmd.Flags().StringVar(&profilePrefsOpts.role, "role", "", "Default target role")

	profileCmd.AddCommand(profileShowCmd, profileImportCmd, profileExportCmd, profileValidateCmd, profilePrefsCmd)
}
