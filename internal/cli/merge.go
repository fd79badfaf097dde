package cli

import (
	"fmt"

	"keymerger/config"
	"keymerger/internal/integrator"

	"dario.cat/mergo"
	"github.com/spf13/cobra"
)

func newMergeCmd(root *rootOptions) *cobra.Command {
	var (
		sourcePath string
		targetPath string
		dryRun     bool
		suffix     string
		indent     int
		format     string
	)

	cmd := &cobra.Command{
		Use:   "merge [SOURCE TARGET]",
		Short: "Add keys missing from TARGET and write <target>_integrated.json",
		Long: `Reads the SOURCE and TARGET JSON objects, adds every key of SOURCE that TARGET lacks
with an empty-string value, and writes the result next to TARGET. Paths can be given as
arguments or with --source and --target.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := fillPaths(args, &sourcePath, &targetPath); err != nil {
				return err
			}

			env, err := setup(cmd.Context(), root, cmd.ErrOrStderr(), "")
			if err != nil {
				return err
			}
			defer env.Close(cmd.Context())

			overrides := config.OutputConfig{Suffix: suffix, Indent: indent}
			if err := mergo.Merge(&env.cfg.Output, overrides, mergo.WithOverride); err != nil {
				return fmt.Errorf("failed to apply flag overrides: %w", err)
			}
			if err := env.cfg.Validate(); err != nil {
				return err
			}

			svc := env.service(integrator.Options{
				Suffix: env.cfg.Output.Suffix,
				Indent: env.cfg.Output.Indent,
			})

			report, err := svc.Run(cmd.Context(), integrator.Request{
				Source: sourcePath,
				Target: targetPath,
				DryRun: dryRun,
			})
			if err != nil {
				return err
			}

			return report.Render(cmd.OutOrStdout(), format)
		},
	}

	cmd.Flags().StringVar(&sourcePath, "source", "", "Path of the source JSON object (supplies keys)")
	cmd.Flags().StringVar(&targetPath, "target", "", "Path of the target JSON object (receives keys)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the keys that would be added without writing anything")
	cmd.Flags().StringVar(&suffix, "suffix", "", "Output name suffix (default from config: _integrated)")
	cmd.Flags().IntVar(&indent, "indent", 0, "Spaces per indentation level (default from config: 4)")
	cmd.Flags().StringVar(&format, "format", integrator.FormatText, "Report format: text, json or yaml")

	return cmd
}

// fillPaths assigns positional arguments to the path slots that no flag has set,
// source first.
func fillPaths(args []string, slots ...*string) error {
	rest := args
	for _, slot := range slots {
		if *slot == "" && len(rest) > 0 {
			*slot = rest[0]
			rest = rest[1:]
		}
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected argument %q: source and target are both set", rest[0])
	}
	return nil
}
