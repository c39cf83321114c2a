package cli

import (
	"github.com/spf13/cobra"

	"github.com/kvesta/vsdetect/config"
	"github.com/kvesta/vsdetect/internal/report"
)

func extensions(loader *config.Loader, opts *options) *cobra.Command {
	extensionsCmd := &cobra.Command{
		Use:   "extensions",
		Short: "List user extensions for a Visual Studio version",
		Long: `Examples:
  # List the extensions of any 17.x instance
  $ vsdetect extensions --vs-version 17.4.1

  # Print them as JSON or YAML
  $ vsdetect extensions --vs-version 17.4.1 -f json
  $ vsdetect extensions --vs-version 16.11 -f yaml`,
		Args: NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(loader, opts)
			if err != nil {
				return err
			}

			finder, err := newFinder(cfg)
			if err != nil {
				return err
			}

			exts := finder.Discover(opts.vsVersion)
			return report.WriteExtensions(cmd.OutOrStdout(), opts.format, exts)
		},
	}

	extensionsCmd.Flags().StringVar(&opts.vsVersion, "vs-version", "", "Visual Studio version, e.g. 17.4")
	extensionsCmd.Flags().StringVarP(&opts.format, "format", "f", "table", "output format: table, json or yaml")
	_ = extensionsCmd.MarkFlagRequired("vs-version")

	return extensionsCmd
}
