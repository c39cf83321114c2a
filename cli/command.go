package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kvesta/vsdetect/config"
	"github.com/kvesta/vsdetect/internal"
	"github.com/kvesta/vsdetect/pkg/packages"
	"github.com/kvesta/vsdetect/pkg/setup"
)

var newEnumerator = setup.NewEnumerator

type options struct {
	configFile string
	vsVersion  string
	format     string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	loader := config.NewLoader()

	rootCmd := &cobra.Command{
		Use:   "vsdetect",
		Short: "List Visual Studio instances and their extensions",
		Long: `vsdetect queries the Visual Studio setup configuration for installed instances
and adds the extensions found in the user's local application data folder.

Examples:
  # Report every instance with its extensions
  $ vsdetect

  # Scan another user's application data
  $ vsdetect --localappdata "D:\Users\build\AppData\Local"

  # Only list the extensions of Visual Studio 2022
  $ vsdetect extensions --vs-version 17.0`,
		// Positional arguments are ignored.
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loader.BindFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(loader, opts)
			if err != nil {
				return err
			}

			finder, err := newFinder(cfg)
			if err != nil {
				return err
			}

			scanner := &internal.Scanner{
				Enumerator: newEnumerator(),
				Finder:     finder,
				Out:        cmd.OutOrStdout(),
			}

			if code := scanner.Run(config.Ctx); code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "path of a YAML config file")
	rootCmd.PersistentFlags().String("localappdata", "", "local application data folder to scan")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	rootCmd.AddCommand(extensions(loader, opts))
	rootCmd.AddCommand(version(loader, opts))

	return rootCmd
}

func loadConfig(loader *config.Loader, opts *options) (*config.Config, error) {
	cfg, err := loader.Load(opts.configFile)
	if err != nil {
		return nil, err
	}

	cfg.Apply()
	return cfg, nil
}

func newFinder(cfg *config.Config) (*packages.Discoverer, error) {
	root := cfg.LocalAppData
	if root == "" {
		var err error
		root, err = packages.LocalAppData()
		if err != nil {
			return nil, fmt.Errorf("locate local application data: %w", err)
		}
	}

	config.Logger.Debug("Scanning extensions", "localappdata", root)
	return packages.NewDiscoverer(root), nil
}

// Execute runs the command line.
func Execute() error {
	return NewRootCmd().Execute()
}
