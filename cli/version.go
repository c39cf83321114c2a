package cli

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/host"
	"github.com/spf13/cobra"

	"github.com/kvesta/vsdetect/config"
)

const versions = "vsdetect 1.0.0"

func version(loader *config.Loader, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information and quit",
		Args:  NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(loader, opts); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, config.Green(versions))

			info, err := host.Info()
			if err != nil {
				config.Logger.Debug("Cannot read host information", "err", err)
				fmt.Fprintf(out, "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
				return nil
			}
			fmt.Fprintf(out, "Platform: %s %s (%s)\n", info.Platform, info.PlatformVersion, info.KernelArch)
			return nil
		},
	}
}
