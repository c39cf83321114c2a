package config

import (
	"context"

	"github.com/fatih/color"
)

var (
	Yellow = color.New(color.FgYellow).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()

	Ctx = context.Background()
)

// Config holds the settings shared by all commands.
type Config struct {
	// LocalAppData overrides the platform local application data folder.
	LocalAppData string `mapstructure:"localappdata"`
	Verbose      bool   `mapstructure:"verbose"`
	NoColor      bool   `mapstructure:"no-color"`
}

// Apply pushes the settings into the process-wide logger and color output.
func (c *Config) Apply() {
	if c.NoColor {
		color.NoColor = true
	}
	SetupLogging(c.Verbose)
}
