package main

import (
	"errors"
	"os"

	"github.com/kvesta/vsdetect/cli"
	"github.com/kvesta/vsdetect/config"
)

func main() {
	if err := cli.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}

		config.Logger.Error(err)
		os.Exit(1)
	}
}
