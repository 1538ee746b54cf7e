package main

import (
	"fmt"
	"os"

	"github.com/bbejeck/confluent-cli-plugins/internal/cli"
	"github.com/bbejeck/confluent-cli-plugins/internal/config"
)

var version = "dev"

func main() {
	// Initialize configuration
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}

	// Execute the plugin
	if err := cli.Execute(cli.NewSchemaPurgeCmd(cli.DefaultEnv()), version); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
