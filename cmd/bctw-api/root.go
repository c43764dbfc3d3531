package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "0.0.0-dev"

var rootCmd = &cobra.Command{
	Use:           "bctw-api",
	Short:         "BC Telemetry Warehouse API",
	Long:          `bctw-api exposes critters, collars, attachments, codes, alerts, users and onboarding over REST, backed by the stored functions of the BCTW database.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}
