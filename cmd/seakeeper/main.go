package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seakeeper/seakeeper/internal/commands"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "seakeeper",
		Short: "Vessel telemetry ingestion and carbon intensity analytics",
		Long: `Seakeeper ingests shipboard telemetry exports, cleans them into
analytical form, and serves fuel, efficiency, and IMO carbon intensity (CII)
views over them. The ingest process owns all writes; the analytics process
serves read-only queries from the same telemetry file.`,
		Version: version,
	}

	root.AddCommand(
		commands.NewInitCmd(),
		commands.NewIngestCmd(),
		commands.NewAnalyticsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
