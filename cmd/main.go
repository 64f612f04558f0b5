package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "schedulable",
	Short: "A CLI for managing the schedulable services",
	Long: `schedulable attaches calendar recurrences to records, answers occurrence
queries and announces due schedules on a Redis stream.

Run "scheduling-service serve" for the API and poller, "migrate up" for the schema.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
