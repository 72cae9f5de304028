package main

import (
	"fmt"
	"os"

	"sales-analytics-service/cmd/analyzer/cmd"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Error: an unexpected internal error occurred (%v)\n", r)
			fmt.Fprintf(os.Stderr, "Please re-run with --verbose and report this problem\n")
			os.Exit(5)
		}
	}()

	cmd.SetVersionInfo(version, commit, date)

	if err := cmd.Execute(); err != nil {
		handler := cmd.NewCLIErrorHandler()
		os.Exit(handler.HandleError(err))
	}
}
