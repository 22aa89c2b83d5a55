// Command looksee is the CLI for profiling tabular datasets with DuckDB.
package main

import (
	"os"

	"looksee/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
