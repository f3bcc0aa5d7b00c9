// Command blabel computes canonical blank node labels and lean forms of RDF
// graphs.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/blabel/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil && !cli.IsReported(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
