// Command omtmzn translates SMT-LIB optimization scripts into MiniZinc models.
package main

import (
	"fmt"
	"os"

	"github.com/cespio/omtmzn/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
