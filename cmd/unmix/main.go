// Command unmix separates a dataset drawn from several causal regimes.
package main

import (
	"os"

	"github.com/katalvlaran/unmix/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
