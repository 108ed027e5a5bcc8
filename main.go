package main

import (
	"os"

	"github.com/safebase/safebase/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
