package main

import (
	"os"

	"github.com/mirrordesk/mirrordesk/internal/interface/cli"
)

func main() {
	if err := cli.NewRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
