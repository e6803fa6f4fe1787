package main

import (
	"os"

	"github.com/contestapp/gateway/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
