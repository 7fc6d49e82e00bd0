package main

import (
	"os"

	"github.com/effective-security/stockmcp/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
