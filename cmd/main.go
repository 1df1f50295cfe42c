package main

import (
	"os"

	"mindmaze-hunt/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
