package main

import (
	"os"

	"github.com/dshills/rework/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
