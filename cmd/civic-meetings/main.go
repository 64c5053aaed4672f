package main

import (
	"os"

	"github.com/pfrederiksen/civic-meetings/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
