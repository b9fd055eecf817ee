package main

import (
	"os"

	"github.com/Ezequiell22/agent-sql/internal/cli"
)

// Version is set at build time.
var Version = "0.1.0"

func main() {
	os.Exit(cli.Execute(Version))
}
