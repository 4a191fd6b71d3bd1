package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/manifestnorm/internal/cli"
)

// Set by -ldflags at release time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Unlike the server, the CLI lets the shell environment win over .env.
	_ = godotenv.Load()

	if err := cli.NewRootCommand(Version, Commit, BuildDate).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
