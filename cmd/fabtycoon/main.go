package main

import (
	"github.com/andrescamacho/fabtycoon-go/internal/adapters/cli"
	gameQueries "github.com/andrescamacho/fabtycoon-go/internal/application/game/queries"
)

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.date=..."
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	cli.BuildInfo = gameQueries.BuildInfo{Version: version, Commit: commit, Date: date}
	cli.Execute()
}
