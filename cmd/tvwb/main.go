// Where: cmd/tvwb/main.go
// What: CLI entrypoint.
// Why: Execute tvwb commands with configured dependencies.
package main

import (
	"os"

	"github.com/tvwb/tradingview-webhooks-bot/internal/app"
)

func main() {
	deps, closer := buildDependencies()
	if closer != nil {
		defer closer.Close()
	}

	os.Exit(app.Run(os.Args[1:], deps))
}
