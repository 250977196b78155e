package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/sitewizard/sitewizard/cmd"
)

// set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := fang.Execute(
		context.Background(),
		cmd.NewRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
