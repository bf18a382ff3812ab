// Command mapwright converts, renders, scripts and serves diagram canvases.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/mapwright/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.New(os.Stderr, cli.LogInfo).RootCommand().ExecuteContext(ctx)
	stop()

	if code := cli.ExitCode(err); code != cli.ExitOK {
		if code != cli.ExitInterrupted {
			fmt.Fprintln(os.Stderr, cli.ErrorMessage(err))
		}
		os.Exit(code)
	}
}
