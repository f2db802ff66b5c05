package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rshade/carboncalc/internal/cli"
	"github.com/rshade/carboncalc/pkg/version"
)

func main() {
	os.Exit(run(os.Stderr))
}

// run executes the root command and returns the process exit code.
func run(stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		// Restore default handling so a second interrupt kills the process.
		stop()
	}()

	root := cli.NewRootCmd(version.GetVersion())
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
