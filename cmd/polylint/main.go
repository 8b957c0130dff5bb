package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	os.Exit(execute())
}

// execute runs the root command and maps its error to a process exit code.
func execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var exit *exitError
	if stderrors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	printSuggestedFixes(os.Stderr, err)
	return exitFailure
}
