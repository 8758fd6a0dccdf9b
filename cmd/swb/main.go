// Package main is the entry point for the swb CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/swbuilder/swb/cmd/swb/commands"
	errs "github.com/swbuilder/swb/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := commands.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var exitErr *errs.ExitError
	if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
		fmt.Fprintln(os.Stderr, "Suggestion:", exitErr.Suggestion)
	}
	os.Exit(errs.Code(err))
}
