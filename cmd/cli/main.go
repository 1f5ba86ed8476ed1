package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/me/pricedesk/internal/cli"
	"github.com/me/pricedesk/pkg/model"
)

// Exit status 3 tells scripts to log in again.
const exitSessionExpired = 3

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cli.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, model.ErrSessionExpired) {
			os.Exit(exitSessionExpired)
		}
		os.Exit(1)
	}
}
