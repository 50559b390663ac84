package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/integrixs/fieldtree/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.New(cli.CommandContext{})
	if err := cmd.ExecuteContext(ctx); err != nil {
		logrus.Error(err)
		stop()
		os.Exit(cli.ExitCode(err))
	}
}
