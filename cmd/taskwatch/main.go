package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/intelcomp/taskwatch/pkg/rest"
	"github.com/spf13/viper"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := newRootCommand(viper.New(), rest.NewClient)
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
