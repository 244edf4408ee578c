package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync/atomic"

	"github.com/intelcomp/taskwatch/pkg/domain"
	"github.com/intelcomp/taskwatch/pkg/rest"
	"github.com/intelcomp/taskwatch/pkg/tracker"
	"github.com/intelcomp/taskwatch/pkg/utils/filewatch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newWatchCommand(v *viper.Viper, connect connector) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "poll running tasks, and print each task when it is finished",
		Long: `Poll running tasks of all categories, and print each task when it is found finished.

When the config file is updated, polling restarts with the new config.`,
		Args: cobra.NoArgs,
	}
	clearDone := cmd.Flags().Bool("clear", false, "clear tasks after they are printed")
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
		return watch(cmd.Context(), v, connect, logger, cmd.OutOrStdout(), *clearDone)
	}
	return cmd
}

// switchingClient delegates to the client of the latest config.
type switchingClient struct {
	current atomic.Pointer[rest.TaskClient]
}

func (s *switchingClient) Store(c rest.TaskClient) {
	s.current.Store(&c)
}

func (s *switchingClient) Running(ctx context.Context, category domain.Category) ([]domain.Task, error) {
	return (*s.current.Load()).Running(ctx, category)
}

func (s *switchingClient) Clear(ctx context.Context, taskId string) error {
	return (*s.current.Load()).Clear(ctx, taskId)
}

func (s *switchingClient) ClearAll(ctx context.Context, category domain.Category) error {
	return (*s.current.Load()).ClearAll(ctx, category)
}

func watch(
	ctx context.Context,
	v *viper.Viper,
	connect connector,
	logger *log.Logger,
	out io.Writer,
	clearDone bool,
) error {
	current := new(switchingClient)
	channel := tracker.NewChannel()
	reconciler := tracker.NewReconciler(current, channel, logger)

	done := make(chan tracker.Completion)
	unsubscribe := channel.Subscribe(func(c tracker.Completion) {
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n", domain.Completed, c.Category, c.Task.Id, c.Task.SubType, c.Task.Label)
		if !clearDone {
			return
		}
		select {
		case <-ctx.Done():
		case done <- c:
		}
	})
	defer unsubscribe()

	if clearDone {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case c := <-done:
					if err := reconciler.ClearOne(ctx, c.Category, c.Task.Id); err != nil {
						logger.Printf("failed to clear task %s: %s", c.Task.Id, err)
					}
				}
			}
		}()
	}

	configPath := v.GetString(keyConfig)
	for {
		c, conf, err := connectWith(v, connect)
		if err != nil {
			return err
		}
		current.Store(c)

		wctx, cancel := ctx, func() {}
		if configPath != "" {
			wctx, cancel, err = filewatch.UntilModifyContext(ctx, configPath)
			if err != nil {
				return err
			}
		}

		p := conf.Polling
		scheduler := tracker.NewScheduler(
			current, reconciler, logger,
			tracker.WithInterval(domain.Training, p.Training),
			tracker.WithInterval(domain.Curating, p.Curating),
			tracker.WithFetchTimeout(p.FetchTimeout),
			tracker.WithBackoff(p.Backoff.Max, p.Backoff.Jitter),
		)
		if err := scheduler.Start(wctx); err != nil {
			cancel()
			return err
		}

		<-wctx.Done()
		scheduler.Stop()
		cancel()

		if ctx.Err() != nil {
			return nil
		}
		logger.Printf("restart polling: %s", context.Cause(wctx))
	}
}
