package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/intelcomp/taskwatch/pkg/domain"
	"github.com/intelcomp/taskwatch/pkg/tracker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newListCommand(v *viper.Viper, connect connector) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list running tasks and finished ones not cleared yet",
		Args:  cobra.NoArgs,
	}
	typ := categoryFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		category, err := domain.AsCategory(*typ)
		if err != nil {
			return err
		}
		c, _, err := connectWith(v, connect)
		if err != nil {
			return err
		}

		tasks, err := c.Running(cmd.Context(), category)
		if err != nil {
			return err
		}
		partition := tracker.NewPartition(tasks)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TASK\tSTATUS\tSUBTYPE\tLABEL\tSTARTED AT")
		for _, group := range [][]domain.Task{partition.Active(), partition.Finished()} {
			for _, t := range group {
				fmt.Fprintf(
					w, "%s\t%s\t%s\t%s\t%s\n",
					t.Id, domain.StatusOf(t), t.SubType, t.Label, t.StartedAt.Format(time.RFC3339),
				)
			}
		}
		return w.Flush()
	}
	return cmd
}

func newStatusCommand(v *viper.Viper, connect connector) *cobra.Command {
	return &cobra.Command{
		Use:   "status TASK_ID",
		Short: "show status of the task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := connectWith(v, connect)
			if err != nil {
				return err
			}
			status, err := c.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func newWaitCommand(v *viper.Viper, connect connector) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wait TASK_ID",
		Short: "wait until the task is finished, and show its status",
		Args:  cobra.ExactArgs(1),
	}
	interval := cmd.Flags().Duration("interval", 2*time.Second, "polling interval")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, _, err := connectWith(v, connect)
		if err != nil {
			return err
		}
		status, err := tracker.WatchStatus(cmd.Context(), c, args[0], *interval)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), status)
		if status == domain.Error {
			return fmt.Errorf("task %s can not be tracked", args[0])
		}
		return nil
	}
	return cmd
}

func newClearCommand(v *viper.Viper, connect connector) *cobra.Command {
	return &cobra.Command{
		Use:   "clear TASK_ID",
		Short: "clear the finished task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := connectWith(v, connect)
			if err != nil {
				return err
			}
			return c.Clear(cmd.Context(), args[0])
		},
	}
}

func newClearAllCommand(v *viper.Viper, connect connector) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-all",
		Short: "clear all finished tasks of the category",
		Args:  cobra.NoArgs,
	}
	typ := categoryFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		category, err := domain.AsCategory(*typ)
		if err != nil {
			return err
		}
		c, _, err := connectWith(v, connect)
		if err != nil {
			return err
		}
		return c.ClearAll(cmd.Context(), category)
	}
	return cmd
}

func newCancelCommand(v *viper.Viper, connect connector) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel TASK_ID",
		Short: "stop the task and forget it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := connectWith(v, connect)
			if err != nil {
				return err
			}
			return c.Cancel(cmd.Context(), args[0])
		},
	}
}

func newLogsCommand(v *viper.Viper, connect connector) *cobra.Command {
	return &cobra.Command{
		Use:   "logs TASK_ID",
		Short: "show logs of the task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := connectWith(v, connect)
			if err != nil {
				return err
			}
			lines, err := c.Logs(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, l := range lines {
				fmt.Fprintln(out, l)
			}
			return nil
		},
	}
}
