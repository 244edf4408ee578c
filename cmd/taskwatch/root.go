package main

import (
	"fmt"
	"strings"

	"github.com/intelcomp/taskwatch/pkg/configs/client"
	"github.com/intelcomp/taskwatch/pkg/domain"
	"github.com/intelcomp/taskwatch/pkg/rest"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix = "TASKWATCH"

	keyConfig  = "config"
	keyApiRoot = "api-root"
	keyToken   = "token"
)

// connector creates a client for the profile. rest.NewClient in production.
type connector func(prof *client.Profile) (rest.TaskClient, error)

func newRootCommand(v *viper.Viper, connect connector) *cobra.Command {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:          "taskwatch",
		Short:        "track running tasks of the model trainer",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String(keyConfig, "", "path to config file (env: TASKWATCH_CONFIG)")
	flags.String(keyApiRoot, "", "endpoint of the task API. overrides the config (env: TASKWATCH_API_ROOT)")
	flags.String(keyToken, "", "bearer token. overrides the config (env: TASKWATCH_TOKEN)")
	for _, k := range []string{keyConfig, keyApiRoot, keyToken} {
		// flags are defined just above; binding them never fails.
		_ = v.BindPFlag(k, flags.Lookup(k))
	}

	root.AddCommand(
		newWatchCommand(v, connect),
		newListCommand(v, connect),
		newStatusCommand(v, connect),
		newWaitCommand(v, connect),
		newClearCommand(v, connect),
		newClearAllCommand(v, connect),
		newCancelCommand(v, connect),
		newLogsCommand(v, connect),
	)
	return root
}

// loadConfig reads the config file (if any), and then overrides its profile
// with flags and environment variables.
func loadConfig(v *viper.Viper) (*client.Config, error) {
	conf := client.Default()
	if p := v.GetString(keyConfig); p != "" {
		c, err := client.Load(p)
		if err != nil {
			return nil, fmt.Errorf("cannot read config %s: %w", p, err)
		}
		conf = c
	}

	if r := v.GetString(keyApiRoot); r != "" {
		conf.Profile.ApiRoot = r
	}
	if t := v.GetString(keyToken); t != "" {
		conf.Profile.Token = t
	}
	return conf, nil
}

func connectWith(v *viper.Viper, connect connector) (rest.TaskClient, *client.Config, error) {
	conf, err := loadConfig(v)
	if err != nil {
		return nil, nil, err
	}
	c, err := connect(&conf.Profile)
	if err != nil {
		return nil, nil, err
	}
	return c, conf, nil
}

// categoryFlag registers "--type" flag to the command.
func categoryFlag(cmd *cobra.Command) *string {
	return cmd.Flags().String("type", domain.Training.String(), "category of tasks. training|curating")
}
