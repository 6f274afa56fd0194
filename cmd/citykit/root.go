package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rushteam/citykit/config"
	"github.com/rushteam/citykit/pkg/logger"
)

const defaultConfigPath = "config.yaml"

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "citykit",
		Short:         "Questionnaire-driven city recommender",
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "config file (YAML)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override app.log_level")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newRecommendCmd(opts))
	return cmd
}

// load reads the config and initialises logging on stderr. The default
// config path may be absent; an explicit one may not.
func (o *rootOptions) load(cmd *cobra.Command) (*config.AppConfig, error) {
	path := o.configPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.App.LogLevel = o.logLevel
	}
	logger.InitTo(cmd.ErrOrStderr(), cfg.App.Name, cfg.App.LogLevel, cfg.App.LogPretty)
	return cfg, nil
}
