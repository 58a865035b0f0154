package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/alscal/pkg/config"
)

var configKeys = []string{
	"outputPath",
	"identityKeys",
	"sensorPatterns",
	"firmwarePath",
	"initramfsCommand",
}

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Show or edit the config file",
		GroupID: gAdvanced,
	}

	cmd.AddCommand(
		newConfigShowCommand(),
		newConfigInitCommand(),
		newConfigSetCommand(),
	)

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			raw, err := config.NewRawFileConfigFromConfig(conf)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", configPath)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(raw); err != nil {
				return err
			}

			if err := conf.Validate(); err != nil {
				logrus.Warn(err)
			}
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	force := false

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("config file %s already exists, use --force to overwrite", configPath)
			}

			err := config.NewFileFromConfig(nil, configPath).Save()
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to save config")
			}

			logrus.Infof("config written to %s", configPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", force, "overwrite an existing config file")

	return cmd
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>...",
		Short: "Set a config value",
		Long: `Set a config value and save the config file.

Keys: ` + strings.Join(configKeys, ", ") + `

identityKeys and sensorPatterns take one or more values.`,
		Args:      cobra.MinimumNArgs(2),
		ValidArgs: configKeys,
		RunE: func(_ *cobra.Command, args []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			if err := setConfigValue(conf, args[0], args[1:]); err != nil {
				return err
			}

			if err := conf.Validate(); err != nil {
				return err
			}

			err = conf.Save()
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to save config")
			}

			logrus.WithFields(conf.LogrusFields()).Infof("config saved to %s", configPath)
			return nil
		},
	}
}

func setConfigValue(conf config.Config, key string, values []string) error {
	single := func() (string, error) {
		if len(values) != 1 {
			return "", fmt.Errorf("%s takes exactly one value", key)
		}
		return values[0], nil
	}

	switch key {
	case "outputPath":
		v, err := single()
		if err != nil {
			return err
		}
		conf.SetOutputPath(v)
	case "firmwarePath":
		v, err := single()
		if err != nil {
			return err
		}
		conf.SetFirmwarePath(v)
	case "initramfsCommand":
		// Commands contain spaces; accept them unquoted.
		conf.SetInitramfsCommand(strings.Join(values, " "))
	case "identityKeys":
		conf.SetIdentityKeys(values)
	case "sensorPatterns":
		conf.SetSensorPatterns(values)
	default:
		return fmt.Errorf("unknown config key %q (want one of %s)", key, strings.Join(configKeys, ", "))
	}

	return nil
}
