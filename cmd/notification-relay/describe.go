package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"relay/internal/config"
	"relay/internal/constants"
	"relay/internal/descriptions"
	"relay/internal/logger"
)

func describeCmd() *cobra.Command {
	var dictionaryPath string

	cmd := &cobra.Command{
		Use:   "describe KEY [NAME=VALUE ...]",
		Short: "Resolve a filing description key against the dictionary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := dictionaryFile(dictionaryPath)
			if err != nil {
				return err
			}

			dict, err := descriptions.Load(path)
			if err != nil {
				return err
			}

			values, err := parseValues(args[1:])
			if err != nil {
				return err
			}

			resolver := descriptions.NewResolver(dict, logger.NopLogger())
			description, ok := resolver.Resolve(context.Background(), args[0], values)
			if !ok {
				return fmt.Errorf("no description found for key %q", args[0])
			}

			fmt.Fprintln(cmd.OutOrStdout(), description)
			return nil
		},
	}

	cmd.Flags().StringVar(&dictionaryPath, "dictionary", "", "Path to the description dictionary (defaults to the configured path)")
	return cmd
}

func dictionaryFile(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if path, err := resolveConfigFile(); err == nil {
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return "", err
		}
		return cfg.Descriptions.Path, nil
	}
	return constants.DefaultDescriptionsPath, nil
}

func parseValues(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid value %q, expected NAME=VALUE", arg)
		}
		values[name] = value
	}
	return values, nil
}
