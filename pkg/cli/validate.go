package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/stagehand-hq/stagehand/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the operation catalog configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Path to the operation catalog TOML file",
				Required:    true,
				Sources:     cli.EnvVars("STAGEHAND_CONFIG"),
				Destination: &configPath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			appCfg, err := config.LoadAppConfiguration(configPath)
			if err != nil {
				color.Red("✗ %s", configPath)
				return err
			}

			color.Green("✓ %s", configPath)

			confirmCfg, err := appCfg.ToConfirmConfig()
			if err != nil {
				return err
			}
			fmt.Printf("  default TTL: %s\n", confirmCfg.DefaultTTL)
			for risk, ttl := range confirmCfg.RiskTTL {
				fmt.Printf("  %s TTL: %s\n", risk, ttl)
			}

			fmt.Printf("  operations: %d\n", len(appCfg.Operations))
			bold := color.New(color.Bold)
			for _, op := range appCfg.ToCatalog().Operations() {
				bold.Printf("    %s", op.ID)
				fmt.Printf("  %s %s", op.Risk.Emoji(), op.Risk)
				if op.Name != "" {
					fmt.Printf("  (%s)", op.Name)
				}
				fmt.Println()
			}

			return nil
		},
	}
}
