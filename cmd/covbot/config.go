package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/covbot/internal/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configCheckCmd(), configInitCmd())
	return cmd
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			fmt.Println("Configuration OK")
			return nil
		},
	}
}

func configInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Interactively create a configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := "covbot.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", path)
			}

			var cfg config.Config
			cfg.Defaults()

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Data source base URL").
						Value(&cfg.DataSource.BaseURL),
					huh.NewInput().
						Title("Twilio account SID").
						Value(&cfg.Messaging.AccountSID),
					huh.NewInput().
						Title("Twilio auth token").
						EchoMode(huh.EchoModePassword).
						Value(&cfg.Messaging.AuthToken),
					huh.NewInput().
						Title("WhatsApp sender number (e.g. +14155238886)").
						Value(&cfg.Messaging.From),
				),
				huh.NewGroup(
					huh.NewInput().
						Title("HTTP listen address").
						Value(&cfg.Gateway.Listen),
					huh.NewInput().
						Title("SQLite database path").
						Value(&cfg.Store.Path),
					huh.NewInput().
						Title("Ingest schedule (5-field cron)").
						Value(&cfg.Jobs.IngestSchedule),
					huh.NewInput().
						Title("Purge schedule (5-field cron)").
						Value(&cfg.Jobs.PurgeSchedule),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}

			if err := config.Validate(&cfg); err != nil {
				return err
			}

			data, err := yaml.Marshal(&cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}

			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
	return cmd
}
