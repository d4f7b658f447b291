package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/flemzord/covbot/pkg/app"
)

// program adapts app.Run to the service.Interface lifecycle.
type program struct {
	params app.RunParams
	cancel context.CancelFunc
	done   chan struct{}
}

// Start implements service.Interface. It must not block.
func (p *program) Start(_ service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		if err := app.Run(ctx, p.params); err != nil {
			slog.Error("covbot exited", "error", err)
		}
	}()
	return nil
}

// Stop implements service.Interface. It waits for the run loop to drain.
func (p *program) Stop(_ service.Service) error {
	p.cancel()
	<-p.done
	return nil
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "service <install|uninstall|start|stop|run>",
		Short:     "Run covbot as a system service",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"install", "uninstall", "start", "stop", "run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")

			svcConfig := &service.Config{
				Name:        "covbot",
				DisplayName: "covbot",
				Description: "COVID-19 statistics bot for WhatsApp",
				Arguments:   serviceArguments(cfgPath),
			}

			prg := &program{params: app.RunParams{ConfigPath: cfgPath, Version: version}}
			svc, err := service.New(prg, svcConfig)
			if err != nil {
				return fmt.Errorf("create service: %w", err)
			}

			action := args[0]
			if action == "run" {
				return svc.Run()
			}

			if err := service.Control(svc, action); err != nil {
				return fmt.Errorf("service %s: %w", action, err)
			}
			fmt.Printf("service %s: done\n", action)
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

// serviceArguments builds the argv the service manager uses to start covbot.
func serviceArguments(cfgPath string) []string {
	args := []string{"service", "run"}
	if cfgPath != "" {
		args = append(args, "--config", cfgPath)
	}
	return args
}
