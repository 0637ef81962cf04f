package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:   "hap-gsh-bridge",
		Usage:  "exposes HomeKit accessories of a hub to Google Smart Home",
		Action: bridgeCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				EnvVars: []string{"CONFIG_PATH"},
				Value:   "/app/config.json",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "INFO",
			},
			&cli.StringFlag{
				Name:    "status-addr",
				EnvVars: []string{"STATUS_ADDR"},
				Value:   "127.0.0.1:8582",
			},
			&cli.StringFlag{
				Name:    "status-token",
				Usage:   "bearer token for the /api routes; device control is disabled without one",
				EnvVars: []string{"STATUS_TOKEN"},
			},
			&cli.StringFlag{
				Name:     "relay-url",
				EnvVars:  []string{"RELAY_URL"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "relay-token",
				EnvVars: []string{"RELAY_TOKEN"},
				Value:   "",
			},
			&cli.BoolFlag{
				Name:    "relay-insecure",
				Usage:   "skip TLS certificate verification for the relay",
				EnvVars: []string{"RELAY_INSECURE"},
			},
			&cli.DurationFlag{
				Name:    "relay-ping-interval",
				EnvVars: []string{"RELAY_PING_INTERVAL"},
				Value:   30 * time.Second,
			},
			&cli.StringFlag{
				Name:    "mqtt-broker",
				EnvVars: []string{"MQTT_BROKER"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-topic",
				EnvVars: []string{"MQTT_TOPIC"},
				Value:   "homebridge/events",
			},
			&cli.StringFlag{
				Name:    "mqtt-client-id",
				EnvVars: []string{"MQTT_CLIENT_ID"},
			},
			&cli.DurationFlag{
				Name:    "poll-interval",
				EnvVars: []string{"POLL_INTERVAL"},
				Value:   2 * time.Second,
			},
			&cli.StringFlag{
				Name:    "full-report-schedule",
				EnvVars: []string{"FULL_REPORT_SCHEDULE"},
				Value:   "@every 1h",
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
