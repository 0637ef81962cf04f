package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httpadapter "hap-gsh-bridge/internal/adapters/input/http"
	"hap-gsh-bridge/internal/adapters/input/mqtt"
	"hap-gsh-bridge/internal/adapters/output/hapclient"
	"hap-gsh-bridge/internal/adapters/output/persistence"
	"hap-gsh-bridge/internal/adapters/output/relay"
	"hap-gsh-bridge/internal/domain/service"
	"hap-gsh-bridge/internal/metrics"
)

type settings struct {
	ConfigPath         string
	LogLevel           string
	StatusAddr         string
	StatusToken        string
	RelayURL           string
	RelayToken         string
	RelayInsecure      bool
	RelayPingInterval  time.Duration
	MqttBroker         string
	MqttTopic          string
	MqttClientID       string
	PollInterval       time.Duration
	FullReportSchedule string
}

func bridgeCommand(ctx *cli.Context) error {
	return run(ctx.Context, settings{
		ConfigPath:         ctx.String("config"),
		LogLevel:           ctx.String("log-level"),
		StatusAddr:         ctx.String("status-addr"),
		StatusToken:        ctx.String("status-token"),
		RelayURL:           ctx.String("relay-url"),
		RelayToken:         ctx.String("relay-token"),
		RelayInsecure:      ctx.Bool("relay-insecure"),
		RelayPingInterval:  ctx.Duration("relay-ping-interval"),
		MqttBroker:         ctx.String("mqtt-broker"),
		MqttTopic:          ctx.String("mqtt-topic"),
		MqttClientID:       ctx.String("mqtt-client-id"),
		PollInterval:       ctx.Duration("poll-interval"),
		FullReportSchedule: ctx.String("full-report-schedule"),
	})
}

func run(ctx context.Context, s settings) error {
	var err error

	logCfg := zap.NewProductionConfig()
	logCfg.Level, err = zap.ParseAtomicLevel(s.LogLevel)
	if err != nil {
		return err
	}
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	logger := zap.Must(logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)))
	defer func() {
		_ = logger.Sync()
	}()
	zap.ReplaceGlobals(logger)

	cfg, err := persistence.NewConfigRepository(s.ConfigPath).Get(ctx)
	if err != nil {
		return err
	}
	if cfg.Debug {
		logCfg.Level.SetLevel(zap.DebugLevel)
	}
	logger.Info("configuration loaded",
		zap.String("path", s.ConfigPath),
		zap.Int("instances", len(cfg.Instances)),
		zap.Bool("twoFactor", cfg.TwoFactorAuthPin.IsSet()))

	m := metrics.New()
	hub := hapclient.NewClient(cfg, hapclient.WithPollInterval(s.PollInterval))

	var bridge *service.BridgeService
	relayOpts := []func(*relay.Client){
		relay.WithToken(s.RelayToken),
		relay.OnConnected(func() {
			// Resend state after every reconnect.
			if bridge.Ready() {
				if err := bridge.SendFullStateReport(ctx); err != nil {
					logger.Warn("state report after reconnect failed", zap.Error(err))
				}
			}
		}),
	}
	if s.RelayPingInterval > 0 {
		relayOpts = append(relayOpts, relay.WithPingInterval(s.RelayPingInterval))
	}
	if s.RelayInsecure {
		logger.Warn("relay TLS certificate verification is disabled")
		relayOpts = append(relayOpts, relay.InsecureSkipVerify())
	}
	relayClient := relay.New(s.RelayURL, relayOpts...)
	bridge = service.NewBridgeService(hub, relayClient, cfg, service.WithMetrics(m))
	relayClient.SetHandler(service.NewIntentHandler(bridge))

	var c *cron.Cron
	if s.FullReportSchedule != "" {
		c = cron.New()
		if _, err := c.AddFunc(s.FullReportSchedule, func() {
			if !bridge.Ready() {
				return
			}
			if err := bridge.SendFullStateReport(ctx); err != nil {
				zap.L().Error("scheduled state report failed", zap.Error(err))
				return
			}
			zap.L().Debug("scheduled state report sent")
		}); err != nil {
			return fmt.Errorf("full report schedule: %w", err)
		}
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		bridge.Start(ctx)
		<-ctx.Done()
		return bridge.Close()
	})

	eg.Go(func() error {
		return relayClient.Run(ctx)
	})

	if s.MqttBroker != "" {
		eg.Go(func() error {
			var opts []mqtt.Option
			if s.MqttClientID != "" {
				opts = append(opts, mqtt.WithClientID(s.MqttClientID))
			}
			return mqtt.NewSubscriber(s.MqttBroker, s.MqttTopic, bridge, opts...).Run(ctx)
		})
	}

	eg.Go(func() error {
		return httpadapter.NewServer(bridge, m, httpadapter.WithToken(s.StatusToken)).ListenAndServe(ctx, s.StatusAddr)
	})

	if c != nil {
		c.Start()
		eg.Go(func() error {
			<-ctx.Done()
			<-c.Stop().Done()
			return nil
		})
	}

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("bridge stopped")
	return nil
}
