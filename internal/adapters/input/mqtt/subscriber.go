package mqtt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/ports"
)

const messageInstance = "instance"

var errEmptyMessage = errors.New("empty message")

// Subscriber feeds hub events published on an MQTT topic into the bridge.
// A message is either one characteristic event, an array of them, or an
// instance announcement of the form {"type":"instance", ...}.
type Subscriber struct {
	broker   string
	topic    string
	clientID string
	bridge   ports.BridgePort
	logger   *zap.Logger
}

type Option func(*Subscriber)

func WithClientID(id string) Option {
	return func(s *Subscriber) { s.clientID = id }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Subscriber) { s.logger = l }
}

func NewSubscriber(broker, topic string, bridge ports.BridgePort, opts ...Option) *Subscriber {
	s := &Subscriber{
		broker:   broker,
		topic:    topic,
		clientID: "hap-gsh-bridge-" + time.Now().Format("150405.000"),
		bridge:   bridge,
		logger:   zap.L().Named("mqtt"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run connects, subscribes and dispatches messages until ctx ends.
func (s *Subscriber) Run(ctx context.Context) error {
	opts, err := s.clientOptions(ctx)
	if err != nil {
		return err
	}
	cli := paho.NewClient(opts)
	t := cli.Connect()
	select {
	case <-t.Done():
		if t.Error() != nil {
			return fmt.Errorf("mqtt connect: %w", t.Error())
		}
	case <-ctx.Done():
	}

	<-ctx.Done()
	cli.Disconnect(250)
	s.logger.Info("mqtt disconnected")
	return nil
}

func (s *Subscriber) clientOptions(ctx context.Context) (*paho.ClientOptions, error) {
	u, err := url.Parse(s.broker)
	if err != nil {
		return nil, fmt.Errorf("mqtt broker url: %w", err)
	}
	server := u.Host
	switch u.Scheme {
	case "mqtt", "tcp", "":
		server = "tcp://" + server
	case "ssl", "tls", "mqtts":
		server = "ssl://" + server
	case "ws", "wss":
		server = u.Scheme + "://" + server + u.Path
	default:
		return nil, fmt.Errorf("mqtt broker url: unsupported scheme %q", u.Scheme)
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(server)
	opts.SetClientID(s.clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	if u.User != nil {
		pw, _ := u.User.Password()
		opts.SetUsername(u.User.Username())
		opts.SetPassword(pw)
	}
	// Subscriptions are made on every connect so they survive reconnects.
	opts.SetOnConnectHandler(func(c paho.Client) {
		s.logger.Info("mqtt connected", zap.String("broker", server))
		t := c.Subscribe(s.topic, 0, func(_ paho.Client, m paho.Message) {
			s.handle(ctx, m.Payload())
		})
		if t.Wait() && t.Error() != nil {
			s.logger.Error("mqtt subscribe failed", zap.String("topic", s.topic), zap.Error(t.Error()))
			return
		}
		s.logger.Info("mqtt subscribed", zap.String("topic", s.topic))
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		s.logger.Warn("mqtt connection lost", zap.Error(err))
	})
	return opts, nil
}

func (s *Subscriber) handle(ctx context.Context, payload []byte) {
	events, inst, err := parseMessage(payload)
	if err != nil {
		s.logger.Warn("invalid hub message", zap.Error(err), zap.ByteString("payload", payload))
		return
	}
	if inst != nil {
		if err := s.bridge.InstanceDiscovered(ctx, *inst); err != nil {
			s.logger.Warn("instance announcement dropped", zap.Error(err))
		}
		return
	}
	if err := s.bridge.HandleEvents(ctx, events); err != nil {
		s.logger.Warn("characteristic events dropped", zap.Int("events", len(events)), zap.Error(err))
	}
}

type instanceMessage struct {
	Type string `json:"type"`
	model.Instance
}

func parseMessage(payload []byte) ([]model.CharacteristicEvent, *model.Instance, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil, nil, errEmptyMessage
	}

	if payload[0] == '[' {
		var events []model.CharacteristicEvent
		if err := json.Unmarshal(payload, &events); err != nil {
			return nil, nil, err
		}
		for _, ev := range events {
			if err := validateEvent(ev); err != nil {
				return nil, nil, err
			}
		}
		return events, nil, nil
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		return nil, nil, err
	}
	if head.Type == messageInstance {
		var msg instanceMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			return nil, nil, err
		}
		if msg.IPAddress == "" || msg.Port == 0 {
			return nil, nil, errors.New("instance announcement needs ipAddress and port")
		}
		return nil, &msg.Instance, nil
	}

	var ev model.CharacteristicEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, nil, err
	}
	if err := validateEvent(ev); err != nil {
		return nil, nil, err
	}
	return []model.CharacteristicEvent{ev}, nil, nil
}

func validateEvent(ev model.CharacteristicEvent) error {
	if ev.Host == "" || ev.Port == 0 || ev.Aid == 0 || ev.Iid == 0 {
		return fmt.Errorf("event needs host, port, aid and iid: %+v", ev)
	}
	return nil
}
