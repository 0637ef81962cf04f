package hapclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"hap-gsh-bridge/internal/domain/hap"
	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/ports"
)

// statusInsufficientAuthorization is the HAP status for a missing or wrong pin.
const statusInsufficientAuthorization = 470

const defaultPollInterval = 2 * time.Second

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// WithPollInterval sets how often Monitor reads tracked characteristics.
func WithPollInterval(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.pollInterval = d
		}
	}
}

// Client talks to hub instances running in insecure mode. It starts with the
// configured instances; announced ones are added with AddInstance.
type Client struct {
	pin          string
	httpClient   *http.Client
	pollInterval time.Duration
	logger       *zap.Logger

	mu        sync.RWMutex
	instances []model.Instance
}

var _ ports.HubClient = (*Client)(nil)

func NewClient(cfg *model.PluginConfig, opts ...Option) *Client {
	c := &Client{
		pin:          cfg.Pin.String(),
		instances:    lo.Map(cfg.Instances, func(hi model.HubInstance, _ int) model.Instance { return hi.Instance() }),
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		pollInterval: defaultPollInterval,
		logger:       zap.L().Named("hap"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddInstance makes an announced instance part of every later load. It
// reports false when the instance is already known.
func (c *Client) AddInstance(inst model.Instance) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if lo.ContainsBy(c.instances, func(i model.Instance) bool { return sameInstance(i, inst) }) {
		return false
	}
	c.instances = append(c.instances, inst)
	c.logger.Info("hub instance added", zap.String("host", inst.IPAddress), zap.Int("port", inst.Port))
	return true
}

// Discover checks every known instance and reports the ones that answer.
func (c *Client) Discover(ctx context.Context, onInstance func(model.Instance)) error {
	instances := c.knownInstances()
	if len(instances) == 0 {
		return ports.ErrNotConfigured
	}
	for _, inst := range instances {
		if err := c.reach(ctx, inst); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("instance not reachable", zap.String("host", inst.IPAddress), zap.Int("port", inst.Port), zap.Error(err))
			continue
		}
		c.logger.Debug("instance discovered", zap.String("host", inst.IPAddress), zap.Int("port", inst.Port), zap.String("username", inst.Username))
		onInstance(inst)
	}
	return nil
}

// reach only checks that something answers HTTP on the instance address.
// An authorization failure still counts as reachable.
func (c *Client) reach(ctx context.Context, inst model.Instance) error {
	resp, err := c.do(ctx, inst, http.MethodGet, "/accessories", nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// GetAllServices loads the services of every known instance. Instances that
// fail are skipped; the error is returned only when none could be loaded.
func (c *Client) GetAllServices(ctx context.Context) ([]*model.Service, error) {
	instances := c.knownInstances()
	if len(instances) == 0 {
		return nil, ports.ErrNotConfigured
	}

	var (
		all     []*model.Service
		lastErr error
		loaded  int
	)
	for _, inst := range instances {
		services, err := c.accessories(ctx, inst)
		if err != nil {
			if errors.Is(err, ports.ErrInsecureModeRequired) {
				return nil, err
			}
			c.logger.Warn("failed to load accessories", zap.String("host", inst.IPAddress), zap.Int("port", inst.Port), zap.Error(err))
			lastErr = err
			continue
		}
		loaded++
		all = append(all, services...)
	}
	if loaded == 0 && lastErr != nil {
		return nil, lastErr
	}
	return all, nil
}

func (c *Client) knownInstances() []model.Instance {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Instance(nil), c.instances...)
}

func (c *Client) accessories(ctx context.Context, inst model.Instance) ([]*model.Service, error) {
	resp, err := c.do(ctx, inst, http.MethodGet, "/accessories", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var body accessoriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode accessories: %w", err)
	}
	return parseAccessories(body, inst, &instanceIO{client: c, instance: inst}), nil
}

// RefreshCharacteristics reads the current value of every readable
// characteristic of svc and returns an updated copy.
func (c *Client) RefreshCharacteristics(ctx context.Context, svc *model.Service) (*model.Service, error) {
	ids := lo.FilterMap(svc.Characteristics, func(ch *model.Characteristic, _ int) (string, bool) {
		return charID(ch.Aid, ch.Iid), ch.CanRead
	})
	if len(ids) == 0 {
		return svc, nil
	}
	values, err := c.readValues(ctx, svc.Instance, ids)
	if err != nil {
		return nil, err
	}
	out := svc.Clone()
	for _, v := range values {
		for _, ch := range out.Characteristics {
			if ch.Aid == v.Aid && ch.Iid == v.Iid {
				ch.Value = v.Value
			}
		}
	}
	return out, nil
}

func (c *Client) readValues(ctx context.Context, inst model.Instance, ids []string) ([]characteristicValue, error) {
	resp, err := c.do(ctx, inst, http.MethodGet, "/characteristics?id="+strings.Join(ids, ","), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var body characteristicsBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode characteristics: %w", err)
	}
	return body.Characteristics, nil
}

func (c *Client) writeValue(ctx context.Context, inst model.Instance, aid, iid int, value interface{}) error {
	payload, err := json.Marshal(characteristicsBody{
		Characteristics: []characteristicValue{{Aid: aid, Iid: iid, Value: value}},
	})
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, inst, http.MethodPut, "/characteristics", payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusMultiStatus {
		var body characteristicsBody
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("decode write status: %w", err)
		}
		for _, st := range body.Characteristics {
			if st.Status != 0 {
				return fmt.Errorf("write %d.%d rejected with status %d", st.Aid, st.Iid, st.Status)
			}
		}
		return nil
	}
	return checkStatus(resp)
}

func (c *Client) do(ctx context.Context, inst model.Instance, method, path string, body []byte) (*http.Response, error) {
	url := fmt.Sprintf("http://%s:%d%s", inst.IPAddress, inst.Port, path)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if c.pin != "" {
		req.Header.Set("Authorization", c.pin)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/hap+json")
	}
	return c.httpClient.Do(req)
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == statusInsufficientAuthorization:
		return ports.ErrInsecureModeRequired
	case resp.StatusCode >= 400:
		return fmt.Errorf("hub API error: %d", resp.StatusCode)
	}
	return nil
}

// instanceIO binds characteristics of one instance to live reads and writes.
// Writes do not touch the held value; change events update state.
type instanceIO struct {
	client   *Client
	instance model.Instance
}

func (i *instanceIO) SetValue(ctx context.Context, ch *model.Characteristic, value interface{}) error {
	if !ch.CanWrite {
		return fmt.Errorf("%s is not writable", ch.Type)
	}
	i.client.logger.Debug("writing characteristic",
		zap.String("type", ch.Type),
		zap.Int("aid", ch.Aid),
		zap.Int("iid", ch.Iid),
		zap.Any("value", value))
	return i.client.writeValue(ctx, i.instance, ch.Aid, ch.Iid, value)
}

func (i *instanceIO) GetValue(ctx context.Context, ch *model.Characteristic) (interface{}, error) {
	values, err := i.client.readValues(ctx, i.instance, []string{charID(ch.Aid, ch.Iid)})
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if v.Aid == ch.Aid && v.Iid == ch.Iid {
			return v.Value, nil
		}
	}
	return nil, fmt.Errorf("no value returned for %s", ch.Type)
}

func charID(aid, iid int) string {
	return strconv.Itoa(aid) + "." + strconv.Itoa(iid)
}

func sameInstance(a, b model.Instance) bool {
	return a.IPAddress == b.IPAddress && a.Port == b.Port
}

// trackedTypes are the characteristics Monitor watches for changes.
var trackedTypes = []string{
	hap.Active,
	hap.On,
	hap.CurrentPosition,
	hap.TargetPosition,
	hap.CurrentDoorState,
	hap.TargetDoorState,
	hap.Brightness,
	hap.HeatingThresholdTemperature,
	hap.Hue,
	hap.Saturation,
	hap.LockCurrentState,
	hap.LockTargetState,
	hap.TargetHeatingCoolingState,
	hap.TargetTemperature,
	hap.CoolingThresholdTemperature,
	hap.CurrentTemperature,
	hap.CurrentRelativeHumidity,
	hap.SecuritySystemTargetState,
	hap.SecuritySystemCurrentState,
}
