package hapclient

import (
	"context"
	"reflect"
	"strconv"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"hap-gsh-bridge/internal/domain/model"
)

type watched struct {
	instance model.Instance
	ids      []string
	last     map[string]interface{}
}

// Monitor polls the tracked characteristics of services and reports every
// value that differs from the previous read. It blocks until ctx ends.
func (c *Client) Monitor(ctx context.Context, services []*model.Service, onEvents func([]model.CharacteristicEvent)) error {
	groups := watchGroups(services)
	if len(groups) == 0 {
		<-ctx.Done()
		return nil
	}
	c.logger.Info("monitoring characteristics", zap.Int("instances", len(groups)), zap.Duration("interval", c.pollInterval))

	for _, g := range groups {
		c.poll(ctx, g, nil)
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, g := range groups {
				c.poll(ctx, g, onEvents)
			}
		}
	}
}

// poll reads one group. With a nil onEvents it only records the baseline.
func (c *Client) poll(ctx context.Context, g *watched, onEvents func([]model.CharacteristicEvent)) {
	values, err := c.readValues(ctx, g.instance, g.ids)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Debug("poll failed", zap.String("host", g.instance.IPAddress), zap.Int("port", g.instance.Port), zap.Error(err))
		}
		return
	}

	var events []model.CharacteristicEvent
	for _, v := range values {
		id := charID(v.Aid, v.Iid)
		prev, seen := g.last[id]
		g.last[id] = v.Value
		if !seen || reflect.DeepEqual(prev, v.Value) {
			continue
		}
		events = append(events, model.CharacteristicEvent{
			Host:  g.instance.IPAddress,
			Port:  g.instance.Port,
			Aid:   v.Aid,
			Iid:   v.Iid,
			Value: v.Value,
		})
	}
	if len(events) > 0 && onEvents != nil {
		onEvents(events)
	}
}

func watchGroups(services []*model.Service) []*watched {
	byInstance := map[string]*watched{}
	var order []string
	for _, svc := range services {
		key := svc.Instance.IPAddress + ":" + strconv.Itoa(svc.Instance.Port)
		g, ok := byInstance[key]
		if !ok {
			g = &watched{instance: svc.Instance, last: map[string]interface{}{}}
			byInstance[key] = g
			order = append(order, key)
		}
		for _, ch := range svc.Characteristics {
			if !ch.Ev || !ch.CanRead || !lo.Contains(trackedTypes, ch.Type) {
				continue
			}
			id := charID(ch.Aid, ch.Iid)
			if !lo.Contains(g.ids, id) {
				g.ids = append(g.ids, id)
			}
		}
	}

	out := make([]*watched, 0, len(order))
	for _, key := range order {
		if g := byInstance[key]; len(g.ids) > 0 {
			out = append(out, g)
		}
	}
	return out
}
