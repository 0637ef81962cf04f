package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/domain/smarthome"
)

const (
	MessageRequestSync = "request-sync"
	MessageReportState = "report-state"
)

type RequestSyncMessage struct {
	Type string `json:"type"`
}

type ReportStateMessage struct {
	RequestID string                     `json:"requestId"`
	Type      string                     `json:"type"`
	Body      map[string]smarthome.State `json:"body"`
}

// HandleEvents applies characteristic changes to the held services and
// queues the affected devices for a debounced state report.
func (s *BridgeService) HandleEvents(ctx context.Context, events []model.CharacteristicEvent) error {
	return s.do(ctx, func() {
		queued := false
		for _, ev := range events {
			idx := s.indexForEvent(ev)
			if idx < 0 {
				continue
			}
			updated, _ := s.services[idx].WithValue(ev.Iid, ev.Value)
			s.services[idx] = updated

			if !lo.Contains(s.pending, updated.UniqueID) {
				s.pending = append(s.pending, updated.UniqueID)
			}
			queued = true
			s.logger.Debug("characteristic changed",
				zap.String("id", updated.UniqueID),
				zap.Int("aid", ev.Aid),
				zap.Int("iid", ev.Iid),
				zap.Any("value", ev.Value))
		}
		if queued {
			s.reportTimer.arm(s.timings.ReportDebounce)
		}
	})
}

// indexForEvent must run on the loop.
func (s *BridgeService) indexForEvent(ev model.CharacteristicEvent) int {
	for i, svc := range s.services {
		if svc.Instance.IPAddress != ev.Host || svc.Instance.Port != ev.Port || svc.Aid != ev.Aid {
			continue
		}
		for _, c := range svc.Characteristics {
			if c.Iid == ev.Iid {
				return i
			}
		}
	}
	return -1
}

// drainPendingReports runs on the loop when the debounce window closes. The
// queue is swapped out before querying, so later events start a new batch.
func (s *BridgeService) drainPendingReports() {
	batch := s.pending
	s.pending = nil

	states := make(map[string]smarthome.State, len(batch))
	for _, id := range batch {
		svc := s.find(id)
		if svc == nil {
			continue
		}
		if tr, ok := s.factory.ForService(svc); ok {
			states[id] = tr.Query(svc)
		}
	}
	if len(states) == 0 {
		return
	}

	ctx := s.ctx
	go func() {
		if err := s.sendStateReport(ctx, states); err != nil {
			s.logger.Error("state report failed", zap.Error(err))
		}
	}()
}

// SendFullStateReport reports every held service. It does nothing when no
// services are held.
func (s *BridgeService) SendFullStateReport(ctx context.Context) error {
	services, err := s.Services(ctx)
	if err != nil {
		return err
	}
	if len(services) == 0 {
		return nil
	}
	states := make(map[string]smarthome.State, len(services))
	for _, svc := range services {
		if tr, ok := s.factory.ForService(svc); ok {
			states[svc.UniqueID] = tr.Query(svc)
		}
	}
	return s.sendStateReport(ctx, states)
}

func (s *BridgeService) sendStateReport(ctx context.Context, states map[string]smarthome.State) error {
	msg := ReportStateMessage{
		RequestID: s.newRequestID(),
		Type:      MessageReportState,
		Body:      states,
	}
	s.logger.Debug("sending state report", zap.String("requestId", msg.RequestID), zap.Int("devices", len(states)))
	if err := s.transport.SendJSON(ctx, msg); err != nil {
		s.metrics.ObserveSendFailure(MessageReportState)
		return fmt.Errorf("report state: %w", err)
	}
	s.metrics.ObserveStateReport(len(states))
	return nil
}

// RequestSync asks the cloud to pull the device list again.
func (s *BridgeService) RequestSync(ctx context.Context) error {
	s.logger.Info("sending sync request")
	if err := s.transport.SendJSON(ctx, RequestSyncMessage{Type: MessageRequestSync}); err != nil {
		s.metrics.ObserveSendFailure(MessageRequestSync)
		return fmt.Errorf("request sync: %w", err)
	}
	s.metrics.ObserveRequestSync()
	return nil
}
