package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/domain/smarthome"
	"hap-gsh-bridge/internal/domain/translator"
)

// Sync describes every held service whose type has a translator.
func (s *BridgeService) Sync(ctx context.Context) ([]smarthome.SyncDevice, error) {
	services, err := s.Services(ctx)
	if err != nil {
		return nil, err
	}
	return s.syncDevices(services), nil
}

func (s *BridgeService) syncDevices(services []*model.Service) []smarthome.SyncDevice {
	devices := make([]smarthome.SyncDevice, 0, len(services))
	for _, svc := range services {
		tr, ok := s.factory.ForService(svc)
		if !ok {
			continue
		}
		devices = append(devices, tr.Sync(svc))
	}
	return devices
}

// Query refreshes and reports the state of each requested device. Unknown
// ids get an empty state rather than an error.
func (s *BridgeService) Query(ctx context.Context, devices []smarthome.DeviceRef) (map[string]smarthome.State, error) {
	out := make(map[string]smarthome.State, len(devices))
	for _, ref := range devices {
		svc, err := s.lookup(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		if svc == nil {
			out[ref.ID] = smarthome.State{}
			continue
		}
		tr, ok := s.factory.ForService(svc)
		if !ok {
			out[ref.ID] = smarthome.State{}
			continue
		}

		refreshed, err := s.hub.RefreshCharacteristics(ctx, svc)
		if err != nil {
			s.logger.Warn("characteristic refresh failed, answering from cache",
				zap.String("id", ref.ID),
				zap.String("name", svc.ServiceName),
				zap.Error(err))
		} else if refreshed != nil {
			svc = refreshed
			if err := s.do(ctx, func() { s.replace(refreshed) }); err != nil {
				return nil, err
			}
		}
		out[ref.ID] = tr.Query(svc)
	}
	return out, nil
}

// Execute applies each command to each of its devices, in order. A failure
// on one device is reported for that device only.
func (s *BridgeService) Execute(ctx context.Context, commands []smarthome.Command) ([]smarthome.Result, error) {
	var results []smarthome.Result
	for _, cmd := range commands {
		for _, ref := range cmd.Devices {
			svc, err := s.lookup(ctx, ref.ID)
			if err != nil {
				return results, err
			}
			res := s.executeOne(ctx, ref.ID, svc, cmd)
			results = append(results, res)
		}
	}
	return results, nil
}

func (s *BridgeService) executeOne(ctx context.Context, id string, svc *model.Service, cmd smarthome.Command) smarthome.Result {
	if svc == nil {
		s.logger.Debug("execute on unknown device", zap.String("id", id))
		return smarthome.Offline{IDs: []string{id}}
	}
	tr, ok := s.factory.ForService(svc)
	if !ok {
		return smarthome.Offline{IDs: []string{id}}
	}

	var res smarthome.Result
	if s.challengeRequired(tr, cmd) {
		s.logger.Info("requesting two factor authentication pin", zap.String("id", id), zap.String("name", svc.ServiceName))
		res = smarthome.ChallengeNeeded{IDs: []string{id}}
	} else {
		res = s.runTranslator(ctx, tr, svc, cmd)
	}
	s.metrics.ObserveExecution(svc.Type, smarthome.Encode(res).Status)
	return res
}

// challengeRequired is the two-factor gate: a pin is configured, the
// translator guards this command, and the command lacks the matching pin.
func (s *BridgeService) challengeRequired(tr translator.Translator, cmd smarthome.Command) bool {
	if !s.cfg.TwoFactorAuthPin.IsSet() {
		return false
	}
	guard, ok := tr.(translator.TwoFactorGuard)
	if !ok || !guard.RequiresTwoFactor(cmd) {
		return false
	}
	return cmd.ChallengePin() != s.cfg.TwoFactorAuthPin.String()
}

// runTranslator turns write errors and panics into an Error result.
func (s *BridgeService) runTranslator(ctx context.Context, tr translator.Translator, svc *model.Service, cmd smarthome.Command) (res smarthome.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("translator panicked",
				zap.String("id", svc.UniqueID),
				zap.String("type", svc.Type),
				zap.Any("panic", r))
			res = smarthome.Error{IDs: []string{svc.UniqueID}, DebugString: fmt.Sprint(r)}
		}
	}()

	res, err := tr.Execute(ctx, svc, cmd)
	if err != nil {
		s.logger.Error("execute failed",
			zap.String("id", svc.UniqueID),
			zap.String("name", svc.ServiceName),
			zap.Error(err))
		return smarthome.Error{IDs: []string{svc.UniqueID}, DebugString: err.Error()}
	}
	return res
}
