package service

import (
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"hap-gsh-bridge/internal/domain/model"
)

// filterServices drops services the bridge must not expose and applies the
// configured name replacements. It only reads configuration, so it may run
// off the loop.
func (s *BridgeService) filterServices(all []*model.Service) []*model.Service {
	out := make([]*model.Service, 0, len(all))
	for _, svc := range all {
		dt, ok := model.ParseDeviceType(svc.Type)
		if !ok {
			s.logger.Debug("unsupported service type", zap.String("type", svc.Type), zap.String("name", svc.ServiceName))
			continue
		}

		if lo.ContainsBy(s.cfg.InstanceBlacklist, func(u string) bool {
			return strings.EqualFold(u, svc.Instance.Username)
		}) {
			s.logger.Debug("instance on blacklist, ignoring", zap.String("instance", svc.Instance.Username))
			continue
		}

		if m, found := lo.Find(s.cfg.DeviceNameMap, func(m model.NameMapping) bool {
			return m.Replace == svc.ServiceName
		}); found {
			svc = svc.Clone()
			svc.ServiceName = m.With
		}

		serial := svc.Info(model.InfoSerialNumber)
		if lo.Contains(s.cfg.AccessoryFilter, svc.ServiceName) {
			s.logger.Debug("skipping service, matches accessoryFilter", zap.String("name", svc.ServiceName), zap.String("serial", serial))
			continue
		}
		if serial != "" && lo.Contains(s.cfg.AccessorySerialFilter, serial) {
			s.logger.Debug("skipping service, matches accessorySerialFilter", zap.String("name", svc.ServiceName), zap.String("serial", serial))
			continue
		}

		if s.factory.RequiresTwoFactor(dt) && !s.cfg.TwoFactorAuthPin.IsSet() && !s.cfg.DisablePinCodeRequirement {
			s.logger.Warn("not registering secure accessory: a two factor pin is required for this type",
				zap.String("name", svc.ServiceName),
				zap.String("type", svc.Type))
			continue
		}

		out = append(out, svc)
	}
	return out
}
