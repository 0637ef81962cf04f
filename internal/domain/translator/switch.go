package translator

import (
	"context"

	"hap-gsh-bridge/internal/domain/hap"
	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/domain/smarthome"
)

// SwitchStrategy serves every service driven by a boolean On characteristic:
// switches, outlets and single-speed fans.
type SwitchStrategy struct {
	DeviceType string
}

func (s *SwitchStrategy) Sync(svc *model.Service) smarthome.SyncDevice {
	return baseSyncDevice(svc, s.DeviceType, smarthome.TraitOnOff)
}

func (s *SwitchStrategy) Query(svc *model.Service) smarthome.State {
	return smarthome.State{
		"on":     truthy(svc, hap.On),
		"online": true,
	}
}

func (s *SwitchStrategy) Execute(ctx context.Context, svc *model.Service, cmd smarthome.Command) (smarthome.Result, error) {
	exec, ok := cmd.First()
	if !ok {
		return missingCommand(svc)
	}
	switch exec.Command {
	case smarthome.CommandOnOff:
		p, err := smarthome.DecodeParams[smarthome.OnOffParams](exec)
		if err != nil {
			return invalidParams(svc, err)
		}
		if m := lacking(svc, hap.On); m != "" {
			return notSupported(svc, m)
		}
		if err := write(ctx, svc, hap.On, *p.On); err != nil {
			return nil, err
		}
		return success(svc)
	}
	return unknownCommand(svc, exec.Command)
}

// ActiveStrategy serves services switched through the Active characteristic
// (1 or 0), such as Fanv2 and televisions.
type ActiveStrategy struct {
	DeviceType string
}

func (s *ActiveStrategy) Sync(svc *model.Service) smarthome.SyncDevice {
	return baseSyncDevice(svc, s.DeviceType, smarthome.TraitOnOff)
}

func (s *ActiveStrategy) Query(svc *model.Service) smarthome.State {
	return smarthome.State{
		"on":     truthy(svc, hap.Active),
		"online": true,
	}
}

func (s *ActiveStrategy) Execute(ctx context.Context, svc *model.Service, cmd smarthome.Command) (smarthome.Result, error) {
	exec, ok := cmd.First()
	if !ok {
		return missingCommand(svc)
	}
	switch exec.Command {
	case smarthome.CommandOnOff:
		p, err := smarthome.DecodeParams[smarthome.OnOffParams](exec)
		if err != nil {
			return invalidParams(svc, err)
		}
		if m := lacking(svc, hap.Active); m != "" {
			return notSupported(svc, m)
		}
		if err := write(ctx, svc, hap.Active, boolToInt(*p.On)); err != nil {
			return nil, err
		}
		return success(svc)
	}
	return unknownCommand(svc, exec.Command)
}
