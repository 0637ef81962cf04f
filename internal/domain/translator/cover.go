package translator

import (
	"context"

	"hap-gsh-bridge/internal/domain/hap"
	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/domain/smarthome"
)

// OpenCloseStrategy serves positional coverings: doors, windows and blinds.
// The open percent maps one to one onto CurrentPosition and TargetPosition.
type OpenCloseStrategy struct {
	DeviceType    string
	OpenDirection []string
}

func (s *OpenCloseStrategy) Sync(svc *model.Service) smarthome.SyncDevice {
	d := baseSyncDevice(svc, s.DeviceType, smarthome.TraitOpenClose)
	d.Attributes = map[string]interface{}{
		"openDirection": s.OpenDirection,
	}
	return d
}

func (s *OpenCloseStrategy) Query(svc *model.Service) smarthome.State {
	return smarthome.State{
		"on":          true,
		"online":      true,
		"openPercent": value(svc, hap.CurrentPosition),
	}
}

func (s *OpenCloseStrategy) Execute(ctx context.Context, svc *model.Service, cmd smarthome.Command) (smarthome.Result, error) {
	exec, ok := cmd.First()
	if !ok {
		return missingCommand(svc)
	}
	switch exec.Command {
	case smarthome.CommandOpenClose:
		p, err := smarthome.DecodeParams[smarthome.OpenCloseParams](exec)
		if err != nil {
			return invalidParams(svc, err)
		}
		if m := lacking(svc, hap.TargetPosition); m != "" {
			return notSupported(svc, m)
		}
		if err := write(ctx, svc, hap.TargetPosition, *p.OpenPercent); err != nil {
			return nil, err
		}
		return success(svc)
	}
	return unknownCommand(svc, exec.Command)
}

// garageOpenPercent synthesises an open percent from CurrentDoorState:
// open, closed, opening, closing, stopped.
var garageOpenPercent = [...]int{100, 0, 50, 50, 50}

// GarageDoorStrategy maps the discrete door state onto an open percent. The
// mapping is lossy: reads go through garageOpenPercent while writes only
// choose between open and closed.
type GarageDoorStrategy struct{}

func (s *GarageDoorStrategy) Sync(svc *model.Service) smarthome.SyncDevice {
	d := baseSyncDevice(svc, smarthome.TypeGarage, smarthome.TraitOpenClose)
	d.Attributes = map[string]interface{}{
		"openDirection": []string{"UP", "DOWN"},
	}
	return d
}

func (s *GarageDoorStrategy) Query(svc *model.Service) smarthome.State {
	state := smarthome.State{
		"on":     true,
		"online": true,
	}
	if !svc.Has(hap.CurrentDoorState) {
		return state
	}
	idx := int(number(svc, hap.CurrentDoorState))
	if idx >= 0 && idx < len(garageOpenPercent) {
		state["openPercent"] = garageOpenPercent[idx]
	}
	return state
}

func (s *GarageDoorStrategy) Execute(ctx context.Context, svc *model.Service, cmd smarthome.Command) (smarthome.Result, error) {
	exec, ok := cmd.First()
	if !ok {
		return missingCommand(svc)
	}
	switch exec.Command {
	case smarthome.CommandOpenClose:
		p, err := smarthome.DecodeParams[smarthome.OpenCloseParams](exec)
		if err != nil {
			return invalidParams(svc, err)
		}
		if m := lacking(svc, hap.TargetDoorState); m != "" {
			return notSupported(svc, m)
		}
		// TargetDoorState: 0 open, 1 closed.
		target := 1
		if *p.OpenPercent != 0 {
			target = 0
		}
		if err := write(ctx, svc, hap.TargetDoorState, target); err != nil {
			return nil, err
		}
		return success(svc)
	}
	return unknownCommand(svc, exec.Command)
}

func (s *GarageDoorStrategy) RequiresTwoFactor(cmd smarthome.Command) bool {
	exec, ok := cmd.First()
	if !ok || exec.Command != smarthome.CommandOpenClose {
		return false
	}
	p, err := smarthome.DecodeParams[smarthome.OpenCloseParams](exec)
	if err != nil {
		return false
	}
	return *p.OpenPercent > 0
}
