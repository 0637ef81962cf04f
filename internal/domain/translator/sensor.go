package translator

import (
	"context"

	"hap-gsh-bridge/internal/domain/hap"
	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/domain/smarthome"
)

// readOnly rejects every command for sensors, which expose no writable trait.
func readOnly(svc *model.Service, cmd smarthome.Command) (smarthome.Result, error) {
	exec, ok := cmd.First()
	if !ok {
		return missingCommand(svc)
	}
	return unknownCommand(svc, exec.Command)
}

type TemperatureSensorStrategy struct {
	ForceFahrenheit bool
}

func (s *TemperatureSensorStrategy) Sync(svc *model.Service) smarthome.SyncDevice {
	unit := "C"
	if s.ForceFahrenheit {
		unit = "F"
	}
	d := baseSyncDevice(svc, smarthome.TypeSensor, smarthome.TraitTemperatureControl)
	d.Attributes = map[string]interface{}{
		"queryOnlyTemperatureControl": true,
		"temperatureUnitForUX":        unit,
	}
	return d
}

// Query reports the ambient temperature as the setpoint too, since the
// trait requires one.
func (s *TemperatureSensorStrategy) Query(svc *model.Service) smarthome.State {
	current := value(svc, hap.CurrentTemperature)
	return smarthome.State{
		"online":                     true,
		"temperatureSetpointCelsius": current,
		"temperatureAmbientCelsius":  current,
	}
}

func (s *TemperatureSensorStrategy) Execute(_ context.Context, svc *model.Service, cmd smarthome.Command) (smarthome.Result, error) {
	return readOnly(svc, cmd)
}

type HumiditySensorStrategy struct{}

func (s *HumiditySensorStrategy) Sync(svc *model.Service) smarthome.SyncDevice {
	d := baseSyncDevice(svc, smarthome.TypeSensor, smarthome.TraitHumiditySetting)
	d.Attributes = map[string]interface{}{
		"queryOnlyHumiditySetting": true,
	}
	return d
}

func (s *HumiditySensorStrategy) Query(svc *model.Service) smarthome.State {
	return smarthome.State{
		"online":                 true,
		"humidityAmbientPercent": value(svc, hap.CurrentRelativeHumidity),
	}
}

func (s *HumiditySensorStrategy) Execute(_ context.Context, svc *model.Service, cmd smarthome.Command) (smarthome.Result, error) {
	return readOnly(svc, cmd)
}
