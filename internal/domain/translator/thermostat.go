package translator

import (
	"context"
	"fmt"
	"strings"

	"hap-gsh-bridge/internal/domain/hap"
	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/domain/smarthome"
)

// Indexed by TargetHeatingCoolingState.
var thermostatModes = [...]string{"off", "heat", "cool", "auto"}

var thermostatModeValues = map[string]int{
	"off":      0,
	"heat":     1,
	"cool":     2,
	"auto":     3,
	"heatcool": 3,
}

// hasThresholds reports whether the service exposes both threshold
// characteristics, which switches it from "auto" to "heatcool".
func hasThresholds(svc *model.Service) bool {
	return svc.Has(hap.CoolingThresholdTemperature) && svc.Has(hap.HeatingThresholdTemperature)
}

func availableModes(svc *model.Service) string {
	modes := []string{"off", "heat", "cool"}
	if hasThresholds(svc) {
		modes = append(modes, "heatcool")
	} else {
		modes = append(modes, "auto")
	}
	return strings.Join(modes, ",")
}

func temperatureUnit(svc *model.Service, forceFahrenheit bool) string {
	if forceFahrenheit || truthy(svc, hap.TemperatureDisplayUnits) {
		return "F"
	}
	return "C"
}

type ThermostatStrategy struct {
	ForceFahrenheit bool
}

func (s *ThermostatStrategy) Sync(svc *model.Service) smarthome.SyncDevice {
	d := baseSyncDevice(svc, smarthome.TypeThermostat, smarthome.TraitTemperatureSetting)
	d.Attributes = map[string]interface{}{
		"availableThermostatModes":  availableModes(svc),
		"thermostatTemperatureUnit": temperatureUnit(svc, s.ForceFahrenheit),
	}
	return d
}

func (s *ThermostatStrategy) Query(svc *model.Service) smarthome.State {
	mode := ""
	if idx := int(number(svc, hap.TargetHeatingCoolingState)); idx >= 0 && idx < len(thermostatModes) {
		mode = thermostatModes[idx]
	}

	state := smarthome.State{
		"online":                        true,
		"thermostatMode":                mode,
		"thermostatTemperatureSetpoint": value(svc, hap.TargetTemperature),
		"thermostatTemperatureAmbient":  value(svc, hap.CurrentTemperature),
	}
	if svc.Has(hap.CurrentRelativeHumidity) {
		state["thermostatHumidityAmbient"] = value(svc, hap.CurrentRelativeHumidity)
	}
	if hasThresholds(svc) {
		if mode == "auto" {
			state["thermostatMode"] = "heatcool"
		}
		state["thermostatTemperatureSetpointLow"] = value(svc, hap.HeatingThresholdTemperature)
		state["thermostatTemperatureSetpointHigh"] = value(svc, hap.CoolingThresholdTemperature)
	}
	return state
}

func (s *ThermostatStrategy) Execute(ctx context.Context, svc *model.Service, cmd smarthome.Command) (smarthome.Result, error) {
	exec, ok := cmd.First()
	if !ok {
		return missingCommand(svc)
	}
	switch exec.Command {
	case smarthome.CommandThermostatSetMode:
		p, err := smarthome.DecodeParams[smarthome.ThermostatSetModeParams](exec)
		if err != nil {
			return invalidParams(svc, err)
		}
		mode, ok := thermostatModeValues[p.ThermostatMode]
		if !ok {
			return failure(svc, fmt.Sprintf("unsupported thermostat mode %q", p.ThermostatMode))
		}
		if m := lacking(svc, hap.TargetHeatingCoolingState); m != "" {
			return notSupported(svc, m)
		}
		if err := write(ctx, svc, hap.TargetHeatingCoolingState, mode); err != nil {
			return nil, err
		}
		return success(svc)

	case smarthome.CommandThermostatTemperatureSetpoint:
		p, err := smarthome.DecodeParams[smarthome.ThermostatTemperatureSetpointParams](exec)
		if err != nil {
			return invalidParams(svc, err)
		}
		if m := lacking(svc, hap.TargetTemperature); m != "" {
			return notSupported(svc, m)
		}
		if err := write(ctx, svc, hap.TargetTemperature, *p.ThermostatTemperatureSetpoint); err != nil {
			return nil, err
		}
		return success(svc)

	case smarthome.CommandThermostatTemperatureSetRange:
		return setRange(ctx, svc, exec)
	}
	return unknownCommand(svc, exec.Command)
}

// setRange writes the high setpoint to the cooling threshold and the low
// setpoint to the heating threshold.
func setRange(ctx context.Context, svc *model.Service, exec smarthome.Execution) (smarthome.Result, error) {
	p, err := smarthome.DecodeParams[smarthome.ThermostatTemperatureSetRangeParams](exec)
	if err != nil {
		return invalidParams(svc, err)
	}
	if m := lacking(svc, hap.CoolingThresholdTemperature, hap.HeatingThresholdTemperature); m != "" {
		return notSupported(svc, m)
	}
	if err := write(ctx, svc, hap.CoolingThresholdTemperature, *p.ThermostatTemperatureSetpointHigh); err != nil {
		return nil, err
	}
	if err := write(ctx, svc, hap.HeatingThresholdTemperature, *p.ThermostatTemperatureSetpointLow); err != nil {
		return nil, err
	}
	return success(svc)
}
