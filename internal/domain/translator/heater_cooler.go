package translator

import (
	"context"
	"fmt"

	"hap-gsh-bridge/internal/domain/hap"
	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/domain/smarthome"
)

// Indexed by TargetHeaterCoolerState.
var heaterCoolerModes = [...]string{"auto", "heat", "cool"}

var heaterCoolerModeValues = map[string]int{
	"auto":     0,
	"heat":     1,
	"cool":     2,
	"heatcool": 0,
}

// HeaterCoolerStrategy serves heater-coolers. Units with a RotationSpeed
// characteristic are announced as air conditioners with a fan speed.
type HeaterCoolerStrategy struct {
	ForceFahrenheit bool
}

func (s *HeaterCoolerStrategy) Sync(svc *model.Service) smarthome.SyncDevice {
	deviceType := smarthome.TypeThermostat
	traits := []string{smarthome.TraitTemperatureSetting, smarthome.TraitOnOff}
	attributes := map[string]interface{}{
		"availableThermostatModes":  availableModes(svc),
		"thermostatTemperatureUnit": temperatureUnit(svc, s.ForceFahrenheit),
		"commandOnlyOnOff":          false,
		"queryOnlyOnOff":            false,
	}
	if svc.Has(hap.RotationSpeed) {
		deviceType = smarthome.TypeACUnit
		traits = append(traits, smarthome.TraitFanSpeed)
		attributes["supportsFanSpeedPercent"] = true
	}

	d := baseSyncDevice(svc, deviceType, traits...)
	d.Attributes = attributes
	return d
}

func (s *HeaterCoolerStrategy) Query(svc *model.Service) smarthome.State {
	active := truthy(svc, hap.Active)
	mode := "off"
	if active {
		mode = ""
		if idx := int(number(svc, hap.TargetHeaterCoolerState)); idx >= 0 && idx < len(heaterCoolerModes) {
			mode = heaterCoolerModes[idx]
		}
	}

	state := smarthome.State{
		"online":                       true,
		"on":                           active,
		"thermostatMode":               mode,
		"activeThermostatMode":         mode,
		"thermostatTemperatureAmbient": value(svc, hap.CurrentTemperature),
	}
	if hasThresholds(svc) {
		switch mode {
		case "heat":
			state["thermostatTemperatureSetpoint"] = value(svc, hap.HeatingThresholdTemperature)
		case "cool":
			state["thermostatTemperatureSetpoint"] = value(svc, hap.CoolingThresholdTemperature)
		case "auto":
			state["thermostatMode"] = "heatcool"
			state["thermostatTemperatureSetpointLow"] = value(svc, hap.HeatingThresholdTemperature)
			state["thermostatTemperatureSetpointHigh"] = value(svc, hap.CoolingThresholdTemperature)
		}
	}
	if svc.Has(hap.RotationSpeed) {
		state["currentFanSpeedPercent"] = value(svc, hap.RotationSpeed)
	}
	return state
}

func (s *HeaterCoolerStrategy) Execute(ctx context.Context, svc *model.Service, cmd smarthome.Command) (smarthome.Result, error) {
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
		if m := lacking(svc, hap.Active); m != "" {
			return notSupported(svc, m)
		}
		if p.ThermostatMode == "off" {
			if err := write(ctx, svc, hap.Active, 0); err != nil {
				return nil, err
			}
			return success(svc)
		}
		mode, ok := heaterCoolerModeValues[p.ThermostatMode]
		if !ok {
			return failure(svc, fmt.Sprintf("unsupported thermostat mode %q", p.ThermostatMode))
		}
		if m := lacking(svc, hap.TargetHeaterCoolerState); m != "" {
			return notSupported(svc, m)
		}
		if err := write(ctx, svc, hap.Active, 1); err != nil {
			return nil, err
		}
		if err := write(ctx, svc, hap.TargetHeaterCoolerState, mode); err != nil {
			return nil, err
		}
		return success(svc)

	case smarthome.CommandThermostatTemperatureSetpoint:
		p, err := smarthome.DecodeParams[smarthome.ThermostatTemperatureSetpointParams](exec)
		if err != nil {
			return invalidParams(svc, err)
		}
		if m := lacking(svc, hap.CoolingThresholdTemperature, hap.HeatingThresholdTemperature); m != "" {
			return notSupported(svc, m)
		}
		setpoint := *p.ThermostatTemperatureSetpoint
		if err := write(ctx, svc, hap.CoolingThresholdTemperature, setpoint); err != nil {
			return nil, err
		}
		if err := write(ctx, svc, hap.HeatingThresholdTemperature, setpoint); err != nil {
			return nil, err
		}
		return success(svc)

	case smarthome.CommandThermostatTemperatureSetRange:
		return setRange(ctx, svc, exec)

	case smarthome.CommandSetFanSpeed:
		if m := lacking(svc, hap.RotationSpeed); m != "" {
			return notSupported(svc, m)
		}
		p, err := smarthome.DecodeParams[smarthome.SetFanSpeedParams](exec)
		if err != nil {
			return invalidParams(svc, err)
		}
		if err := write(ctx, svc, hap.RotationSpeed, *p.FanSpeedPercent); err != nil {
			return nil, err
		}
		return success(svc)

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
