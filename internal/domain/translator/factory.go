package translator

import (
	"fmt"

	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/domain/smarthome"
)

// Factory hands out the translator for each supported device type.
type Factory struct {
	strategies map[model.DeviceType]Translator
}

func NewFactory(cfg *model.PluginConfig) *Factory {
	if cfg == nil {
		cfg = &model.PluginConfig{}
	}
	f := &Factory{strategies: make(map[model.DeviceType]Translator)}
	for _, dt := range model.AllDeviceTypes() {
		f.strategies[dt] = newStrategy(dt, cfg)
	}
	return f
}

// newStrategy must list every device type. Adding a type to the enum without
// a case here panics at construction.
func newStrategy(dt model.DeviceType, cfg *model.PluginConfig) Translator {
	switch dt {
	case model.DeviceTypeDoor:
		return &OpenCloseStrategy{DeviceType: smarthome.TypeDoor, OpenDirection: []string{"IN", "OUT"}}
	case model.DeviceTypeWindow:
		return &OpenCloseStrategy{DeviceType: smarthome.TypeWindow, OpenDirection: []string{"LEFT", "RIGHT"}}
	case model.DeviceTypeWindowCovering:
		return &OpenCloseStrategy{DeviceType: smarthome.TypeBlinds, OpenDirection: []string{"UP", "DOWN"}}
	case model.DeviceTypeFan:
		return &SwitchStrategy{DeviceType: smarthome.TypeFan}
	case model.DeviceTypeFanv2:
		return &ActiveStrategy{DeviceType: smarthome.TypeFan}
	case model.DeviceTypeTelevision:
		return &ActiveStrategy{DeviceType: smarthome.TypeTV}
	case model.DeviceTypeGarageDoorOpener:
		return &GarageDoorStrategy{}
	case model.DeviceTypeHeaterCooler:
		return &HeaterCoolerStrategy{ForceFahrenheit: cfg.ForceFahrenheit}
	case model.DeviceTypeThermostat:
		return &ThermostatStrategy{ForceFahrenheit: cfg.ForceFahrenheit}
	case model.DeviceTypeHumiditySensor:
		return &HumiditySensorStrategy{}
	case model.DeviceTypeTemperatureSensor:
		return &TemperatureSensorStrategy{ForceFahrenheit: cfg.ForceFahrenheit}
	case model.DeviceTypeLightbulb:
		return &LightbulbStrategy{}
	case model.DeviceTypeLockMechanism:
		return &LockStrategy{}
	case model.DeviceTypeSecuritySystem:
		return &SecuritySystemStrategy{}
	case model.DeviceTypeOutlet:
		return &SwitchStrategy{DeviceType: smarthome.TypeOutlet}
	case model.DeviceTypeSwitch:
		return &SwitchStrategy{DeviceType: smarthome.TypeSwitch}
	}
	panic(fmt.Sprintf("translator: no strategy for device type %d", dt))
}

// GetTranslator returns the translator for a parsed device type. Types only
// come from model.ParseDeviceType, so a miss is a programming error.
func (f *Factory) GetTranslator(dt model.DeviceType) Translator {
	t, ok := f.strategies[dt]
	if !ok {
		panic(fmt.Sprintf("translator: unknown device type %d", dt))
	}
	return t
}

// ForService parses the service's type and returns its translator.
func (f *Factory) ForService(svc *model.Service) (Translator, bool) {
	dt, ok := model.ParseDeviceType(svc.Type)
	if !ok {
		return nil, false
	}
	return f.GetTranslator(dt), true
}

// RequiresTwoFactor reports whether the translator for dt guards any commands.
func (f *Factory) RequiresTwoFactor(dt model.DeviceType) bool {
	_, ok := f.GetTranslator(dt).(TwoFactorGuard)
	return ok
}
