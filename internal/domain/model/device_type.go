package model

import "hap-gsh-bridge/internal/domain/hap"

// DeviceType is the closed set of hub service types the bridge can expose.
type DeviceType int

const (
	DeviceTypeDoor DeviceType = iota + 1
	DeviceTypeFan
	DeviceTypeFanv2
	DeviceTypeGarageDoorOpener
	DeviceTypeHeaterCooler
	DeviceTypeHumiditySensor
	DeviceTypeLightbulb
	DeviceTypeLockMechanism
	DeviceTypeOutlet
	DeviceTypeSecuritySystem
	DeviceTypeSwitch
	DeviceTypeTelevision
	DeviceTypeTemperatureSensor
	DeviceTypeThermostat
	DeviceTypeWindow
	DeviceTypeWindowCovering
)

var deviceTypeNames = map[DeviceType]string{
	DeviceTypeDoor:              hap.ServiceDoor,
	DeviceTypeFan:               hap.ServiceFan,
	DeviceTypeFanv2:             hap.ServiceFanv2,
	DeviceTypeGarageDoorOpener:  hap.ServiceGarageDoorOpener,
	DeviceTypeHeaterCooler:      hap.ServiceHeaterCooler,
	DeviceTypeHumiditySensor:    hap.ServiceHumiditySensor,
	DeviceTypeLightbulb:         hap.ServiceLightbulb,
	DeviceTypeLockMechanism:     hap.ServiceLockMechanism,
	DeviceTypeOutlet:            hap.ServiceOutlet,
	DeviceTypeSecuritySystem:    hap.ServiceSecuritySystem,
	DeviceTypeSwitch:            hap.ServiceSwitch,
	DeviceTypeTelevision:        hap.ServiceTelevision,
	DeviceTypeTemperatureSensor: hap.ServiceTemperatureSensor,
	DeviceTypeThermostat:        hap.ServiceThermostat,
	DeviceTypeWindow:            hap.ServiceWindow,
	DeviceTypeWindowCovering:    hap.ServiceWindowCovering,
}

var deviceTypesByName = func() map[string]DeviceType {
	out := make(map[string]DeviceType, len(deviceTypeNames))
	for t, n := range deviceTypeNames {
		out[n] = t
	}
	return out
}()

// AllDeviceTypes lists every supported type in declaration order.
func AllDeviceTypes() []DeviceType {
	out := make([]DeviceType, 0, len(deviceTypeNames))
	for t := DeviceTypeDoor; t <= DeviceTypeWindowCovering; t++ {
		out = append(out, t)
	}
	return out
}

// ParseDeviceType maps a hub service type name onto a supported type.
func ParseDeviceType(name string) (DeviceType, bool) {
	t, ok := deviceTypesByName[name]
	return t, ok
}

func (t DeviceType) String() string {
	if n, ok := deviceTypeNames[t]; ok {
		return n
	}
	return "Unknown"
}
