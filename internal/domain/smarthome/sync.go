// Package smarthome models the cloud assistant's device vocabulary: the SYNC
// device descriptors, QUERY states, EXECUTE commands and their results.
package smarthome

// Device types.
const (
	TypeACUnit         = "action.devices.types.AC_UNIT"
	TypeBlinds         = "action.devices.types.BLINDS"
	TypeDoor           = "action.devices.types.DOOR"
	TypeFan            = "action.devices.types.FAN"
	TypeGarage         = "action.devices.types.GARAGE"
	TypeLight          = "action.devices.types.LIGHT"
	TypeLock           = "action.devices.types.LOCK"
	TypeOutlet         = "action.devices.types.OUTLET"
	TypeSecuritySystem = "action.devices.types.SECURITYSYSTEM"
	TypeSensor         = "action.devices.types.SENSOR"
	TypeSwitch         = "action.devices.types.SWITCH"
	TypeThermostat     = "action.devices.types.THERMOSTAT"
	TypeTV             = "action.devices.types.TV"
	TypeWindow         = "action.devices.types.WINDOW"
)

// Traits.
const (
	TraitArmDisarm          = "action.devices.traits.ArmDisarm"
	TraitBrightness         = "action.devices.traits.Brightness"
	TraitColorSetting       = "action.devices.traits.ColorSetting"
	TraitFanSpeed           = "action.devices.traits.FanSpeed"
	TraitHumiditySetting    = "action.devices.traits.HumiditySetting"
	TraitLockUnlock         = "action.devices.traits.LockUnlock"
	TraitOnOff              = "action.devices.traits.OnOff"
	TraitOpenClose          = "action.devices.traits.OpenClose"
	TraitTemperatureControl = "action.devices.traits.TemperatureControl"
	TraitTemperatureSetting = "action.devices.traits.TemperatureSetting"
)

const MissingName = "Missing Name"

type DeviceName struct {
	DefaultNames []string `json:"defaultNames"`
	Name         string   `json:"name"`
	Nicknames    []string `json:"nicknames"`
}

type DeviceInfo struct {
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	HwVersion    string `json:"hwVersion,omitempty"`
	SwVersion    string `json:"swVersion,omitempty"`
}

// CustomData is echoed back unchanged by the cloud on later requests.
type CustomData struct {
	Aid               int    `json:"aid"`
	Iid               int    `json:"iid"`
	InstanceUsername  string `json:"instanceUsername"`
	InstanceIPAddress string `json:"instanceIpAddress"`
	InstancePort      int    `json:"instancePort"`
}

type SyncDevice struct {
	ID              string                 `json:"id"`
	Type            string                 `json:"type"`
	Traits          []string               `json:"traits"`
	Name            DeviceName             `json:"name"`
	WillReportState bool                   `json:"willReportState"`
	DeviceInfo      DeviceInfo             `json:"deviceInfo"`
	Attributes      map[string]interface{} `json:"attributes,omitempty"`
	CustomData      CustomData             `json:"customData"`
}

// HasTrait reports whether trait is in the device's trait list.
func (d SyncDevice) HasTrait(trait string) bool {
	for _, t := range d.Traits {
		if t == trait {
			return true
		}
	}
	return false
}

// State is a QUERY or report-state entry for one device.
type State map[string]interface{}

type DeviceRef struct {
	ID         string      `json:"id"`
	CustomData *CustomData `json:"customData,omitempty"`
}
