// Package hap holds the HomeKit Accessory Protocol service and characteristic
// type tables used to name the raw UUIDs reported by a hub.
package hap

import (
	"strings"
)

const uuidSuffix = "-0000-1000-8000-0026BB765291"

// Service names.
const (
	ServiceAccessoryInformation = "AccessoryInformation"
	ServiceDoor                 = "Door"
	ServiceFan                  = "Fan"
	ServiceFanv2                = "Fanv2"
	ServiceGarageDoorOpener     = "GarageDoorOpener"
	ServiceHeaterCooler         = "HeaterCooler"
	ServiceHumiditySensor       = "HumiditySensor"
	ServiceLightbulb            = "Lightbulb"
	ServiceLockMechanism        = "LockMechanism"
	ServiceOutlet               = "Outlet"
	ServiceSecuritySystem       = "SecuritySystem"
	ServiceSwitch               = "Switch"
	ServiceTelevision           = "Television"
	ServiceTemperatureSensor    = "TemperatureSensor"
	ServiceThermostat           = "Thermostat"
	ServiceWindow               = "Window"
	ServiceWindowCovering       = "WindowCovering"
)

// Characteristic names.
const (
	Active                      = "Active"
	Brightness                  = "Brightness"
	ColorTemperature            = "ColorTemperature"
	ConfiguredName              = "ConfiguredName"
	CoolingThresholdTemperature = "CoolingThresholdTemperature"
	CurrentDoorState            = "CurrentDoorState"
	CurrentPosition             = "CurrentPosition"
	CurrentRelativeHumidity     = "CurrentRelativeHumidity"
	CurrentTemperature          = "CurrentTemperature"
	FirmwareRevision            = "FirmwareRevision"
	HardwareRevision            = "HardwareRevision"
	HeatingThresholdTemperature = "HeatingThresholdTemperature"
	Hue                         = "Hue"
	LockCurrentState            = "LockCurrentState"
	LockTargetState             = "LockTargetState"
	Manufacturer                = "Manufacturer"
	Model                       = "Model"
	Name                        = "Name"
	On                          = "On"
	RotationSpeed               = "RotationSpeed"
	Saturation                  = "Saturation"
	SecuritySystemCurrentState  = "SecuritySystemCurrentState"
	SecuritySystemTargetState   = "SecuritySystemTargetState"
	SerialNumber                = "SerialNumber"
	TargetDoorState             = "TargetDoorState"
	TargetHeaterCoolerState     = "TargetHeaterCoolerState"
	TargetHeatingCoolingState   = "TargetHeatingCoolingState"
	TargetPosition              = "TargetPosition"
	TargetTemperature           = "TargetTemperature"
	TemperatureDisplayUnits     = "TemperatureDisplayUnits"
)

var services = map[string]string{
	"AccessControl":                 "DA",
	"AccessoryInformation":          "3E",
	"AccessoryRuntimeInformation":   "239",
	"AirPurifier":                   "BB",
	"AirQualitySensor":              "8D",
	"AudioStreamManagement":         "127",
	"Battery":                       "96",
	"CameraOperatingMode":           "21A",
	"CameraRecordingManagement":     "204",
	"CameraRTPStreamManagement":     "110",
	"CarbonDioxideSensor":           "97",
	"CarbonMonoxideSensor":          "7F",
	"CloudRelay":                    "5A",
	"ContactSensor":                 "80",
	"DataStreamTransportManagement": "129",
	"Diagnostics":                   "237",
	"Door":                          "81",
	"Doorbell":                      "121",
	"Fan":                           "40",
	"Fanv2":                         "B7",
	"Faucet":                        "D7",
	"FilterMaintenance":             "BA",
	"GarageDoorOpener":              "41",
	"HeaterCooler":                  "BC",
	"HumidifierDehumidifier":        "BD",
	"HumiditySensor":                "82",
	"InputSource":                   "D9",
	"IrrigationSystem":              "CF",
	"LeakSensor":                    "83",
	"Lightbulb":                     "43",
	"LightSensor":                   "84",
	"LockManagement":                "44",
	"LockMechanism":                 "45",
	"Microphone":                    "112",
	"MotionSensor":                  "85",
	"NFCAccess":                     "266",
	"OccupancySensor":               "86",
	"Outlet":                        "47",
	"Pairing":                       "55",
	"PowerManagement":               "221",
	"ProtocolInformation":           "A2",
	"SecuritySystem":                "7E",
	"ServiceLabel":                  "CC",
	"Siri":                          "133",
	"SiriEndpoint":                  "253",
	"Slats":                         "B9",
	"SmartSpeaker":                  "228",
	"SmokeSensor":                   "87",
	"Speaker":                       "113",
	"StatefulProgrammableSwitch":    "88",
	"StatelessProgrammableSwitch":   "89",
	"Switch":                        "49",
	"TargetControl":                 "125",
	"TargetControlManagement":       "122",
	"Television":                    "D8",
	"TemperatureSensor":             "8A",
	"Thermostat":                    "4A",
	"ThreadTransport":               "701",
	"TransferTransportManagement":   "203",
	"Valve":                         "D0",
	"WiFiRouter":                    "20A",
	"WiFiSatellite":                 "20F",
	"WiFiTransport":                 "22A",
	"Window":                        "8B",
	"WindowCovering":                "8C",
}

var characteristics = map[string]string{
	"AccessoryFlags":                        "A6",
	"Active":                                "B0",
	"ActiveIdentifier":                      "E7",
	"AdministratorOnlyAccess":               "1",
	"AirParticulateDensity":                 "64",
	"AirParticulateSize":                    "65",
	"AirQuality":                            "95",
	"AudioFeedback":                         "5",
	"BatteryLevel":                          "68",
	"Brightness":                            "8",
	"ButtonEvent":                           "126",
	"CarbonDioxideDetected":                 "92",
	"CarbonDioxideLevel":                    "93",
	"CarbonDioxidePeakLevel":                "94",
	"CarbonMonoxideDetected":                "69",
	"CarbonMonoxideLevel":                   "90",
	"CarbonMonoxidePeakLevel":               "91",
	"ChargingState":                         "8F",
	"ClosedCaptions":                        "DD",
	"ColorTemperature":                      "CE",
	"ConfiguredName":                        "E3",
	"ContactSensorState":                    "6A",
	"CoolingThresholdTemperature":           "D",
	"CurrentAirPurifierState":               "A9",
	"CurrentAmbientLightLevel":              "6B",
	"CurrentDoorState":                      "E",
	"CurrentFanState":                       "AF",
	"CurrentHeaterCoolerState":              "B1",
	"CurrentHeatingCoolingState":            "F",
	"CurrentHorizontalTiltAngle":            "6C",
	"CurrentHumidifierDehumidifierState":    "B3",
	"CurrentMediaState":                     "E0",
	"CurrentPosition":                       "6D",
	"CurrentRelativeHumidity":               "10",
	"CurrentSlatState":                      "AA",
	"CurrentTemperature":                    "11",
	"CurrentTiltAngle":                      "C1",
	"CurrentVerticalTiltAngle":              "6E",
	"CurrentVisibilityState":                "135",
	"DigitalZoom":                           "11D",
	"DisplayOrder":                          "136",
	"FilterChangeIndication":                "AC",
	"FilterLifeLevel":                       "AB",
	"FirmwareRevision":                      "52",
	"HardwareRevision":                      "53",
	"HeatingThresholdTemperature":           "12",
	"HoldPosition":                          "6F",
	"Hue":                                   "13",
	"Identifier":                            "E6",
	"Identify":                              "14",
	"ImageMirroring":                        "11F",
	"ImageRotation":                         "11E",
	"InputDeviceType":                       "DC",
	"InputSourceType":                       "DB",
	"InUse":                                 "D2",
	"IsConfigured":                          "D6",
	"LeakDetected":                          "70",
	"LockControlPoint":                      "19",
	"LockCurrentState":                      "1D",
	"LockLastKnownAction":                   "1C",
	"LockManagementAutoSecurityTimeout":     "1A",
	"LockPhysicalControls":                  "A7",
	"LockTargetState":                       "1E",
	"Logs":                                  "1F",
	"Manufacturer":                          "20",
	"Model":                                 "21",
	"MotionDetected":                        "22",
	"Mute":                                  "11A",
	"Name":                                  "23",
	"NightVision":                           "11B",
	"NitrogenDioxideDensity":                "C4",
	"ObstructionDetected":                   "24",
	"OccupancyDetected":                     "71",
	"On":                                    "25",
	"OpticalZoom":                           "11C",
	"OutletInUse":                           "26",
	"OzoneDensity":                          "C3",
	"PictureMode":                           "E2",
	"PM10Density":                           "C7",
	"PM2_5Density":                          "C6",
	"PositionState":                         "72",
	"PowerModeSelection":                    "DF",
	"ProgramMode":                           "D1",
	"ProgrammableSwitchEvent":               "73",
	"RelativeHumidityDehumidifierThreshold": "C9",
	"RelativeHumidityHumidifierThreshold":   "CA",
	"RemainingDuration":                     "D4",
	"RemoteKey":                             "E1",
	"ResetFilterIndication":                 "AD",
	"RotationDirection":                     "28",
	"RotationSpeed":                         "29",
	"Saturation":                            "2F",
	"SecuritySystemAlarmType":               "8E",
	"SecuritySystemCurrentState":            "66",
	"SecuritySystemTargetState":             "67",
	"SerialNumber":                          "30",
	"ServiceLabelIndex":                     "CB",
	"ServiceLabelNamespace":                 "CD",
	"SetDuration":                           "D3",
	"SlatType":                              "C0",
	"SleepDiscoveryMode":                    "E8",
	"SmokeDetected":                         "76",
	"StatusActive":                          "75",
	"StatusFault":                           "77",
	"StatusJammed":                          "78",
	"StatusLowBattery":                      "79",
	"StatusTampered":                        "7A",
	"SulphurDioxideDensity":                 "C5",
	"SwingMode":                             "B6",
	"TargetAirPurifierState":                "A8",
	"TargetDoorState":                       "32",
	"TargetFanState":                        "BF",
	"TargetHeaterCoolerState":               "B2",
	"TargetHeatingCoolingState":             "33",
	"TargetHorizontalTiltAngle":             "7B",
	"TargetHumidifierDehumidifierState":     "B4",
	"TargetMediaState":                      "137",
	"TargetPosition":                        "7C",
	"TargetRelativeHumidity":                "34",
	"TargetTemperature":                     "35",
	"TargetTiltAngle":                       "C2",
	"TargetVerticalTiltAngle":               "7D",
	"TemperatureDisplayUnits":               "36",
	"ValveType":                             "D5",
	"Version":                               "37",
	"VOCDensity":                            "C8",
	"Volume":                                "119",
	"VolumeControlType":                     "E9",
	"VolumeSelector":                        "EA",
	"WaterLevel":                            "B5",
}

var (
	serviceNames        = invert(services)
	characteristicNames = invert(characteristics)
)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for name, short := range m {
		out[LongUUID(short)] = name
	}
	return out
}

// LongUUID expands a short HAP type ("43") into its full Apple-base form.
// Values that already look like a full UUID are upper-cased and returned.
func LongUUID(uuid string) string {
	uuid = strings.ToUpper(strings.TrimSpace(uuid))
	if strings.Contains(uuid, "-") {
		return uuid
	}
	if len(uuid) < 8 {
		uuid = strings.Repeat("0", 8-len(uuid)) + uuid
	}
	return uuid + uuidSuffix
}

func ServiceUUID(name string) (string, bool) {
	short, ok := services[name]
	if !ok {
		return "", false
	}
	return LongUUID(short), true
}

func ServiceName(uuid string) (string, bool) {
	name, ok := serviceNames[LongUUID(uuid)]
	return name, ok
}

func CharacteristicUUID(name string) (string, bool) {
	short, ok := characteristics[name]
	if !ok {
		return "", false
	}
	return LongUUID(short), true
}

func CharacteristicName(uuid string) (string, bool) {
	name, ok := characteristicNames[LongUUID(uuid)]
	return name, ok
}

// ServiceCount and CharacteristicCount report the size of the tables.
func ServiceCount() int        { return len(services) }
func CharacteristicCount() int { return len(characteristics) }
