package smarthome

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Command verbs.
const (
	CommandArmDisarm                     = "action.devices.commands.ArmDisarm"
	CommandBrightnessAbsolute            = "action.devices.commands.BrightnessAbsolute"
	CommandColorAbsolute                 = "action.devices.commands.ColorAbsolute"
	CommandLockUnlock                    = "action.devices.commands.LockUnlock"
	CommandOnOff                         = "action.devices.commands.OnOff"
	CommandOpenClose                     = "action.devices.commands.OpenClose"
	CommandSetFanSpeed                   = "action.devices.commands.SetFanSpeed"
	CommandThermostatSetMode             = "action.devices.commands.ThermostatSetMode"
	CommandThermostatTemperatureSetRange = "action.devices.commands.ThermostatTemperatureSetRange"
	CommandThermostatTemperatureSetpoint = "action.devices.commands.ThermostatTemperatureSetpoint"
)

var ErrInvalidParams = errors.New("invalid command params")

type Challenge struct {
	Pin string `json:"pin,omitempty"`
	Ack bool   `json:"ack,omitempty"`
}

type Execution struct {
	Command   string          `json:"command"`
	Params    json.RawMessage `json:"params,omitempty"`
	Challenge *Challenge      `json:"challenge,omitempty"`
}

type Command struct {
	Devices   []DeviceRef `json:"devices"`
	Execution []Execution `json:"execution"`
}

// First returns the execution a device acts on. Only the first entry of a
// command's execution list is applied.
func (c Command) First() (Execution, bool) {
	if len(c.Execution) == 0 {
		return Execution{}, false
	}
	return c.Execution[0], true
}

// ChallengePin returns the pin carried by the first execution, if any.
func (c Command) ChallengePin() string {
	e, ok := c.First()
	if !ok || e.Challenge == nil {
		return ""
	}
	return e.Challenge.Pin
}

type validator interface {
	validate() error
}

// DecodeParams unmarshals and validates the params of an execution.
func DecodeParams[T any](e Execution) (T, error) {
	var p T
	if len(e.Params) == 0 {
		return p, fmt.Errorf("%s: missing params: %w", e.Command, ErrInvalidParams)
	}
	if err := json.Unmarshal(e.Params, &p); err != nil {
		return p, fmt.Errorf("%s: %v: %w", e.Command, err, ErrInvalidParams)
	}
	if v, ok := any(&p).(validator); ok {
		if err := v.validate(); err != nil {
			return p, fmt.Errorf("%s: %v: %w", e.Command, err, ErrInvalidParams)
		}
	}
	return p, nil
}

type OnOffParams struct {
	On *bool `json:"on"`
}

func (p *OnOffParams) validate() error {
	if p.On == nil {
		return errors.New("on is required")
	}
	return nil
}

type BrightnessAbsoluteParams struct {
	Brightness *float64 `json:"brightness"`
	// On is not part of the cloud payload but some callers send it alongside.
	On *bool `json:"on,omitempty"`
}

func (p *BrightnessAbsoluteParams) validate() error {
	if p.Brightness == nil {
		return errors.New("brightness is required")
	}
	return nil
}

type SpectrumHSV struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Value      float64 `json:"value"`
}

type Color struct {
	Name        string       `json:"name,omitempty"`
	SpectrumHSV *SpectrumHSV `json:"spectrumHSV,omitempty"`
	Temperature float64      `json:"temperature,omitempty"`
	SpectrumRGB *int         `json:"spectrumRGB,omitempty"`
}

type ColorAbsoluteParams struct {
	Color Color `json:"color"`
}

type ThermostatSetModeParams struct {
	ThermostatMode string `json:"thermostatMode"`
}

func (p *ThermostatSetModeParams) validate() error {
	if p.ThermostatMode == "" {
		return errors.New("thermostatMode is required")
	}
	return nil
}

type ThermostatTemperatureSetpointParams struct {
	ThermostatTemperatureSetpoint *float64 `json:"thermostatTemperatureSetpoint"`
}

func (p *ThermostatTemperatureSetpointParams) validate() error {
	if p.ThermostatTemperatureSetpoint == nil {
		return errors.New("thermostatTemperatureSetpoint is required")
	}
	return nil
}

type ThermostatTemperatureSetRangeParams struct {
	ThermostatTemperatureSetpointHigh *float64 `json:"thermostatTemperatureSetpointHigh"`
	ThermostatTemperatureSetpointLow  *float64 `json:"thermostatTemperatureSetpointLow"`
}

func (p *ThermostatTemperatureSetRangeParams) validate() error {
	if p.ThermostatTemperatureSetpointHigh == nil || p.ThermostatTemperatureSetpointLow == nil {
		return errors.New("thermostatTemperatureSetpointHigh and thermostatTemperatureSetpointLow are required")
	}
	return nil
}

type SetFanSpeedParams struct {
	FanSpeed        string   `json:"fanSpeed,omitempty"`
	FanSpeedPercent *float64 `json:"fanSpeedPercent,omitempty"`
}

func (p *SetFanSpeedParams) validate() error {
	if p.FanSpeedPercent == nil {
		return errors.New("fanSpeedPercent is required")
	}
	return nil
}

type LockUnlockParams struct {
	Lock          *bool  `json:"lock"`
	FollowUpToken string `json:"followUpToken,omitempty"`
}

func (p *LockUnlockParams) validate() error {
	if p.Lock == nil {
		return errors.New("lock is required")
	}
	return nil
}

type ArmDisarmParams struct {
	Arm           *bool  `json:"arm"`
	ArmLevel      string `json:"armLevel,omitempty"`
	Cancel        bool   `json:"cancel,omitempty"`
	FollowUpToken string `json:"followUpToken,omitempty"`
}

func (p *ArmDisarmParams) validate() error {
	if p.Arm == nil {
		return errors.New("arm is required")
	}
	return nil
}

type OpenCloseParams struct {
	OpenPercent   *float64 `json:"openPercent"`
	OpenDirection string   `json:"openDirection,omitempty"`
}

func (p *OpenCloseParams) validate() error {
	if p.OpenPercent == nil {
		return errors.New("openPercent is required")
	}
	return nil
}

// MustParams builds an execution from a params value. It is meant for tests
// and callers that construct commands in code.
func MustParams(command string, params interface{}) Execution {
	raw, err := json.Marshal(params)
	if err != nil {
		panic(err)
	}
	return Execution{Command: command, Params: raw}
}
