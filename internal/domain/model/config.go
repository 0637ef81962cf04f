package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pin is a numeric code that users may write either as a number or a string.
// It is always compared in its string form.
type Pin string

func (p *Pin) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = Pin(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("pin must be a string or a number: %w", err)
	}
	*p = Pin(n.String())
	return nil
}

func (p *Pin) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("pin must be a scalar, line %d", value.Line)
	}
	*p = Pin(strings.TrimSpace(value.Value))
	return nil
}

// UnmarshalText lets env overrides populate a pin.
func (p *Pin) UnmarshalText(text []byte) error {
	*p = Pin(strings.TrimSpace(string(text)))
	return nil
}

func (p Pin) String() string { return string(p) }

func (p Pin) IsSet() bool { return p != "" }

type NameMapping struct {
	Replace string `json:"replace" yaml:"replace"`
	With    string `json:"with" yaml:"with"`
}

// HubInstance is a hub the bridge talks to directly.
type HubInstance struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
}

func (h HubInstance) Address() string {
	return h.Host + ":" + strconv.Itoa(h.Port)
}

func (h HubInstance) Instance() Instance {
	return Instance{Name: h.Name, IPAddress: h.Host, Port: h.Port, Username: h.Username}
}

type PluginConfig struct {
	Name                      string        `json:"name,omitempty" yaml:"name,omitempty"`
	Token                     string        `json:"token,omitempty" yaml:"token,omitempty" env:"GSH_TOKEN"`
	Pin                       Pin           `json:"pin,omitempty" yaml:"pin,omitempty" env:"GSH_HUB_PIN"`
	AccessoryFilter           []string      `json:"accessoryFilter,omitempty" yaml:"accessoryFilter,omitempty" env:"GSH_ACCESSORY_FILTER"`
	AccessorySerialFilter     []string      `json:"accessorySerialFilter,omitempty" yaml:"accessorySerialFilter,omitempty" env:"GSH_ACCESSORY_SERIAL_FILTER"`
	InstanceBlacklist         []string      `json:"instanceBlacklist,omitempty" yaml:"instanceBlacklist,omitempty" env:"GSH_INSTANCE_BLACKLIST"`
	DeviceNameMap             []NameMapping `json:"deviceNameMap,omitempty" yaml:"deviceNameMap,omitempty"`
	TwoFactorAuthPin          Pin           `json:"twoFactorAuthPin,omitempty" yaml:"twoFactorAuthPin,omitempty" env:"GSH_TWO_FACTOR_PIN"`
	ForceFahrenheit           bool          `json:"forceFahrenheit,omitempty" yaml:"forceFahrenheit,omitempty" env:"GSH_FORCE_FAHRENHEIT"`
	DisablePinCodeRequirement bool          `json:"disablePinCodeRequirement,omitempty" yaml:"disablePinCodeRequirement,omitempty" env:"GSH_DISABLE_PIN_CODE_REQUIREMENT"`
	Debug                     bool          `json:"debug,omitempty" yaml:"debug,omitempty" env:"GSH_DEBUG"`
	Instances                 []HubInstance `json:"instances,omitempty" yaml:"instances,omitempty"`
}

// AgentUserID is the cloud-side identity of this bridge.
func (c *PluginConfig) AgentUserID() string {
	if c.Token != "" {
		return c.Token
	}
	if c.Name != "" {
		return c.Name
	}
	return "hap-gsh-bridge"
}
