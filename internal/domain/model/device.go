package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
)

// Accessory information keys, as reported by the hub.
const (
	InfoManufacturer     = "Manufacturer"
	InfoModel            = "Model"
	InfoName             = "Name"
	InfoSerialNumber     = "Serial Number"
	InfoFirmwareRevision = "Firmware Revision"
	InfoHardwareRevision = "Hardware Revision"
)

var ErrNoCharacteristicIO = errors.New("characteristic has no hub connection")

// CharacteristicIO performs the live reads and writes for a characteristic.
type CharacteristicIO interface {
	SetValue(ctx context.Context, c *Characteristic, value interface{}) error
	GetValue(ctx context.Context, c *Characteristic) (interface{}, error)
}

type Instance struct {
	Name      string `json:"name,omitempty"`
	IPAddress string `json:"ipAddress"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
}

// Address is the host:port the instance serves HAP on.
func (i Instance) Address() string {
	return i.IPAddress + ":" + strconv.Itoa(i.Port)
}

type Characteristic struct {
	Aid         int         `json:"aid"`
	Iid         int         `json:"iid"`
	UUID        string      `json:"uuid"`
	Type        string      `json:"type"`
	Description string      `json:"description,omitempty"`
	Value       interface{} `json:"value"`
	Format      string      `json:"format,omitempty"`
	Unit        string      `json:"unit,omitempty"`
	Perms       []string    `json:"perms,omitempty"`
	MinValue    float64     `json:"minValue,omitempty"`
	MaxValue    float64     `json:"maxValue,omitempty"`
	MinStep     float64     `json:"minStep,omitempty"`
	CanRead     bool        `json:"canRead"`
	CanWrite    bool        `json:"canWrite"`
	Ev          bool        `json:"ev"`

	io CharacteristicIO
}

// Bind attaches the hub connection used by SetValue and GetValue.
func (c *Characteristic) Bind(io CharacteristicIO) {
	c.io = io
}

// SetValue writes value through the hub. Rejections are returned as errors.
func (c *Characteristic) SetValue(ctx context.Context, value interface{}) error {
	if c.io == nil {
		return fmt.Errorf("%s: %w", c.Type, ErrNoCharacteristicIO)
	}
	return c.io.SetValue(ctx, c, value)
}

func (c *Characteristic) GetValue(ctx context.Context) (interface{}, error) {
	if c.io == nil {
		return nil, fmt.Errorf("%s: %w", c.Type, ErrNoCharacteristicIO)
	}
	return c.io.GetValue(ctx, c)
}

func (c *Characteristic) Float() float64 {
	return ToFloat(c.Value)
}

// Truthy mirrors how the hub treats loosely typed on/off values.
func (c *Characteristic) Truthy() bool {
	return Truthy(c.Value)
}

type Service struct {
	Aid                  int               `json:"aid"`
	Iid                  int               `json:"iid"`
	UUID                 string            `json:"uuid"`
	Type                 string            `json:"type"`
	ServiceName          string            `json:"serviceName"`
	Characteristics      []*Characteristic `json:"serviceCharacteristics"`
	AccessoryInformation map[string]string `json:"accessoryInformation"`
	Instance             Instance          `json:"instance"`
	UniqueID             string            `json:"uniqueId"`
}

// Characteristic returns the characteristic with the given type name, or nil.
func (s *Service) Characteristic(name string) *Characteristic {
	for _, c := range s.Characteristics {
		if c.Type == name {
			return c
		}
	}
	return nil
}

func (s *Service) Has(name string) bool {
	return s.Characteristic(name) != nil
}

func (s *Service) Info(key string) string {
	if s.AccessoryInformation == nil {
		return ""
	}
	return s.AccessoryInformation[key]
}

// Clone copies the service and its characteristics. Hub bindings are shared.
func (s *Service) Clone() *Service {
	out := *s
	out.Characteristics = make([]*Characteristic, len(s.Characteristics))
	for i, c := range s.Characteristics {
		cc := *c
		out.Characteristics[i] = &cc
	}
	if s.AccessoryInformation != nil {
		out.AccessoryInformation = make(map[string]string, len(s.AccessoryInformation))
		for k, v := range s.AccessoryInformation {
			out.AccessoryInformation[k] = v
		}
	}
	return &out
}

// WithValue returns a copy of the service where characteristic iid holds value.
// The second return is false when no characteristic has that iid.
func (s *Service) WithValue(iid int, value interface{}) (*Service, bool) {
	idx := -1
	for i, c := range s.Characteristics {
		if c.Iid == iid {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, false
	}
	out := s.Clone()
	out.Characteristics[idx].Value = value
	return out, true
}

// ComputeUniqueID derives the stable cloud-facing id of a service.
func ComputeUniqueID(username string, aid, iid int, serviceType string) string {
	sum := sha256.Sum256([]byte(username + strconv.Itoa(aid) + strconv.Itoa(iid) + serviceType))
	return hex.EncodeToString(sum[:])
}

// CharacteristicEvent is a single value change pushed by the hub.
type CharacteristicEvent struct {
	Host  string      `json:"host"`
	Port  int         `json:"port"`
	Aid   int         `json:"aid"`
	Iid   int         `json:"iid"`
	Value interface{} `json:"value"`
}

func ToFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case uint8:
		return float64(n)
	case uint32:
		return float64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func Truthy(v interface{}) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		return b != ""
	}
	return ToFloat(v) != 0
}
