package translator

import (
	"context"
	"sync"

	"hap-gsh-bridge/internal/domain/model"
)

type recordedWrite struct {
	Type  string
	Value interface{}
}

// recordingIO captures characteristic writes instead of sending them to a hub.
type recordingIO struct {
	mu     sync.Mutex
	writes []recordedWrite
	err    error
}

func (r *recordingIO) SetValue(_ context.Context, c *model.Characteristic, value interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.writes = append(r.writes, recordedWrite{Type: c.Type, Value: value})
	c.Value = value
	return nil
}

func (r *recordingIO) GetValue(_ context.Context, c *model.Characteristic) (interface{}, error) {
	return c.Value, r.err
}

func (r *recordingIO) Writes() []recordedWrite {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedWrite(nil), r.writes...)
}

type char struct {
	name     string
	value    interface{}
	min, max float64
}

func ch(name string, value interface{}) char {
	return char{name: name, value: value}
}

// newTestService builds a bound service of the given type. Characteristic iids
// are assigned in argument order starting at 10.
func newTestService(serviceType, serviceName, accessoryName string, io model.CharacteristicIO, chars ...char) *model.Service {
	svc := &model.Service{
		Aid:         2,
		Iid:         9,
		Type:        serviceType,
		ServiceName: serviceName,
		AccessoryInformation: map[string]string{
			model.InfoName:             accessoryName,
			model.InfoManufacturer:     "Acme",
			model.InfoModel:            "X1",
			model.InfoFirmwareRevision: "1.2.3",
		},
		Instance: model.Instance{IPAddress: "192.168.1.20", Port: 51826, Username: "0E:3A:11:22:33:44"},
	}
	svc.UniqueID = model.ComputeUniqueID(svc.Instance.Username, svc.Aid, svc.Iid, svc.Type)
	for i, c := range chars {
		characteristic := &model.Characteristic{
			Aid:      svc.Aid,
			Iid:      10 + i,
			Type:     c.name,
			Value:    c.value,
			MinValue: c.min,
			MaxValue: c.max,
			CanRead:  true,
			CanWrite: true,
		}
		if io != nil {
			characteristic.Bind(io)
		}
		svc.Characteristics = append(svc.Characteristics, characteristic)
	}
	return svc
}
