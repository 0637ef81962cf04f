package ports

import (
	"context"

	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/domain/smarthome"
)

// BridgePort is what inbound adapters drive.
type BridgePort interface {
	Sync(ctx context.Context) ([]smarthome.SyncDevice, error)
	Query(ctx context.Context, devices []smarthome.DeviceRef) (map[string]smarthome.State, error)
	Execute(ctx context.Context, commands []smarthome.Command) ([]smarthome.Result, error)
	HandleEvents(ctx context.Context, events []model.CharacteristicEvent) error
	InstanceDiscovered(ctx context.Context, instance model.Instance) error
	Ready() bool
}

// IntentHandler answers cloud fulfillment requests.
type IntentHandler interface {
	Handle(ctx context.Context, req smarthome.Request) smarthome.Response
}
