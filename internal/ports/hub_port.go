package ports

import (
	"context"
	"errors"

	"hap-gsh-bridge/internal/domain/model"
)

var (
	// ErrInsecureModeRequired is returned when a hub refuses accessory access
	// because it is not running in insecure mode.
	ErrInsecureModeRequired = errors.New("hub must run in insecure mode to expose accessories")
	ErrNotConfigured        = errors.New("no hub instances configured")
)

// HubClient is the bridge's view of the home automation hub.
type HubClient interface {
	// GetAllServices loads every service of every known instance, with
	// characteristics bound for live reads and writes.
	GetAllServices(ctx context.Context) ([]*model.Service, error)
	// RefreshCharacteristics returns a copy of svc with current values.
	RefreshCharacteristics(ctx context.Context, svc *model.Service) (*model.Service, error)
	// Discover reports each reachable instance to onInstance. It returns once
	// every known instance has been tried; callers run it once per cycle.
	Discover(ctx context.Context, onInstance func(model.Instance)) error
	// AddInstance adds an announced instance to later loads. It reports
	// whether the instance was new.
	AddInstance(inst model.Instance) bool
	// Monitor delivers characteristic changes for services until ctx ends.
	Monitor(ctx context.Context, services []*model.Service, onEvents func([]model.CharacteristicEvent)) error
}
