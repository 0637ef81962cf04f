package translator

import (
	"context"
	"errors"
	"fmt"

	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/domain/smarthome"
)

var ErrCharacteristicMissing = errors.New("characteristic not exposed by service")

// Translator maps one hub service type onto the cloud device model.
// Sync and Query are pure; Execute may write characteristics, and write
// failures are returned as errors rather than folded into the result.
type Translator interface {
	Sync(svc *model.Service) smarthome.SyncDevice
	Query(svc *model.Service) smarthome.State
	Execute(ctx context.Context, svc *model.Service, cmd smarthome.Command) (smarthome.Result, error)
}

// TwoFactorGuard is implemented by translators for security-sensitive types.
// RequiresTwoFactor reports whether this particular command needs a pin.
type TwoFactorGuard interface {
	RequiresTwoFactor(cmd smarthome.Command) bool
}

func success(svc *model.Service) (smarthome.Result, error) {
	return smarthome.Success{IDs: []string{svc.UniqueID}}, nil
}

func failure(svc *model.Service, debug string) (smarthome.Result, error) {
	return smarthome.Error{IDs: []string{svc.UniqueID}, DebugString: debug}, nil
}

func missingCommand(svc *model.Service) (smarthome.Result, error) {
	return failure(svc, "missing command")
}

func unknownCommand(svc *model.Service, command string) (smarthome.Result, error) {
	return failure(svc, "unknown command "+command)
}

func invalidParams(svc *model.Service, err error) (smarthome.Result, error) {
	return failure(svc, err.Error())
}

// lacking returns the first of names the service does not expose, or "".
func lacking(svc *model.Service, names ...string) string {
	for _, name := range names {
		if !svc.Has(name) {
			return name
		}
	}
	return ""
}

func notSupported(svc *model.Service, name string) (smarthome.Result, error) {
	return failure(svc, name+" not supported")
}

// write sets a characteristic by type name, failing if the service lacks it.
// Callers check capabilities with lacking first, so the error normally comes
// from the hub.
func write(ctx context.Context, svc *model.Service, name string, value interface{}) error {
	c := svc.Characteristic(name)
	if c == nil {
		return fmt.Errorf("%s on %q: %w", name, svc.ServiceName, ErrCharacteristicMissing)
	}
	return c.SetValue(ctx, value)
}

// value reads the cached value of a characteristic, nil if absent.
func value(svc *model.Service, name string) interface{} {
	if c := svc.Characteristic(name); c != nil {
		return c.Value
	}
	return nil
}

func number(svc *model.Service, name string) float64 {
	return model.ToFloat(value(svc, name))
}

func truthy(svc *model.Service, name string) bool {
	return model.Truthy(value(svc, name))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
