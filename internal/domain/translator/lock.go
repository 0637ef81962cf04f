package translator

import (
	"context"

	"hap-gsh-bridge/internal/domain/hap"
	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/domain/smarthome"
)

// LockCurrentState: 0 unsecured, 1 secured, 2 jammed, 3 unknown.
const (
	lockSecured = 1
	lockJammed  = 2
)

type LockStrategy struct{}

func (s *LockStrategy) Sync(svc *model.Service) smarthome.SyncDevice {
	return baseSyncDevice(svc, smarthome.TypeLock, smarthome.TraitLockUnlock)
}

func (s *LockStrategy) Query(svc *model.Service) smarthome.State {
	current := int(number(svc, hap.LockCurrentState))
	return smarthome.State{
		"online":   true,
		"isLocked": current == lockSecured,
		"isJammed": current == lockJammed,
	}
}

func (s *LockStrategy) Execute(ctx context.Context, svc *model.Service, cmd smarthome.Command) (smarthome.Result, error) {
	exec, ok := cmd.First()
	if !ok {
		return missingCommand(svc)
	}
	switch exec.Command {
	case smarthome.CommandLockUnlock:
		p, err := smarthome.DecodeParams[smarthome.LockUnlockParams](exec)
		if err != nil {
			return invalidParams(svc, err)
		}
		if m := lacking(svc, hap.LockTargetState); m != "" {
			return notSupported(svc, m)
		}
		if err := write(ctx, svc, hap.LockTargetState, boolToInt(*p.Lock)); err != nil {
			return nil, err
		}
		return success(svc)
	}
	return unknownCommand(svc, exec.Command)
}

// RequiresTwoFactor guards unlocking.
func (s *LockStrategy) RequiresTwoFactor(cmd smarthome.Command) bool {
	exec, ok := cmd.First()
	if !ok || exec.Command != smarthome.CommandLockUnlock {
		return false
	}
	p, err := smarthome.DecodeParams[smarthome.LockUnlockParams](exec)
	if err != nil {
		return false
	}
	return !*p.Lock
}
