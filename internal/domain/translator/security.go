package translator

import (
	"context"
	"fmt"

	"hap-gsh-bridge/internal/domain/hap"
	"hap-gsh-bridge/internal/domain/model"
	"hap-gsh-bridge/internal/domain/smarthome"
)

// Arm levels in SecuritySystemCurrentState order. OFF is disarmed.
var armLevels = [...]string{"HOME", "AWAY", "NIGHT", "OFF"}

const armLevelOff = 3

var armLevelSynonyms = map[string][2]string{
	"HOME":  {"Home", "Anwesend"},
	"AWAY":  {"Away", "Abwesend"},
	"NIGHT": {"Night", "Nacht"},
}

func armLevelIndex(level string) (int, bool) {
	for i, l := range armLevels {
		if l == level {
			return i, true
		}
	}
	return 0, false
}

type SecuritySystemStrategy struct{}

func (s *SecuritySystemStrategy) Sync(svc *model.Service) smarthome.SyncDevice {
	levels := make([]map[string]interface{}, 0, len(armLevels)-1)
	for _, level := range armLevels[:armLevelOff] {
		syn := armLevelSynonyms[level]
		levels = append(levels, map[string]interface{}{
			"level_name": level,
			"level_values": []map[string]interface{}{
				{"level_synonym": []string{syn[0]}, "lang": "en"},
				{"level_synonym": []string{syn[1]}, "lang": "de"},
			},
		})
	}

	d := baseSyncDevice(svc, smarthome.TypeSecuritySystem, smarthome.TraitArmDisarm)
	d.Attributes = map[string]interface{}{
		"availableArmLevels": map[string]interface{}{
			"levels":  levels,
			"ordered": true,
		},
	}
	return d
}

func (s *SecuritySystemStrategy) Query(svc *model.Service) smarthome.State {
	state := smarthome.State{
		"on":     true,
		"online": true,
		"status": smarthome.StatusSuccess,
	}
	idx := int(number(svc, hap.SecuritySystemCurrentState))
	if idx < 0 || idx >= len(armLevels) || idx == armLevelOff {
		state["isArmed"] = false
		return state
	}
	state["isArmed"] = true
	state["currentArmLevel"] = armLevels[idx]
	return state
}

func (s *SecuritySystemStrategy) Execute(ctx context.Context, svc *model.Service, cmd smarthome.Command) (smarthome.Result, error) {
	exec, ok := cmd.First()
	if !ok {
		return missingCommand(svc)
	}
	switch exec.Command {
	case smarthome.CommandArmDisarm:
		p, err := smarthome.DecodeParams[smarthome.ArmDisarmParams](exec)
		if err != nil {
			return invalidParams(svc, err)
		}
		if m := lacking(svc, hap.SecuritySystemTargetState); m != "" {
			return notSupported(svc, m)
		}
		// Disarming always targets OFF, whatever level was sent.
		target := armLevelOff
		if *p.Arm {
			idx, ok := armLevelIndex(p.ArmLevel)
			if !ok {
				return failure(svc, fmt.Sprintf("unknown arm level %q", p.ArmLevel))
			}
			target = idx
		}
		if err := write(ctx, svc, hap.SecuritySystemTargetState, target); err != nil {
			return nil, err
		}
		return smarthome.Success{
			IDs: []string{svc.UniqueID},
			States: smarthome.State{
				"isArmed":         *p.Arm,
				"currentArmLevel": p.ArmLevel,
			},
		}, nil
	}
	return unknownCommand(svc, exec.Command)
}

// RequiresTwoFactor guards disarming. Arming never needs a pin.
func (s *SecuritySystemStrategy) RequiresTwoFactor(cmd smarthome.Command) bool {
	exec, ok := cmd.First()
	if !ok || exec.Command != smarthome.CommandArmDisarm {
		return false
	}
	p, err := smarthome.DecodeParams[smarthome.ArmDisarmParams](exec)
	if err != nil {
		return false
	}
	return !*p.Arm
}
