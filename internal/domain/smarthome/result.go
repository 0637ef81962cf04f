package smarthome

// Execution statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
	StatusOffline = "OFFLINE"
	StatusPending = "PENDING"
)

// Error codes.
const (
	ErrorCodeChallengeNeeded = "challengeNeeded"
	ErrorCodeDeviceNotFound  = "deviceNotFound"
	ChallengePinNeeded       = "pinNeeded"
)

// Result is the outcome of executing a command against one device.
// It is one of Success, Error, ChallengeNeeded or Offline.
type Result interface {
	DeviceIDs() []string
	isResult()
}

type Success struct {
	IDs    []string
	States State
}

type Error struct {
	IDs         []string
	DebugString string
}

// ChallengeNeeded asks the user to confirm a security-sensitive command with a pin.
type ChallengeNeeded struct {
	IDs []string
}

// Offline is returned for devices the bridge does not hold.
type Offline struct {
	IDs []string
}

func (r Success) DeviceIDs() []string         { return r.IDs }
func (r Error) DeviceIDs() []string           { return r.IDs }
func (r ChallengeNeeded) DeviceIDs() []string { return r.IDs }
func (r Offline) DeviceIDs() []string         { return r.IDs }

func (Success) isResult()         {}
func (Error) isResult()           {}
func (ChallengeNeeded) isResult() {}
func (Offline) isResult()         {}

type ChallengeType struct {
	Type string `json:"type"`
}

// ResponseCommand is the wire form of a Result.
type ResponseCommand struct {
	IDs             []string       `json:"ids"`
	Status          string         `json:"status"`
	States          State          `json:"states,omitempty"`
	ErrorCode       string         `json:"errorCode,omitempty"`
	DebugString     string         `json:"debugString,omitempty"`
	ChallengeNeeded *ChallengeType `json:"challengeNeeded,omitempty"`
}

func Encode(r Result) ResponseCommand {
	switch v := r.(type) {
	case Success:
		return ResponseCommand{IDs: v.IDs, Status: StatusSuccess, States: v.States}
	case Error:
		return ResponseCommand{IDs: v.IDs, Status: StatusError, DebugString: v.DebugString}
	case ChallengeNeeded:
		return ResponseCommand{
			IDs:             v.IDs,
			Status:          StatusError,
			ErrorCode:       ErrorCodeChallengeNeeded,
			ChallengeNeeded: &ChallengeType{Type: ChallengePinNeeded},
		}
	case Offline:
		return ResponseCommand{IDs: v.IDs, Status: StatusOffline, ErrorCode: ErrorCodeDeviceNotFound}
	}
	return ResponseCommand{IDs: r.DeviceIDs(), Status: StatusError, DebugString: "unknown result"}
}

func EncodeAll(results []Result) []ResponseCommand {
	out := make([]ResponseCommand, 0, len(results))
	for _, r := range results {
		out = append(out, Encode(r))
	}
	return out
}
