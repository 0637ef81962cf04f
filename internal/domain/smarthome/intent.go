package smarthome

import "encoding/json"

// Intents.
const (
	IntentSync       = "action.devices.SYNC"
	IntentQuery      = "action.devices.QUERY"
	IntentExecute    = "action.devices.EXECUTE"
	IntentDisconnect = "action.devices.DISCONNECT"
)

type Input struct {
	Intent  string          `json:"intent"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Request struct {
	RequestID string  `json:"requestId"`
	Inputs    []Input `json:"inputs"`
}

type QueryPayload struct {
	Devices []DeviceRef `json:"devices"`
}

type ExecutePayload struct {
	Commands []Command `json:"commands"`
}

type Response struct {
	RequestID string      `json:"requestId"`
	Payload   interface{} `json:"payload,omitempty"`
}

type SyncResponsePayload struct {
	AgentUserID string       `json:"agentUserId"`
	Devices     []SyncDevice `json:"devices"`
}

type QueryResponsePayload struct {
	Devices map[string]State `json:"devices"`
}

type ExecuteResponsePayload struct {
	Commands []ResponseCommand `json:"commands"`
}

type ErrorPayload struct {
	ErrorCode   string `json:"errorCode"`
	DebugString string `json:"debugString,omitempty"`
}
