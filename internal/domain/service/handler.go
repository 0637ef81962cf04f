package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"hap-gsh-bridge/internal/domain/smarthome"
	"hap-gsh-bridge/internal/ports"
)

// Intent error codes.
const (
	ErrorCodeProtocol     = "protocolError"
	ErrorCodeNotSupported = "notSupported"
	ErrorCodeTransient    = "transientError"
)

// IntentHandler answers fulfillment requests from the cloud relay.
type IntentHandler struct {
	bridge *BridgeService
	logger *zap.Logger
}

var _ ports.IntentHandler = (*IntentHandler)(nil)

func NewIntentHandler(bridge *BridgeService) *IntentHandler {
	return &IntentHandler{
		bridge: bridge,
		logger: bridge.logger.Named("intents"),
	}
}

// Handle serves the first input of req. Requests carry a single intent.
func (h *IntentHandler) Handle(ctx context.Context, req smarthome.Request) smarthome.Response {
	resp := smarthome.Response{RequestID: req.RequestID}
	if len(req.Inputs) == 0 {
		resp.Payload = smarthome.ErrorPayload{ErrorCode: ErrorCodeProtocol, DebugString: "no inputs"}
		return resp
	}
	input := req.Inputs[0]
	h.logger.Debug("intent received", zap.String("intent", input.Intent), zap.String("requestId", req.RequestID))

	switch input.Intent {
	case smarthome.IntentSync:
		devices, err := h.bridge.Sync(ctx)
		if err != nil {
			return h.failed(resp, err)
		}
		resp.Payload = smarthome.SyncResponsePayload{
			AgentUserID: h.bridge.cfg.AgentUserID(),
			Devices:     devices,
		}
		// The cloud expects current state right after a sync.
		reportCtx := context.WithoutCancel(ctx)
		go func() {
			if err := h.bridge.SendFullStateReport(reportCtx); err != nil {
				h.logger.Warn("state report after sync failed", zap.Error(err))
			}
		}()

	case smarthome.IntentQuery:
		var p smarthome.QueryPayload
		if err := json.Unmarshal(input.Payload, &p); err != nil {
			resp.Payload = smarthome.ErrorPayload{ErrorCode: ErrorCodeProtocol, DebugString: err.Error()}
			return resp
		}
		states, err := h.bridge.Query(ctx, p.Devices)
		if err != nil {
			return h.failed(resp, err)
		}
		resp.Payload = smarthome.QueryResponsePayload{Devices: states}

	case smarthome.IntentExecute:
		var p smarthome.ExecutePayload
		if err := json.Unmarshal(input.Payload, &p); err != nil {
			resp.Payload = smarthome.ErrorPayload{ErrorCode: ErrorCodeProtocol, DebugString: err.Error()}
			return resp
		}
		results, err := h.bridge.Execute(ctx, p.Commands)
		if err != nil {
			return h.failed(resp, err)
		}
		resp.Payload = smarthome.ExecuteResponsePayload{Commands: smarthome.EncodeAll(results)}

	case smarthome.IntentDisconnect:
		h.logger.Info("account unlinked by the cloud")

	default:
		resp.Payload = smarthome.ErrorPayload{ErrorCode: ErrorCodeNotSupported, DebugString: input.Intent}
	}
	return resp
}

func (h *IntentHandler) failed(resp smarthome.Response, err error) smarthome.Response {
	h.logger.Error("intent failed", zap.String("requestId", resp.RequestID), zap.Error(err))
	resp.Payload = smarthome.ErrorPayload{ErrorCode: ErrorCodeTransient, DebugString: err.Error()}
	return resp
}
