package klf200

import "encoding/binary"

// Priority is the gateway's command priority level (0 highest / human
// override, through 7 lowest / protection).
type Priority byte

const (
	PriorityHuman       Priority = 0
	PriorityComfort     Priority = 2
	PriorityUserLevel1  Priority = 5
	PriorityUserLevel2  Priority = 6
)

const maxNodesPerCommand = 20

// CommandSendParams is the params for GW_COMMAND_SEND_REQ: move one or more
// nodes to a main parameter position (and, optionally, up to 16 functional
// parameter positions).
type CommandSendParams struct {
	Session
	CommandOriginator byte       `json:"command_originator"`
	PriorityLevel     Priority   `json:"priority_level"`
	NodeIDs           []byte     `json:"node_ids"`
	MainParameter     Position   `json:"main_parameter"`
	FunctionalParams  []Position `json:"functional_params,omitempty"` // up to 16; shorter slices pad with "ignore"
}

// CommandSendResult is GW_COMMAND_SEND_CFM decoded: whether the gateway
// accepted the session before any node actually starts moving.
type CommandSendResult struct {
	SessionID uint16 `json:"session_id"`
	Accepted  bool   `json:"accepted"`
}

// RunStatus is the per-node movement outcome carried by
// GW_COMMAND_RUN_STATUS_NTF.
type RunStatus byte

const (
	RunStatusExecuting     RunStatus = 0
	RunStatusCompleted     RunStatus = 1
	RunStatusFailed        RunStatus = 2
)

func (s RunStatus) String() string {
	switch s {
	case RunStatusExecuting:
		return "executing"
	case RunStatusCompleted:
		return "completed"
	case RunStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CommandRunStatus is one GW_COMMAND_RUN_STATUS_NTF for one node within a
// command-send or scene-activation session. A session produces one of
// these per node it targets, in any order, before GW_SESSION_FINISHED_NTF.
type CommandRunStatus struct {
	SessionID      uint16    `json:"session_id"`
	StatusOwner    byte      `json:"status_owner"`
	NodeID         byte      `json:"node_id"`
	NodeParameter  byte      `json:"node_parameter"`
	ParameterValue Position  `json:"parameter_value"`
	RunStatus      RunStatus `json:"run_status"`
	StatusReply    byte      `json:"status_reply"`
}

// SessionFinished is GW_SESSION_FINISHED_NTF decoded: the session-wide
// terminator for any session-carrying command (command send, status
// request, wink, activate scene, activate product group).
type SessionFinished struct {
	SessionID uint16 `json:"session_id"`
}

// StatusRequestParams is the params for GW_STATUS_REQUEST_REQ.
type StatusRequestParams struct {
	Session
	NodeIDs        []byte `json:"node_ids"`
	StatusType     byte   `json:"status_type"`
	FuncParamIndex byte   `json:"func_param_index"`
}

// StatusRequestResult is GW_STATUS_REQUEST_CFM decoded.
type StatusRequestResult struct {
	SessionID uint16 `json:"session_id"`
	Accepted  bool   `json:"accepted"`
}

// NodeStatus is one GW_STATUS_REQUEST_NTF: a node's reported status for the
// requested functional parameter.
type NodeStatus struct {
	SessionID  uint16   `json:"session_id"`
	NodeID     byte     `json:"node_id"`
	StatusType byte     `json:"status_type"`
	Value      Position `json:"value"`
}

// WinkSendParams is the params for GW_WINK_SEND_REQ: briefly jog a node so
// it's visually identifiable.
type WinkSendParams struct {
	Session
	CommandOriginator byte     `json:"command_originator"`
	PriorityLevel     Priority `json:"priority_level"`
	EnableWink        bool     `json:"enable_wink"`
	WinkTimeSeconds   byte     `json:"wink_time_seconds"`
	NodeIDs           []byte   `json:"node_ids"`
}

// WinkResult is GW_WINK_SEND_CFM/_NTF decoded.
type WinkResult struct {
	SessionID uint16 `json:"session_id"`
	Accepted  bool   `json:"accepted"`
}

func init() {
	register(&Descriptor{
		ID:             idCommandSendReq,
		Name:           "GW_COMMAND_SEND_REQ",
		Role:           RoleRequest,
		CarriesSession: true,
		SpawnsStream:   true,
		Encode:         encodeCommandSendReq,
	})
	register(&Descriptor{
		ID:             idCommandSendCfm,
		Name:           "GW_COMMAND_SEND_CFM",
		Role:           RoleConfirmation,
		CarriesSession: true,
		Decode:         decodeCommandSendCfm,
	})
	register(&Descriptor{
		ID:             idCommandRunStatusNtf,
		Name:           "GW_COMMAND_RUN_STATUS_NTF",
		Role:           RoleNotification,
		CarriesSession: true,
		Decode:         decodeCommandRunStatusNtf,
	})
	register(&Descriptor{
		ID:             idSessionFinishedNtf,
		Name:           "GW_SESSION_FINISHED_NTF",
		Role:           RoleNotification,
		CarriesSession: true,
		IsTerminator:   true,
		Decode:         decodeSessionFinishedNtf,
	})

	register(&Descriptor{
		ID:             idStatusRequestReq,
		Name:           "GW_STATUS_REQUEST_REQ",
		Role:           RoleRequest,
		CarriesSession: true,
		SpawnsStream:   true,
		Encode:         encodeStatusRequestReq,
	})
	register(&Descriptor{
		ID:             idStatusRequestCfm,
		Name:           "GW_STATUS_REQUEST_CFM",
		Role:           RoleConfirmation,
		CarriesSession: true,
		Decode:         decodeStatusRequestCfm,
	})
	register(&Descriptor{
		ID:             idStatusRequestNtf,
		Name:           "GW_STATUS_REQUEST_NTF",
		Role:           RoleNotification,
		CarriesSession: true,
		Decode:         decodeStatusRequestNtf,
	})

	register(&Descriptor{
		ID:             idWinkSendReq,
		Name:           "GW_WINK_SEND_REQ",
		Role:           RoleRequest,
		CarriesSession: true,
		SpawnsStream:   true,
		Encode:         encodeWinkSendReq,
	})
	register(&Descriptor{
		ID:             idWinkSendCfm,
		Name:           "GW_WINK_SEND_CFM",
		Role:           RoleConfirmation,
		CarriesSession: true,
		Decode:         decodeWinkCfm,
	})
	register(&Descriptor{
		ID:             idWinkSendNtf,
		Name:           "GW_WINK_SEND_NTF",
		Role:           RoleNotification,
		CarriesSession: true,
		IsTerminator:   true,
		Decode:         decodeWinkNtf,
	})
}

func encodeFunctionalParams(params []Position) []byte {
	buf := make([]byte, 32)
	for i := 0; i < 16; i++ {
		p := Position{Sentinel: "ignore"}
		if i < len(params) {
			p = params[i]
		}
		putPosition(buf[i*2:i*2+2], p)
	}
	return buf
}

func encodeNodeIndexArray(nodeIDs []byte) []byte {
	buf := make([]byte, 1+maxNodesPerCommand)
	buf[0] = byte(len(nodeIDs))
	copy(buf[1:], nodeIDs)
	return buf
}

func encodeCommandSendReq(params any) ([]byte, error) {
	p, ok := params.(*CommandSendParams)
	if !ok {
		return nil, errWrongParamsType("GW_COMMAND_SEND_REQ", params)
	}
	buf := make([]byte, 0, 75)
	var sid [2]byte
	binary.BigEndian.PutUint16(sid[:], p.ID)
	buf = append(buf, sid[:]...)
	buf = append(buf, p.CommandOriginator, byte(p.PriorityLevel), 0x01)
	buf = append(buf, 0x00, 0x00, 0x00, 0x00) // FPI1/FPI2 active masks, unused
	var mp [2]byte
	putPosition(mp[:], p.MainParameter)
	buf = append(buf, mp[:]...)
	buf = append(buf, encodeFunctionalParams(p.FunctionalParams)...)
	buf = append(buf, encodeNodeIndexArray(p.NodeIDs)...)
	buf = append(buf, 0x00, 0x00)            // priority level lock
	buf = append(buf, make([]byte, 8)...)    // lock priorities
	buf = append(buf, 0x00)                  // originator
	return buf, nil
}

func decodeCommandSendCfm(payload []byte, _ *sessionAccumulator) (any, bool, error) {
	if len(payload) < 3 {
		return nil, false, ErrPayloadTooShort
	}
	sid := binary.BigEndian.Uint16(payload[0:2])
	return &CommandSendResult{SessionID: sid, Accepted: payload[2] != 0}, false, nil
}

func decodeCommandRunStatusNtf(payload []byte, acc *sessionAccumulator) (any, bool, error) {
	if len(payload) < 13 {
		return nil, false, ErrPayloadTooShort
	}
	rs := &CommandRunStatus{
		SessionID:      binary.BigEndian.Uint16(payload[0:2]),
		StatusOwner:    payload[2],
		NodeID:         payload[3],
		NodeParameter:  payload[4],
		ParameterValue: readPosition(payload[5:7]),
		RunStatus:      RunStatus(payload[7]),
		StatusReply:    payload[8],
	}
	acc.Append(rs)
	return rs, false, nil
}

// decodeSessionFinishedNtf returns the plain session-finished marker; the
// engine's dispatcher substitutes the accumulated run-status list (built by
// decodeCommandRunStatusNtf/decodeStatusRequestNtf) as the request's actual
// result on this terminator branch, so acc is unused here.
func decodeSessionFinishedNtf(payload []byte, _ *sessionAccumulator) (any, bool, error) {
	sid, err := readSessionID(payload)
	if err != nil {
		return nil, false, err
	}
	return &SessionFinished{SessionID: sid}, true, nil
}

func encodeStatusRequestReq(params any) ([]byte, error) {
	p, ok := params.(*StatusRequestParams)
	if !ok {
		return nil, errWrongParamsType("GW_STATUS_REQUEST_REQ", params)
	}
	buf := make([]byte, 0, 25)
	var sid [2]byte
	binary.BigEndian.PutUint16(sid[:], p.ID)
	buf = append(buf, sid[:]...)
	buf = append(buf, encodeNodeIndexArray(p.NodeIDs)...)
	buf = append(buf, p.StatusType, p.FuncParamIndex)
	return buf, nil
}

func decodeStatusRequestCfm(payload []byte, _ *sessionAccumulator) (any, bool, error) {
	if len(payload) < 3 {
		return nil, false, ErrPayloadTooShort
	}
	sid := binary.BigEndian.Uint16(payload[0:2])
	return &StatusRequestResult{SessionID: sid, Accepted: payload[2] != 0}, false, nil
}

func decodeStatusRequestNtf(payload []byte, acc *sessionAccumulator) (any, bool, error) {
	if len(payload) < 6 {
		return nil, false, ErrPayloadTooShort
	}
	ns := &NodeStatus{
		SessionID:  binary.BigEndian.Uint16(payload[0:2]),
		NodeID:     payload[2],
		StatusType: payload[3],
		Value:      readPosition(payload[4:6]),
	}
	acc.Append(ns)
	return ns, false, nil
}

func encodeWinkSendReq(params any) ([]byte, error) {
	p, ok := params.(*WinkSendParams)
	if !ok {
		return nil, errWrongParamsType("GW_WINK_SEND_REQ", params)
	}
	buf := make([]byte, 0, 27)
	var sid [2]byte
	binary.BigEndian.PutUint16(sid[:], p.ID)
	buf = append(buf, sid[:]...)
	buf = append(buf, p.CommandOriginator, byte(p.PriorityLevel))
	enable := byte(0)
	if p.EnableWink {
		enable = 1
	}
	buf = append(buf, enable, p.WinkTimeSeconds)
	buf = append(buf, encodeNodeIndexArray(p.NodeIDs)...)
	return buf, nil
}

func decodeWinkCfm(payload []byte, _ *sessionAccumulator) (any, bool, error) {
	if len(payload) < 3 {
		return nil, false, ErrPayloadTooShort
	}
	sid := binary.BigEndian.Uint16(payload[0:2])
	return &WinkResult{SessionID: sid, Accepted: payload[2] != 0}, false, nil
}

func decodeWinkNtf(payload []byte, acc *sessionAccumulator) (any, bool, error) {
	if len(payload) < 3 {
		return nil, false, ErrPayloadTooShort
	}
	sid := binary.BigEndian.Uint16(payload[0:2])
	res := &WinkResult{SessionID: sid, Accepted: payload[2] != 0}
	acc.Set(res)
	return res, true, nil
}
