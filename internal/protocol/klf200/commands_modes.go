package klf200

import "encoding/binary"

// ActivateProductGroupParams is the params for GW_ACTIVATE_PRODUCTGROUP_REQ:
// move every member of a group to a main parameter position in one session,
// the group analogue of GW_COMMAND_SEND_REQ.
type ActivateProductGroupParams struct {
	Session
	CommandOriginator byte     `json:"command_originator"`
	PriorityLevel     Priority `json:"priority_level"`
	GroupID           byte     `json:"group_id"`
	MainParameter     Position `json:"main_parameter"`
}

// ActivateProductGroupResult is GW_ACTIVATE_PRODUCTGROUP_CFM decoded.
type ActivateProductGroupResult struct {
	SessionID uint16 `json:"session_id"`
	Accepted  bool   `json:"accepted"`
}

// ModeSendParams carries a raw payload straight through to
// GW_MODE_SEND_REQ. The technical specification revisions in the retrieval
// pack disagree on whether this command exists and what it carries (see
// DESIGN.md's Open Question resolution); rather than guess at a payload
// shape, it is registered decoder-less and the caller supplies the exact
// bytes to send.
type ModeSendParams struct {
	Raw []byte `json:"raw"`
}

func init() {
	register(&Descriptor{
		ID:             idActivateProductGroupReq,
		Name:           "GW_ACTIVATE_PRODUCTGROUP_REQ",
		Role:           RoleRequest,
		CarriesSession: true,
		SpawnsStream:   true,
		Encode:         encodeActivateProductGroupReq,
	})
	register(&Descriptor{
		ID:             idActivateProductGroupCfm,
		Name:           "GW_ACTIVATE_PRODUCTGROUP_CFM",
		Role:           RoleConfirmation,
		CarriesSession: true,
		Decode:         decodeActivateProductGroupCfm,
	})
	register(&Descriptor{
		ID:             idActivateProductGroupNtf,
		Name:           "GW_ACTIVATE_PRODUCTGROUP_NTF",
		Role:           RoleNotification,
		CarriesSession: true,
		IsTerminator:   true,
		// Decode intentionally nil: registered but decoder-less, see
		// DESIGN.md. Observers get the raw payload on the notification
		// event; the request's result is the session accumulator.
	})

	register(&Descriptor{
		ID:     idModeSendReq,
		Name:   "GW_MODE_SEND_REQ",
		Role:   RoleRequest,
		Encode: encodeModeSendReq,
	})
	register(&Descriptor{
		ID:    idModeSendCfm,
		Name:  "GW_MODE_SEND_CFM",
		Role:  RoleConfirmation,
		ReqID: idModeSendReq,
		// Decode intentionally nil, see above.
	})
	register(&Descriptor{
		ID:    idModeSendNtf,
		Name:  "GW_MODE_SEND_NTF",
		Role:  RoleNotification,
		ReqID: idModeSendReq,
		// Decode intentionally nil, see above.
	})
}

func encodeActivateProductGroupReq(params any) ([]byte, error) {
	p, ok := params.(*ActivateProductGroupParams)
	if !ok {
		return nil, errWrongParamsType("GW_ACTIVATE_PRODUCTGROUP_REQ", params)
	}
	buf := make([]byte, 7)
	binary.BigEndian.PutUint16(buf[0:2], p.ID)
	buf[2] = p.CommandOriginator
	buf[3] = byte(p.PriorityLevel)
	buf[4] = p.GroupID
	putPosition(buf[5:7], p.MainParameter)
	return buf, nil
}

func decodeActivateProductGroupCfm(payload []byte, _ *sessionAccumulator) (any, bool, error) {
	if len(payload) < 3 {
		return nil, false, ErrPayloadTooShort
	}
	sid := binary.BigEndian.Uint16(payload[0:2])
	return &ActivateProductGroupResult{SessionID: sid, Accepted: payload[2] != 0}, false, nil
}

func encodeModeSendReq(params any) ([]byte, error) {
	p, ok := params.(*ModeSendParams)
	if !ok {
		return nil, errWrongParamsType("GW_MODE_SEND_REQ", params)
	}
	return append([]byte(nil), p.Raw...), nil
}
