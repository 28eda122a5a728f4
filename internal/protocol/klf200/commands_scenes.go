package klf200

import "encoding/binary"

// Scene is one entry from GW_GET_SCENE_LIST_NTF: a named, pre-programmed
// set of node positions the gateway can activate as a single command.
type Scene struct {
	ID   byte   `json:"id"`
	Name string `json:"name"`
}

// ActivateSceneParams is the params for GW_ACTIVATE_SCENE_REQ.
type ActivateSceneParams struct {
	Session
	CommandOriginator byte     `json:"command_originator"`
	PriorityLevel     Priority `json:"priority_level"`
	SceneID           byte     `json:"scene_id"`
	VelocityOverride  Velocity `json:"velocity_override"`
}

// ActivateSceneResult is GW_ACTIVATE_SCENE_CFM decoded.
type ActivateSceneResult struct {
	SessionID uint16 `json:"session_id"`
	Accepted  bool   `json:"accepted"`
}

func init() {
	register(&Descriptor{
		ID:           idGetSceneListReq,
		Name:         "GW_GET_SCENE_LIST_REQ",
		Role:         RoleRequest,
		SpawnsStream: true,
		Encode:       encodeEmpty,
	})
	register(&Descriptor{
		ID:     idGetSceneListCfm,
		Name:   "GW_GET_SCENE_LIST_CFM",
		Role:   RoleConfirmation,
		ReqID:  idGetSceneListReq,
		Decode: decodeSceneListCfm,
	})
	register(&Descriptor{
		ID:     idGetSceneListNtf,
		Name:   "GW_GET_SCENE_LIST_NTF",
		Role:   RoleNotification,
		ReqID:  idGetSceneListReq,
		Decode: decodeSceneListNtf,
	})

	register(&Descriptor{
		ID:             idActivateSceneReq,
		Name:           "GW_ACTIVATE_SCENE_REQ",
		Role:           RoleRequest,
		CarriesSession: true,
		SpawnsStream:   true,
		Encode:         encodeActivateSceneReq,
	})
	register(&Descriptor{
		ID:             idActivateSceneCfm,
		Name:           "GW_ACTIVATE_SCENE_CFM",
		Role:           RoleConfirmation,
		CarriesSession: true,
		Decode:         decodeActivateSceneCfm,
	})
}

func decodeSceneListCfm(payload []byte, _ *sessionAccumulator) (any, bool, error) {
	if len(payload) < 1 {
		return nil, false, ErrPayloadTooShort
	}
	return struct {
		TotalScenes byte `json:"total_scenes"`
	}{TotalScenes: payload[0]}, false, nil
}

// decodeSceneListNtf mirrors decodeSystemTableDataNtf's packed-batch shape:
// a count byte, that many 65-byte scene entries (id + 64-byte name), and a
// trailing remaining-entries count that drives stream termination.
func decodeSceneListNtf(payload []byte, acc *sessionAccumulator) (any, bool, error) {
	if len(payload) < 2 {
		return nil, false, ErrPayloadTooShort
	}
	count := int(payload[0])
	const entryLen = 65
	need := 1 + count*entryLen + 1
	if len(payload) < need {
		return nil, false, ErrPayloadTooShort
	}
	scenes := make([]*Scene, 0, count)
	for i := 0; i < count; i++ {
		off := 1 + i*entryLen
		scene := &Scene{ID: payload[off], Name: fieldString(payload[off+1 : off+entryLen])}
		scenes = append(scenes, scene)
		acc.Append(scene)
	}
	remaining := payload[need-1]
	return scenes, remaining == 0, nil
}

func encodeActivateSceneReq(params any) ([]byte, error) {
	p, ok := params.(*ActivateSceneParams)
	if !ok {
		return nil, errWrongParamsType("GW_ACTIVATE_SCENE_REQ", params)
	}
	buf := make([]byte, 6)
	binary.BigEndian.PutUint16(buf[0:2], p.ID)
	buf[2] = p.CommandOriginator
	buf[3] = byte(p.PriorityLevel)
	buf[4] = p.SceneID
	buf[5] = byte(p.VelocityOverride)
	return buf, nil
}

func decodeActivateSceneCfm(payload []byte, _ *sessionAccumulator) (any, bool, error) {
	if len(payload) < 3 {
		return nil, false, ErrPayloadTooShort
	}
	sid := binary.BigEndian.Uint16(payload[0:2])
	return &ActivateSceneResult{SessionID: sid, Accepted: payload[2] != 0}, false, nil
}
