package klf200

import "encoding/binary"

// groupRecordLen is smaller than a node record: name, type, membership
// bitmap, no per-node position fields. Must match the sum of the fields
// decodeGroupRecord actually reads (73 header bytes + a 25-byte bitmap) —
// a larger value here would reject genuine records as too short.
const groupRecordLen = 73 + 25

// Group is a decoded group information record: analogous to Node, but
// carrying a 200-bit (25-byte) membership bitmap instead of position
// fields — a group is a named set of nodes, not an actuator itself.
type Group struct {
	ID          byte     `json:"id"`
	Order       uint16   `json:"order"`
	Placement   byte     `json:"placement"`
	Name        string   `json:"name"`
	Velocity    Velocity `json:"velocity"`
	NodeType    NodeType `json:"node_type"`
	GroupType   byte     `json:"group_type"`
	NodeCount   byte     `json:"node_count"`
	Members     []byte   `json:"members"` // 25-byte bitmap, bit i set => node i is a member
}

func decodeGroupRecord(data []byte) (*Group, error) {
	if len(data) < groupRecordLen {
		return nil, ErrPayloadTooShort
	}
	return &Group{
		ID:        data[0],
		Order:     binary.BigEndian.Uint16(data[1:3]),
		Placement: data[3],
		Name:      fieldString(data[4:68]),
		Velocity:  Velocity(data[68]),
		NodeType:  NodeType(binary.BigEndian.Uint16(data[69:71])),
		GroupType: data[71],
		NodeCount: data[72],
		Members:   append([]byte(nil), data[73:98]...),
	}, nil
}

// IsMember reports whether nodeID is set in the group's membership bitmap.
func (g *Group) IsMember(nodeID byte) bool {
	idx := int(nodeID) / 8
	if idx >= len(g.Members) {
		return false
	}
	return g.Members[idx]&(1<<(7-nodeID%8)) != 0
}

// GroupInformationParams is the params for GW_GET_GROUP_INFORMATION_REQ.
type GroupInformationParams struct {
	GroupID byte `json:"group_id"`
}

// AllGroupsCount is GW_GET_ALL_GROUPS_INFORMATION_CFM decoded.
type AllGroupsCount struct {
	TotalGroups byte `json:"total_groups"`
}

func init() {
	register(&Descriptor{
		ID:           idGetGroupInformationReq,
		Name:         "GW_GET_GROUP_INFORMATION_REQ",
		Role:         RoleRequest,
		SpawnsStream: true,
		Encode:       encodeGroupInformationReq,
	})
	register(&Descriptor{
		ID:     idGetGroupInformationCfm,
		Name:   "GW_GET_GROUP_INFORMATION_CFM",
		Role:   RoleConfirmation,
		ReqID:  idGetGroupInformationReq,
		Decode: decodeGroupInformationCfm,
	})
	register(&Descriptor{
		ID:           idGetGroupInformationNtf,
		Name:         "GW_GET_GROUP_INFORMATION_NTF",
		Role:         RoleNotification,
		ReqID:        idGetGroupInformationReq,
		IsTerminator: true,
		Decode:       decodeGroupRecordNtf,
	})

	register(&Descriptor{
		ID:           idGetAllGroupsInformationReq,
		Name:         "GW_GET_ALL_GROUPS_INFORMATION_REQ",
		Role:         RoleRequest,
		SpawnsStream: true,
		Encode:       encodeEmpty,
	})
	register(&Descriptor{
		ID:     idGetAllGroupsInformationCfm,
		Name:   "GW_GET_ALL_GROUPS_INFORMATION_CFM",
		Role:   RoleConfirmation,
		ReqID:  idGetAllGroupsInformationReq,
		Decode: decodeAllGroupsInformationCfm,
	})
	register(&Descriptor{
		ID:     idGetAllGroupsInformationNtf,
		Name:   "GW_GET_ALL_GROUPS_INFORMATION_NTF",
		Role:   RoleNotification,
		ReqID:  idGetAllGroupsInformationReq,
		Decode: decodeAllGroupsInformationNtf,
	})
	register(&Descriptor{
		ID:           idGetAllGroupsInformationFinishedNtf,
		Name:         "GW_GET_ALL_GROUPS_INFORMATION_FINISHED_NTF",
		Role:         RoleNotification,
		ReqID:        idGetAllGroupsInformationReq,
		IsTerminator: true,
		Decode:       decodeAllGroupsInformationFinishedNtf,
	})
}

func encodeGroupInformationReq(params any) ([]byte, error) {
	p, ok := params.(*GroupInformationParams)
	if !ok {
		return nil, errWrongParamsType("GW_GET_GROUP_INFORMATION_REQ", params)
	}
	return []byte{p.GroupID}, nil
}

func decodeGroupInformationCfm(payload []byte, _ *sessionAccumulator) (any, bool, error) {
	if len(payload) < 2 {
		return nil, false, ErrPayloadTooShort
	}
	if payload[0] != 0 {
		return nil, false, &DomainError{Command: "GW_GET_GROUP_INFORMATION_CFM", Code: int(payload[0]), Message: "invalid group index"}
	}
	return struct {
		GroupID byte `json:"group_id"`
	}{GroupID: payload[1]}, false, nil
}

func decodeGroupRecordNtf(payload []byte, acc *sessionAccumulator) (any, bool, error) {
	g, err := decodeGroupRecord(payload)
	if err != nil {
		return nil, false, err
	}
	acc.Set(g)
	return g, true, nil
}

func decodeAllGroupsInformationCfm(payload []byte, _ *sessionAccumulator) (any, bool, error) {
	if len(payload) < 2 {
		return nil, false, ErrPayloadTooShort
	}
	if payload[0] != 0 {
		return nil, false, &DomainError{Command: "GW_GET_ALL_GROUPS_INFORMATION_CFM", Code: int(payload[0]), Message: "no groups defined"}
	}
	return &AllGroupsCount{TotalGroups: payload[1]}, false, nil
}

func decodeAllGroupsInformationNtf(payload []byte, acc *sessionAccumulator) (any, bool, error) {
	g, err := decodeGroupRecord(payload)
	if err != nil {
		return nil, false, err
	}
	acc.Append(g)
	return g, false, nil
}

func decodeAllGroupsInformationFinishedNtf(_ []byte, acc *sessionAccumulator) (any, bool, error) {
	return acc.result(), true, nil
}
