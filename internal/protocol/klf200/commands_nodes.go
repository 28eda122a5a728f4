package klf200

import "encoding/binary"

// nodeRecordLen is the fixed size of a node information record, per the
// GW_GET_ALL_NODES_INFORMATION_NTF / GW_GET_NODE_INFORMATION_NTF layout.
const nodeRecordLen = 124

// NodeType is the actuator's type/sub-type pair (e.g. interior venetian
// blind, roller shutter, awning).
type NodeType uint16

// NodeState is the gateway's last-known operating state for a node.
type NodeState byte

const (
	NodeStateNonExecuting NodeState = 0
	NodeStateError        NodeState = 1
	NodeStateNotUsed      NodeState = 2
	NodeStateWaiting      NodeState = 3
	NodeStateExecuting    NodeState = 4
	NodeStateDone         NodeState = 5
	NodeStateUnknown      NodeState = 0xFF
)

func (s NodeState) String() string {
	switch s {
	case NodeStateNonExecuting:
		return "non_executing"
	case NodeStateError:
		return "error"
	case NodeStateNotUsed:
		return "not_used"
	case NodeStateWaiting:
		return "waiting"
	case NodeStateExecuting:
		return "executing"
	case NodeStateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Node is a decoded node information record.
type Node struct {
	ID              byte     `json:"id"`
	Order           uint16   `json:"order"`
	Placement       byte     `json:"placement"`
	Name            string   `json:"name"`
	Velocity        Velocity `json:"velocity"`
	NodeType        NodeType `json:"node_type"`
	ProductGroup    byte     `json:"product_group"`
	ProductType     byte     `json:"product_type"`
	NodeVariation   byte     `json:"node_variation"`
	PowerMode       byte     `json:"power_mode"`
	BuildNumber     byte     `json:"build_number"`
	Serial          []byte   `json:"serial"`
	State           NodeState `json:"state"`
	CurrentPosition Position `json:"current_position"`
	TargetPosition  Position `json:"target_position"`
	FunctionalParams [4]Position `json:"functional_params"`
	RemainingTime   uint16   `json:"remaining_time_seconds"`
	Timestamp       uint32   `json:"timestamp"`
	AliasCount      byte     `json:"alias_count"`
}

func decodeNodeRecord(data []byte) (*Node, error) {
	if len(data) < nodeRecordLen {
		return nil, ErrPayloadTooShort
	}
	n := &Node{
		ID:              data[0],
		Order:           binary.BigEndian.Uint16(data[1:3]),
		Placement:       data[3],
		Name:            fieldString(data[4:68]),
		Velocity:        Velocity(data[68]),
		NodeType:        NodeType(binary.BigEndian.Uint16(data[69:71])),
		ProductGroup:    data[71],
		ProductType:     data[72],
		NodeVariation:   data[73],
		PowerMode:       data[74],
		BuildNumber:     data[75],
		Serial:          append([]byte(nil), data[76:84]...),
		State:           NodeState(data[84]),
		CurrentPosition: readPosition(data[85:87]),
		TargetPosition:  readPosition(data[87:89]),
		RemainingTime:   binary.BigEndian.Uint16(data[97:99]),
		Timestamp:       binary.BigEndian.Uint32(data[99:103]),
		AliasCount:      data[103],
	}
	for i := 0; i < 4; i++ {
		n.FunctionalParams[i] = readPosition(data[89+i*2 : 91+i*2])
	}
	return n, nil
}

// NodeInformationParams is the params for GW_GET_NODE_INFORMATION_REQ.
type NodeInformationParams struct {
	NodeID byte `json:"node_id"`
}

// AllNodesCount is GW_GET_ALL_NODES_INFORMATION_CFM decoded: an informational
// confirmation, not the stream's final result (the FINISHED notification is).
type AllNodesCount struct {
	TotalNodes byte `json:"total_nodes"`
}

// NodeStatePositionChanged is the broadcast GW_NODE_STATE_POSITION_CHANGED_NTF
// payload: never correlated to a request or session.
type NodeStatePositionChanged struct {
	NodeID          byte     `json:"node_id"`
	State           NodeState `json:"state"`
	CurrentPosition Position `json:"current_position"`
	TargetPosition  Position `json:"target_position"`
}

func init() {
	register(&Descriptor{
		ID:           idGetNodeInformationReq,
		Name:         "GW_GET_NODE_INFORMATION_REQ",
		Role:         RoleRequest,
		SpawnsStream: true,
		Encode:       encodeNodeInformationReq,
	})
	register(&Descriptor{
		ID:     idGetNodeInformationCfm,
		Name:   "GW_GET_NODE_INFORMATION_CFM",
		Role:   RoleConfirmation,
		ReqID:  idGetNodeInformationReq,
		Decode: decodeNodeInformationCfm,
	})
	register(&Descriptor{
		ID:           idGetNodeInformationNtf,
		Name:         "GW_GET_NODE_INFORMATION_NTF",
		Role:         RoleNotification,
		ReqID:        idGetNodeInformationReq,
		IsTerminator: true,
		Decode:       decodeNodeRecordNtf,
	})

	register(&Descriptor{
		ID:           idGetAllNodesInformationReq,
		Name:         "GW_GET_ALL_NODES_INFORMATION_REQ",
		Role:         RoleRequest,
		SpawnsStream: true,
		Encode:       encodeEmpty,
	})
	register(&Descriptor{
		ID:     idGetAllNodesInformationCfm,
		Name:   "GW_GET_ALL_NODES_INFORMATION_CFM",
		Role:   RoleConfirmation,
		ReqID:  idGetAllNodesInformationReq,
		Decode: decodeAllNodesInformationCfm,
	})
	register(&Descriptor{
		ID:     idGetAllNodesInformationNtf,
		Name:   "GW_GET_ALL_NODES_INFORMATION_NTF",
		Role:   RoleNotification,
		ReqID:  idGetAllNodesInformationReq,
		Decode: decodeAllNodesInformationNtf,
	})
	register(&Descriptor{
		ID:           idGetAllNodesInformationFinishedNtf,
		Name:         "GW_GET_ALL_NODES_INFORMATION_FINISHED_NTF",
		Role:         RoleNotification,
		ReqID:        idGetAllNodesInformationReq,
		IsTerminator: true,
		Decode:       decodeAllNodesInformationFinishedNtf,
	})

	register(&Descriptor{
		ID:        idNodeStatePositionChangedNtf,
		Name:      "GW_NODE_STATE_POSITION_CHANGED_NTF",
		Role:      RoleNotification,
		Broadcast: true,
		Decode:    decodeNodeStatePositionChangedNtf,
	})
}

func encodeNodeInformationReq(params any) ([]byte, error) {
	p, ok := params.(*NodeInformationParams)
	if !ok {
		return nil, errWrongParamsType("GW_GET_NODE_INFORMATION_REQ", params)
	}
	return []byte{p.NodeID}, nil
}

func decodeNodeInformationCfm(payload []byte, _ *sessionAccumulator) (any, bool, error) {
	if len(payload) < 2 {
		return nil, false, ErrPayloadTooShort
	}
	if payload[0] != 0 {
		return nil, false, &DomainError{Command: "GW_GET_NODE_INFORMATION_CFM", Code: int(payload[0]), Message: "invalid node index"}
	}
	return struct {
		NodeID byte `json:"node_id"`
	}{NodeID: payload[1]}, false, nil
}

func decodeNodeRecordNtf(payload []byte, acc *sessionAccumulator) (any, bool, error) {
	n, err := decodeNodeRecord(payload)
	if err != nil {
		return nil, false, err
	}
	acc.Set(n)
	return n, true, nil
}

func decodeAllNodesInformationCfm(payload []byte, _ *sessionAccumulator) (any, bool, error) {
	if len(payload) < 2 {
		return nil, false, ErrPayloadTooShort
	}
	if payload[0] != 0 {
		return nil, false, &DomainError{Command: "GW_GET_ALL_NODES_INFORMATION_CFM", Code: int(payload[0]), Message: "system table is empty"}
	}
	return &AllNodesCount{TotalNodes: payload[1]}, false, nil
}

func decodeAllNodesInformationNtf(payload []byte, acc *sessionAccumulator) (any, bool, error) {
	n, err := decodeNodeRecord(payload)
	if err != nil {
		return nil, false, err
	}
	acc.Append(n)
	return n, false, nil
}

func decodeAllNodesInformationFinishedNtf(_ []byte, acc *sessionAccumulator) (any, bool, error) {
	return acc.result(), true, nil
}

func decodeNodeStatePositionChangedNtf(payload []byte, _ *sessionAccumulator) (any, bool, error) {
	if len(payload) < 20 {
		return nil, false, ErrPayloadTooShort
	}
	return &NodeStatePositionChanged{
		NodeID:          payload[0],
		State:           NodeState(payload[1]),
		CurrentPosition: readPosition(payload[2:4]),
		TargetPosition:  readPosition(payload[4:6]),
	}, true, nil
}
