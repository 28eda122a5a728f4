package klf200

// systemTableEntryLen is the size of one system table entry per spec.md
// §4.3: index (1), actuator address (3), actuator type (2), power state
// (1), manufacturer (1), backbone address (3).
const systemTableEntryLen = 11

// SystemTableEntry is one row of the gateway's internal actuator address
// table, as streamed by GW_CS_GET_SYSTEMTABLE_DATA_NTF.
type SystemTableEntry struct {
	Index           byte     `json:"index"`
	ActuatorAddress []byte   `json:"actuator_address"`
	NodeType        NodeType `json:"node_type"`
	PowerState      byte     `json:"power_state"`
	Manufacturer    byte     `json:"manufacturer"`
	Backbone        []byte   `json:"backbone"`
}

func init() {
	register(&Descriptor{
		ID:           idSystemTableDataReq,
		Name:         "GW_CS_GET_SYSTEMTABLE_DATA_REQ",
		Role:         RoleRequest,
		SpawnsStream: true,
		Encode:       encodeEmpty,
	})
	register(&Descriptor{
		ID:     idSystemTableDataCfm,
		Name:   "GW_CS_GET_SYSTEMTABLE_DATA_CFM",
		Role:   RoleConfirmation,
		ReqID:  idSystemTableDataReq,
		Decode: decodeSystemTableDataCfm,
	})
	register(&Descriptor{
		ID:     idSystemTableDataNtf,
		Name:   "GW_CS_GET_SYSTEMTABLE_DATA_NTF",
		Role:   RoleNotification,
		ReqID:  idSystemTableDataReq,
		Decode: decodeSystemTableDataNtf,
	})
}

func decodeSystemTableDataCfm(payload []byte, _ *sessionAccumulator) (any, bool, error) {
	if len(payload) < 1 {
		return nil, false, ErrPayloadTooShort
	}
	return struct {
		Status byte `json:"status"`
	}{Status: payload[0]}, false, nil
}

// decodeSystemTableDataNtf parses a packed batch of entries, terminating the
// stream once the trailing "remaining entries" count reaches zero.
func decodeSystemTableDataNtf(payload []byte, acc *sessionAccumulator) (any, bool, error) {
	if len(payload) < 2 {
		return nil, false, ErrPayloadTooShort
	}
	count := int(payload[0])
	need := 1 + count*systemTableEntryLen + 1
	if len(payload) < need {
		return nil, false, ErrPayloadTooShort
	}
	entries := make([]*SystemTableEntry, 0, count)
	for i := 0; i < count; i++ {
		off := 1 + i*systemTableEntryLen
		entry := &SystemTableEntry{
			Index:           payload[off],
			ActuatorAddress: append([]byte(nil), payload[off+1:off+4]...),
			NodeType:        NodeType(uint16(payload[off+4])<<8 | uint16(payload[off+5])),
			PowerState:      payload[off+6],
			Manufacturer:    payload[off+7],
			Backbone:        append([]byte(nil), payload[off+8:off+11]...),
		}
		entries = append(entries, entry)
		acc.Append(entry)
	}
	remaining := payload[need-1]
	return entries, remaining == 0, nil
}
