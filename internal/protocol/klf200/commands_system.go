package klf200

import (
	"encoding/binary"
	"strconv"
	"strings"
)

// VersionInfo is GW_GET_VERSION_CFM decoded: gateway firmware version and
// hardware/product identification.
type VersionInfo struct {
	SoftwareVersion string `json:"software_version"`
	HardwareVersion byte   `json:"hardware_version"`
	ProductGroup    byte   `json:"product_group"`
	ProductType     byte   `json:"product_type"`
}

// ProtocolVersion is GW_GET_PROTOCOL_VERSION_CFM decoded.
type ProtocolVersion struct {
	Major uint16 `json:"major"`
	Minor uint16 `json:"minor"`
}

func (p ProtocolVersion) String() string {
	return strconv.Itoa(int(p.Major)) + "." + strconv.Itoa(int(p.Minor))
}

// GatewayState is GW_GET_STATE_CFM decoded.
type GatewayState struct {
	GatewayState byte   `json:"gateway_state"`
	SubState     byte   `json:"sub_state"`
	StateData    uint32 `json:"state_data"`
}

// NetworkSetup is GW_GET_NETWORK_SETUP_CFM decoded.
type NetworkSetup struct {
	IPAddress string `json:"ip_address"`
	Mask      string `json:"mask"`
	Gateway   string `json:"gateway"`
	DHCP      bool   `json:"dhcp"`
}

func init() {
	register(&Descriptor{ID: idGetVersionReq, Name: "GW_GET_VERSION_REQ", Role: RoleRequest, Encode: encodeEmpty})
	register(&Descriptor{ID: idGetVersionCfm, Name: "GW_GET_VERSION_CFM", Role: RoleConfirmation, ReqID: idGetVersionReq, Decode: decodeVersionCfm})

	register(&Descriptor{ID: idGetProtocolVersionReq, Name: "GW_GET_PROTOCOL_VERSION_REQ", Role: RoleRequest, Encode: encodeEmpty})
	register(&Descriptor{ID: idGetProtocolVersionCfm, Name: "GW_GET_PROTOCOL_VERSION_CFM", Role: RoleConfirmation, ReqID: idGetProtocolVersionReq, Decode: decodeProtocolVersionCfm})

	register(&Descriptor{ID: idGetStateReq, Name: "GW_GET_STATE_REQ", Role: RoleRequest, Encode: encodeEmpty})
	register(&Descriptor{ID: idGetStateCfm, Name: "GW_GET_STATE_CFM", Role: RoleConfirmation, ReqID: idGetStateReq, Decode: decodeStateCfm})

	register(&Descriptor{ID: idGetNetworkSetupReq, Name: "GW_GET_NETWORK_SETUP_REQ", Role: RoleRequest, Encode: encodeEmpty})
	register(&Descriptor{ID: idGetNetworkSetupCfm, Name: "GW_GET_NETWORK_SETUP_CFM", Role: RoleConfirmation, ReqID: idGetNetworkSetupReq, Decode: decodeNetworkSetupCfm})

	register(&Descriptor{ID: idRebootReq, Name: "GW_REBOOT_REQ", Role: RoleRequest, Encode: encodeEmpty})
	register(&Descriptor{ID: idRebootCfm, Name: "GW_REBOOT_CFM", Role: RoleConfirmation, ReqID: idRebootReq, Decode: decodeEmptyCfm})

	register(&Descriptor{ID: idSetFactoryDefaultReq, Name: "GW_SET_FACTORY_DEFAULT_REQ", Role: RoleRequest, Encode: encodeEmpty})
	register(&Descriptor{ID: idSetFactoryDefaultCfm, Name: "GW_SET_FACTORY_DEFAULT_CFM", Role: RoleConfirmation, ReqID: idSetFactoryDefaultReq, Decode: decodeEmptyCfm})
}

func encodeEmpty(any) ([]byte, error) { return nil, nil }

func decodeEmptyCfm(_ []byte, _ *sessionAccumulator) (any, bool, error) { return struct{}{}, true, nil }

func decodeVersionCfm(payload []byte, _ *sessionAccumulator) (any, bool, error) {
	if len(payload) < 9 {
		return nil, false, ErrPayloadTooShort
	}
	// Bytes 0-5 are the six-component software version a.b.c.d.e.f (spec.md
	// §4.3); byte 6 is the hardware version, bytes 7/8 product group/type.
	parts := make([]string, 6)
	for i := 0; i < 6; i++ {
		parts[i] = strconv.Itoa(int(payload[i]))
	}
	return &VersionInfo{
		SoftwareVersion: strings.Join(parts, "."),
		HardwareVersion: payload[6],
		ProductGroup:    payload[7],
		ProductType:     payload[8],
	}, true, nil
}

func decodeProtocolVersionCfm(payload []byte, _ *sessionAccumulator) (any, bool, error) {
	if len(payload) < 4 {
		return nil, false, ErrPayloadTooShort
	}
	return &ProtocolVersion{
		Major: binary.BigEndian.Uint16(payload[0:2]),
		Minor: binary.BigEndian.Uint16(payload[2:4]),
	}, true, nil
}

func decodeStateCfm(payload []byte, _ *sessionAccumulator) (any, bool, error) {
	if len(payload) < 6 {
		return nil, false, ErrPayloadTooShort
	}
	return &GatewayState{
		GatewayState: payload[0],
		SubState:     payload[1],
		StateData:    binary.BigEndian.Uint32(payload[2:6]),
	}, true, nil
}

func decodeNetworkSetupCfm(payload []byte, _ *sessionAccumulator) (any, bool, error) {
	if len(payload) < 13 {
		return nil, false, ErrPayloadTooShort
	}
	return &NetworkSetup{
		IPAddress: ipString(payload[0:4]),
		Mask:      ipString(payload[4:8]),
		Gateway:   ipString(payload[8:12]),
		DHCP:      payload[12] != 0,
	}, true, nil
}

func ipString(b []byte) string {
	return strconv.Itoa(int(b[0])) + "." + strconv.Itoa(int(b[1])) + "." + strconv.Itoa(int(b[2])) + "." + strconv.Itoa(int(b[3]))
}
