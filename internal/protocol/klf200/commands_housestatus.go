package klf200

// GW_HOUSE_STATUS_MONITOR_ENABLE_REQ/DISABLE_REQ toggle whether the gateway
// broadcasts GW_NODE_STATE_POSITION_CHANGED_NTF at all — without enabling
// the monitor, no broadcast position notifications ever flow.
func init() {
	register(&Descriptor{ID: idHouseStatusMonitorEnableReq, Name: "GW_HOUSE_STATUS_MONITOR_ENABLE_REQ", Role: RoleRequest, Encode: encodeEmpty})
	register(&Descriptor{ID: idHouseStatusMonitorEnableCfm, Name: "GW_HOUSE_STATUS_MONITOR_ENABLE_CFM", Role: RoleConfirmation, ReqID: idHouseStatusMonitorEnableReq, Decode: decodeEmptyCfm})

	register(&Descriptor{ID: idHouseStatusMonitorDisableReq, Name: "GW_HOUSE_STATUS_MONITOR_DISABLE_REQ", Role: RoleRequest, Encode: encodeEmpty})
	register(&Descriptor{ID: idHouseStatusMonitorDisableCfm, Name: "GW_HOUSE_STATUS_MONITOR_DISABLE_CFM", Role: RoleConfirmation, ReqID: idHouseStatusMonitorDisableReq, Decode: decodeEmptyCfm})
}
