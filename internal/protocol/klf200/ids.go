package klf200

// Command ids from the KLF 200 Technical Specification referenced by
// spec.md §9. Grouped the way the spec groups them (system, configuration,
// nodes, groups, house status monitor, commands/sessions, scenes).
const (
	idErrorNtf uint16 = 0x0000

	idRebootReq uint16 = 0x0001
	idRebootCfm uint16 = 0x0002

	idSetFactoryDefaultReq uint16 = 0x0003
	idSetFactoryDefaultCfm uint16 = 0x0004

	idGetVersionReq uint16 = 0x0008
	idGetVersionCfm uint16 = 0x0009

	idGetProtocolVersionReq uint16 = 0x000A
	idGetProtocolVersionCfm uint16 = 0x000B

	idGetStateReq uint16 = 0x000C
	idGetStateCfm uint16 = 0x000D

	idGetNetworkSetupReq uint16 = 0x00E0
	idGetNetworkSetupCfm uint16 = 0x00E1

	idSystemTableDataReq uint16 = 0x0100
	idSystemTableDataCfm uint16 = 0x0101
	idSystemTableDataNtf uint16 = 0x0102

	idGetNodeInformationReq uint16 = 0x0200
	idGetNodeInformationCfm uint16 = 0x0201
	idGetNodeInformationNtf uint16 = 0x0210

	idGetAllNodesInformationReq         uint16 = 0x0202
	idGetAllNodesInformationCfm         uint16 = 0x0203
	idGetAllNodesInformationNtf         uint16 = 0x0204
	idGetAllNodesInformationFinishedNtf uint16 = 0x0205

	idNodeStatePositionChangedNtf uint16 = 0x0211

	idGetGroupInformationReq uint16 = 0x0220
	idGetGroupInformationCfm uint16 = 0x0221
	idGetGroupInformationNtf uint16 = 0x0230

	idGetAllGroupsInformationReq         uint16 = 0x0229
	idGetAllGroupsInformationCfm         uint16 = 0x022A
	idGetAllGroupsInformationNtf         uint16 = 0x022B
	idGetAllGroupsInformationFinishedNtf uint16 = 0x022C

	idHouseStatusMonitorEnableReq uint16 = 0x0240
	idHouseStatusMonitorEnableCfm uint16 = 0x0241
	idHouseStatusMonitorDisableReq uint16 = 0x0242
	idHouseStatusMonitorDisableCfm uint16 = 0x0243

	idCommandSendReq      uint16 = 0x0300
	idCommandSendCfm      uint16 = 0x0301
	idCommandRunStatusNtf uint16 = 0x0302
	idSessionFinishedNtf  uint16 = 0x0304

	idStatusRequestReq uint16 = 0x0305
	idStatusRequestCfm uint16 = 0x0306
	idStatusRequestNtf uint16 = 0x0307

	idWinkSendReq uint16 = 0x0308
	idWinkSendCfm uint16 = 0x0309
	idWinkSendNtf uint16 = 0x030A

	// GW_MODE_SEND_* appears commented out in some revisions of the
	// technical specification and live in others; it's registered here
	// decoder-less (see commands_modes.go) per the Open Question
	// resolution recorded in DESIGN.md.
	idModeSendReq uint16 = 0x0320
	idModeSendCfm uint16 = 0x0321
	idModeSendNtf uint16 = 0x0322

	idActivateProductGroupReq uint16 = 0x0340
	idActivateProductGroupCfm uint16 = 0x0341
	idActivateProductGroupNtf uint16 = 0x0342

	idGetSceneListReq    uint16 = 0x0410
	idGetSceneListCfm    uint16 = 0x0411
	idGetSceneListNtf    uint16 = 0x0412
	idActivateSceneReq   uint16 = 0x0413
	idActivateSceneCfm   uint16 = 0x0414

	idPasswordEnterReq  uint16 = 0x3000
	idPasswordEnterCfm  uint16 = 0x3001
	idPasswordChangeReq uint16 = 0x3002
	idPasswordChangeCfm uint16 = 0x3003
	idPasswordChangeNtf uint16 = 0x3004

	idSetUTCReq         uint16 = 0x2000
	idSetUTCCfm         uint16 = 0x2001
	idRTCSetTimeZoneReq uint16 = 0x2002
	idRTCSetTimeZoneCfm uint16 = 0x2003
)
