package klf200

// NewParams returns a freshly allocated, zero-valued params value for a
// registry request name, suitable for json.Unmarshal-ing CLI-supplied
// parameters straight into before handing it to Request. ok is false for
// commands that take no parameters at all (the CLI then calls Request with
// nil and never attempts to unmarshal anything onto it).
func NewParams(name string) (params any, ok bool) {
	switch name {
	case "GW_PASSWORD_ENTER_REQ":
		return &PasswordEnterParams{}, true
	case "GW_PASSWORD_CHANGE_REQ":
		return &PasswordChangeParams{}, true
	case "GW_SET_UTC_REQ":
		return &SetUTCParams{}, true
	case "GW_RTC_SET_TIME_ZONE_REQ":
		return &RTCSetTimeZoneParams{}, true
	case "GW_GET_NODE_INFORMATION_REQ":
		return &NodeInformationParams{}, true
	case "GW_GET_GROUP_INFORMATION_REQ":
		return &GroupInformationParams{}, true
	case "GW_COMMAND_SEND_REQ":
		return &CommandSendParams{}, true
	case "GW_STATUS_REQUEST_REQ":
		return &StatusRequestParams{}, true
	case "GW_WINK_SEND_REQ":
		return &WinkSendParams{}, true
	case "GW_ACTIVATE_SCENE_REQ":
		return &ActivateSceneParams{}, true
	case "GW_ACTIVATE_PRODUCTGROUP_REQ":
		return &ActivateProductGroupParams{}, true
	case "GW_MODE_SEND_REQ":
		return &ModeSendParams{}, true
	default:
		return nil, false
	}
}
