package klf200

import (
	"encoding/binary"
	"time"
)

// SetUTCParams is the params for GW_SET_UTC_REQ: a 4-byte big-endian epoch
// seconds value the gateway adopts as its clock (spec.md §4.3).
type SetUTCParams struct {
	UTC time.Time `json:"utc"`
}

// RTCSetTimeZoneParams is the params for GW_RTC_SET_TIME_ZONE_REQ: the POSIX
// time zone string the gateway uses to derive local time from its UTC
// clock, e.g. "CET-1CEST,M3.5.0,M10.5.0/3".
type RTCSetTimeZoneParams struct {
	TimeZone string `json:"time_zone"`
}

const rtcTimeZoneFieldLen = 64

func init() {
	register(&Descriptor{ID: idSetUTCReq, Name: "GW_SET_UTC_REQ", Role: RoleRequest, Encode: encodeSetUTC})
	register(&Descriptor{ID: idSetUTCCfm, Name: "GW_SET_UTC_CFM", Role: RoleConfirmation, ReqID: idSetUTCReq, Decode: decodeEmptyCfm})

	register(&Descriptor{ID: idRTCSetTimeZoneReq, Name: "GW_RTC_SET_TIME_ZONE_REQ", Role: RoleRequest, Encode: encodeRTCSetTimeZone})
	register(&Descriptor{ID: idRTCSetTimeZoneCfm, Name: "GW_RTC_SET_TIME_ZONE_CFM", Role: RoleConfirmation, ReqID: idRTCSetTimeZoneReq, Decode: decodeEmptyCfm})
}

func encodeSetUTC(params any) ([]byte, error) {
	p, ok := params.(*SetUTCParams)
	if !ok {
		return nil, errWrongParamsType("GW_SET_UTC_REQ", params)
	}
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(p.UTC.UTC().Unix()))
	return buf, nil
}

func encodeRTCSetTimeZone(params any) ([]byte, error) {
	p, ok := params.(*RTCSetTimeZoneParams)
	if !ok {
		return nil, errWrongParamsType("GW_RTC_SET_TIME_ZONE_REQ", params)
	}
	return padField(p.TimeZone, rtcTimeZoneFieldLen), nil
}
