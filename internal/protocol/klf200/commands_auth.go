package klf200

const passwordFieldLen = 32

// PasswordEnterParams is the params for GW_PASSWORD_ENTER_REQ: the
// password the gateway's web UI uses, null-padded to 32 bytes on the wire.
type PasswordEnterParams struct {
	Password string `json:"password"`
}

// PasswordEnterResult is GW_PASSWORD_ENTER_CFM decoded: a bare status.
type PasswordEnterResult struct {
	OK bool `json:"ok"`
}

// PasswordChangeParams is the params for GW_PASSWORD_CHANGE_REQ: the
// payload is old-password ∥ new-password, each null-padded to 32 bytes
// (spec.md §4.3), so both must be supplied even though only the new one
// is echoed back on GW_PASSWORD_CHANGE_NTF.
type PasswordChangeParams struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// PasswordChangeResult is GW_PASSWORD_CHANGE_CFM decoded.
type PasswordChangeResult struct {
	OK bool `json:"ok"`
}

// PasswordChangeNotification is GW_PASSWORD_CHANGE_NTF decoded: the new
// password echoed back once the change has taken effect.
type PasswordChangeNotification struct {
	Password string `json:"password"`
}

func init() {
	register(&Descriptor{
		ID:     idPasswordEnterReq,
		Name:   "GW_PASSWORD_ENTER_REQ",
		Role:   RoleRequest,
		Encode: encodePasswordEnter,
	})
	register(&Descriptor{
		ID:     idPasswordEnterCfm,
		Name:   "GW_PASSWORD_ENTER_CFM",
		Role:   RoleConfirmation,
		ReqID:  idPasswordEnterReq,
		Decode: decodePasswordEnterCfm,
	})

	register(&Descriptor{
		ID:           idPasswordChangeReq,
		Name:         "GW_PASSWORD_CHANGE_REQ",
		Role:         RoleRequest,
		SpawnsStream: true,
		Encode:       encodePasswordChange,
	})
	register(&Descriptor{
		ID:     idPasswordChangeCfm,
		Name:   "GW_PASSWORD_CHANGE_CFM",
		Role:   RoleConfirmation,
		ReqID:  idPasswordChangeReq,
		Decode: decodePasswordChangeCfm,
	})
	register(&Descriptor{
		ID:           idPasswordChangeNtf,
		Name:         "GW_PASSWORD_CHANGE_NTF",
		Role:         RoleNotification,
		ReqID:        idPasswordChangeReq,
		IsTerminator: true,
		Decode:       decodePasswordChangeNtf,
	})
}

func padField(s string, n int) []byte {
	buf := make([]byte, n)
	copy(buf, s)
	return buf
}

func fieldString(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

func encodePasswordEnter(params any) ([]byte, error) {
	p, ok := params.(*PasswordEnterParams)
	if !ok {
		return nil, errWrongParamsType("GW_PASSWORD_ENTER_REQ", params)
	}
	return padField(p.Password, passwordFieldLen), nil
}

func decodePasswordEnterCfm(payload []byte, _ *sessionAccumulator) (any, bool, error) {
	if len(payload) < 1 {
		return nil, false, ErrPayloadTooShort
	}
	if payload[0] != 0 {
		return nil, false, &DomainError{Command: "GW_PASSWORD_ENTER_CFM", Code: int(payload[0]), Message: "authentication failed"}
	}
	return &PasswordEnterResult{OK: true}, true, nil
}

func encodePasswordChange(params any) ([]byte, error) {
	p, ok := params.(*PasswordChangeParams)
	if !ok {
		return nil, errWrongParamsType("GW_PASSWORD_CHANGE_REQ", params)
	}
	buf := make([]byte, 0, 2*passwordFieldLen)
	buf = append(buf, padField(p.OldPassword, passwordFieldLen)...)
	buf = append(buf, padField(p.NewPassword, passwordFieldLen)...)
	return buf, nil
}

func decodePasswordChangeCfm(payload []byte, acc *sessionAccumulator) (any, bool, error) {
	if len(payload) < 1 {
		return nil, false, ErrPayloadTooShort
	}
	if payload[0] != 0 {
		return nil, false, &DomainError{Command: "GW_PASSWORD_CHANGE_CFM", Code: int(payload[0]), Message: "password change rejected"}
	}
	acc.Set(&PasswordChangeResult{OK: true})
	return &PasswordChangeResult{OK: true}, false, nil
}

func decodePasswordChangeNtf(payload []byte, acc *sessionAccumulator) (any, bool, error) {
	if len(payload) < passwordFieldLen {
		return nil, false, ErrPayloadTooShort
	}
	ntf := &PasswordChangeNotification{Password: fieldString(payload[:passwordFieldLen])}
	acc.Set(ntf)
	return ntf, true, nil
}
