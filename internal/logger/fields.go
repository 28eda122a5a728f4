package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging across the gateway client.
// Use these keys consistently so log lines stay greppable/aggregatable.
const (
	KeyHost        = "host"
	KeyPeer        = "peer"
	KeyFingerprint = "fingerprint"

	KeyCommand   = "command"
	KeyCommandID = "command_id"
	KeyRole      = "role"

	KeySessionID = "session_id"
	KeyRequestID = "request_id"

	KeyNodeID  = "node_id"
	KeyGroupID = "group_id"

	KeyStatus    = "status"
	KeyStatusMsg = "status_msg"

	KeyBytesLen = "bytes"
	KeyDirection = "direction"

	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
)

// Host returns a slog.Attr for the configured gateway host:port.
func Host(addr string) slog.Attr {
	return slog.String(KeyHost, addr)
}

// Peer returns a slog.Attr for the gateway's observed remote address.
func Peer(addr string) slog.Attr {
	return slog.String(KeyPeer, addr)
}

// Fingerprint returns a slog.Attr for the peer certificate's SHA-256 fingerprint.
func Fingerprint(fp string) slog.Attr {
	return slog.String(KeyFingerprint, fp)
}

// Command returns a slog.Attr for a command name (e.g. GW_GET_VERSION_REQ).
func Command(name string) slog.Attr {
	return slog.String(KeyCommand, name)
}

// CommandID returns a slog.Attr for a numeric command id.
func CommandID(id uint16) slog.Attr {
	return slog.String(KeyCommandID, fmt.Sprintf("0x%04X", id))
}

// Role returns a slog.Attr for a command role (REQUEST/CONFIRMATION/NOTIFICATION).
func Role(role string) slog.Attr {
	return slog.String(KeyRole, role)
}

// SessionID returns a slog.Attr for the 16-bit gateway session id.
func SessionID(id uint16) slog.Attr {
	return slog.String(KeySessionID, fmt.Sprintf("0x%04X", id))
}

// RequestID returns a slog.Attr for the local monotonic request id.
func RequestID(id uint64) slog.Attr {
	return slog.Uint64(KeyRequestID, id)
}

// NodeID returns a slog.Attr for an actuator/node id.
func NodeID(id int) slog.Attr {
	return slog.Int(KeyNodeID, id)
}

// GroupID returns a slog.Attr for a group id.
func GroupID(id int) slog.Attr {
	return slog.Int(KeyGroupID, id)
}

// Status returns a slog.Attr for a gateway status byte.
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// StatusMsg returns a slog.Attr for a human-readable status message.
func StatusMsg(msg string) slog.Attr {
	return slog.String(KeyStatusMsg, msg)
}

// BytesLen returns a slog.Attr for the length of a raw byte buffer.
func BytesLen(n int) slog.Attr {
	return slog.Int(KeyBytesLen, n)
}

// Direction returns a slog.Attr for "tx" or "rx".
func Direction(dir string) slog.Attr {
	return slog.String(KeyDirection, dir)
}

// DurationMs returns a slog.Attr for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error value.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code.
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}
