package klf200

import (
	"fmt"
	"sort"
	"strings"
)

// Role classifies a command id the way the KLF 200 protocol does: a single
// request from the client, a synchronous confirmation from the gateway, or
// an asynchronous notification.
type Role int

const (
	RoleRequest Role = iota
	RoleConfirmation
	RoleNotification
)

func (r Role) String() string {
	switch r {
	case RoleRequest:
		return "REQUEST"
	case RoleConfirmation:
		return "CONFIRMATION"
	case RoleNotification:
		return "NOTIFICATION"
	default:
		return "UNKNOWN"
	}
}

// Encoder turns a typed params value into a command payload.
type Encoder func(params any) ([]byte, error)

// Decoder turns a confirmation/notification payload into a typed result.
// acc is the accumulator for the session this frame belongs to (nil for
// broadcast notifications that never touch the session table). terminal
// tells the dispatcher whether this frame ends a streamed command; it is
// ignored for plain (non-streaming) confirmations, which always end their
// request on arrival.
type Decoder func(payload []byte, acc *sessionAccumulator) (value any, terminal bool, err error)

// Descriptor is one entry in the command registry: spec.md's "command
// descriptor" data model, built once at init time and never mutated.
type Descriptor struct {
	ID   uint16
	Name string
	Role Role

	// ReqID is the id of the REQUEST this confirmation/notification
	// belongs to. It is only consulted when CarriesSession is false: the
	// session key then falls back to "c<ReqID>", meaning at most one
	// instance of that request may be in flight at a time. When
	// CarriesSession is true the session key comes from the payload's
	// session id instead and ReqID is unused.
	ReqID uint16

	CarriesSession bool // the first 2 payload bytes are a session id
	SpawnsStream   bool // (REQUEST only) confirmation doesn't end the request; one or more notifications follow
	IsTerminator   bool // this confirmation/notification always ends its session, regardless of what Decode returns
	Broadcast      bool // notification with no originating request and no session correlation at all

	Encode Encoder
	Decode Decoder
}

var (
	byID   = map[uint16]*Descriptor{}
	byName = map[string]*Descriptor{}
)

// register adds a descriptor to the registry. It panics on a naming or id
// collision, which would be a programming error caught the first time the
// package is imported (every registration happens in an init func).
func register(d *Descriptor) *Descriptor {
	var suffix string
	switch d.Role {
	case RoleRequest:
		suffix = "_REQ"
	case RoleConfirmation:
		suffix = "_CFM"
	case RoleNotification:
		suffix = "_NTF"
	}
	if suffix != "" && !strings.HasSuffix(d.Name, suffix) {
		panic(fmt.Sprintf("klf200: %s registered with role %s, want a %s suffix", d.Name, d.Role, suffix))
	}
	if _, dup := byID[d.ID]; dup {
		panic(fmt.Sprintf("klf200: command id 0x%04X registered twice (%s)", d.ID, d.Name))
	}
	if _, dup := byName[d.Name]; dup {
		panic(fmt.Sprintf("klf200: command name %s registered twice", d.Name))
	}
	byID[d.ID] = d
	byName[d.Name] = d
	return d
}

// LookupByID returns the descriptor for a wire command id.
func LookupByID(id uint16) (*Descriptor, bool) {
	d, ok := byID[id]
	return d, ok
}

// LookupByName returns the descriptor for a registry command name such as
// "GW_GET_VERSION_REQ".
func LookupByName(name string) (*Descriptor, bool) {
	d, ok := byName[name]
	return d, ok
}

// RequestNames returns the registered names of every RoleRequest command,
// sorted. It is the registry's enumeration surface for the CLI front-end,
// which builds one subcommand per name (spec.md §6's "<COMMAND> is a
// registry name with the GW_ prefix and _REQ suffix stripped").
func RequestNames() []string {
	names := make([]string, 0, len(byName))
	for name, d := range byName {
		if d.Role == RoleRequest {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// sessionKey computes the session-table key a confirmation or notification
// correlates against, per spec.md §3: the session id from the payload when
// the command carries one, otherwise the originating request's command id.
func (d *Descriptor) sessionKey(payload []byte) (string, error) {
	if d.CarriesSession {
		sid, err := readSessionID(payload)
		if err != nil {
			return "", err
		}
		return sessionTableKey(sid), nil
	}
	return requestTableKey(d.ReqID), nil
}

func sessionTableKey(sessionID uint16) string { return fmt.Sprintf("s%d", sessionID) }
func requestTableKey(reqID uint16) string     { return fmt.Sprintf("c%d", reqID) }

func readSessionID(payload []byte) (uint16, error) {
	if len(payload) < 2 {
		return 0, ErrPayloadTooShort
	}
	return uint16(payload[0])<<8 | uint16(payload[1]), nil
}
