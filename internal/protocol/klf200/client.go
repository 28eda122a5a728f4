package klf200

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// State is the connection lifecycle state machine from spec.md §4:
// DISCONNECTED -> CONNECTING -> AUTHENTICATING -> AUTHENTICATED, and back to
// DISCONNECTED on any terminal failure. Reconnection is out of scope; a
// Connection is single-use.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Config is the information a Connection needs to reach and authenticate to
// a gateway. Host may be "host" or "host:port"; DefaultPort is assumed when
// no port is given.
type Config struct {
	Host           string
	Password       string
	DialTimeout    time.Duration
	StrictChecksum bool
	Registerer     prometheus.Registerer // nil disables metrics
}

// DefaultPort is the gateway's TLS listening port.
const DefaultPort = "51200"

func (c Config) address() string {
	if _, _, err := net.SplitHostPort(c.Host); err == nil {
		return c.Host
	}
	return net.JoinHostPort(c.Host, DefaultPort)
}

func (c Config) dialTimeout() time.Duration {
	if c.DialTimeout > 0 {
		return c.DialTimeout
	}
	return 10 * time.Second
}

// Connection owns the TLS transport and the protocol Engine running over
// it, and drives spec.md §4's connection lifecycle: dial, authenticate,
// expose the engine to callers, disconnect.
//
// Certificate policy, per spec.md §1: accept any certificate the gateway
// presents and expose its SHA-256 fingerprint, rather than validate against
// a trust store the gateway's self-signed cert was never meant to satisfy.
type Connection struct {
	cfg    Config
	events *EventBus

	mu          sync.Mutex
	state       State
	conn        *tls.Conn
	engine      *Engine
	peer        string
	fingerprint string
}

// NewConnection builds a Connection. Events may be nil; a fresh EventBus is
// used in that case.
func NewConnection(cfg Config, events *EventBus) *Connection {
	if events == nil {
		events = NewEventBus()
	}
	return &Connection{cfg: cfg, events: events, state: StateDisconnected}
}

// Events returns the connection's event bus so callers can Subscribe before
// calling Connect.
func (c *Connection) Events() *EventBus { return c.events }

// State returns the connection's current lifecycle state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Connection) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Connect dials the gateway over TLS, authenticates with the configured
// password, and leaves the connection in StateAuthenticated on success. A
// dial failure or a rejected password returns an error and leaves the
// connection StateDisconnected; the caller does not need to call
// Disconnect in that case.
func (c *Connection) Connect(ctx context.Context) error {
	c.setState(StateConnecting)
	addr := c.cfg.address()
	c.events.emit(Event{Type: EventConnecting, Host: addr})

	dialer := &net.Dialer{Timeout: c.cfg.dialTimeout()}
	tlsConn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{InsecureSkipVerify: true})
	if err != nil {
		c.setState(StateDisconnected)
		return &TransportError{Err: fmt.Errorf("dial %s: %w", addr, err), Fatal: true}
	}

	c.mu.Lock()
	c.conn = tlsConn
	c.peer = tlsConn.RemoteAddr().String()
	c.fingerprint = certificateFingerprint(tlsConn)
	c.mu.Unlock()

	c.setState(StateAuthenticating)
	c.events.emit(Event{Type: EventConnect, Peer: c.peer})

	var metrics *metricsRecorder
	if c.cfg.Registerer != nil {
		metrics = NewMetricsRecorder(c.cfg.Registerer)
	}
	engine := NewEngine(tlsConn, c.events, c.cfg.StrictChecksum, metrics)
	c.mu.Lock()
	c.engine = engine
	c.mu.Unlock()
	go engine.Run()

	if _, err := engine.Request(ctx, "GW_PASSWORD_ENTER_REQ", &PasswordEnterParams{Password: c.cfg.Password}); err != nil {
		_ = tlsConn.Close()
		c.setState(StateDisconnected)
		return err
	}

	c.setState(StateAuthenticated)
	return nil
}

// Disconnect closes the underlying TLS connection. A drop surfaces as a
// terminal error to any request still in flight; reconnecting is the
// caller's responsibility via a fresh Connection (see spec.md §1 Non-goals).
func (c *Connection) Disconnect() error {
	c.mu.Lock()
	conn := c.conn
	peer := c.peer
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	err := conn.Close()
	c.setState(StateDisconnected)
	c.events.emit(Event{Type: EventDisconnect, Peer: peer})
	return err
}

// Request issues a command through the connection's engine. It is only
// valid once Connect has succeeded.
func (c *Connection) Request(ctx context.Context, name string, params any) (any, error) {
	c.mu.Lock()
	engine := c.engine
	c.mu.Unlock()
	if engine == nil {
		return nil, fmt.Errorf("klf200: not connected")
	}
	return engine.Request(ctx, name, params)
}

// Peer returns the gateway's remote address, available once Connect has
// dialed successfully.
func (c *Connection) Peer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peer
}

// Fingerprint returns the SHA-256 fingerprint (hex-encoded) of the
// certificate the gateway presented.
func (c *Connection) Fingerprint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fingerprint
}

func certificateFingerprint(conn *tls.Conn) string {
	state := conn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return ""
	}
	sum := sha256.Sum256(state.PeerCertificates[0].Raw)
	return hex.EncodeToString(sum[:])
}
