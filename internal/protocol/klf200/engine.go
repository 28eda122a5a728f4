package klf200

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/klf200/velux/internal/logger"
)

const (
	confirmationTimeout = 5 * time.Second
	streamTimeout       = 60 * time.Second
	sessionPollInterval = 100 * time.Millisecond
)

// Stream is the bidirectional byte stream the engine consumes. A TLS
// connection satisfies it in production; tests substitute a net.Pipe or an
// in-memory fake gateway (see the fakeGateway helper in engine_test.go).
type Stream interface {
	io.Reader
	io.Writer
}

// sessionSetter lets the engine stamp an allocated session id onto a
// command's params before encoding, without every session-carrying params
// type re-implementing the plumbing. Embed Session to satisfy it.
type sessionSetter interface {
	setSessionID(uint16)
}

// Session is embedded by params types for commands that carry a session id
// (GW_COMMAND_SEND_REQ, GW_STATUS_REQUEST_REQ, GW_WINK_SEND_REQ,
// GW_ACTIVATE_SCENE_REQ, GW_ACTIVATE_PRODUCTGROUP_REQ). The engine fills ID
// in before Encode runs; callers never set it themselves.
type Session struct {
	ID uint16
}

func (s *Session) setSessionID(id uint16) { s.ID = id }

// Engine is the framed request/response/notification protocol engine:
// spec.md's core. It owns the session table, the single dispatcher loop
// reading frames off Stream, and the request pipeline callers use to issue
// commands. One Engine serves exactly one connection.
type Engine struct {
	stream Stream
	events *EventBus
	reader *frameReader
	strict bool

	// mu guards nextRequestID, nextSessionID, and sessions together, per
	// spec.md §5's single-lock invariant for the register/dispatch
	// critical section.
	mu            sync.Mutex
	nextRequestID uint64
	nextSessionID uint16
	sessions      map[string]*request

	sendMu chan struct{} // 1-buffered: the "send mutex", held across register+write

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error

	metrics *metricsRecorder
}

// NewEngine wraps stream in a protocol engine. The caller must invoke Run
// in its own goroutine before issuing any Request.
func NewEngine(stream Stream, events *EventBus, strict bool, metrics *metricsRecorder) *Engine {
	if events == nil {
		events = NewEventBus()
	}
	if metrics == nil {
		metrics = noopMetrics
	}
	e := &Engine{
		stream:   stream,
		events:   events,
		reader:   newFrameReader(stream),
		strict:   strict,
		sessions: map[string]*request{},
		sendMu:   make(chan struct{}, 1),
		closed:   make(chan struct{}),
		metrics:  metrics,
	}
	e.sendMu <- struct{}{}
	return e
}

// Run is the engine's single dispatcher loop: it reads and decodes frames
// and correlates them to in-flight requests until the stream ends. Run
// returns when reading from the stream fails (for example because it was
// closed), failing every request still waiting on the session table. A
// framing or protocol error in a single frame is reported on the event
// bus and the loop goes on with the next frame.
func (e *Engine) Run() {
	for {
		raw, err := e.reader.ReadFrame()
		if err != nil {
			e.shutdown(&TransportError{Err: err, Fatal: true})
			return
		}
		e.events.emit(Event{Type: EventData, Bytes: raw})
		e.metrics.framesReceived.Inc()

		interior, err := slipDecode(raw)
		if err != nil {
			e.events.emit(Event{Type: EventError, Err: err})
			continue
		}
		frame, err := decodeFrame(interior, e.strict)
		if err != nil {
			e.events.emit(Event{Type: EventError, Err: err})
			continue
		}
		if !frame.ChecksumOK {
			e.metrics.checksumMismatches.Inc()
			e.events.emit(Event{Type: EventError, Err: ErrChecksumMismatch})
		}
		e.dispatch(frame)
	}
}

// shutdown fails every outstanding request and unblocks anyone waiting in
// waitAndReserve. Safe to call more than once; only the first call takes
// effect.
func (e *Engine) shutdown(err error) {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closeErr = err
		pending := make([]*request, 0, len(e.sessions))
		for _, r := range e.sessions {
			pending = append(pending, r)
		}
		e.sessions = map[string]*request{}
		e.mu.Unlock()

		for _, r := range pending {
			r.fail(err)
		}
		close(e.closed)
	})
}

func (e *Engine) dispatch(frame *decodedFrame) {
	if frame.Command == idErrorNtf {
		e.handleGatewayError(frame.Payload)
		return
	}

	desc, ok := LookupByID(frame.Command)
	if !ok {
		e.events.emit(Event{Type: EventError, Err: fmt.Errorf("%w: 0x%04X", ErrUnknownCommand, frame.Command)})
		return
	}
	if desc.Role == RoleRequest {
		e.events.emit(Event{Type: EventError, Err: fmt.Errorf("%w: %s arrived from the gateway", ErrUnexpectedRole, desc.Name)})
		return
	}

	if desc.Broadcast {
		value, _, err := safeDecode(desc, frame.Payload, nil)
		e.emitNotification(desc, frame.Payload, value, err, nil)
		return
	}

	key, err := desc.sessionKey(frame.Payload)
	if err != nil {
		e.events.emit(Event{Type: EventError, Err: fmt.Errorf("%s: %w", desc.Name, err)})
		return
	}

	e.mu.Lock()
	req, ok := e.sessions[key]
	e.mu.Unlock()
	if !ok {
		// A confirmation/notification with no live session: surfaced as
		// a raw notification event, never an error — a late duplicate
		// or a notification for a command this engine never issued.
		e.emitNotification(desc, frame.Payload, nil, nil, nil)
		return
	}

	value, terminal, err := safeDecode(desc, frame.Payload, req.acc)
	if err != nil {
		e.failAndRemove(key, req, fmt.Errorf("%s: %w", desc.Name, err))
		return
	}
	e.emitNotification(desc, frame.Payload, value, nil, req.summary())

	switch {
	case desc.Role == RoleConfirmation && !req.descriptor.SpawnsStream:
		e.completeAndRemove(key, req, value)
	case desc.Role == RoleConfirmation && req.descriptor.SpawnsStream:
		req.acc.markConfirmed()
		req.markCollecting()
	case desc.IsTerminator || terminal:
		e.completeAndRemove(key, req, req.acc.result())
	default:
		req.markCollecting()
	}
}

// handleGatewayError handles GW_ERROR_NTF, the gateway's bare session-less
// error notification. Per spec.md §4.3 it is attributed to the in-flight
// request when one exists: the gateway only ever has one command in
// progress at a time, so a single entry in the session table is that
// request. With zero or more than one outstanding, attribution is
// ambiguous and the error is only surfaced on the event bus.
func (e *Engine) handleGatewayError(payload []byte) {
	code := byte(0)
	if len(payload) > 0 {
		code = payload[0]
	}
	err := &DomainError{
		Command: "GW_ERROR_NTF",
		Code:    int(code),
		Message: gatewayErrorMessage(code),
	}

	e.mu.Lock()
	var key string
	var req *request
	if len(e.sessions) == 1 {
		for k, r := range e.sessions {
			key, req = k, r
		}
	}
	e.mu.Unlock()

	if req != nil {
		e.failAndRemove(key, req, err)
		return
	}
	e.events.emit(Event{Type: EventError, Err: err})
}

func safeDecode(desc *Descriptor, payload []byte, acc *sessionAccumulator) (value any, terminal bool, err error) {
	if desc.Decode == nil {
		// Registered decoder-less per the Open Question resolution in
		// DESIGN.md (GW_MODE_SEND_*, GW_ACTIVATE_PRODUCTGROUP_NTF): the
		// decoded value is a copy of the raw payload. Observers see it as
		// the notification's Payload, and a plain confirmation returns it
		// as the request's result; a terminator notification still ends
		// its session with the accumulator's contents.
		return append([]byte(nil), payload...), true, nil
	}
	return desc.Decode(payload, acc)
}

func (e *Engine) emitNotification(desc *Descriptor, raw []byte, value any, err error, summary *RequestSummary) {
	if err != nil {
		return
	}
	e.events.emit(Event{
		Type: EventNotification,
		Notification: &Notification{
			CommandID: desc.ID,
			Name:      desc.Name,
			Bytes:     raw,
			Payload:   value,
			Request:   summary,
		},
	})
}

func (e *Engine) completeAndRemove(key string, req *request, result any) {
	e.mu.Lock()
	delete(e.sessions, key)
	e.mu.Unlock()
	req.complete(result)
}

func (e *Engine) failAndRemove(key string, req *request, err error) {
	e.mu.Lock()
	delete(e.sessions, key)
	e.mu.Unlock()
	req.fail(err)
	e.events.emit(Event{Type: EventError, Err: err, Request: req.summary()})
}

func (e *Engine) nextReqID() uint64 {
	e.mu.Lock()
	e.nextRequestID++
	id := e.nextRequestID
	e.mu.Unlock()
	return id
}

func (e *Engine) nextSessID() uint16 {
	e.mu.Lock()
	e.nextSessionID++
	id := e.nextSessionID
	e.mu.Unlock()
	return id
}

// Request issues a command by its registry name and blocks until it
// completes, times out, or ctx is cancelled. It implements spec.md §3's
// request pipeline verbatim:
//  1. allocate a request id and, if the command carries one, a session id
//  2. encode the payload
//  3. acquire the send mutex
//  4. wait for the session-table slot to free, then reserve it
//  5. frame and write the command
//  6. release the send mutex
//  7. wait for the confirmation, then (if the command streams) the
//     terminating notification, each against its own timeout
//
// Failures recorded against the request once its frame is on the wire (a
// decode or domain error, GW_ERROR_NTF, a confirmation or stream timeout)
// are surfaced only on the event bus (EventError) and returned here as a
// nil error with a nil result — spec.md's deliberate "observational"
// propagation policy, so that a single bad notification never aborts a
// caller blocked on an unrelated session. GW_PASSWORD_ENTER_REQ is the one
// command whose such failure is fatal to the caller (Connect propagates
// it), so its error is returned normally. Errors raised before the frame
// is written (unknown command, encode failure, engine already shut down),
// ctx cancellation, and a failed write are returned directly.
func (e *Engine) Request(ctx context.Context, name string, params any) (any, error) {
	desc, ok := LookupByName(name)
	if !ok {
		return nil, fmt.Errorf("klf200: unknown command %q", name)
	}
	if desc.Role != RoleRequest {
		return nil, fmt.Errorf("%w: %s is not a request", ErrUnexpectedRole, name)
	}

	select {
	case <-e.closed:
		return nil, e.closeErr
	default:
	}

	reqID := e.nextReqID()

	var sessionID uint16
	if desc.CarriesSession {
		sessionID = e.nextSessID()
		if setter, ok := params.(sessionSetter); ok {
			setter.setSessionID(sessionID)
		}
	}

	payload, err := desc.Encode(params)
	if err != nil {
		return nil, fmt.Errorf("%s: encode: %w", name, err)
	}
	if len(payload) > maxPayloadLen {
		return nil, fmt.Errorf("%s: %w", name, ErrPayloadTooLarge)
	}

	var key string
	if desc.CarriesSession {
		key = sessionTableKey(sessionID)
	} else {
		key = requestTableKey(desc.ID)
	}

	req := newRequest(reqID, desc, sessionID, desc.CarriesSession, key)

	lc := logger.NewLogContext(reqID, desc.Name)
	if desc.CarriesSession {
		lc = lc.WithSession(sessionID)
	}
	ctx = logger.WithContext(ctx, lc)

	e.events.emit(Event{Type: EventRequest, Request: req.summary()})
	e.metrics.requestsInFlight.Inc()
	defer e.metrics.requestsInFlight.Dec()

	if err := e.acquireSend(ctx); err != nil {
		return nil, err
	}

	if err := e.waitAndReserve(ctx, key, req); err != nil {
		e.releaseSend()
		return nil, err
	}

	wireFrame, err := encodeFrame(desc.ID, payload)
	if err != nil {
		e.completeAndRemove(key, req, nil)
		e.releaseSend()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	wire := slipEncode(wireFrame)

	e.events.emit(Event{Type: EventSend, Bytes: wire, Request: req.summary()})
	_, werr := e.stream.Write(wire)
	e.releaseSend()
	if werr != nil {
		e.mu.Lock()
		delete(e.sessions, key)
		e.mu.Unlock()
		return nil, &TransportError{Err: werr}
	}
	e.metrics.framesSent.Inc()

	return e.awaitCompletion(ctx, req, desc)
}

func (e *Engine) acquireSend(ctx context.Context) error {
	select {
	case <-e.sendMu:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-e.closed:
		return e.closeErr
	}
}

func (e *Engine) releaseSend() { e.sendMu <- struct{}{} }

// waitAndReserve blocks until key is free in the session table, then claims
// it for req. Held under the send mutex, so a stalled consumer of an older
// session never lets two writers interleave their registration.
func (e *Engine) waitAndReserve(ctx context.Context, key string, req *request) error {
	ticker := time.NewTicker(sessionPollInterval)
	defer ticker.Stop()
	for {
		e.mu.Lock()
		if _, busy := e.sessions[key]; !busy {
			e.sessions[key] = req
			e.metrics.sessionTableSize.Set(float64(len(e.sessions)))
			e.mu.Unlock()
			return nil
		}
		e.mu.Unlock()

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		case <-e.closed:
			return e.closeErr
		}
	}
}

func (e *Engine) awaitCompletion(ctx context.Context, req *request, desc *Descriptor) (any, error) {
	cfmTimer := time.NewTimer(confirmationTimeout)
	defer cfmTimer.Stop()

waitCfm:
	for {
		select {
		case <-req.done:
			return e.finish(req, desc)
		case <-ctx.Done():
			e.completeAndRemove(req.key, req, nil)
			return nil, ctx.Err()
		case <-e.closed:
			return nil, e.closeErr
		case <-cfmTimer.C:
			if req.acc.isConfirmed() {
				break waitCfm
			}
			e.failAndRemove(req.key, req, &TimeoutError{Command: desc.Name, Stage: "confirmation"})
			return e.finish(req, desc)
		}
	}

	streamTimer := time.NewTimer(streamTimeout)
	defer streamTimer.Stop()
	select {
	case <-req.done:
		return e.finish(req, desc)
	case <-ctx.Done():
		e.completeAndRemove(req.key, req, nil)
		return nil, ctx.Err()
	case <-e.closed:
		return nil, e.closeErr
	case <-streamTimer.C:
		e.failAndRemove(req.key, req, &TimeoutError{Command: desc.Name, Stage: "stream"})
		return e.finish(req, desc)
	}
}

func (e *Engine) finish(req *request, desc *Descriptor) (any, error) {
	result, err := req.snapshot()
	if err != nil {
		e.events.emit(Event{Type: EventError, Err: err, Request: req.summary()})
		if desc.ID == idPasswordEnterReq {
			return nil, err
		}
		return nil, nil
	}
	e.events.emit(Event{Type: EventResponse, Request: req.summary(), Result: result})
	return result, nil
}
