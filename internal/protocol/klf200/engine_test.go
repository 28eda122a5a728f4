package klf200

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway plays the gateway side of a net.Pipe, letting tests script
// exactly the frames a real KLF 200 would send back for a given request.
type fakeGateway struct {
	t      *testing.T
	conn   net.Conn
	reader *frameReader
}

func newFakeGateway(t *testing.T) (*Engine, *fakeGateway) {
	t.Helper()
	clientSide, serverSide := net.Pipe()
	fg := &fakeGateway{t: t, conn: serverSide, reader: newFrameReader(serverSide)}
	engine := NewEngine(clientSide, NewEventBus(), true, nil)
	go engine.Run()
	t.Cleanup(func() { _ = clientSide.Close(); _ = serverSide.Close() })
	return engine, fg
}

func (fg *fakeGateway) recv() *decodedFrame {
	fg.t.Helper()
	raw, err := fg.reader.ReadFrame()
	require.NoError(fg.t, err)
	interior, err := slipDecode(raw)
	require.NoError(fg.t, err)
	frame, err := decodeFrame(interior, true)
	require.NoError(fg.t, err)
	return frame
}

func (fg *fakeGateway) send(cmd uint16, payload []byte) {
	fg.t.Helper()
	wire, err := encodeFrame(cmd, payload)
	require.NoError(fg.t, err)
	_, err = fg.conn.Write(slipEncode(wire))
	require.NoError(fg.t, err)
}

func buildNodeRecord(id byte, name string) []byte {
	buf := make([]byte, nodeRecordLen)
	buf[0] = id
	copy(buf[4:68], name)
	binary.BigEndian.PutUint16(buf[85:87], 0x6400) // 50%
	binary.BigEndian.PutUint16(buf[87:89], 0x6400)
	for i := 0; i < 4; i++ {
		binary.BigEndian.PutUint16(buf[89+i*2:91+i*2], posIgnore)
	}
	return buf
}

func TestPasswordAuthenticationSuccess(t *testing.T) {
	engine, gateway := newFakeGateway(t)

	resultCh := make(chan any, 1)
	errCh := make(chan error, 1)
	go func() {
		result, err := engine.Request(context.Background(), "GW_PASSWORD_ENTER_REQ", &PasswordEnterParams{Password: "abc"})
		resultCh <- result
		errCh <- err
	}()

	frame := gateway.recv()
	assert.Equal(t, idPasswordEnterReq, frame.Command)
	assert.Equal(t, []byte("abc"), frame.Payload[:3])
	gateway.send(idPasswordEnterCfm, []byte{0x00})

	require.NoError(t, <-errCh)
	result := <-resultCh
	require.IsType(t, &PasswordEnterResult{}, result)
	assert.True(t, result.(*PasswordEnterResult).OK)
}

func TestPasswordAuthenticationFailure(t *testing.T) {
	engine, gateway := newFakeGateway(t)

	errCh := make(chan error, 1)
	go func() {
		_, err := engine.Request(context.Background(), "GW_PASSWORD_ENTER_REQ", &PasswordEnterParams{Password: "wrong"})
		errCh <- err
	}()

	gateway.recv()
	gateway.send(idPasswordEnterCfm, []byte{0x01})

	err := <-errCh
	require.Error(t, err)
	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 1, domainErr.Code)
}

func TestGetProtocolVersion(t *testing.T) {
	engine, gateway := newFakeGateway(t)

	resultCh := make(chan any, 1)
	go func() {
		result, err := engine.Request(context.Background(), "GW_GET_PROTOCOL_VERSION_REQ", nil)
		require.NoError(t, err)
		resultCh <- result
	}()

	frame := gateway.recv()
	assert.Equal(t, idGetProtocolVersionReq, frame.Command)

	payload := make([]byte, 4)
	binary.BigEndian.PutUint16(payload[0:2], 3)
	binary.BigEndian.PutUint16(payload[2:4], 18)
	gateway.send(idGetProtocolVersionCfm, payload)

	result := <-resultCh
	pv := result.(*ProtocolVersion)
	assert.Equal(t, "3.18", pv.String())
}

func TestAllNodesInformationStream(t *testing.T) {
	engine, gateway := newFakeGateway(t)

	resultCh := make(chan any, 1)
	go func() {
		result, err := engine.Request(context.Background(), "GW_GET_ALL_NODES_INFORMATION_REQ", nil)
		require.NoError(t, err)
		resultCh <- result
	}()

	gateway.recv()
	gateway.send(idGetAllNodesInformationCfm, []byte{0x00, 0x02})
	gateway.send(idGetAllNodesInformationNtf, buildNodeRecord(0, "Living room blind"))
	gateway.send(idGetAllNodesInformationNtf, buildNodeRecord(1, "Kitchen window"))
	gateway.send(idGetAllNodesInformationFinishedNtf, nil)

	result := <-resultCh
	nodes, ok := result.([]any)
	require.True(t, ok)
	require.Len(t, nodes, 2)
	assert.Equal(t, "Living room blind", nodes[0].(*Node).Name)
	assert.Equal(t, "Kitchen window", nodes[1].(*Node).Name)
}

func TestCommandSendWithSession(t *testing.T) {
	engine, gateway := newFakeGateway(t)

	pct := 0
	params := &CommandSendParams{
		CommandOriginator: 1,
		PriorityLevel:     PriorityHuman,
		NodeIDs:           []byte{0, 1},
		MainParameter:     Position{Percent: &pct},
	}

	resultCh := make(chan any, 1)
	go func() {
		result, err := engine.Request(context.Background(), "GW_COMMAND_SEND_REQ", params)
		require.NoError(t, err)
		resultCh <- result
	}()

	frame := gateway.recv()
	require.Equal(t, idCommandSendReq, frame.Command)
	sessionID := binary.BigEndian.Uint16(frame.Payload[0:2])
	assert.Equal(t, sessionID, params.ID)

	cfm := make([]byte, 3)
	binary.BigEndian.PutUint16(cfm[0:2], sessionID)
	cfm[2] = 1 // CommandAccepted: 1 = accepted, per spec.md §8 scenario 5
	gateway.send(idCommandSendCfm, cfm)

	runStatus := func(nodeID byte) []byte {
		buf := make([]byte, 13)
		binary.BigEndian.PutUint16(buf[0:2], sessionID)
		buf[3] = nodeID
		buf[7] = byte(RunStatusCompleted)
		return buf
	}
	gateway.send(idCommandRunStatusNtf, runStatus(0))
	gateway.send(idCommandRunStatusNtf, runStatus(1))

	finished := make([]byte, 2)
	binary.BigEndian.PutUint16(finished, sessionID)
	gateway.send(idSessionFinishedNtf, finished)

	result := <-resultCh
	statuses, ok := result.([]any)
	require.True(t, ok)
	require.Len(t, statuses, 2)
	assert.Equal(t, byte(0), statuses[0].(*CommandRunStatus).NodeID)
	assert.Equal(t, byte(1), statuses[1].(*CommandRunStatus).NodeID)
}

func TestConcurrentNonSessionRequestsSerialize(t *testing.T) {
	engine, gateway := newFakeGateway(t)

	done := make(chan struct{}, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := engine.Request(context.Background(), "GW_GET_VERSION_REQ", nil)
			assert.NoError(t, err)
			done <- struct{}{}
		}()
	}

	// Only one request can occupy the "c<reqid>" slot at a time, so the
	// second caller must still be waiting when the first is answered.
	respond := func() {
		frame := gateway.recv()
		require.Equal(t, idGetVersionReq, frame.Command)
		payload := make([]byte, 9)
		payload[0], payload[1], payload[2] = 0, 72, 0
		gateway.send(idGetVersionCfm, payload)
	}

	respond()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("first request never completed")
	}

	respond()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second request never completed")
	}
}

func TestRequestTimesOutWithoutConfirmation(t *testing.T) {
	engine, gateway := newFakeGateway(t)
	// Accept the request frame (net.Pipe writes block until read) but never
	// answer it.
	go func() { _, _ = gateway.reader.ReadFrame() }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := engine.Request(ctx, "GW_GET_VERSION_REQ", nil)
	require.Error(t, err)
}

func TestRequestFailsAfterEngineShutdown(t *testing.T) {
	engine, gateway := newFakeGateway(t)
	_ = gateway.conn.Close()

	// Give Run's blocking read a moment to observe the close.
	time.Sleep(50 * time.Millisecond)

	_, err := engine.Request(context.Background(), "GW_GET_VERSION_REQ", nil)
	require.Error(t, err)
}
