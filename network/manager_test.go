package network_test

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/viridianmc/viridian/config"
	"github.com/viridianmc/viridian/mc"
	"github.com/viridianmc/viridian/network"
	"github.com/viridianmc/viridian/status"
)

type testHandler struct {
	response   status.PingResponse
	loginNames chan string
}

func (handler *testHandler) BuildResponse(client status.Client) status.PingResponse {
	return handler.response
}

func (handler *testHandler) BuildLegacyResponse(client status.Client) status.PingResponse {
	response := handler.response
	response.Version.Protocol = status.LegacyProtocol
	if response.Players == nil {
		response.Players = &status.Players{Max: status.LegacyUnknownMax}
	}
	return response
}

func (handler *testHandler) HandleLogin(client status.Client, name string) string {
	if handler.loginNames != nil {
		handler.loginNames <- name
	}
	return "hi " + name
}

func defaultTestHandler() *testHandler {
	return &testHandler{
		response: status.PingResponse{
			Version:     &status.Version{Name: "1.17.1", Protocol: 756},
			Players:     &status.Players{Online: 3, Max: 60},
			Description: &status.Description{Text: "A Viridian Server"},
		},
	}
}

// startTestManager runs a manager on an ephemeral port and returns the
// address to dial.
func startTestManager(t *testing.T, handler network.Handler, mutate func(cfg *config.Config)) string {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	if mutate != nil {
		mutate(&cfg)
	}

	var listenerAddr string
	listen := func(addr string) (net.Listener, error) {
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listenerAddr = listener.Addr().String()
		}
		return listener, err
	}

	manager, err := network.NewManager(handler, cfg, listen, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := manager.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		manager.Stop()
	})
	return listenerAddr
}

func dialTestManager(t *testing.T, addr string) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		conn.Close()
	})
	conn.SetDeadline(time.Now().Add(time.Second))
	return conn, bufio.NewReader(conn)
}

func TestManager_UnresolvableAddressAbortsConstruction(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Address = "definitely not an address"

	if _, err := network.NewManager(defaultTestHandler(), cfg, nil, zerolog.Nop()); err == nil {
		t.Error("expected an error but got none")
	}
}

func TestManager_DoubleStartIsRefused(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	manager, err := network.NewManager(defaultTestHandler(), cfg, nil, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := manager.Start(); err != nil {
		t.Fatal(err)
	}
	defer manager.Stop()

	if err := manager.Start(); !errors.Is(err, network.ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted but got: %v", err)
	}
}

func TestManager_StopWhenStoppedIsANoop(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	manager, err := network.NewManager(defaultTestHandler(), cfg, nil, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	if err := manager.Stop(); err != nil {
		t.Errorf("didnt expect an error but got: %v", err)
	}
	if manager.State() != network.Stopped {
		t.Errorf("expected state Stopped but got %v", manager.State())
	}
}

func TestManager_StartFailureLeavesTheManagerStopped(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	bindErr := errors.New("address already in use")
	listen := func(addr string) (net.Listener, error) {
		return nil, bindErr
	}
	manager, err := network.NewManager(defaultTestHandler(), cfg, listen, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	if err := manager.Start(); !errors.Is(err, bindErr) {
		t.Errorf("expected the bind error but got: %v", err)
	}
	if manager.State() != network.Stopped {
		t.Errorf("expected state Stopped but got %v", manager.State())
	}
}

func TestManager_StatusRoundtrip(t *testing.T) {
	handler := defaultTestHandler()
	addr := startTestManager(t, handler, nil)
	conn, reader := dialTestManager(t, addr)

	handshake := mc.ServerBoundHandshake{
		ProtocolVersion: 756,
		ServerAddress:   "play.viridian.example",
		ServerPort:      25565,
		NextState:       mc.StatusState,
	}
	conn.Write(handshake.Marshal().Marshal())
	conn.Write(mc.ServerBoundRequest{}.Marshal().Marshal())

	packet, err := mc.ReadPacket(reader)
	if err != nil {
		t.Fatal(err)
	}
	response, err := mc.UnmarshalClientBoundResponse(packet)
	if err != nil {
		t.Fatal(err)
	}

	var got status.PingResponse
	if err := json.Unmarshal([]byte(response.JSONResponse), &got); err != nil {
		t.Fatal(err)
	}
	if !cmp.Equal(handler.response, got) {
		t.Errorf("got different response than expected: %v", cmp.Diff(handler.response, got))
	}

	// The ping must come back as-is.
	ping := mc.ServerBoundPing{Time: mc.Long(42)}
	conn.Write(ping.Marshal().Marshal())
	pong, err := mc.ReadPacket(reader)
	if err != nil {
		t.Fatal(err)
	}
	scanned, err := mc.UnmarshalServerBoundPing(pong)
	if err != nil {
		t.Fatal(err)
	}
	if scanned.Time != 42 {
		t.Errorf("got: %v; want: %v", scanned.Time, 42)
	}
}

func TestManager_LoginGetsDisconnectedWithTheLoginMessage(t *testing.T) {
	handler := defaultTestHandler()
	handler.loginNames = make(chan string, 1)
	addr := startTestManager(t, handler, nil)
	conn, reader := dialTestManager(t, addr)

	handshake := mc.ServerBoundHandshake{
		ProtocolVersion: 756,
		ServerAddress:   "play.viridian.example",
		ServerPort:      25565,
		NextState:       mc.LoginState,
	}
	conn.Write(handshake.Marshal().Marshal())
	loginStart := mc.ServerBoundLoginStart{Name: mc.String("Bob")}
	conn.Write(loginStart.Marshal().Marshal())

	packet, err := mc.ReadPacket(reader)
	if err != nil {
		t.Fatal(err)
	}
	if packet.ID != mc.ClientBoundDisconnectPacketID {
		t.Fatalf("expected a disconnect packet but got id %v", packet.ID)
	}
	var reason mc.Chat
	if err := packet.Scan(&reason); err != nil {
		t.Fatal(err)
	}
	if string(reason) != `{"text":"hi Bob"}` {
		t.Errorf("got: %v; want: %v", reason, `{"text":"hi Bob"}`)
	}

	select {
	case name := <-handler.loginNames:
		if name != "Bob" {
			t.Errorf("got: %v; want: %v", name, "Bob")
		}
	case <-time.After(time.Second):
		t.Error("handler never saw the login")
	}
}

func TestManager_LegacyPingGetsAKickPayload(t *testing.T) {
	handler := defaultTestHandler()
	addr := startTestManager(t, handler, nil)
	conn, reader := dialTestManager(t, addr)

	conn.Write([]byte{mc.LegacyPingPacketID, 0x01})

	bb, err := io.ReadAll(reader)
	if err != nil {
		t.Fatal(err)
	}
	if len(bb) < 3 || bb[0] != mc.LegacyKickPacketID {
		t.Fatalf("expected a legacy kick packet but got %v", bb)
	}
	expected := mc.MarshalLegacyKick(mc.LegacyStatusPayload(
		status.LegacyProtocol, "1.17.1", "A Viridian Server", 3, 60,
	))
	if !cmp.Equal(expected, bb) {
		t.Errorf("got different kick bytes than expected: %v", cmp.Diff(expected, bb))
	}
}

func TestManager_BareLegacyProbeGetsTheOldPayload(t *testing.T) {
	handler := defaultTestHandler()
	addr := startTestManager(t, handler, nil)
	conn, reader := dialTestManager(t, addr)

	// Pre-1.4 clients send the 0xFE alone and wait.
	conn.Write([]byte{mc.LegacyPingPacketID})
	conn.(*net.TCPConn).CloseWrite()

	bb, err := io.ReadAll(reader)
	if err != nil {
		t.Fatal(err)
	}
	expected := mc.MarshalLegacyKick(mc.LegacyBetaStatusPayload("A Viridian Server", 3, 60))
	if !cmp.Equal(expected, bb) {
		t.Errorf("got different kick bytes than expected: %v", cmp.Diff(expected, bb))
	}
}

func TestManager_RefusesConnectionsOverTheLimit(t *testing.T) {
	addr := startTestManager(t, defaultTestHandler(), func(cfg *config.Config) {
		cfg.ConnectionLimit = 1
		cfg.ConnectionCooldown = "1m"
	})

	first, _ := dialTestManager(t, addr)
	defer first.Close()

	second, reader := dialTestManager(t, addr)
	second.Write([]byte{0x00})
	if _, err := reader.ReadByte(); err == nil {
		t.Error("expected the connection over the limit to be closed")
	}
}
