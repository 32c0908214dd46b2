package network

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/viridianmc/viridian/mc"
	"github.com/viridianmc/viridian/status"
)

func (manager *Manager) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(manager.ioDeadline))

	reader := bufio.NewReader(conn)
	first, err := reader.Peek(1)
	if err != nil {
		return
	}
	if first[0] == mc.LegacyPingPacketID {
		manager.handleLegacyPing(conn, reader)
		return
	}

	packet, err := mc.ReadPacket(reader)
	if err != nil {
		manager.log.Debug().Err(err).Msg("error while reading handshake packet")
		return
	}
	handshake, err := mc.UnmarshalServerBoundHandshake(packet)
	if err != nil {
		manager.log.Debug().Err(err).Msg("error while unmarshaling handshake packet")
		return
	}

	client := clientContext(conn, handshake)
	switch {
	case handshake.IsStatusRequest():
		manager.handleStatus(conn, reader, client)
	case handshake.IsLoginRequest():
		manager.handleLogin(conn, reader, client)
	}
}

func clientContext(conn net.Conn, handshake mc.ServerBoundHandshake) status.Client {
	protocol := handshake.ProtocolVersion
	return status.Client{
		Addr:        conn.RemoteAddr(),
		Protocol:    &protocol,
		VirtualHost: fmt.Sprintf("%s:%d", handshake.ParseServerAddress(), uint16(handshake.ServerPort)),
	}
}

func (manager *Manager) handleStatus(conn net.Conn, reader mc.DecodeReader, client status.Client) {
	if _, err := mc.ReadPacket(reader); err != nil {
		return
	}

	ping := manager.handler.BuildResponse(client)
	payload, err := json.Marshal(ping)
	if err != nil {
		manager.log.Error().Err(err).Msg("error while marshaling status response")
		return
	}
	response := mc.ClientBoundResponse{
		JSONResponse: mc.String(payload),
	}.Marshal()
	if _, err := conn.Write(response.Marshal()); err != nil {
		return
	}

	// Ping/pong roundtrip for the client's latency display.
	conn.SetDeadline(time.Now().Add(manager.ioDeadline))
	pingPacket, err := mc.ReadPacket(reader)
	if err != nil {
		return
	}
	conn.Write(pingPacket.Marshal())
}

func (manager *Manager) handleLogin(conn net.Conn, reader mc.DecodeReader, client status.Client) {
	packet, err := mc.ReadPacket(reader)
	if err != nil {
		return
	}
	loginStart, err := mc.UnmarshalServerBoundLoginStart(packet)
	if err != nil {
		manager.log.Debug().Err(err).Msg("error while unmarshaling login start packet")
		return
	}

	message := manager.handler.HandleLogin(client, string(loginStart.Name))
	disconnect := mc.ClientBoundDisconnect{
		Reason: mc.DisconnectReason(message),
	}.Marshal()
	conn.Write(disconnect.Marshal())
}

// Clients before 1.4 probe with a bare 0xFE and then wait; give the
// 0x01 of newer probes this long to arrive before answering in the
// old format.
const legacyProbeWindow = 500 * time.Millisecond

// handleLegacyPing answers the pre-netty 0xFE probe with a 0xFF kick.
// Probes followed by 0x01 get the §1 null-separated payload, bare
// probes the older motd§online§max form.
func (manager *Manager) handleLegacyPing(conn net.Conn, reader *bufio.Reader) {
	reader.ReadByte() // the 0xFE itself

	conn.SetReadDeadline(time.Now().Add(legacyProbeWindow))
	post14 := false
	if next, err := reader.Peek(1); err == nil && next[0] == 0x01 {
		reader.ReadByte()
		post14 = true
	}
	conn.SetDeadline(time.Now().Add(manager.ioDeadline))

	client := status.Client{Addr: conn.RemoteAddr()}
	ping := manager.handler.BuildLegacyResponse(client)

	var motd string
	if ping.Description != nil {
		motd = ping.Description.Text
	}
	var payload string
	if post14 {
		payload = mc.LegacyStatusPayload(
			ping.Version.Protocol,
			ping.Version.Name,
			motd,
			ping.Players.Online,
			ping.Players.Max,
		)
	} else {
		payload = mc.LegacyBetaStatusPayload(motd, ping.Players.Online, ping.Players.Max)
	}
	conn.Write(mc.MarshalLegacyKick(payload))
}
