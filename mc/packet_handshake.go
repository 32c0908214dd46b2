package mc

import "strings"

const (
	ServerBoundHandshakePacketID byte = 0x00

	StatusState = 1
	LoginState  = 2

	HandshakeStatusState = VarInt(StatusState)
	HandshakeLoginState  = VarInt(LoginState)

	// Forge clients append their mod channel to the server address.
	ForgeSeparator = "\x00"
)

type ServerBoundHandshake struct {
	ProtocolVersion int
	ServerAddress   string
	ServerPort      int16
	NextState       int
}

func (pk ServerBoundHandshake) Marshal() Packet {
	return MarshalPacket(
		ServerBoundHandshakePacketID,
		VarInt(pk.ProtocolVersion),
		String(pk.ServerAddress),
		UnsignedShort(pk.ServerPort),
		VarInt(pk.NextState),
	)
}

func UnmarshalServerBoundHandshake(packet Packet) (ServerBoundHandshake, error) {
	var hs ServerBoundHandshake

	if packet.ID != ServerBoundHandshakePacketID {
		return hs, ErrInvalidPacketID
	}

	var (
		protocolVersion VarInt
		serverAddress   String
		serverPort      UnsignedShort
		nextState       VarInt
	)
	if err := packet.Scan(
		&protocolVersion,
		&serverAddress,
		&serverPort,
		&nextState,
	); err != nil {
		return hs, err
	}

	hs = ServerBoundHandshake{
		ProtocolVersion: int(protocolVersion),
		ServerAddress:   string(serverAddress),
		ServerPort:      int16(serverPort),
		NextState:       int(nextState),
	}
	return hs, nil
}

func (pk ServerBoundHandshake) IsStatusRequest() bool {
	return VarInt(pk.NextState) == HandshakeStatusState
}

func (pk ServerBoundHandshake) IsLoginRequest() bool {
	return VarInt(pk.NextState) == HandshakeLoginState
}

// ParseServerAddress returns the hostname the client connected through,
// stripped of any forge payload.
func (pk ServerBoundHandshake) ParseServerAddress() string {
	return strings.Split(pk.ServerAddress, ForgeSeparator)[0]
}
