package mc

const (
	ClientBoundResponsePacketID byte = 0x00
	ServerBoundRequestPacketID  byte = 0x00
	ServerBoundPingPacketID     byte = 0x01
	ClientBoundPongPacketID     byte = 0x01
)

type ServerBoundRequest struct{}

func (pk ServerBoundRequest) Marshal() Packet {
	return MarshalPacket(
		ServerBoundRequestPacketID,
	)
}

type ClientBoundResponse struct {
	JSONResponse String
}

func (pk ClientBoundResponse) Marshal() Packet {
	return MarshalPacket(
		ClientBoundResponsePacketID,
		pk.JSONResponse,
	)
}

func UnmarshalClientBoundResponse(packet Packet) (ClientBoundResponse, error) {
	var pk ClientBoundResponse

	if packet.ID != ClientBoundResponsePacketID {
		return pk, ErrInvalidPacketID
	}

	if err := packet.Scan(
		&pk.JSONResponse,
	); err != nil {
		return pk, err
	}

	return pk, nil
}

type ServerBoundPing struct {
	Time Long
}

func (pk ServerBoundPing) Marshal() Packet {
	return MarshalPacket(
		ServerBoundPingPacketID,
		pk.Time,
	)
}

func UnmarshalServerBoundPing(packet Packet) (ServerBoundPing, error) {
	var pk ServerBoundPing

	if packet.ID != ServerBoundPingPacketID {
		return pk, ErrInvalidPacketID
	}

	if err := packet.Scan(
		&pk.Time,
	); err != nil {
		return pk, err
	}

	return pk, nil
}

type ClientBoundPong struct {
	Time Long
}

func (pk ClientBoundPong) Marshal() Packet {
	return MarshalPacket(
		ClientBoundPongPacketID,
		pk.Time,
	)
}
