package mc

import "encoding/json"

const (
	ServerBoundLoginStartPacketID byte = 0x00
	ClientBoundDisconnectPacketID byte = 0x00
)

type ServerBoundLoginStart struct {
	Name String
}

func (pk ServerBoundLoginStart) Marshal() Packet {
	return MarshalPacket(
		ServerBoundLoginStartPacketID,
		pk.Name,
	)
}

func UnmarshalServerBoundLoginStart(packet Packet) (ServerBoundLoginStart, error) {
	var pk ServerBoundLoginStart

	if packet.ID != ServerBoundLoginStartPacketID {
		return pk, ErrInvalidPacketID
	}

	if err := packet.Scan(
		&pk.Name,
	); err != nil {
		return pk, err
	}

	return pk, nil
}

type ClientBoundDisconnect struct {
	Reason Chat
}

func (pk ClientBoundDisconnect) Marshal() Packet {
	return MarshalPacket(
		ClientBoundDisconnectPacketID,
		pk.Reason,
	)
}

// DisconnectReason wraps a plain message into the chat json the
// disconnect packet expects.
func DisconnectReason(message string) Chat {
	text, _ := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: message})
	return Chat(text)
}
