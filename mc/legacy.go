package mc

import (
	"fmt"
	"unicode/utf16"
)

// Pre-netty clients probe with a bare 0xFE byte instead of a handshake
// packet and expect a 0xFF kick packet with a UTF-16BE payload back.
const (
	LegacyPingPacketID byte = 0xFE
	LegacyKickPacketID byte = 0xFF
)

// LegacyStatusPayload builds the null-separated status string of the
// post-1.4 legacy ping format.
func LegacyStatusPayload(protocol int, version, motd string, online, max int) string {
	return fmt.Sprintf("§1\x00%d\x00%s\x00%s\x00%d\x00%d", protocol, version, motd, online, max)
}

// LegacyBetaStatusPayload builds the older status string clients before
// 1.4 expect. Those probe with a bare 0xFE, without the trailing 0x01.
func LegacyBetaStatusPayload(motd string, online, max int) string {
	return fmt.Sprintf("%s§%d§%d", motd, online, max)
}

// MarshalLegacyKick encodes a 0xFF kick packet: packet id, payload length
// in UTF-16 code units as a big-endian short, then the UTF-16BE payload.
func MarshalLegacyKick(payload string) []byte {
	units := utf16.Encode([]rune(payload))
	bb := make([]byte, 0, 3+len(units)*2)
	bb = append(bb, LegacyKickPacketID)
	bb = append(bb, byte(len(units)>>8), byte(len(units)))
	for _, unit := range units {
		bb = append(bb, byte(unit>>8), byte(unit))
	}
	return bb
}
