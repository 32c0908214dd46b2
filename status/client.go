package status

import "net"

// Client carries the context of a single connecting client. It is built
// by the network layer once per request and never mutated afterwards.
type Client struct {
	// Addr is the remote network address of the client.
	Addr net.Addr
	// Protocol is the protocol version the client announced, if any.
	Protocol *int
	// VirtualHost is the address the client connected through, if known.
	VirtualHost string
}
