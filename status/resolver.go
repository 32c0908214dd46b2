package status

import "net"

// Resolver decides what a status response should contain for a given
// client. Implementations are expected to be side-effect free.
type Resolver interface {
	Resolve(client Client) Response
}

type ResolverFunc func(client Client) Response

func (f ResolverFunc) Resolve(client Client) Response {
	return f(client)
}

// FaviconLoader loads the image behind a favicon source and returns it
// in encoded display-ready form. Called at most once per cold cache key.
type FaviconLoader interface {
	Load(source FaviconSource) (string, error)
}

type FaviconLoaderFunc func(source FaviconSource) (string, error)

func (f FaviconLoaderFunc) Load(source FaviconSource) (string, error) {
	return f(source)
}

// Tracker is notified about connecting players. Calls are fire-and-forget:
// failures must never block or fail a login.
type Tracker interface {
	NotifyConnect(addr net.Addr, id string, name string)
}
