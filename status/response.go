package status

import "github.com/google/uuid"

// EmptyProfileID is the sentinel identifier of synthetic sample entries.
// They are display-only and never refer to a real account.
var EmptyProfileID = uuid.Nil.String()

// Response is the abstract response description produced by the resolver.
// Nil fields mean "no opinion, keep the default".
type Response struct {
	Description     *string
	VersionName     *string
	Protocol        *int
	Favicon         *FaviconSource
	HidePlayers     bool
	OnlinePlayers   *int
	MaxPlayers      *int
	PlayerHover     *string
	MultipleSamples bool
	SampleCount     *int
}

// PingResponse is the concrete response model handed to the network
// layer for serialization. A nil Players block means the player info is
// withheld, which is different from a zeroed one.
type PingResponse struct {
	Version     *Version     `json:"version,omitempty"`
	Players     *Players     `json:"players,omitempty"`
	Description *Description `json:"description,omitempty"`
	Favicon     string       `json:"favicon,omitempty"`
}

type Version struct {
	Name     string `json:"name"`
	Protocol int    `json:"protocol"`
}

type Players struct {
	Online int           `json:"online"`
	Max    int           `json:"max"`
	Sample []UserProfile `json:"sample,omitempty"`
}

type Description struct {
	Text string `json:"text"`
}

type UserProfile struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}
