package status

const (
	// LegacyProtocol is the protocol number forced onto responses for
	// old-protocol clients.
	LegacyProtocol = 127
	// LegacyUnknownMax marks the max player count as unknown/withheld
	// for legacy clients, which cannot render an absent players block.
	LegacyUnknownMax = -1
)

// Assembler merges the resolver's abstract response description with
// the live client context into a concrete ping response. It is safe for
// arbitrary concurrent use.
type Assembler struct {
	resolver Resolver
	favicons *FaviconCache
	samples  *SampleBuilder
}

func NewAssembler(resolver Resolver, favicons *FaviconCache, samples *SampleBuilder) Assembler {
	return Assembler{
		resolver: resolver,
		favicons: favicons,
		samples:  samples,
	}
}

// Build asks the resolver for a response tailored to the client and
// merges it field by field. Missing optional fields keep their
// defaults, a favicon that fails to load is simply left out.
func (assembler Assembler) Build(client Client) PingResponse {
	resolved := assembler.resolver.Resolve(client)

	ping := PingResponse{Version: &Version{}}

	if resolved.Description != nil {
		ping.Description = &Description{Text: *resolved.Description}
	}

	if resolved.VersionName != nil {
		ping.Version.Name = *resolved.VersionName
	}
	if resolved.Protocol != nil {
		// Passed through as-is, the resolver is trusted here.
		ping.Version.Protocol = *resolved.Protocol
	}

	if resolved.Favicon != nil {
		if icon, ok := assembler.favicons.Get(*resolved.Favicon); ok {
			ping.Favicon = icon
		}
	}

	if resolved.HidePlayers {
		// Entirely absent, the transport treats that as withheld.
		ping.Players = nil
		return ping
	}

	if ping.Players == nil {
		ping.Players = &Players{}
	}
	if resolved.OnlinePlayers != nil {
		ping.Players.Online = *resolved.OnlinePlayers
	}
	if resolved.MaxPlayers != nil {
		ping.Players.Max = *resolved.MaxPlayers
	}

	if resolved.PlayerHover != nil {
		var lines []string
		if resolved.MultipleSamples {
			if resolved.SampleCount != nil {
				lines = assembler.samples.Split(*resolved.PlayerHover, *resolved.SampleCount)
			} else {
				lines = assembler.samples.SplitDefault(*resolved.PlayerHover)
			}
		} else {
			lines = []string{*resolved.PlayerHover}
		}

		sample := make([]UserProfile, len(lines))
		for i, line := range lines {
			sample[i] = UserProfile{Name: line, ID: EmptyProfileID}
		}
		ping.Players.Sample = sample
	}

	return ping
}

// BuildLegacy wraps Build for old-protocol clients: the protocol number
// is overwritten with the legacy sentinel and an absent players block
// is replaced with a well-formed one marking the counts as unknown.
func (assembler Assembler) BuildLegacy(client Client) PingResponse {
	ping := assembler.Build(client)
	ping.Version.Protocol = LegacyProtocol
	if ping.Players == nil {
		ping.Players = &Players{Online: 0, Max: LegacyUnknownMax}
	}
	return ping
}
