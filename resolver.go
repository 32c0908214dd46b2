package viridian

import (
	"github.com/viridianmc/viridian/config"
	"github.com/viridianmc/viridian/status"
)

// NewStaticResolver serves the status section of the config verbatim.
// It stands in for a full templating engine behind the same interface.
func NewStaticResolver(cfg config.StatusConfig) status.Resolver {
	return staticResolver{cfg: cfg}
}

type staticResolver struct {
	cfg config.StatusConfig
}

func (resolver staticResolver) Resolve(client status.Client) status.Response {
	response := status.Response{
		Description:     resolver.cfg.Description,
		VersionName:     resolver.cfg.VersionName,
		Protocol:        resolver.cfg.Protocol,
		HidePlayers:     resolver.cfg.HidePlayers,
		OnlinePlayers:   resolver.cfg.OnlinePlayers,
		MaxPlayers:      resolver.cfg.MaxPlayers,
		PlayerHover:     resolver.cfg.PlayerHover,
		MultipleSamples: resolver.cfg.MultipleSamples,
		SampleCount:     resolver.cfg.SampleCount,
	}
	if source, ok := resolver.faviconSource(); ok {
		response.Favicon = &source
	}
	return response
}

// FaviconSources lets the server warm the favicon cache at startup.
func (resolver staticResolver) FaviconSources() []status.FaviconSource {
	source, ok := resolver.faviconSource()
	if !ok {
		return nil
	}
	return []status.FaviconSource{source}
}

func (resolver staticResolver) faviconSource() (status.FaviconSource, bool) {
	switch {
	case resolver.cfg.FaviconPath != "":
		return status.FaviconSource{Kind: status.SourceFile, Value: resolver.cfg.FaviconPath}, true
	case resolver.cfg.FaviconURL != "":
		return status.FaviconSource{Kind: status.SourceURL, Value: resolver.cfg.FaviconURL}, true
	case resolver.cfg.FaviconEncoded != "":
		return status.FaviconSource{Kind: status.SourceEncoded, Value: resolver.cfg.FaviconEncoded}, true
	}
	return status.FaviconSource{}, false
}
