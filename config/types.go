package config

// Config is the main configuration of the server. Durations are kept
// as strings in the file and parsed where they are consumed.
type Config struct {
	Address             string `json:"address"`
	AcceptProxyProtocol bool   `json:"acceptProxyProtocol"`
	NumberOfListeners   int    `json:"numberOfListeners"`
	IODeadline          string `json:"ioDeadline"`

	// ConnectionLimit caps accepted connections per cooldown window;
	// 0 disables limiting.
	ConnectionLimit    int    `json:"connectionLimit"`
	ConnectionCooldown string `json:"connectionCooldown"`

	APIBind          string `json:"apiBind"`
	EnablePrometheus bool   `json:"enablePrometheus"`

	PidFile       string `json:"pidFile"`
	EnableHotSwap bool   `json:"enableHotSwap"`

	PlayerTracking bool        `json:"playerTracking"`
	Login          LoginConfig `json:"login"`

	Caches CachesConfig `json:"caches"`
	Status StatusConfig `json:"status"`
}

type LoginConfig struct {
	Messages []string `json:"messages"`
}

// CachesConfig holds the cache policy specs, written in the shared
// mini-language, e.g. "maximumSize=64,expireAfterWrite=6h". An empty
// favicon spec disables the favicon cache.
type CachesConfig struct {
	Favicon      string `json:"favicon"`
	PlayerSample string `json:"playerSample"`
}

// StatusConfig feeds the built-in static resolver. Pointer fields are
// optional: absent values leave the response defaults untouched.
type StatusConfig struct {
	Description *string `json:"description"`
	VersionName *string `json:"versionName"`
	Protocol    *int    `json:"protocol"`

	HidePlayers   bool `json:"hidePlayers"`
	OnlinePlayers *int `json:"onlinePlayers"`
	MaxPlayers    *int `json:"maxPlayers"`

	PlayerHover     *string `json:"playerHover"`
	MultipleSamples bool    `json:"multipleSamples"`
	SampleCount     *int    `json:"sampleCount"`

	FaviconPath    string `json:"faviconPath"`
	FaviconURL     string `json:"faviconUrl"`
	FaviconEncoded string `json:"faviconEncoded"`
}

func DefaultConfig() Config {
	description := "A Viridian server list"
	versionName := "Viridian"
	protocol := 755
	maxPlayers := 20

	return Config{
		Address:            ":25565",
		NumberOfListeners:  1,
		IODeadline:         "5s",
		ConnectionCooldown: "1s",

		APIBind:          "127.0.0.1:9171",
		EnablePrometheus: true,

		PidFile:       "/var/run/viridian.pid",
		EnableHotSwap: false,

		PlayerTracking: false,
		Login: LoginConfig{
			Messages: []string{"Hello, %player%!"},
		},

		Caches: CachesConfig{
			Favicon:      "maximumSize=64,expireAfterWrite=6h",
			PlayerSample: "maximumSize=256,expireAfterWrite=1h",
		},

		Status: StatusConfig{
			Description: &description,
			VersionName: &versionName,
			Protocol:    &protocol,
			MaxPlayers:  &maxPlayers,
		},
	}
}
