package config

import (
	"encoding/json"
	"os"
)

const MainConfigFileName = "viridian.json"

// ReadConfig loads the config file at path on top of the compiled-in
// defaults, so a partial file keeps every unspecified default.
func ReadConfig(path string) (Config, error) {
	bb, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(bb, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Reader hands out the current config; injectable so tests do not need
// files on disk.
type Reader func() (Config, error)

func NewFileReader(path string) Reader {
	return func() (Config, error) {
		cfg, err := ReadConfig(path)
		if err != nil {
			return cfg, err
		}
		return cfg, VerifyConfig(cfg)
	}
}
