package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/viridianmc/viridian/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.MainConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadConfig_MergesOverDefaults(t *testing.T) {
	path := writeConfigFile(t, `{"address": ":25566", "playerTracking": true}`)

	cfg, err := config.ReadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Address != ":25566" {
		t.Errorf("got: %v; want: %v", cfg.Address, ":25566")
	}
	if !cfg.PlayerTracking {
		t.Error("expected playerTracking to be true")
	}

	// Everything the file doesnt mention keeps its default.
	defaults := config.DefaultConfig()
	if cfg.Caches.Favicon != defaults.Caches.Favicon {
		t.Errorf("got: %v; want the default %v", cfg.Caches.Favicon, defaults.Caches.Favicon)
	}
	if len(cfg.Login.Messages) != len(defaults.Login.Messages) {
		t.Errorf("got: %v; want the default %v", cfg.Login.Messages, defaults.Login.Messages)
	}
}

func TestReadConfig_MissingFile(t *testing.T) {
	_, err := config.ReadConfig(filepath.Join(t.TempDir(), "doesnt-exist.json"))
	if err == nil {
		t.Error("expected an error but got none")
	}
}

func TestNewFileReader_VerifiesTheConfig(t *testing.T) {
	path := writeConfigFile(t, `{"address": "no-port-here"}`)

	if _, err := config.NewFileReader(path)(); err == nil {
		t.Error("expected an error but got none")
	}
}

func TestVerifyConfig(t *testing.T) {
	tt := []struct {
		name    string
		mutate  func(cfg *config.Config)
		wantErr bool
	}{
		{
			name:   "defaults pass",
			mutate: func(cfg *config.Config) {},
		},
		{
			name: "empty address",
			mutate: func(cfg *config.Config) {
				cfg.Address = ""
			},
			wantErr: true,
		},
		{
			name: "address without port",
			mutate: func(cfg *config.Config) {
				cfg.Address = "127.0.0.1"
			},
			wantErr: true,
		},
		{
			name: "no listeners",
			mutate: func(cfg *config.Config) {
				cfg.NumberOfListeners = 0
			},
			wantErr: true,
		},
		{
			name: "bad io deadline",
			mutate: func(cfg *config.Config) {
				cfg.IODeadline = "five seconds"
			},
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tc.mutate(&cfg)
			err := config.VerifyConfig(cfg)
			if tc.wantErr && err == nil {
				t.Error("expected an error but got none")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("didnt expect an error but got: %v", err)
			}
		})
	}
}

func TestIODeadlineDuration(t *testing.T) {
	cfg := config.Config{IODeadline: "250ms"}
	if got := cfg.IODeadlineDuration(); got != 250*time.Millisecond {
		t.Errorf("got: %v; want: %v", got, 250*time.Millisecond)
	}

	cfg = config.Config{}
	if got := cfg.IODeadlineDuration(); got != 5*time.Second {
		t.Errorf("got: %v; want: %v", got, 5*time.Second)
	}
}
