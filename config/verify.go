package config

import (
	"errors"
	"fmt"
	"net"
	"time"
)

var ErrNoAddress = errors.New("no bind address configured")

// VerifyConfig rejects configs that would only fail later at startup.
func VerifyConfig(cfg Config) error {
	if cfg.Address == "" {
		return ErrNoAddress
	}
	if _, _, err := net.SplitHostPort(cfg.Address); err != nil {
		return fmt.Errorf("bind address %q: %w", cfg.Address, err)
	}
	if cfg.NumberOfListeners < 1 {
		return fmt.Errorf("numberOfListeners must be at least 1, got %v", cfg.NumberOfListeners)
	}
	if cfg.IODeadline != "" {
		if _, err := time.ParseDuration(cfg.IODeadline); err != nil {
			return fmt.Errorf("ioDeadline: %w", err)
		}
	}
	if cfg.ConnectionLimit < 0 {
		return fmt.Errorf("connectionLimit must not be negative, got %v", cfg.ConnectionLimit)
	}
	if cfg.ConnectionCooldown != "" {
		if _, err := time.ParseDuration(cfg.ConnectionCooldown); err != nil {
			return fmt.Errorf("connectionCooldown: %w", err)
		}
	}
	return nil
}

// IODeadlineDuration parses the configured io deadline, falling back to
// the default when unset or unparsable.
func (cfg Config) IODeadlineDuration() time.Duration {
	d, err := time.ParseDuration(cfg.IODeadline)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// ConnectionCooldownDuration parses the configured limiter window,
// falling back to the default when unset or unparsable.
func (cfg Config) ConnectionCooldownDuration() time.Duration {
	d, err := time.ParseDuration(cfg.ConnectionCooldown)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}
