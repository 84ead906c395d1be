package config

import (
	"fmt"
)

// AuditConfig defines where the audit trail is stored.
type AuditConfig struct {
	// Backend selects the store type: "jsonl" or "nop".
	Backend string `json:"backend"`
	// Path is the file location of the JSONL store.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *AuditConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "audit.log"
	}
}

// Validate checks mandatory fields.
func (c AuditConfig) Validate() error {
	if c.Backend != "jsonl" && c.Backend != "nop" {
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Backend == "jsonl" && c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

// APIConfig defines the HTTP surface settings.
type APIConfig struct {
	// Addr is the listen address of the HTTP API.
	Addr string `json:"addr"`
	// Token protects the endpoints; empty disables authentication.
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
