// Package config loads the service configuration from a JSON or YAML file
// with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/voyagent/tripmend/core/metrics"
	"github.com/voyagent/tripmend/core/repair"
	"github.com/voyagent/tripmend/infra/monitoring"
	"github.com/voyagent/tripmend/infra/mqtt"
)

type Config struct {
	MQTT    mqtt.Config       `json:"mqtt"`
	Engine  EngineConfig      `json:"engine"`
	Repair  repair.Config     `json:"repair"`
	Metrics metrics.Config    `json:"metrics"`
	Audit   AuditConfig       `json:"audit"`
	API     APIConfig         `json:"api"`
	Sentry  monitoring.Config `json:"sentry"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("TM_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "tm_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.MQTT.SetDefaults()
	cfg.Engine.SetDefaults()
	cfg.Repair.SetDefaults()
	cfg.Audit.SetDefaults()
	cfg.API.SetDefaults()
	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Audit.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
