package config

import (
	"fmt"
	"time"

	"github.com/voyagent/tripmend/core/model"
)

// EngineConfig holds the session threshold defaults handed to new trips.
// The classifier ladder and its cutoffs are fixed; only the ceilings the
// ladder compares against are configurable.
type EngineConfig struct {
	CrowdThreshold       float64 `json:"crowd_threshold"`
	TrafficThreshold     float64 `json:"traffic_threshold"`
	TravelCeilingMinutes int     `json:"travel_ceiling_minutes"`
}

// SetDefaults applies the fixed session defaults.
func (c *EngineConfig) SetDefaults() {
	def := model.DefaultThresholds()
	if c.CrowdThreshold == 0 {
		c.CrowdThreshold = def.Crowd
	}
	if c.TrafficThreshold == 0 {
		c.TrafficThreshold = def.Traffic
	}
	if c.TravelCeilingMinutes == 0 {
		c.TravelCeilingMinutes = int(def.TravelCeiling.Minutes())
	}
}

// Validate checks the threshold ranges.
func (c EngineConfig) Validate() error {
	if c.CrowdThreshold < 0 || c.CrowdThreshold > 1 {
		return fmt.Errorf("crowd_threshold %.2f out of [0,1]", c.CrowdThreshold)
	}
	if c.TrafficThreshold < 0 || c.TrafficThreshold > 1 {
		return fmt.Errorf("traffic_threshold %.2f out of [0,1]", c.TrafficThreshold)
	}
	if c.TravelCeilingMinutes < 0 {
		return fmt.Errorf("travel_ceiling_minutes must not be negative")
	}
	return nil
}

// Thresholds converts the config to the model type.
func (c EngineConfig) Thresholds() model.Thresholds {
	return model.Thresholds{
		Crowd:         c.CrowdThreshold,
		Traffic:       c.TrafficThreshold,
		TravelCeiling: time.Duration(c.TravelCeilingMinutes) * time.Minute,
	}
}
