package repair

import "time"

// Config defines the fixed repair tuning. Values are pinned by design and
// only exposed for configuration so operators can tighten them, not to make
// the invariants negotiable.
type Config struct {
	// ClusterRadiusKm bounds how far a replacement stop may be from the
	// disrupted one.
	ClusterRadiusKm float64 `json:"cluster_radius_km"`
	// TravelBuffer is added on top of the travel estimate between stops.
	TravelBuffer time.Duration `json:"travel_buffer"`
	// IdleGapDiagnostic is the waiting time before a stop above which a
	// diagnostic (not an error) is emitted.
	IdleGapDiagnostic time.Duration `json:"idle_gap_diagnostic"`
	// CrowdDecayPer30Min is the fraction by which crowding decays every 30
	// minutes when re-estimating a shifted slot.
	CrowdDecayPer30Min float64 `json:"crowd_decay_per_30min"`
	// Meal windows, as offsets from midnight of the plan date.
	LunchOpen   time.Duration `json:"lunch_open"`
	LunchClose  time.Duration `json:"lunch_close"`
	DinnerOpen  time.Duration `json:"dinner_open"`
	DinnerClose time.Duration `json:"dinner_close"`
	// MealGap is the mandatory spacing between the prior stop's departure
	// and a meal start.
	MealGap time.Duration `json:"meal_gap"`
}

// DefaultConfig returns the fixed defaults.
func DefaultConfig() Config {
	return Config{
		ClusterRadiusKm:    5.0,
		TravelBuffer:       10 * time.Minute,
		IdleGapDiagnostic:  90 * time.Minute,
		CrowdDecayPer30Min: 0.15,
		LunchOpen:          12 * time.Hour,
		LunchClose:         14*time.Hour + 30*time.Minute,
		DinnerOpen:         18*time.Hour + 30*time.Minute,
		DinnerClose:        21*time.Hour + 30*time.Minute,
		MealGap:            60 * time.Minute,
	}
}

// SetDefaults fills zero fields with the fixed defaults.
func (c *Config) SetDefaults() {
	def := DefaultConfig()
	if c.ClusterRadiusKm <= 0 {
		c.ClusterRadiusKm = def.ClusterRadiusKm
	}
	if c.TravelBuffer <= 0 {
		c.TravelBuffer = def.TravelBuffer
	}
	if c.IdleGapDiagnostic <= 0 {
		c.IdleGapDiagnostic = def.IdleGapDiagnostic
	}
	if c.CrowdDecayPer30Min <= 0 {
		c.CrowdDecayPer30Min = def.CrowdDecayPer30Min
	}
	if c.LunchOpen == 0 {
		c.LunchOpen = def.LunchOpen
	}
	if c.LunchClose == 0 {
		c.LunchClose = def.LunchClose
	}
	if c.DinnerOpen == 0 {
		c.DinnerOpen = def.DinnerOpen
	}
	if c.DinnerClose == 0 {
		c.DinnerClose = def.DinnerClose
	}
	if c.MealGap == 0 {
		c.MealGap = def.MealGap
	}
}
