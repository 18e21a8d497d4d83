// Package regime classifies the pre-session volatility readings (VIX, relative
// volume) into named regimes and builds the session context banner shown
// during prep.
package regime

import (
	"strconv"
	"strings"
)

// Bounds are the classifier cut lines. VIX uses strict > on the upper two
// bands; RVOL uses >= on its lower two.
type Bounds struct {
	VIXStressAbove   float64 `yaml:"vix_stress_above" json:"vix_stress_above"`
	VIXElevatedAbove float64 `yaml:"vix_elevated_above" json:"vix_elevated_above"`
	VIXNormalAtLeast float64 `yaml:"vix_normal_at_least" json:"vix_normal_at_least"`

	RVOLHotAbove     float64 `yaml:"rvol_hot_above" json:"rvol_hot_above"`
	RVOLActiveAtLeast float64 `yaml:"rvol_active_at_least" json:"rvol_active_at_least"`
	RVOLQuietAtLeast  float64 `yaml:"rvol_quiet_at_least" json:"rvol_quiet_at_least"`
}

// DefaultBounds returns the production classifier boundaries.
func DefaultBounds() Bounds {
	return Bounds{
		VIXStressAbove:   25,
		VIXElevatedAbove: 20,
		VIXNormalAtLeast: 14,

		RVOLHotAbove:      120,
		RVOLActiveAtLeast: 85,
		RVOLQuietAtLeast:  60,
	}
}

// Regime is a named volatility band with its sizing guidance.
type Regime struct {
	Label    string `json:"label"`
	Guidance string `json:"guidance"`
}

// Classifier applies configured bounds to raw prep readings.
type Classifier struct {
	bounds Bounds
}

// NewClassifier creates a classifier; zero bounds select the defaults.
func NewClassifier(b Bounds) *Classifier {
	if b == (Bounds{}) {
		b = DefaultBounds()
	}
	return &Classifier{bounds: b}
}

func parseReading(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != v {
		return 0, false
	}
	return v, true
}

// VIX classifies a VIX reading. Returns nil when the reading is missing or
// unparsable.
func (c *Classifier) VIX(v string) *Regime {
	x, ok := parseReading(v)
	if !ok {
		return nil
	}
	var r Regime
	switch {
	case x > c.bounds.VIXStressAbove:
		r = Regime{Label: "STRESS", Guidance: "High caution. Reduce size or sit out."}
	case x > c.bounds.VIXElevatedAbove:
		r = Regime{Label: "ELEVATED", Guidance: "Widen stops, reduce size."}
	case x >= c.bounds.VIXNormalAtLeast:
		r = Regime{Label: "NORMAL", Guidance: "Standard conditions."}
	default:
		r = Regime{Label: "ULTRA LOW", Guidance: "Compressed vol, potential expansion."}
	}
	return &r
}

// RVOL classifies a relative-volume reading (percent of normal). Returns nil
// when the reading is missing or unparsable.
func (c *Classifier) RVOL(v string) *Regime {
	x, ok := parseReading(v)
	if !ok {
		return nil
	}
	var r Regime
	switch {
	case x > c.bounds.RVOLHotAbove:
		r = Regime{Label: "HOT", Guidance: "High potential, high risk. A-setups only."}
	case x >= c.bounds.RVOLActiveAtLeast:
		r = Regime{Label: "ACTIVE", Guidance: "Normal. Run your playbook."}
	case x >= c.bounds.RVOLQuietAtLeast:
		r = Regime{Label: "QUIET", Guidance: "Trade small and selective."}
	default:
		r = Regime{Label: "DEAD", Guidance: "Protect capital. Nothing to do."}
	}
	return &r
}
