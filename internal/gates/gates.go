// Package gates turns the morning check-in (biometrics plus self-reported
// schema intensity) into a single traffic-light trading permission.
package gates

import (
	"strconv"
	"strings"
)

// Signal is a traffic-light gate value, ordered worst-last.
type Signal int

const (
	Green Signal = iota
	Amber
	Red
)

func (s Signal) String() string {
	switch s {
	case Green:
		return "GREEN"
	case Amber:
		return "AMBER"
	case Red:
		return "RED"
	default:
		return "UNKNOWN"
	}
}

// ParseSignal maps a stored gate string back to a Signal.
func ParseSignal(s string) (Signal, bool) {
	switch s {
	case "GREEN":
		return Green, true
	case "AMBER":
		return Amber, true
	case "RED":
		return Red, true
	}
	return Green, false
}

// WhoopThresholds are the sleep/recovery cut lines for the biometric gate.
// A GreenRecoveryAtLeast of zero leaves recovery unconstrained on the GREEN
// side, which is how the recovery-lenient policy behaves.
type WhoopThresholds struct {
	RedSleepBelow        float64 `yaml:"red_sleep_below" json:"red_sleep_below"`
	RedRecoveryBelow     float64 `yaml:"red_recovery_below" json:"red_recovery_below"`
	GreenSleepAtLeast    float64 `yaml:"green_sleep_at_least" json:"green_sleep_at_least"`
	GreenRecoveryAtLeast float64 `yaml:"green_recovery_at_least" json:"green_recovery_at_least"`
}

// RecoveryLenientThresholds is the default policy: RED on sleep <70 or
// recovery <30, GREEN on sleep >=80 regardless of recovery.
func RecoveryLenientThresholds() WhoopThresholds {
	return WhoopThresholds{
		RedSleepBelow:    70,
		RedRecoveryBelow: 30,
		GreenSleepAtLeast: 80,
	}
}

// RecoveryStrictThresholds is the stricter variant: RED on recovery <55 and
// GREEN only when both sleep >=80 and recovery >=70.
func RecoveryStrictThresholds() WhoopThresholds {
	return WhoopThresholds{
		RedSleepBelow:        70,
		RedRecoveryBelow:     55,
		GreenSleepAtLeast:    80,
		GreenRecoveryAtLeast: 70,
	}
}

// ThresholdsForPolicy resolves a named policy to its threshold set.
func ThresholdsForPolicy(policy string) (WhoopThresholds, bool) {
	switch policy {
	case "", PolicyRecoveryLenient:
		return RecoveryLenientThresholds(), true
	case PolicyRecoveryStrict:
		return RecoveryStrictThresholds(), true
	}
	return WhoopThresholds{}, false
}

const (
	PolicyRecoveryLenient = "recovery-lenient"
	PolicyRecoveryStrict  = "recovery-strict"
)

// Config holds every gate threshold.
type Config struct {
	Whoop WhoopThresholds `yaml:"whoop"`

	// Schema gate: scores above SchemaAmberAbove go AMBER, above
	// SchemaRedAbove go RED.
	SchemaAmberAbove int `yaml:"schema_amber_above"`
	SchemaRedAbove   int `yaml:"schema_red_above"`

	// Mental gate over min(awareness, connectedness) on the 1-5 scale.
	MentalRedAtOrBelow   int `yaml:"mental_red_at_or_below"`
	MentalAmberAtOrBelow int `yaml:"mental_amber_at_or_below"`
}

// DefaultConfig returns the production gate thresholds.
func DefaultConfig() *Config {
	return &Config{
		Whoop:                RecoveryLenientThresholds(),
		SchemaAmberAbove:     3,
		SchemaRedAbove:       5,
		MentalRedAtOrBelow:   1,
		MentalAmberAtOrBelow: 3,
	}
}

// Evaluator applies the configured thresholds to check-in inputs.
type Evaluator struct {
	config *Config
}

// NewEvaluator creates an evaluator; a nil config selects the defaults.
func NewEvaluator(cfg *Config) *Evaluator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Evaluator{config: cfg}
}

// ParseReading parses a user-entered numeric field. Inputs arrive as free
// text ("85", " 85 ", "85%"); anything that does not resolve to a finite
// number means "no reading", never zero.
func ParseReading(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	// ParseFloat accepts "NaN" and "Inf"; a gate must not.
	if v != v || v > 1e308 || v < -1e308 {
		return 0, false
	}
	return v, true
}

// WhoopGate evaluates the biometric gate. It returns nil when either reading
// is missing or unparsable: no signal, rather than a silently wrong gate.
func (e *Evaluator) WhoopGate(sleep, recovery string) *Signal {
	s, okS := ParseReading(sleep)
	r, okR := ParseReading(recovery)
	if !okS || !okR {
		return nil
	}

	t := e.config.Whoop
	var sig Signal
	switch {
	case s < t.RedSleepBelow || r < t.RedRecoveryBelow:
		sig = Red
	case s >= t.GreenSleepAtLeast && r >= t.GreenRecoveryAtLeast:
		sig = Green
	default:
		sig = Amber
	}
	return &sig
}

// RecoveryWarning reports whether recovery parsed into the caution band
// between the RED floor and 70: not gated out, but worth flagging.
func (e *Evaluator) RecoveryWarning(recovery string) bool {
	r, ok := ParseReading(recovery)
	if !ok {
		return false
	}
	return r >= e.config.Whoop.RedRecoveryBelow && r < 70
}

// SchemaGate evaluates the five schema-activation scores (0-10 each) against
// the worst single score.
func (e *Evaluator) SchemaGate(scores []int) Signal {
	max := 0
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	switch {
	case max > e.config.SchemaRedAbove:
		return Red
	case max > e.config.SchemaAmberAbove:
		return Amber
	default:
		return Green
	}
}

// MentalGate evaluates min(selfAwareness, connectedness) on the 1-5 scale.
// Zero means the sliders were never touched: no signal.
func (e *Evaluator) MentalGate(awareness, connectedness int) *Signal {
	if awareness <= 0 || connectedness <= 0 {
		return nil
	}
	min := awareness
	if connectedness < min {
		min = connectedness
	}
	var sig Signal
	switch {
	case min <= e.config.MentalRedAtOrBelow:
		sig = Red
	case min <= e.config.MentalAmberAtOrBelow:
		sig = Amber
	default:
		sig = Green
	}
	return &sig
}

// FinalGate folds the non-nil gates into the worst of them. An empty list
// defaults to GREEN: nothing logged means nothing blocking.
func FinalGate(gates ...Signal) Signal {
	worst := Green
	for _, g := range gates {
		if g > worst {
			worst = g
		}
	}
	return worst
}

// Guidance is the sizing recommendation attached to a final gate.
type Guidance struct {
	Label   string `json:"label"`
	Message string `json:"message"`
}

// SizingGuidance maps a gate to its position-sizing recommendation.
func SizingGuidance(s Signal) Guidance {
	switch s {
	case Red:
		return Guidance{Label: "NO TRADE", Message: "Walk away. Protect capital & progress."}
	case Amber:
		return Guidance{Label: "HALF SIZE", Message: "A+ setups only. Reduced size."}
	default:
		return Guidance{Label: "FULL SIZE", Message: "Ready to hunt. Patience is the edge."}
	}
}
