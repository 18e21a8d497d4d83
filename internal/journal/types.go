// Package journal defines the stored record types and the typed repository
// over the key-value store. JSON field names match the blobs the original
// client wrote, so an existing table can be read in place.
package journal

import (
	"fmt"
	"time"
)

// SchemaVersion is stamped on every record written by this service. Records
// written by the original client carry no version and decode as zero.
const SchemaVersion = 1

// CheckIn is the morning readiness survey.
type CheckIn struct {
	SchemaVersion int    `json:"schemaVersion,omitempty"`
	WhoopSleep    string `json:"whoopSleep"`
	WhoopRecovery string `json:"whoopRecovery"`
	MentalScores  [2]int `json:"mentalScores"`
	OtherChecks   []bool `json:"otherChecks"`
	SchemaScores  [5]int `json:"schemaScores"`
	WhoopGate     string `json:"whoopGate,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
}

// Awareness and Connectedness are the two mental sliders, 1-5, zero when
// untouched.
func (c *CheckIn) Awareness() int     { return c.MentalScores[0] }
func (c *CheckIn) Connectedness() int { return c.MentalScores[1] }

// Validate bounds-checks a check-in before save.
func (c *CheckIn) Validate() error {
	if err := validatePercentField("whoopSleep", c.WhoopSleep); err != nil {
		return err
	}
	if err := validatePercentField("whoopRecovery", c.WhoopRecovery); err != nil {
		return err
	}
	for i, s := range c.MentalScores {
		if s < 0 || s > 5 {
			return fmt.Errorf("mentalScores[%d]: %d out of range 0-5", i, s)
		}
	}
	for i, s := range c.SchemaScores {
		if s < 0 || s > 10 {
			return fmt.Errorf("schemaScores[%d]: %d out of range 0-10", i, s)
		}
	}
	return nil
}

// Prep is the pre-session plan for one instrument.
type Prep struct {
	SchemaVersion int    `json:"schemaVersion,omitempty"`
	Instrument    string `json:"instrument,omitempty"`

	News string `json:"news"`
	ADR  string `json:"adr"`
	RVOL string `json:"rvol"`
	VIX  string `json:"vix"`

	WeeklyCandle string `json:"weeklyCandle"`
	PriorDaily   string `json:"priorDaily"`
	EMAsWeekly   string `json:"emasW"`
	EMAsDaily    string `json:"emasD"`
	EMA4h1h      string `json:"ema4h1h"`
	PA4h1h       string `json:"pa4h1h"`

	ProfilePriorDay  bool `json:"profilePriorDay"`
	ProfileDevDay    bool `json:"profileDevDay"`
	ProfilePriorWeek bool `json:"profilePriorWeek"`
	ProfileDevWeek   bool `json:"profileDevWeek"`
	SDLevels         bool `json:"sdLevels"`

	SinglePrints   string   `json:"singlePrints"`
	Anomaly        []string `json:"anomaly"`
	RotationFactor string   `json:"rotationFactor"`

	AuctionDirection  string `json:"auctionDirection"`
	AuctionConviction string `json:"auctionConviction"`
	OpenVsValue       string `json:"openVsValue"`

	Bull1        string `json:"bull1"`
	Bull1Invalid string `json:"bull1Invalid"`
	Bull2        string `json:"bull2"`
	Bull2Invalid string `json:"bull2Invalid"`
	Bear1        string `json:"bear1"`
	Bear1Invalid string `json:"bear1Invalid"`
	Bear2        string `json:"bear2"`
	Bear2Invalid string `json:"bear2Invalid"`

	SessionFocus string `json:"sessionFocus"`

	SimDeactivated   bool `json:"simDeactivated"`
	Bracket          bool `json:"bracket"`
	MiniMicro        bool `json:"miniMicro"`
	AccountsUnlocked bool `json:"accountsUnlocked"`
	LagCheck         bool `json:"lagCheck"`

	Timestamp string `json:"timestamp,omitempty"`
}

var rotationFactors = map[string]bool{"": true, "Pushing Up": true, "Pushing Down": true, "Neutral": true}
var auctionDirections = map[string]bool{"": true, "Up": true, "Down": true, "Sideways": true}

// Validate checks the enum-valued prep fields.
func (p *Prep) Validate() error {
	if !rotationFactors[p.RotationFactor] {
		return fmt.Errorf("rotationFactor: unknown value %q", p.RotationFactor)
	}
	if !auctionDirections[p.AuctionDirection] {
		return fmt.Errorf("auctionDirection: unknown value %q", p.AuctionDirection)
	}
	return nil
}

// Play is one of the four pre-defined plays (bull 1/2, bear 1/2) with its
// review outcome.
type Play struct {
	Slot   string `json:"slot"`
	Result string `json:"result"`
	Traded string `json:"traded"`
	WhyNot string `json:"whyNot"`
}

// Review is the post-session retrospective for one instrument.
type Review struct {
	SchemaVersion int    `json:"schemaVersion,omitempty"`
	Instrument    string `json:"instrument,omitempty"`

	FocusRating int `json:"focusRating"`

	Bull1Result string `json:"bull1Result"`
	Bull1Traded string `json:"bull1Traded"`
	Bull1WhyNot string `json:"bull1WhyNot"`
	Bull2Result string `json:"bull2Result"`
	Bull2Traded string `json:"bull2Traded"`
	Bull2WhyNot string `json:"bull2WhyNot"`
	Bear1Result string `json:"bear1Result"`
	Bear1Traded string `json:"bear1Traded"`
	Bear1WhyNot string `json:"bear1WhyNot"`
	Bear2Result string `json:"bear2Result"`
	Bear2Traded string `json:"bear2Traded"`
	Bear2WhyNot string `json:"bear2WhyNot"`

	RulesTrend          string `json:"rulesTrend"`
	RulesTrendNote      string `json:"rulesTrendNote"`
	RulesMarketCond     string `json:"rulesMarketCond"`
	RulesMarketCondNote string `json:"rulesMarketCondNote"`
	RulesTopBottom      string `json:"rulesTopBottom"`
	RulesTopBottomNote  string `json:"rulesTopBottomNote"`
	RulesPlays          string `json:"rulesPlays"`
	RulesPlaysNote      string `json:"rulesPlaysNote"`
	RulesExecution      string `json:"rulesExecution"`
	RulesExecutionNote  string `json:"rulesExecutionNote"`
	RulesFocus          string `json:"rulesFocus"`
	RulesFocusNote      string `json:"rulesFocusNote"`
	RulesConsol         string `json:"rulesConsol"`
	RulesConsolNote     string `json:"rulesConsolNote"`
	RulesDLL            string `json:"rulesDLL"`
	RulesDLLNote        string `json:"rulesDLLNote"`

	PostEmotional int `json:"postEmotional"`
	PostDecision  int `json:"postDecision"`
	PostPhysical  int `json:"postPhysical"`

	BiggestLesson string `json:"biggestLesson"`
	TomorrowWill  string `json:"tomorrowWill"`

	Timestamp string `json:"timestamp,omitempty"`
}

// RuleAnswer values for the compliance checklist.
const (
	RuleFollowed = "Followed"
	RuleBroke    = "Broke"
)

// Rule returns the compliance answer stored under the given rule key.
func (r *Review) Rule(key string) string {
	switch key {
	case "rulesTrend":
		return r.RulesTrend
	case "rulesMarketCond":
		return r.RulesMarketCond
	case "rulesTopBottom":
		return r.RulesTopBottom
	case "rulesPlays":
		return r.RulesPlays
	case "rulesExecution":
		return r.RulesExecution
	case "rulesFocus":
		return r.RulesFocus
	case "rulesConsol":
		return r.RulesConsol
	case "rulesDLL":
		return r.RulesDLL
	}
	return ""
}

// Plays returns the four play slots in display order.
func (r *Review) Plays() [4]Play {
	return [4]Play{
		{Slot: "Bull 1", Result: r.Bull1Result, Traded: r.Bull1Traded, WhyNot: r.Bull1WhyNot},
		{Slot: "Bull 2", Result: r.Bull2Result, Traded: r.Bull2Traded, WhyNot: r.Bull2WhyNot},
		{Slot: "Bear 1", Result: r.Bear1Result, Traded: r.Bear1Traded, WhyNot: r.Bear1WhyNot},
		{Slot: "Bear 2", Result: r.Bear2Result, Traded: r.Bear2Traded, WhyNot: r.Bear2WhyNot},
	}
}

// Validate bounds-checks a review before save.
func (r *Review) Validate() error {
	for _, f := range []struct {
		name  string
		value int
	}{
		{"focusRating", r.FocusRating},
		{"postEmotional", r.PostEmotional},
		{"postDecision", r.PostDecision},
		{"postPhysical", r.PostPhysical},
	} {
		if f.value < 0 || f.value > 5 {
			return fmt.Errorf("%s: %d out of range 0-5", f.name, f.value)
		}
	}
	for _, key := range []string{
		"rulesTrend", "rulesMarketCond", "rulesTopBottom", "rulesPlays",
		"rulesExecution", "rulesFocus", "rulesConsol", "rulesDLL",
	} {
		if v := r.Rule(key); v != "" && v != RuleFollowed && v != RuleBroke {
			return fmt.Errorf("%s: unknown value %q", key, v)
		}
	}
	return nil
}

// ActivationEvent is one live schema-activation log entry.
type ActivationEvent struct {
	ID           string `json:"id,omitempty"`
	Time         string `json:"time"`
	Happened     string `json:"happened"`
	Feeling      string `json:"feeling"`
	BodyLocation string `json:"bodyLocation"`
	Urge         string `json:"urge"`
	Schema       string `json:"schema"`
	Interrupt    string `json:"interrupt"`
	Outcome      string `json:"outcome"`
	CascadeFrom  string `json:"cascadeFrom,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"`
}

// DLLEvent is one pass through the daily-loss-limit circuit breaker.
type DLLEvent struct {
	ID           string `json:"id,omitempty"`
	WhatHappened string `json:"whatHappened"`
	Feeling      string `json:"feeling"`
	Schema       string `json:"schema"`
	Decision     string `json:"decision"`
	KeptLocked   bool   `json:"keptLocked"`
	ChangedMind  bool   `json:"changedMind,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"`
}

// WeeklyAck tracks which rolled-up activations and lessons have been
// acknowledged during the weekly review. Keys are day/entry indices as the
// original client wrote them.
type WeeklyAck struct {
	Activations map[string]bool `json:"activations"`
	Lessons     map[string]bool `json:"lessons"`
}

// NewWeeklyAck returns an ack record with initialized maps.
func NewWeeklyAck() *WeeklyAck {
	return &WeeklyAck{Activations: map[string]bool{}, Lessons: map[string]bool{}}
}

// WeeklyTakeaway is the single free-text takeaway for a week.
type WeeklyTakeaway struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

// WeeklyRefresher marks study areas flagged for revision and which are done.
type WeeklyRefresher struct {
	Flagged map[string]bool `json:"flagged"`
	Done    map[string]bool `json:"done"`
}

// NewWeeklyRefresher returns a refresher record with initialized maps.
func NewWeeklyRefresher() *WeeklyRefresher {
	return &WeeklyRefresher{Flagged: map[string]bool{}, Done: map[string]bool{}}
}

// Now formats the current time the way the original client stamped records.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func validatePercentField(name, value string) error {
	if value == "" {
		return nil
	}
	var v float64
	if _, err := fmt.Sscanf(value, "%f", &v); err != nil {
		// Free-text readings are tolerated; the gate treats them as absent.
		return nil
	}
	if v < 0 || v > 100 {
		return fmt.Errorf("%s: %v out of range 0-100", name, v)
	}
	return nil
}
