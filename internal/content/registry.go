// Package content holds the static coaching material served to the client:
// the schema library, check-in questions, trade-rule checklist, the DLL
// circuit-breaker flow, and the weekly review prompts. All accessors return
// copies so callers cannot mutate the registry.
package content

// Schema describes one mental schema and its pattern interrupts.
type Schema struct {
	Key        string   `json:"key"`
	Name       string   `json:"name"`
	Subtitle   string   `json:"subtitle"`
	Trigger    string   `json:"trigger"`
	Belief     string   `json:"belief"`
	Body       string   `json:"body"`
	Interrupts []string `json:"interrupts"`
	Reset      string   `json:"reset"`
}

var schemas = []Schema{
	{
		Key:      "abandonment",
		Name:     "Abandonment",
		Subtitle: "Grab It Before It's Gone",
		Trigger:  "Unrealised profit on an open position. A winner that starts to pull back. The urge to move stop loss to breakeven prematurely. An imperfect entry making me feel like the trade doesn't deserve to run.",
		Belief:   "Good things get taken away. Encoded at survival level from past losses. Your nervous system remembers even when your mind moves on.",
		Body:     "Chest tightness, urgency, restless hands hovering over close button or SL.",
		Interrupts: []string{
			"A good entry taken beats a perfect entry missed.",
			"Stop loss should not be moved until I am prepared to take profit. My system is managing risk.",
			"Grabbing profit early is my fear talking, not my system.",
			"I let the market do the heavy lifting.",
			"Bigger balls = Bigger results.",
		},
		Reset: "Hands off keyboard. Three slow breaths. Feel your feet on the floor. You are safe.",
	},
	{
		Key:      "defectiveness",
		Name:     "Defectiveness",
		Subtitle: "I Have to Prove Myself",
		Trigger:  "A loss, multiple losses, hitting DLL. Feeling like you made a mistake.",
		Belief:   "Losses confirm I'm not adequate. This fires in relationships too, especially when feeling unappreciated.",
		Body:     "Heat in face/chest, jaw tightening, compulsive drive to re-enter immediately.",
		Interrupts: []string{
			"A loss is a cost of business, not evidence of who I am.",
			"The DLL exists to protect me. Respecting it IS the professional move.",
			"Revenge trading has never once made me feel better.",
			"Walking away right now is the strongest thing I can do.",
		},
		Reset: "Stand up. Walk away for 5 minutes. Splash cold water on your face.",
	},
	{
		Key:      "standards",
		Name:     "Unrelenting Standards",
		Subtitle: "It Has to Be Perfect",
		Trigger:  "Feeling like my entry wasn't perfect enough. Wanting the exact top or bottom instead of accepting a good A+ setup. Staying on the charts because I haven't hit a P&L number that feels 'good enough'.",
		Belief:   "Anything less than perfect isn't good enough. This drives overtrading, chasing, and refusing to walk away from the screen.",
		Body:     "Inability to step away from charts, restlessness, the feeling that I need to do more or stay longer to prove today was worth it.",
		Interrupts: []string{
			"A+ is the standard. Not perfect. A+ builds accounts.",
			"Picking tops and bottoms is picking a fight I will lose.",
			"Conserve mental capital. Perform better. Be selective.",
			"My P&L does not define my worth or my session quality.",
		},
		Reset: "Close the 1-minute chart. Zoom out. Look at the higher timeframe trend.",
	},
}

// CheckInQuestion is one morning self-scan prompt tagged with the schema it
// probes.
type CheckInQuestion struct {
	Text   string `json:"text"`
	Schema string `json:"schema"`
}

var checkInQuestions = []CheckInQuestion{
	{Text: "Anxiety about losing money today?", Schema: "ABANDON"},
	{Text: "Need to 'prove' something today?", Schema: "DEFECT"},
	{Text: "Fixated on making today 'perfect'?", Schema: "STANDARD"},
	{Text: "Something personal activating me?", Schema: "ALL"},
	{Text: "Trading to recover yesterday?", Schema: "DEFECT"},
}

// Rule is one entry of the end-of-day rule checklist. Key is the review
// record field the answer is stored under.
type Rule struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

var rules = []Rule{
	{Key: "rulesTrend", Label: "Traded with Trend / Tape"},
	{Key: "rulesMarketCond", Label: "Traded Inline with Market Condition"},
	{Key: "rulesTopBottom", Label: "Avoided Picking Tops and Bottoms"},
	{Key: "rulesPlays", Label: "Trades from Pre Defined Plays"},
	{Key: "rulesExecution", Label: "Execution Model Followed"},
	{Key: "rulesFocus", Label: "Stayed Focused and Avoided Distraction"},
	{Key: "rulesConsol", Label: "Avoided Entering During Consolidation"},
	{Key: "rulesDLL", Label: "DLL Respected"},
}

// DLLStep is one stage of the daily-loss-limit circuit breaker.
type DLLStep struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Prompt   string   `json:"prompt,omitempty"`
	Key      string   `json:"key"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
}

var dllSteps = []DLLStep{
	{
		Title:    "STOP",
		Subtitle: "Do not touch the DLL yet.",
		Prompt:   "What just happened that made me want to unlock?",
		Key:      "whatHappened",
		Type:     "text",
	},
	{
		Title:    "FEEL",
		Subtitle: "Name what's happening inside you.",
		Prompt:   "What am I feeling right now?",
		Key:      "feeling",
		Type:     "select",
		Options: []string{
			"Anger at a loss",
			"Need to prove myself",
			"Frustration, I know I'm better than this",
			"Desperation to recover",
			"Numbness, I've stopped caring",
			"Other",
		},
	},
	{
		Title:    "IDENTIFY",
		Subtitle: "Which schema is driving this?",
		Prompt:   "This urge is being driven by:",
		Key:      "schema",
		Type:     "select",
		Options: []string{
			"Defectiveness: I need to prove I'm not a failure",
			"Abandonment: I need to get back what was taken",
			"Standards: I can't accept ending the day like this",
		},
	},
	{
		Title:    "REMEMBER",
		Subtitle: "These are your own words.",
		Key:      "remember",
		Type:     "affirmations",
	},
	{
		Title:    "DECIDE",
		Subtitle: "Make a conscious choice.",
		Prompt:   "Having read all of this, I choose to:",
		Key:      "decision",
		Type:     "select",
		Options: []string{
			"Keep DLL locked. Walk away and protect my dreams",
			"Keep DLL locked. I'll come back tomorrow stronger",
			"Unlock DLL. I acknowledge I am breaking my own rules",
		},
	},
}

var dllAffirmations = []string{
	"Disrespecting and unlocking DLL means I am intentionally breaking my own dreams.",
	"The DLL exists to protect me from this exact moment.",
	"Revenge trading has never once made me feel better. It has only ever made the day worse.",
	"Walking away right now is the strongest thing I can do.",
	"My large drawdown days come from this exact decision.",
	"Not following my system means I'm not following my dreams.",
}

var nonNegotiables = []string{
	"Breaking my rules means I am intentionally breaking my own dreams.",
	"Not following my system means I'm not following my dreams.",
	"Picking tops & bottoms is picking a fight I'm likely to lose.",
	"Moving to BE out of fear is choosing comfort over conviction.",
	"Distractions while trading rob me of my progress.",
	"Trading my PnL means long term Probably Lose.",
}

var weeklyQuestions = []string{
	"Which schema was most active this week?",
	"Most common cascade pattern this week?",
	"How many DLL urges? Did the circuit breaker help?",
	"On my worst day, what was my pre-session emotional state?",
	"Sessions where I was activated but followed plan? (These are wins)",
	"P&L on GREEN vs AMBER vs RED days?",
	"Patterns activating me outside of trading?",
	"One thing I'll change next week?",
}

// schemaQuestions label the five schema-score sliders; the weekly review
// flags a day when any slider exceeds 4.
var schemaQuestions = []string{
	"Am I trying to prove something?",
	"Am I avoiding out of fear?",
	"Do I feel not good enough?",
	"Am I overcomplicating?",
	"Do I feel the need to be right?",
}

var refresherAreas = []string{
	"Mental Schemas",
	"AMT / Volume Profile",
	"Setups",
	"Execution",
	"Risk / Trade Management",
}

// Schemas returns the schema library.
func Schemas() []Schema {
	out := make([]Schema, len(schemas))
	copy(out, schemas)
	for i := range out {
		out[i].Interrupts = append([]string(nil), out[i].Interrupts...)
	}
	return out
}

// SchemaByKey looks a schema up by its key.
func SchemaByKey(key string) (Schema, bool) {
	for _, s := range Schemas() {
		if s.Key == key {
			return s, true
		}
	}
	return Schema{}, false
}

// CheckInQuestions returns the morning self-scan prompts.
func CheckInQuestions() []CheckInQuestion {
	return append([]CheckInQuestion(nil), checkInQuestions...)
}

// Rules returns the end-of-day rule checklist in display order.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// RuleKeys returns just the review-record field keys, in display order.
func RuleKeys() []string {
	keys := make([]string, len(rules))
	for i, r := range rules {
		keys[i] = r.Key
	}
	return keys
}

// RuleLabel resolves a rule key to its display label.
func RuleLabel(key string) (string, bool) {
	for _, r := range rules {
		if r.Key == key {
			return r.Label, true
		}
	}
	return "", false
}

// DLLSteps returns the circuit-breaker flow.
func DLLSteps() []DLLStep {
	out := make([]DLLStep, len(dllSteps))
	copy(out, dllSteps)
	for i := range out {
		out[i].Options = append([]string(nil), out[i].Options...)
	}
	return out
}

// DLLAffirmations returns the REMEMBER-step affirmations.
func DLLAffirmations() []string {
	return append([]string(nil), dllAffirmations...)
}

// NonNegotiables returns the standing non-negotiable commitments.
func NonNegotiables() []string {
	return append([]string(nil), nonNegotiables...)
}

// WeeklyQuestions returns the weekly review prompts.
func WeeklyQuestions() []string {
	return append([]string(nil), weeklyQuestions...)
}

// SchemaQuestions returns the labels of the five schema-score sliders.
func SchemaQuestions() []string {
	return append([]string(nil), schemaQuestions...)
}

// SchemaQuestion returns the label for one slider index, or "".
func SchemaQuestion(i int) string {
	if i < 0 || i >= len(schemaQuestions) {
		return ""
	}
	return schemaQuestions[i]
}

// RefresherAreas returns the study areas offered by the weekly refresher.
func RefresherAreas() []string {
	return append([]string(nil), refresherAreas...)
}
