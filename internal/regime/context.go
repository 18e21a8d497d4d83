package regime

import "fmt"

// Combine folds two timeframe reads into one. Matching reads keep their value,
// conflicting reads become "Mixed", a single read stands alone.
func Combine(a, b string) string {
	if a != "" && b != "" {
		if a == b {
			return a
		}
		return "Mixed"
	}
	if a != "" {
		return a
	}
	return b
}

// Tone buckets a directional read for display.
type Tone string

const (
	ToneUp      Tone = "up"
	ToneDown    Tone = "down"
	ToneMixed   Tone = "mixed"
	ToneNeutral Tone = "neutral"
)

// DirectionTone maps a trend or price-action read to its display tone.
func DirectionTone(v string) Tone {
	switch v {
	case "Bullish", "Up", "Pushing Up":
		return ToneUp
	case "Bearish", "Down", "Pushing Down":
		return ToneDown
	case "Mixed":
		return ToneMixed
	default:
		return ToneNeutral
	}
}

// ContextInputs are the prep fields the session banner is built from.
type ContextInputs struct {
	VIX               string
	RVOL              string
	EMAWeekly         string
	EMADaily          string
	PriorDailyCandle  string
	EMA4h1h           string
	PA4h1h            string
	AuctionDirection  string
	AuctionConviction string
}

// Row is one entry in the session context banner.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Tone  Tone   `json:"tone"`
}

// SessionContext builds the pre-session banner for one instrument. Rows with
// no underlying data are omitted; an all-empty prep yields just the
// instrument row.
func (c *Classifier) SessionContext(instrument string, in ContextInputs) []Row {
	rows := []Row{{Label: "Instrument", Value: instrument, Tone: ToneNeutral}}

	if r := c.VIX(in.VIX); r != nil {
		rows = append(rows, Row{Label: "VIX", Value: r.Label, Tone: regimeTone(r.Label)})
	}
	if r := c.RVOL(in.RVOL); r != nil {
		rows = append(rows, Row{Label: "RVOL", Value: r.Label, Tone: regimeTone(r.Label)})
	}
	if in.EMAWeekly != "" {
		rows = append(rows, Row{Label: "Weekly", Value: in.EMAWeekly, Tone: DirectionTone(in.EMAWeekly)})
	}
	if daily := Combine(in.EMADaily, in.PriorDailyCandle); daily != "" {
		rows = append(rows, Row{Label: "Daily", Value: daily, Tone: DirectionTone(daily)})
	}
	if intraday := Combine(in.EMA4h1h, in.PA4h1h); intraday != "" {
		rows = append(rows, Row{Label: "Intraday", Value: intraday, Tone: DirectionTone(intraday)})
	}
	if in.AuctionDirection != "" {
		v := in.AuctionDirection
		if in.AuctionConviction != "" {
			v = fmt.Sprintf("%s (%s)", v, in.AuctionConviction)
		}
		rows = append(rows, Row{Label: "Auction", Value: v, Tone: DirectionTone(in.AuctionDirection)})
	}
	return rows
}

func regimeTone(label string) Tone {
	switch label {
	case "STRESS", "HOT":
		return ToneDown
	case "ELEVATED", "QUIET":
		return ToneMixed
	case "NORMAL", "ACTIVE":
		return ToneUp
	default:
		return ToneNeutral
	}
}
