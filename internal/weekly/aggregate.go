// Package weekly folds a trading week's stored records into the review view:
// schema flags, the activation and lesson rollups, play outcomes, rule
// compliance tallies, and the body/mind table.
package weekly

import (
	"context"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/libertrade/deskd/internal/content"
	"github.com/libertrade/deskd/internal/dates"
	"github.com/libertrade/deskd/internal/gates"
	"github.com/libertrade/deskd/internal/journal"
)

// schemaFlagAbove is the strict threshold a schema score must exceed for the
// day to be flagged in the weekly review. Stricter than the daily AMBER line
// on purpose.
const schemaFlagAbove = 4

// Level is a traffic-light bucket for one body/mind indicator, empty when
// the reading was not logged.
type Level string

const (
	LevelGreen Level = "green"
	LevelAmber Level = "amber"
	LevelRed   Level = "red"
	LevelNone  Level = ""
)

// DayData is everything loaded for one weekday.
type DayData struct {
	Date        string                    `json:"date"`
	Day         string                    `json:"day"`
	CheckIn     *journal.CheckIn          `json:"checkin,omitempty"`
	Activations []journal.ActivationEvent `json:"activations"`
	Review      *journal.Review           `json:"review,omitempty"`
}

// SchemaFlag marks one elevated schema score on one day.
type SchemaFlag struct {
	DayIndex      int    `json:"dayIdx"`
	Day           string `json:"day"`
	Date          string `json:"date"`
	QuestionIndex int    `json:"questionIdx"`
	Question      string `json:"question"`
	Score         int    `json:"score"`
}

// TaggedActivation is an activation event tagged with its day for the
// rollup; Key matches the acknowledgement map keys the client writes.
type TaggedActivation struct {
	journal.ActivationEvent
	DayIndex     int    `json:"dayIdx"`
	EventIndex   int    `json:"actIdx"`
	Day          string `json:"day"`
	Date         string `json:"date"`
	Key          string `json:"key"`
	Acknowledged bool   `json:"acknowledged"`
}

// PlayOutcome is one reviewed play slot from one day.
type PlayOutcome struct {
	journal.Play
	Day  string `json:"day"`
	Date string `json:"date"`
}

// RuleTally is the week's compliance count for one rule. Days without an
// answer are excluded from the total.
type RuleTally struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Followed int    `json:"followed"`
	Broke    int    `json:"broke"`
	Total    int    `json:"total"`
}

// Lesson is one day's review lesson for the rollup.
type Lesson struct {
	DayIndex     int    `json:"dayIdx"`
	Day          string `json:"day"`
	Date         string `json:"date"`
	Lesson       string `json:"lesson"`
	Tomorrow     string `json:"tomorrow"`
	Acknowledged bool   `json:"acknowledged"`
}

// BodyMindDay is one row of the body/mind table.
type BodyMindDay struct {
	Day           string `json:"day"`
	Date          string `json:"date"`
	Logged        bool   `json:"logged"`
	Sleep         Level  `json:"sleep"`
	Recovery      Level  `json:"recovery"`
	Awareness     Level  `json:"awareness"`
	Connectedness Level  `json:"connectedness"`
	Gate          string `json:"gate,omitempty"`
}

// BodyMindSummary is the footer of the body/mind table.
type BodyMindSummary struct {
	Logged int `json:"logged"`
	Days   int `json:"days"`
	Green  int `json:"green"`
	Amber  int `json:"amber"`
	Red    int `json:"red"`
}

// Week is the full weekly review payload.
type Week struct {
	Monday      string                   `json:"monday"`
	Dates       [5]string                `json:"dates"`
	Days        [5]DayData               `json:"days"`
	SchemaFlags []SchemaFlag             `json:"schemaFlags"`
	Activations []TaggedActivation       `json:"activations"`
	TradedPlays []PlayOutcome            `json:"tradedPlays"`
	SkippedPlays []PlayOutcome           `json:"skippedPlays"`
	Rules       []RuleTally              `json:"rules"`
	Lessons     []Lesson                 `json:"lessons"`
	BodyMind    [5]BodyMindDay           `json:"bodyMind"`
	Summary     BodyMindSummary          `json:"summary"`
	Ack         *journal.WeeklyAck       `json:"ack"`
	Takeaway    *journal.WeeklyTakeaway  `json:"takeaway,omitempty"`
	Refresher   *journal.WeeklyRefresher `json:"refresher"`
	Questions   []string                 `json:"questions"`
}

// Aggregator builds weekly views from the repository.
type Aggregator struct {
	repo *journal.Repository
	eval *gates.Evaluator
	log  zerolog.Logger
}

// NewAggregator creates an aggregator. The body/mind day gates always use the
// default recovery-lenient thresholds, independent of the configured policy,
// so historical weeks read the same under either setting.
func NewAggregator(repo *journal.Repository, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		repo: repo,
		eval: gates.NewEvaluator(nil),
		log:  log.With().Str("component", "weekly").Logger(),
	}
}

// Build folds the week anchored at monday. It never fails: missing days
// simply contribute nothing.
func (a *Aggregator) Build(ctx context.Context, monday string) (*Week, error) {
	anchor, err := dates.ParseDayKey(monday)
	if err != nil {
		return nil, err
	}
	anchor = dates.Monday(anchor)
	mondayKey := dates.DayKey(anchor)
	week := &Week{Monday: mondayKey, Dates: dates.WeekDates(anchor)}

	// The five day loads are independent; fetch them concurrently.
	var wg sync.WaitGroup
	for i, date := range week.Dates {
		wg.Add(1)
		go func(i int, date string) {
			defer wg.Done()
			week.Days[i] = DayData{
				Date:        date,
				Day:         dates.DayName(i),
				CheckIn:     a.repo.CheckIn(ctx, date),
				Activations: a.repo.Activations(ctx, date),
				Review:      a.repo.FirstReview(ctx, date),
			}
		}(i, date)
	}
	wg.Wait()

	week.Ack = a.repo.WeeklyAck(ctx, mondayKey)
	week.Takeaway = a.repo.WeeklyTakeaway(ctx, mondayKey)
	week.Refresher = a.repo.WeeklyRefresher(ctx, mondayKey)
	week.Questions = content.WeeklyQuestions()

	a.foldSchemaFlags(week)
	a.foldActivations(week)
	a.foldPlays(week)
	a.foldRules(week)
	a.foldLessons(week)
	a.foldBodyMind(week)
	return week, nil
}

func (a *Aggregator) foldSchemaFlags(w *Week) {
	w.SchemaFlags = []SchemaFlag{}
	for di, d := range w.Days {
		if d.CheckIn == nil {
			continue
		}
		for qi, score := range d.CheckIn.SchemaScores {
			if score > schemaFlagAbove {
				w.SchemaFlags = append(w.SchemaFlags, SchemaFlag{
					DayIndex:      di,
					Day:           d.Day,
					Date:          d.Date,
					QuestionIndex: qi,
					Question:      content.SchemaQuestion(qi),
					Score:         score,
				})
			}
		}
	}
}

func (a *Aggregator) foldActivations(w *Week) {
	w.Activations = []TaggedActivation{}
	for di, d := range w.Days {
		for ei, ev := range d.Activations {
			key := strconv.Itoa(di) + "-" + strconv.Itoa(ei)
			w.Activations = append(w.Activations, TaggedActivation{
				ActivationEvent: ev,
				DayIndex:        di,
				EventIndex:      ei,
				Day:             d.Day,
				Date:            d.Date,
				Key:             key,
				Acknowledged:    w.Ack.Activations[key],
			})
		}
	}
}

func (a *Aggregator) foldPlays(w *Week) {
	w.TradedPlays = []PlayOutcome{}
	w.SkippedPlays = []PlayOutcome{}
	for _, d := range w.Days {
		if d.Review == nil {
			continue
		}
		for _, play := range d.Review.Plays() {
			if play.Result == "" && play.Traded == "" {
				continue
			}
			outcome := PlayOutcome{Play: play, Day: d.Day, Date: d.Date}
			switch play.Traded {
			case "Yes":
				w.TradedPlays = append(w.TradedPlays, outcome)
			case "No":
				w.SkippedPlays = append(w.SkippedPlays, outcome)
			}
		}
	}
}

func (a *Aggregator) foldRules(w *Week) {
	w.Rules = make([]RuleTally, 0, len(content.Rules()))
	for _, rule := range content.Rules() {
		tally := RuleTally{Key: rule.Key, Label: rule.Label}
		for _, d := range w.Days {
			if d.Review == nil {
				continue
			}
			switch d.Review.Rule(rule.Key) {
			case journal.RuleFollowed:
				tally.Followed++
			case journal.RuleBroke:
				tally.Broke++
			}
		}
		tally.Total = tally.Followed + tally.Broke
		w.Rules = append(w.Rules, tally)
	}
}

func (a *Aggregator) foldLessons(w *Week) {
	w.Lessons = []Lesson{}
	for di, d := range w.Days {
		if d.Review == nil {
			continue
		}
		if d.Review.BiggestLesson == "" && d.Review.TomorrowWill == "" {
			continue
		}
		w.Lessons = append(w.Lessons, Lesson{
			DayIndex:     di,
			Day:          d.Day,
			Date:         d.Date,
			Lesson:       d.Review.BiggestLesson,
			Tomorrow:     d.Review.TomorrowWill,
			Acknowledged: w.Ack.Lessons[strconv.Itoa(di)],
		})
	}
}

func (a *Aggregator) foldBodyMind(w *Week) {
	w.Summary = BodyMindSummary{Days: len(w.Days)}
	for di, d := range w.Days {
		row := BodyMindDay{Day: d.Day, Date: d.Date}
		if c := d.CheckIn; c != nil {
			row.Sleep = levelAtLeast(c.WhoopSleep, 80, 70)
			row.Recovery = levelAtLeast(c.WhoopRecovery, 70, 30)
			row.Awareness = scoreLevel(c.Awareness())
			row.Connectedness = scoreLevel(c.Connectedness())

			if gate := a.eval.WhoopGate(c.WhoopSleep, c.WhoopRecovery); gate != nil {
				row.Logged = true
				row.Gate = gate.String()
				w.Summary.Logged++
				switch *gate {
				case gates.Green:
					w.Summary.Green++
				case gates.Amber:
					w.Summary.Amber++
				case gates.Red:
					w.Summary.Red++
				}
			}
		}
		w.BodyMind[di] = row
	}
}

func levelAtLeast(reading string, green, amber float64) Level {
	v, ok := gates.ParseReading(reading)
	if !ok {
		return LevelNone
	}
	switch {
	case v >= green:
		return LevelGreen
	case v >= amber:
		return LevelAmber
	default:
		return LevelRed
	}
}

func scoreLevel(score int) Level {
	switch {
	case score <= 0:
		return LevelNone
	case score >= 4:
		return LevelGreen
	case score >= 2:
		return LevelAmber
	default:
		return LevelRed
	}
}
