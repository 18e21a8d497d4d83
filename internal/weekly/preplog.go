package weekly

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/libertrade/deskd/internal/dates"
	"github.com/libertrade/deskd/internal/journal"
)

// prepLogDays is how far back the prep log index looks.
const prepLogDays = 15

// prepContextDays is how far back the prep context searches for previous
// focus and lessons.
const prepContextDays = 7

// IndexEntry points at one saved prep.
type IndexEntry struct {
	Date       string `json:"date"`
	Instrument string `json:"instrument"`
	Key        string `json:"key"`
}

// LogEntry is the expanded view of one prep log row.
type LogEntry struct {
	Date       string           `json:"date"`
	Instrument string           `json:"instrument"`
	CheckIn    *journal.CheckIn `json:"checkin,omitempty"`
	Prep       *journal.Prep    `json:"prep,omitempty"`
	Review     *journal.Review  `json:"review,omitempty"`
}

// ADRReading is one prior average-daily-range reading for the trend arrow.
type ADRReading struct {
	Date string  `json:"date"`
	ADR  float64 `json:"adr"`
}

// PrevLessons is the most recent prior review lesson for an instrument.
type PrevLessons struct {
	Date     string `json:"date"`
	Lesson   string `json:"lesson"`
	Tomorrow string `json:"tomorrow"`
}

// PrepContext is the prior-session material surfaced while filling today's
// prep: recent ADR readings, the last session focus, the last lessons.
type PrepContext struct {
	PrevADRs    []ADRReading `json:"prevAdrs"`
	PrevFocus   string       `json:"prevFocus,omitempty"`
	PrevLessons *PrevLessons `json:"prevLessons,omitempty"`
}

// PrepLog indexes and expands saved preps. Expanded entries are cached for
// the life of the process; saved preps for past days never change.
type PrepLog struct {
	repo *journal.Repository
	log  zerolog.Logger

	mu    sync.Mutex
	cache map[string]*LogEntry
}

// NewPrepLog creates a prep log over the repository.
func NewPrepLog(repo *journal.Repository, log zerolog.Logger) *PrepLog {
	return &PrepLog{
		repo:  repo,
		log:   log.With().Str("component", "preplog").Logger(),
		cache: make(map[string]*LogEntry),
	}
}

// Index lists every saved prep in the trailing window, newest date first.
// Within a date, instruments keep their sorted key order.
func (p *PrepLog) Index(ctx context.Context, now time.Time) []IndexEntry {
	entries := []IndexEntry{}
	for _, date := range dates.RecentDays(now, prepLogDays) {
		for _, inst := range p.repo.Instruments(ctx, date) {
			entries = append(entries, IndexEntry{
				Date:       date,
				Instrument: inst,
				Key:        journal.PrepKey(date, inst),
			})
		}
	}
	return entries
}

// Entry expands one (date, instrument) pair into its check-in, prep, and
// review.
func (p *PrepLog) Entry(ctx context.Context, date, instrument string) *LogEntry {
	cacheKey := date + "\x00" + instrument

	p.mu.Lock()
	if e, ok := p.cache[cacheKey]; ok {
		p.mu.Unlock()
		return e
	}
	p.mu.Unlock()

	e := &LogEntry{
		Date:       date,
		Instrument: instrument,
		CheckIn:    p.repo.CheckIn(ctx, date),
		Prep:       p.repo.Prep(ctx, date, instrument),
		Review:     p.repo.Review(ctx, date, instrument),
	}

	p.mu.Lock()
	p.cache[cacheKey] = e
	p.mu.Unlock()
	return e
}

// Context assembles the prior-session material for an instrument as of day.
func (p *PrepLog) Context(ctx context.Context, day time.Time, instrument string) *PrepContext {
	pc := &PrepContext{PrevADRs: []ADRReading{}}

	prev := dates.PreviousDays(day, prepContextDays)

	for i, date := range prev {
		prepRec := p.repo.Prep(ctx, date, instrument)
		if prepRec == nil {
			continue
		}
		if i < 5 && prepRec.ADR != "" {
			if v, err := strconv.ParseFloat(prepRec.ADR, 64); err == nil {
				pc.PrevADRs = append(pc.PrevADRs, ADRReading{Date: date, ADR: v})
			}
		}
		if pc.PrevFocus == "" && prepRec.SessionFocus != "" {
			pc.PrevFocus = prepRec.SessionFocus
		}
	}

	for _, date := range prev {
		rv := p.repo.Review(ctx, date, instrument)
		if rv == nil {
			continue
		}
		if rv.BiggestLesson != "" || rv.TomorrowWill != "" {
			pc.PrevLessons = &PrevLessons{Date: date, Lesson: rv.BiggestLesson, Tomorrow: rv.TomorrowWill}
			break
		}
	}
	return pc
}
