package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/libertrade/deskd/internal/metrics"
	"github.com/libertrade/deskd/internal/store"
)

// Repository is the typed record layer over the key-value store.
//
// Reads never fail: a missing key, a storage error, or a blob that does not
// decode all resolve to the documented default (nil record or empty slice).
// The failure is logged and counted so a sick backend is visible without
// breaking the journal. Writes surface their errors; the caller shows
// "not saved" and the user retries.
type Repository struct {
	kv  store.KV
	log zerolog.Logger

	// Serializes the read-modify-write of day-array appends.
	appendMu sync.Mutex
}

// NewRepository creates a repository over kv.
func NewRepository(kv store.KV, log zerolog.Logger) *Repository {
	return &Repository{kv: kv, log: log.With().Str("component", "journal").Logger()}
}

// load decodes the record at key into out. Returns false on any fallback.
func (r *Repository) load(ctx context.Context, key string, out interface{}) bool {
	value, found, err := r.kv.Get(ctx, key)
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("read failed, using default")
		metrics.StorageFallbacks.WithLabelValues(metrics.FallbackError).Inc()
		return false
	}
	if !found {
		metrics.StorageFallbacks.WithLabelValues(metrics.FallbackMissing).Inc()
		return false
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("malformed record, using default")
		metrics.StorageFallbacks.WithLabelValues(metrics.FallbackBadRecord).Inc()
		return false
	}
	return true
}

// save validates nothing; callers validate first. Encoding failures are
// programmer errors and still surface.
func (r *Repository) save(ctx context.Context, key string, record interface{}) error {
	data, err := json.Marshal(record)
	if err != nil {
		metrics.WriteErrors.Inc()
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.kv.Set(ctx, key, string(data)); err != nil {
		metrics.WriteErrors.Inc()
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// CheckIn returns the day's check-in, or nil when none is stored.
func (r *Repository) CheckIn(ctx context.Context, date string) *CheckIn {
	var c CheckIn
	if !r.load(ctx, CheckInKey(date), &c) {
		return nil
	}
	return &c
}

// SaveCheckIn validates and stores the day's check-in.
func (r *Repository) SaveCheckIn(ctx context.Context, date string, c *CheckIn) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("checkin %s: %w", date, err)
	}
	c.SchemaVersion = SchemaVersion
	if c.Timestamp == "" {
		c.Timestamp = Now()
	}
	return r.save(ctx, CheckInKey(date), c)
}

// Prep returns the prep for (date, instrument), or nil.
func (r *Repository) Prep(ctx context.Context, date, instrument string) *Prep {
	var p Prep
	if !r.load(ctx, PrepKey(date, instrument), &p) {
		return nil
	}
	return &p
}

// SavePrep validates and stores the prep for (date, instrument).
func (r *Repository) SavePrep(ctx context.Context, date, instrument string, p *Prep) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("prep %s %s: %w", date, instrument, err)
	}
	p.SchemaVersion = SchemaVersion
	p.Instrument = instrument
	if p.Timestamp == "" {
		p.Timestamp = Now()
	}
	return r.save(ctx, PrepKey(date, instrument), p)
}

// Review returns the review for (date, instrument), or nil.
func (r *Repository) Review(ctx context.Context, date, instrument string) *Review {
	var v Review
	if !r.load(ctx, ReviewKey(date, instrument), &v) {
		return nil
	}
	return &v
}

// SaveReview validates and stores the review for (date, instrument).
func (r *Repository) SaveReview(ctx context.Context, date, instrument string, v *Review) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("review %s %s: %w", date, instrument, err)
	}
	v.SchemaVersion = SchemaVersion
	v.Instrument = instrument
	if v.Timestamp == "" {
		v.Timestamp = Now()
	}
	return r.save(ctx, ReviewKey(date, instrument), v)
}

// Activations returns the day's activation log, empty when none.
func (r *Repository) Activations(ctx context.Context, date string) []ActivationEvent {
	events := []ActivationEvent{}
	r.load(ctx, ActivationsKey(date), &events)
	return events
}

// AppendActivation appends one activation to the day's log, assigning it an
// id and timestamp, and returns the stored entry.
func (r *Repository) AppendActivation(ctx context.Context, date string, ev ActivationEvent) (ActivationEvent, error) {
	r.appendMu.Lock()
	defer r.appendMu.Unlock()

	ev.ID = uuid.NewString()
	if ev.Timestamp == "" {
		ev.Timestamp = Now()
	}
	events := append(r.Activations(ctx, date), ev)
	if err := r.save(ctx, ActivationsKey(date), events); err != nil {
		return ActivationEvent{}, err
	}
	return ev, nil
}

// DLLEvents returns the day's circuit-breaker log, empty when none.
func (r *Repository) DLLEvents(ctx context.Context, date string) []DLLEvent {
	events := []DLLEvent{}
	r.load(ctx, DLLKey(date), &events)
	return events
}

// AppendDLLEvent appends one circuit-breaker pass to the day's log.
func (r *Repository) AppendDLLEvent(ctx context.Context, date string, ev DLLEvent) (DLLEvent, error) {
	r.appendMu.Lock()
	defer r.appendMu.Unlock()

	ev.ID = uuid.NewString()
	if ev.Timestamp == "" {
		ev.Timestamp = Now()
	}
	events := append(r.DLLEvents(ctx, date), ev)
	if err := r.save(ctx, DLLKey(date), events); err != nil {
		return DLLEvent{}, err
	}
	return ev, nil
}

// WeeklyAck returns the week's acknowledgement state, initialized when none.
func (r *Repository) WeeklyAck(ctx context.Context, monday string) *WeeklyAck {
	ack := NewWeeklyAck()
	r.load(ctx, WeeklyAckKey(monday), ack)
	if ack.Activations == nil {
		ack.Activations = map[string]bool{}
	}
	if ack.Lessons == nil {
		ack.Lessons = map[string]bool{}
	}
	return ack
}

// SaveWeeklyAck stores the week's acknowledgement state.
func (r *Repository) SaveWeeklyAck(ctx context.Context, monday string, ack *WeeklyAck) error {
	return r.save(ctx, WeeklyAckKey(monday), ack)
}

// WeeklyTakeaway returns the week's takeaway, or nil.
func (r *Repository) WeeklyTakeaway(ctx context.Context, monday string) *WeeklyTakeaway {
	var t WeeklyTakeaway
	if !r.load(ctx, WeeklyTakeawayKey(monday), &t) {
		return nil
	}
	return &t
}

// SaveWeeklyTakeaway stores the week's takeaway.
func (r *Repository) SaveWeeklyTakeaway(ctx context.Context, monday string, t *WeeklyTakeaway) error {
	if t.Timestamp == "" {
		t.Timestamp = Now()
	}
	return r.save(ctx, WeeklyTakeawayKey(monday), t)
}

// WeeklyRefresher returns the week's refresher state, initialized when none.
func (r *Repository) WeeklyRefresher(ctx context.Context, monday string) *WeeklyRefresher {
	ref := NewWeeklyRefresher()
	r.load(ctx, WeeklyRefresherKey(monday), ref)
	if ref.Flagged == nil {
		ref.Flagged = map[string]bool{}
	}
	if ref.Done == nil {
		ref.Done = map[string]bool{}
	}
	return ref
}

// SaveWeeklyRefresher stores the week's refresher state.
func (r *Repository) SaveWeeklyRefresher(ctx context.Context, monday string, ref *WeeklyRefresher) error {
	return r.save(ctx, WeeklyRefresherKey(monday), ref)
}

// LegacyWeekly returns the raw legacy combined weekly record, or nil. These
// predate the per-record weekly keys and round-trip as opaque JSON.
func (r *Repository) LegacyWeekly(ctx context.Context, monday string) json.RawMessage {
	return r.loadRaw(ctx, WeeklyKey(monday))
}

// LegacyPostSession returns the raw legacy post-session record, or nil.
func (r *Repository) LegacyPostSession(ctx context.Context, date string) json.RawMessage {
	return r.loadRaw(ctx, PostSessionKey(date))
}

func (r *Repository) loadRaw(ctx context.Context, key string) json.RawMessage {
	var raw json.RawMessage
	if !r.load(ctx, key, &raw) {
		return nil
	}
	return raw
}

// Instruments lists the instruments with a prep saved for date, sorted.
func (r *Repository) Instruments(ctx context.Context, date string) []string {
	keys, err := r.kv.List(ctx, PrepPrefix(date))
	if err != nil {
		r.log.Warn().Err(err).Str("date", date).Msg("prep list failed")
		metrics.StorageFallbacks.WithLabelValues(metrics.FallbackError).Inc()
		return []string{}
	}
	instruments := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, inst, ok := ParsePrepKey(k); ok {
			instruments = append(instruments, inst)
		}
	}
	sort.Strings(instruments)
	return instruments
}

// FirstReview returns the review under the lexicographically first review
// key for date, or nil. When a day has reviews for several instruments this
// picks the same one every time.
func (r *Repository) FirstReview(ctx context.Context, date string) *Review {
	keys, err := r.kv.List(ctx, ReviewPrefix(date))
	if err != nil {
		r.log.Warn().Err(err).Str("date", date).Msg("review list failed")
		metrics.StorageFallbacks.WithLabelValues(metrics.FallbackError).Inc()
		return nil
	}
	for _, k := range keys {
		d, inst, ok := ParseReviewKey(k)
		if !ok || d != date {
			continue
		}
		if v := r.Review(ctx, date, inst); v != nil {
			return v
		}
	}
	return nil
}

// CheckInDates lists every date with a stored check-in, most recent first.
func (r *Repository) CheckInDates(ctx context.Context) []string {
	keys, err := r.kv.List(ctx, "checkin-")
	if err != nil {
		r.log.Warn().Err(err).Msg("checkin list failed")
		metrics.StorageFallbacks.WithLabelValues(metrics.FallbackError).Inc()
		return []string{}
	}
	dates := make([]string, 0, len(keys))
	for _, k := range keys {
		dates = append(dates, k[len("checkin-"):])
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}
