package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/libertrade/deskd/internal/content"
	"github.com/libertrade/deskd/internal/dates"
	"github.com/libertrade/deskd/internal/gates"
	"github.com/libertrade/deskd/internal/journal"
	"github.com/libertrade/deskd/internal/metrics"
	"github.com/libertrade/deskd/internal/regime"
)

type errorResponse struct {
	Error     string    `json:"error"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"json_encoding_failed"}`, http.StatusInternalServerError)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorResponse{
		Error:     http.StatusText(status),
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// dateVar validates the {date} path segment. Bad dates get a 400 instead of
// silently keying nonsense records.
func (s *Server) dateVar(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := mux.Vars(r)[name]
	if _, err := dates.ParseDayKey(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return "", false
	}
	return v, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, into interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return false
	}
	return true
}

// --- Check-in ---

func (s *Server) getCheckIn(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateVar(w, r, "date")
	if !ok {
		return
	}
	c := s.repo.CheckIn(r.Context(), date)
	if c == nil {
		s.writeError(w, http.StatusNotFound, "no_checkin", "no check-in for "+date)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

func (s *Server) putCheckIn(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateVar(w, r, "date")
	if !ok {
		return
	}
	var c journal.CheckIn
	if !s.decode(w, r, &c) {
		return
	}
	// The stored gate is always recomputed server-side.
	if g := s.eval.WhoopGate(c.WhoopSleep, c.WhoopRecovery); g != nil {
		c.WhoopGate = g.String()
	} else {
		c.WhoopGate = ""
	}
	if err := s.repo.SaveCheckIn(r.Context(), date, &c); err != nil {
		s.writeError(w, http.StatusBadRequest, "not_saved", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, &c)
}

// --- Prep ---

func (s *Server) getInstruments(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateVar(w, r, "date")
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":        date,
		"instruments": s.repo.Instruments(r.Context(), date),
	})
}

func (s *Server) getPrep(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateVar(w, r, "date")
	if !ok {
		return
	}
	inst := mux.Vars(r)["instrument"]
	p := s.repo.Prep(r.Context(), date, inst)
	if p == nil {
		s.writeError(w, http.StatusNotFound, "no_prep", "no prep for "+date+" "+inst)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) putPrep(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateVar(w, r, "date")
	if !ok {
		return
	}
	inst := mux.Vars(r)["instrument"]
	var p journal.Prep
	if !s.decode(w, r, &p) {
		return
	}
	if err := s.repo.SavePrep(r.Context(), date, inst, &p); err != nil {
		s.writeError(w, http.StatusBadRequest, "not_saved", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, &p)
}

// --- Review ---

func (s *Server) getReview(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateVar(w, r, "date")
	if !ok {
		return
	}
	inst := mux.Vars(r)["instrument"]
	v := s.repo.Review(r.Context(), date, inst)
	if v == nil {
		s.writeError(w, http.StatusNotFound, "no_review", "no review for "+date+" "+inst)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

func (s *Server) putReview(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateVar(w, r, "date")
	if !ok {
		return
	}
	inst := mux.Vars(r)["instrument"]
	var v journal.Review
	if !s.decode(w, r, &v) {
		return
	}
	if err := s.repo.SaveReview(r.Context(), date, inst, &v); err != nil {
		s.writeError(w, http.StatusBadRequest, "not_saved", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, &v)
}

// --- Activations ---

func (s *Server) getActivations(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateVar(w, r, "date")
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.repo.Activations(r.Context(), date))
}

func (s *Server) postActivation(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateVar(w, r, "date")
	if !ok {
		return
	}
	var ev journal.ActivationEvent
	if !s.decode(w, r, &ev) {
		return
	}
	stored, err := s.repo.AppendActivation(r.Context(), date, ev)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "not_saved", err.Error())
		return
	}
	s.hub.Broadcast(activationNotice{Date: date, Event: stored})
	s.writeJSON(w, http.StatusCreated, stored)
}

// --- DLL ---

func (s *Server) getDLLEvents(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateVar(w, r, "date")
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.repo.DLLEvents(r.Context(), date))
}

func (s *Server) postDLLEvent(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateVar(w, r, "date")
	if !ok {
		return
	}
	var ev journal.DLLEvent
	if !s.decode(w, r, &ev) {
		return
	}
	stored, err := s.repo.AppendDLLEvent(r.Context(), date, ev)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "not_saved", err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, stored)
}

// --- Gate ---

type gateResponse struct {
	Date            string         `json:"date"`
	HasCheckIn      bool           `json:"hasCheckin"`
	Decision        gates.Decision `json:"decision"`
	RecoveryWarning bool           `json:"recoveryWarning"`
}

func (s *Server) getGate(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateVar(w, r, "date")
	if !ok {
		return
	}
	c := s.repo.CheckIn(r.Context(), date)
	if c == nil {
		c = &journal.CheckIn{}
	}
	decision := s.eval.Evaluate(c.WhoopSleep, c.WhoopRecovery, c.Awareness(), c.Connectedness(), c.SchemaScores[:])
	metrics.GateEvaluations.WithLabelValues(decision.Final).Inc()

	s.writeJSON(w, http.StatusOK, gateResponse{
		Date:            date,
		HasCheckIn:      c.Timestamp != "",
		Decision:        decision,
		RecoveryWarning: s.eval.RecoveryWarning(c.WhoopRecovery),
	})
}

// --- Session context ---

type contextResponse struct {
	Date       string         `json:"date"`
	Instrument string         `json:"instrument"`
	VIX        *regime.Regime `json:"vix,omitempty"`
	RVOL       *regime.Regime `json:"rvol,omitempty"`
	Rows       []regime.Row   `json:"rows"`
}

func (s *Server) getContext(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateVar(w, r, "date")
	if !ok {
		return
	}
	inst := mux.Vars(r)["instrument"]
	p := s.repo.Prep(r.Context(), date, inst)
	if p == nil {
		p = &journal.Prep{}
	}
	in := regime.ContextInputs{
		VIX:               p.VIX,
		RVOL:              p.RVOL,
		EMAWeekly:         p.EMAsWeekly,
		EMADaily:          p.EMAsDaily,
		PriorDailyCandle:  p.PriorDaily,
		EMA4h1h:           p.EMA4h1h,
		PA4h1h:            p.PA4h1h,
		AuctionDirection:  p.AuctionDirection,
		AuctionConviction: p.AuctionConviction,
	}
	s.writeJSON(w, http.StatusOK, contextResponse{
		Date:       date,
		Instrument: inst,
		VIX:        s.classifier.VIX(p.VIX),
		RVOL:       s.classifier.RVOL(p.RVOL),
		Rows:       s.classifier.SessionContext(inst, in),
	})
}

// --- Weekly ---

func (s *Server) getWeek(w http.ResponseWriter, r *http.Request) {
	monday, ok := s.dateVar(w, r, "monday")
	if !ok {
		return
	}
	week, err := s.agg.Build(r.Context(), monday)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_week", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, week)
}

func (s *Server) putWeeklyAck(w http.ResponseWriter, r *http.Request) {
	monday, ok := s.dateVar(w, r, "monday")
	if !ok {
		return
	}
	ack := journal.NewWeeklyAck()
	if !s.decode(w, r, ack) {
		return
	}
	if err := s.repo.SaveWeeklyAck(r.Context(), monday, ack); err != nil {
		s.writeError(w, http.StatusInternalServerError, "not_saved", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, ack)
}

func (s *Server) putWeeklyTakeaway(w http.ResponseWriter, r *http.Request) {
	monday, ok := s.dateVar(w, r, "monday")
	if !ok {
		return
	}
	var t journal.WeeklyTakeaway
	if !s.decode(w, r, &t) {
		return
	}
	if err := s.repo.SaveWeeklyTakeaway(r.Context(), monday, &t); err != nil {
		s.writeError(w, http.StatusInternalServerError, "not_saved", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, &t)
}

func (s *Server) putWeeklyRefresher(w http.ResponseWriter, r *http.Request) {
	monday, ok := s.dateVar(w, r, "monday")
	if !ok {
		return
	}
	ref := journal.NewWeeklyRefresher()
	if !s.decode(w, r, ref) {
		return
	}
	if err := s.repo.SaveWeeklyRefresher(r.Context(), monday, ref); err != nil {
		s.writeError(w, http.StatusInternalServerError, "not_saved", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, ref)
}

// --- Prep log ---

func (s *Server) getPrepLogIndex(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.plog.Index(r.Context(), time.Now()))
}

func (s *Server) getPrepLogEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateVar(w, r, "date")
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.plog.Entry(r.Context(), date, mux.Vars(r)["instrument"]))
}

func (s *Server) getPrepContext(w http.ResponseWriter, r *http.Request) {
	date, ok := s.dateVar(w, r, "date")
	if !ok {
		return
	}
	day, _ := dates.ParseDayKey(date)
	s.writeJSON(w, http.StatusOK, s.plog.Context(r.Context(), day, mux.Vars(r)["instrument"]))
}

// --- History ---

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"dates": s.repo.CheckInDates(r.Context()),
	})
}

// --- Content registry ---

func (s *Server) getContent(w http.ResponseWriter, r *http.Request) {
	var data interface{}
	switch mux.Vars(r)["section"] {
	case "schemas":
		data = content.Schemas()
	case "checkin-questions":
		data = content.CheckInQuestions()
	case "rules":
		data = content.Rules()
	case "dll-steps":
		data = content.DLLSteps()
	case "dll-affirmations":
		data = content.DLLAffirmations()
	case "non-negotiables":
		data = content.NonNegotiables()
	case "weekly-questions":
		data = content.WeeklyQuestions()
	case "schema-questions":
		data = content.SchemaQuestions()
	case "refresher-areas":
		data = content.RefresherAreas()
	default:
		s.writeError(w, http.StatusNotFound, "unknown_section", "unknown content section")
		return
	}
	s.writeJSON(w, http.StatusOK, data)
}

// --- Health ---

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.kv.Ping(r.Context()); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"store":  err.Error(),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
