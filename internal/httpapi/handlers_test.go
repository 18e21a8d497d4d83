package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libertrade/deskd/internal/config"
	"github.com/libertrade/deskd/internal/journal"
	"github.com/libertrade/deskd/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.Memory) {
	t.Helper()
	m := store.NewMemory()
	return NewServer(config.Default(), m, zerolog.Nop()), m
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into))
}

func TestCheckInPutGet(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPut, "/api/v1/checkin/2026-08-24", journal.CheckIn{
		WhoopSleep:    "85",
		WhoopRecovery: "40",
		MentalScores:  [2]int{4, 5},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var saved journal.CheckIn
	decodeBody(t, rec, &saved)
	assert.Equal(t, "GREEN", saved.WhoopGate)
	assert.NotEmpty(t, saved.Timestamp)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/checkin/2026-08-24", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got journal.CheckIn
	decodeBody(t, rec, &got)
	assert.Equal(t, "85", got.WhoopSleep)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/checkin/2026-08-25", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/checkin/yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckInValidationRejected(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPut, "/api/v1/checkin/2026-08-24", journal.CheckIn{
		MentalScores: [2]int{6, 0},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "mentalScores")
}

func TestPrepRoundTripAndInstruments(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPut, "/api/v1/prep/2026-08-24/NQ", journal.Prep{VIX: "18", ADR: "210"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodPut, "/api/v1/prep/2026-08-24/ES", journal.Prep{VIX: "18"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/prep/2026-08-24", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Instruments []string `json:"instruments"`
	}
	decodeBody(t, rec, &listing)
	assert.Equal(t, []string{"ES", "NQ"}, listing.Instruments)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/prep/2026-08-24/NQ", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var p journal.Prep
	decodeBody(t, rec, &p)
	assert.Equal(t, "NQ", p.Instrument)
	assert.Equal(t, "210", p.ADR)
}

func TestActivationAppend(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/activations/2026-08-24", journal.ActivationEvent{
		Time: "10:14", Schema: "Abandonment", Outcome: "Followed plan",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var stored journal.ActivationEvent
	decodeBody(t, rec, &stored)
	assert.NotEmpty(t, stored.ID)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/activations/2026-08-24", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var events []journal.ActivationEvent
	decodeBody(t, rec, &events)
	require.Len(t, events, 1)
	assert.Equal(t, "10:14", events[0].Time)

	// Empty day returns an empty array, not null.
	rec = doJSON(t, s, http.MethodGet, "/api/v1/activations/2026-08-25", nil)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestDLLAppend(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/dll/2026-08-24", journal.DLLEvent{
		WhatHappened: "Hit the limit before lunch",
		Decision:     "Keep DLL locked. Walk away and protect my dreams",
		KeptLocked:   true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/dll/2026-08-24", nil)
	var events []journal.DLLEvent
	decodeBody(t, rec, &events)
	require.Len(t, events, 1)
	assert.True(t, events[0].KeptLocked)
}

func TestGateEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPut, "/api/v1/checkin/2026-08-24", journal.CheckIn{
		WhoopSleep:    "85",
		WhoopRecovery: "20",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/gate/2026-08-24", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var gr struct {
		HasCheckIn bool `json:"hasCheckin"`
		Decision   struct {
			Final    string `json:"final"`
			Guidance struct {
				Label string `json:"label"`
			} `json:"guidance"`
		} `json:"decision"`
	}
	decodeBody(t, rec, &gr)
	assert.True(t, gr.HasCheckIn)
	assert.Equal(t, "RED", gr.Decision.Final)
	assert.Equal(t, "NO TRADE", gr.Decision.Guidance.Label)

	// No check-in at all still evaluates, to GREEN.
	rec = doJSON(t, s, http.MethodGet, "/api/v1/gate/2026-08-25", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &gr)
	assert.False(t, gr.HasCheckIn)
	assert.Equal(t, "GREEN", gr.Decision.Final)
}

func TestContextEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPut, "/api/v1/prep/2026-08-24/NQ", journal.Prep{
		VIX: "27", RVOL: "95", EMAsWeekly: "Bullish",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/context/2026-08-24/NQ", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cr struct {
		VIX  *struct{ Label string } `json:"vix"`
		RVOL *struct{ Label string } `json:"rvol"`
		Rows []struct{ Label, Value string }
	}
	decodeBody(t, rec, &cr)
	require.NotNil(t, cr.VIX)
	assert.Equal(t, "STRESS", cr.VIX.Label)
	require.NotNil(t, cr.RVOL)
	assert.Equal(t, "ACTIVE", cr.RVOL.Label)
	require.NotEmpty(t, cr.Rows)
	assert.Equal(t, "Instrument", cr.Rows[0].Label)
}

func TestWeekEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodPut, "/api/v1/checkin/2026-08-25", journal.CheckIn{
		SchemaScores: [5]int{0, 7, 0, 0, 0},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/week/2026-08-24", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var week struct {
		Monday      string `json:"monday"`
		SchemaFlags []struct {
			DayIdx int `json:"dayIdx"`
			Score  int `json:"score"`
		} `json:"schemaFlags"`
	}
	decodeBody(t, rec, &week)
	assert.Equal(t, "2026-08-24", week.Monday)
	require.Len(t, week.SchemaFlags, 1)
	assert.Equal(t, 1, week.SchemaFlags[0].DayIdx)

	rec = doJSON(t, s, http.MethodPut, "/api/v1/week/2026-08-24/takeaway", journal.WeeklyTakeaway{Text: "Be selective"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPut, "/api/v1/week/2026-08-24/ack", map[string]interface{}{
		"activations": map[string]bool{"1-0": true},
		"lessons":     map[string]bool{},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/week/2026-08-24", nil)
	var full struct {
		Takeaway *journal.WeeklyTakeaway `json:"takeaway"`
		Ack      *journal.WeeklyAck      `json:"ack"`
	}
	decodeBody(t, rec, &full)
	require.NotNil(t, full.Takeaway)
	assert.Equal(t, "Be selective", full.Takeaway.Text)
	assert.True(t, full.Ack.Activations["1-0"])
}

func TestHistoryEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	for _, d := range []string{"2026-08-24", "2026-08-26"} {
		rec := doJSON(t, s, http.MethodPut, "/api/v1/checkin/"+d, journal.CheckIn{})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, s, http.MethodGet, "/api/v1/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var h struct {
		Dates []string `json:"dates"`
	}
	decodeBody(t, rec, &h)
	assert.Equal(t, []string{"2026-08-26", "2026-08-24"}, h.Dates)
}

func TestContentEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/content/schemas", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var schemas []struct{ Key string }
	decodeBody(t, rec, &schemas)
	assert.Len(t, schemas, 3)

	rec = doJSON(t, s, http.MethodGet, "/api/v1/content/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	s, m := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, m.Close())
	rec = doJSON(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsExposed(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestActivationWebsocketFeed(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/activations"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	// Registration happens on the server goroutine after the handshake.
	require.Eventually(t, func() bool { return s.hub.ClientCount() == 1 },
		time.Second, 5*time.Millisecond)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/activations/2026-08-24", journal.ActivationEvent{
		Time: "10:14", Schema: "Abandonment",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var notice struct {
		Date  string `json:"date"`
		Event struct {
			Time string `json:"time"`
		} `json:"event"`
	}
	require.NoError(t, conn.ReadJSON(&notice))
	assert.Equal(t, "2026-08-24", notice.Date)
	assert.Equal(t, "10:14", notice.Event.Time)
}
