package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"BandWatch/internal/analysis"
	"BandWatch/internal/model"
	"BandWatch/internal/recorder"

	"github.com/gorilla/mux"
)

// Defaults fill in query parameters the caller omits.
type Defaults struct {
	Mode         model.Mode
	Fill         model.Fill
	LookbackDays int
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	analyzer *analysis.Analyzer
	recorder recorder.Recorder
	defaults Defaults
	now      func() time.Time
}

// NewHandler creates a new Handler
func NewHandler(a *analysis.Analyzer, rec recorder.Recorder, d Defaults) *Handler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Handler{analyzer: a, recorder: rec, defaults: d, now: time.Now}
}

type bandsResponse struct {
	RunID string `json:"run_id,omitempty"`
	Start string `json:"start"`
	End   string `json:"end"`
	*model.BandSeries
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// GetBands handles GET /api/v1/bands?ticker=&start=&end=&mode=&fill=
func (h *Handler) GetBands(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		respondError(w, err)
		return
	}

	res, err := h.analyzer.Analyze(r.Context(), q)
	if err != nil {
		log.Printf("[WARN] bands %s: %v", q.Ticker, err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, bandsResponse{
		RunID:      res.RunID,
		Start:      q.Start.Format(model.DayLayout),
		End:        q.End.Format(model.DayLayout),
		BandSeries: res.Series,
	})
}

func (h *Handler) parseQuery(r *http.Request) (analysis.Query, error) {
	v := r.URL.Query()
	ticker := v.Get("ticker")
	if ticker == "" {
		return analysis.Query{}, errBadRequest("ticker is required")
	}

	mode, fill := h.defaults.Mode, h.defaults.Fill
	if s := v.Get("mode"); s != "" {
		m, err := model.ParseMode(s)
		if err != nil {
			return analysis.Query{}, errBadRequest(err.Error())
		}
		mode = m
	}
	if s := v.Get("fill"); s != "" {
		f, err := model.ParseFill(s)
		if err != nil {
			return analysis.Query{}, errBadRequest(err.Error())
		}
		fill = f
	}

	q := analysis.Lookback(ticker, h.now(), h.defaults.LookbackDays, mode, fill)
	if s := v.Get("end"); s != "" {
		end, err := model.ParseDay(s)
		if err != nil {
			return analysis.Query{}, err
		}
		q.End = end
		q.Start = end.AddDate(0, 0, -h.defaults.LookbackDays)
	}
	if s := v.Get("start"); s != "" {
		start, err := model.ParseDay(s)
		if err != nil {
			return analysis.Query{}, err
		}
		q.Start = start
	}
	return q, nil
}

// ListRuns handles GET /api/v1/runs?limit=
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			respondError(w, errBadRequest("limit must be a positive integer"))
			return
		}
		limit = n
	}
	runs, err := h.recorder.ListRuns(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, runs)
}

// GetRun handles GET /api/v1/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	run, err := h.recorder.LoadRun(r.Context(), id)
	if errors.Is(err, recorder.ErrRunNotFound) {
		respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: "not_found"})
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, bandsResponse{
		RunID:      run.ID,
		Start:      run.Start.Format(model.DayLayout),
		End:        run.End.Format(model.DayLayout),
		BandSeries: run.Series,
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type badRequest string

func (b badRequest) Error() string { return string(b) }

func errBadRequest(msg string) error { return badRequest(msg) }

// classify maps an error to its HTTP status and kind.
func classify(err error) (int, string) {
	var br badRequest
	switch {
	case errors.As(err, &br):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, model.ErrInvalidTicker), errors.Is(err, model.ErrInvalidRange), errors.Is(err, model.ErrInvalidParams):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, model.ErrDataUnavailable):
		return http.StatusNotFound, "data_unavailable"
	case errors.Is(err, model.ErrInsufficientData):
		return http.StatusUnprocessableEntity, "insufficient_data"
	case errors.Is(err, model.ErrMissingFields):
		return http.StatusUnprocessableEntity, "missing_fields"
	default:
		return http.StatusBadGateway, "source_error"
	}
}

func respondError(w http.ResponseWriter, err error) {
	status, kind := classify(err)
	respondJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
