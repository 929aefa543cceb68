package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/ramonehamilton/mtg-decksampler/internal/api/response"
	"github.com/ramonehamilton/mtg-decksampler/internal/export"
	"github.com/ramonehamilton/mtg-decksampler/internal/metrics"
	"github.com/ramonehamilton/mtg-decksampler/internal/storage"
	"github.com/ramonehamilton/mtg-decksampler/internal/storage/models"
)

// SampleRecorder persists sample summaries.
type SampleRecorder interface {
	RecordSampleRun(ctx context.Context, run *models.SampleRun) error
}

// SampleHandler generates labelled training pairs.
type SampleHandler struct {
	state    *State
	metrics  *metrics.SamplerMetrics
	recorder SampleRecorder
	maxRows  int
}

// NewSampleHandler creates a SampleHandler. metrics and recorder may be nil.
func NewSampleHandler(state *State, m *metrics.SamplerMetrics, recorder SampleRecorder, maxRows int) *SampleHandler {
	return &SampleHandler{state: state, metrics: m, recorder: recorder, maxRows: maxRows}
}

// SampleRequest represents a request for a training sample.
type SampleRequest struct {
	N       int     `json:"n"`
	FTrue   float64 `json:"f_true"`
	FHalf   float64 `json:"f_half"`
	NoLands bool    `json:"no_lands"`
	Shuffle bool    `json:"shuffle"`
}

var contentTypes = map[export.Format]string{
	export.FormatCSV:   "text/csv",
	export.FormatJSONL: "application/x-ndjson",
}

// Sample builds a sample. ?format=csv or ?format=jsonl returns the rows as a
// download instead of the JSON envelope.
func (h *SampleHandler) Sample(w http.ResponseWriter, r *http.Request) {
	var req SampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	format := export.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := export.ParseFormat(q)
		if err != nil {
			response.BadRequest(w, err)
			return
		}
		format = f
	}
	if h.maxRows > 0 && req.N > h.maxRows {
		response.BadRequest(w, fmt.Errorf("n must be at most %d", h.maxRows))
		return
	}

	sampler := h.state.Sampler()
	if sampler == nil {
		response.ServiceUnavailable(w, errNoSampler)
		return
	}

	start := time.Now()
	sample, err := sampler.Sample(req.N, req.FTrue, req.FHalf, req.NoLands)
	if err != nil {
		writeSamplingError(w, err)
		return
	}
	if req.Shuffle {
		sample.Shuffle(nil)
	}
	took := time.Since(start)

	if h.metrics != nil {
		h.metrics.ObserveSample(sample, took)
	}
	if h.recorder != nil {
		run := storage.SampleRunFor(sample, req.FTrue, req.FHalf, req.NoLands, sampler.Pool().NumDecks(), took)
		if err := h.recorder.RecordSampleRun(r.Context(), run); err != nil {
			log.Printf("[API] Failed to record sample run: %v", err)
		}
	}

	if format == export.FormatJSON {
		response.Success(w, sample)
		return
	}
	response.Attachment(w, contentTypes[format], "sample."+string(format), func(out io.Writer) error {
		return export.WriteSample(out, format, sample, false)
	})
}

// SampleRunLister lists recorded samples.
type SampleRunLister interface {
	ListRecent(ctx context.Context, limit int) ([]*models.SampleRun, error)
}

// HistoryHandler serves recorded sample summaries.
type HistoryHandler struct {
	runs SampleRunLister
}

// NewHistoryHandler creates a HistoryHandler.
func NewHistoryHandler(runs SampleRunLister) *HistoryHandler {
	return &HistoryHandler{runs: runs}
}

// Recent returns the latest sample runs, ?limit=N (default 20).
func (h *HistoryHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20)
	if err != nil || limit <= 0 {
		response.BadRequest(w, errors.New("limit must be a positive integer"))
		return
	}

	runs, err := h.runs.ListRecent(r.Context(), limit)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, runs)
}

// Stats returns the in-process sampling counters.
func (h *SampleHandler) Stats(w http.ResponseWriter, _ *http.Request) {
	if h.metrics == nil {
		response.Success(w, &metrics.SamplerStats{})
		return
	}
	response.Success(w, h.metrics.Stats())
}
