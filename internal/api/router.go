package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ramonehamilton/mtg-decksampler/internal/api/handlers"
	"github.com/ramonehamilton/mtg-decksampler/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	var (
		recorder handlers.SampleRecorder
		cardTags handlers.CardTagLister
	)
	if s.store != nil {
		recorder = s.store
		cardTags = s.store.Tags()
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		sampleHandler := handlers.NewSampleHandler(s.state, s.metrics, recorder, s.config.MaxSampleRows)
		r.Post("/sample", sampleHandler.Sample)
		r.Get("/stats", sampleHandler.Stats)

		if s.store != nil {
			historyHandler := handlers.NewHistoryHandler(s.store.SampleRuns())
			r.Get("/samples", historyHandler.Recent)
		}

		deckHandler := handlers.NewDeckHandler(s.state, s.config.MaxSampleRows)
		r.Route("/decks", func(r chi.Router) {
			r.Get("/", deckHandler.GetDecks)
			r.Get("/{name}", deckHandler.GetDeck)
			r.Post("/{name}/choice", deckHandler.Choice)
		})

		tagHandler := handlers.NewTagHandler(s.state, cardTags)
		r.Route("/tags", func(r chi.Router) {
			r.Get("/edges", tagHandler.GetEdges)
			r.Get("/chart", tagHandler.GetChart)
			r.Get("/cards/{card}", tagHandler.GetCardTags)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	status := map[string]interface{}{
		"status":  "healthy",
		"service": "mtg-decksampler-api",
	}
	if sampler := s.state.Sampler(); sampler != nil {
		status["decks"] = sampler.Pool().NumDecks()
	}
	if g := s.state.Graph(); g != nil {
		status["tags"] = g.Len()
	}
	if s.store != nil {
		if err := s.store.DB().Ping(); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
		}
	}
	response.JSON(w, http.StatusOK, status)
}
