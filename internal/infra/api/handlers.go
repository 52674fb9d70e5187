package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ghostwriter/internal/domain/model"
	"ghostwriter/internal/infra/logging"
	"ghostwriter/internal/usecase"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Seconds(),
		"providers": s.providers,
	})
}

func (s *Server) handleGenerateReply(w http.ResponseWriter, r *http.Request) {
	var in model.SuggestionRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.suggestions.GenerateSuggestions(r.Context(), logging.UserID(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (s *Server) handleSaveMessage(w http.ResponseWriter, r *http.Request) {
	var in usecase.SaveMessageInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	m, err := s.messages.Save(r.Context(), logging.UserID(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, m)
}

type messagePage struct {
	Messages []*model.Message `json:"messages"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", usecase.DefaultPageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, err)
		return
	}
	msgs, err := s.messages.List(r.Context(), logging.UserID(r.Context()), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	if limit > usecase.MaxPageSize {
		limit = usecase.MaxPageSize
	}
	writeData(w, http.StatusOK, messagePage{Messages: msgs, Limit: limit, Offset: offset})
}

func (s *Server) handleSearchMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	msgs, err := s.messages.Search(r.Context(), logging.UserID(r.Context()), q.Get("query"), q.Get("tone"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, msgs)
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "messageId")
	if err := s.messages.Delete(r.Context(), logging.UserID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"message": "Message deleted"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", usecase.DefaultAnalyticsDays)
	if err != nil {
		writeError(w, err)
		return
	}
	rep, err := s.analytics.Stats(r.Context(), logging.UserID(r.Context()), days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, rep)
}

func (s *Server) handleToneBreakdown(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", usecase.DefaultAnalyticsDays)
	if err != nil {
		writeError(w, err)
		return
	}
	rep, err := s.analytics.ToneBreakdown(r.Context(), logging.UserID(r.Context()), days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, rep)
}

func (s *Server) handleCost(w http.ResponseWriter, r *http.Request) {
	rep, err := s.analytics.CostEstimate(r.Context(), logging.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, rep)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	rep, err := s.analytics.Daily(r.Context(), logging.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, rep)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, s.suggestions.CacheStats(r.Context()))
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	s.suggestions.ClearCache(r.Context())
	logging.With(r.Context(), s.log).Info().Msg("suggestion cache cleared by admin")
	writeData(w, http.StatusOK, map[string]string{"message": "Cache cleared"})
}
