package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"fintrack_notifier/internal/domain/notification"
	idb "fintrack_notifier/internal/infra/database"
	"fintrack_notifier/internal/infra/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the notification log's read side to the client application,
// plus health and metrics endpoints. The engine itself never reads the log;
// this is the data contract behind the app's notifications screen.
type Server struct {
	logRepo notification.LogRepository
	http    *http.Server
}

func NewServer(addr string, logRepo notification.LogRepository) *Server {
	s := &Server{logRepo: logRepo}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/users/{userID}/notifications", s.handleList)
		r.Post("/users/{userID}/notifications/read-all", s.handleMarkAllRead)
		r.Delete("/users/{userID}/notifications", s.handleClear)
		r.Post("/notifications/{id}/read", s.handleMarkRead)
	})

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

type logEntryResponse struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	Type          string    `json:"type"`
	RelatedCardID *int64    `json:"related_card_id,omitempty"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	entries, err := s.logRepo.ListByUser(r.Context(), userID)
	if err != nil {
		serverError(w, err)
		return
	}
	out := make([]logEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := logEntryResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			Title:     e.Title,
			Message:   e.Message,
			Type:      e.Type,
			IsRead:    e.IsRead,
			CreatedAt: e.CreatedAt,
		}
		if e.RelatedCardID.Valid {
			id := e.RelatedCardID.Int64
			resp.RelatedCardID = &id
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.logRepo.MarkRead(r.Context(), id); err != nil {
		if err == idb.ErrLogEntryNotFound {
			http.Error(w, "notification not found", http.StatusNotFound)
			return
		}
		serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	if err := s.logRepo.MarkAllRead(r.Context(), userID); err != nil {
		serverError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	n, err := s.logRepo.DeleteByUser(r.Context(), userID)
	if err != nil {
		serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		http.Error(w, "invalid "+param, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Error("Failed to encode response")
	}
}

func serverError(w http.ResponseWriter, err error) {
	logger.Log.WithError(err).Error("Request failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}
