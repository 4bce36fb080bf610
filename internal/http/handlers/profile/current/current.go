// Package current реализует HTTP-обработчик получения текущей сессии.
package current

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/skillsfinder/skillsfinder/internal/http/response"
	"github.com/skillsfinder/skillsfinder/internal/models"
)

// Service описывает интерфейс чтения текущей сессии.
type Service interface {
	Current() *models.Session
}

// Handler обрабатывает HTTP-запросы чтения текущей сессии.
type Handler struct {
	log      *slog.Logger
	sessions Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, sessions Service) *Handler {
	return &Handler{log: log, sessions: sessions}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.current"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sess := h.sessions.Current()
	if sess == nil {
		log.Info("no active session")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("no active session"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"session": sess,
	}))
}
