// Package logout реализует HTTP-обработчик завершения текущей сессии.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/skillsfinder/skillsfinder/internal/http/response"
)

// Service описывает интерфейс завершения сессии.
type Service interface {
	Logout()
}

// Handler обрабатывает HTTP-запросы выхода.
type Handler struct {
	log      *slog.Logger
	sessions Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, sessions Service) *Handler {
	return &Handler{log: log, sessions: sessions}
}

// ServeHTTP завершает сессию безусловно, повторный вызов безопасен.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	h.sessions.Logout()
	h.log.Info("session closed",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Logged out",
	}))
}
