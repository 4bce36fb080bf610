// Package resetall реализует HTTP-обработчик массового сброса займов.
// Операция доступна только администраторам.
package resetall

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/skillsfinder/skillsfinder/internal/http/response"
)

// Service описывает интерфейс сброса всех займов каталога.
type Service interface {
	ResetAllLoans(ctx context.Context)
}

// Handler обрабатывает HTTP-запросы сброса займов.
type Handler struct {
	log     *slog.Logger
	members Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, members Service) *Handler {
	return &Handler{log: log, members: members}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.resetall"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	h.members.ResetAllLoans(r.Context())
	log.Info("all loans reset")
	render.JSON(w, r, response.OK())
}
