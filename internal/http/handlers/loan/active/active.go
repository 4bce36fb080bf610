// Package active реализует HTTP-обработчик счётчика активных займов каталога.
package active

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/skillsfinder/skillsfinder/internal/http/response"
)

// Service описывает интерфейс подсчёта активных займов.
type Service interface {
	TotalActiveLoans(ctx context.Context) int
}

// Handler обрабатывает HTTP-запросы счётчика займов.
type Handler struct {
	log     *slog.Logger
	members Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, members Service) *Handler {
	return &Handler{log: log, members: members}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.active"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	total := h.members.TotalActiveLoans(r.Context())
	log.Info("active loans counted", slog.Int("total", total))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"total": total,
	}))
}
