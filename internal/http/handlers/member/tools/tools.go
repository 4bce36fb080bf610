// Package tools реализует HTTP-обработчик получения списка уникальных инструментов.
package tools

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/skillsfinder/skillsfinder/internal/http/response"
)

// Service описывает интерфейс агрегации инструментов каталога.
type Service interface {
	UniqueTools(ctx context.Context) []string
}

// Handler обрабатывает HTTP-запросы списка инструментов.
type Handler struct {
	log     *slog.Logger
	members Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, members Service) *Handler {
	return &Handler{log: log, members: members}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.member.tools"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tools := h.members.UniqueTools(r.Context())
	log.Info("tools aggregated", slog.Int("count", len(tools)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"tools": tools,
	}))
}
