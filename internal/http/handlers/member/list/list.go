// Package list реализует HTTP-обработчик получения списка участников каталога.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/skillsfinder/skillsfinder/internal/http/response"
	"github.com/skillsfinder/skillsfinder/internal/models"
)

// Service описывает интерфейс чтения каталога.
type Service interface {
	All(ctx context.Context) []models.Member
}

// Handler обрабатывает HTTP-запросы списка участников.
type Handler struct {
	log     *slog.Logger
	members Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, members Service) *Handler {
	return &Handler{log: log, members: members}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.member.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	members := h.members.All(r.Context())
	log.Info("members listed", slog.Int("count", len(members)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"members": members,
	}))
}
