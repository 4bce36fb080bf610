// Package skills реализует HTTP-обработчик получения списка уникальных навыков.
package skills

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/skillsfinder/skillsfinder/internal/http/response"
)

// Service описывает интерфейс агрегации навыков каталога.
type Service interface {
	UniqueSkills(ctx context.Context) []string
}

// Handler обрабатывает HTTP-запросы списка навыков.
type Handler struct {
	log     *slog.Logger
	members Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, members Service) *Handler {
	return &Handler{log: log, members: members}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.member.skills"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	skills := h.members.UniqueSkills(r.Context())
	log.Info("skills aggregated", slog.Int("count", len(skills)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"skills": skills,
	}))
}
