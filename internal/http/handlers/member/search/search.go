// Package search реализует HTTP-обработчик поиска участников по подстроке
// имени, навыка или инструмента. Пустой запрос возвращает всех участников.
package search

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/skillsfinder/skillsfinder/internal/http/response"
	"github.com/skillsfinder/skillsfinder/internal/models"
)

// Service описывает интерфейс поиска по каталогу.
type Service interface {
	Search(ctx context.Context, query string) []models.Member
}

// Handler обрабатывает HTTP-запросы поиска.
type Handler struct {
	log     *slog.Logger
	members Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, members Service) *Handler {
	return &Handler{log: log, members: members}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.member.search"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	query := r.URL.Query().Get("q")
	members := h.members.Search(r.Context(), query)
	log.Info("search completed", slog.String("query", query), slog.Int("count", len(members)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"members": members,
	}))
}
