// Package remove реализует HTTP-обработчик удаления участника из каталога.
// Операция доступна только администраторам.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/skillsfinder/skillsfinder/internal/http/response"
	"github.com/skillsfinder/skillsfinder/internal/lib/sl"
	directoryservice "github.com/skillsfinder/skillsfinder/internal/services/directory"
)

// Service описывает интерфейс удаления участника.
type Service interface {
	Remove(ctx context.Context, id string) error
}

// Handler обрабатывает HTTP-запросы удаления участника.
type Handler struct {
	log     *slog.Logger
	members Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, members Service) *Handler {
	return &Handler{log: log, members: members}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.member.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if err := h.members.Remove(r.Context(), id); err != nil {
		if errors.Is(err, directoryservice.ErrNotFound) {
			log.Info("member not found", slog.String("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("member not found"))
			return
		}
		log.Error("failed to remove member", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove member"))
		return
	}

	log.Info("member removed", slog.String("id", id))
	render.JSON(w, r, response.OK())
}
