// Package read реализует HTTP-обработчик получения участника по ID.
//
// Handler извлекает ID из URL-параметров, вызывает бизнес-логику чтения
// и возвращает данные участника в JSON-формате.
package read

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
	"github.com/skillsfinder/skillsfinder/internal/models"
	directoryservice "github.com/skillsfinder/skillsfinder/internal/services/directory"
)

// Service описывает интерфейс чтения участника по идентификатору.
type Service interface {
	ByID(ctx context.Context, id string) (models.Member, error)
}

// Handler обрабатывает запросы на получение участника по уникальному идентификатору.
type Handler struct {
	log     *slog.Logger
	members Service
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, members Service) *Handler {
	return &Handler{log: log, members: members}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.member.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	m, err := h.members.ByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, directoryservice.ErrNotFound) {
			log.Info("member not found", slog.String("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("member not found"))
			return
		}
		log.Error("failed to read member", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read member"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"member": m,
	}))
}
