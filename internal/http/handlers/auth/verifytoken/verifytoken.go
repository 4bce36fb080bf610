// Package verifytoken реализует HTTP-обработчик проверки токена сброса пароля.
package verifytoken

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/skillsfinder/skillsfinder/internal/http/response"
	"github.com/skillsfinder/skillsfinder/internal/models"
)

// Service описывает интерфейс проверки токена сброса.
type Service interface {
	VerifyResetToken(ctx context.Context, token string) models.AuthResult
}

// Handler обрабатывает HTTP-запросы проверки токена.
type Handler struct {
	log      *slog.Logger
	sessions Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, sessions Service) *Handler {
	return &Handler{log: log, sessions: sessions}
}

// ServeHTTP проверяет токен сброса из query-параметра token.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verifytoken"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := r.URL.Query().Get("token")
	if token == "" {
		log.Error("missing token query parameter")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing token"))
		return
	}

	result := h.sessions.VerifyResetToken(r.Context(), token)
	if !result.Success {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(result.Message))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": result.Message,
	}))
}
