// Package provider реализует HTTP-обработчик входа через стороннего провайдера.
//
// При несконфигурированном бэкенде идентичности сервис сессий возвращает
// демо-сессию с сентинельным идентификатором demo-<provider>.
package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/skillsfinder/skillsfinder/internal/http/response"
	"github.com/skillsfinder/skillsfinder/internal/lib/sl"
	"github.com/skillsfinder/skillsfinder/internal/models"
)

// Request — входные данные для входа через провайдера.
type Request struct {
	Provider string `json:"provider" validate:"required,oneof=github google"`
}

// Service описывает интерфейс бизнес-логики входа через провайдера.
type Service interface {
	LoginWithProvider(ctx context.Context, provider string) models.AuthResult
}

// Handler обрабатывает HTTP-запросы входа через провайдера.
type Handler struct {
	log      *slog.Logger
	sessions Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, sessions Service) *Handler {
	return &Handler{
		log:      log,
		sessions: sessions,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.provider"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	result := h.sessions.LoginWithProvider(r.Context(), req.Provider)
	if !result.Success {
		log.Info("provider login rejected", slog.String("provider", req.Provider))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(result.Message))
		return
	}

	log.Info("provider login success", slog.String("provider", req.Provider))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": result.Message,
		"token":   result.Token,
		"session": result.Session,
	}))
}
