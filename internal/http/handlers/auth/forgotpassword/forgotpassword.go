// Package forgotpassword реализует HTTP-обработчик запроса сброса пароля.
package forgotpassword

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

// Request — входные данные запроса сброса пароля.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Service описывает интерфейс бизнес-логики сброса пароля.
type Service interface {
	ForgotPassword(ctx context.Context, email string) models.AuthResult
}

// Handler обрабатывает HTTP-запросы на сброс пароля.
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
	const op = "handlers.auth.forgotpassword"

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

	result := h.sessions.ForgotPassword(r.Context(), req.Email)
	if !result.Success {
		log.Info("forgot password rejected")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(result.Message))
		return
	}

	log.Info("forgot password accepted")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": result.Message,
	}))
}
