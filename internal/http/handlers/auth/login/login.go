// Package login реализует HTTP-обработчик для запросов аутентификации участников.
//
// В нём определяется структура Request для входных данных, выполняется декодирование JSON,
// проверка и валидация полей, а также делегирование операции входа сервису сессий.
// При успешной аутентификации возвращается JSON с JWT и снимком сессии;
// в случае ошибок формируются соответствующие HTTP-ответы.
package login

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

// Request — структура входных данных для авторизации.
//
// Identifier — почта или имя участника, пароль — минимум 6 символов.
type Request struct {
	Identifier string `json:"identifier" validate:"required,min=3,max=100"`
	Password   string `json:"password" validate:"required,min=6"`
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	sessions Service             // Сервис сессий
	validate *validator.Validate // Валидатор для проверки входных данных
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, identifier, secret string) models.AuthResult
}

// New создает новый экземпляр Handler с указанными логгером и сервисом сессий.
//
// Инициализирует валидатор для проверки структур.
func New(log *slog.Logger, sessions Service) *Handler {
	return &Handler{
		log:      log,
		sessions: sessions,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Авторизация участника
// @Description Аутентифицирует участника по почте или имени и паролю. Возвращает JWT и снимок сессии.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные участника"
// @Success 200 {object} map[string]any "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	result := h.sessions.Login(r.Context(), req.Identifier, req.Password)
	if !result.Success {
		log.Info("login rejected", slog.String("identifier", req.Identifier))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(result.Message))
		return
	}

	log.Info("login success", slog.String("identifier", req.Identifier))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": result.Message,
		"token":   result.Token,
		"session": result.Session,
	}))
}
