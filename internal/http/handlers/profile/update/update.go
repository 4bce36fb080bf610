// Package update реализует HTTP-обработчик обновления профиля участника.
//
// Обновляются только разрешённые поля: имя, телефон, навыки, инструменты,
// готовность помогать и пароль. Идентификатор участника берётся из контекста,
// заполненного JWT middleware.
package update

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/skillsfinder/skillsfinder/internal/http/middlewarectx"
	"github.com/skillsfinder/skillsfinder/internal/http/response"
	"github.com/skillsfinder/skillsfinder/internal/lib/sl"
	"github.com/skillsfinder/skillsfinder/internal/models"
)

// Request — частичное обновление профиля. Отсутствующие поля не меняются.
type Request struct {
	Name          *string   `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone         *string   `json:"phone,omitempty"`
	Skills        *[]string `json:"skills,omitempty"`
	Tools         *[]string `json:"tools,omitempty"`
	WillingToHelp *bool     `json:"willing_to_help,omitempty"`
	Password      *string   `json:"password,omitempty" validate:"omitempty,min=8"`
}

// Service описывает интерфейс бизнес-логики обновления профиля.
type Service interface {
	UpdateProfile(id string, upd models.ProfileUpdate) bool
}

// Handler обрабатывает HTTP-запросы обновления профиля.
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
	const op = "handlers.profile.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	memberID, ok := r.Context().Value(middlewarectx.MemberID).(string)
	if !ok || memberID == "" {
		log.Error("member identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("member identification missing"))
		return
	}

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

	ok = h.sessions.UpdateProfile(memberID, models.ProfileUpdate{
		Name:          req.Name,
		Phone:         req.Phone,
		Skills:        req.Skills,
		Tools:         req.Tools,
		WillingToHelp: req.WillingToHelp,
		Password:      req.Password,
	})
	if !ok {
		log.Error("profile update failed", slog.String("member_id", memberID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("could not update profile"))
		return
	}

	log.Info("profile updated", slog.String("member_id", memberID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "Profile updated",
	}))
}
