// Package teammates реализует HTTP-обработчик подбора участников по навыкам.
//
// Поддерживает два режима: простая фильтрация по пересечению навыков и
// ранжированный подбор по коэффициенту Жаккара.
package teammates

import (
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

// Request содержит искомые навыки и флаг ранжирования результатов.
type Request struct {
	Skills []string `json:"skills" validate:"required,min=1"`
	Ranked bool     `json:"ranked"`
}

// Service описывает интерфейс подбора участников.
type Service interface {
	FindBySkills(skills []string) []models.ProfileSummary
	MatchTeammates(skills []string) []models.ProfileSummary
}

// Handler обрабатывает HTTP-запросы подбора участников.
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
	const op = "handlers.match.teammates"

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

	var matches []models.ProfileSummary
	if req.Ranked {
		matches = h.sessions.MatchTeammates(req.Skills)
	} else {
		matches = h.sessions.FindBySkills(req.Skills)
	}

	log.Info("teammates matched",
		slog.Int("skills", len(req.Skills)),
		slog.Bool("ranked", req.Ranked),
		slog.Int("count", len(matches)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"matches": matches,
	}))
}
