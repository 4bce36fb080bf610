// Package returnloan реализует HTTP-обработчик возврата занятого инструмента.
package returnloan

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/skillsfinder/skillsfinder/internal/http/middlewarectx"
	"github.com/skillsfinder/skillsfinder/internal/http/response"
	"github.com/skillsfinder/skillsfinder/internal/lib/sl"
	directoryservice "github.com/skillsfinder/skillsfinder/internal/services/directory"
)

// Request содержит данные возврата: владелец инструмента и предмет.
type Request struct {
	LenderID string `json:"lender_id" validate:"required"`
	Item     string `json:"item" validate:"required,min=1,max=200"`
}

// Service описывает интерфейс возврата займа.
type Service interface {
	Return(ctx context.Context, borrowerID, lenderID, item string) error
}

// Handler обрабатывает HTTP-запросы возврата займа.
type Handler struct {
	log      *slog.Logger
	members  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, members Service) *Handler {
	return &Handler{
		log:      log,
		members:  members,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.loan.returnloan"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	borrowerID, ok := r.Context().Value(middlewarectx.MemberID).(string)
	if !ok || borrowerID == "" {
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

	if err := h.members.Return(r.Context(), borrowerID, req.LenderID, req.Item); err != nil {
		if errors.Is(err, directoryservice.ErrNotFound) {
			log.Info("borrower not found", slog.String("borrower_id", borrowerID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("member not found"))
			return
		}
		if errors.Is(err, directoryservice.ErrNoActiveLoan) {
			log.Info("no active loan",
				slog.String("borrower_id", borrowerID),
				slog.String("item", req.Item))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("no active loan for this item"))
			return
		}
		log.Error("failed to return loan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not return loan"))
		return
	}

	log.Info("loan returned",
		slog.String("borrower_id", borrowerID),
		slog.String("item", req.Item))
	render.JSON(w, r, response.OK())
}
