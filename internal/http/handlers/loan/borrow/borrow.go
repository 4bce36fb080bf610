// Package borrow реализует HTTP-обработчик оформления займа инструмента.
//
// Заёмщик определяется по токену, владелец и предмет приходят в теле запроса.
package borrow

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

// Request содержит данные займа: владелец инструмента и предмет.
type Request struct {
	LenderID string `json:"lender_id" validate:"required"`
	Item     string `json:"item" validate:"required,min=1,max=200"`
}

// Service описывает интерфейс оформления займа.
type Service interface {
	Borrow(ctx context.Context, borrowerID, lenderID, item string) error
}

// Handler обрабатывает HTTP-запросы оформления займа.
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
	const op = "handlers.loan.borrow"

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

	if err := h.members.Borrow(r.Context(), borrowerID, req.LenderID, req.Item); err != nil {
		if errors.Is(err, directoryservice.ErrNotFound) {
			log.Info("borrower not found", slog.String("borrower_id", borrowerID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("member not found"))
			return
		}
		log.Error("failed to record loan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not record loan"))
		return
	}

	log.Info("loan recorded",
		slog.String("borrower_id", borrowerID),
		slog.String("lender_id", req.LenderID),
		slog.String("item", req.Item))
	render.JSON(w, r, response.OK())
}
