package query

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/futig/virtual-ta/internal/entity"
	"github.com/futig/virtual-ta/internal/pkg/logger"
	"github.com/futig/virtual-ta/internal/pkg/response"
	"github.com/futig/virtual-ta/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   QueryUsecase
	validator *validator.Validator
}

func NewHandler(usecase QueryUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// Answer handles POST /api
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Answer")

	r.Body = http.MaxBytesReader(w, r.Body, h.validator.MaxBodyBytes())

	var req entity.Query
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateQuery(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid query", err)
		return
	}

	ctxzap.Info(ctx, "answering question",
		zap.Int("question_len", len(req.Question)),
		zap.Int("top_k", req.TopK),
		zap.Bool("has_image", req.Image != nil && *req.Image != ""),
	)

	answer, err := h.usecase.Answer(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, toAnswerResponse(answer))
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Error(ctx, message)
	}
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, entity.ErrInvalidQuery) {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid query", err)
	} else if errors.Is(err, entity.ErrIndexUnavailable) {
		h.respondError(ctx, w, http.StatusServiceUnavailable, "index unavailable", err)
	} else if errors.Is(err, entity.ErrCompletion) {
		h.respondError(ctx, w, http.StatusBadGateway, "answer generation failed", err)
	} else {
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
