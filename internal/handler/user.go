package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/sitesmith/sitesmith-go/internal/middleware"
	"github.com/sitesmith/sitesmith-go/internal/model"
	"github.com/sitesmith/sitesmith-go/internal/service"
)

// UserHandler handles HTTP requests for the credit ledger and profile.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// HandleGetCredits handles GET /api/v1/user/credits requests.
func (h *UserHandler) HandleGetCredits(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	resp, err := h.service.GetCredits(r.Context(), userID)
	if err != nil {
		writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSetCredits handles PUT /api/v1/user/credits requests.
func (h *UserHandler) HandleSetCredits(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.SetCreditsRequest
	if !decodeBody(w, r, 1<<20, &req) {
		return
	}

	resp, err := h.service.SetCredits(r.Context(), userID, req.Credits)
	if err != nil {
		writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleIncrementCredits handles PATCH /api/v1/user/credits/increment requests.
func (h *UserHandler) HandleIncrementCredits(w http.ResponseWriter, r *http.Request) {
	h.handleCreditDelta(w, r, h.service.IncrementCredits)
}

// HandleDecrementCredits handles PATCH /api/v1/user/credits/decrement requests.
func (h *UserHandler) HandleDecrementCredits(w http.ResponseWriter, r *http.Request) {
	h.handleCreditDelta(w, r, h.service.DecrementCredits)
}

// HandleIncrementCreation handles PATCH /api/v1/user/creation/increment requests.
func (h *UserHandler) HandleIncrementCreation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	resp, err := h.service.IncrementCreation(r.Context(), userID)
	if err != nil {
		writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetProfile handles GET /api/v1/user/profile requests.
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	resp, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdateProfile handles PUT /api/v1/user/profile requests.
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.UpdateProfileRequest
	if !decodeBody(w, r, 1<<20, &req) {
		return
	}

	resp, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNameRequired), errors.Is(err, service.ErrEmailRequired):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrEmailTaken):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		default:
			writeUserError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) handleCreditDelta(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID int64, amount int) (model.CreditsResponse, error)) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var req model.CreditAmountRequest
	if !decodeBody(w, r, 1<<20, &req) {
		return
	}

	resp, err := op(r.Context(), userID, req.Amount)
	if err != nil {
		writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount), errors.Is(err, service.ErrNegativeCredits):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInsufficientCredits):
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
	}
}
