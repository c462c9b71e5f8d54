package settlement

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tallyhq/tally/pkg/middleware"
	"github.com/tallyhq/tally/pkg/response"
)

// Handler handles HTTP requests for settlement operations.
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for settlement endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListForUser)
	r.Get("/with/{userId}", h.GetBetween)
	r.Post("/settle", h.Settle)

	return r
}

// ListForUser handles GET /settlements
// @Summary      List net settlements
// @Description  Net balances against every counterparty with unpaid splits, largest amount owed to you first
// @Tags         settlements
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]UserSettlement}
// @Router       /settlements [get]
func (h *Handler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	settlements, err := h.service.SettlementsForUser(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to get settlements")
		return
	}

	response.JSON(w, http.StatusOK, settlements)
}

// GetBetween handles GET /settlements/with/{userId}
// @Summary      Settlement with one user
// @Description  Directional totals and unpaid splits between the current user and a counterparty
// @Tags         settlements
// @Produce      json
// @Param        userId path int true "Counterparty user ID"
// @Success      200 {object} response.APIResponse{data=PairSettlement}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/with/{userId} [get]
func (h *Handler) GetBetween(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	otherID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	pair, err := h.service.SettlementBetween(r.Context(), userID, otherID)
	if err != nil {
		switch {
		case errors.Is(err, ErrCannotSettleSelf):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrUserNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalError(w, "Failed to get settlement")
		}
		return
	}

	response.JSON(w, http.StatusOK, pair)
}

// Settle handles POST /settlements/settle
// @Summary      Settle debts
// @Description  Apply a payment from the current user to a payee against unpaid splits, oldest expense first
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        request body SettleRequest true "Settle request"
// @Success      200 {object} response.APIResponse{data=SettleResult}
// @Failure      400 {object} response.APIResponse
// @Router       /settlements/settle [post]
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	payerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Missing user identity")
		return
	}

	var req SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.Settle(r.Context(), payerID, req.PayeeID, req.AmountCap)
	if err != nil {
		switch {
		case errors.Is(err, ErrCannotSettleSelf), errors.Is(err, ErrNonPositiveCap):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrUserNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalError(w, "Failed to settle debts")
		}
		return
	}

	response.JSON(w, http.StatusOK, result)
}
