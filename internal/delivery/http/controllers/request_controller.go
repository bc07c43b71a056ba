package controllers

import (
	"log/slog"
	"net/http"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

// UpdateRequestStatusRequest is the request body for PATCH /users/{userId}/events/{eventId}/requests.
type UpdateRequestStatusRequest struct {
	RequestIDs []int64 `json:"requestIds"`
	Status     string  `json:"status"`
}

// Validate implements Validator.
func (u UpdateRequestStatusRequest) Validate() []string {
	var errs []string
	if len(u.RequestIDs) == 0 {
		errs = append(errs, "requestIds is required")
	}
	for _, id := range u.RequestIDs {
		if id < 1 {
			errs = append(errs, "requestIds must be positive")
			break
		}
	}
	switch domain.RequestStatus(u.Status) {
	case domain.RequestStatusConfirmed, domain.RequestStatusRejected:
	case "":
		errs = append(errs, "status is required")
	default:
		errs = append(errs, "status must be CONFIRMED or REJECTED")
	}
	return errs
}

// RequestSuccessResponse is the success envelope for a single participation request.
type RequestSuccessResponse struct {
	Data  *domain.ParticipationRequest `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

// RequestListSuccessResponse is the success envelope for a list of participation requests.
type RequestListSuccessResponse struct {
	Data  []*domain.ParticipationRequest `json:"data"`
	Error *helpers.APIError              `json:"error"`
}

// StatusUpdateSuccessResponse is the success envelope for a bulk status change.
type StatusUpdateSuccessResponse struct {
	Data  *domain.StatusUpdateResult `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

type RequestController struct {
	Logger  *slog.Logger
	Service domain.RequestService
}

func NewRequestController(logger *slog.Logger, svc domain.RequestService) *RequestController {
	return &RequestController{
		Logger:  logger,
		Service: svc,
	}
}

// ListUserRequests godoc
// @Summary List the user's participation requests
// @Tags requests
// @Produce json
// @Param userId path int true "User ID"
// @Success 200 {object} controllers.RequestListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userId}/requests [get]
func (c *RequestController) ListUserRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathID(r, "userId")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	reqs, err := c.Service.ListUserRequests(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reqs)
}

// CreateRequest godoc
// @Summary Request participation in an event
// @Description Creates a PENDING request, or a CONFIRMED one when the event has no limit or no moderation.
// @Tags requests
// @Produce json
// @Param userId path int true "User ID"
// @Param eventId query int true "Event ID"
// @Success 201 {object} controllers.RequestSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userId}/requests [post]
func (c *RequestController) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathID(r, "userId")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	eventID, err := helpers.QueryID(r, "eventId")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	req, err := c.Service.CreateRequest(r.Context(), userID, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, req)
}

// CancelRequest godoc
// @Summary Cancel the user's own participation request
// @Tags requests
// @Produce json
// @Param userId path int true "User ID"
// @Param requestId path int true "Request ID"
// @Success 200 {object} controllers.RequestSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userId}/requests/{requestId}/cancel [patch]
func (c *RequestController) CancelRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathID(r, "userId")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	requestID, err := helpers.PathID(r, "requestId")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	req, err := c.Service.CancelRequest(r.Context(), userID, requestID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, req)
}

// ListEventRequests godoc
// @Summary List participation requests of an organizer's event
// @Tags requests
// @Produce json
// @Param userId path int true "Organizer user ID"
// @Param eventId path int true "Event ID"
// @Success 200 {object} controllers.RequestListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userId}/events/{eventId}/requests [get]
func (c *RequestController) ListEventRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathID(r, "userId")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	eventID, err := helpers.PathID(r, "eventId")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	reqs, err := c.Service.ListEventRequests(r.Context(), userID, eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reqs)
}

// UpdateRequestStatus godoc
// @Summary Confirm or reject pending requests of an organizer's event
// @Description All listed requests must be PENDING. When confirming, requests beyond the participant limit are rejected in the given order.
// @Tags requests
// @Accept json
// @Produce json
// @Param userId path int true "Organizer user ID"
// @Param eventId path int true "Event ID"
// @Param body body UpdateRequestStatusRequest true "Request ids and target status"
// @Success 200 {object} controllers.StatusUpdateSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userId}/events/{eventId}/requests [patch]
func (c *RequestController) UpdateRequestStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathID(r, "userId")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	eventID, err := helpers.PathID(r, "eventId")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	var body UpdateRequestStatusRequest
	if !helpers.DecodeAndValidate(w, r, &body) {
		return
	}
	result, err := c.Service.UpdateRequestStatus(r.Context(), userID, eventID, body.RequestIDs, domain.RequestStatus(body.Status))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
