package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

// EventListSuccessResponse is the success envelope for GET /events.
type EventListSuccessResponse struct {
	Data  []*domain.EventView `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// EventSuccessResponse is the success envelope for GET /events/{id}.
type EventSuccessResponse struct {
	Data  *domain.EventView `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.CatalogService
}

func NewEventController(logger *slog.Logger, svc domain.CatalogService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// ListEvents godoc
// @Summary Search published events
// @Description Every call is recorded as a hit on /events. Views are unique-ip counts from the stats service; when it is unavailable they read as 0.
// @Tags events
// @Produce json
// @Param text query string false "Substring of annotation or description, case-insensitive"
// @Param categories query []int false "Category ids" collectionFormat(csv)
// @Param paid query bool false "Only paid or only free events"
// @Param rangeStart query string false "yyyy-MM-dd HH:mm:ss, defaults to now"
// @Param rangeEnd query string false "yyyy-MM-dd HH:mm:ss"
// @Param onlyAvailable query bool false "Skip events whose participant limit is reached"
// @Param sort query string false "EVENT_DATE or VIEWS"
// @Param from query int false "Offset" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	events, err := c.Service.ListEvents(r.Context(), filter, visitOf(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get a published event
// @Description The call is recorded as a hit on /events/{id}.
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id")
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	event, err := c.Service.GetEvent(r.Context(), id, visitOf(r))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

func visitOf(r *http.Request) domain.Visit {
	return domain.Visit{IP: helpers.ClientIP(r), URI: r.URL.Path}
}

func parseEventFilter(r *http.Request) (domain.EventFilter, error) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		Text: q.Get("text"),
		Sort: domain.EventSort(q.Get("sort")),
	}
	for _, s := range helpers.QueryList(r, "categories") {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id < 1 {
			return filter, fmt.Errorf("categories must be positive integers")
		}
		filter.Categories = append(filter.Categories, id)
	}
	if s := q.Get("paid"); s != "" {
		paid, err := strconv.ParseBool(s)
		if err != nil {
			return filter, fmt.Errorf("paid must be true or false")
		}
		filter.Paid = &paid
	}
	if s := q.Get("onlyAvailable"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return filter, fmt.Errorf("onlyAvailable must be true or false")
		}
		filter.OnlyAvailable = v
	}
	if s := q.Get("rangeStart"); s != "" {
		t, err := domain.ParseStatsTime(s)
		if err != nil {
			return filter, err
		}
		filter.RangeStart = t
	}
	if s := q.Get("rangeEnd"); s != "" {
		t, err := domain.ParseStatsTime(s)
		if err != nil {
			return filter, err
		}
		filter.RangeEnd = &t
	}
	page, err := helpers.ParsePagination(r)
	if err != nil {
		return filter, err
	}
	filter.Page = page
	return filter, nil
}
