package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"eventboard/internal/delivery/http/helpers"
	"eventboard/internal/domain"
)

type StatsController struct {
	Logger  *slog.Logger
	Service domain.StatsService
}

func NewStatsController(logger *slog.Logger, svc domain.StatsService) *StatsController {
	return &StatsController{
		Logger:  logger,
		Service: svc,
	}
}

// SaveHit godoc
// @Summary Record an endpoint hit
// @Tags stats
// @Accept json
// @Produce json
// @Param hit body domain.HitPayload true "Hit; timestamp is yyyy-MM-dd HH:mm:ss"
// @Success 201 {object} domain.HitPayload
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /hit [post]
func (c *StatsController) SaveHit(w http.ResponseWriter, r *http.Request) {
	var payload domain.HitPayload
	if !helpers.DecodeAndValidate(w, r, &payload) {
		return
	}
	hit, err := payload.Hit()
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	saved, err := c.Service.SaveHit(r.Context(), hit)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, domain.NewHitPayload(saved))
}

// GetStats godoc
// @Summary Aggregate hits per app and uri
// @Description Counts hits with start <= timestamp <= end, grouped by app and uri, most hit first. unique counts distinct ips.
// @Tags stats
// @Produce json
// @Param start query string true "yyyy-MM-dd HH:mm:ss"
// @Param end query string true "yyyy-MM-dd HH:mm:ss"
// @Param uris query []string false "Uris to include; all when omitted" collectionFormat(multi)
// @Param unique query bool false "Count distinct ips" default(false)
// @Success 200 {array} domain.ViewStats
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /stats [get]
func (c *StatsController) GetStats(w http.ResponseWriter, r *http.Request) {
	q, err := parseStatsQuery(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	stats, err := c.Service.GetStats(r.Context(), q)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, stats)
}

func parseStatsQuery(r *http.Request) (domain.StatsQuery, error) {
	var q domain.StatsQuery
	start, err := statsTimeParam(r, "start")
	if err != nil {
		return q, err
	}
	end, err := statsTimeParam(r, "end")
	if err != nil {
		return q, err
	}
	q.Start, q.End = start, end
	q.URIs = helpers.QueryList(r, "uris")
	if s := r.URL.Query().Get("unique"); s != "" {
		unique, err := strconv.ParseBool(s)
		if err != nil {
			return q, fmt.Errorf("unique must be true or false")
		}
		q.Unique = unique
	}
	return q, nil
}

// statsTimeParam reads a required timestamp. Some clients encode the value
// twice, so a value still holding escapes is decoded once more.
func statsTimeParam(r *http.Request, name string) (time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	if strings.Contains(s, "%") {
		if decoded, err := url.QueryUnescape(s); err == nil {
			s = decoded
		}
	}
	t, err := domain.ParseStatsTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}
