package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/footy-data/internal/api/respond"
	"github.com/albapepper/footy-data/internal/cache"
	"github.com/albapepper/footy-data/internal/footy"
	"github.com/albapepper/footy-data/internal/frame"
	"github.com/albapepper/footy-data/internal/metrics"
	"github.com/albapepper/footy-data/internal/snapshot"
)

// pathParams are the chi URL parameters that override query parameters of
// the same name.
var pathParams = []string{"season", "round_number", "team"}

const snapshotSaveTimeout = 5 * time.Second

// GetFixture serves the match fixture.
// @Summary Fixture
// @Description Match fixture for a season and round. Also served at /fixture/{season} and /fixture/{season}/{round_number}. An empty round_number with the AFL source returns every round.
// @Tags datasets
// @Produce json
// @Param season query int false "Season (defaults to the current year)"
// @Param round_number query string false "Round number 0-30 (defaults to 1)"
// @Param source query string false "Data source" Enums(AFL, footywire, squiggle) default(AFL)
// @Param competition query string false "Competition" Enums(AFLM, AFLW) default(AFLM)
// @Param orient query string false "JSON shape" Enums(index, columns, records) default(index)
// @Success 200 {object} map[string]interface{} "Row index → column → value"
// @Success 304 "Not modified"
// @Failure 400 {object} respond.ErrorResponse
// @Failure 501 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /fixture [get]
func (h *Handler) GetFixture(w http.ResponseWriter, r *http.Request) {
	h.serveDataset(w, r, footy.Fixture)
}

// GetLadder serves the competition ladder after a round.
// @Summary Ladder
// @Description Ladder standings after a round. Also served at /ladder/{season} and /ladder/{season}/{round_number}.
// @Tags datasets
// @Produce json
// @Param season query int false "Season (defaults to the current year)"
// @Param round_number query int false "Round number 0-30 (defaults to 1)"
// @Param source query string false "Data source" Enums(AFL, squiggle, afltables) default(AFL)
// @Param competition query string false "Competition" Enums(AFLM, AFLW) default(AFLM)
// @Param orient query string false "JSON shape" Enums(index, columns, records) default(index)
// @Success 200 {object} map[string]interface{} "Row index → column → value"
// @Success 304 "Not modified"
// @Failure 400 {object} respond.ErrorResponse
// @Failure 501 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /ladder [get]
func (h *Handler) GetLadder(w http.ResponseWriter, r *http.Request) {
	h.serveDataset(w, r, footy.Ladder)
}

// GetLineup serves team lineups for a round.
// @Summary Lineup
// @Description Team lineups for every match of a round. Also served at /lineup/{season}/{round_number}.
// @Tags datasets
// @Produce json
// @Param season query int false "Season (defaults to the current year)"
// @Param round_number query int false "Round number 0-30 (defaults to 1)"
// @Param competition query string false "Competition" Enums(AFLM, AFLW) default(AFLM)
// @Param orient query string false "JSON shape" Enums(index, columns, records) default(index)
// @Success 200 {object} map[string]interface{} "Row index → column → value"
// @Success 304 "Not modified"
// @Failure 400 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /lineup [get]
func (h *Handler) GetLineup(w http.ResponseWriter, r *http.Request) {
	h.serveDataset(w, r, footy.Lineup)
}

// GetPlayerDetails serves player biographical details.
// @Summary Player details
// @Description Player details, optionally for one team. Also served at /player_details/{team}.
// @Tags datasets
// @Produce json
// @Param team query string false "Team name, nickname or abbreviation (empty for every team)"
// @Param current query bool false "Only the current season (default true)"
// @Param source query string false "Data source" Enums(AFL, footywire, afltables) default(AFL)
// @Param competition query string false "Competition" Enums(AFLM, AFLW) default(AFLM)
// @Param orient query string false "JSON shape" Enums(index, columns, records) default(index)
// @Success 200 {object} map[string]interface{} "Row index → column → value"
// @Success 304 "Not modified"
// @Failure 400 {object} respond.ErrorResponse
// @Failure 501 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /player_details [get]
func (h *Handler) GetPlayerDetails(w http.ResponseWriter, r *http.Request) {
	h.serveDataset(w, r, footy.PlayerDetails)
}

// GetPlayerStats serves per-player match statistics.
// @Summary Player statistics
// @Description Per-player match statistics. round_number is only honoured by the AFL source; other sources return every round. Also served at /player_statistics/{season} and /player_statistics/{season}/{round_number}.
// @Tags datasets
// @Produce json
// @Param season query int false "Season (defaults to the current year)"
// @Param round_number query int false "Round number 0-30 (defaults to every round)"
// @Param source query string false "Data source" Enums(AFL, footywire, fryzigg, afltables) default(AFL)
// @Param competition query string false "Competition" Enums(AFLM, AFLW) default(AFLM)
// @Param orient query string false "JSON shape" Enums(index, columns, records) default(index)
// @Success 200 {object} map[string]interface{} "Row index → column → value"
// @Success 304 "Not modified"
// @Failure 400 {object} respond.ErrorResponse
// @Failure 501 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /player_statistics [get]
func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	h.serveDataset(w, r, footy.PlayerStats)
}

// GetResults serves match results.
// @Summary Results
// @Description Completed match results. Also served at /results/{season} and /results/{season}/{round_number}.
// @Tags datasets
// @Produce json
// @Param season query int false "Season (defaults to the current year)"
// @Param round_number query int false "Round number 0-30 (defaults to 1)"
// @Param source query string false "Data source" Enums(AFL, footywire, fryzigg, afltables, squiggle) default(AFL)
// @Param competition query string false "Competition" Enums(AFLM, AFLW) default(AFLM)
// @Param orient query string false "JSON shape" Enums(index, columns, records) default(index)
// @Success 200 {object} map[string]interface{} "Row index → column → value"
// @Success 304 "Not modified"
// @Failure 400 {object} respond.ErrorResponse
// @Failure 501 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /results [get]
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	h.serveDataset(w, r, footy.Results)
}

// serveDataset is the shared flow behind every dataset endpoint:
// validate, serve from cache, fetch, fall back to the last snapshot on
// upstream failure, encode, cache.
func (h *Handler) serveDataset(w http.ResponseWriter, r *http.Request, d footy.Dataset) {
	params := r.URL.Query()
	for _, name := range pathParams {
		v := chi.URLParam(r, name)
		if v == "" {
			continue
		}
		if unescaped, err := url.PathUnescape(v); err == nil {
			v = unescaped
		}
		params.Set(name, v)
	}

	q, err := footy.ParseQuery(d, params, h.now())
	if err != nil {
		if footy.IsValidationError(err) {
			writeQueryError(w, err)
			return
		}
		h.logger.Error("Query parse failed", "dataset", d, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read request parameters")
		return
	}
	orient, err := frame.ParseOrient(params.Get("orient"))
	if err != nil {
		writeQueryError(w, &footy.InvalidParameterError{
			Name: "orient", Value: params.Get("orient"), Hint: "Please select one of the following: index, columns, records.",
		})
		return
	}
	for _, msg := range q.Warnings {
		h.logger.Info("Request adjusted", "dataset", d, "source", q.Source, "warning", msg)
		w.Header().Add("X-Footy-Warning", msg)
	}

	key := q.Key() + "|" + string(orient)
	ttl := h.ttl(q)

	if h.cache.Enabled() {
		if data, etag, ok := h.cache.Get(key); ok {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
				respond.WriteNotModified(w, etag)
				return
			}
			respond.WriteJSON(w, data, etag, ttl, respond.CacheHit)
			return
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	} else {
		metrics.CacheLookups.WithLabelValues("bypass").Inc()
	}

	f, err := h.fetcher.Fetch(r.Context(), q)
	if err != nil {
		h.fetchFailed(w, r, q, orient, err)
		return
	}

	data, err := frame.Marshal(f, orient)
	if err != nil {
		h.logger.Error("Encode failed", "dataset", d, "key", q.Key(), "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to encode response")
		return
	}
	etag := h.cache.Set(key, data, ttl)
	h.saveSnapshot(r.Context(), q, f)

	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, ttl, respond.CacheMiss)
}

func (h *Handler) fetchFailed(w http.ResponseWriter, r *http.Request, q footy.Query, orient frame.Orient, err error) {
	if r.Context().Err() != nil {
		h.logger.Debug("Client went away during fetch", "key", q.Key())
		return
	}
	if errors.Is(err, footy.ErrSourceUnavailable) {
		respond.WriteErrorDetail(w, http.StatusNotImplemented, "SOURCE_UNAVAILABLE",
			"The '"+q.Source+"' source is not available on this server for "+string(q.Dataset)+".", err.Error())
		return
	}

	if h.snapshots != nil {
		snap, serr := h.snapshots.Latest(r.Context(), q)
		switch {
		case serr == nil:
			data, eerr := frame.Marshal(snap.Frame, orient)
			if eerr == nil {
				metrics.CacheLookups.WithLabelValues("stale").Inc()
				h.logger.Warn("Serving stale snapshot",
					"key", q.Key(), "fetched_at", snap.FetchedAt, "error", err)
				w.Header().Set("X-Snapshot-Fetched-At", snap.FetchedAt.UTC().Format(time.RFC3339))
				respond.WriteJSON(w, data, cache.ComputeETag(data), 0, respond.CacheStale)
				return
			}
			h.logger.Warn("Snapshot encode failed", "key", q.Key(), "error", eerr)
		case !errors.Is(serr, snapshot.ErrNotFound):
			h.logger.Warn("Snapshot lookup failed", "key", q.Key(), "error", serr)
		}
	}

	if footy.IsBreakerOpen(err) {
		w.Header().Set("Retry-After", strconv.Itoa(int(footy.BreakerOpenTimeout.Seconds())))
		respond.WriteErrorDetail(w, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE",
			"The '"+q.Source+"' source is failing; requests are paused while it recovers.", err.Error())
		return
	}
	respond.WriteErrorDetail(w, http.StatusBadGateway, "UPSTREAM_ERROR",
		"Failed to fetch "+string(q.Dataset)+" from "+q.Source, err.Error())
}

// saveSnapshot persists non-empty frames. Failures only log.
func (h *Handler) saveSnapshot(ctx context.Context, q footy.Query, f *frame.Frame) {
	if h.snapshots == nil || f.NRow() == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotSaveTimeout)
	defer cancel()
	if err := h.snapshots.Save(ctx, q, f); err != nil {
		h.logger.Warn("Snapshot save failed", "key", q.Key(), "error", err)
	}
}

func (h *Handler) ttl(q footy.Query) time.Duration {
	if q.Dataset == footy.PlayerDetails {
		return cache.TTLEntityInfo
	}
	return cache.TTLForSeason(q.Season, h.now())
}
