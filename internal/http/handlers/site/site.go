package site

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/stormarchive/timeline-service/internal/cache"
	"github.com/stormarchive/timeline-service/internal/storage"
	"github.com/stormarchive/timeline-service/internal/timeline"
	"github.com/stormarchive/timeline-service/internal/utils/response"
)

// Timeline serves the public event feed.
// @Summary Public timeline
// @Tags site
// @Produce json
// @Success 200 {array} types.Event "All events with display dates"
// @Router /timeline [get]
func Timeline(cache *cache.TimelineCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := cache.Timeline(r.Context())
		if err != nil {
			slog.Error("Failed to load timeline", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to load timeline")))
			return
		}

		response.WriteJSON(w, http.StatusOK, events)
	}
}

// Years serves the index of years that have events, for search and the
// decade browser.
// @Summary Years with events
// @Tags site
// @Produce json
// @Success 200 {array} int "Years in ascending order"
// @Router /timeline/years [get]
func Years(cache *cache.TimelineCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := cache.Timeline(r.Context())
		if err != nil {
			slog.Error("Failed to load timeline", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to load timeline")))
			return
		}

		groups := timeline.Group(events)
		years := make([]int, 0, len(groups))
		for _, g := range groups {
			years = append(years, g.Year)
		}

		response.WriteJSON(w, http.StatusOK, years)
	}
}

// About serves the ordered about sections.
// @Summary About sections
// @Tags site
// @Produce json
// @Success 200 {array} types.AboutSection "Sections in display order"
// @Router /about [get]
func About(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sections, err := store.ListAboutSections()
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to load about sections")))
			return
		}

		response.WriteJSON(w, http.StatusOK, sections)
	}
}

// Team serves the team member list.
// @Summary Team members
// @Tags site
// @Produce json
// @Success 200 {array} types.TeamMember "Members in display order"
// @Router /team [get]
func Team(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		members, err := store.ListTeamMembers()
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to load team members")))
			return
		}

		response.WriteJSON(w, http.StatusOK, members)
	}
}
