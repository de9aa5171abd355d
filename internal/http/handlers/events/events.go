package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/stormarchive/timeline-service/internal/cache"
	mediaService "github.com/stormarchive/timeline-service/internal/services/media"
	"github.com/stormarchive/timeline-service/internal/storage"
	"github.com/stormarchive/timeline-service/internal/types"
	"github.com/stormarchive/timeline-service/internal/utils/response"
)

func decodeAndValidate(w http.ResponseWriter, r *http.Request) (types.EventRequest, bool) {
	var req types.EventRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return req, false
	}

	validate := validator.New()
	err = validate.Struct(req)
	if err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
			return req, false
		}
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return req, false
	}

	return req, true
}

// Create persists a new event.
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Param event body types.EventRequest true "Event fields"
// @Success 201 {object} map[string]string "Event created"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /events [post]
func Create(store storage.Storage, timeline *cache.TimelineCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeAndValidate(w, r)
		if !ok {
			return
		}

		eventID, err := store.CreateEvent(req)
		if err != nil {
			slog.Error("Failed to create event", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to create event")))
			return
		}

		timeline.Invalidate(r.Context())
		slog.Info("Event created", slog.String("event_id", eventID))

		response.WriteJSON(w, http.StatusCreated, map[string]string{
			"id": eventID,
		})
	}
}

// Update rewrites an existing event's fields.
// @Summary Update an event
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param event body types.EventRequest true "Event fields"
// @Success 200 {object} response.Response "Event updated"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 404 {object} response.Response "Event not found"
// @Security BearerAuth
// @Router /events/{id} [put]
func Update(store storage.Storage, timeline *cache.TimelineCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := r.PathValue("id")
		if eventID == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("event id is required")))
			return
		}

		req, ok := decodeAndValidate(w, r)
		if !ok {
			return
		}

		err := store.UpdateEvent(eventID, req)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("event not found")))
				return
			}
			slog.Error("Failed to update event", slog.String("error", err.Error()), slog.String("event_id", eventID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to update event")))
			return
		}

		timeline.Invalidate(r.Context())

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Event updated", nil))
	}
}

// Delete removes an event. Media rows go with it via the FK cascade;
// their storage objects are deleted best-effort first (the sweeper
// picks up anything missed).
// @Summary Delete an event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Response "Event deleted"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 404 {object} response.Response "Event not found"
// @Security BearerAuth
// @Router /events/{id} [delete]
func Delete(store storage.Storage, timeline *cache.TimelineCache, media *mediaService.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := r.PathValue("id")
		if eventID == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("event id is required")))
			return
		}

		items, err := store.ListMedia(eventID)
		if err != nil {
			slog.Error("Failed to list media before delete", slog.String("error", err.Error()), slog.String("event_id", eventID))
		}

		err = store.DeleteEvent(eventID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("event not found")))
				return
			}
			slog.Error("Failed to delete event", slog.String("error", err.Error()), slog.String("event_id", eventID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to delete event")))
			return
		}

		for _, item := range items {
			if err := media.DeleteObject(context.WithoutCancel(r.Context()), item.ObjectKey); err != nil {
				slog.Error("Failed to delete media object", slog.String("error", err.Error()), slog.String("object_key", item.ObjectKey))
			}
		}

		timeline.Invalidate(r.Context())
		slog.Info("Event deleted", slog.String("event_id", eventID))

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Event deleted", nil))
	}
}

// Get returns a single event.
// @Summary Get an event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} types.Event "Event"
// @Failure 404 {object} response.Response "Event not found"
// @Security BearerAuth
// @Router /events/{id} [get]
func Get(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := r.PathValue("id")
		if eventID == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("event id is required")))
			return
		}

		event, err := store.GetEvent(eventID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("event not found")))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to load event")))
			return
		}

		response.WriteJSON(w, http.StatusOK, event)
	}
}
