package media

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/stormarchive/timeline-service/internal/cache"
	mediaService "github.com/stormarchive/timeline-service/internal/services/media"
	"github.com/stormarchive/timeline-service/internal/storage"
	"github.com/stormarchive/timeline-service/internal/types"
	"github.com/stormarchive/timeline-service/internal/utils/response"
)

type MediaHandlers struct {
	store    storage.Storage
	media    *mediaService.Service
	timeline *cache.TimelineCache
}

func NewMediaHandlers(store storage.Storage, media *mediaService.Service, timeline *cache.TimelineCache) *MediaHandlers {
	return &MediaHandlers{
		store:    store,
		media:    media,
		timeline: timeline,
	}
}

// List returns the media attached to an event.
// @Summary List event media
// @Tags media
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {array} types.MediaItem "Media items"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 404 {object} response.Response "Event not found"
// @Security BearerAuth
// @Router /events/{id}/media [get]
func (h *MediaHandlers) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := r.PathValue("id")
		if eventID == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("event id is required")))
			return
		}

		if _, err := h.store.GetEvent(eventID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("event not found")))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to load event")))
			return
		}

		items, err := h.store.ListMedia(eventID)
		if err != nil {
			slog.Error("Failed to list media", slog.String("error", err.Error()), slog.String("event_id", eventID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to list media")))
			return
		}

		response.WriteJSON(w, http.StatusOK, items)
	}
}

// Upload accepts a multipart image upload with a caption, stores the
// object and records the media row. Both fields are mandatory.
// @Summary Upload media to an event
// @Tags media
// @Accept mpfd
// @Produce json
// @Param id path string true "Event ID"
// @Param file formData file true "Image file"
// @Param caption formData string true "Caption"
// @Success 201 {object} types.MediaItem "Media item created"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 404 {object} response.Response "Event not found"
// @Security BearerAuth
// @Router /events/{id}/media [post]
func (h *MediaHandlers) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := r.PathValue("id")
		if eventID == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("event id is required")))
			return
		}

		if _, err := h.store.GetEvent(eventID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("event not found")))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to load event")))
			return
		}

		if err := r.ParseMultipartForm(h.media.MaxFileSize()); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid multipart form")))
			return
		}

		fields := map[string]string{}
		caption := strings.TrimSpace(r.FormValue("caption"))
		if caption == "" {
			fields["caption"] = "caption is required"
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			fields["file"] = "an image file is required"
		}

		if len(fields) > 0 {
			response.WriteJSON(w, http.StatusBadRequest, response.FieldErrors("missing required fields", fields))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("failed to read file")))
			return
		}

		contentType := header.Header.Get("Content-Type")
		objectKey, url, err := h.media.Upload(r.Context(), eventID, data, contentType)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		item := types.MediaItem{
			EventID:     eventID,
			ObjectKey:   objectKey,
			URL:         url,
			Caption:     caption,
			ContentType: contentType,
			Size:        int64(len(data)),
		}

		mediaID, err := h.store.CreateMedia(item)
		if err != nil {
			slog.Error("Failed to record media row", slog.String("error", err.Error()), slog.String("object_key", objectKey))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to save media")))
			return
		}

		stored, err := h.store.GetMedia(mediaID)
		if err != nil {
			// Row exists; echo what we know rather than failing the upload.
			item.ID = mediaID
			stored = item
		}

		h.timeline.Invalidate(r.Context())
		slog.Info("Media uploaded", slog.String("media_id", mediaID), slog.String("event_id", eventID))

		response.WriteJSON(w, http.StatusCreated, stored)
	}
}

// UpdateCaption changes a media item's caption.
// @Summary Update a media caption
// @Tags media
// @Accept json
// @Produce json
// @Param id path string true "Media ID"
// @Param caption body types.CaptionUpdateRequest true "New caption"
// @Success 200 {object} map[string]string "Updated caption"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 404 {object} response.Response "Media not found"
// @Security BearerAuth
// @Router /media/{id} [patch]
func (h *MediaHandlers) UpdateCaption() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mediaID := r.PathValue("id")
		if mediaID == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("media id is required")))
			return
		}

		var req types.CaptionUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid request body")))
			return
		}

		validate := validator.New()
		if err := validate.Struct(req); err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		err := h.store.UpdateMediaCaption(mediaID, req.Caption)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("media not found")))
				return
			}
			slog.Error("Failed to update caption", slog.String("error", err.Error()), slog.String("media_id", mediaID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to update caption")))
			return
		}

		h.timeline.Invalidate(r.Context())

		response.WriteJSON(w, http.StatusOK, map[string]string{
			"caption": req.Caption,
		})
	}
}

// Delete removes one media item from an event, object first.
// @Summary Delete a media item
// @Tags media
// @Produce json
// @Param id path string true "Event ID"
// @Param media_id path string true "Media ID"
// @Success 200 {object} response.Response "Media deleted"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 404 {object} response.Response "Media not found"
// @Security BearerAuth
// @Router /events/{id}/media/{media_id} [delete]
func (h *MediaHandlers) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := r.PathValue("id")
		mediaID := r.PathValue("media_id")
		if eventID == "" || mediaID == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("event id and media id are required")))
			return
		}

		item, err := h.store.GetMedia(mediaID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("media not found")))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to load media")))
			return
		}

		err = h.store.DeleteMedia(eventID, mediaID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("media not found")))
				return
			}
			slog.Error("Failed to delete media", slog.String("error", err.Error()), slog.String("media_id", mediaID))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to delete media")))
			return
		}

		// Best-effort; the sweeper handles leftovers.
		if err := h.media.DeleteObject(r.Context(), item.ObjectKey); err != nil {
			slog.Error("Failed to delete media object", slog.String("error", err.Error()), slog.String("object_key", item.ObjectKey))
		}

		h.timeline.Invalidate(r.Context())

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Media deleted", nil))
	}
}
