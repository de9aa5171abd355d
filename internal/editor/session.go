// Package editor implements the admin event editor: one form holding a
// draft of a single event plus its attached media, in create or edit
// mode. Create mode queues media locally and persists everything on
// save; edit mode talks to the API per action.
package editor

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stormarchive/timeline-service/internal/blocking"
	"github.com/stormarchive/timeline-service/internal/dates"
	"github.com/stormarchive/timeline-service/internal/types"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

type MediaLoadState int

const (
	MediaIdle MediaLoadState = iota
	MediaLoading
	MediaReady
	MediaFailed
)

const (
	FieldDate             = "date"
	FieldType             = "type"
	FieldLocation         = "location"
	FieldTitle            = "title"
	FieldShortDescription = "shortDescription"
	FieldSummary          = "summary"
	FieldImpact           = "impact"
)

var fieldOrder = []string{
	FieldDate, FieldType, FieldLocation, FieldTitle,
	FieldShortDescription, FieldSummary, FieldImpact,
}

var fieldLabels = map[string]string{
	FieldDate:             "Date",
	FieldType:             "Type",
	FieldLocation:         "Location",
	FieldTitle:            "Title",
	FieldShortDescription: "Short description",
	FieldSummary:          "Summary",
	FieldImpact:           "Impact",
}

// ErrValidation means save was refused locally; no network call was made.
var ErrValidation = errors.New("validation failed")

// Config wires a session to its collaborators. Blocking and Refresh
// are optional; ReleasePreview is a hook so tests can observe preview
// handle releases.
type Config struct {
	Client         Client
	Blocking       *blocking.Set
	Refresh        func()
	ReleasePreview func(url string)
}

// Session is the transient state of one open editor modal. It is
// reset, not reallocated, between opens: opening clears any state a
// previous aborted session left behind, including queued previews.
type Session struct {
	client         Client
	ops            *blocking.Set
	refresh        func()
	releasePreview func(string)

	open    bool
	mode    Mode
	eventID string

	fields map[string]string

	media        []Media
	activeMedia  int
	mediaLoad    MediaLoadState
	mediaLoadErr string

	attempted bool
	errs      map[string]string

	addMediaOpen      bool
	addMediaAttempted bool
	addMediaErrs      map[string]string
	addMediaErr       string

	captionEditing bool
	captionDraft   string

	confirmDeleteOpen bool

	lastError string
}

func New(cfg Config) *Session {
	ops := cfg.Blocking
	if ops == nil {
		ops = blocking.NewSet()
	}
	s := &Session{
		client:         cfg.Client,
		ops:            ops,
		refresh:        cfg.Refresh,
		releasePreview: cfg.ReleasePreview,
	}
	s.reset()
	return s
}

// reset clears every piece of session state so the next open starts
// clean. Queued previews still held are released here; this covers
// both explicit close and a stale aborted session.
func (s *Session) reset() {
	for i := range s.media {
		if s.media[i].Kind == MediaQueued {
			s.media[i].Preview.Release()
		}
	}

	s.open = false
	s.mode = ModeCreate
	s.eventID = ""
	s.fields = map[string]string{}
	for _, name := range fieldOrder {
		s.fields[name] = ""
	}
	s.media = nil
	s.activeMedia = 0
	s.mediaLoad = MediaIdle
	s.mediaLoadErr = ""
	s.attempted = false
	s.errs = map[string]string{}
	s.addMediaOpen = false
	s.addMediaAttempted = false
	s.addMediaErrs = map[string]string{}
	s.addMediaErr = ""
	s.captionEditing = false
	s.captionDraft = ""
	s.confirmDeleteOpen = false
	s.lastError = ""
}

// OpenCreate starts a create-mode session with empty fields and an
// empty local media queue.
func (s *Session) OpenCreate() {
	s.reset()
	s.open = true
	s.mode = ModeCreate
}

// OpenEdit starts an edit-mode session from an existing event. The
// date is reformatted from storage form to display form. Media arrives
// separately through LoadMedia; until then the panel is loading.
func (s *Session) OpenEdit(event types.Event) {
	s.reset()
	s.open = true
	s.mode = ModeEdit
	s.eventID = event.ID

	display, err := dates.ToDisplay(event.EventDate)
	if err != nil {
		display = event.EventDate
	}
	s.fields[FieldDate] = display
	s.fields[FieldType] = event.Type
	s.fields[FieldLocation] = event.Location
	s.fields[FieldTitle] = event.Title
	s.fields[FieldShortDescription] = event.ShortDescription
	s.fields[FieldSummary] = event.Summary
	s.fields[FieldImpact] = event.Impact

	s.mediaLoad = MediaLoading
}

// LoadMedia fetches the persisted media list in edit mode. On failure
// the panel enters a retryable error state; calling LoadMedia again
// retries.
func (s *Session) LoadMedia(ctx context.Context) error {
	if s.mode != ModeEdit {
		return nil
	}

	s.mediaLoad = MediaLoading
	s.mediaLoadErr = ""

	release := s.ops.Acquire(blocking.OpMediaLoad)
	items, err := s.client.ListMedia(ctx, s.eventID)
	release()

	if err != nil {
		s.mediaLoad = MediaFailed
		s.mediaLoadErr = err.Error()
		return err
	}

	s.media = make([]Media, 0, len(items))
	for _, item := range items {
		s.media = append(s.media, persistedMedia(item))
	}
	s.activeMedia = 0
	s.mediaLoad = MediaReady
	return nil
}

// SetField updates one draft field. The date field is shaped into
// MM/DD/YYYY as digits accumulate. Once a save has been attempted the
// field is re-validated live.
func (s *Session) SetField(name, value string) {
	if _, ok := s.fields[name]; !ok {
		return
	}

	if name == FieldDate {
		value = ShapeDateInput(s.fields[FieldDate], value)
	}
	s.fields[name] = value

	if s.attempted {
		if msg := validateField(name, value); msg != "" {
			s.errs[name] = msg
		} else {
			delete(s.errs, name)
		}
	}
}

func (s *Session) Field(name string) string {
	return s.fields[name]
}

func validateField(name, value string) string {
	if name == FieldDate {
		if !datePattern.MatchString(value) {
			return "Date must be in MM/DD/YYYY format"
		}
		return ""
	}
	if strings.TrimSpace(value) == "" {
		return fieldLabels[name] + " is required"
	}
	return ""
}

func (s *Session) validateAll() bool {
	s.errs = map[string]string{}
	for _, name := range fieldOrder {
		if msg := validateField(name, s.fields[name]); msg != "" {
			s.errs[name] = msg
		}
	}
	return len(s.errs) == 0
}

// --- add-media sub-form ---

func (s *Session) OpenAddMedia() {
	s.addMediaOpen = true
	s.addMediaAttempted = false
	s.addMediaErrs = map[string]string{}
	s.addMediaErr = ""
}

func (s *Session) CancelAddMedia() {
	s.addMediaOpen = false
	s.addMediaAttempted = false
	s.addMediaErrs = map[string]string{}
	s.addMediaErr = ""
}

// SubmitAddMedia validates the sub-form (file and caption both
// mandatory). In create mode it enqueues the item locally with a fresh
// local ID and preview; no network call occurs. In edit mode it uploads
// immediately; on failure the sub-form stays open with prior state
// untouched.
func (s *Session) SubmitAddMedia(ctx context.Context, file []byte, contentType, caption string) error {
	s.addMediaAttempted = true
	s.addMediaErrs = map[string]string{}
	s.addMediaErr = ""

	if len(file) == 0 {
		s.addMediaErrs["file"] = "An image file is required"
	}
	if strings.TrimSpace(caption) == "" {
		s.addMediaErrs["caption"] = "A caption is required"
	}
	if len(s.addMediaErrs) > 0 {
		return ErrValidation
	}

	caption = strings.TrimSpace(caption)

	if s.mode == ModeCreate {
		localID := uuid.New().String()
		s.media = append(s.media, Media{
			Kind:        MediaQueued,
			LocalID:     localID,
			File:        file,
			ContentType: contentType,
			Caption:     caption,
			Preview:     newPreviewHandle(localID, s.releasePreview),
		})
		s.CancelAddMedia()
		return nil
	}

	release := s.ops.Acquire(blocking.OpUpload)
	item, err := s.client.UploadMedia(ctx, s.eventID, file, contentType, caption)
	release()

	if err != nil {
		s.addMediaErr = err.Error()
		return err
	}

	if item.ID != "" {
		s.media = append(s.media, persistedMedia(item))
	} else {
		// Gateway did not echo the row; reload the list instead.
		if err := s.LoadMedia(ctx); err != nil {
			s.addMediaErr = err.Error()
			return err
		}
	}

	s.CancelAddMedia()
	return nil
}

// --- active item and caption editing ---

// SetActiveMedia switches the displayed item, clamping the index into
// bounds. Any in-progress caption edit is abandoned and the draft reset
// to the newly active item's confirmed caption.
func (s *Session) SetActiveMedia(i int) {
	if i < 0 {
		i = 0
	}
	if i > len(s.media)-1 {
		i = len(s.media) - 1
	}
	if i < 0 {
		i = 0
	}
	s.activeMedia = i

	s.captionEditing = false
	if item, ok := s.ActiveMedia(); ok {
		s.captionDraft = item.Caption
	} else {
		s.captionDraft = ""
	}
}

func (s *Session) ActiveMedia() (Media, bool) {
	if s.activeMedia < 0 || s.activeMedia >= len(s.media) {
		return Media{}, false
	}
	return s.media[s.activeMedia], true
}

func (s *Session) StartCaptionEdit() {
	item, ok := s.ActiveMedia()
	if !ok {
		return
	}
	s.captionEditing = true
	s.captionDraft = item.Caption
}

func (s *Session) SetCaptionDraft(draft string) {
	s.captionDraft = draft
}

// CancelCaptionEdit discards the draft and reverts to the last
// confirmed caption without any network call.
func (s *Session) CancelCaptionEdit() {
	s.captionEditing = false
	if item, ok := s.ActiveMedia(); ok {
		s.captionDraft = item.Caption
	}
}

// SaveCaption commits the caption draft. Create mode mutates the
// queued item locally, looked up by its local ID. Edit mode updates
// remotely and only commits the displayed caption once the call
// confirms.
func (s *Session) SaveCaption(ctx context.Context) error {
	item, ok := s.ActiveMedia()
	if !ok || !s.captionEditing {
		return nil
	}

	if s.mode == ModeCreate {
		for i := range s.media {
			if s.media[i].Kind == MediaQueued && s.media[i].LocalID == item.LocalID {
				s.media[i].Caption = s.captionDraft
				break
			}
		}
		s.captionEditing = false
		return nil
	}

	release := s.ops.Acquire(blocking.OpCaption)
	confirmed, err := s.client.UpdateMediaCaption(ctx, item.ID, s.captionDraft)
	release()

	if err != nil {
		s.lastError = err.Error()
		if IsNotFound(err) {
			// Record vanished server-side; refresh the list.
			s.LoadMedia(ctx)
		}
		return err
	}

	for i := range s.media {
		if s.media[i].Kind == MediaPersisted && s.media[i].ID == item.ID {
			s.media[i].Caption = confirmed
			break
		}
	}
	s.captionEditing = false
	s.captionDraft = confirmed
	return nil
}

// --- deleting media ---

// DeleteActive removes the displayed item. Create mode removes the
// queued item immediately, releasing its preview. Edit mode opens a
// confirmation dialog instead; ConfirmDelete performs the remote call.
func (s *Session) DeleteActive() {
	item, ok := s.ActiveMedia()
	if !ok {
		return
	}

	if s.mode == ModeEdit {
		s.confirmDeleteOpen = true
		return
	}

	for i := range s.media {
		if s.media[i].Kind == MediaQueued && s.media[i].LocalID == item.LocalID {
			s.media[i].Preview.Release()
			s.media = append(s.media[:i], s.media[i+1:]...)
			break
		}
	}
	s.clampActive()
}

func (s *Session) CancelDelete() {
	s.confirmDeleteOpen = false
}

// ConfirmDelete issues the remote delete for the displayed persisted
// item. On failure the dialog stays open with state intact. A 404 means
// the item already vanished server-side; it is dropped locally.
func (s *Session) ConfirmDelete(ctx context.Context) error {
	item, ok := s.ActiveMedia()
	if !ok || !s.confirmDeleteOpen {
		s.confirmDeleteOpen = false
		return nil
	}

	release := s.ops.Acquire(blocking.OpDelete)
	err := s.client.DeleteMedia(ctx, s.eventID, item.ID)
	release()

	if err != nil && !IsNotFound(err) {
		s.lastError = err.Error()
		return err
	}
	if err != nil {
		s.lastError = err.Error()
	}

	for i := range s.media {
		if s.media[i].Kind == MediaPersisted && s.media[i].ID == item.ID {
			s.media = append(s.media[:i], s.media[i+1:]...)
			break
		}
	}
	s.clampActive()
	s.confirmDeleteOpen = false

	if err != nil {
		return err
	}
	return nil
}

func (s *Session) clampActive() {
	if len(s.media) == 0 {
		s.activeMedia = 0
		return
	}
	if s.activeMedia > len(s.media)-1 {
		s.activeMedia = len(s.media) - 1
	}
	if s.activeMedia < 0 {
		s.activeMedia = 0
	}
}

// --- primary save ---

// Save validates every field, then persists. Any validation failure
// aborts before any network activity and marks the submit attempted so
// errors render. Create mode creates the event and then uploads the
// queued media strictly in enqueue order, releasing each item's preview
// as soon as its own upload succeeds; a failure partway stops the
// sequence, leaving the event and the succeeded uploads persisted. Edit
// mode updates the event only. On success the editor closes and the
// caller's list refresh runs.
func (s *Session) Save(ctx context.Context) error {
	s.attempted = true
	s.lastError = ""
	if !s.validateAll() {
		return ErrValidation
	}

	payload, err := s.buildPayload()
	if err != nil {
		s.errs[FieldDate] = "Date must be in MM/DD/YYYY format"
		return ErrValidation
	}

	if s.mode == ModeEdit {
		release := s.ops.Acquire(blocking.OpSave)
		err := s.client.UpdateEvent(ctx, s.eventID, payload)
		release()

		if err != nil {
			s.lastError = err.Error()
			return err
		}

		s.finish()
		return nil
	}

	// A retry after a partial failure already has its event row; creating
	// again would duplicate it and split the media across two events.
	if s.eventID == "" {
		release := s.ops.Acquire(blocking.OpSave)
		eventID, err := s.client.CreateEvent(ctx, payload)
		release()

		if err != nil {
			s.lastError = err.Error()
			return err
		}
		s.eventID = eventID
	}

	// Upload queued media sequentially in enqueue order. Each preview
	// is released right after its own upload succeeds, so a later
	// failure cannot re-leak an already-released preview.
	for i := 0; i < len(s.media); i++ {
		if s.media[i].Kind != MediaQueued {
			continue
		}

		entry := s.media[i]
		release := s.ops.Acquire(blocking.OpUpload)
		item, err := s.client.UploadMedia(ctx, s.eventID, entry.File, entry.ContentType, entry.Caption)
		release()

		if err != nil {
			s.lastError = err.Error()
			return err
		}

		entry.Preview.Release()
		if item.ID != "" {
			s.media[i] = persistedMedia(item)
		} else {
			s.media[i] = Media{Kind: MediaPersisted, Caption: entry.Caption}
		}
	}

	s.finish()
	return nil
}

func (s *Session) buildPayload() (types.EventRequest, error) {
	storageDate, err := dates.ToStorage(s.fields[FieldDate])
	if err != nil {
		return types.EventRequest{}, err
	}

	return types.EventRequest{
		EventDate:        storageDate,
		Type:             strings.TrimSpace(s.fields[FieldType]),
		Location:         strings.TrimSpace(s.fields[FieldLocation]),
		Title:            strings.TrimSpace(s.fields[FieldTitle]),
		ShortDescription: strings.TrimSpace(s.fields[FieldShortDescription]),
		Summary:          strings.TrimSpace(s.fields[FieldSummary]),
		Impact:           strings.TrimSpace(s.fields[FieldImpact]),
	}, nil
}

func (s *Session) finish() {
	if s.refresh != nil {
		s.refresh()
	}
	s.Close()
}

// Close abandons the session: remaining queued previews are released
// and all state resets so the next open starts clean.
func (s *Session) Close() {
	s.reset()
}

// --- accessors ---

func (s *Session) IsOpen() bool              { return s.open }
func (s *Session) Mode() Mode                { return s.mode }
func (s *Session) EventID() string           { return s.eventID }
func (s *Session) ActiveIndex() int          { return s.activeMedia }
func (s *Session) MediaLoad() MediaLoadState { return s.mediaLoad }
func (s *Session) MediaLoadError() string    { return s.mediaLoadErr }
func (s *Session) AddMediaOpen() bool        { return s.addMediaOpen }
func (s *Session) AddMediaError() string     { return s.addMediaErr }
func (s *Session) CaptionEditing() bool      { return s.captionEditing }
func (s *Session) CaptionDraft() string      { return s.captionDraft }
func (s *Session) ConfirmDeleteOpen() bool   { return s.confirmDeleteOpen }
func (s *Session) LastError() string         { return s.lastError }
func (s *Session) SubmitAttempted() bool     { return s.attempted }

func (s *Session) Media() []Media {
	out := make([]Media, len(s.media))
	copy(out, s.media)
	return out
}

func (s *Session) ValidationErrors() map[string]string {
	out := make(map[string]string, len(s.errs))
	for k, v := range s.errs {
		out[k] = v
	}
	return out
}

func (s *Session) AddMediaErrors() map[string]string {
	out := make(map[string]string, len(s.addMediaErrs))
	for k, v := range s.addMediaErrs {
		out[k] = v
	}
	return out
}
